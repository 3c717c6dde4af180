package assembly

import (
	"context"
	"os"
	"log/slog"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/samber/lo"

	"github.com/gmaffy/assembly-pipeline/metadata"
	"github.com/gmaffy/assembly-pipeline/progress"
	"github.com/gmaffy/assembly-pipeline/utils"
)

// ContigsFileName is the assembler's primary output inside its output directory.
const ContigsFileName = "contigs.fasta"

// OutputLogName collects what the assembler prints while it runs.
const OutputLogName = "assembler_output.log"

const programSpades = "SPADES"

// Runner executes the command of one job and blocks until it exits.
type Runner interface {
	Run(ctx context.Context, job Job) error
}

// BashRunner runs jobs through bash, appending their stdout and stderr to
// <OutputDir>/assembler_output.log so parallel assemblies do not share a terminal.
type BashRunner struct{}

func (BashRunner) Run(ctx context.Context, job Job) error {
	if err := utils.MakePath(job.OutputDir); err != nil {
		return err
	}
	logFile, err := os.OpenFile(filepath.Join(job.OutputDir, OutputLogName), os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0644)
	if err != nil {
		return err
	}
	defer logFile.Close()
	return utils.RunBashCmd(ctx, job.Command, logFile, logFile)
}

type Result struct {
	Job Job
	Ran bool
	Err error
}

// Scheduler drains a queue of jobs with a fixed number of workers. A job whose
// contigs file already exists is not run again; jobs are never retried.
type Scheduler struct {
	Runner   Runner
	Workers  int
	Progress progress.Reporter
	Logger   *slog.Logger

	pending atomic.Int64
}

// EligibleWorkers is the number of samples that have at least one read file.
func EligibleWorkers(samples []*metadata.Sample) int {
	return lo.CountBy(samples, func(s *metadata.Sample) bool { return s.HasReads() })
}

// Pending is the number of enqueued jobs not yet marked done.
func (s *Scheduler) Pending() int64 {
	return s.pending.Load()
}

// Run enqueues every job, then blocks until all of them are marked done. Results are
// returned in job order.
func (s *Scheduler) Run(ctx context.Context, jobs []Job) []Result {
	results := make([]Result, len(jobs))
	rep := s.Progress
	if rep == nil {
		rep = progress.Discard{}
	}
	if len(jobs) == 0 {
		rep.Done()
		return results
	}
	workers := s.Workers
	if workers < 1 {
		workers = 1
	}

	queue := make(chan int, len(jobs))
	s.pending.Store(int64(len(jobs)))

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range queue {
				results[i] = s.execute(ctx, jobs[i])
				s.pending.Add(-1)
				rep.Advance()
			}
		}()
	}

	for i := range jobs {
		queue <- i
	}
	close(queue)
	wg.Wait()
	rep.Done()
	return results
}

func (s *Scheduler) execute(ctx context.Context, job Job) Result {
	res := Result{Job: job}
	name := ""
	if job.Sample != nil {
		name = job.Sample.Name
	}
	if job.Command == "" {
		return res
	}
	if utils.FileExists(filepath.Join(job.OutputDir, ContigsFileName)) {
		s.logStage(name, utils.StatusSkipped, job.Command)
		return res
	}

	s.logStage(name, utils.StatusStarted, job.Command)
	res.Ran = true
	res.Err = s.Runner.Run(ctx, job)
	if res.Err != nil {
		if s.Logger != nil {
			utils.LogStageFailed(s.Logger, programSpades, name, res.Err)
		}
		return res
	}
	s.logStage(name, utils.StatusCompleted, job.Command)
	return res
}

func (s *Scheduler) logStage(sample, status, cmd string) {
	if s.Logger != nil {
		utils.LogStage(s.Logger, programSpades, sample, status, cmd)
	}
}
