package assembly

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/gmaffy/assembly-pipeline/metadata"
	"github.com/gmaffy/assembly-pipeline/postprocess"
	"github.com/gmaffy/assembly-pipeline/progress"
	"github.com/gmaffy/assembly-pipeline/report"
	"github.com/gmaffy/assembly-pipeline/samples"
	"github.com/gmaffy/assembly-pipeline/utils"
)

// Pipeline takes a directory of read files through grouping, read length sampling,
// assembly and post-processing.
type Pipeline struct {
	Config  utils.Config
	Runner  Runner
	Printer metadata.Printer
	Stdout  io.Writer
	Logger  *slog.Logger
	// LogPath is the stage log of earlier runs, consulted on restart.
	LogPath       string
	SpadesPath    string
	SpadesVersion string
}

func (p *Pipeline) Run(ctx context.Context) ([]*metadata.Sample, error) {
	cfg := p.Config
	if !utils.DirExists(cfg.Path) {
		return nil, fmt.Errorf("run path %q is not a directory", cfg.Path)
	}
	out := p.Stdout
	if out == nil {
		out = os.Stdout
	}
	logger := p.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	start := time.Now()

	// ------------------------------------------- Samples ----------------------------------------------------------- //
	fmt.Fprintf(out, "Grouping %s files in %s ...\n", cfg.Extension, cfg.Path)
	batch, err := samples.Discover(cfg.Path, cfg.Extension, progress.NewDots(out))
	if err != nil {
		return nil, err
	}
	for _, s := range batch {
		if !s.Run.Assay.IsSet() {
			s.Run.Assay = metadata.NonEmpty(cfg.Assay)
		}
	}
	utils.FprintTime(out, fmt.Sprintf("Found %d samples", len(batch)), start)

	fmt.Fprintf(out, "Sampling read lengths ...\n")
	samples.ReadLengths(batch, logger)

	// ------------------------------------------- Assembly ---------------------------------------------------------- //
	opts := BuildOptions{
		Kmers:          cfg.Kmers,
		Threads:        cfg.Threads,
		RunPath:        cfg.Path,
		Dataset:        cfg.Dataset,
		SpadesPath:     p.SpadesPath,
		Version:        p.SpadesVersion,
		VersionCompare: cfg.VersionCompare,
	}
	previous := utils.ParseLogFile(p.LogPath)
	jobs := make([]Job, 0, len(batch))
	for _, s := range batch {
		job, err := Build(s, opts)
		if err != nil {
			s.AddError("assembler command: %v", err)
			utils.LogStageFailed(logger, programSpades, s.Name, err)
		}
		if job.Command != "" && utils.StageHasCompleted(previous, programSpades, s.Name) &&
			!utils.FileExists(filepath.Join(job.OutputDir, ContigsFileName)) {
			logger.Warn("assembly completed in an earlier run but its contigs are missing", "SAMPLE", s.Name, "DIR", job.OutputDir)
		}
		jobs = append(jobs, job)
	}

	fmt.Fprintf(out, "Assembling %d samples ...\n", EligibleWorkers(batch))
	runner := p.Runner
	if runner == nil {
		runner = BashRunner{}
	}
	sched := &Scheduler{
		Runner:   runner,
		Workers:  EligibleWorkers(batch),
		Progress: progress.NewBar(out, len(jobs)),
		Logger:   logger,
	}
	for _, res := range sched.Run(ctx, jobs) {
		if res.Err != nil {
			res.Job.Sample.AddError("assembler: %v", res.Err)
		}
	}
	if err := ctx.Err(); err != nil {
		return batch, err
	}
	utils.FprintTime(out, "Assembly done", start)

	// ------------------------------------------- Post-processing --------------------------------------------------- //
	fmt.Fprintf(out, "Filtering contigs shorter than %d bp ...\n", cfg.MinContigLength)
	ppOpts := postprocess.Options{RunPath: cfg.Path, MinContigLength: cfg.MinContigLength, Workers: cfg.Threads}
	if err := postprocess.Run(ctx, batch, ppOpts, logger); err != nil {
		return batch, err
	}

	if cfg.Report {
		if err := report.Write(cfg.Path, batch); err != nil && !errors.Is(err, report.ErrNoSamples) {
			logger.Warn("writing run report", "ERROR", err.Error())
		}
	}
	if p.Printer != nil {
		if err := p.Printer.Print(batch); err != nil {
			return batch, err
		}
	}
	utils.FprintTime(out, "Pipeline done", start)
	return batch, nil
}
