package postprocess

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/gmaffy/assembly-pipeline/metadata"
)

type Options struct {
	RunPath         string
	MinContigLength int
	Workers         int
}

type pass struct {
	name string
	run  func(s *metadata.Sample) error
}

// Run applies the contig filter, insert size extraction, corrected read merge and
// assembly statistics to every sample. Samples are processed concurrently; each
// goroutine only touches its own sample. A failing pass is recorded on the sample
// and the remaining passes still run. Only cancellation of ctx is returned.
func Run(ctx context.Context, samples []*metadata.Sample, opts Options, logger *slog.Logger) error {
	passes := []pass{
		{"filter", func(s *metadata.Sample) error { return Filter(s, opts.RunPath, opts.MinContigLength) }},
		{"insert size", InsertSize},
		{"corrected reads", MergeCorrected},
		{"assembly stats", Stats},
	}

	g, ctx := errgroup.WithContext(ctx)
	if opts.Workers > 0 {
		g.SetLimit(opts.Workers)
	}
	for _, s := range samples {
		s := s
		g.Go(func() error {
			for _, p := range passes {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				if err := p.run(s); err != nil {
					s.AddError("%s: %v", p.name, err)
					logger.Warn("post-processing", "SAMPLE", s.Name, "PASS", p.name, "ERROR", err.Error())
				}
			}
			return nil
		})
	}
	return g.Wait()
}
