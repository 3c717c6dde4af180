package assembly

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/kballard/go-shellquote"
	"github.com/samber/lo"

	"github.com/gmaffy/assembly-pipeline/metadata"
	"github.com/gmaffy/assembly-pipeline/utils"
)

var (
	ErrNoKmers           = errors.New("no k-mer size fits the read length")
	ErrReadLengthUnknown = errors.New("forward read length unknown")
)

// OutputDirName is the assembler working directory inside a sample's output directory.
const OutputDirName = "spades_output"

type BuildOptions struct {
	Kmers          string
	Threads        int
	RunPath        string
	Dataset        bool
	SpadesPath     string
	Version        string
	VersionCompare string
}

// Job is one assembler invocation. An empty Command still occupies a queue slot.
type Job struct {
	Sample    *metadata.Sample
	Command   string
	OutputDir string
}

// FilterKmers keeps the k-mer sizes that are no longer than readLength, in order.
func FilterKmers(kmers string, readLength int) (string, error) {
	var sizes []string
	for _, k := range strings.Split(kmers, ",") {
		k = strings.TrimSpace(k)
		if k == "" {
			continue
		}
		if _, err := strconv.Atoi(k); err != nil {
			return "", fmt.Errorf("invalid k-mer size %q: %w", k, err)
		}
		sizes = append(sizes, k)
	}
	kept := lo.Filter(sizes, func(k string, _ int) bool {
		n, _ := strconv.Atoi(k)
		return n <= readLength
	})
	return strings.Join(kept, ","), nil
}

// Build derives the assembler command for a sample and records it on the sample.
// A sample without reads yields an empty job. A sample whose command cannot be built
// yields an empty job and an error; the rest of the batch is unaffected.
func Build(s *metadata.Sample, opts BuildOptions) (Job, error) {
	s.General.Kmers = metadata.Opt[string]{}
	s.Commands.Assembler = metadata.Opt[string]{}
	reads := s.ActiveReads()
	if len(reads) == 0 {
		s.General.AssemblerOutputDir = metadata.Opt[string]{}
		return Job{Sample: s, OutputDir: metadata.NA}, nil
	}

	// --------------------------------------------- k-mers ---------------------------------------------------------- //
	outDir := filepath.Join(s.General.OutputDirectory, OutputDirName)
	s.General.AssemblerOutputDir = metadata.Some(outDir)
	job := Job{Sample: s, OutputDir: outDir}

	fwd, ok := s.Run.ForwardLength.Get()
	if !ok {
		return job, fmt.Errorf("%s: %w", s.Name, ErrReadLengthUnknown)
	}
	kmers, err := FilterKmers(opts.Kmers, fwd)
	if err != nil {
		return job, fmt.Errorf("%s: %w", s.Name, err)
	}
	if kmers == "" {
		return job, fmt.Errorf("%s: %w (forward length %d, k-mers %s)", s.Name, ErrNoKmers, fwd, opts.Kmers)
	}
	s.General.Kmers = metadata.Some(kmers)

	// --------------------------------------------- Flags ----------------------------------------------------------- //
	args := []string{"-k", kmers, "--careful", "-o", outDir, "-t", strconv.Itoa(opts.Threads)}
	if utils.DirExists(outDir) {
		args = append(args, "--continue")
	}

	if opts.Dataset {
		manifest := filepath.Join(opts.RunPath, s.Name+".yml")
		if utils.FileExists(manifest) {
			args = append(args, "--dataset", manifest)
			s.General.Dataset = metadata.Some(manifest)
		}
	}
	if !s.General.Dataset.IsSet() {
		args = append(args, readFlags(reads, s.MatePair())...)
	}

	// --------------------------------------------- Invocation ------------------------------------------------------ //
	python3, err := VersionAtLeast(opts.Version, python3Version, opts.VersionCompare)
	if err != nil {
		return job, fmt.Errorf("%s: %w", s.Name, err)
	}
	var cmdStr string
	if python3 {
		cmdStr = "python3 " + shellquote.Join(append([]string{opts.SpadesPath}, args...)...)
	} else {
		cmdStr = "spades.py " + shellquote.Join(args...)
	}

	s.Commands.Assembler = metadata.Some(cmdStr)
	s.Software.Set("SPAdes", opts.Version)
	job.Command = cmdStr
	return job, nil
}

func readFlags(reads []string, matePair bool) []string {
	if len(reads) == 2 {
		if matePair {
			return []string{"--mp1-1", reads[0], "--mp2-2", reads[1]}
		}
		return []string{"--pe1-1", reads[0], "--pe1-2", reads[1]}
	}
	if matePair {
		return []string{"--mp1-12", reads[0]}
	}
	return []string{"--s1", reads[0]}
}
