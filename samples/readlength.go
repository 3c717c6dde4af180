package samples

import (
	"bufio"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/xi2/xz"

	"github.com/gmaffy/assembly-pipeline/metadata"
)

// sampledLines is how much of the head of a read file is inspected: 250 FASTQ records.
const sampledLines = 1000

var ErrNoReads = errors.New("no sequence lines in read file")

// MaxReadLength returns the longest sequence among the first records of a FASTQ file,
// decompressing .gz and .xz files on the fly.
func MaxReadLength(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	var reader io.Reader = f
	switch {
	case strings.HasSuffix(path, ".gz"):
		gzReader, err := gzip.NewReader(f)
		if err != nil {
			return 0, fmt.Errorf("failed to create gzip reader for %s: %w", path, err)
		}
		defer gzReader.Close()
		reader = gzReader
	case strings.HasSuffix(path, ".xz"):
		xzReader, err := xz.NewReader(f, 0)
		if err != nil {
			return 0, fmt.Errorf("failed to create xz reader for %s: %w", path, err)
		}
		reader = xzReader
	}

	scanner := bufio.NewScanner(reader)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	longest, seen := 0, false
	for i := 0; i < sampledLines && scanner.Scan(); i++ {
		if i%4 != 1 {
			continue
		}
		seen = true
		if n := len(strings.TrimRight(scanner.Text(), "\r")); n > longest {
			longest = n
		}
	}
	if err := scanner.Err(); err != nil {
		return 0, fmt.Errorf("reading %s: %w", path, err)
	}
	if !seen {
		return 0, fmt.Errorf("%w: %s", ErrNoReads, path)
	}
	return longest, nil
}

// ReadLengths fills in forward and reverse read lengths for every sample that has
// reads and no lengths yet. Samples restored from a previous run are left untouched.
// Failures are recorded on the sample and do not stop the others.
func ReadLengths(samples []*metadata.Sample, logger *slog.Logger) {
	for _, s := range samples {
		if !s.HasReads() || lengthsKnown(s) {
			continue
		}
		reads := s.General.ReadFiles

		fwd, err := MaxReadLength(reads[0])
		if err != nil {
			s.AddError("forward read length: %v", err)
			logger.Warn("read length", "SAMPLE", s.Name, "ERROR", err.Error())
			continue
		}
		s.Run.ForwardLength = metadata.Some(fwd)

		if len(reads) != 2 {
			s.Run.ReverseLength = metadata.Opt[int]{}
			continue
		}
		rev, err := MaxReadLength(reads[1])
		if err != nil {
			s.AddError("reverse read length: %v", err)
			logger.Warn("read length", "SAMPLE", s.Name, "ERROR", err.Error())
			continue
		}
		s.Run.ReverseLength = metadata.Some(rev)
	}
}

func lengthsKnown(s *metadata.Sample) bool {
	if !s.Run.ForwardLength.IsSet() {
		return false
	}
	return !s.Paired() || s.Run.ReverseLength.IsSet()
}
