package metadata

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

// Printer hands finished sample records to whatever serialises them.
type Printer interface {
	Print(samples []*Sample) error
}

// JSONPrinter writes <outputDirectory>/<name>_metadata.json for every sample with reads.
type JSONPrinter struct{}

func MetadataFile(s *Sample) string {
	return filepath.Join(s.General.OutputDirectory, s.Name+"_metadata.json")
}

func (JSONPrinter) Print(samples []*Sample) error {
	for _, s := range samples {
		if !s.HasReads() {
			continue
		}
		rt, err := s.Software.Child("runtime")
		if err != nil {
			return fmt.Errorf("recording runtime for %s: %w", s.Name, err)
		}
		rt.Set("go", runtime.Version())
		rt.Set("arch", runtime.GOOS+"/"+runtime.GOARCH)
		b, err := json.MarshalIndent(s, "", "    ")
		if err != nil {
			return fmt.Errorf("encoding metadata for %s: %w", s.Name, err)
		}
		if err := os.WriteFile(MetadataFile(s), append(b, '\n'), 0644); err != nil {
			return fmt.Errorf("writing metadata for %s: %w", s.Name, err)
		}
	}
	return nil
}

// Load reads a sample record previously written by JSONPrinter.
func Load(path string) (*Sample, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	s := NewSample("", "")
	if err := json.Unmarshal(b, s); err != nil {
		return nil, fmt.Errorf("decoding metadata %s: %w", path, err)
	}
	if s.Software == nil {
		s.Software = NewRecord()
	}
	if s.General.CorrectedReads == nil {
		s.General.CorrectedReads = NewRecord()
	}
	return s, nil
}

// RestorePrevious copies run statistics from an earlier run's metadata file into s,
// so read lengths are not sampled again after a restart. A missing file is not an error.
func RestorePrevious(s *Sample) error {
	prev, err := Load(MetadataFile(s))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	if prev.Name != s.Name {
		return nil
	}
	s.Run.ForwardLength = prev.Run.ForwardLength
	s.Run.ReverseLength = prev.Run.ReverseLength
	if !s.Run.Assay.IsSet() {
		s.Run.Assay = prev.Run.Assay
	}
	return nil
}
