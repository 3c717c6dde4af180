package postprocess

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"github.com/gmaffy/assembly-pipeline/metadata"
	"github.com/gmaffy/assembly-pipeline/utils"
)

const interlacedField = "CorrectedSingleReads"

// ReadGroup is one list of files from the read-correction manifest, e.g. "left reads".
type ReadGroup struct {
	Label string
	Files []string
}

// ParseCorrected reads the assembler's corrected.yaml: a list of libraries, each a
// mapping from group label to file list. Scalar entries such as "type" and
// "orientation" are not read groups and are skipped. Groups keep file order.
func ParseCorrected(r io.Reader, path string) ([]ReadGroup, error) {
	var libraries []yaml.Node
	if err := yaml.NewDecoder(r).Decode(&libraries); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, &ParseError{Path: path, Reason: err.Error()}
	}

	var groups []ReadGroup
	for _, lib := range libraries {
		if lib.Kind != yaml.MappingNode {
			return nil, &ParseError{Path: path, Line: lib.Line, Reason: "library entry is not a mapping"}
		}
		for i := 0; i+1 < len(lib.Content); i += 2 {
			key, value := lib.Content[i], lib.Content[i+1]
			if value.Kind != yaml.SequenceNode {
				continue
			}
			var files []string
			if err := value.Decode(&files); err != nil {
				return nil, &ParseError{Path: path, Line: value.Line, Reason: err.Error()}
			}
			groups = append(groups, ReadGroup{Label: key.Value, Files: files})
		}
	}
	return groups, nil
}

// FieldName maps a group label to the sample field it is merged into: every
// interlaced group lands in CorrectedSingleReads, "left reads" becomes
// CorrectedLeftReads and so on.
func FieldName(label string) string {
	if strings.HasPrefix(label, "interlaced") {
		return interlacedField
	}
	title := cases.Title(language.Und).String(label)
	return "Corrected" + strings.ReplaceAll(title, " ", "")
}

// MergeCorrected adds the corrected read groups of a sample's assembly to its record.
func MergeCorrected(s *metadata.Sample) error {
	outDir, ok := s.General.AssemblerOutputDir.Get()
	if !ok {
		return nil
	}
	manifest := filepath.Join(outDir, "corrected", "corrected.yaml")
	if !utils.FileExists(manifest) {
		return nil
	}
	f, err := os.Open(manifest)
	if err != nil {
		return err
	}
	defer f.Close()

	groups, err := ParseCorrected(f, manifest)
	if err != nil {
		return fmt.Errorf("corrected reads: %w", err)
	}
	for _, g := range groups {
		s.AddCorrectedReads(FieldName(g.Label), g.Files)
	}
	return nil
}
