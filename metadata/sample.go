package metadata

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"golang.org/x/exp/slices"
)

const matePairAssay = "Mate Pair"

// Sample accumulates everything the pipeline learns about one sample during a run.
type Sample struct {
	Name     string   `json:"name"`
	General  General  `json:"general"`
	Run      RunStats `json:"run"`
	Commands Commands `json:"commands"`
	Software *Record  `json:"software"`
	Errors   []string `json:"errors,omitempty"`
}

type General struct {
	OutputDirectory    string              `json:"outputDirectory"`
	ReadFiles          []string            `json:"readFiles"`
	TrimmedReadFiles   []string            `json:"trimmedReadFiles,omitempty"`
	Kmers              Opt[string]         `json:"kmers"`
	AssemblerOutputDir Opt[string]         `json:"assemblerOutputDir"`
	Dataset            Opt[string]         `json:"dataset"`
	BestAssembliesPath Opt[string]         `json:"bestAssembliesPath"`
	BestAssemblyFile   Opt[string]         `json:"bestAssemblyFile"`
	InsertSize         Opt[string]         `json:"insertSize"`
	InsertSizeStdDev   Opt[string]         `json:"insertSizeStdDev"`
	CorrectedReads     *Record             `json:"correctedReads"`
	Assembly           Opt[AssemblyStats]  `json:"assembly"`
}

type RunStats struct {
	Assay         Opt[string] `json:"assay"`
	ForwardLength Opt[int]    `json:"forwardLength"`
	ReverseLength Opt[int]    `json:"reverseLength"`
}

type Commands struct {
	Assembler Opt[string] `json:"assembler"`
}

// AssemblyStats summarises the filtered assembly of a sample.
type AssemblyStats struct {
	Contigs     int     `json:"contigs"`
	TotalLength int     `json:"totalLength"`
	N50         int     `json:"n50"`
	MeanLength  float64 `json:"meanLength"`
	MaxLength   int     `json:"maxLength"`
}

// NewSample builds a sample record with every nested section in place.
func NewSample(name, outputDir string) *Sample {
	return &Sample{
		Name:     name,
		General:  General{OutputDirectory: outputDir, CorrectedReads: NewRecord()},
		Software: NewRecord(),
	}
}

// ActiveReads returns the trimmed reads when there are any, else the raw reads, sorted.
func (s *Sample) ActiveReads() []string {
	reads := s.General.TrimmedReadFiles
	if len(reads) == 0 {
		reads = s.General.ReadFiles
	}
	out := append([]string(nil), reads...)
	slices.Sort(out)
	return out
}

func (s *Sample) HasReads() bool {
	return len(s.General.ReadFiles) > 0
}

func (s *Sample) Paired() bool {
	return len(s.General.ReadFiles) == 2
}

func (s *Sample) MatePair() bool {
	return strings.Contains(s.Run.Assay.OrElse(""), matePairAssay)
}

// FilteredFile is where the length-filtered assembly of the sample lives.
func (s *Sample) FilteredFile() string {
	return filepath.Join(s.General.OutputDirectory, s.Name+".fasta")
}

func (s *Sample) AddError(format string, args ...any) {
	s.Errors = append(s.Errors, fmt.Sprintf(format, args...))
}

// AddCorrectedReads appends files to the named corrected-read group, creating it if needed.
func (s *Sample) AddCorrectedReads(field string, files []string) {
	s.General.CorrectedReads.Append(field, files...)
}

// ToMap renders the sample as nested key/value maps for metadata consumers.
func (s *Sample) ToMap() (map[string]any, error) {
	b, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	var out map[string]any
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, err
	}
	return out, nil
}
