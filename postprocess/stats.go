package postprocess

import (
	"os"
	"sort"

	"github.com/biogo/biogo/alphabet"
	"github.com/biogo/biogo/io/seqio"
	"github.com/biogo/biogo/io/seqio/fasta"
	"github.com/biogo/biogo/seq/linear"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/gmaffy/assembly-pipeline/metadata"
	"github.com/gmaffy/assembly-pipeline/utils"
)

// ComputeStats summarises the contig lengths of a FASTA file.
func ComputeStats(path string) (metadata.AssemblyStats, error) {
	var st metadata.AssemblyStats
	f, err := os.Open(path)
	if err != nil {
		return st, err
	}
	defer f.Close()

	sc := seqio.NewScanner(fasta.NewReader(f, linear.NewSeq("", nil, alphabet.DNAredundant)))
	var lengths []float64
	for sc.Next() {
		lengths = append(lengths, float64(sc.Seq().Len()))
	}
	if err := sc.Error(); err != nil {
		return st, &ParseError{Path: path, Reason: err.Error()}
	}
	if len(lengths) == 0 {
		return st, nil
	}

	st.Contigs = len(lengths)
	st.TotalLength = int(floats.Sum(lengths))
	st.MaxLength = int(floats.Max(lengths))
	st.MeanLength = stat.Mean(lengths, nil)
	st.N50 = n50(lengths, floats.Sum(lengths))
	return st, nil
}

func n50(lengths []float64, total float64) int {
	sorted := append([]float64(nil), lengths...)
	sort.Sort(sort.Reverse(sort.Float64Slice(sorted)))
	var running float64
	for _, l := range sorted {
		running += l
		if running*2 >= total {
			return int(l)
		}
	}
	return 0
}

// Stats records assembly statistics for a sample that has a filtered assembly.
func Stats(s *metadata.Sample) error {
	if !utils.FileExists(s.FilteredFile()) {
		return nil
	}
	st, err := ComputeStats(s.FilteredFile())
	if err != nil {
		return err
	}
	s.General.Assembly = metadata.Some(st)
	return nil
}
