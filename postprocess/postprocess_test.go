package postprocess

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/biogo/biogo/alphabet"
	"github.com/biogo/biogo/io/seqio"
	"github.com/biogo/biogo/io/seqio/fasta"
	"github.com/biogo/biogo/seq/linear"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gmaffy/assembly-pipeline/metadata"
)

func contigsFasta(lengths ...int) string {
	var b strings.Builder
	for i, n := range lengths {
		b.WriteString(">NODE_")
		b.WriteString(strings.Repeat("1", i+1))
		b.WriteString("_length_cov_12.5 some description\n")
		seq := strings.Repeat("ACGT", n/4+1)[:n]
		for len(seq) > 70 {
			b.WriteString(seq[:70] + "\n")
			seq = seq[70:]
		}
		b.WriteString(seq + "\n")
	}
	return b.String()
}

func readIDs(t *testing.T, path string) (ids []string, lengths []int) {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	sc := seqio.NewScanner(fasta.NewReader(f, linear.NewSeq("", nil, alphabet.DNAredundant)))
	for sc.Next() {
		s := sc.Seq().(*linear.Seq)
		ids = append(ids, s.ID)
		lengths = append(lengths, s.Len())
		assert.Empty(t, s.Desc)
	}
	require.NoError(t, sc.Error())
	return ids, lengths
}

// assembledSample lays out <run>/<name>/spades_output/contigs.fasta.
func assembledSample(t *testing.T, run, name string, lengths ...int) *metadata.Sample {
	t.Helper()
	s := metadata.NewSample(name, filepath.Join(run, name))
	outDir := filepath.Join(s.General.OutputDirectory, "spades_output")
	require.NoError(t, os.MkdirAll(outDir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(outDir, "contigs.fasta"), []byte(contigsFasta(lengths...)), 0644))
	s.General.AssemblerOutputDir = metadata.Some(outDir)
	s.General.ReadFiles = []string{"r1.fastq", "r2.fastq"}
	return s
}

func TestFilterContigs(t *testing.T) {
	run := t.TempDir()
	s := assembledSample(t, run, "2015-SEQ-001", 500, 1500, 2000)
	contigs := filepath.Join(s.General.AssemblerOutputDir.OrElse(""), "contigs.fasta")

	kept, err := FilterContigs(contigs, s.FilteredFile(), s.Name, 1000)
	require.NoError(t, err)
	assert.Equal(t, 2, kept)

	ids, lengths := readIDs(t, s.FilteredFile())
	assert.Equal(t, []string{"2015-SEQ-001_11_length_cov_12.5", "2015-SEQ-001_111_length_cov_12.5"}, ids)
	assert.Equal(t, []int{1500, 2000}, lengths)

	again := filepath.Join(run, "again.fasta")
	_, err = FilterContigs(contigs, again, s.Name, 1000)
	require.NoError(t, err)
	first, _ := os.ReadFile(s.FilteredFile())
	second, _ := os.ReadFile(again)
	assert.Equal(t, first, second)
}

func TestFilterIsIdempotentAndCollects(t *testing.T) {
	run := t.TempDir()
	s := assembledSample(t, run, "A", 500, 1500, 2000)

	require.NoError(t, Filter(s, run, 1000))
	best := filepath.Join(run, BestAssembliesDir, "A.fasta")
	assert.Equal(t, best, s.General.BestAssemblyFile.OrElse(""))
	first, err := os.ReadFile(s.FilteredFile())
	require.NoError(t, err)
	collected, err := os.ReadFile(best)
	require.NoError(t, err)
	assert.Equal(t, first, collected)

	require.NoError(t, Filter(s, run, 1000))
	second, err := os.ReadFile(s.FilteredFile())
	require.NoError(t, err)
	assert.Equal(t, first, second)

	entries, err := os.ReadDir(s.General.OutputDirectory)
	require.NoError(t, err)
	for _, e := range entries {
		assert.False(t, strings.HasPrefix(e.Name(), ".filter-"), e.Name())
	}
}

func TestFilterWithoutAssembly(t *testing.T) {
	run := t.TempDir()
	s := metadata.NewSample("B", filepath.Join(run, "B"))
	require.NoError(t, Filter(s, run, 1000))
	assert.Equal(t, metadata.NA, s.General.BestAssemblyFile.String())
	assert.NoDirExists(t, filepath.Join(run, BestAssembliesDir))
}

func TestParseInsertSize(t *testing.T) {
	size, dev, err := ParseInsertSize("0:02:07.605   144M / 9G    INFO    General (pair_info_count.cpp : 191) Insert size = 240.514, deviation = 105.257, left quantile = 142, right quantile = 384, read length = 301")
	require.NoError(t, err)
	assert.Equal(t, "240.514", size)
	assert.Equal(t, "105.257", dev)

	_, _, err = ParseInsertSize("Insert size = unknown")
	var pe *ParseError
	assert.ErrorAs(t, err, &pe)

	_, _, err = ParseInsertSize("Insert size = abc, deviation = 1.0,")
	assert.ErrorAs(t, err, &pe)
}

func TestScanInsertSizeFirstLineWins(t *testing.T) {
	log := strings.Join([]string{
		"0:00:01.000 INFO General starting",
		"0:02:07.605 INFO General (pair_info_count.cpp : 191) Insert size = 240.514, deviation = 105.257, left quantile = 142",
		"0:02:09.000 INFO General (pair_info_count.cpp : 191) Insert size = 300.0, deviation = 1.0, left quantile = 142",
	}, "\n")
	size, dev, found, err := ScanInsertSize(strings.NewReader(log), "spades.log")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "240.514", size)
	assert.Equal(t, "105.257", dev)

	_, _, found, err = ScanInsertSize(strings.NewReader("nothing here\n"), "spades.log")
	require.NoError(t, err)
	assert.False(t, found)

	_, _, _, err = ScanInsertSize(strings.NewReader("a\nInsert size = 1\n"), "spades.log")
	var pe *ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, 2, pe.Line)
	assert.Equal(t, "spades.log", pe.Path)
}

func TestInsertSize(t *testing.T) {
	run := t.TempDir()
	paired := assembledSample(t, run, "A", 1500)
	logPath := filepath.Join(paired.General.AssemblerOutputDir.OrElse(""), "spades.log")
	require.NoError(t, os.WriteFile(logPath, []byte("x\nInsert size = 240.514, deviation = 105.257, left quantile = 142\n"), 0644))
	require.NoError(t, InsertSize(paired))
	assert.Equal(t, "240.514", paired.General.InsertSize.String())
	assert.Equal(t, "105.257", paired.General.InsertSizeStdDev.String())

	single := assembledSample(t, run, "B", 1500)
	single.General.ReadFiles = []string{"r1.fastq"}
	require.NoError(t, InsertSize(single))
	assert.Equal(t, metadata.NA, single.General.InsertSize.String())
	assert.Equal(t, metadata.NA, single.General.InsertSizeStdDev.String())

	missingLog := assembledSample(t, run, "C", 1500)
	assert.Error(t, InsertSize(missingLog))
}

const correctedYAML = `- interlaced reads:
  - /run/A/spades_output/corrected/A_interlaced.00.0_0.cor.fastq.gz
  left reads:
  - /run/A/spades_output/corrected/A_R1.00.0_0.cor.fastq.gz
  orientation: fr
  right reads:
  - /run/A/spades_output/corrected/A_R2.00.0_0.cor.fastq.gz
  single reads:
  - /run/A/spades_output/corrected/A__unpaired.00.0_0.cor.fastq.gz
  type: paired-end
- left reads:
  - /run/A/spades_output/corrected/A_lib2_R1.cor.fastq.gz
  type: paired-end
`

func TestParseCorrected(t *testing.T) {
	groups, err := ParseCorrected(strings.NewReader(correctedYAML), "corrected.yaml")
	require.NoError(t, err)
	labels := make([]string, len(groups))
	for i, g := range groups {
		labels[i] = g.Label
	}
	assert.Equal(t, []string{"interlaced reads", "left reads", "right reads", "single reads", "left reads"}, labels)

	_, err = ParseCorrected(strings.NewReader("- just a string\n"), "corrected.yaml")
	var pe *ParseError
	assert.ErrorAs(t, err, &pe)

	_, err = ParseCorrected(strings.NewReader("key: [unclosed\n"), "corrected.yaml")
	assert.ErrorAs(t, err, &pe)
}

func TestFieldName(t *testing.T) {
	assert.Equal(t, "CorrectedSingleReads", FieldName("interlaced reads"))
	assert.Equal(t, "CorrectedSingleReads", FieldName("interlaced"))
	assert.Equal(t, "CorrectedLeftReads", FieldName("left reads"))
	assert.Equal(t, "CorrectedSingleReads", FieldName("single reads"))
	assert.Equal(t, "CorrectedMergedReads", FieldName("merged reads"))
}

func TestMergeCorrected(t *testing.T) {
	run := t.TempDir()
	s := assembledSample(t, run, "A", 1500)
	dir := filepath.Join(s.General.AssemblerOutputDir.OrElse(""), "corrected")
	require.NoError(t, os.MkdirAll(dir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "corrected.yaml"), []byte(correctedYAML), 0644))

	require.NoError(t, MergeCorrected(s))
	got := s.General.CorrectedReads
	assert.Equal(t, []string{
		"/run/A/spades_output/corrected/A_R1.00.0_0.cor.fastq.gz",
		"/run/A/spades_output/corrected/A_lib2_R1.cor.fastq.gz",
	}, got.Strings("CorrectedLeftReads"))
	assert.Equal(t, []string{
		"/run/A/spades_output/corrected/A_interlaced.00.0_0.cor.fastq.gz",
		"/run/A/spades_output/corrected/A__unpaired.00.0_0.cor.fastq.gz",
	}, got.Strings("CorrectedSingleReads"))
	assert.Len(t, got.Strings("CorrectedRightReads"), 1)
	assert.Equal(t, []string{"CorrectedSingleReads", "CorrectedLeftReads", "CorrectedRightReads"}, got.Keys())

	none := metadata.NewSample("B", filepath.Join(run, "B"))
	assert.NoError(t, MergeCorrected(none))
	assert.Empty(t, none.General.CorrectedReads.Keys())
}

func TestComputeStats(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.fasta")
	require.NoError(t, os.WriteFile(path, []byte(contigsFasta(1000, 2000, 3000, 4000)), 0644))
	st, err := ComputeStats(path)
	require.NoError(t, err)
	assert.Equal(t, 4, st.Contigs)
	assert.Equal(t, 10000, st.TotalLength)
	assert.Equal(t, 4000, st.MaxLength)
	assert.Equal(t, 3000, st.N50)
	assert.InDelta(t, 2500.0, st.MeanLength, 1e-9)
}

func TestRun(t *testing.T) {
	run := t.TempDir()
	good := assembledSample(t, run, "A", 500, 1500, 2000)
	broken := assembledSample(t, run, "B", 1500)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	err := Run(context.Background(), []*metadata.Sample{good, broken}, Options{RunPath: run, MinContigLength: 1000, Workers: 2}, logger)
	require.NoError(t, err)

	assert.True(t, good.General.BestAssemblyFile.IsSet())
	st, ok := good.General.Assembly.Get()
	require.True(t, ok)
	assert.Equal(t, 2, st.Contigs)

	// B has paired reads but no spades.log, so only the insert size pass fails.
	require.Len(t, broken.Errors, 1)
	assert.Contains(t, broken.Errors[0], "insert size")
	assert.True(t, broken.General.BestAssemblyFile.IsSet())
}
