package metadata

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordFalsyValuesCollapseToNA(t *testing.T) {
	r := NewRecord()
	for _, tc := range []struct {
		key   string
		value any
	}{
		{"empty", ""},
		{"zero", 0},
		{"zeroFloat", 0.0},
		{"false", false},
		{"nil", nil},
		{"emptyList", []string{}},
		{"emptyMap", map[string]int{}},
	} {
		r.Set(tc.key, tc.value)
		v, ok := r.Get(tc.key)
		require.True(t, ok, tc.key)
		assert.Equal(t, NA, v, tc.key)
	}

	r.Set("length", 151)
	v, _ := r.Get("length")
	assert.Equal(t, 151, v)
	assert.Equal(t, NA, r.String("missing"))
}

func TestRecordChildAutoCreates(t *testing.T) {
	r := NewRecord()
	general, err := r.Child("general")
	require.NoError(t, err)
	general.Set("outputdirectory", "/run/A")

	again, err := r.Child("general")
	require.NoError(t, err)
	assert.Same(t, general, again)
	assert.Equal(t, "/run/A", again.String("outputdirectory"))

	_, err = r.Child("keys")
	assert.ErrorIs(t, err, ErrReservedKey)

	r.Set("scalar", "x")
	_, err = r.Child("scalar")
	assert.Error(t, err)
}

func TestRecordAppendAndMap(t *testing.T) {
	r := NewRecord()
	r.Append("CorrectedLeftReads", "a.fastq")
	r.Append("CorrectedLeftReads", "b.fastq")
	child, err := r.Child("software")
	require.NoError(t, err)
	child.Set("SPAdes", "3.9.0")
	r.Set("threads", 8)

	assert.Equal(t, []string{"CorrectedLeftReads", "software", "threads"}, r.Keys())
	assert.Equal(t, map[string]any{
		"CorrectedLeftReads": []string{"a.fastq", "b.fastq"},
		"software":           map[string]any{"SPAdes": "3.9.0"},
		"threads":            "8",
	}, r.Map())
}

func TestOptJSON(t *testing.T) {
	type holder struct {
		Length Opt[int]    `json:"length"`
		Size   Opt[string] `json:"size"`
	}
	b, err := json.Marshal(holder{Length: Some(151)})
	require.NoError(t, err)
	assert.JSONEq(t, `{"length":151,"size":"NA"}`, string(b))

	var h holder
	require.NoError(t, json.Unmarshal([]byte(`{"length":"NA","size":"240.514"}`), &h))
	assert.False(t, h.Length.IsSet())
	assert.Equal(t, "240.514", h.Size.OrElse(""))
	assert.Equal(t, NA, h.Length.String())
}

func TestSampleActiveReadsPrefersTrimmed(t *testing.T) {
	s := NewSample("A", "/run/A")
	s.General.ReadFiles = []string{"A_R2.fastq", "A_R1.fastq"}
	assert.Equal(t, []string{"A_R1.fastq", "A_R2.fastq"}, s.ActiveReads())
	assert.True(t, s.Paired())

	s.General.TrimmedReadFiles = []string{"A_R1_trimmed.fastq"}
	assert.Equal(t, []string{"A_R1_trimmed.fastq"}, s.ActiveReads())
}

func TestPrintAndRestorePrevious(t *testing.T) {
	dir := t.TempDir()
	s := NewSample("A", dir)
	s.General.ReadFiles = []string{filepath.Join(dir, "A_R1.fastq")}
	s.Run.Assay = Some("Nextera XT")
	s.Run.ForwardLength = Some(250)
	s.General.InsertSize = Some("240.514")
	s.AddCorrectedReads("CorrectedLeftReads", []string{"A_R1.cor.fastq.gz"})

	require.NoError(t, JSONPrinter{}.Print([]*Sample{s}))
	_, err := os.Stat(MetadataFile(s))
	require.NoError(t, err)

	loaded, err := Load(MetadataFile(s))
	require.NoError(t, err)
	assert.Equal(t, "A", loaded.Name)
	assert.Equal(t, 250, loaded.Run.ForwardLength.OrElse(0))
	assert.False(t, loaded.Run.ReverseLength.IsSet())
	rt, err := loaded.Software.Child("runtime")
	require.NoError(t, err)
	assert.NotEqual(t, NA, rt.String("go"))
	assert.Equal(t, []string{"A_R1.cor.fastq.gz"}, loaded.General.CorrectedReads.Strings("CorrectedLeftReads"))
	loaded.AddCorrectedReads("CorrectedLeftReads", []string{"lib2.cor.fastq.gz"})
	assert.Equal(t, []string{"A_R1.cor.fastq.gz", "lib2.cor.fastq.gz"}, loaded.General.CorrectedReads.Strings("CorrectedLeftReads"))

	fresh := NewSample("A", dir)
	require.NoError(t, RestorePrevious(fresh))
	assert.Equal(t, 250, fresh.Run.ForwardLength.OrElse(0))
	assert.Equal(t, "Nextera XT", fresh.Run.Assay.OrElse(""))

	missing := NewSample("B", t.TempDir())
	assert.NoError(t, RestorePrevious(missing))
}

func TestToMap(t *testing.T) {
	s := NewSample("A", "/run/A")
	s.AddCorrectedReads("CorrectedSingleReads", []string{"x.fastq"})
	s.AddCorrectedReads("CorrectedSingleReads", []string{"y.fastq"})
	s.AddCorrectedReads("CorrectedLeftReads", nil)
	assert.Equal(t, []string{"CorrectedSingleReads", "CorrectedLeftReads"}, s.General.CorrectedReads.Keys())
	m, err := s.ToMap()
	require.NoError(t, err)
	general := m["general"].(map[string]any)
	assert.Equal(t, NA, general["bestAssemblyFile"])
	assert.Equal(t, "/run/A", general["outputDirectory"])
	assert.Equal(t, NA, general["kmers"])
	assert.Equal(t, NA, m["run"].(map[string]any)["assay"])
	assert.Equal(t, NA, m["commands"].(map[string]any)["assembler"])

	s.General.ReadFiles = []string{"/run/A/A_R1.fastq"}
	b, err := json.Marshal(s)
	require.NoError(t, err)
	assert.NotContains(t, string(b), `""`)
}
