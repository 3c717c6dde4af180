package report

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"
	"github.com/go-gota/gota/dataframe"

	"github.com/gmaffy/assembly-pipeline/metadata"
	"github.com/gmaffy/assembly-pipeline/utils"
)

const (
	Dir       = "reports"
	TableFile = "assembly_summary.csv"
	ChartFile = "assembly_summary.html"
)

var ErrNoSamples = errors.New("no samples to report")

// Row is one line of the run summary. Unknown numeric values are NaN.
type Row struct {
	Sample        string  `dataframe:"sample"`
	ReadFiles     int     `dataframe:"read_files"`
	ForwardLength float64 `dataframe:"forward_length"`
	ReverseLength float64 `dataframe:"reverse_length"`
	Kmers         string  `dataframe:"kmers"`
	InsertSize    float64 `dataframe:"insert_size"`
	Contigs       int     `dataframe:"contigs"`
	TotalLength   int     `dataframe:"total_length"`
	N50           int     `dataframe:"n50"`
	MaxLength     int     `dataframe:"max_length"`
	Errors        int     `dataframe:"errors"`
}

func Rows(samples []*metadata.Sample) []Row {
	rows := make([]Row, 0, len(samples))
	for _, s := range samples {
		row := Row{
			Sample:        s.Name,
			ReadFiles:     len(s.General.ReadFiles),
			ForwardLength: optFloat(s.Run.ForwardLength),
			ReverseLength: optFloat(s.Run.ReverseLength),
			Kmers:         s.General.Kmers.OrElse(""),
			InsertSize:    math.NaN(),
			Errors:        len(s.Errors),
		}
		if v, ok := s.General.InsertSize.Get(); ok {
			if f, err := strconv.ParseFloat(v, 64); err == nil {
				row.InsertSize = f
			}
		}
		if st, ok := s.General.Assembly.Get(); ok {
			row.Contigs = st.Contigs
			row.TotalLength = st.TotalLength
			row.N50 = st.N50
			row.MaxLength = st.MaxLength
		}
		rows = append(rows, row)
	}
	return rows
}

func optFloat(o metadata.Opt[int]) float64 {
	if v, ok := o.Get(); ok {
		return float64(v)
	}
	return math.NaN()
}

// WriteTable writes the run summary as CSV.
func WriteTable(w io.Writer, rows []Row) error {
	if len(rows) == 0 {
		return ErrNoSamples
	}
	df := dataframe.LoadStructs(rows)
	if df.Err != nil {
		return fmt.Errorf("building summary table: %w", df.Err)
	}
	return df.WriteCSV(w)
}

// WriteChart renders N50 and total length of every assembled sample as an HTML bar chart.
func WriteChart(w io.Writer, rows []Row) error {
	var names []string
	var n50s, totals []opts.BarData
	for _, r := range rows {
		if r.Contigs == 0 {
			continue
		}
		names = append(names, r.Sample)
		n50s = append(n50s, opts.BarData{Value: r.N50})
		totals = append(totals, opts.BarData{Value: r.TotalLength})
	}
	if len(names) == 0 {
		return ErrNoSamples
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Theme: types.ThemeWesteros}),
		charts.WithTitleOpts(opts.Title{Title: "Assembly summary", Subtitle: fmt.Sprintf("%d assembled samples", len(names))}),
		charts.WithYAxisOpts(opts.YAxis{Name: "bp"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Sample"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
	)
	bar.SetXAxis(names).
		AddSeries("N50", n50s).
		AddSeries("Total length", totals)

	page := components.NewPage()
	page.AddCharts(bar)
	return page.Render(w)
}

// Write puts the summary table and chart under <runPath>/reports. The chart is skipped
// when nothing was assembled.
func Write(runPath string, samples []*metadata.Sample) error {
	rows := Rows(samples)
	if len(rows) == 0 {
		return ErrNoSamples
	}
	dir := filepath.Join(runPath, Dir)
	if err := utils.MakePath(dir); err != nil {
		return err
	}

	if err := writeFile(filepath.Join(dir, TableFile), func(w io.Writer) error { return WriteTable(w, rows) }); err != nil {
		return err
	}
	err := writeFile(filepath.Join(dir, ChartFile), func(w io.Writer) error { return WriteChart(w, rows) })
	if errors.Is(err, ErrNoSamples) {
		os.Remove(filepath.Join(dir, ChartFile))
		return nil
	}
	return err
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
