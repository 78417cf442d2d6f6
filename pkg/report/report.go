package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/pg-sharding/shardbench/pkg/models/bencherror"
	"github.com/pg-sharding/shardbench/pkg/record"
)

const (
	YLabel = "Time (in seconds)"
	XLabel = "Configurations"

	DefaultWidth = 50
)

type Bar struct {
	Label string
	Value float64
}

type Chart struct {
	Title  string
	YLabel string
	XLabel string
	Bars   []Bar
}

type Renderer interface {
	Render(w io.Writer, chart Chart) error
}

// BuildCharts returns the write and the read chart, bars in record order.
func BuildCharts(rec *record.PerformanceRecord) []Chart {
	return []Chart{
		buildChart("Write Performance", rec.Series(record.WriteKind)),
		buildChart("Read Performance", rec.Series(record.ReadKind)),
	}
}

func buildChart(title string, points []record.Point) Chart {
	c := Chart{
		Title:  title,
		YLabel: YLabel,
		XLabel: XLabel,
		Bars:   make([]Bar, 0, len(points)),
	}
	for _, p := range points {
		c.Bars = append(c.Bars, Bar{Label: p.Label, Value: p.Value})
	}
	return c
}

func RenderAll(w io.Writer, r Renderer, charts []Chart) error {
	for _, c := range charts {
		if err := r.Render(w, c); err != nil {
			return err
		}
	}
	return nil
}

// TextRenderer draws horizontal bars, the longest one Width runes wide.
type TextRenderer struct {
	Width int
}

var _ Renderer = TextRenderer{}

func (r TextRenderer) Render(w io.Writer, chart Chart) error {
	width := r.Width
	if width <= 0 {
		width = DefaultWidth
	}

	labelWidth := len(chart.XLabel)
	maxValue := 0.0
	for _, b := range chart.Bars {
		labelWidth = max(labelWidth, len(b.Label))
		maxValue = math.Max(maxValue, b.Value)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s\n%s\n", chart.Title, strings.Repeat("=", len(chart.Title)))
	fmt.Fprintf(&sb, "%-*s | %s\n", labelWidth, chart.XLabel, chart.YLabel)
	if len(chart.Bars) == 0 {
		sb.WriteString("(no data)\n")
	}
	for _, b := range chart.Bars {
		n := 0
		if maxValue > 0 {
			n = int(math.Round(b.Value / maxValue * float64(width)))
		}
		fmt.Fprintf(&sb, "%-*s | %s %s\n", labelWidth, b.Label, strings.Repeat("#", n), strconv.FormatFloat(b.Value, 'g', 6, 64))
	}
	sb.WriteByte('\n')

	_, err := io.WriteString(w, sb.String())
	return err
}

// CSVRenderer writes one chart,configuration,seconds row per bar. The
// header row is written once per renderer.
type CSVRenderer struct {
	headerDone bool
}

var _ Renderer = &CSVRenderer{}

func (r *CSVRenderer) Render(w io.Writer, chart Chart) error {
	cw := csv.NewWriter(w)
	if !r.headerDone {
		if err := cw.Write([]string{"chart", "configuration", "seconds"}); err != nil {
			return err
		}
		r.headerDone = true
	}
	for _, b := range chart.Bars {
		if err := cw.Write([]string{chart.Title, b.Label, strconv.FormatFloat(b.Value, 'g', -1, 64)}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func NewRenderer(format string, width int) (Renderer, error) {
	switch format {
	case "text", "":
		return TextRenderer{Width: width}, nil
	case "csv":
		return &CSVRenderer{}, nil
	default:
		return nil, bencherror.Newf(bencherror.BENCH_CONFIG, "unknown report format %q", format)
	}
}
