// Package render turns a loaded tips table into PNG chart artifacts.
// Rendering is deterministic: fixed canvas sizes, fixed styles, and
// zero-anchored histogram bins, so rerunning on the same input produces
// byte-identical files.
package render

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/KaramelBytes/tipsight/internal/dataset"
	"github.com/KaramelBytes/tipsight/internal/stats"
)

// Options controls canvas geometry and histogram binning.
type Options struct {
	Width        int
	Height       int
	HistBinWidth float64
}

// DefaultOptions returns the canvas defaults used when no config overrides.
func DefaultOptions() Options {
	return Options{Width: 1024, Height: 640, HistBinWidth: 2.5}
}

// Artifact is one rendered chart file.
type Artifact struct {
	Name string
	Path string
}

type renderable interface {
	Render(rp chart.RendererProvider, w io.Writer) error
}

type builder struct {
	name  string
	build func(*dataset.Table, Options) (renderable, error)
}

// Fixed artifact order; Render walks this, never a map.
var builders = []builder{
	{"bill_vs_tip_scatter.png", scatterBillTip},
	{"tip_rate_by_day.png", tipRateByDay},
	{"tip_rate_by_time.png", tipRateByTime},
	{"mean_tip_by_size.png", meanTipBySize},
	{"tip_rate_hist.png", tipRateHist},
}

// Names lists the chart artifacts in render order.
func Names() []string {
	out := make([]string, len(builders))
	for i, b := range builders {
		out[i] = b.name
	}
	return out
}

// Render writes chart artifacts for t into dir. If only is non-empty it
// restricts output to the named artifacts; an unknown name is an error.
// Any failure is fatal and may leave earlier artifacts on disk.
func Render(t *dataset.Table, dir string, opt Options, only []string) ([]Artifact, error) {
	if t.Len() == 0 {
		return nil, stats.ErrNoData
	}
	wanted := map[string]bool{}
	for _, name := range only {
		known := false
		for _, b := range builders {
			if b.name == name {
				known = true
				break
			}
		}
		if !known {
			return nil, fmt.Errorf("unknown chart %q (available: %s)", name, strings.Join(Names(), ", "))
		}
		wanted[name] = true
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	var arts []Artifact
	for _, b := range builders {
		if len(wanted) > 0 && !wanted[b.name] {
			continue
		}
		c, err := b.build(t, opt)
		if err != nil {
			return nil, fmt.Errorf("build %s: %w", b.name, err)
		}
		path := filepath.Join(dir, b.name)
		if err := writePNG(c, path); err != nil {
			return nil, err
		}
		arts = append(arts, Artifact{Name: b.name, Path: path})
	}
	return arts, nil
}

func writePNG(c renderable, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", filepath.Base(path), err)
	}
	if err := c.Render(chart.PNG, f); err != nil {
		f.Close()
		return fmt.Errorf("render %s: %w", filepath.Base(path), err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	return nil
}

func dotStyle(col drawing.Color) chart.Style {
	return chart.Style{
		StrokeWidth: chart.Disabled,
		DotWidth:    4,
		DotColor:    col,
	}
}

var sexColors = map[dataset.Sex]drawing.Color{
	dataset.Male:   chart.ColorBlue,
	dataset.Female: chart.ColorGreen,
}

// scatterBillTip plots total bill against tip, one dot series per sex.
func scatterBillTip(t *dataset.Table, opt Options) (renderable, error) {
	var series []chart.Series
	for _, sex := range dataset.Sexes {
		var xs, ys []float64
		for _, r := range t.Records {
			if r.Sex != sex {
				continue
			}
			xs = append(xs, r.TotalBill)
			ys = append(ys, r.Tip)
		}
		if len(xs) == 0 {
			continue
		}
		if len(xs) == 1 {
			// go-chart needs at least two X values to derive a range.
			xs = append(xs, xs[0]+0.01)
			ys = append(ys, ys[0])
		}
		series = append(series, chart.ContinuousSeries{
			Name:    string(sex),
			XValues: xs,
			YValues: ys,
			Style:   dotStyle(sexColors[sex]),
		})
	}
	if len(series) == 0 {
		return nil, fmt.Errorf("no points to plot")
	}
	ch := chart.Chart{
		Title:      "Total Bill vs Tip",
		Width:      opt.Width,
		Height:     opt.Height,
		Background: chart.Style{Padding: chart.Box{Top: 24, Left: 16, Right: 16, Bottom: 16}},
		XAxis:      chart.XAxis{Name: "Total bill ($)"},
		YAxis:      chart.YAxis{Name: "Tip ($)"},
		Series:     series,
	}
	ch.Elements = []chart.Renderable{chart.Legend(&ch)}
	return &ch, nil
}

func tipRateByDay(t *dataset.Table, opt Options) (renderable, error) {
	return groupBars("Mean Tip Rate by Day (%)", stats.ByDay(t), opt,
		func(g stats.GroupMean) float64 { return g.MeanTipRate })
}

func tipRateByTime(t *dataset.Table, opt Options) (renderable, error) {
	return groupBars("Mean Tip Rate by Time and Smoker (%)", stats.ByMealSmoker(t), opt,
		func(g stats.GroupMean) float64 { return g.MeanTipRate })
}

func meanTipBySize(t *dataset.Table, opt Options) (renderable, error) {
	return groupBars("Mean Tip by Party Size ($)", stats.BySize(t), opt,
		func(g stats.GroupMean) float64 { return g.MeanTip })
}

func groupBars(title string, groups []stats.GroupMean, opt Options, value func(stats.GroupMean) float64) (renderable, error) {
	if len(groups) == 0 {
		return nil, fmt.Errorf("no groups to plot")
	}
	bars := make([]chart.Value, len(groups))
	for i, g := range groups {
		bars[i] = chart.Value{Label: g.Key, Value: value(g)}
	}
	return &chart.BarChart{
		Title:        title,
		Width:        opt.Width,
		Height:       opt.Height,
		BarWidth:     60,
		Background:   chart.Style{Padding: chart.Box{Top: 24, Left: 16, Right: 16, Bottom: 16}},
		XAxis:        chart.Style{},
		YAxis:        chart.YAxis{},
		UseBaseValue: true,
		BaseValue:    0,
		Bars:         bars,
	}, nil
}

// tipRateHist buckets tip rate into fixed-width bins anchored at zero.
func tipRateHist(t *dataset.Table, opt Options) (renderable, error) {
	rates := make([]float64, t.Len())
	for i, r := range t.Records {
		rates[i] = r.TipRate()
	}
	binWidth := opt.HistBinWidth
	if binWidth <= 0 {
		binWidth = DefaultOptions().HistBinWidth
	}
	bins := stats.Histogram(rates, binWidth)
	if len(bins) == 0 {
		return nil, fmt.Errorf("no bins to plot")
	}
	bars := make([]chart.Value, len(bins))
	for i, bin := range bins {
		bars[i] = chart.Value{
			Label: fmt.Sprintf("%.1f", bin.Lo),
			Value: float64(bin.Count),
		}
	}
	return &chart.BarChart{
		Title:        "Tip Rate Distribution (%)",
		Width:        opt.Width,
		Height:       opt.Height,
		BarWidth:     40,
		Background:   chart.Style{Padding: chart.Box{Top: 24, Left: 16, Right: 16, Bottom: 16}},
		XAxis:        chart.Style{},
		YAxis:        chart.YAxis{},
		UseBaseValue: true,
		BaseValue:    0,
		Bars:         bars,
	}, nil
}
