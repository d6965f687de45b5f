// Package stats computes the descriptive and grouped aggregates reported by
// tipsight: per-measure distributions, mean bill/tip/tip-rate per categorical
// dimension, and a Pearson correlation matrix across the numeric measures.
package stats

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	mstats "github.com/aclements/go-moremath/stats"
	"github.com/google/uuid"

	"github.com/KaramelBytes/tipsight/internal/dataset"
)

// ErrNoData is returned when the table has a header but zero rows.
var ErrNoData = errors.New("no data rows")

// Descriptive captures the distribution of a single numeric measure.
type Descriptive struct {
	Count  int     `yaml:"count"`
	Mean   float64 `yaml:"mean"`
	StdDev float64 `yaml:"std_dev"`
	Min    float64 `yaml:"min"`
	Q1     float64 `yaml:"q1"`
	Median float64 `yaml:"median"`
	Q3     float64 `yaml:"q3"`
	Max    float64 `yaml:"max"`
}

// Describe computes count, mean, sample standard deviation, and quartiles.
func Describe(xs []float64) Descriptive {
	s := mstats.Sample{Xs: append([]float64(nil), xs...)}
	s.Sort()
	d := Descriptive{
		Count:  len(xs),
		Mean:   s.Mean(),
		Min:    s.Quantile(0),
		Q1:     s.Quantile(0.25),
		Median: s.Quantile(0.5),
		Q3:     s.Quantile(0.75),
		Max:    s.Quantile(1),
	}
	if len(xs) > 1 {
		d.StdDev = s.StdDev()
	}
	return d
}

// GroupMean holds the mean bill, tip, and tip rate for one group key.
type GroupMean struct {
	Key         string  `yaml:"key"`
	Count       int     `yaml:"count"`
	MeanBill    float64 `yaml:"mean_total_bill"`
	MeanTip     float64 `yaml:"mean_tip"`
	MeanTipRate float64 `yaml:"mean_tip_rate"`
}

// CorrMatrix is a symmetric Pearson correlation matrix over Measures.
type CorrMatrix struct {
	Measures []string    `yaml:"measures"`
	Values   [][]float64 `yaml:"values"`
}

// At returns the correlation between measures a and b, or 0 if unknown.
func (m *CorrMatrix) At(a, b string) float64 {
	ia, ib := -1, -1
	for i, name := range m.Measures {
		if name == a {
			ia = i
		}
		if name == b {
			ib = i
		}
	}
	if ia < 0 || ib < 0 {
		return 0
	}
	return m.Values[ia][ib]
}

// Summary is the full set of aggregates for one dataset.
type Summary struct {
	RunID  string `yaml:"run_id"`
	Source string `yaml:"source"`
	Rows   int    `yaml:"rows"`

	TotalBill Descriptive `yaml:"total_bill"`
	Tip       Descriptive `yaml:"tip"`
	TipRate   Descriptive `yaml:"tip_rate"`

	BySex    []GroupMean `yaml:"by_sex"`
	BySmoker []GroupMean `yaml:"by_smoker"`
	ByDay    []GroupMean `yaml:"by_day"`
	ByMeal   []GroupMean `yaml:"by_time"`
	BySize   []GroupMean `yaml:"by_size"`

	Corr *CorrMatrix `yaml:"correlations"`
}

// Summarize computes all aggregates for t. A header-only table returns
// ErrNoData; callers treat that as fatal.
func Summarize(t *dataset.Table) (*Summary, error) {
	if t.Len() == 0 {
		return nil, ErrNoData
	}
	bills := make([]float64, t.Len())
	tips := make([]float64, t.Len())
	rates := make([]float64, t.Len())
	sizes := make([]float64, t.Len())
	for i, r := range t.Records {
		bills[i] = r.TotalBill
		tips[i] = r.Tip
		rates[i] = r.TipRate()
		sizes[i] = float64(r.Size)
	}
	return &Summary{
		RunID:     uuid.NewString(),
		Source:    t.Source,
		Rows:      t.Len(),
		TotalBill: Describe(bills),
		Tip:       Describe(tips),
		TipRate:   Describe(rates),
		BySex:     BySex(t),
		BySmoker:  BySmoker(t),
		ByDay:     ByDay(t),
		ByMeal:    ByMeal(t),
		BySize:    BySize(t),
		Corr:      Correlations(bills, tips, sizes, rates),
	}, nil
}

// BySex returns grouped means in canonical Male, Female order.
func BySex(t *dataset.Table) []GroupMean {
	keys := make([]string, len(dataset.Sexes))
	for i, s := range dataset.Sexes {
		keys[i] = string(s)
	}
	return groupMeans(t, keys, func(r dataset.Record) string { return string(r.Sex) })
}

// BySmoker returns grouped means in Yes, No order.
func BySmoker(t *dataset.Table) []GroupMean {
	keys := make([]string, len(dataset.Smokers))
	for i, s := range dataset.Smokers {
		keys[i] = string(s)
	}
	return groupMeans(t, keys, func(r dataset.Record) string { return string(r.Smoker) })
}

// ByDay returns grouped means in Thur..Sun order.
func ByDay(t *dataset.Table) []GroupMean {
	keys := make([]string, len(dataset.Days))
	for i, d := range dataset.Days {
		keys[i] = string(d)
	}
	return groupMeans(t, keys, func(r dataset.Record) string { return string(r.Day) })
}

// ByMeal returns grouped means in Lunch, Dinner order.
func ByMeal(t *dataset.Table) []GroupMean {
	keys := make([]string, len(dataset.Meals))
	for i, m := range dataset.Meals {
		keys[i] = string(m)
	}
	return groupMeans(t, keys, func(r dataset.Record) string { return string(r.Meal) })
}

// ByMealSmoker returns grouped means keyed by "Meal/Smoker", meal-major.
func ByMealSmoker(t *dataset.Table) []GroupMean {
	var keys []string
	for _, m := range dataset.Meals {
		for _, s := range dataset.Smokers {
			keys = append(keys, string(m)+"/"+string(s))
		}
	}
	return groupMeans(t, keys, func(r dataset.Record) string {
		return string(r.Meal) + "/" + string(r.Smoker)
	})
}

// BySize returns grouped means for each party size present, ascending.
func BySize(t *dataset.Table) []GroupMean {
	seen := map[int]bool{}
	var sizes []int
	for _, r := range t.Records {
		if !seen[r.Size] {
			seen[r.Size] = true
			sizes = append(sizes, r.Size)
		}
	}
	sort.Ints(sizes)
	keys := make([]string, len(sizes))
	for i, n := range sizes {
		keys[i] = fmt.Sprintf("%d", n)
	}
	return groupMeans(t, keys, func(r dataset.Record) string { return fmt.Sprintf("%d", r.Size) })
}

// groupMeans accumulates sums per key and emits means in the given key
// order, skipping keys with no records.
func groupMeans(t *dataset.Table, keys []string, keyOf func(dataset.Record) string) []GroupMean {
	type acc struct {
		n                  int
		bill, tip, tipRate float64
	}
	byKey := map[string]*acc{}
	for _, r := range t.Records {
		k := keyOf(r)
		a := byKey[k]
		if a == nil {
			a = &acc{}
			byKey[k] = a
		}
		a.n++
		a.bill += r.TotalBill
		a.tip += r.Tip
		a.tipRate += r.TipRate()
	}
	out := make([]GroupMean, 0, len(keys))
	for _, k := range keys {
		a := byKey[k]
		if a == nil {
			continue
		}
		n := float64(a.n)
		out = append(out, GroupMean{
			Key:         k,
			Count:       a.n,
			MeanBill:    a.bill / n,
			MeanTip:     a.tip / n,
			MeanTipRate: a.tipRate / n,
		})
	}
	return out
}

// Correlations builds the Pearson matrix over the four numeric measures.
func Correlations(bills, tips, sizes, rates []float64) *CorrMatrix {
	names := []string{"total_bill", "tip", "size", "tip_rate"}
	cols := [][]float64{bills, tips, sizes, rates}
	n := len(names)
	mat := make([][]float64, n)
	for i := range mat {
		mat[i] = make([]float64, n)
		mat[i][i] = 1
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			r := pearson(cols[i], cols[j])
			mat[i][j] = r
			mat[j][i] = r
		}
	}
	return &CorrMatrix{Measures: names, Values: mat}
}

func pearson(xs, ys []float64) float64 {
	var n, sumX, sumY, sumXX, sumYY, sumXY float64
	for i := range xs {
		x, y := xs[i], ys[i]
		n++
		sumX += x
		sumY += y
		sumXX += x * x
		sumYY += y * y
		sumXY += x * y
	}
	if n < 2 {
		return 0
	}
	denom := math.Sqrt((n*sumXX - sumX*sumX) * (n*sumYY - sumY*sumY))
	if denom == 0 {
		return 0
	}
	r := (n*sumXY - sumX*sumY) / denom
	if r > 1 {
		r = 1
	} else if r < -1 {
		r = -1
	}
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return 0
	}
	return r
}

// Bin is one histogram bucket covering [Lo, Hi).
type Bin struct {
	Lo, Hi float64
	Count  int
}

// Histogram buckets xs into fixed-width bins anchored at zero, so bin edges
// are stable across runs regardless of the observed minimum.
func Histogram(xs []float64, binWidth float64) []Bin {
	if len(xs) == 0 || binWidth <= 0 {
		return nil
	}
	counts := map[int]int{}
	maxIdx := 0
	for _, x := range xs {
		i := int(math.Floor(x / binWidth))
		if i < 0 {
			i = 0
		}
		counts[i]++
		if i > maxIdx {
			maxIdx = i
		}
	}
	bins := make([]Bin, maxIdx+1)
	for i := range bins {
		bins[i] = Bin{Lo: float64(i) * binWidth, Hi: float64(i+1) * binWidth, Count: counts[i]}
	}
	return bins
}

// Text renders the summary as a sectioned plain-text report.
func (s *Summary) Text() string {
	var b strings.Builder
	b.WriteString("[TIPS SUMMARY]\n")
	b.WriteString(fmt.Sprintf("Source: %s\n", s.Source))
	b.WriteString(fmt.Sprintf("Rows: %d\n", s.Rows))

	b.WriteString("\n[MEASURES]\n")
	writeMeasure(&b, "total_bill ($)", s.TotalBill)
	writeMeasure(&b, "tip ($)", s.Tip)
	writeMeasure(&b, "tip_rate (%)", s.TipRate)

	writeGroups(&b, "BY SEX", s.BySex)
	writeGroups(&b, "BY SMOKER", s.BySmoker)
	writeGroups(&b, "BY DAY", s.ByDay)
	writeGroups(&b, "BY TIME", s.ByMeal)
	writeGroups(&b, "BY PARTY SIZE", s.BySize)

	if s.Corr != nil {
		b.WriteString("\n[CORRELATIONS]\n")
		n := len(s.Corr.Measures)
		for i := 0; i < n; i++ {
			for j := i + 1; j < n; j++ {
				b.WriteString(fmt.Sprintf("- %s ~ %s: r=%.3f\n",
					s.Corr.Measures[i], s.Corr.Measures[j], s.Corr.Values[i][j]))
			}
		}
	}
	return b.String()
}

func writeMeasure(b *strings.Builder, name string, d Descriptive) {
	b.WriteString(fmt.Sprintf("- %s: mean %.4g, std %.4g, min %.4g, q1 %.4g, median %.4g, q3 %.4g, max %.4g\n",
		name, d.Mean, d.StdDev, d.Min, d.Q1, d.Median, d.Q3, d.Max))
}

func writeGroups(b *strings.Builder, title string, gs []GroupMean) {
	if len(gs) == 0 {
		return
	}
	b.WriteString(fmt.Sprintf("\n[%s]\n", title))
	for _, g := range gs {
		b.WriteString(fmt.Sprintf("- %s (n=%d): bill %.2f, tip %.2f, tip rate %.2f%%\n",
			g.Key, g.Count, g.MeanBill, g.MeanTip, g.MeanTipRate))
	}
}
