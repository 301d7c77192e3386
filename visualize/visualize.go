// Package visualize renders evaluation artifacts as image files:
// confusion-matrix heatmaps, feature-importance bar charts and feature
// histograms. The output format follows the file extension (png, svg,
// pdf and the other formats gonum/plot supports).
package visualize

import (
	"fmt"
	"sort"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/sotafujii/pokeml/metrics"
	"github.com/sotafujii/pokeml/pkg/errors"
)

// confusionGrid adapts a confusion matrix to plotter.GridXYZ. Rows are
// drawn bottom-up, so the first true class sits at the bottom.
type confusionGrid struct {
	counts [][]int
}

func (g confusionGrid) Dims() (c, r int) { return len(g.counts), len(g.counts) }
func (g confusionGrid) Z(c, r int) float64 {
	return float64(g.counts[r][c])
}
func (g confusionGrid) X(c int) float64 { return float64(c) }
func (g confusionGrid) Y(r int) float64 { return float64(r) }

// ConfusionMatrixHeatmap renders cm as a heatmap with predicted classes
// on the x axis and true classes on the y axis.
func ConfusionMatrixHeatmap(cm *metrics.ConfusionMatrix, title, path string) error {
	if cm == nil || len(cm.Classes) == 0 {
		return errors.NewModelError("ConfusionMatrixHeatmap", "empty confusion matrix", errors.ErrEmptyData)
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "predicted"
	p.Y.Label.Text = "true"

	pal := moreland.SmoothBlueRed().Palette(255)
	hm := plotter.NewHeatMap(confusionGrid{counts: cm.Counts}, pal)
	p.Add(hm)

	ticks := make([]plot.Tick, len(cm.Classes))
	for i, c := range cm.Classes {
		ticks[i] = plot.Tick{Value: float64(i), Label: fmt.Sprintf("%d", c)}
	}
	p.X.Tick.Marker = plot.ConstantTicks(ticks)
	p.Y.Tick.Marker = plot.ConstantTicks(ticks)

	if err := p.Save(5*vg.Inch, 5*vg.Inch, path); err != nil {
		return errors.Wrapf(err, "pokeml: ConfusionMatrixHeatmap: saving %s", path)
	}
	return nil
}

// FeatureImportanceBars renders a bar chart of feature importances,
// sorted descending. topN limits the number of bars; 0 keeps all.
func FeatureImportanceBars(names []string, importances []float64, topN int, title, path string) error {
	if len(names) == 0 {
		return errors.NewModelError("FeatureImportanceBars", "no features", errors.ErrEmptyData)
	}
	if len(names) != len(importances) {
		return errors.NewDimensionError("FeatureImportanceBars", len(names), len(importances), 0)
	}

	type pair struct {
		name string
		imp  float64
	}
	pairs := make([]pair, len(names))
	for i := range names {
		pairs[i] = pair{name: names[i], imp: importances[i]}
	}
	sort.SliceStable(pairs, func(i, j int) bool { return pairs[i].imp > pairs[j].imp })
	if topN > 0 && topN < len(pairs) {
		pairs = pairs[:topN]
	}

	values := make(plotter.Values, len(pairs))
	labels := make([]string, len(pairs))
	for i, pr := range pairs {
		values[i] = pr.imp
		labels[i] = pr.name
	}

	p := plot.New()
	p.Title.Text = title
	p.Y.Label.Text = "importance"

	bars, err := plotter.NewBarChart(values, vg.Points(18))
	if err != nil {
		return errors.Wrap(err, "pokeml: FeatureImportanceBars: building chart")
	}
	p.Add(bars)
	p.NominalX(labels...)
	p.X.Tick.Label.Rotation = 0.9
	p.X.Tick.Label.XAlign = -0.9

	width := vg.Length(len(pairs)) * vg.Points(30)
	if width < 4*vg.Inch {
		width = 4 * vg.Inch
	}
	if err := p.Save(width, 4*vg.Inch, path); err != nil {
		return errors.Wrapf(err, "pokeml: FeatureImportanceBars: saving %s", path)
	}
	return nil
}

// Histogram renders the distribution of values in the given number of
// bins. NaN entries are skipped.
func Histogram(values []float64, bins int, title, path string) error {
	pts := make(plotter.Values, 0, len(values))
	for _, v := range values {
		if v == v { // drop NaN
			pts = append(pts, v)
		}
	}
	if len(pts) == 0 {
		return errors.NewModelError("Histogram", "no observed values", errors.ErrEmptyData)
	}
	if bins <= 0 {
		bins = 10
	}

	p := plot.New()
	p.Title.Text = title
	p.Y.Label.Text = "count"

	h, err := plotter.NewHist(pts, bins)
	if err != nil {
		return errors.Wrap(err, "pokeml: Histogram: building histogram")
	}
	p.Add(h)

	if err := p.Save(5*vg.Inch, 4*vg.Inch, path); err != nil {
		return errors.Wrapf(err, "pokeml: Histogram: saving %s", path)
	}
	return nil
}

// CVScoreBars renders one bar per cross-validation fold score.
func CVScoreBars(scores []float64, title, path string) error {
	if len(scores) == 0 {
		return errors.NewModelError("CVScoreBars", "no scores", errors.ErrEmptyData)
	}

	values := make(plotter.Values, len(scores))
	labels := make([]string, len(scores))
	for i, s := range scores {
		values[i] = s
		labels[i] = fmt.Sprintf("fold %d", i+1)
	}

	p := plot.New()
	p.Title.Text = title
	p.Y.Label.Text = "score"
	p.Y.Max = 1.0

	bars, err := plotter.NewBarChart(values, vg.Points(24))
	if err != nil {
		return errors.Wrap(err, "pokeml: CVScoreBars: building chart")
	}
	p.Add(bars)
	p.NominalX(labels...)

	if err := p.Save(5*vg.Inch, 4*vg.Inch, path); err != nil {
		return errors.Wrapf(err, "pokeml: CVScoreBars: saving %s", path)
	}
	return nil
}
