package metrics

import (
	"fmt"
	"sort"
	"strings"

	"gonum.org/v1/gonum/mat"

	"github.com/sotafujii/pokeml/pkg/errors"
)

// ConfusionMatrix counts label agreement per class pair. Rows index the
// true class, columns the predicted class, both in Classes order.
type ConfusionMatrix struct {
	Classes []int
	Counts  [][]int
}

// NewConfusionMatrix tallies yTrue against yPred. The class set is the
// sorted union of labels seen in either vector.
func NewConfusionMatrix(yTrue, yPred *mat.VecDense) (*ConfusionMatrix, error) {
	if yTrue == nil || yPred == nil {
		return nil, errors.NewModelError("ConfusionMatrix", "nil input", errors.ErrEmptyData)
	}
	n := yTrue.Len()
	if n == 0 {
		return nil, errors.NewModelError("ConfusionMatrix", "empty data", errors.ErrEmptyData)
	}
	if yPred.Len() != n {
		return nil, errors.NewDimensionError("ConfusionMatrix", n, yPred.Len(), 0)
	}

	seen := make(map[int]struct{})
	label := func(v *mat.VecDense, i int) (int, error) {
		f := v.AtVec(i)
		if f != float64(int(f)) {
			return 0, errors.NewValueError("ConfusionMatrix", "labels must be integers")
		}
		return int(f), nil
	}
	for i := 0; i < n; i++ {
		t, err := label(yTrue, i)
		if err != nil {
			return nil, err
		}
		p, err := label(yPred, i)
		if err != nil {
			return nil, err
		}
		seen[t] = struct{}{}
		seen[p] = struct{}{}
	}

	classes := make([]int, 0, len(seen))
	for c := range seen {
		classes = append(classes, c)
	}
	sort.Ints(classes)

	idx := make(map[int]int, len(classes))
	for i, c := range classes {
		idx[c] = i
	}

	counts := make([][]int, len(classes))
	for i := range counts {
		counts[i] = make([]int, len(classes))
	}
	for i := 0; i < n; i++ {
		t := int(yTrue.AtVec(i))
		p := int(yPred.AtVec(i))
		counts[idx[t]][idx[p]]++
	}

	return &ConfusionMatrix{Classes: classes, Counts: counts}, nil
}

// At returns the count of samples with the given true and predicted
// labels, 0 for labels outside the class set.
func (cm *ConfusionMatrix) At(trueClass, predClass int) int {
	ti, pi := -1, -1
	for i, c := range cm.Classes {
		if c == trueClass {
			ti = i
		}
		if c == predClass {
			pi = i
		}
	}
	if ti < 0 || pi < 0 {
		return 0
	}
	return cm.Counts[ti][pi]
}

// Support returns the number of true samples of class c.
func (cm *ConfusionMatrix) Support(c int) int {
	total := 0
	for _, p := range cm.Classes {
		total += cm.At(c, p)
	}
	return total
}

// Total returns the number of samples tallied.
func (cm *ConfusionMatrix) Total() int {
	total := 0
	for _, row := range cm.Counts {
		for _, v := range row {
			total += v
		}
	}
	return total
}

// Accuracy returns the trace fraction.
func (cm *ConfusionMatrix) Accuracy() float64 {
	correct := 0
	for i := range cm.Counts {
		correct += cm.Counts[i][i]
	}
	return float64(correct) / float64(cm.Total())
}

// String renders the matrix as a text table with true classes as rows.
func (cm *ConfusionMatrix) String() string {
	var b strings.Builder
	b.WriteString("true\\pred")
	for _, c := range cm.Classes {
		fmt.Fprintf(&b, "%8d", c)
	}
	b.WriteByte('\n')
	for i, c := range cm.Classes {
		fmt.Fprintf(&b, "%9d", c)
		for j := range cm.Classes {
			fmt.Fprintf(&b, "%8d", cm.Counts[i][j])
		}
		if i < len(cm.Classes)-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

// ClassMetrics holds the per-class row of a classification report.
type ClassMetrics struct {
	Class     int
	Precision float64
	Recall    float64
	F1        float64
	Support   int
}

// Report summarizes per-class precision, recall and F1 together with
// overall accuracy and macro / support-weighted averages.
type Report struct {
	PerClass    []ClassMetrics
	Accuracy    float64
	MacroAvg    ClassMetrics
	WeightedAvg ClassMetrics
}

// ClassificationReport computes a Report from true and predicted labels.
func ClassificationReport(yTrue, yPred *mat.VecDense) (*Report, error) {
	cm, err := NewConfusionMatrix(yTrue, yPred)
	if err != nil {
		return nil, err
	}

	rep := &Report{Accuracy: cm.Accuracy()}
	total := cm.Total()

	for _, c := range cm.Classes {
		tp := cm.At(c, c)
		predicted, actual := 0, 0
		for _, other := range cm.Classes {
			predicted += cm.At(other, c)
			actual += cm.At(c, other)
		}

		m := ClassMetrics{Class: c, Support: actual}
		if predicted > 0 {
			m.Precision = float64(tp) / float64(predicted)
		}
		if actual > 0 {
			m.Recall = float64(tp) / float64(actual)
		}
		if m.Precision+m.Recall > 0 {
			m.F1 = 2 * m.Precision * m.Recall / (m.Precision + m.Recall)
		}
		rep.PerClass = append(rep.PerClass, m)

		k := float64(len(cm.Classes))
		rep.MacroAvg.Precision += m.Precision / k
		rep.MacroAvg.Recall += m.Recall / k
		rep.MacroAvg.F1 += m.F1 / k

		w := float64(m.Support) / float64(total)
		rep.WeightedAvg.Precision += m.Precision * w
		rep.WeightedAvg.Recall += m.Recall * w
		rep.WeightedAvg.F1 += m.F1 * w
	}
	rep.MacroAvg.Support = total
	rep.WeightedAvg.Support = total

	return rep, nil
}

// String renders the report in the familiar four-column layout.
func (r *Report) String() string {
	var b strings.Builder
	b.WriteString("              precision    recall  f1-score   support\n\n")
	for _, m := range r.PerClass {
		fmt.Fprintf(&b, "%12d    %9.2f %9.2f %9.2f %9d\n",
			m.Class, m.Precision, m.Recall, m.F1, m.Support)
	}
	fmt.Fprintf(&b, "\n    accuracy    %19s %9.2f %9d\n", "", r.Accuracy, r.MacroAvg.Support)
	fmt.Fprintf(&b, "   macro avg    %9.2f %9.2f %9.2f %9d\n",
		r.MacroAvg.Precision, r.MacroAvg.Recall, r.MacroAvg.F1, r.MacroAvg.Support)
	fmt.Fprintf(&b, "weighted avg    %9.2f %9.2f %9.2f %9d",
		r.WeightedAvg.Precision, r.WeightedAvg.Recall, r.WeightedAvg.F1, r.WeightedAvg.Support)
	return b.String()
}
