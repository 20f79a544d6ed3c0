package model

import (
	"encoding/json"
	"fmt"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gonum.org/v1/gonum/integrate"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/gunter0128/CRM-AI-retention-agents/internal/features"
)

// TrainOptions control the train/test split and the gradient-descent fit.
// The defaults reproduce the reference training run; with a fixed Seed the
// whole fit is deterministic.
type TrainOptions struct {
	TestFraction float64
	Seed         int64
	LearningRate float64
	Iterations   int
}

// DefaultTrainOptions returns the standard seeded training configuration.
func DefaultTrainOptions() TrainOptions {
	return TrainOptions{
		TestFraction: 0.2,
		Seed:         42,
		LearningRate: 0.1,
		Iterations:   1500,
	}
}

// ClassMetrics is the per-class slice of the evaluation report.
type ClassMetrics struct {
	Label     int
	Precision float64
	Recall    float64
	F1        float64
	Support   int
}

// Metrics is the observational test-set evaluation. Nothing gates on it.
type Metrics struct {
	AUC      float64
	Classes  []ClassMetrics
	TestSize int
}

// Report renders the metrics in a compact sklearn-like table.
func (m Metrics) Report() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Test AUC: %.4f\n", m.AUC)
	fmt.Fprintf(&b, "%8s %10s %8s %8s %8s\n", "class", "precision", "recall", "f1", "support")
	for _, c := range m.Classes {
		fmt.Fprintf(&b, "%8d %10.3f %8.3f %8.3f %8d\n", c.Label, c.Precision, c.Recall, c.F1, c.Support)
	}
	fmt.Fprintf(&b, "test rows: %d\n", m.TestSize)
	return b.String()
}

// Train fits a logistic regression on the engineered feature table.
//
// Rows are split into seeded, label-stratified train/test partitions; the fit
// is full-batch gradient descent on standardized features. The returned model
// records the table's exact column order and its schema hash.
func Train(t features.FeatureTable, opts TrainOptions) (*Model, Metrics, error) {
	if len(t.Rows) < 4 {
		return nil, Metrics{}, fmt.Errorf("feature table has %d rows, need at least 4 to split", len(t.Rows))
	}
	if len(t.Columns) == 0 {
		return nil, Metrics{}, fmt.Errorf("feature table has no feature columns")
	}

	trainIdx, testIdx := stratifiedSplit(t.Rows, opts.TestFraction, opts.Seed)
	if len(trainIdx) == 0 || len(testIdx) == 0 {
		return nil, Metrics{}, fmt.Errorf("degenerate split: train=%d test=%d", len(trainIdx), len(testIdx))
	}

	d := len(t.Columns)
	means, scales := fitScaler(t, trainIdx)

	// Standardized train matrix and label vector.
	n := len(trainIdx)
	data := make([]float64, n*d)
	y := make([]float64, n)
	for i, ri := range trainIdx {
		row := t.Rows[ri]
		for j, v := range row.Values {
			data[i*d+j] = (v - means[j]) / scales[j]
		}
		y[i] = float64(row.Label)
	}
	X := mat.NewDense(n, d, data)

	w := mat.NewVecDense(d, nil)
	bias := 0.0
	p := mat.NewVecDense(n, nil)
	r := mat.NewVecDense(n, nil)
	grad := mat.NewVecDense(d, nil)

	for iter := 0; iter < opts.Iterations; iter++ {
		p.MulVec(X, w)
		biasGrad := 0.0
		for i := 0; i < n; i++ {
			pi := sigmoid(p.AtVec(i) + bias)
			r.SetVec(i, pi-y[i])
			biasGrad += pi - y[i]
		}
		grad.MulVec(X.T(), r)
		w.AddScaledVec(w, -opts.LearningRate/float64(n), grad)
		bias -= opts.LearningRate * biasGrad / float64(n)
	}

	m := &Model{
		Columns:    append([]string{}, t.Columns...),
		Weights:    append([]float64{}, w.RawVector().Data...),
		Bias:       bias,
		Means:      means,
		Scales:     scales,
		SchemaHash: SchemaHash(t.Columns),
	}

	metrics, err := evaluate(m, t, testIdx)
	if err != nil {
		return nil, Metrics{}, err
	}
	return m, metrics, nil
}

// stratifiedSplit partitions row indices so the label balance is preserved in
// both partitions. Same rows + same seed yields the same split.
func stratifiedSplit(rows []features.FeatureRow, testFraction float64, seed int64) (trainIdx, testIdx []int) {
	rnd := rand.New(rand.NewSource(seed))
	byLabel := map[int][]int{}
	for i, row := range rows {
		byLabel[row.Label] = append(byLabel[row.Label], i)
	}
	labels := make([]int, 0, len(byLabel))
	for label := range byLabel {
		labels = append(labels, label)
	}
	sort.Ints(labels)

	for _, label := range labels {
		idx := byLabel[label]
		rnd.Shuffle(len(idx), func(a, b int) { idx[a], idx[b] = idx[b], idx[a] })
		nTest := int(float64(len(idx)) * testFraction)
		if nTest == 0 && len(idx) > 1 {
			nTest = 1
		}
		testIdx = append(testIdx, idx[:nTest]...)
		trainIdx = append(trainIdx, idx[nTest:]...)
	}
	sort.Ints(trainIdx)
	sort.Ints(testIdx)
	return trainIdx, testIdx
}

func fitScaler(t features.FeatureTable, trainIdx []int) (means, scales []float64) {
	d := len(t.Columns)
	means = make([]float64, d)
	scales = make([]float64, d)
	n := float64(len(trainIdx))
	for _, ri := range trainIdx {
		for j, v := range t.Rows[ri].Values {
			means[j] += v
		}
	}
	for j := range means {
		means[j] /= n
	}
	for _, ri := range trainIdx {
		for j, v := range t.Rows[ri].Values {
			dv := v - means[j]
			scales[j] += dv * dv
		}
	}
	for j := range scales {
		scales[j] = math.Sqrt(scales[j] / n)
		if scales[j] == 0 {
			scales[j] = 1
		}
	}
	return means, scales
}

func evaluate(m *Model, t features.FeatureTable, testIdx []int) (Metrics, error) {
	scores := make([]float64, 0, len(testIdx))
	classes := make([]bool, 0, len(testIdx))
	labels := make([]int, 0, len(testIdx))
	for _, ri := range testIdx {
		prob, err := m.PredictProba(t.Rows[ri].Values)
		if err != nil {
			return Metrics{}, err
		}
		scores = append(scores, prob)
		classes = append(classes, t.Rows[ri].Label == 1)
		labels = append(labels, t.Rows[ri].Label)
	}

	metrics := Metrics{TestSize: len(testIdx)}

	aucScores := append([]float64{}, scores...)
	aucClasses := append([]bool{}, classes...)
	stat.SortWeightedLabeled(aucScores, aucClasses, nil)
	tpr, fpr, _ := stat.ROC(nil, aucScores, aucClasses, nil)
	metrics.AUC = integrate.Trapezoidal(fpr, tpr)

	for _, label := range []int{0, 1} {
		var tp, fp, fn, support int
		for i, actual := range labels {
			predicted := 0
			if scores[i] >= 0.5 {
				predicted = 1
			}
			if actual == label {
				support++
			}
			switch {
			case predicted == label && actual == label:
				tp++
			case predicted == label && actual != label:
				fp++
			case predicted != label && actual == label:
				fn++
			}
		}
		metrics.Classes = append(metrics.Classes, ClassMetrics{
			Label:     label,
			Precision: safeDiv(tp, tp+fp),
			Recall:    safeDiv(tp, tp+fn),
			F1:        f1(safeDiv(tp, tp+fp), safeDiv(tp, tp+fn)),
			Support:   support,
		})
	}
	return metrics, nil
}

// SaveSchema writes the ordered feature column list, the single source of
// truth for inference-time column selection.
func SaveSchema(path string, columns []string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating schema dir: %w", err)
	}
	data, err := json.MarshalIndent(columns, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding feature schema: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

// LoadSchema reads the persisted ordered feature column list.
func LoadSchema(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading feature schema %s: %w", path, err)
	}
	var columns []string
	if err := json.Unmarshal(data, &columns); err != nil {
		return nil, fmt.Errorf("decoding feature schema %s: %w", path, err)
	}
	return columns, nil
}

func safeDiv(num, den int) float64 {
	if den == 0 {
		return 0
	}
	return float64(num) / float64(den)
}

func f1(precision, recall float64) float64 {
	if precision+recall == 0 {
		return 0
	}
	return 2 * precision * recall / (precision + recall)
}
