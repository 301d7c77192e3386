// Command pokeml runs the full legendary-Pokemon classification
// workflow against a Pokedex CSV: load and clean the table, encode
// categoricals, impute missing values with k-NN, cross-validate a
// random forest, then train on a split and report hold-out metrics.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/sotafujii/pokeml/core/model"
	"github.com/sotafujii/pokeml/dataset"
	"github.com/sotafujii/pokeml/metrics"
	"github.com/sotafujii/pokeml/modelselection"
	"github.com/sotafujii/pokeml/pkg/log"
	"github.com/sotafujii/pokeml/preprocessing"
	"github.com/sotafujii/pokeml/tree"
	"github.com/sotafujii/pokeml/visualize"
)

type config struct {
	dataPath   string
	target     string
	testSize   float64
	folds      int
	trees      int
	maxDepth   int
	neighbors  int
	seed       int64
	scoring    string
	outDir     string
	logLevel   string
	histColumn string
	modelOut   string
}

func main() {
	cfg := parseFlags()
	log.SetupLogger(cfg.logLevel)

	if err := run(cfg); err != nil {
		slog.Error("workflow failed", log.ErrAttr(err))
		os.Exit(1)
	}
}

func parseFlags() config {
	var cfg config
	flag.StringVar(&cfg.dataPath, "data", "pokemon.csv", "path to the Pokedex CSV")
	flag.StringVar(&cfg.target, "target", dataset.PokemonTarget, "boolean target column")
	flag.Float64Var(&cfg.testSize, "test-size", 0.25, "hold-out fraction in (0, 1)")
	flag.IntVar(&cfg.folds, "folds", 5, "cross-validation folds")
	flag.IntVar(&cfg.trees, "trees", 100, "trees in the forest")
	flag.IntVar(&cfg.maxDepth, "max-depth", 0, "tree depth limit, 0 for unlimited")
	flag.IntVar(&cfg.neighbors, "neighbors", 5, "neighbours for k-NN imputation")
	flag.Int64Var(&cfg.seed, "seed", 42, "random seed")
	flag.StringVar(&cfg.scoring, "scoring", modelselection.ScoringAccuracy, "cv metric: accuracy, f1 or logloss")
	flag.StringVar(&cfg.outDir, "outdir", "", "directory for plot files, empty to skip plots")
	flag.StringVar(&cfg.logLevel, "loglevel", "info", "log level: debug, info, warn or error")
	flag.StringVar(&cfg.histColumn, "hist-column", "", "numeric column to histogram, empty to skip")
	flag.StringVar(&cfg.modelOut, "model-out", "", "path for the trained model gob, empty to skip")
	flag.Parse()
	return cfg
}

func run(cfg config) error {
	start := time.Now()

	table, err := dataset.ReadCSV(cfg.dataPath, dataset.PokemonOptions())
	if err != nil {
		return err
	}
	slog.Info("loaded dataset",
		slog.Int(log.SamplesKey, table.NumRows()),
		slog.Int(log.FeaturesKey, table.NumCols()),
		slog.Int(log.MissingKey, table.MissingCount()))

	var histValues []float64
	if cfg.histColumn != "" {
		histValues, err = table.Floats(cfg.histColumn)
		if err != nil {
			return err
		}
	}

	table = table.DropColumns(dataset.PokemonIdentifierColumns...)

	// Label-encode the surviving categoricals in place so the table can
	// materialize as one numeric matrix.
	for _, name := range table.CategoricalColumns() {
		values, err := table.Strings(name)
		if err != nil {
			return err
		}
		le := preprocessing.NewLabelEncoder()
		encoded, err := le.FitTransformFloat(values)
		if err != nil {
			return err
		}
		if err := table.ReplaceWithNumeric(name, encoded); err != nil {
			return err
		}
		slog.Debug("encoded categorical column",
			slog.String("column", name),
			slog.Int("categories", len(le.ClassList)))
	}

	X, y, featureNames, err := table.Matrix(cfg.target)
	if err != nil {
		return err
	}

	imputer := preprocessing.NewKNNImputer(cfg.neighbors)
	imputed, err := imputer.FitTransform(X)
	if err != nil {
		return err
	}
	slog.Info("imputed missing values", slog.Int("n_neighbors", cfg.neighbors))

	yDense := mat.NewDense(y.Len(), 1, nil)
	for i := 0; i < y.Len(); i++ {
		yDense.Set(i, 0, y.AtVec(i))
	}

	split, err := modelselection.TrainTestSplit(imputed, yDense, cfg.testSize, int(cfg.seed), true)
	if err != nil {
		return err
	}

	factory := func() model.Classifier {
		return tree.NewRandomForestClassifier(
			tree.WithNEstimators(cfg.trees),
			tree.WithMaxDepth(cfg.maxDepth),
			tree.WithRandomState(cfg.seed),
		)
	}

	splitter := modelselection.NewStratifiedKFold(cfg.folds, true, int(cfg.seed))
	cv, err := modelselection.CrossValidate(factory, split.XTrain, split.YTrain, splitter, cfg.scoring)
	if err != nil {
		return err
	}
	for i, score := range cv.TestScores {
		slog.Info("fold finished",
			slog.Int(log.FoldKey, i+1),
			slog.Float64("score", score))
	}
	slog.Info("cross-validation finished",
		slog.String("scoring", cfg.scoring),
		slog.Float64("mean", cv.GetMeanScore()),
		slog.Float64("std", cv.GetStdScore()))

	clf := factory()
	if err := clf.Fit(split.XTrain, split.YTrain); err != nil {
		return err
	}
	slog.Info("trained final model",
		slog.String(log.ModelNameKey, "RandomForestClassifier"),
		slog.Int("n_estimators", cfg.trees))

	pred, err := clf.Predict(split.XTest)
	if err != nil {
		return err
	}

	yTest := columnVec(split.YTest)
	yPred := columnVec(pred)

	accuracy, err := metrics.Accuracy(yTest, yPred)
	if err != nil {
		return err
	}
	slog.Info("hold-out evaluation",
		slog.Float64(log.AccuracyKey, accuracy),
		slog.Int64(log.DurationMsKey, time.Since(start).Milliseconds()))

	cm, err := metrics.NewConfusionMatrix(yTest, yPred)
	if err != nil {
		return err
	}
	report, err := metrics.ClassificationReport(yTest, yPred)
	if err != nil {
		return err
	}

	fmt.Println("Confusion matrix:")
	fmt.Println(cm)
	fmt.Println()
	fmt.Println(report)

	if cfg.outDir != "" {
		if err := writePlots(cfg, cm, cv, clf, featureNames, histValues); err != nil {
			return err
		}
	}

	if cfg.modelOut != "" {
		if err := model.SaveModel(clf, cfg.modelOut); err != nil {
			return err
		}
		slog.Info("saved model", slog.String("path", cfg.modelOut))
	}
	return nil
}

// writePlots renders the evaluation artifacts into cfg.outDir.
func writePlots(cfg config, cm *metrics.ConfusionMatrix, cv *modelselection.CVResult, clf model.Classifier, featureNames []string, histValues []float64) error {
	if err := os.MkdirAll(cfg.outDir, 0o755); err != nil {
		return err
	}

	cmPath := filepath.Join(cfg.outDir, "confusion_matrix.png")
	if err := visualize.ConfusionMatrixHeatmap(cm, "Confusion matrix", cmPath); err != nil {
		return err
	}

	cvPath := filepath.Join(cfg.outDir, "cv_scores.png")
	if err := visualize.CVScoreBars(cv.TestScores, "Cross-validation "+cfg.scoring, cvPath); err != nil {
		return err
	}

	paths := []string{cmPath, cvPath}

	if forest, ok := clf.(*tree.RandomForestClassifier); ok {
		imp, err := forest.FeatureImportances()
		if err != nil {
			return err
		}
		impPath := filepath.Join(cfg.outDir, "feature_importances.png")
		if err := visualize.FeatureImportanceBars(featureNames, imp, 15, "Feature importances", impPath); err != nil {
			return err
		}
		paths = append(paths, impPath)
	}

	if len(histValues) > 0 {
		histPath := filepath.Join(cfg.outDir, cfg.histColumn+"_hist.png")
		if err := visualize.Histogram(histValues, 20, cfg.histColumn, histPath); err != nil {
			return err
		}
		paths = append(paths, histPath)
	}

	slog.Info("wrote plots", slog.Any("files", paths))
	return nil
}

func columnVec(m mat.Matrix) *mat.VecDense {
	r, _ := m.Dims()
	v := mat.NewVecDense(r, nil)
	for i := 0; i < r; i++ {
		v.SetVec(i, m.At(i, 0))
	}
	return v
}
