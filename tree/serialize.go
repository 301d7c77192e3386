package tree

import (
	"bytes"
	"encoding/gob"
)

// Gob snapshots. The estimators keep their fitted state unexported, so
// both classifiers implement gob.GobEncoder / gob.GobDecoder through
// flat mirror structs.

type nodeSnapshot struct {
	IsLeaf    bool
	Feature   int
	Threshold float64
	IsCat     bool
	N         int
	Probas    []float64
	Left      int // index into the node slice, -1 for none
	Right     int
}

type treeSnapshot struct {
	MaxDepth            int
	MinSamplesSplit     int
	MinSamplesLeaf      int
	Criterion           string
	MaxFeatures         int
	MinImpurityDecrease float64
	Seed                int64
	Classes             []int
	NFeatures           int
	Importances         []float64
	Nodes               []nodeSnapshot
	Fitted              bool
}

// flattenNodes appends nd and its children to nodes and returns nd's index.
func flattenNodes(nd *node, nodes *[]nodeSnapshot) int {
	idx := len(*nodes)
	*nodes = append(*nodes, nodeSnapshot{
		IsLeaf:    nd.isLeaf,
		Feature:   nd.feature,
		Threshold: nd.threshold,
		IsCat:     nd.isCat,
		N:         nd.n,
		Probas:    nd.probas,
		Left:      -1,
		Right:     -1,
	})
	if !nd.isLeaf {
		left := flattenNodes(nd.left, nodes)
		right := flattenNodes(nd.right, nodes)
		(*nodes)[idx].Left = left
		(*nodes)[idx].Right = right
	}
	return idx
}

func rebuildNode(nodes []nodeSnapshot, idx int) *node {
	s := nodes[idx]
	nd := &node{
		isLeaf:    s.IsLeaf,
		feature:   s.Feature,
		threshold: s.Threshold,
		isCat:     s.IsCat,
		n:         s.N,
		probas:    s.Probas,
	}
	if !s.IsLeaf {
		nd.left = rebuildNode(nodes, s.Left)
		nd.right = rebuildNode(nodes, s.Right)
	}
	return nd
}

// GobEncode implements gob.GobEncoder.
func (t *DecisionTreeClassifier) GobEncode() ([]byte, error) {
	snap := treeSnapshot{
		MaxDepth:            t.MaxDepth,
		MinSamplesSplit:     t.MinSamplesSplit,
		MinSamplesLeaf:      t.MinSamplesLeaf,
		Criterion:           t.Criterion,
		MaxFeatures:         t.MaxFeatures,
		MinImpurityDecrease: t.MinImpurityDecrease,
		Seed:                t.Seed,
		Classes:             t.classes,
		NFeatures:           t.nFeatures,
		Importances:         t.importances,
		Fitted:              t.IsFitted(),
	}
	if t.root != nil {
		flattenNodes(t.root, &snap.Nodes)
	}

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(snap); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// GobDecode implements gob.GobDecoder.
func (t *DecisionTreeClassifier) GobDecode(data []byte) error {
	var snap treeSnapshot
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&snap); err != nil {
		return err
	}

	t.MaxDepth = snap.MaxDepth
	t.MinSamplesSplit = snap.MinSamplesSplit
	t.MinSamplesLeaf = snap.MinSamplesLeaf
	t.Criterion = snap.Criterion
	t.MaxFeatures = snap.MaxFeatures
	t.MinImpurityDecrease = snap.MinImpurityDecrease
	t.Seed = snap.Seed
	t.classes = snap.Classes
	t.nFeatures = snap.NFeatures
	t.importances = snap.Importances
	if len(snap.Nodes) > 0 {
		t.root = rebuildNode(snap.Nodes, 0)
	}
	if snap.Fitted {
		t.SetFitted()
	} else {
		t.Reset()
	}
	return nil
}

type forestSnapshot struct {
	NEstimators     int
	MaxDepth        int
	MinSamplesSplit int
	MinSamplesLeaf  int
	Criterion       string
	MaxFeatures     int
	Bootstrap       bool
	Seed            int64
	Trees           []*DecisionTreeClassifier
	Classes         []int
	NFeatures       int
	Fitted          bool
}

// GobEncode implements gob.GobEncoder.
func (f *RandomForestClassifier) GobEncode() ([]byte, error) {
	snap := forestSnapshot{
		NEstimators:     f.NEstimators,
		MaxDepth:        f.MaxDepth,
		MinSamplesSplit: f.MinSamplesSplit,
		MinSamplesLeaf:  f.MinSamplesLeaf,
		Criterion:       f.Criterion,
		MaxFeatures:     f.MaxFeatures,
		Bootstrap:       f.Bootstrap,
		Seed:            f.Seed,
		Trees:           f.trees,
		Classes:         f.classes,
		NFeatures:       f.nFeatures,
		Fitted:          f.IsFitted(),
	}

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(snap); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// GobDecode implements gob.GobDecoder.
func (f *RandomForestClassifier) GobDecode(data []byte) error {
	var snap forestSnapshot
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&snap); err != nil {
		return err
	}

	f.NEstimators = snap.NEstimators
	f.MaxDepth = snap.MaxDepth
	f.MinSamplesSplit = snap.MinSamplesSplit
	f.MinSamplesLeaf = snap.MinSamplesLeaf
	f.Criterion = snap.Criterion
	f.MaxFeatures = snap.MaxFeatures
	f.Bootstrap = snap.Bootstrap
	f.Seed = snap.Seed
	f.trees = snap.Trees
	f.classes = snap.Classes
	f.nFeatures = snap.NFeatures
	if snap.Fitted {
		f.SetFitted()
	} else {
		f.Reset()
	}
	return nil
}
