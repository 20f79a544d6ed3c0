// Package model fits, persists and applies the churn probability classifier.
package model

import (
	"crypto/sha256"
	"encoding/gob"
	"encoding/hex"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
)

// Model is a fitted logistic-regression churn classifier. Columns records the
// exact feature order used at fit time; SchemaHash ties the model to the
// persisted feature schema so a regenerated schema cannot be silently paired
// with a stale model.
type Model struct {
	Columns    []string
	Weights    []float64
	Bias       float64
	Means      []float64
	Scales     []float64
	SchemaHash string
}

// PredictProba returns the positive-class (churn) probability for one feature
// vector, which must be aligned to m.Columns.
func (m *Model) PredictProba(features []float64) (float64, error) {
	if len(features) != len(m.Weights) {
		return 0, fmt.Errorf("feature vector has %d values, model expects %d", len(features), len(m.Weights))
	}
	z := m.Bias
	for i, v := range features {
		z += m.Weights[i] * (v - m.Means[i]) / m.Scales[i]
	}
	return sigmoid(z), nil
}

func sigmoid(z float64) float64 {
	return 1 / (1 + math.Exp(-z))
}

// SchemaHash returns the version hash of an ordered feature column list.
func SchemaHash(columns []string) string {
	sum := sha256.Sum256([]byte(strings.Join(columns, "\x1f")))
	return hex.EncodeToString(sum[:])
}

// Save gob-encodes the model to path.
func (m *Model) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating model dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating model file %s: %w", path, err)
	}
	defer f.Close()
	if err := gob.NewEncoder(f).Encode(m); err != nil {
		return fmt.Errorf("encoding model: %w", err)
	}
	return nil
}

// Load decodes a model previously written by Save.
func Load(path string) (*Model, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening model file %s: %w", path, err)
	}
	defer f.Close()
	var m Model
	if err := gob.NewDecoder(f).Decode(&m); err != nil {
		return nil, fmt.Errorf("decoding model %s: %w", path, err)
	}
	return &m, nil
}
