// trainmodel fits the churn classifier on the engineered feature table and
// persists the model together with the exact feature column order it was fit
// with.
package main

import (
	"log"
	"os"

	"github.com/gunter0128/CRM-AI-retention-agents/internal/config"
	"github.com/gunter0128/CRM-AI-retention-agents/internal/features"
	"github.com/gunter0128/CRM-AI-retention-agents/internal/model"
)

func main() {
	cfg := config.LoadConfig()

	if _, err := os.Stat(cfg.ArtifactDBPath); err != nil {
		log.Fatalf("Artifact database %s is missing; run cmd/prepdata first", cfg.ArtifactDBPath)
	}
	table, err := features.ReadFeatureTable(cfg.ArtifactDBPath)
	if err != nil {
		log.Fatalf("Failed to read feature table: %v", err)
	}
	log.Printf("Feature table loaded path=%s columns=%d rows=%d",
		cfg.ArtifactDBPath, len(table.Columns), len(table.Rows))

	m, metrics, err := model.Train(table, model.DefaultTrainOptions())
	if err != nil {
		log.Fatalf("Training failed: %v", err)
	}
	log.Printf("=== Churn Model Evaluation ===\n%s", metrics.Report())

	if err := m.Save(cfg.ModelPath); err != nil {
		log.Fatalf("Failed to save model: %v", err)
	}
	log.Printf("Model saved path=%s", cfg.ModelPath)

	if err := model.SaveSchema(cfg.FeatureColumnsPath, m.Columns); err != nil {
		log.Fatalf("Failed to save feature schema: %v", err)
	}
	log.Printf("Feature schema saved path=%s columns=%d hash=%s",
		cfg.FeatureColumnsPath, len(m.Columns), m.SchemaHash)
}
