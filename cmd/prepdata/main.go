// prepdata builds the engineered feature table and the customer profile
// table from the raw Telco CSV and writes both into the artifact database.
package main

import (
	"log"

	"github.com/gunter0128/CRM-AI-retention-agents/internal/config"
	"github.com/gunter0128/CRM-AI-retention-agents/internal/features"
)

func main() {
	cfg := config.LoadConfig()

	raw, err := features.ReadRawCSV(cfg.RawDataPath)
	if err != nil {
		log.Fatalf("Failed to read raw dataset: %v", err)
	}
	log.Printf("Raw dataset loaded path=%s rows=%d", cfg.RawDataPath, len(raw))

	built, err := features.Build(raw)
	if err != nil {
		log.Fatalf("Feature build failed: %v", err)
	}
	log.Printf("Features built columns=%d rows=%d profiles=%d dropped_total_charges=%d",
		len(built.Features.Columns), len(built.Features.Rows), len(built.Profiles), built.Dropped)

	if err := features.WriteArtifacts(cfg.ArtifactDBPath, built); err != nil {
		log.Fatalf("Failed to write artifact database: %v", err)
	}
	log.Printf("Artifacts written path=%s", cfg.ArtifactDBPath)
}
