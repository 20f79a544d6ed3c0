package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("CONFIG_PATH", filepath.Join(t.TempDir(), "missing-config.yaml"))

	cfg := LoadConfig()

	if cfg.RawDataPath != "data/raw/Telco-Customer-Churn.csv" {
		t.Fatalf("unexpected raw data path default: %q", cfg.RawDataPath)
	}
	if cfg.ArtifactDBPath != "data/processed/churn.db" {
		t.Fatalf("unexpected artifact db default: %q", cfg.ArtifactDBPath)
	}
	if cfg.ModelPath != "models/churn_model.gob" {
		t.Fatalf("unexpected model path default: %q", cfg.ModelPath)
	}
	if cfg.FeatureColumnsPath != "models/feature_columns.json" {
		t.Fatalf("unexpected feature columns default: %q", cfg.FeatureColumnsPath)
	}
	if cfg.HTTPAddr != ":8080" {
		t.Fatalf("unexpected http addr default: %q", cfg.HTTPAddr)
	}
	if cfg.LLMMaxTokens != 2048 {
		t.Fatalf("unexpected llm_max_tokens default: %d", cfg.LLMMaxTokens)
	}
	if cfg.LLMRetryAttempts != 2 {
		t.Fatalf("unexpected llm_retry_attempts default: %d", cfg.LLMRetryAttempts)
	}
	if cfg.DigestTopN != 20 {
		t.Fatalf("unexpected digest_top_n default: %d", cfg.DigestTopN)
	}
	if cfg.DigestOutputDir != "./reports" {
		t.Fatalf("unexpected digest output dir default: %q", cfg.DigestOutputDir)
	}
}

func TestLoadConfigEnvOverridesYAML(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	yaml := `
anthropic_api_key: from-yaml
llm_model: model-from-yaml
artifact_db_path: /from/yaml/churn.db
digest_top_n: 5
`
	if err := os.WriteFile(configPath, []byte(yaml), 0644); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	t.Setenv("CONFIG_PATH", configPath)
	t.Setenv("ANTHROPIC_API_KEY", "from-env")
	t.Setenv("DIGEST_TOP_N", "7")

	cfg := LoadConfig()

	if cfg.AnthropicAPIKey != "from-env" {
		t.Fatalf("env should override yaml, got %q", cfg.AnthropicAPIKey)
	}
	if cfg.LLMModel != "model-from-yaml" {
		t.Fatalf("yaml value lost: %q", cfg.LLMModel)
	}
	if cfg.ArtifactDBPath != "/from/yaml/churn.db" {
		t.Fatalf("yaml value lost: %q", cfg.ArtifactDBPath)
	}
	if cfg.DigestTopN != 7 {
		t.Fatalf("env should override yaml digest_top_n, got %d", cfg.DigestTopN)
	}
}
