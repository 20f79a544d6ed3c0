package config

import (
	"log"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

type Config struct {
	AnthropicAPIKey  string `yaml:"anthropic_api_key"`
	LLMModel         string `yaml:"llm_model"`
	LLMMaxTokens     int    `yaml:"llm_max_tokens"`
	LLMRetryAttempts int    `yaml:"llm_retry_attempts"`

	RawDataPath        string `yaml:"raw_data_path"`
	ArtifactDBPath     string `yaml:"artifact_db_path"`
	ModelPath          string `yaml:"model_path"`
	FeatureColumnsPath string `yaml:"feature_columns_path"`

	HTTPAddr string `yaml:"http_addr"`

	DigestSchedule  string `yaml:"digest_schedule"`
	DigestTopN      int    `yaml:"digest_top_n"`
	DigestOutputDir string `yaml:"digest_output_dir"`
	SlackBotToken   string `yaml:"slack_bot_token"`
	SlackChannelID  string `yaml:"slack_channel_id"`
}

// LoadConfig reads config.yaml (or $CONFIG_PATH) if present, applies env var
// overrides, then defaults. The Anthropic key is only required by the serving
// binary, which checks it itself; the offline binaries run without it.
func LoadConfig() Config {
	var cfg Config

	configPath := "config.yaml"
	if envPath := os.Getenv("CONFIG_PATH"); envPath != "" {
		configPath = envPath
	}
	if data, err := os.ReadFile(configPath); err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			log.Fatalf("Error parsing %s: %v", configPath, err)
		}
		log.Printf("Loaded config from %s", configPath)
	}

	// Env vars override YAML values
	envOverride(&cfg.AnthropicAPIKey, "ANTHROPIC_API_KEY")
	envOverride(&cfg.LLMModel, "LLM_MODEL")
	envOverrideInt(&cfg.LLMMaxTokens, "LLM_MAX_TOKENS")
	envOverrideInt(&cfg.LLMRetryAttempts, "LLM_RETRY_ATTEMPTS")
	envOverride(&cfg.RawDataPath, "RAW_DATA_PATH")
	envOverride(&cfg.ArtifactDBPath, "ARTIFACT_DB_PATH")
	envOverride(&cfg.ModelPath, "MODEL_PATH")
	envOverride(&cfg.FeatureColumnsPath, "FEATURE_COLUMNS_PATH")
	envOverride(&cfg.HTTPAddr, "HTTP_ADDR")
	envOverride(&cfg.DigestSchedule, "DIGEST_SCHEDULE")
	envOverrideInt(&cfg.DigestTopN, "DIGEST_TOP_N")
	envOverride(&cfg.DigestOutputDir, "DIGEST_OUTPUT_DIR")
	envOverride(&cfg.SlackBotToken, "SLACK_BOT_TOKEN")
	envOverride(&cfg.SlackChannelID, "SLACK_CHANNEL_ID")

	// Defaults
	if cfg.LLMMaxTokens == 0 {
		cfg.LLMMaxTokens = 2048
	}
	if cfg.LLMRetryAttempts == 0 {
		cfg.LLMRetryAttempts = 2
	}
	if cfg.RawDataPath == "" {
		cfg.RawDataPath = "data/raw/Telco-Customer-Churn.csv"
	}
	if cfg.ArtifactDBPath == "" {
		cfg.ArtifactDBPath = "data/processed/churn.db"
	}
	if cfg.ModelPath == "" {
		cfg.ModelPath = "models/churn_model.gob"
	}
	if cfg.FeatureColumnsPath == "" {
		cfg.FeatureColumnsPath = "models/feature_columns.json"
	}
	if cfg.HTTPAddr == "" {
		cfg.HTTPAddr = ":8080"
	}
	if cfg.DigestTopN == 0 {
		cfg.DigestTopN = 20
	}
	if cfg.DigestOutputDir == "" {
		cfg.DigestOutputDir = "./reports"
	}

	// Validate
	if cfg.LLMMaxTokens < 1 {
		log.Fatalf("invalid llm_max_tokens '%d': must be >= 1", cfg.LLMMaxTokens)
	}
	if cfg.LLMRetryAttempts < 0 {
		log.Fatalf("invalid llm_retry_attempts '%d': must be >= 0", cfg.LLMRetryAttempts)
	}
	if cfg.DigestTopN < 1 {
		log.Fatalf("invalid digest_top_n '%d': must be >= 1", cfg.DigestTopN)
	}
	if cfg.SlackChannelID != "" && cfg.SlackBotToken == "" {
		log.Fatalf("slack_bot_token is required when slack_channel_id is set")
	}

	return cfg
}

func envOverride(field *string, envKey string) {
	if val := os.Getenv(envKey); val != "" {
		*field = val
	}
}

func envOverrideInt(field *int, envKey string) {
	if val := os.Getenv(envKey); val != "" {
		parsed, err := strconv.Atoi(val)
		if err != nil {
			log.Fatalf("Invalid %s '%s': %v", envKey, val, err)
		}
		*field = parsed
	}
}
