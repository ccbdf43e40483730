package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"feedbackinsight/internal/textclean"
)

const defaultExternalHTTPTimeout = 90 * time.Second
const defaultExternalHTTPTimeoutSeconds = int(defaultExternalHTTPTimeout / time.Second)

const (
	defaultDBDriver       = "sqlite3"
	defaultDBDSN          = "./feedback.db"
	defaultSourceQuery    = "SELECT id, department_name, date, feedback_text FROM feedback_enriched"
	defaultLLMModel       = "claude-sonnet-4-5-20250929"
	defaultLLMBatchSize   = 20
	defaultMaxInputChars  = 512
	defaultKeywordTopN    = 5
	defaultKeywordNgram   = 2
	defaultMaxPredictions = 100
)

type Config struct {
	DBDriver    string `yaml:"db_driver"`
	DBDSN       string `yaml:"db_dsn"`
	SourceQuery string `yaml:"source_query"`
	WriteMode   string `yaml:"write_mode"`

	SentimentProvider string `yaml:"sentiment_provider"`
	LLMModel          string `yaml:"llm_model"`
	LLMBatchSize      int    `yaml:"llm_batch_size"`
	AnthropicAPIKey   string `yaml:"anthropic_api_key"`
	MaxInputChars     int    `yaml:"max_input_chars"`

	KeywordAlgorithm string `yaml:"keyword_algorithm"`
	KeywordTopN      int    `yaml:"keyword_top_n"`
	KeywordMaxNgram  int    `yaml:"keyword_max_ngram"`
	VocabularyPath   string `yaml:"vocabulary_path"`

	LabelledDataPath     string `yaml:"labelled_data_path"`
	PredictionsPath      string `yaml:"predictions_path"`
	ActualLabelColumn    string `yaml:"actual_label_column"`
	PredictedLabelColumn string `yaml:"predicted_label_column"`
	MaxPredictions       int    `yaml:"max_predictions"`

	ReportOutputDir            string `yaml:"report_output_dir"`
	SlackBotToken              string `yaml:"slack_bot_token"`
	SlackChannelID             string `yaml:"slack_channel_id"`
	RunSchedule                string `yaml:"run_schedule"`
	Timezone                   string `yaml:"timezone"`
	ExternalHTTPTimeoutSeconds int    `yaml:"external_http_timeout_seconds"`

	Location *time.Location `yaml:"-"` // computed from Timezone, not from YAML
}

func LoadConfig() Config {
	var cfg Config

	loadDotenv()

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

	envOverride(&cfg.DBDriver, "DB_DRIVER")
	envOverride(&cfg.DBDSN, "DB_DSN")
	envOverride(&cfg.SourceQuery, "SOURCE_QUERY")
	envOverride(&cfg.WriteMode, "WRITE_MODE")
	envOverride(&cfg.SentimentProvider, "SENTIMENT_PROVIDER")
	envOverride(&cfg.LLMModel, "LLM_MODEL")
	envOverrideInt(&cfg.LLMBatchSize, "LLM_BATCH_SIZE")
	envOverride(&cfg.AnthropicAPIKey, "ANTHROPIC_API_KEY")
	envOverrideInt(&cfg.MaxInputChars, "MAX_INPUT_CHARS")
	envOverride(&cfg.KeywordAlgorithm, "KEYWORD_ALGORITHM")
	envOverrideInt(&cfg.KeywordTopN, "KEYWORD_TOP_N")
	envOverrideInt(&cfg.KeywordMaxNgram, "KEYWORD_MAX_NGRAM")
	envOverrideAllowEmpty(&cfg.VocabularyPath, "VOCABULARY_PATH")
	envOverride(&cfg.LabelledDataPath, "LABELLED_DATA_PATH")
	envOverride(&cfg.PredictionsPath, "PREDICTIONS_PATH")
	envOverride(&cfg.ActualLabelColumn, "ACTUAL_LABEL_COLUMN")
	envOverride(&cfg.PredictedLabelColumn, "PREDICTED_LABEL_COLUMN")
	envOverrideInt(&cfg.MaxPredictions, "MAX_PREDICTIONS")
	envOverride(&cfg.ReportOutputDir, "REPORT_OUTPUT_DIR")
	envOverride(&cfg.SlackBotToken, "SLACK_BOT_TOKEN")
	envOverride(&cfg.SlackChannelID, "SLACK_CHANNEL_ID")
	envOverrideAllowEmpty(&cfg.RunSchedule, "RUN_SCHEDULE")
	envOverride(&cfg.Timezone, "TIMEZONE")
	envOverrideInt(&cfg.ExternalHTTPTimeoutSeconds, "EXTERNAL_HTTP_TIMEOUT_SECONDS")

	if cfg.DBDriver == "" {
		cfg.DBDriver = defaultDBDriver
	}
	if cfg.DBDSN == "" {
		cfg.DBDSN = defaultDBDSN
	}
	if strings.TrimSpace(cfg.SourceQuery) == "" {
		cfg.SourceQuery = defaultSourceQuery
	}
	if cfg.WriteMode == "" {
		cfg.WriteMode = "append"
	}
	if cfg.SentimentProvider == "" {
		cfg.SentimentProvider = "anthropic"
	}
	if cfg.LLMModel == "" {
		cfg.LLMModel = defaultLLMModel
	}
	if cfg.LLMBatchSize == 0 {
		cfg.LLMBatchSize = defaultLLMBatchSize
	}
	if cfg.MaxInputChars == 0 {
		cfg.MaxInputChars = defaultMaxInputChars
	}
	if cfg.KeywordAlgorithm == "" {
		cfg.KeywordAlgorithm = "yake"
	}
	if cfg.KeywordTopN == 0 {
		cfg.KeywordTopN = defaultKeywordTopN
	}
	if cfg.KeywordMaxNgram == 0 {
		cfg.KeywordMaxNgram = defaultKeywordNgram
	}
	if cfg.LabelledDataPath == "" {
		cfg.LabelledDataPath = "data/student_labelled_data.csv"
	}
	if cfg.PredictionsPath == "" {
		cfg.PredictionsPath = "data/predictions.csv"
	}
	if cfg.ActualLabelColumn == "" {
		cfg.ActualLabelColumn = "sentiment"
	}
	if cfg.PredictedLabelColumn == "" {
		cfg.PredictedLabelColumn = "sentiment_label"
	}
	if cfg.MaxPredictions == 0 {
		cfg.MaxPredictions = defaultMaxPredictions
	}
	if cfg.ReportOutputDir == "" {
		cfg.ReportOutputDir = "./reports"
	}
	if cfg.Timezone == "" {
		cfg.Timezone = "Local"
	}
	if cfg.ExternalHTTPTimeoutSeconds == 0 {
		cfg.ExternalHTTPTimeoutSeconds = defaultExternalHTTPTimeoutSeconds
	}

	cfg.DBDriver = strings.ToLower(strings.TrimSpace(cfg.DBDriver))
	switch cfg.DBDriver {
	case "sqlite3", "postgres":
	default:
		log.Fatalf("db_driver must be 'sqlite3' or 'postgres', got '%s'", cfg.DBDriver)
	}

	cfg.WriteMode = strings.ToLower(strings.TrimSpace(cfg.WriteMode))
	if cfg.WriteMode != "append" && cfg.WriteMode != "replace" {
		log.Fatalf("write_mode must be 'append' or 'replace', got '%s'", cfg.WriteMode)
	}

	cfg.SentimentProvider = strings.ToLower(strings.TrimSpace(cfg.SentimentProvider))
	switch cfg.SentimentProvider {
	case "anthropic", "lexicon":
	default:
		log.Fatalf("sentiment_provider must be 'anthropic' or 'lexicon', got '%s'", cfg.SentimentProvider)
	}

	cfg.KeywordAlgorithm = strings.ToLower(strings.TrimSpace(cfg.KeywordAlgorithm))
	switch cfg.KeywordAlgorithm {
	case "yake", "textrank":
	default:
		log.Fatalf("keyword_algorithm must be 'yake' or 'textrank', got '%s'", cfg.KeywordAlgorithm)
	}

	if strings.EqualFold(cfg.Timezone, "Local") {
		cfg.Location = time.Local
	} else {
		loc, err := time.LoadLocation(cfg.Timezone)
		if err != nil {
			log.Fatalf("invalid timezone '%s': %v", cfg.Timezone, err)
		}
		cfg.Location = loc
	}

	if cfg.LLMBatchSize < 1 {
		log.Fatalf("invalid llm_batch_size '%d': must be >= 1", cfg.LLMBatchSize)
	}
	if cfg.MaxInputChars < 1 {
		log.Fatalf("invalid max_input_chars '%d': must be >= 1", cfg.MaxInputChars)
	}
	if cfg.KeywordTopN < 1 {
		log.Fatalf("invalid keyword_top_n '%d': must be >= 1", cfg.KeywordTopN)
	}
	if cfg.KeywordMaxNgram < 1 || cfg.KeywordMaxNgram > 5 {
		log.Fatalf("invalid keyword_max_ngram '%d': must be between 1 and 5", cfg.KeywordMaxNgram)
	}
	if cfg.MaxPredictions < 1 {
		log.Fatalf("invalid max_predictions '%d': must be >= 1", cfg.MaxPredictions)
	}
	if cfg.ExternalHTTPTimeoutSeconds < 5 {
		log.Fatalf("invalid external_http_timeout_seconds '%d': must be >= 5", cfg.ExternalHTTPTimeoutSeconds)
	}
	if cfg.VocabularyPath != "" {
		if _, err := textclean.LoadVocabulary(cfg.VocabularyPath); err != nil {
			log.Fatalf("invalid vocabulary_path '%s': %v", cfg.VocabularyPath, err)
		}
	}
	if cfg.SlackBotToken != "" && cfg.SlackChannelID == "" {
		log.Printf("WARNING: slack_bot_token is set but slack_channel_id is empty; run summaries will not be posted.")
	}

	return cfg
}

// loadDotenv reads .env (or DOTENV_PATH) into the process environment.
// Variables already set are not overwritten; a missing file is ignored.
func loadDotenv() {
	path := ".env"
	if p := os.Getenv("DOTENV_PATH"); p != "" {
		path = p
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return
		}
		log.Fatalf("Error loading %s: %v", path, err)
	}
	log.Printf("Loaded environment from %s", path)
}

// RequireSentimentModel reports whether the configured sentiment provider
// has what it needs to run. Commands that never classify skip this check.
func (c Config) RequireSentimentModel() error {
	if c.SentimentProvider == "anthropic" && strings.TrimSpace(c.AnthropicAPIKey) == "" {
		return fmt.Errorf("anthropic_api_key is required when sentiment_provider=anthropic")
	}
	return nil
}

func (c Config) SlackConfigured() bool {
	return c.SlackBotToken != "" && c.SlackChannelID != ""
}

func envOverride(field *string, envKey string) {
	if val := os.Getenv(envKey); val != "" {
		*field = val
	}
}

func envOverrideAllowEmpty(field *string, envKey string) {
	if val, ok := os.LookupEnv(envKey); ok {
		*field = val
	}
}

func envOverrideInt(field *int, envKey string) {
	if val := os.Getenv(envKey); val != "" {
		parsed, err := strconv.Atoi(val)
		if err != nil {
			log.Fatalf("invalid %s '%s': %v", envKey, val, err)
		}
		*field = parsed
	}
}
