package app

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"feedbackinsight/internal/config"
	"feedbackinsight/internal/httpx"
	"feedbackinsight/internal/integrations/llm"
	"feedbackinsight/internal/keywords"
	"feedbackinsight/internal/pipeline"
	"feedbackinsight/internal/sentiment"
	"feedbackinsight/internal/storage"
	"feedbackinsight/internal/textclean"

	"github.com/spf13/cobra"
)

// classifierConcurrency bounds in-flight model batches.
const classifierConcurrency = 4

func Main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "feedbackinsight",
		Short:        "Sentiment and keyword insights over departmental feedback",
		SilenceUsage: true,
	}
	root.AddCommand(
		newRunCmd(),
		newEvaluateCmd(),
		newImportCmd(),
		newReportCmd(),
		newScheduleCmd(),
	)
	return root
}

func loadConfig() config.Config {
	cfg := config.LoadConfig()
	appliedHTTPTimeout := httpx.ConfigureExternalHTTPClient(cfg.ExternalHTTPTimeoutSeconds)
	log.Printf(
		"Config loaded. DB=%s Provider=%s Model=%s BatchSize=%d Keywords=%s TopN=%d MaxNgram=%d WriteMode=%s Timezone=%s ExternalHTTPTimeout=%s",
		cfg.DBDriver,
		cfg.SentimentProvider,
		cfg.LLMModel,
		cfg.LLMBatchSize,
		cfg.KeywordAlgorithm,
		cfg.KeywordTopN,
		cfg.KeywordMaxNgram,
		cfg.WriteMode,
		cfg.Timezone,
		appliedHTTPTimeout,
	)
	return cfg
}

func openStore(ctx context.Context, cfg config.Config) (*storage.Store, error) {
	store, err := storage.Open(cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		return nil, err
	}
	if err := store.InitSchema(ctx); err != nil {
		store.Close()
		return nil, err
	}
	log.Printf("Database initialized (driver=%s)", store.Driver())
	return store, nil
}

func buildSentimentModel(cfg config.Config) (sentiment.Model, error) {
	if err := cfg.RequireSentimentModel(); err != nil {
		return nil, err
	}
	switch cfg.SentimentProvider {
	case "lexicon":
		return sentiment.NewLexiconModel(nil), nil
	case "anthropic":
		return llm.NewAnthropicModel(cfg.AnthropicAPIKey, cfg.LLMModel), nil
	default:
		return nil, fmt.Errorf("unknown sentiment provider %q", cfg.SentimentProvider)
	}
}

// buildPipeline wires the four analysis stages from config. The vocabulary
// file feeds both the normalizer and the filler list.
func buildPipeline(cfg config.Config, model sentiment.Model) (*pipeline.Pipeline, error) {
	vocab, err := textclean.LoadVocabularyIfConfigured(cfg.VocabularyPath)
	if err != nil {
		return nil, err
	}
	fillers := keywords.NewFillerSet(vocab.Fillers())
	classifier := sentiment.New(model, sentiment.Options{
		MaxInputChars: cfg.MaxInputChars,
		BatchSize:     cfg.LLMBatchSize,
		Concurrency:   classifierConcurrency,
	})
	extractor := keywords.New(keywords.NewRanker(cfg.KeywordAlgorithm), fillers, keywords.Options{
		TopN:     cfg.KeywordTopN,
		MaxNgram: cfg.KeywordMaxNgram,
	})
	return pipeline.New(textclean.NewNormalizer(vocab), classifier, extractor, fillers), nil
}
