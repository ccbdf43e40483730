package app

import (
	"context"
	"fmt"
	"log"
	"time"

	"feedbackinsight/internal/config"
	"feedbackinsight/internal/domain"
	"feedbackinsight/internal/evaluate"
	"feedbackinsight/internal/httpx"
	"feedbackinsight/internal/integrations/llm"
	slackbot "feedbackinsight/internal/integrations/slack"
	"feedbackinsight/internal/pipeline"
	"feedbackinsight/internal/report"
	"feedbackinsight/internal/storage"

	"github.com/google/uuid"
	"github.com/slack-go/slack"
	"github.com/spf13/cobra"
)

type runOptions struct {
	evaluate bool
	persist  bool
}

func newRunCmd() *cobra.Command {
	var evaluateAfter, noPersist bool
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Analyze all feedback once and persist the results",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loadConfig()
			return runOnce(cmd.Context(), cfg, runOptions{evaluate: evaluateAfter, persist: !noPersist})
		},
	}
	cmd.Flags().BoolVar(&evaluateAfter, "evaluate", false, "score the predictions CSV against the labelled data after the run")
	cmd.Flags().BoolVar(&noPersist, "no-persist", false, "skip writing results to the database")
	return cmd
}

// runOnce is one full batch: load, analyze, persist, export, evaluate,
// report and notify. Only load and persistence failures abort the run.
func runOnce(ctx context.Context, cfg config.Config, opts runOptions) error {
	started := time.Now().In(cfg.Location)

	model, err := buildSentimentModel(cfg)
	if err != nil {
		return err
	}
	p, err := buildPipeline(cfg, model)
	if err != nil {
		return err
	}
	mode, err := storage.ParseWriteMode(cfg.WriteMode)
	if err != nil {
		return err
	}

	store, err := openStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer store.Close()

	records, err := store.LoadFeedback(ctx, cfg.SourceQuery)
	if err != nil {
		log.Printf("Failed to load feedback: %v", err)
		return fmt.Errorf("load feedback: %w", err)
	}
	log.Printf("Loaded %d feedback records", len(records))

	result := p.Run(ctx, records)
	runID := uuid.NewString()

	if opts.persist {
		n, err := store.SaveAnalysis(ctx, runID, result.Records, mode)
		if err != nil {
			return fmt.Errorf("save analysis: %w", err)
		}
		m, err := store.SaveKeywordSummary(ctx, runID, result.Summary, mode)
		if err != nil {
			return fmt.Errorf("save keyword summary: %w", err)
		}
		log.Printf("Persisted run %s: analysis_rows=%d summary_rows=%d mode=%s", runID, n, m, mode)
	} else {
		log.Printf("Run %s not persisted (--no-persist)", runID)
	}

	if err := pipeline.WritePredictionsCSV(cfg.PredictionsPath, result.Records); err != nil {
		log.Printf("Error writing predictions CSV: %v", err)
	} else {
		log.Printf("Predictions written to %s", cfg.PredictionsPath)
	}

	var accuracy *domain.AccuracyReport
	if opts.evaluate {
		rep, err := evaluate.EvaluateFiles(cfg.LabelledDataPath, cfg.PredictionsPath, evaluationOptions(cfg, 0))
		if err != nil {
			log.Printf("Evaluation skipped: %v", err)
		} else {
			accuracy = &rep
			log.Printf("Evaluation:\n%s", rep.String())
		}
	}

	if anthropicModel, ok := model.(*llm.AnthropicModel); ok {
		usage := anthropicModel.Usage()
		log.Printf("llm usage run=%s tokens_in=%d tokens_out=%d cache_create=%d cache_read=%d",
			runID, usage.InputTokens, usage.OutputTokens, usage.CacheCreationInputTokens, usage.CacheReadInputTokens)
	}

	content := report.Build(report.Input{
		RunID:        runID,
		GeneratedAt:  started,
		Model:        model.Name(),
		Ranker:       cfg.KeywordAlgorithm,
		Records:      len(result.Records),
		Distribution: result.Distribution,
		Summary:      result.Summary,
		Accuracy:     accuracy,
	})
	reportPath, err := report.WriteFile(content, cfg.ReportOutputDir, started)
	if err != nil {
		log.Printf("Error writing report file: %v", err)
	} else {
		log.Printf("Report written to %s", reportPath)
	}

	if cfg.SlackConfigured() {
		api := slack.New(cfg.SlackBotToken, slack.OptionHTTPClient(httpx.ExternalHTTPClient()))
		summary := slackbot.RunSummary{
			RunID:        runID,
			Records:      len(result.Records),
			Distribution: result.Distribution,
			Summary:      result.Summary,
			Accuracy:     accuracy,
			ReportPath:   reportPath,
		}
		if err := slackbot.PostRunSummary(api, cfg.SlackChannelID, summary); err != nil {
			log.Printf("Error posting run summary to Slack: %v", err)
		}
	}

	log.Printf("Run %s finished in %s", runID, time.Since(started).Round(time.Millisecond))
	return nil
}

func evaluationOptions(cfg config.Config, maxOverride int) evaluate.Options {
	opts := evaluate.Options{
		ActualColumn:    cfg.ActualLabelColumn,
		PredictedColumn: cfg.PredictedLabelColumn,
		MaxPredictions:  cfg.MaxPredictions,
	}
	if maxOverride > 0 {
		opts.MaxPredictions = maxOverride
	}
	return opts
}
