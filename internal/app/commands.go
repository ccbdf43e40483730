package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"feedbackinsight/internal/aggregate"
	"feedbackinsight/internal/domain"
	"feedbackinsight/internal/evaluate"
	"feedbackinsight/internal/keywords"
	"feedbackinsight/internal/pipeline"
	"feedbackinsight/internal/report"
	"feedbackinsight/internal/schedule"
	"feedbackinsight/internal/storage"
	"feedbackinsight/internal/textclean"

	"github.com/spf13/cobra"
)

func newEvaluateCmd() *cobra.Command {
	var actualPath, predictedPath string
	var maxPredictions int
	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Compare predicted sentiment labels against a labelled CSV",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loadConfig()
			if actualPath == "" {
				actualPath = cfg.LabelledDataPath
			}
			if predictedPath == "" {
				predictedPath = cfg.PredictionsPath
			}
			rep, err := evaluate.EvaluateFiles(actualPath, predictedPath, evaluationOptions(cfg, maxPredictions))
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), rep.String())
			return nil
		},
	}
	cmd.Flags().StringVar(&actualPath, "actual", "", "labelled CSV (default: labelled_data_path)")
	cmd.Flags().StringVar(&predictedPath, "predicted", "", "predictions CSV (default: predictions_path)")
	cmd.Flags().IntVar(&maxPredictions, "max", 0, "compare at most N predictions (default: max_predictions)")
	return cmd
}

func newImportCmd() *cobra.Command {
	var csvPath string
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Seed feedback_enriched from a CSV file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loadConfig()
			records, err := pipeline.ReadFeedbackCSV(csvPath)
			if err != nil {
				return err
			}
			store, err := openStore(cmd.Context(), cfg)
			if err != nil {
				return fmt.Errorf("open database: %w", err)
			}
			defer store.Close()

			n, err := store.ImportFeedback(cmd.Context(), records)
			if err != nil {
				return err
			}
			log.Printf("Imported %d feedback records from %s", n, csvPath)
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d records\n", n)
			return nil
		},
	}
	cmd.Flags().StringVar(&csvPath, "csv", "", "CSV with department_name, feedback_text and optional id, date columns")
	cmd.MarkFlagRequired("csv")
	return cmd
}

type reportFlags struct {
	department string
	from       string
	to         string
	runID      string
}

func newReportCmd() *cobra.Command {
	var flags reportFlags
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print sentiment distribution and top keywords from persisted analysis",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loadConfig()
			filter, err := flags.filter()
			if err != nil {
				return err
			}
			store, err := openStore(cmd.Context(), cfg)
			if err != nil {
				return fmt.Errorf("open database: %w", err)
			}
			defer store.Close()

			if strings.EqualFold(filter.RunID, "latest") {
				filter.RunID, err = store.LatestRunID(cmd.Context())
				if err != nil {
					return err
				}
			}
			records, err := store.LoadAnalysis(cmd.Context(), filter)
			if err != nil {
				return err
			}
			vocab, err := textclean.LoadVocabularyIfConfigured(cfg.VocabularyPath)
			if err != nil {
				return err
			}
			content := report.Build(report.Input{
				RunID:        filter.RunID,
				GeneratedAt:  time.Now().In(cfg.Location),
				Records:      len(records),
				Distribution: aggregate.Distribution(records),
				Summary:      aggregate.Summarize(records, keywords.NewFillerSet(vocab.Fillers())),
			})
			fmt.Fprint(cmd.OutOrStdout(), content)
			return nil
		},
	}
	cmd.Flags().StringVar(&flags.department, "department", "", "only this department")
	cmd.Flags().StringVar(&flags.from, "from", "", "first feedback date, inclusive (YYYY-MM-DD)")
	cmd.Flags().StringVar(&flags.to, "to", "", "last feedback date, inclusive (YYYY-MM-DD)")
	cmd.Flags().StringVar(&flags.runID, "run-id", "", "only rows from this run; \"latest\" picks the newest")
	return cmd
}

// filter converts the flags into a storage filter. --to is inclusive on the
// command line and exclusive in storage, so a bare date is moved one day on.
func (f reportFlags) filter() (storage.Filter, error) {
	out := storage.Filter{Department: strings.TrimSpace(f.department), RunID: strings.TrimSpace(f.runID)}
	var err error
	if out.From, err = parseDateFlag("from", f.from); err != nil {
		return storage.Filter{}, err
	}
	if out.To, err = parseDateFlag("to", f.to); err != nil {
		return storage.Filter{}, err
	}
	if !out.To.IsZero() {
		out.To = out.To.AddDate(0, 0, 1)
	}
	if !out.From.IsZero() && !out.To.IsZero() && !out.From.Before(out.To) {
		return storage.Filter{}, fmt.Errorf("--from %s is after --to %s", f.from, f.to)
	}
	return out, nil
}

func parseDateFlag(name, value string) (time.Time, error) {
	t, err := domain.ParseDate(value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --%s %q: %w", name, value, err)
	}
	return t, nil
}

func newScheduleCmd() *cobra.Command {
	var evaluateAfter bool
	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Run the analysis on run_schedule until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loadConfig()
			if strings.TrimSpace(cfg.RunSchedule) == "" {
				return fmt.Errorf("run_schedule is not configured")
			}
			if _, err := buildSentimentModel(cfg); err != nil {
				return err
			}
			err := schedule.Start(cmd.Context(), cfg.RunSchedule, cfg.Location, func(ctx context.Context) {
				if err := runOnce(ctx, cfg, runOptions{evaluate: evaluateAfter, persist: true}); err != nil {
					log.Printf("Scheduled run failed: %v", err)
				}
			})
			if err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&evaluateAfter, "evaluate", false, "evaluate after every run")
	return cmd
}
