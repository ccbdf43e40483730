// Package pipeline runs the single-pass feedback analysis: clean, classify,
// extract keywords, aggregate.
package pipeline

import (
	"context"
	"log"
	"time"

	"feedbackinsight/internal/aggregate"
	"feedbackinsight/internal/domain"
	"feedbackinsight/internal/keywords"
	"feedbackinsight/internal/sentiment"
	"feedbackinsight/internal/textclean"
)

type Pipeline struct {
	normalizer *textclean.Normalizer
	classifier *sentiment.Classifier
	extractor  *keywords.Extractor
	fillers    *keywords.FillerSet
}

// New wires the stages. A nil stage gets its default; a nil classifier runs
// the offline lexicon model.
func New(normalizer *textclean.Normalizer, classifier *sentiment.Classifier, extractor *keywords.Extractor, fillers *keywords.FillerSet) *Pipeline {
	if normalizer == nil {
		normalizer = textclean.NewNormalizer(nil)
	}
	if fillers == nil {
		fillers = keywords.NewFillerSet(nil)
	}
	if extractor == nil {
		extractor = keywords.New(nil, fillers, keywords.Options{})
	}
	if classifier == nil {
		classifier = sentiment.New(sentiment.NewLexiconModel(nil), sentiment.Options{})
	}
	return &Pipeline{normalizer: normalizer, classifier: classifier, extractor: extractor, fillers: fillers}
}

type Result struct {
	Records      []domain.AnalyzedRecord
	Summary      []domain.KeywordSummaryRow
	Distribution map[domain.Sentiment]int
}

// Run analyzes records in input order. Per-record failures degrade (neutral
// label, empty keyword list) and never abort the batch.
func (p *Pipeline) Run(ctx context.Context, records []domain.FeedbackRecord) Result {
	started := time.Now()
	out := make([]domain.AnalyzedRecord, len(records))
	cleaned := make([]string, len(records))
	for i, r := range records {
		cleaned[i] = p.normalizer.CleanNullable(r.FeedbackText)
		out[i] = domain.AnalyzedRecord{FeedbackRecord: r, CleanFeedback: cleaned[i]}
	}

	labels := p.classifier.ClassifyAll(ctx, cleaned)
	for i := range out {
		out[i].SentimentLabel = labels[i]
		out[i].Keywords = domain.KeywordList(p.extractor.Extract(cleaned[i]))
	}

	res := Result{
		Records:      out,
		Summary:      aggregate.Summarize(out, p.fillers),
		Distribution: aggregate.Distribution(out),
	}
	log.Printf(
		"pipeline run records=%d summary_rows=%d positive=%d neutral=%d negative=%d model=%s ranker=%s elapsed=%s",
		len(out), len(res.Summary),
		res.Distribution[domain.Positive], res.Distribution[domain.Neutral], res.Distribution[domain.Negative],
		p.classifier.ModelName(), p.extractor.RankerName(), time.Since(started).Round(time.Millisecond),
	)
	return res
}
