package sentiment

import (
	"context"
	"log"
	"strings"
	"sync"

	"feedbackinsight/internal/domain"
)

const (
	DefaultMaxInputChars = 512
	defaultBatchSize     = 20
	maxBatchConcurrency  = 4
)

// Model is a pretrained three-class classifier used as a black box.
// Predict returns one raw class label per input text, in input order.
type Model interface {
	Predict(ctx context.Context, texts []string) ([]string, error)
	Name() string
}

type Options struct {
	MaxInputChars int
	BatchSize     int
	// Concurrency bounds how many batches are in flight; values < 2 run
	// batches one after another.
	Concurrency int
}

// Classifier maps cleaned text to a canonical sentiment label. Failures and
// unrecognized model output never surface as errors: the affected items are
// labelled neutral.
type Classifier struct {
	model       Model
	maxChars    int
	batchSize   int
	concurrency int
}

func New(model Model, opts Options) *Classifier {
	c := &Classifier{
		model:       model,
		maxChars:    opts.MaxInputChars,
		batchSize:   opts.BatchSize,
		concurrency: opts.Concurrency,
	}
	if c.maxChars <= 0 {
		c.maxChars = DefaultMaxInputChars
	}
	if c.batchSize <= 0 {
		c.batchSize = defaultBatchSize
	}
	if c.concurrency < 1 {
		c.concurrency = 1
	}
	return c
}

func (c *Classifier) ModelName() string { return c.model.Name() }

func (c *Classifier) Classify(ctx context.Context, text string) domain.Sentiment {
	return c.ClassifyAll(ctx, []string{text})[0]
}

// ClassifyAll labels texts in batches. The result has the same length and
// order as texts regardless of batch size or concurrency.
func (c *Classifier) ClassifyAll(ctx context.Context, texts []string) []domain.Sentiment {
	out := make([]domain.Sentiment, len(texts))
	if len(texts) == 0 {
		return out
	}

	var batches [][2]int
	for start := 0; start < len(texts); start += c.batchSize {
		end := min(start+c.batchSize, len(texts))
		batches = append(batches, [2]int{start, end})
	}

	limit := batchConcurrencyLimit(len(batches), c.concurrency)
	sem := make(chan struct{}, limit)
	var wg sync.WaitGroup
	for idx, b := range batches {
		wg.Add(1)
		sem <- struct{}{}
		go func(idx, start, end int) {
			defer wg.Done()
			defer func() { <-sem }()
			c.classifyBatch(ctx, idx, texts[start:end], out[start:end])
		}(idx, b[0], b[1])
	}
	wg.Wait()
	return out
}

func (c *Classifier) classifyBatch(ctx context.Context, idx int, texts []string, out []domain.Sentiment) {
	inputs := make([]string, len(texts))
	for i, t := range texts {
		inputs[i] = Truncate(t, c.maxChars)
	}

	raw, err := c.model.Predict(ctx, inputs)
	if err != nil {
		log.Printf("sentiment batch failed model=%s batch=%d items=%d err=%v (labelled neutral)", c.model.Name(), idx, len(inputs), err)
		for i := range out {
			out[i] = domain.Neutral
		}
		return
	}
	if len(raw) != len(inputs) {
		log.Printf("sentiment batch size mismatch model=%s batch=%d items=%d labels=%d", c.model.Name(), idx, len(inputs), len(raw))
	}
	for i := range out {
		label := ""
		if i < len(raw) {
			label = raw[i]
		}
		out[i] = LabelFor(label)
	}
}

func batchConcurrencyLimit(total, configured int) int {
	limit := min(configured, maxBatchConcurrency)
	if total < limit {
		limit = total
	}
	if limit < 1 {
		return 1
	}
	return limit
}

// Truncate cuts text to at most n runes.
func Truncate(text string, n int) string {
	if n <= 0 || len(text) <= n {
		return text
	}
	count := 0
	for i := range text {
		if count == n {
			return text[:i]
		}
		count++
	}
	return text
}

var labelTable = map[string]domain.Sentiment{
	"label_0":  domain.Negative,
	"label_1":  domain.Neutral,
	"label_2":  domain.Positive,
	"negative": domain.Negative,
	"neutral":  domain.Neutral,
	"positive": domain.Positive,
}

// LabelFor maps a raw model label to a canonical sentiment. Labels missing
// from the table are neutral.
func LabelFor(raw string) domain.Sentiment {
	if s, ok := labelTable[strings.ToLower(strings.TrimSpace(raw))]; ok {
		return s
	}
	return domain.Neutral
}
