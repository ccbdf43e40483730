package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"sync"

	"feedbackinsight/internal/httpx"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const DefaultAnthropicModel = "claude-sonnet-4-5-20250929"
const defaultMaxTokens = 4096

type LLMUsage struct {
	InputTokens              int64
	OutputTokens             int64
	CacheCreationInputTokens int64
	CacheReadInputTokens     int64
}

func (u LLMUsage) TotalTokens() int64 {
	return u.InputTokens + u.OutputTokens
}

func (u *LLMUsage) Add(other LLMUsage) {
	u.InputTokens += other.InputTokens
	u.OutputTokens += other.OutputTokens
	u.CacheCreationInputTokens += other.CacheCreationInputTokens
	u.CacheReadInputTokens += other.CacheReadInputTokens
}

// AnthropicModel classifies feedback with a Claude model. It speaks the same
// LABEL_0/LABEL_1/LABEL_2 vocabulary as the pretrained sentiment model, so
// the classifier's label table applies unchanged.
type AnthropicModel struct {
	client anthropic.Client
	model  string

	mu    sync.Mutex
	usage LLMUsage
}

// NewAnthropicModel builds a model backed by the shared external HTTP client.
// Extra request options (base URL, retries) are applied after the defaults.
func NewAnthropicModel(apiKey, model string, opts ...option.RequestOption) *AnthropicModel {
	if strings.TrimSpace(model) == "" {
		model = DefaultAnthropicModel
	}
	base := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithHTTPClient(httpx.ExternalHTTPClient()),
	}
	return &AnthropicModel{
		client: anthropic.NewClient(append(base, opts...)...),
		model:  model,
	}
}

func (m *AnthropicModel) Name() string { return "anthropic:" + m.model }

// Usage returns the token usage accumulated across all Predict calls.
func (m *AnthropicModel) Usage() LLMUsage {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.usage
}

func (m *AnthropicModel) Predict(ctx context.Context, texts []string) ([]string, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	userPrompt, err := buildSentimentPrompt(texts)
	if err != nil {
		return nil, err
	}
	log.Printf("llm sentiment provider=anthropic model=%s items=%d", m.model, len(texts))

	responseText, usage, err := m.call(ctx, sentimentSystemPrompt, userPrompt)
	m.mu.Lock()
	m.usage.Add(usage)
	m.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return parseSentimentResponse(responseText, len(texts))
}

func (m *AnthropicModel) call(ctx context.Context, systemPrompt, userPrompt string) (string, LLMUsage, error) {
	message, err := m.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(m.model),
		MaxTokens: defaultMaxTokens,
		System: []anthropic.TextBlockParam{
			{Text: systemPrompt, CacheControl: anthropic.NewCacheControlEphemeralParam()},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(userPrompt)),
		},
	})
	if err != nil {
		log.Printf("llm anthropic error: %v", err)
		return "", LLMUsage{}, fmt.Errorf("Anthropic API error: %w", err)
	}
	usage := LLMUsage{
		InputTokens:              message.Usage.InputTokens,
		OutputTokens:             message.Usage.OutputTokens,
		CacheCreationInputTokens: message.Usage.CacheCreationInputTokens,
		CacheReadInputTokens:     message.Usage.CacheReadInputTokens,
	}

	for _, block := range message.Content {
		if block.Type == "text" {
			log.Printf("llm anthropic response size=%d tokens_in=%d tokens_out=%d cache_create=%d cache_read=%d", len(block.Text), usage.InputTokens, usage.OutputTokens, usage.CacheCreationInputTokens, usage.CacheReadInputTokens)
			return block.Text, usage, nil
		}
	}
	return "", usage, fmt.Errorf("no text content in Anthropic response")
}

const sentimentSystemPrompt = `You are a sentiment classifier for short, pre-cleaned customer feedback.
Text has been lowercased, stripped of punctuation and digits, and had stopwords removed; the words "not" and "no" are kept.

Assign exactly one label per item:
- LABEL_0: negative
- LABEL_1: neutral, mixed, or no clear sentiment (including empty text)
- LABEL_2: positive

Respond with ONLY a JSON array, one object per input item, in the same order:
[{"id": 0, "label": "LABEL_2"}]`

type sentimentItem struct {
	ID   int    `json:"id"`
	Text string `json:"text"`
}

type sentimentLabel struct {
	ID    int    `json:"id"`
	Label string `json:"label"`
}

func buildSentimentPrompt(texts []string) (string, error) {
	items := make([]sentimentItem, len(texts))
	for i, t := range texts {
		items[i] = sentimentItem{ID: i, Text: t}
	}
	payload, err := json.Marshal(items)
	if err != nil {
		return "", fmt.Errorf("encoding sentiment prompt: %w", err)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Classify these %d feedback items:\n", len(texts))
	b.Write(payload)
	return b.String(), nil
}

// parseSentimentResponse maps the reply back onto input positions by id.
// Items the model skipped come back as "" and are labelled neutral downstream.
func parseSentimentResponse(responseText string, n int) ([]string, error) {
	responseText = stripCodeFence(responseText)

	var labels []sentimentLabel
	if err := json.Unmarshal([]byte(responseText), &labels); err != nil {
		truncated := responseText
		if len(truncated) > 512 {
			truncated = truncated[:512] + fmt.Sprintf("... [truncated, total_length=%d]", len(responseText))
		}
		return nil, fmt.Errorf("parsing LLM sentiment response: %w (truncated response: %s)", err, truncated)
	}

	out := make([]string, n)
	for _, l := range labels {
		if l.ID < 0 || l.ID >= n {
			log.Printf("llm sentiment reply references unknown id=%d items=%d", l.ID, n)
			continue
		}
		out[l.ID] = strings.TrimSpace(l.Label)
	}
	return out, nil
}

func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
