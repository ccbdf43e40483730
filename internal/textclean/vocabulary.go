package textclean

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Vocabulary holds optional, deployment-specific overrides for the
// normalizer and the keyword filler list.
type Vocabulary struct {
	ExtraStopwords []string          `yaml:"extra_stopwords"`
	KeepStopwords  []string          `yaml:"keep_stopwords"`
	Lemmas         map[string]string `yaml:"lemmas"`
	FillerKeywords []string          `yaml:"filler_keywords"`
}

func LoadVocabulary(path string) (*Vocabulary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read vocabulary: %w", err)
	}
	var v Vocabulary
	if err := yaml.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("parse vocabulary yaml: %w", err)
	}
	return &v, nil
}

// LoadVocabularyIfConfigured returns nil, nil for an empty path.
func LoadVocabularyIfConfigured(path string) (*Vocabulary, error) {
	if strings.TrimSpace(path) == "" {
		return nil, nil
	}
	return LoadVocabulary(path)
}

func (v *Vocabulary) Fillers() []string {
	if v == nil {
		return nil
	}
	return v.FillerKeywords
}

func normalizeTerm(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
