// Package textclean turns raw feedback text into the normalized token string
// consumed by the sentiment classifier and keyword extractor.
//
// The cleaning steps run in a fixed order:
//
//  1. NULL becomes the empty string
//  2. markup tags are stripped, text content kept
//  3. NFKD normalization, then everything outside printable ASCII is dropped
//  4. lowercase
//  5. characters other than [a-z0-9] and whitespace become a space
//  6. digit runs become a space
//  7. whitespace tokenization
//  8. stopword removal ("not" and "no" are kept)
//  9. noun lemmatization
//  10. tokens joined by single spaces
//
// Step 3 removes accents and any non-Latin script. Text written entirely in
// another script cleans to the empty string.
//
// A Normalizer is immutable after construction and safe for concurrent use.
package textclean

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/text/unicode/norm"
)

var digitRun = regexp.MustCompile(`[0-9]+`)

type Normalizer struct {
	stopwords  *Stopwords
	lemmatizer *Lemmatizer
}

// NewNormalizer builds a normalizer from the default stopword list and
// lemma tables, extended by vocab when it is non-nil.
func NewNormalizer(vocab *Vocabulary) *Normalizer {
	return &Normalizer{
		stopwords:  NewStopwords(vocab),
		lemmatizer: NewLemmatizer(vocab),
	}
}

func (n *Normalizer) Stopwords() *Stopwords { return n.stopwords }

// CleanNullable applies the pipeline to a possibly NULL value.
func (n *Normalizer) CleanNullable(text *string) string {
	if text == nil {
		return n.Clean("")
	}
	return n.Clean(*text)
}

func (n *Normalizer) Clean(text string) string {
	text = StripMarkup(text)
	text = ToASCII(text)
	text = strings.ToLower(text)
	text = ReplaceNonAlphanumeric(text)
	text = RemoveDigits(text)
	tokens := strings.Fields(text)
	tokens = n.stopwords.Filter(tokens)
	tokens = n.lemmatizer.LemmatizeAll(tokens)
	return strings.Join(tokens, " ")
}

// StripMarkup returns only the text content of an HTML fragment, with
// character references unescaped.
func StripMarkup(text string) string {
	if !strings.ContainsAny(text, "<&") {
		return text
	}
	z := html.NewTokenizer(strings.NewReader(text))
	var b strings.Builder
	for {
		switch z.Next() {
		case html.ErrorToken:
			return b.String()
		case html.TextToken:
			b.Write(z.Text())
		}
	}
}

// ToASCII decomposes text (NFKD) and drops every rune outside printable
// ASCII. ASCII whitespace is kept so token boundaries survive.
func ToASCII(text string) string {
	return strings.Map(func(r rune) rune {
		if (r >= 0x20 && r < 0x7f) || isASCIISpace(r) {
			return r
		}
		return -1
	}, norm.NFKD.String(text))
}

func ReplaceNonAlphanumeric(text string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case isASCIISpace(r):
			return r
		}
		return ' '
	}, text)
}

func RemoveDigits(text string) string {
	return digitRun.ReplaceAllString(text, " ")
}

func isASCIISpace(r rune) bool {
	switch r {
	case ' ', '\t', '\n', '\r', '\v', '\f':
		return true
	}
	return false
}
