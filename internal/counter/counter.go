// Package counter provides token counting strategies for markdown content
package counter

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/ludo-technologies/mdtoken/domain"
	"github.com/ludo-technologies/mdtoken/internal/constants"
)

// DefaultEncoding is the encoding assumed when none is configured
const DefaultEncoding = "cl100k_base"

// Counter modes selectable in configuration
const (
	ModeEstimate = "estimate"
	ModeWords    = "words"
)

// encodingRatios maps encoding names to their approximate characters
// per token for English prose
var encodingRatios = map[string]float64{
	"cl100k_base": constants.DefaultCharsPerToken,
	"o200k_base":  4.2,
	"p50k_base":   3.8,
	"r50k_base":   3.8,
}

// modelEncodings maps model names to the encoding they tokenize with
var modelEncodings = map[string]string{
	"gpt-3.5-turbo":    "cl100k_base",
	"gpt-4":            "cl100k_base",
	"gpt-4-turbo":      "cl100k_base",
	"gpt-4o":           "o200k_base",
	"gpt-4o-mini":      "o200k_base",
	"o1":               "o200k_base",
	"o3":               "o200k_base",
	"text-davinci-003": "p50k_base",
}

// Estimator approximates token counts from text length. Tokenizers for
// the supported encodings produce roughly one token per four characters
// of English prose, which is close enough for limit enforcement without
// shipping tokenizer vocabularies.
type Estimator struct {
	encoding      string
	charsPerToken float64
}

// NewEstimator returns an estimator for the default encoding
func NewEstimator() *Estimator {
	return &Estimator{encoding: DefaultEncoding, charsPerToken: encodingRatios[DefaultEncoding]}
}

// NewEstimatorForEncoding returns an estimator tuned for the named encoding
func NewEstimatorForEncoding(encoding string) (*Estimator, error) {
	ratio, ok := encodingRatios[encoding]
	if !ok {
		return nil, fmt.Errorf("unknown encoding %q", encoding)
	}
	return &Estimator{encoding: encoding, charsPerToken: ratio}, nil
}

// NewEstimatorForModel returns an estimator for the encoding the named
// model tokenizes with. Models not in the lookup table get the default
// encoding, so configurations naming newly released models keep working.
func NewEstimatorForModel(model string) (*Estimator, error) {
	encoding, ok := modelEncodings[model]
	if !ok {
		encoding = DefaultEncoding
	}
	return NewEstimatorForEncoding(encoding)
}

// Count returns the estimated token count for text
func (e *Estimator) Count(text string) (int, error) {
	if err := validate(text); err != nil {
		return 0, err
	}
	if len(text) == 0 {
		return 0, nil
	}
	return int(math.Ceil(float64(len(text)) / e.charsPerToken)), nil
}

// Name identifies the counting strategy
func (e *Estimator) Name() string {
	return "estimate/" + e.encoding
}

// WordCounter estimates tokens from whitespace separated words
type WordCounter struct{}

// NewWordCounter returns a word based counter
func NewWordCounter() *WordCounter {
	return &WordCounter{}
}

// Count returns the estimated token count for text
func (w *WordCounter) Count(text string) (int, error) {
	if err := validate(text); err != nil {
		return 0, err
	}
	words := len(strings.Fields(text))
	if words == 0 {
		return 0, nil
	}
	return int(math.Ceil(float64(words) * constants.DefaultTokensPerWord)), nil
}

// Name identifies the counting strategy
func (w *WordCounter) Name() string {
	return "words"
}

// ForConfig builds the counter selected by configuration. A model name
// takes precedence over an encoding name when both are set.
func ForConfig(mode, model, encoding string) (domain.TokenCounter, error) {
	switch mode {
	case "", ModeEstimate:
		if model != "" {
			return NewEstimatorForModel(model)
		}
		if encoding != "" {
			return NewEstimatorForEncoding(encoding)
		}
		return NewEstimator(), nil
	case ModeWords:
		return NewWordCounter(), nil
	default:
		return nil, fmt.Errorf("unknown counter mode %q", mode)
	}
}

// validate rejects content a tokenizer could not encode
func validate(text string) error {
	if !utf8.ValidString(text) {
		return errors.New("content is not valid UTF-8")
	}
	if strings.IndexByte(text, 0) >= 0 {
		return errors.New("content contains NUL bytes")
	}
	return nil
}
