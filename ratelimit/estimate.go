package ratelimit

import (
	"fmt"
	"sync"

	"github.com/pkoukk/tiktoken-go"
)

// Estimator converts prompt text into the cost unit the Limiter accounts in.
type Estimator interface {
	Estimate(text string) int
}

// EstimatorFunc adapts a plain function to Estimator.
type EstimatorFunc func(text string) int

// Estimate implements Estimator.
func (f EstimatorFunc) Estimate(text string) int { return f(text) }

// CharEstimator approximates tokens as one per four bytes of text, the usual
// rule of thumb for English prose.
type CharEstimator struct{}

// Estimate implements Estimator.
func (CharEstimator) Estimate(text string) int {
	return (len(text) + 3) / 4
}

// TiktokenEstimator counts BPE tokens with a tiktoken encoding. When the
// encoding cannot be loaded (it is fetched on first use) it falls back to
// CharEstimator.
type TiktokenEstimator struct {
	encoding string

	once sync.Once
	enc  *tiktoken.Tiktoken
	err  error
}

// NewTiktokenEstimator creates an estimator for the named encoding
// ("cl100k_base" when empty).
func NewTiktokenEstimator(encoding string) *TiktokenEstimator {
	if encoding == "" {
		encoding = "cl100k_base"
	}
	return &TiktokenEstimator{encoding: encoding}
}

// Estimate implements Estimator.
func (t *TiktokenEstimator) Estimate(text string) int {
	t.once.Do(func() {
		t.enc, t.err = tiktoken.GetEncoding(t.encoding)
	})

	if t.err != nil || t.enc == nil {
		return CharEstimator{}.Estimate(text)
	}

	return len(t.enc.Encode(text, nil, nil))
}

// Err reports why the encoding could not be loaded, if it was attempted and failed.
func (t *TiktokenEstimator) Err() error {
	if t.err != nil {
		return fmt.Errorf("tiktoken %s: %w", t.encoding, t.err)
	}
	return nil
}

// NewEstimator resolves an estimator by configuration name: "chars" (default)
// or "tiktoken".
func NewEstimator(name string) (Estimator, error) {
	switch name {
	case "", "chars":
		return CharEstimator{}, nil
	case "tiktoken":
		return NewTiktokenEstimator(""), nil
	default:
		return nil, fmt.Errorf("unknown cost estimator %q", name)
	}
}
