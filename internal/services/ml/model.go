// Package ml scores payments with a pre-trained logistic regression model
// exported as a JSON artifact. Training happens offline.
package ml

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"strings"
	"sync"
	"unicode"

	"scamshield/internal/services/risk"
)

// Artifact is the on-disk model format.
type Artifact struct {
	Bias           float64                `json:"bias"`
	AmountWeight   float64                `json:"amount_weight"`
	AmountScale    float64                `json:"amount_scale"`
	FirstWeight    float64                `json:"first_to_payee_weight"`
	ChannelWeights map[string]float64     `json:"channel_weights"`
	TokenWeights   map[string]float64     `json:"token_weights"`
	Meta           map[string]interface{} `json:"meta"`
}

func (a *Artifact) validate() error {
	if math.IsNaN(a.Bias) || math.IsInf(a.Bias, 0) {
		return fmt.Errorf("%w: bias is not finite", ErrInvalidArtifact)
	}
	if a.AmountScale < 0 {
		return fmt.Errorf("%w: negative amount scale", ErrInvalidArtifact)
	}
	for term, w := range a.TokenWeights {
		if math.IsNaN(w) || math.IsInf(w, 0) {
			return fmt.Errorf("%w: weight for %q is not finite", ErrInvalidArtifact, term)
		}
	}
	return nil
}

// Status describes the loaded model.
type Status struct {
	Loaded bool                   `json:"loaded"`
	Meta   map[string]interface{} `json:"meta,omitempty"`
}

// LogisticModel is safe for concurrent use; Load swaps the artifact
// atomically under a write lock.
type LogisticModel struct {
	mu       sync.RWMutex
	artifact *Artifact
}

func NewLogisticModel() *LogisticModel {
	return &LogisticModel{}
}

// LoadFile reads an artifact from disk.
func (m *LogisticModel) LoadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open model artifact: %w", err)
	}
	defer f.Close()
	return m.Load(f)
}

func (m *LogisticModel) Load(r io.Reader) error {
	var a Artifact
	if err := json.NewDecoder(r).Decode(&a); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidArtifact, err)
	}
	if err := a.validate(); err != nil {
		return err
	}

	tokens := make(map[string]float64, len(a.TokenWeights))
	for term, w := range a.TokenWeights {
		tokens[strings.ToLower(strings.TrimSpace(term))] = w
	}
	a.TokenWeights = tokens

	m.mu.Lock()
	m.artifact = &a
	m.mu.Unlock()
	return nil
}

func (m *LogisticModel) Status() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.artifact == nil {
		return Status{}
	}
	meta := m.artifact.Meta
	if meta == nil {
		meta = map[string]interface{}{}
	}
	return Status{Loaded: true, Meta: meta}
}

// Predict returns the scam probability, or false when no model is loaded.
func (m *LogisticModel) Predict(ctx context.Context, f risk.Features) (float64, bool) {
	if ctx.Err() != nil {
		return 0, false
	}
	p, err := m.probability(f)
	if err != nil {
		return 0, false
	}
	return p, true
}

func (m *LogisticModel) probability(f risk.Features) (float64, error) {
	m.mu.RLock()
	a := m.artifact
	m.mu.RUnlock()
	if a == nil {
		return 0, ErrModelNotLoaded
	}

	z := a.Bias
	amount := f.Amount
	if math.IsNaN(amount) || math.IsInf(amount, 0) || amount < 0 {
		amount = 0
	}
	if a.AmountScale > 0 {
		amount /= a.AmountScale
	}
	z += a.AmountWeight * amount
	if f.FirstToPayee {
		z += a.FirstWeight
	}

	channel := f.Channel
	if !channel.Valid() {
		channel = risk.ChannelWeb
	}
	z += a.ChannelWeights[string(channel)]

	for term := range terms(f.Memo) {
		z += a.TokenWeights[term]
	}
	return sigmoid(z), nil
}

// terms returns the distinct unigrams and bigrams of a memo.
func terms(memo string) map[string]struct{} {
	words := strings.FieldsFunc(strings.ToLower(memo), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	out := make(map[string]struct{}, len(words)*2)
	for i, w := range words {
		out[w] = struct{}{}
		if i > 0 {
			out[words[i-1]+" "+w] = struct{}{}
		}
	}
	return out
}

func sigmoid(z float64) float64 {
	return 1 / (1 + math.Exp(-z))
}
