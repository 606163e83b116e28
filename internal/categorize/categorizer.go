// Package categorize assigns a category label and budget bucket to a
// transaction. The ledger depends only on the Categorizer contract, so the
// Gemini classifier can be swapped for the deterministic rule engine (or
// any other implementation) without touching ledger code.
package categorize

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/finchat/backend/internal/domain"
)

// Categorizer classifies a transaction by its description and amount.
type Categorizer interface {
	Classify(ctx context.Context, description string, amount float64) (domain.Classification, error)
}

// Fallback is the classification used when every other path fails.
var Fallback = domain.Classification{
	Category: "Uncategorized",
	Type:     domain.CategoryTypeExpenses,
	Source:   domain.SourceFallback,
}

// Total wraps a primary (usually model-backed) categorizer and the rule
// engine into a total function: Classify never fails the caller. Internal
// failures degrade model -> rules -> static fallback, and every result is
// tagged with the path that produced it, so the degradation stays
// observable without ever aborting ingestion.
type Total struct {
	primary Categorizer
	rules   *Rules
	log     zerolog.Logger
}

// NewTotal builds the total categorizer boundary. primary may be nil, in
// which case the rule engine serves every request.
func NewTotal(primary Categorizer, rules *Rules, log zerolog.Logger) *Total {
	return &Total{primary: primary, rules: rules, log: log}
}

// Classify classifies a transaction and never returns an error.
func (t *Total) Classify(ctx context.Context, description string, amount float64) domain.Classification {
	if t.primary != nil {
		c, err := t.primary.Classify(ctx, description, amount)
		if err == nil && c.Category != "" && c.Type != "" {
			return c
		}
		if err != nil {
			t.log.Warn().Err(err).Str("description", description).
				Msg("model classification failed, falling back")
		}
	}

	if t.rules != nil {
		c, err := t.rules.Classify(ctx, description, amount)
		if err == nil {
			return c
		}
	}

	return Fallback
}
