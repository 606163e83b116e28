// Package domain defines the canonical transaction model shared by the
// ingestion pipeline, the categorizer boundary and the budget ledger.
package domain

import "time"

// CategoryType is the top-level budget bucket a transaction counts against.
type CategoryType string

const (
	CategoryTypeIncome   CategoryType = "income"
	CategoryTypeExpenses CategoryType = "expenses"
	CategoryTypeWants    CategoryType = "wants"
	CategoryTypeSavings  CategoryType = "savings"
)

// KnownCategoryTypes lists the spending buckets the ledger budgets against.
// Income is tracked separately and never counts as spending.
var KnownCategoryTypes = []CategoryType{
	CategoryTypeExpenses,
	CategoryTypeWants,
	CategoryTypeSavings,
}

// Transaction is a normalized, source-independent transaction record.
// Amount is signed: deposits positive, withdrawals negative. The sign is
// fixed at normalization time and never re-derived.
type Transaction struct {
	ID             string       `json:"id,omitempty"`
	Date           time.Time    `json:"transaction_date"`
	Description    string       `json:"transaction_description"`
	Amount         float64      `json:"transaction_amount"`
	Reference      string       `json:"reference,omitempty"`
	RunningBalance *float64     `json:"running_balance,omitempty"`
	Category       string       `json:"category,omitempty"`
	CategoryType   CategoryType `json:"category_type,omitempty"`
}

// Categorized reports whether both classification labels are present.
func (t *Transaction) Categorized() bool {
	return t.Category != "" && t.CategoryType != ""
}

// ClassificationSource identifies which path produced a classification,
// so fallback behavior stays observable to callers.
type ClassificationSource string

const (
	SourceModel    ClassificationSource = "model"
	SourceRules    ClassificationSource = "rules"
	SourceCaller   ClassificationSource = "caller"
	SourceFallback ClassificationSource = "fallback"
)

// Classification is the categorizer boundary's response for one transaction.
type Classification struct {
	Category string               `json:"category"`
	Type     CategoryType         `json:"category_type"`
	Source   ClassificationSource `json:"source,omitempty"`
}
