package categorize

import (
	"context"
	"testing"

	"github.com/finchat/backend/internal/domain"
)

func TestRulesClassify(t *testing.T) {
	tests := []struct {
		name         string
		description  string
		amount       float64
		wantCategory string
		wantType     domain.CategoryType
	}{
		{"salary", "ACME PTY SALARY 038742", 5000, "Salary", domain.CategoryTypeIncome},
		{"payroll", "PAYROLL DEPOSIT", 3200, "Salary", domain.CategoryTypeIncome},
		{"rent", "RENT MARCH", -1800, "Housing", domain.CategoryTypeExpenses},
		{"groceries", "WOOLWORTHS 1234 SYDNEY", -120.50, "Groceries", domain.CategoryTypeExpenses},
		{"groceries pos prefix", "POS COLES 0042", -85, "Groceries", domain.CategoryTypeExpenses},
		{"utilities", "TELSTRA INTERNET", -89, "Utilities", domain.CategoryTypeExpenses},
		{"dining visa prefix", "VISA *STARBUCKS #123", -6.50, "Dining", domain.CategoryTypeWants},
		{"streaming", "NETFLIX.COM 123456789", -15.99, "Entertainment", domain.CategoryTypeWants},
		{"shopping", "AMAZON MKTP AU", -49, "Shopping", domain.CategoryTypeWants},
		{"investing", "VANGUARD ETF BUY", -500, "Investments", domain.CategoryTypeSavings},
		{"savings transfer", "TRANSFER TO SAVER", -400, "Savings", domain.CategoryTypeSavings},
		{"generic deposit", "ATM DEPOSIT", 200, "Deposit", domain.CategoryTypeIncome},
	}

	r := NewRules()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.Classify(context.Background(), tt.description, tt.amount)
			if err != nil {
				t.Fatalf("Classify returned error: %v", err)
			}
			if got.Category != tt.wantCategory {
				t.Errorf("Classify(%q).Category = %q, want %q", tt.description, got.Category, tt.wantCategory)
			}
			if got.Type != tt.wantType {
				t.Errorf("Classify(%q).Type = %q, want %q", tt.description, got.Type, tt.wantType)
			}
			if got.Source != domain.SourceRules {
				t.Errorf("Classify(%q).Source = %q, want %q", tt.description, got.Source, domain.SourceRules)
			}
		})
	}
}

func TestRulesDisplayNameFallback(t *testing.T) {
	r := NewRules()

	got, err := r.Classify(context.Background(), "XYZ WIDGETS PTY LTD 99887766", -42)
	if err != nil {
		t.Fatalf("Classify returned error: %v", err)
	}
	if got.Type != domain.CategoryTypeExpenses {
		t.Errorf("unmatched spend type = %q, want expenses", got.Type)
	}
	if got.Category != "Xyz Widgets Pty Ltd" {
		t.Errorf("display name = %q, want %q", got.Category, "Xyz Widgets Pty Ltd")
	}
}

func TestRulesEmptyDescription(t *testing.T) {
	r := NewRules()

	got, err := r.Classify(context.Background(), "  ", -10)
	if err != nil {
		t.Fatalf("Classify returned error: %v", err)
	}
	if got.Category != "Uncategorized" {
		t.Errorf("empty description category = %q, want Uncategorized", got.Category)
	}
}

func TestCleanDescription(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"POS WOOLWORTHS 12345678", "woolworths"},
		{"VISA *STARBUCKS #123", "starbucks 123"},
		{"EFTPOS CAFE 0042", "cafe"},
		{"NETFLIX.COM 123456789", "netflix.com"},
	}

	for _, tt := range tests {
		if got := cleanDescription(tt.input); got != tt.want {
			t.Errorf("cleanDescription(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
