package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finchat/backend/internal/domain"
)

func newTestLedger() *Ledger {
	l := New(nil)
	l.now = func() time.Time {
		return time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)
	}
	return l
}

func TestNewLedgerDefaults(t *testing.T) {
	l := newTestLedger()

	assert.Equal(t, DefaultGoals, l.Goals())
	assert.Equal(t, 0.0, l.TotalIncome())
	assert.Equal(t, 0, l.Count())
}

func TestSetGoalsPercentagesAndFractionsAgree(t *testing.T) {
	a := newTestLedger()
	b := newTestLedger()

	fromPercent, err := a.SetGoals(70, 20, 10)
	require.NoError(t, err)
	fromFraction, err := b.SetGoals(0.70, 0.20, 0.10)
	require.NoError(t, err)

	assert.Equal(t, fromFraction, fromPercent)
	assert.InDelta(t, 0.70, fromPercent.Expenses, 1e-9)
	assert.InDelta(t, 0.20, fromPercent.Wants, 1e-9)
	assert.InDelta(t, 0.10, fromPercent.Savings, 1e-9)
}

func TestSetGoalsRenormalizes(t *testing.T) {
	tests := []struct {
		name                     string
		expenses, wants, savings float64
	}{
		{"fractions off one", 0.5, 0.5, 0.5},
		{"percentages off hundred", 60, 30, 20},
		{"tiny fractions", 0.05, 0.03, 0.02},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := newTestLedger()
			goals, err := l.SetGoals(tt.expenses, tt.wants, tt.savings)
			require.NoError(t, err)

			sum := goals.Expenses + goals.Wants + goals.Savings
			assert.InDelta(t, 1.0, sum, 0.01, "goals must sum to 1 after any SetGoals")
		})
	}
}

func TestSetGoalsRejectsNegative(t *testing.T) {
	l := newTestLedger()

	_, err := l.SetGoals(-0.1, 0.6, 0.5)
	require.Error(t, err)
	// Old goals stand after a rejected update.
	assert.Equal(t, DefaultGoals, l.Goals())
}

func TestSetGoalsRejectsZeroSum(t *testing.T) {
	l := newTestLedger()

	_, err := l.SetGoals(0, 0, 0)
	require.Error(t, err)
	assert.Equal(t, DefaultGoals, l.Goals())
}

func TestAllocationsAndRemaining(t *testing.T) {
	l := newTestLedger()
	l.SetIncome(5000)

	l.Ingest(context.Background(), []domain.Transaction{
		{Description: "RENT", Amount: 1200, Category: "Housing", CategoryType: domain.CategoryTypeExpenses},
	})

	alloc := l.Allocations()
	assert.InDelta(t, 3500, alloc.Expenses, 1e-9)
	assert.InDelta(t, 1000, alloc.Wants, 1e-9)
	assert.InDelta(t, 500, alloc.Savings, 1e-9)

	sum := l.Summary()
	assert.InDelta(t, 1200, sum.CurrentSpending["expenses"], 1e-9)
	assert.InDelta(t, 2300, sum.RemainingBudget.Expenses, 1e-9)
	assert.InDelta(t, 1000, sum.RemainingBudget.Wants, 1e-9)
}

func TestRemainingSavingsIsExceedanceNotShortfall(t *testing.T) {
	l := newTestLedger()
	l.SetIncome(5000) // savings allocation 500

	l.Ingest(context.Background(), []domain.Transaction{
		{Description: "TRANSFER TO SAVER", Amount: -600, Category: "Savings", CategoryType: domain.CategoryTypeSavings},
	})

	sum := l.Summary()
	// 600 saved against a 500 goal: positive means the goal was exceeded.
	assert.InDelta(t, 100, sum.RemainingBudget.Savings, 1e-9)
}

func TestCurrentSpendingUsesAbsoluteAmounts(t *testing.T) {
	l := newTestLedger()

	l.Ingest(context.Background(), []domain.Transaction{
		{Description: "RENT", Amount: -1800, Category: "Housing", CategoryType: domain.CategoryTypeExpenses},
		{Description: "GROCERIES", Amount: 120, Category: "Groceries", CategoryType: domain.CategoryTypeExpenses},
		{Description: "SALARY", Amount: 5000, Category: "Salary", CategoryType: domain.CategoryTypeIncome},
	})

	report := l.CurrentSpending()
	assert.InDelta(t, 1920, report.Spending["expenses"], 1e-9)
	assert.InDelta(t, 1920, report.TotalSpent, 1e-9)
	// Income never counts as spending.
	assert.NotContains(t, report.Spending, "income")
	assert.InDelta(t, 1800, report.CategoryBreakdown["Housing"], 1e-9)
}

func TestUnknownCategoryTypeExcludedFromTotalSpent(t *testing.T) {
	l := newTestLedger()

	l.Ingest(context.Background(), []domain.Transaction{
		{Description: "RENT", Amount: -1000, Category: "Housing", CategoryType: domain.CategoryTypeExpenses},
		{Description: "ODD", Amount: -50, Category: "Odd", CategoryType: "discretionary"},
	})

	report := l.CurrentSpending()
	// The unknown bucket is visible in the maps but excluded from the
	// total, which only ever sums the three known buckets.
	assert.InDelta(t, 50, report.Spending["discretionary"], 1e-9)
	assert.InDelta(t, 50, report.CategoryBreakdown["Odd"], 1e-9)
	assert.InDelta(t, 1000, report.TotalSpent, 1e-9)
}

func TestEmptyLedgerSummary(t *testing.T) {
	l := newTestLedger()

	sum := l.Summary()
	assert.Equal(t, 0.0, sum.TotalSpent)
	assert.Equal(t, 0.0, sum.TotalRemaining)
	assert.Empty(t, sum.CategoryBreakdown)
	assert.Equal(t, 0, sum.TransactionsCount)
	assert.Equal(t, 0.0, sum.RemainingBudget.Expenses)
}

func TestEarnedIncome(t *testing.T) {
	l := newTestLedger()

	l.Ingest(context.Background(), []domain.Transaction{
		{Description: "SALARY", Amount: 5000, Category: "Salary", CategoryType: domain.CategoryTypeIncome},
		{Description: "REFUND REVERSAL", Amount: -40, Category: "Refund", CategoryType: domain.CategoryTypeIncome},
		{Description: "RENT", Amount: -1800, Category: "Housing", CategoryType: domain.CategoryTypeExpenses},
	})
	l.SetIncome(6000)

	// Earned income is what arrived, not what was declared; negative
	// income-typed rows do not subtract.
	assert.InDelta(t, 5000, l.EarnedIncome(), 1e-9)
	assert.InDelta(t, 6000, l.TotalIncome(), 1e-9)
}

func TestIngestAssignsIDsAndPreservesOrder(t *testing.T) {
	l := newTestLedger()

	appended := l.Ingest(context.Background(), []domain.Transaction{
		{Description: "FIRST", Amount: -10, Category: "A", CategoryType: domain.CategoryTypeExpenses},
		{Description: "SECOND", Amount: -20, Category: "B", CategoryType: domain.CategoryTypeExpenses},
	})

	require.Len(t, appended, 2)
	assert.Equal(t, "FIRST", appended[0].Description)
	assert.Equal(t, "SECOND", appended[1].Description)
	assert.NotEmpty(t, appended[0].ID)
	assert.NotEmpty(t, appended[1].ID)
	assert.NotEqual(t, appended[0].ID, appended[1].ID)
}

func TestIngestClassifiesUncategorized(t *testing.T) {
	l := newTestLedger() // nil categorizer: static fallback

	appended := l.Ingest(context.Background(), []domain.Transaction{
		{Description: "MYSTERY CHARGE", Amount: -30},
	})

	require.Len(t, appended, 1)
	assert.Equal(t, "Uncategorized", appended[0].Category)
	assert.Equal(t, domain.CategoryTypeExpenses, appended[0].CategoryType)
}

func TestAddTransaction(t *testing.T) {
	l := newTestLedger()
	l.SetIncome(5000)

	tx, sum := l.AddTransaction(context.Background(), -75, "CINEMA", "Entertainment", domain.CategoryTypeWants)

	assert.NotEmpty(t, tx.ID)
	assert.Equal(t, time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC), tx.Date)
	assert.Equal(t, "Entertainment", tx.Category)
	assert.Equal(t, 1, sum.TransactionsCount)
	assert.InDelta(t, 75, sum.CurrentSpending["wants"], 1e-9)
	assert.InDelta(t, 925, sum.RemainingBudget.Wants, 1e-9)
}

func TestAddTransactionClassifiesWhenLabelsOmitted(t *testing.T) {
	l := newTestLedger()

	tx, _ := l.AddTransaction(context.Background(), -30, "SOMETHING", "", "")

	assert.Equal(t, "Uncategorized", tx.Category)
	assert.Equal(t, domain.CategoryTypeExpenses, tx.CategoryType)
}

func TestTransactionsReturnsCopy(t *testing.T) {
	l := newTestLedger()
	l.Ingest(context.Background(), []domain.Transaction{
		{Description: "X", Amount: -1, Category: "A", CategoryType: domain.CategoryTypeExpenses},
	})

	got := l.Transactions()
	got[0].Description = "MUTATED"

	assert.Equal(t, "X", l.Transactions()[0].Description)
}
