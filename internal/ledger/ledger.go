// Package ledger owns allocation goals, declared income and the
// append-only transaction log, and derives spend and remaining-budget
// figures from them.
package ledger

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/finchat/backend/internal/categorize"
	"github.com/finchat/backend/internal/domain"
)

const (
	// goalSumTolerance is how far the three goal fractions may drift from
	// 1.0 before they are renormalized.
	goalSumTolerance = 0.01
	// percentThreshold: a goal sum above this means the caller supplied
	// percentages, not fractions, and they are rescaled by 100.
	percentThreshold = 1.5
)

// Goals are the target fractions of income allocated to each bucket.
// They always sum to 1.0 within tolerance after SetGoals.
type Goals struct {
	Expenses float64 `json:"expenses"`
	Wants    float64 `json:"wants"`
	Savings  float64 `json:"savings"`
}

// DefaultGoals is the 70/20/10 needs/wants/savings split.
var DefaultGoals = Goals{Expenses: 0.70, Wants: 0.20, Savings: 0.10}

// Allocation holds the dollar amount assigned to each bucket.
type Allocation struct {
	Expenses float64 `json:"expenses"`
	Wants    float64 `json:"wants"`
	Savings  float64 `json:"savings"`
}

// Remaining is allocation minus spend for expenses and wants, but spend
// minus allocation for savings: exceeding the savings goal is a success,
// so a positive savings figure always reads as good news. Do not "fix"
// the asymmetry; presentation layers depend on it.
type Remaining struct {
	Expenses float64 `json:"expenses"`
	Wants    float64 `json:"wants"`
	Savings  float64 `json:"savings"`
}

// SpendingReport aggregates spending by bucket and by category label.
type SpendingReport struct {
	// Spending is keyed by category type. Unknown types emitted by a
	// buggy categorizer accumulate under their own key here.
	Spending map[string]float64 `json:"spending"`
	// CategoryBreakdown is the per-category-label histogram.
	CategoryBreakdown map[string]float64 `json:"category_breakdown"`
	// TotalSpent sums only the three known buckets, so amounts under an
	// unknown type appear in Spending and CategoryBreakdown but not here.
	// Preserved source behavior; see the ledger tests.
	TotalSpent float64 `json:"total_spent"`
}

// Summary is the full budget status consumed by presentation layers.
type Summary struct {
	TotalIncome       float64            `json:"total_income"`
	BudgetAllocations Allocation         `json:"budget_allocations"`
	CurrentSpending   map[string]float64 `json:"current_spending"`
	RemainingBudget   Remaining          `json:"remaining_budget"`
	TotalSpent        float64            `json:"total_spent"`
	TotalRemaining    float64            `json:"total_remaining"`
	CategoryBreakdown map[string]float64 `json:"category_breakdown"`
	TransactionsCount int                `json:"transactions_count"`
}

// Ledger is a monotonically-growing transaction log with mutable goal and
// income scalars. One ledger belongs to one session; operations on it are
// additionally serialized by the session, because a concurrent append
// between computing a summary and rendering it would be a torn read.
type Ledger struct {
	categorizer *categorize.Total

	totalIncome  float64
	goals        Goals
	transactions []domain.Transaction

	now func() time.Time
}

// New creates an empty ledger with the default 70/20/10 goals.
func New(categorizer *categorize.Total) *Ledger {
	return &Ledger{
		categorizer: categorizer,
		goals:       DefaultGoals,
		now:         time.Now,
	}
}

// SetGoals validates and stores new allocation goals. Values that sum near
// 100 are treated as percentages and rescaled; any other sum off 1.0 by
// more than the tolerance is renormalized by dividing by the observed
// total. Goals are replaced atomically: on error the old goals stand.
func (l *Ledger) SetGoals(expenses, wants, savings float64) (Goals, error) {
	if expenses < 0 || wants < 0 || savings < 0 {
		return l.goals, fmt.Errorf("set goals: fractions must be non-negative, got (%v, %v, %v)", expenses, wants, savings)
	}

	sum := expenses + wants + savings
	if sum == 0 {
		return l.goals, fmt.Errorf("set goals: fractions sum to zero")
	}

	if sum > percentThreshold {
		expenses, wants, savings = expenses/100, wants/100, savings/100
		sum = expenses + wants + savings
	}
	if math.Abs(sum-1.0) > goalSumTolerance {
		expenses, wants, savings = expenses/sum, wants/sum, savings/sum
	}

	l.goals = Goals{Expenses: expenses, Wants: wants, Savings: savings}
	return l.goals, nil
}

// Goals returns the current allocation goals.
func (l *Ledger) Goals() Goals {
	return l.goals
}

// SetIncome replaces the user-declared budget income. This is the figure
// the user plans against; EarnedIncome reports what actually arrived.
func (l *Ledger) SetIncome(amount float64) {
	l.totalIncome = amount
}

// TotalIncome returns the user-declared budget income.
func (l *Ledger) TotalIncome() float64 {
	return l.totalIncome
}

// EarnedIncome sums positive amounts over income-typed transactions. It is
// intentionally distinct from the declared TotalIncome.
func (l *Ledger) EarnedIncome() float64 {
	var total float64
	for i := range l.transactions {
		tx := &l.transactions[i]
		if tx.CategoryType == domain.CategoryTypeIncome && tx.Amount > 0 {
			total += tx.Amount
		}
	}
	return total
}

// Allocations splits the declared income across the goal fractions. Pure
// function of current state.
func (l *Ledger) Allocations() Allocation {
	return Allocation{
		Expenses: l.totalIncome * l.goals.Expenses,
		Wants:    l.totalIncome * l.goals.Wants,
		Savings:  l.totalIncome * l.goals.Savings,
	}
}

// CurrentSpending aggregates every non-income transaction into a bucket by
// category type, and into the category histogram by label. Absolute values
// are used so that withdrawal-negative amounts count as spend.
func (l *Ledger) CurrentSpending() SpendingReport {
	spending := map[string]float64{
		string(domain.CategoryTypeExpenses): 0,
		string(domain.CategoryTypeWants):    0,
		string(domain.CategoryTypeSavings):  0,
	}
	breakdown := make(map[string]float64)

	for i := range l.transactions {
		tx := &l.transactions[i]
		if tx.CategoryType == domain.CategoryTypeIncome {
			continue
		}

		amount := math.Abs(tx.Amount)
		spending[string(tx.CategoryType)] += amount

		label := tx.Category
		if label == "" {
			label = "Uncategorized"
		}
		breakdown[label] += amount
	}

	var total float64
	for _, ct := range domain.KnownCategoryTypes {
		total += spending[string(ct)]
	}

	return SpendingReport{
		Spending:          spending,
		CategoryBreakdown: breakdown,
		TotalSpent:        total,
	}
}

// Ingest classifies (when needed) and appends bulk-loaded transactions.
// Classification happens before the append so a slow model call never
// holds up readers; the append itself preserves input order.
func (l *Ledger) Ingest(ctx context.Context, txs []domain.Transaction) []domain.Transaction {
	appended := make([]domain.Transaction, 0, len(txs))
	for _, tx := range txs {
		if !tx.Categorized() {
			c := l.classify(ctx, tx.Description, tx.Amount)
			if tx.Category == "" {
				tx.Category = c.Category
			}
			if tx.CategoryType == "" {
				tx.CategoryType = c.Type
			}
		}
		if tx.ID == "" {
			tx.ID = uuid.New().String()
		}
		l.transactions = append(l.transactions, tx)
		appended = append(appended, tx)
	}
	return appended
}

// AddTransaction appends one manually-entered transaction, classifying it
// when the caller omits either label, and returns the stored transaction
// with the updated summary. The transaction is dated now; corrections are
// made by appending an offsetting transaction, never by editing.
func (l *Ledger) AddTransaction(ctx context.Context, amount float64, description, category string, categoryType domain.CategoryType) (domain.Transaction, Summary) {
	if category == "" || categoryType == "" {
		c := l.classify(ctx, description, amount)
		if category == "" {
			category = c.Category
		}
		if categoryType == "" {
			categoryType = c.Type
		}
	}

	tx := domain.Transaction{
		ID:           uuid.New().String(),
		Date:         l.now(),
		Description:  description,
		Amount:       amount,
		Category:     category,
		CategoryType: categoryType,
	}
	l.transactions = append(l.transactions, tx)

	return tx, l.Summary()
}

// Transactions returns the transaction log in arrival order. The returned
// slice is a copy; the log itself is append-only.
func (l *Ledger) Transactions() []domain.Transaction {
	out := make([]domain.Transaction, len(l.transactions))
	copy(out, l.transactions)
	return out
}

// Count returns the number of transactions in the ledger.
func (l *Ledger) Count() int {
	return len(l.transactions)
}

// Summary combines allocations, current spending and the remaining-budget
// computation. An empty ledger yields all-zero figures, never an error.
func (l *Ledger) Summary() Summary {
	alloc := l.Allocations()
	current := l.CurrentSpending()

	remaining := Remaining{
		Expenses: alloc.Expenses - current.Spending[string(domain.CategoryTypeExpenses)],
		Wants:    alloc.Wants - current.Spending[string(domain.CategoryTypeWants)],
		// Positive when the savings goal is exceeded.
		Savings: current.Spending[string(domain.CategoryTypeSavings)] - alloc.Savings,
	}

	return Summary{
		TotalIncome:       l.totalIncome,
		BudgetAllocations: alloc,
		CurrentSpending:   current.Spending,
		RemainingBudget:   remaining,
		TotalSpent:        current.TotalSpent,
		TotalRemaining:    l.totalIncome - current.TotalSpent,
		CategoryBreakdown: current.CategoryBreakdown,
		TransactionsCount: len(l.transactions),
	}
}

func (l *Ledger) classify(ctx context.Context, description string, amount float64) domain.Classification {
	if l.categorizer == nil {
		return categorize.Fallback
	}
	return l.categorizer.Classify(ctx, description, amount)
}
