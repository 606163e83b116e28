// Package advisor turns ledger snapshots into natural-language budget
// advice through a text-completion model. It is a boundary: the core never
// depends on its output, and callers are expected to wrap calls with their
// own timeout via ctx.
package advisor

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"google.golang.org/genai"

	"github.com/finchat/backend/internal/domain"
	"github.com/finchat/backend/internal/ledger"
)

const analysisSystemPrompt = `You are a helpful financial advisor chatbot. Analyze the user's spending and provide clear, actionable advice. Be encouraging but honest about areas for improvement. IMPORTANT: For savings, exceeding the goal is excellent and should be praised! Savings above the target is a positive achievement, not overspending. Format your response in a clear, conversational way.`

const updateSystemPrompt = `You are a helpful financial advisor. Provide brief, actionable updates when users add transactions. Be encouraging when they're on track and gently firm when they're overspending. IMPORTANT: For savings transactions, exceeding the savings goal is excellent and should be praised! Savings above the target is a positive achievement.`

const chatSystemPrompt = `You are a helpful financial advisor chatbot. Answer questions about budgeting, spending, and financial planning. Be supportive and provide practical advice.`

// Session is one conversation with the advisory model. History grows with
// every exchange so follow-up questions keep their context.
type Session struct {
	client  *genai.Client
	model   string
	history []*genai.Content
}

func NewSession(client *genai.Client, model string) *Session {
	return &Session{client: client, model: model}
}

// InitialAnalysis asks the model for a first overview of the budget
// situation, including earned-vs-declared income.
func (s *Session) InitialAnalysis(ctx context.Context, sum ledger.Summary, goals ledger.Goals, earnedIncome float64) (string, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "Please analyze my budget situation:\n\n")
	fmt.Fprintf(&b, "Income from transactions: $%.2f\n", earnedIncome)
	fmt.Fprintf(&b, "Budget income (user-set): $%.2f\n\n", sum.TotalIncome)
	fmt.Fprintf(&b, "Budget Goals:\n")
	fmt.Fprintf(&b, "- Expenses (Needs): %.0f%% = $%.2f\n", goals.Expenses*100, sum.BudgetAllocations.Expenses)
	fmt.Fprintf(&b, "- Wants: %.0f%% = $%.2f\n", goals.Wants*100, sum.BudgetAllocations.Wants)
	fmt.Fprintf(&b, "- Savings: %.0f%% = $%.2f\n\n", goals.Savings*100, sum.BudgetAllocations.Savings)
	fmt.Fprintf(&b, "Current Spending:\n")
	fmt.Fprintf(&b, "- Expenses: $%.2f\n", sum.CurrentSpending[string(domain.CategoryTypeExpenses)])
	fmt.Fprintf(&b, "- Wants: $%.2f\n", sum.CurrentSpending[string(domain.CategoryTypeWants)])
	fmt.Fprintf(&b, "- Savings: $%.2f\n", sum.CurrentSpending[string(domain.CategoryTypeSavings)])
	fmt.Fprintf(&b, "Total Spent: $%.2f\n\n", sum.TotalSpent)
	fmt.Fprintf(&b, "Category Breakdown:\n%s\n\n", formatBreakdown(sum.CategoryBreakdown))
	b.WriteString("Please provide:\n")
	b.WriteString("1. An overview of my spending vs budget\n")
	b.WriteString("2. My income from the transactions\n")
	b.WriteString("3. Which categories I'm overspending in (note: exceeding savings goal is good, not overspending)\n")
	b.WriteString("4. Specific suggestions on where to cut back\n")
	b.WriteString("5. Remaining budget for each category this month (for savings, show if I've exceeded the goal)")

	return s.send(ctx, b.String(), analysisSystemPrompt)
}

// TransactionUpdate narrates the budget impact of a just-added transaction.
func (s *Session) TransactionUpdate(ctx context.Context, tx domain.Transaction, sum ledger.Summary) (string, error) {
	savingsNote := "Remaining"
	if sum.RemainingBudget.Savings > 0 {
		savingsNote = "Exceeded goal by"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "I just added a new transaction:\n")
	fmt.Fprintf(&b, "- Amount: $%.2f\n", tx.Amount)
	fmt.Fprintf(&b, "- Description: %s\n", tx.Description)
	fmt.Fprintf(&b, "- Category: %s (%s)\n\n", tx.Category, tx.CategoryType)
	fmt.Fprintf(&b, "Updated Spending:\n")
	fmt.Fprintf(&b, "- Expenses: $%.2f / $%.2f (Remaining: $%.2f)\n",
		sum.CurrentSpending[string(domain.CategoryTypeExpenses)], sum.BudgetAllocations.Expenses, sum.RemainingBudget.Expenses)
	fmt.Fprintf(&b, "- Wants: $%.2f / $%.2f (Remaining: $%.2f)\n",
		sum.CurrentSpending[string(domain.CategoryTypeWants)], sum.BudgetAllocations.Wants, sum.RemainingBudget.Wants)
	fmt.Fprintf(&b, "- Savings: $%.2f / $%.2f (%s: $%.2f)\n\n",
		sum.CurrentSpending[string(domain.CategoryTypeSavings)], sum.BudgetAllocations.Savings,
		savingsNote, abs(sum.RemainingBudget.Savings))
	fmt.Fprintf(&b, "Total Spent: $%.2f / $%.2f\n\n", sum.TotalSpent, sum.TotalIncome)
	b.WriteString("Please:\n")
	b.WriteString("1. Acknowledge the transaction\n")
	b.WriteString("2. Update me on my remaining budget for the month (for savings, celebrate if I've exceeded the goal!)\n")
	b.WriteString("3. Let me know if I'm on track or need to adjust spending\n")
	b.WriteString("4. Give specific advice if I'm overspending in any category (remember: exceeding savings goal is excellent, not overspending)")

	return s.send(ctx, b.String(), updateSystemPrompt)
}

// Chat continues the conversation with a freeform question.
func (s *Session) Chat(ctx context.Context, message string) (string, error) {
	return s.send(ctx, message, chatSystemPrompt)
}

// send appends the user message to history, calls the model with the full
// conversation, and records the reply. On failure the user message is
// rolled back so a retry does not duplicate it.
func (s *Session) send(ctx context.Context, userMessage, systemPrompt string) (string, error) {
	s.history = append(s.history, &genai.Content{
		Role:  "user",
		Parts: []*genai.Part{{Text: userMessage}},
	})

	config := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: systemPrompt}},
		},
	}

	resp, err := s.client.Models.GenerateContent(ctx, s.model, s.history, config)
	if err != nil {
		s.history = s.history[:len(s.history)-1]
		return "", fmt.Errorf("advisor: generate content: %w", err)
	}

	text := resp.Text()
	if text == "" {
		s.history = s.history[:len(s.history)-1]
		return "", fmt.Errorf("advisor: empty model response")
	}

	s.history = append(s.history, &genai.Content{
		Role:  "model",
		Parts: []*genai.Part{{Text: text}},
	})
	return text, nil
}

func formatBreakdown(breakdown map[string]float64) string {
	if len(breakdown) == 0 {
		return "(no spending recorded)"
	}

	labels := make([]string, 0, len(breakdown))
	for label := range breakdown {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	var b strings.Builder
	for _, label := range labels {
		fmt.Fprintf(&b, "- %s: $%.2f\n", label, breakdown[label])
	}
	return strings.TrimRight(b.String(), "\n")
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}
