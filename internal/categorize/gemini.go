package categorize

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/finchat/backend/internal/domain"
)

const classifierSystemPrompt = `You are a transaction classifier. Classify transactions into:
- category: specific category (e.g. 'Groceries', 'Entertainment', 'Rent', 'Salary', 'Payroll')
- category_type: one of 'income' (money coming in like salary, payroll, deposits), 'expenses' (needs), 'wants' (discretionary), or 'savings' (investments/savings)

Respond ONLY with a JSON object like: {"category": "Groceries", "category_type": "expenses"} or {"category": "Salary", "category_type": "income"}`

// Gemini classifies transactions with a Gemini model. Failures surface as
// errors; making the boundary total is the job of the Total wrapper.
type Gemini struct {
	client *genai.Client
	model  string
}

func NewGemini(client *genai.Client, model string) *Gemini {
	return &Gemini{client: client, model: model}
}

// Classify asks the model for a category/category_type pair.
func (g *Gemini) Classify(ctx context.Context, description string, amount float64) (domain.Classification, error) {
	userPrompt := fmt.Sprintf(
		"Classify this transaction:\nDescription: %s\nAmount: $%.2f\n\nRespond with JSON only.",
		description, amount,
	)

	contents := []*genai.Content{
		{
			Role:  "user",
			Parts: []*genai.Part{{Text: userPrompt}},
		},
	}
	config := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: classifierSystemPrompt}},
		},
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, config)
	if err != nil {
		return domain.Classification{}, fmt.Errorf("classify %q: generate content: %w", description, err)
	}

	raw := resp.Text()
	if raw == "" {
		return domain.Classification{}, fmt.Errorf("classify %q: empty model response", description)
	}

	var parsed struct {
		Category     string `json:"category"`
		CategoryType string `json:"category_type"`
	}
	if err := json.Unmarshal([]byte(cleanModelJSON(raw)), &parsed); err != nil {
		return domain.Classification{}, fmt.Errorf("classify %q: unmarshal model JSON: %w", description, err)
	}
	if parsed.Category == "" || parsed.CategoryType == "" {
		return domain.Classification{}, fmt.Errorf("classify %q: incomplete model JSON: %s", description, raw)
	}

	// The type string is passed through as-is. A model emitting an
	// unexpected bucket name still lands in the category histogram.
	return domain.Classification{
		Category: parsed.Category,
		Type:     domain.CategoryType(strings.ToLower(strings.TrimSpace(parsed.CategoryType))),
		Source:   domain.SourceModel,
	}, nil
}

// cleanModelJSON strips Markdown fences and surrounding junk when the model
// ignores the JSON-only instruction.
func cleanModelJSON(raw string) string {
	s := strings.TrimSpace(raw)

	if strings.HasPrefix(s, "```") {
		if idx := strings.Index(s, "\n"); idx != -1 {
			s = s[idx+1:]
		}
		if idx := strings.LastIndex(s, "```"); idx != -1 {
			s = s[:idx]
		}
		s = strings.TrimSpace(s)
	}

	if start := strings.Index(s, "{"); start != -1 {
		if end := strings.LastIndex(s, "}"); end > start {
			s = strings.TrimSpace(s[start : end+1])
		}
	}
	return s
}
