package categorize

import (
	"context"
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/finchat/backend/internal/domain"
)

// ruleEntry binds a description keyword to a category and budget bucket.
type ruleEntry struct {
	category string
	ctype    domain.CategoryType
}

// keywordRules is the deterministic classification table. Income keywords
// are checked first so that "salary deposit" resolves as income rather
// than tripping on some spending keyword later in the description.
var keywordRules = []struct {
	keywords []string
	entry    ruleEntry
}{
	{[]string{"salary", "payroll", "pay run", "wages", "direct dep"},
		ruleEntry{"Salary", domain.CategoryTypeIncome}},
	{[]string{"interest paid", "interest earned", "dividend"},
		ruleEntry{"Interest", domain.CategoryTypeIncome}},
	{[]string{"refund", "reimburse", "cashback"},
		ruleEntry{"Refund", domain.CategoryTypeIncome}},

	{[]string{"rent", "mortgage", "lease", "body corp", "strata"},
		ruleEntry{"Housing", domain.CategoryTypeExpenses}},
	{[]string{"woolworths", "coles", "aldi", "iga", "trader joe", "whole foods", "grocer", "supermarket", "market"},
		ruleEntry{"Groceries", domain.CategoryTypeExpenses}},
	{[]string{"electric", "gas bill", "water bill", "utility", "internet", "broadband", "telstra", "optus", "vodafone", "verizon", "comcast", "phone"},
		ruleEntry{"Utilities", domain.CategoryTypeExpenses}},
	{[]string{"pharmacy", "chemist", "doctor", "medical", "dental", "hospital", "clinic"},
		ruleEntry{"Healthcare", domain.CategoryTypeExpenses}},
	{[]string{"fuel", "petrol", "shell", "bp ", "caltex", "chevron", "parking", "toll", "opal", "myki", "train", "bus fare", "transit"},
		ruleEntry{"Transportation", domain.CategoryTypeExpenses}},
	{[]string{"insurance", "premium"},
		ruleEntry{"Insurance", domain.CategoryTypeExpenses}},
	{[]string{"school", "tuition", "university", "college", "course"},
		ruleEntry{"Education", domain.CategoryTypeExpenses}},

	{[]string{"netflix", "spotify", "disney", "hulu", "hbo", "youtube premium", "cinema", "movie", "theatre", "concert", "gaming", "steam"},
		ruleEntry{"Entertainment", domain.CategoryTypeWants}},
	{[]string{"restaurant", "cafe", "coffee", "starbucks", "mcdonald", "kfc", "uber eats", "doordash", "deliveroo", "menulog", "dinner", "takeaway", "bar ", "pub "},
		ruleEntry{"Dining", domain.CategoryTypeWants}},
	{[]string{"amazon", "ebay", "target", "walmart", "ikea", "shopping", "clothing", "shoes", "electronics"},
		ruleEntry{"Shopping", domain.CategoryTypeWants}},
	{[]string{"hotel", "airbnb", "flight", "airline", "qantas", "expedia", "booking.com", "travel"},
		ruleEntry{"Travel", domain.CategoryTypeWants}},
	{[]string{"subscription", "membership", "gym"},
		ruleEntry{"Subscriptions", domain.CategoryTypeWants}},

	{[]string{"investment", "vanguard", "etf", "brokerage", "shares", "superannuation", "401k", "ira "},
		ruleEntry{"Investments", domain.CategoryTypeSavings}},
	{[]string{"savings", "saver", "term deposit", "transfer to save"},
		ruleEntry{"Savings", domain.CategoryTypeSavings}},
}

var (
	rulePrefixRe  = regexp.MustCompile(`(?i)^(pos |eftpos |visa |mastercard |amex |paypal \*)`)
	ruleNumbersRe = regexp.MustCompile(`\d{4,}`)
	ruleNoiseRe   = regexp.MustCompile(`[*#]+`)
)

// Rules is a deterministic keyword classifier satisfying the Categorizer
// contract. It never fails, which makes it the natural offline stand-in
// for the model-backed classifier.
type Rules struct {
	caser cases.Caser
}

func NewRules() *Rules {
	return &Rules{caser: cases.Title(language.English)}
}

// Classify matches the cleaned description against the keyword table. With
// no keyword hit, positive amounts are treated as generic deposits (income)
// and negative amounts fall into the uncategorized expenses bucket.
func (r *Rules) Classify(_ context.Context, description string, amount float64) (domain.Classification, error) {
	cleaned := cleanDescription(description)

	for _, rule := range keywordRules {
		for _, kw := range rule.keywords {
			if strings.Contains(cleaned, kw) {
				return domain.Classification{
					Category: rule.entry.category,
					Type:     rule.entry.ctype,
					Source:   domain.SourceRules,
				}, nil
			}
		}
	}

	if amount > 0 && strings.Contains(cleaned, "deposit") {
		return domain.Classification{
			Category: "Deposit",
			Type:     domain.CategoryTypeIncome,
			Source:   domain.SourceRules,
		}, nil
	}

	return domain.Classification{
		Category: r.displayName(description),
		Type:     domain.CategoryTypeExpenses,
		Source:   domain.SourceRules,
	}, nil
}

func cleanDescription(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = rulePrefixRe.ReplaceAllString(s, "")
	s = ruleNumbersRe.ReplaceAllString(s, "")
	s = ruleNoiseRe.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

// displayName turns a raw description into a presentable category label
// when no keyword matched.
func (r *Rules) displayName(raw string) string {
	cleaned := cleanDescription(raw)
	if cleaned == "" {
		return "Uncategorized"
	}

	words := strings.Fields(cleaned)
	for i, w := range words {
		if len(w) > 2 {
			words[i] = r.caser.String(w)
		} else {
			words[i] = strings.ToUpper(w)
		}
	}
	name := strings.Join(words, " ")
	if len(name) > 40 {
		name = name[:40]
	}
	return name
}
