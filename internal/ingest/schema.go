package ingest

import (
	"regexp"
	"strings"
)

// Canonical column roles recognized by the schema detector.
const (
	RoleDate        = "date"
	RoleDescription = "description"
	RoleReference   = "reference"
	RoleWithdrawal  = "withdrawal"
	RoleDeposit     = "deposit"
	RoleBalance     = "balance"
)

// ColumnRoleMap maps a canonical role to the normalized source header that
// fills it. It is built once per table and consumed by every subsequent
// step; rows are never re-detected individually.
type ColumnRoleMap map[string]string

// Has reports whether the source table provided a column for the role.
func (m ColumnRoleMap) Has(role string) bool {
	_, ok := m[role]
	return ok
}

// roleNeedles holds, per role, the ordered substring needles tested against
// normalized headers. Needle priority dominates header order: the first
// needle that matches any header wins, scanning headers in source order.
// The misspelled variants are real — bank exports contain them.
var roleNeedles = []struct {
	role    string
	needles []string
}{
	{RoleDate, []string{"date"}},
	{RoleDescription, []string{"description", "desc"}},
	{RoleReference, []string{"ref"}},
	{RoleWithdrawal, []string{"withdrawls", "withdrawals", "withdrawl", "withdraw", "debit"}},
	{RoleDeposit, []string{"deposits", "deposit", "credit"}},
	{RoleBalance, []string{"balance", "bal"}},
}

var (
	nonWordRe    = regexp.MustCompile(`[^\w\s]`)
	whitespaceRe = regexp.MustCompile(`\s+`)
)

// NormalizeHeader case-folds a header, strips punctuation and collapses
// internal whitespace to single underscores, so that "Withdrawal Amt." and
// "withdrawal_amt" match the same needles.
func NormalizeHeader(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = nonWordRe.ReplaceAllString(s, "")
	return whitespaceRe.ReplaceAllString(s, "_")
}

// DetectSchema maps arbitrarily-spelled source headers onto canonical roles.
// Headers are normalized before matching, so already-normalized input is
// fine. Only the first matching header per role is kept. Detection fails
// only when no header resolves the date role; every other role is optional.
func DetectSchema(headers []string) (ColumnRoleMap, error) {
	normalized := make([]string, len(headers))
	for i, h := range headers {
		normalized[i] = NormalizeHeader(h)
	}

	roles := make(ColumnRoleMap, len(roleNeedles))
	for _, rn := range roleNeedles {
	needleLoop:
		for _, needle := range rn.needles {
			for _, h := range normalized {
				if strings.Contains(h, needle) {
					roles[rn.role] = h
					break needleLoop
				}
			}
		}
	}

	if !roles.Has(RoleDate) {
		return nil, &Error{
			Code:    ErrSchemaDetection,
			Message: "no date column found",
			Headers: normalized,
		}
	}
	return roles, nil
}
