// Package ingest normalizes heterogeneous bank-statement exports (delimited
// text, spreadsheets, tabular PDFs) into canonical transaction records.
package ingest

import (
	"github.com/finchat/backend/internal/domain"
)

// Normalize composes schema detection, date parsing and money parsing into
// canonical transactions, missing only category labels. The role map is
// built once per table; rows with unparseable dates are dropped (footer and
// summary rows land here), and source row order is preserved.
//
// Amount policy: amount = deposit - withdrawal, where a missing column and a
// blank cell both count as zero. Balance policy is stricter: a blank balance
// cell stays absent, because "unknown" is not "zero balance". Reference and
// running balance are kept only when keepExtra is set and the source
// provided the column.
func Normalize(table *RawTable, keepExtra bool) ([]domain.Transaction, error) {
	roles, err := DetectSchema(table.Headers)
	if err != nil {
		return nil, err
	}

	out := make([]domain.Transaction, 0, len(table.Rows))
	for _, row := range table.Rows {
		date, ok := ParseDate(row[roles[RoleDate]])
		if !ok {
			continue
		}

		tx := domain.Transaction{
			Date:        date,
			Description: row[roles[RoleDescription]],
			Amount:      moneyOrZero(row, roles, RoleDeposit) - moneyOrZero(row, roles, RoleWithdrawal),
		}

		if keepExtra {
			if roles.Has(RoleReference) {
				tx.Reference = row[roles[RoleReference]]
			}
			if roles.Has(RoleBalance) {
				if bal, ok := ParseMoney(row[roles[RoleBalance]]); ok {
					tx.RunningBalance = &bal
				}
			}
		}

		out = append(out, tx)
	}
	return out, nil
}

func moneyOrZero(row map[string]string, roles ColumnRoleMap, role string) float64 {
	col, ok := roles[role]
	if !ok {
		return 0
	}
	v, ok := ParseMoney(row[col])
	if !ok {
		return 0
	}
	return v
}
