package stub

import "time"

// summary builds the fixed dashboard documents. Customers see their own
// balance and admins see a bank-wide total, as upstream does.
func summary(role string, now time.Time) map[string]any {
	var account map[string]any
	if role == "customer" {
		account = map[string]any{"balance": 1520.75}
	} else {
		account = map[string]any{"_id": nil, "total_balance": 982340.5}
	}

	counts := []int{4, 2, 7, 3, 5, 1, 6}
	trends := make([]map[string]any, 0, len(counts))
	start := now.UTC().AddDate(0, 0, -len(counts)+1)
	for i, n := range counts {
		trends = append(trends, map[string]any{
			"_id":   start.AddDate(0, 0, i).Format("2006-01-02"),
			"count": n,
			"total": float64(n) * 125.5,
		})
	}

	loans := []map[string]any{
		{"_id": "approved", "count": 3},
		{"_id": "pending", "count": 1},
		{"_id": "rejected", "count": 1},
	}

	return map[string]any{
		"account_summary":       account,
		"transaction_trends":    trends,
		"loan_repayment_status": loans,
	}
}
