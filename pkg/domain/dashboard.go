package domain

import "encoding/json"

// DashboardSnapshot is the body of GET /dashboard/summary.
// The three documents are owned by the server and are never interpreted here.
type DashboardSnapshot struct {
	AccountSummary      json.RawMessage `json:"account_summary"`
	TransactionTrends   json.RawMessage `json:"transaction_trends"`
	LoanRepaymentStatus json.RawMessage `json:"loan_repayment_status"`
}
