// Package modelstorage provides types for the persisted user documents.

package modelstorage

// Withdrawal statuses set by this service. Admin-assigned statuses are stored verbatim.
const (
	WithdrawalStatusPending       = "pending"
	WithdrawalStatusAutoCompleted = "auto_completed"
)

type Withdrawal struct {
	ID          string  `json:"id"`
	Amount      float64 `json:"amount"`
	Status      string  `json:"status"`
	RequestedAt string  `json:"requestedAt"`
	ProcessedAt string  `json:"processedAt,omitempty"`
}

type User struct {
	Screenshots int          `json:"screenshots"`
	Balance     float64      `json:"balance"`
	Withdraws   []Withdrawal `json:"withdraws"`
}

// Document is the whole persisted state, rewritten in full on every mutation.
type Document struct {
	Users map[string]User `json:"users"`
}

// StaleWithdrawal pairs a swept withdrawal with its owner.
type StaleWithdrawal struct {
	Username   string
	Withdrawal Withdrawal
}
