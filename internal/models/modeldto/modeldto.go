// Package modeldto provides types for data transfer between API and service layers.

package modeldto

type (
	UploadResult struct {
		Message     string  `json:"message"`
		Username    string  `json:"username"`
		Screenshots int     `json:"screenshots"`
		Balance     float64 `json:"balance"`
	}
	UserBalance struct {
		Username    string       `json:"username"`
		Screenshots int          `json:"screenshots"`
		Balance     float64      `json:"balance"`
		Withdraws   []Withdrawal `json:"withdraws"`
	}
	Withdrawal struct {
		ID          string  `json:"id"`
		Amount      float64 `json:"amount"`
		Status      string  `json:"status"`
		RequestedAt string  `json:"requestedAt"`
		ProcessedAt string  `json:"processedAt,omitempty"`
	}
	WithdrawResult struct {
		Message  string     `json:"message"`
		Withdraw Withdrawal `json:"withdraw"`
	}
	NewWithdrawal struct {
		Username string `json:"username"`
	}
	UpdateWithdraw struct {
		Username   string `json:"username"`
		WithdrawID string `json:"withdrawId"`
		Status     string `json:"status"`
	}
	Error struct {
		Error string `json:"error"`
	}
)
