// Package processor provides intermediary layer functionality between the storage and API endpoint handlers.

package processor

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"fmt"
	"math"
	"time"

	"github.com/danilovkiri/dk-go-snapreward/internal/client"
	"github.com/danilovkiri/dk-go-snapreward/internal/config"
	"github.com/danilovkiri/dk-go-snapreward/internal/models/modeldto"
	"github.com/danilovkiri/dk-go-snapreward/internal/models/modelstorage"
	serviceErrors "github.com/danilovkiri/dk-go-snapreward/internal/service/processor/v1/errors"
	"github.com/danilovkiri/dk-go-snapreward/internal/storage/v1"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Reward policy constants.
const (
	Reward            = 0.5
	MaxScreenshots    = 3
	WithdrawMin       = 50.0
	MaxUsernameLength = 64
	DefaultUsername   = "guest"
)

// Processor defines attributes of a struct available to its methods.
type Processor struct {
	storage      storage.Storage
	notifier     client.Notifier
	secretConfig *config.SecretConfig
	log          *zerolog.Logger
}

// InitService initializes an intermediary service for data processing.
func InitService(st storage.Storage, notifier client.Notifier, secretConfig *config.SecretConfig, log *zerolog.Logger) (*Processor, error) {
	if st == nil {
		return nil, &serviceErrors.ServiceFoundNilArgument{Msg: "nil storage was passed to service initializer"}
	}
	if notifier == nil {
		return nil, &serviceErrors.ServiceFoundNilArgument{Msg: "nil notifier was passed to service initializer"}
	}
	if secretConfig == nil {
		return nil, &serviceErrors.ServiceFoundNilArgument{Msg: "nil secret configuration was passed to service initializer"}
	}
	processor := &Processor{
		storage:      st,
		notifier:     notifier,
		secretConfig: secretConfig,
		log:          log,
	}
	return processor, nil
}

// AddScreenshot rewards an accepted upload and announces it with the artifact attached.
func (proc *Processor) AddScreenshot(ctx context.Context, username string, screenshot []byte, filename string) (*modeldto.UploadResult, error) {
	username = sanitizeUsername(username)
	user, err := proc.storage.AddScreenshot(ctx, username, Reward, MaxScreenshots)
	if err != nil {
		return nil, err
	}
	caption := fmt.Sprintf("📸 New screenshot\nUser: %s\nScreenshots: %d\nBalance: %v Taka", username, user.Screenshots, user.Balance)
	// the upload path waits for the outbound photo call before responding
	proc.notifier.SendPhoto(ctx, caption, screenshot, filename)
	return &modeldto.UploadResult{
		Message:     "Uploaded and rewarded",
		Username:    username,
		Screenshots: user.Screenshots,
		Balance:     user.Balance,
	}, nil
}

// GetBalance processes balance query requests, unknown users resolve to a zero-value record.
func (proc *Processor) GetBalance(ctx context.Context, username string) (*modeldto.UserBalance, error) {
	username = sanitizeUsername(username)
	user, err := proc.storage.GetUser(ctx, username)
	if err != nil {
		return nil, err
	}
	withdrawals := make([]modeldto.Withdrawal, 0, len(user.Withdraws))
	for _, withdrawal := range user.Withdraws {
		withdrawals = append(withdrawals, toResponseWithdrawal(withdrawal))
	}
	return &modeldto.UserBalance{
		Username:    username,
		Screenshots: user.Screenshots,
		// stored balances are rounded on every mutation, re-rounding here also
		// covers hand-edited database files
		Balance:     round2(user.Balance),
		Withdraws:   withdrawals,
	}, nil
}

// AddNewWithdrawal processes new withdrawal requests.
func (proc *Processor) AddNewWithdrawal(ctx context.Context, username string) (*modeldto.WithdrawResult, error) {
	username = truncateUsername(username)
	if username == "" {
		return nil, &serviceErrors.ServiceInvalidInput{Msg: "username required"}
	}
	entry := modelstorage.Withdrawal{
		ID:          uuid.New().String(),
		Status:      modelstorage.WithdrawalStatusPending,
		RequestedAt: time.Now().Format(time.RFC3339),
	}
	withdrawal, err := proc.storage.AddNewWithdrawal(ctx, username, WithdrawMin, entry)
	if err != nil {
		return nil, err
	}
	text := fmt.Sprintf("💳 Withdraw requested\nUser: %s\nAmount: %v Taka\nID: %s\nStatus: %s", username, withdrawal.Amount, withdrawal.ID, withdrawal.Status)
	go proc.notifier.SendMessage(context.Background(), text)
	return &modeldto.WithdrawResult{
		Message:  "Withdraw requested. Admin will process within 72 hours.",
		Withdraw: toResponseWithdrawal(withdrawal),
	}, nil
}

// UpdateWithdrawStatus processes admin withdrawal state transitions, the new
// status is accepted as opaque text.
func (proc *Processor) UpdateWithdrawStatus(ctx context.Context, secret, username, withdrawID, status string) (*modeldto.WithdrawResult, error) {
	secretHash := sha256.Sum256([]byte(secret))
	expectedSecretHash := sha256.Sum256([]byte(proc.secretConfig.AdminSecret))
	if subtle.ConstantTimeCompare(secretHash[:], expectedSecretHash[:]) != 1 {
		return nil, &serviceErrors.ServiceForbidden{Msg: "forbidden"}
	}
	username = truncateUsername(username)
	if username == "" || withdrawID == "" || status == "" {
		return nil, &serviceErrors.ServiceInvalidInput{Msg: "missing"}
	}
	withdrawal, err := proc.storage.UpdateWithdrawStatus(ctx, username, withdrawID, status)
	if err != nil {
		return nil, err
	}
	text := fmt.Sprintf("🔔 Withdraw %s for %s updated to: %s", withdrawal.ID, username, withdrawal.Status)
	go proc.notifier.SendMessage(context.Background(), text)
	return &modeldto.WithdrawResult{
		Message:  "updated",
		Withdraw: toResponseWithdrawal(withdrawal),
	}, nil
}

func toResponseWithdrawal(withdrawal modelstorage.Withdrawal) modeldto.Withdrawal {
	return modeldto.Withdrawal{
		ID:          withdrawal.ID,
		Amount:      withdrawal.Amount,
		Status:      withdrawal.Status,
		RequestedAt: withdrawal.RequestedAt,
		ProcessedAt: withdrawal.ProcessedAt,
	}
}

// truncateUsername cuts usernames to MaxUsernameLength characters before any
// lookup or storage, longer names collide on their shared prefix.
func truncateUsername(username string) string {
	runes := []rune(username)
	if len(runes) > MaxUsernameLength {
		return string(runes[:MaxUsernameLength])
	}
	return username
}

// round2 keeps reported balances at two decimal places.
func round2(amount float64) float64 {
	return math.Round(amount*100) / 100
}

func sanitizeUsername(username string) string {
	username = truncateUsername(username)
	if username == "" {
		return DefaultUsername
	}
	return username
}
