package processor

import (
	"context"

	"github.com/danilovkiri/dk-go-snapreward/internal/models/modeldto"
)

type Processor interface {
	AddScreenshot(ctx context.Context, username string, screenshot []byte, filename string) (*modeldto.UploadResult, error)
	GetBalance(ctx context.Context, username string) (*modeldto.UserBalance, error)
	AddNewWithdrawal(ctx context.Context, username string) (*modeldto.WithdrawResult, error)
	UpdateWithdrawStatus(ctx context.Context, secret, username, withdrawID, status string) (*modeldto.WithdrawResult, error)
}
