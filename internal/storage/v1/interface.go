package storage

import (
	"context"
	"time"

	"github.com/danilovkiri/dk-go-snapreward/internal/models/modelstorage"
)

type Ledger interface {
	GetUser(ctx context.Context, username string) (modelstorage.User, error)
	AddScreenshot(ctx context.Context, username string, reward float64, maxScreenshots int) (modelstorage.User, error)
	AddNewWithdrawal(ctx context.Context, username string, minBalance float64, entry modelstorage.Withdrawal) (modelstorage.Withdrawal, error)
}

type Admin interface {
	UpdateWithdrawStatus(ctx context.Context, username, withdrawID, status string) (modelstorage.Withdrawal, error)
}

type Sweep interface {
	SweepStaleWithdrawals(ctx context.Context, olderThan time.Duration) ([]modelstorage.StaleWithdrawal, error)
}

type Storage interface {
	Ledger
	Admin
	Sweep
}
