package processor

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/danilovkiri/dk-go-snapreward/internal/config"
	"github.com/danilovkiri/dk-go-snapreward/internal/models/modelstorage"
	serviceErrors "github.com/danilovkiri/dk-go-snapreward/internal/service/processor/v1/errors"
	storageErrors "github.com/danilovkiri/dk-go-snapreward/internal/storage/v1/errors"
	"github.com/danilovkiri/dk-go-snapreward/internal/storage/v1/infile"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type notifierStub struct {
	mu       sync.Mutex
	messages []string
	captions []string
}

func (n *notifierStub) SendMessage(_ context.Context, text string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages = append(n.messages, text)
}

func (n *notifierStub) SendPhoto(_ context.Context, caption string, _ []byte, _ string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.captions = append(n.captions, caption)
}

func (n *notifierStub) messageCount() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.messages)
}

func (n *notifierStub) lastMessage() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.messages) == 0 {
		return ""
	}
	return n.messages[len(n.messages)-1]
}

func newTestService(t *testing.T) (*Processor, *infile.Storage, *notifierStub) {
	t.Helper()
	log := zerolog.Nop()
	storageCfg := &config.StorageConfig{FilePath: filepath.Join(t.TempDir(), "db.json")}
	st, err := infile.InitStorage(context.Background(), storageCfg, &log)
	require.NoError(t, err)
	notifier := &notifierStub{}
	service, err := InitService(st, notifier, &config.SecretConfig{AdminSecret: "sesame"}, &log)
	require.NoError(t, err)
	return service, st, notifier
}

func seedUser(t *testing.T, st *infile.Storage, username string, user modelstorage.User) {
	t.Helper()
	b, err := json.MarshalIndent(&modelstorage.Document{Users: map[string]modelstorage.User{username: user}}, "", "  ")
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(st.Cfg.FilePath, b, 0644))
}

func TestInitServiceNilArguments(t *testing.T) {
	log := zerolog.Nop()
	var serviceFoundNilArgument *serviceErrors.ServiceFoundNilArgument
	_, err := InitService(nil, &notifierStub{}, &config.SecretConfig{}, &log)
	require.True(t, errors.As(err, &serviceFoundNilArgument))
	storageCfg := &config.StorageConfig{FilePath: filepath.Join(t.TempDir(), "db.json")}
	st, err := infile.InitStorage(context.Background(), storageCfg, &log)
	require.NoError(t, err)
	_, err = InitService(st, nil, &config.SecretConfig{}, &log)
	require.True(t, errors.As(err, &serviceFoundNilArgument))
}

func TestAddScreenshotDefaultsToGuest(t *testing.T) {
	service, _, notifier := newTestService(t)
	result, err := service.AddScreenshot(context.Background(), "", []byte("img"), "s.png")
	require.NoError(t, err)
	assert.Equal(t, DefaultUsername, result.Username)
	assert.Equal(t, 1, result.Screenshots)
	assert.Equal(t, 0.5, result.Balance)
	require.Len(t, notifier.captions, 1)
	assert.Contains(t, notifier.captions[0], "User: guest")
	assert.Contains(t, notifier.captions[0], "Screenshots: 1")
}

func TestUsernameTruncation(t *testing.T) {
	service, _, _ := newTestService(t)
	long := strings.Repeat("a", 70)
	result, err := service.AddScreenshot(context.Background(), long, []byte("img"), "s.png")
	require.NoError(t, err)
	assert.Equal(t, strings.Repeat("a", 64), result.Username)

	// a second name differing only beyond character 64 collides
	other := strings.Repeat("a", 64) + "zzzzz"
	result, err = service.AddScreenshot(context.Background(), other, []byte("img"), "s.png")
	require.NoError(t, err)
	assert.Equal(t, 2, result.Screenshots)
}

func TestGetBalanceUnknownUser(t *testing.T) {
	service, _, _ := newTestService(t)
	balance, err := service.GetBalance(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Equal(t, "nobody", balance.Username)
	assert.Equal(t, 0, balance.Screenshots)
	assert.Equal(t, 0.0, balance.Balance)
	assert.NotNil(t, balance.Withdraws)
	assert.Len(t, balance.Withdraws, 0)
}

func TestAddNewWithdrawalRequiresUsername(t *testing.T) {
	service, _, _ := newTestService(t)
	_, err := service.AddNewWithdrawal(context.Background(), "")
	var serviceInvalidInput *serviceErrors.ServiceInvalidInput
	require.True(t, errors.As(err, &serviceInvalidInput))
}

func TestAddNewWithdrawal(t *testing.T) {
	service, st, notifier := newTestService(t)
	seedUser(t, st, "alice", modelstorage.User{Screenshots: 3, Balance: 50})

	result, err := service.AddNewWithdrawal(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, 50.0, result.Withdraw.Amount)
	assert.Equal(t, modelstorage.WithdrawalStatusPending, result.Withdraw.Status)
	assert.NotEmpty(t, result.Withdraw.ID)
	_, err = time.Parse(time.RFC3339, result.Withdraw.RequestedAt)
	assert.NoError(t, err)

	require.Eventually(t, func() bool { return notifier.messageCount() == 1 }, time.Second, 10*time.Millisecond)
	assert.Contains(t, notifier.lastMessage(), "Withdraw requested")

	_, err = service.AddNewWithdrawal(context.Background(), "alice")
	var notEnoughFundsError *storageErrors.NotEnoughFundsError
	require.True(t, errors.As(err, &notEnoughFundsError))
}

func TestUpdateWithdrawStatus(t *testing.T) {
	service, st, notifier := newTestService(t)
	seedUser(t, st, "bob", modelstorage.User{Withdraws: []modelstorage.Withdrawal{
		{ID: "w-1", Amount: 50, Status: modelstorage.WithdrawalStatusPending, RequestedAt: time.Now().Format(time.RFC3339)},
	}})

	_, err := service.UpdateWithdrawStatus(context.Background(), "wrong", "bob", "w-1", "approved")
	var serviceForbidden *serviceErrors.ServiceForbidden
	require.True(t, errors.As(err, &serviceForbidden))

	// state is unchanged after the rejected update
	balance, err := service.GetBalance(context.Background(), "bob")
	require.NoError(t, err)
	assert.Equal(t, modelstorage.WithdrawalStatusPending, balance.Withdraws[0].Status)

	_, err = service.UpdateWithdrawStatus(context.Background(), "sesame", "bob", "", "approved")
	var serviceInvalidInput *serviceErrors.ServiceInvalidInput
	require.True(t, errors.As(err, &serviceInvalidInput))

	result, err := service.UpdateWithdrawStatus(context.Background(), "sesame", "bob", "w-1", "whatever text")
	require.NoError(t, err)
	assert.Equal(t, "whatever text", result.Withdraw.Status)
	assert.NotEmpty(t, result.Withdraw.ProcessedAt)
	require.Eventually(t, func() bool { return notifier.messageCount() == 1 }, time.Second, 10*time.Millisecond)
}

func TestGetBalanceRoundsStoredValue(t *testing.T) {
	service, st, _ := newTestService(t)
	// hand-edited database files may carry unrounded balances
	seedUser(t, st, "erin", modelstorage.User{Screenshots: 2, Balance: 1.0000000000000002})

	balance, err := service.GetBalance(context.Background(), "erin")
	require.NoError(t, err)
	assert.Equal(t, 1.0, balance.Balance)
}
