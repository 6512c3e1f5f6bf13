// Package infile implements a whole-file JSON document storage.
package infile

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/danilovkiri/dk-go-snapreward/internal/config"
	"github.com/danilovkiri/dk-go-snapreward/internal/models/modelstorage"
	storageErrors "github.com/danilovkiri/dk-go-snapreward/internal/storage/v1/errors"
	"github.com/rs/zerolog"
)

// Storage keeps the full user document in one JSON file, every mutating method
// performs one load and at most one save under the mutex so that concurrent
// requests cannot lose updates to each other.
type Storage struct {
	mu  sync.Mutex
	Cfg *config.StorageConfig
	log *zerolog.Logger
}

func InitStorage(ctx context.Context, cfg *config.StorageConfig, log *zerolog.Logger) (*Storage, error) {
	st := Storage{
		Cfg: cfg,
		log: log,
	}
	if _, err := os.Stat(cfg.FilePath); os.IsNotExist(err) {
		err = st.saveDocument(&modelstorage.Document{Users: make(map[string]modelstorage.User)})
		if err != nil {
			log.Fatal().Err(err).Msg("")
		}
	}
	log.Info().Msg("database file was initialized")
	return &st, nil
}

func (s *Storage) GetUser(ctx context.Context, username string) (modelstorage.User, error) {
	// result channels are buffered, the worker must be able to send, unlock
	// and exit even after the caller left on ctx.Done()
	chanOk := make(chan modelstorage.User, 1)
	go func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		doc := s.loadDocument()
		user := doc.Users[username]
		if user.Withdraws == nil {
			user.Withdraws = []modelstorage.Withdrawal{}
		}
		chanOk <- user
	}()

	select {
	case <-ctx.Done():
		s.log.Error().Err(ctx.Err()).Msg(fmt.Sprintf("getting user failed for %s", username))
		return modelstorage.User{}, &storageErrors.ContextTimeoutExceededError{Err: ctx.Err()}
	case user := <-chanOk:
		return user, nil
	}
}

func (s *Storage) AddScreenshot(ctx context.Context, username string, reward float64, maxScreenshots int) (modelstorage.User, error) {
	chanOk := make(chan modelstorage.User, 1)
	chanEr := make(chan error, 1)
	go func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		doc := s.loadDocument()
		user := doc.Users[username]
		if user.Screenshots >= maxScreenshots {
			chanEr <- &storageErrors.CapacityExceededError{ID: username}
			return
		}
		user.Screenshots += 1
		user.Balance = round2(user.Balance + reward)
		doc.Users[username] = user
		err := s.saveDocument(doc)
		if err != nil {
			chanEr <- err
			return
		}
		chanOk <- user
	}()

	select {
	case <-ctx.Done():
		s.log.Error().Err(ctx.Err()).Msg(fmt.Sprintf("adding screenshot failed for %s", username))
		return modelstorage.User{}, &storageErrors.ContextTimeoutExceededError{Err: ctx.Err()}
	case methodErr := <-chanEr:
		s.log.Error().Err(methodErr).Msg(fmt.Sprintf("adding screenshot failed for %s", username))
		return modelstorage.User{}, methodErr
	case user := <-chanOk:
		s.log.Info().Msg(fmt.Sprintf("adding screenshot done for %s", username))
		return user, nil
	}
}

func (s *Storage) AddNewWithdrawal(ctx context.Context, username string, minBalance float64, entry modelstorage.Withdrawal) (modelstorage.Withdrawal, error) {
	chanOk := make(chan modelstorage.Withdrawal, 1)
	chanEr := make(chan error, 1)
	go func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		doc := s.loadDocument()
		user := doc.Users[username]
		if user.Balance < minBalance {
			chanEr <- &storageErrors.NotEnoughFundsError{ID: username, Amount: user.Balance, Min: minBalance}
			return
		}
		// the withdrawn amount is transferred out of the balance into the new record
		entry.Amount = round2(user.Balance)
		user.Withdraws = append(user.Withdraws, entry)
		user.Balance = 0.0
		doc.Users[username] = user
		err := s.saveDocument(doc)
		if err != nil {
			chanEr <- err
			return
		}
		chanOk <- entry
	}()

	select {
	case <-ctx.Done():
		s.log.Error().Err(ctx.Err()).Msg(fmt.Sprintf("adding new withdrawal failed for %s", username))
		return modelstorage.Withdrawal{}, &storageErrors.ContextTimeoutExceededError{Err: ctx.Err()}
	case methodErr := <-chanEr:
		s.log.Error().Err(methodErr).Msg(fmt.Sprintf("adding new withdrawal failed for %s", username))
		return modelstorage.Withdrawal{}, methodErr
	case withdrawal := <-chanOk:
		s.log.Info().Msg(fmt.Sprintf("adding new withdrawal done for %s", username))
		return withdrawal, nil
	}
}

func (s *Storage) UpdateWithdrawStatus(ctx context.Context, username, withdrawID, status string) (modelstorage.Withdrawal, error) {
	chanOk := make(chan modelstorage.Withdrawal, 1)
	chanEr := make(chan error, 1)
	go func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		doc := s.loadDocument()
		user, ok := doc.Users[username]
		if !ok {
			chanEr <- &storageErrors.NotFoundError{ID: username}
			return
		}
		for i := range user.Withdraws {
			if user.Withdraws[i].ID != withdrawID {
				continue
			}
			user.Withdraws[i].Status = status
			user.Withdraws[i].ProcessedAt = time.Now().Format(time.RFC3339)
			doc.Users[username] = user
			err := s.saveDocument(doc)
			if err != nil {
				chanEr <- err
				return
			}
			chanOk <- user.Withdraws[i]
			return
		}
		chanEr <- &storageErrors.NotFoundError{ID: withdrawID}
	}()

	select {
	case <-ctx.Done():
		s.log.Error().Err(ctx.Err()).Msg(fmt.Sprintf("updating withdrawal failed for %s", withdrawID))
		return modelstorage.Withdrawal{}, &storageErrors.ContextTimeoutExceededError{Err: ctx.Err()}
	case methodErr := <-chanEr:
		s.log.Error().Err(methodErr).Msg(fmt.Sprintf("updating withdrawal failed for %s", withdrawID))
		return modelstorage.Withdrawal{}, methodErr
	case withdrawal := <-chanOk:
		s.log.Info().Msg(fmt.Sprintf("updating withdrawal done for %s", withdrawID))
		return withdrawal, nil
	}
}

func (s *Storage) SweepStaleWithdrawals(ctx context.Context, olderThan time.Duration) ([]modelstorage.StaleWithdrawal, error) {
	chanOk := make(chan []modelstorage.StaleWithdrawal, 1)
	chanEr := make(chan error, 1)
	go func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		doc := s.loadDocument()
		var stale []modelstorage.StaleWithdrawal
		now := time.Now()
		for username, user := range doc.Users {
			for i := range user.Withdraws {
				w := &user.Withdraws[i]
				if w.Status != modelstorage.WithdrawalStatusPending {
					continue
				}
				requestedAt, err := time.Parse(time.RFC3339, w.RequestedAt)
				if err != nil {
					continue
				}
				if now.Sub(requestedAt) >= olderThan {
					w.Status = modelstorage.WithdrawalStatusAutoCompleted
					w.ProcessedAt = now.Format(time.RFC3339)
					stale = append(stale, modelstorage.StaleWithdrawal{Username: username, Withdrawal: *w})
				}
			}
			doc.Users[username] = user
		}
		// a single save regardless of how many withdrawals were marked
		if len(stale) != 0 {
			err := s.saveDocument(doc)
			if err != nil {
				chanEr <- err
				return
			}
		}
		chanOk <- stale
	}()

	select {
	case <-ctx.Done():
		s.log.Error().Err(ctx.Err()).Msg("sweeping stale withdrawals failed")
		return nil, &storageErrors.ContextTimeoutExceededError{Err: ctx.Err()}
	case methodErr := <-chanEr:
		s.log.Error().Err(methodErr).Msg("sweeping stale withdrawals failed")
		return nil, methodErr
	case stale := <-chanOk:
		return stale, nil
	}
}

// loadDocument reads the backing file in full, a missing or unparseable file
// degrades to an empty document instead of failing the request.
func (s *Storage) loadDocument() *modelstorage.Document {
	empty := modelstorage.Document{Users: make(map[string]modelstorage.User)}
	b, err := os.ReadFile(s.Cfg.FilePath)
	if err != nil {
		if !os.IsNotExist(err) {
			s.log.Warn().Err(err).Msg("could not read database file, degrading to an empty document")
		}
		return &empty
	}
	var doc modelstorage.Document
	err = json.Unmarshal(b, &doc)
	if err != nil {
		s.log.Warn().Err(err).Msg("could not parse database file, degrading to an empty document")
		return &empty
	}
	if doc.Users == nil {
		doc.Users = make(map[string]modelstorage.User)
	}
	return &doc
}

// saveDocument rewrites the backing file wholesale via a temporary file and
// rename so that no partial write is visible to subsequent loads.
func (s *Storage) saveDocument(doc *modelstorage.Document) error {
	b, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return &storageErrors.FileError{Err: err}
	}
	tmp, err := os.CreateTemp(filepath.Dir(s.Cfg.FilePath), filepath.Base(s.Cfg.FilePath)+".tmp-*")
	if err != nil {
		return &storageErrors.FileError{Err: err}
	}
	_, err = tmp.Write(b)
	if err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return &storageErrors.FileError{Err: err}
	}
	err = tmp.Close()
	if err != nil {
		os.Remove(tmp.Name())
		return &storageErrors.FileError{Err: err}
	}
	err = os.Rename(tmp.Name(), s.Cfg.FilePath)
	if err != nil {
		os.Remove(tmp.Name())
		return &storageErrors.FileError{Err: err}
	}
	return nil
}

// round2 keeps balances at two decimal places after every mutation.
func round2(amount float64) float64 {
	return math.Round(amount*100) / 100
}
