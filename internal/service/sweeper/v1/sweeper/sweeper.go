// Package sweeper implements the periodic stale withdrawal sweep.
package sweeper

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/danilovkiri/dk-go-snapreward/internal/client"
	"github.com/danilovkiri/dk-go-snapreward/internal/config"
	"github.com/danilovkiri/dk-go-snapreward/internal/storage/v1"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Sweeper marks long-pending withdrawals as auto-completed on a fixed period.
// It never performs a monetary transfer, the marker is a bookkeeping aid
// pending manual follow-up.
type Sweeper struct {
	ctx      context.Context
	storage  storage.Sweep
	notifier client.Notifier
	cfg      *config.SweeperConfig
	log      *zerolog.Logger
	wg       *sync.WaitGroup
}

func InitSweeper(ctx context.Context, st storage.Sweep, notifier client.Notifier, cfg *config.SweeperConfig, log *zerolog.Logger, wg *sync.WaitGroup) *Sweeper {
	sweeper := Sweeper{
		ctx:      ctx,
		storage:  st,
		notifier: notifier,
		cfg:      cfg,
		log:      log,
		wg:       wg,
	}
	return &sweeper
}

// Run starts the sweep loop bound to the process lifetime.
func (s *Sweeper) Run() {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.log.Info().Msg(fmt.Sprintf("sweeper started, checking every %v for withdrawals pending over %v", s.cfg.SweepPeriod, s.cfg.StaleAfter))
		g, _ := errgroup.WithContext(s.ctx)
		g.Go(s.process)
		<-s.ctx.Done()
		err := g.Wait()
		if err != nil {
			s.log.Error().Err(err).Msg("closing errgroup failed")
		}
		s.log.Info().Msg("sweeper stopped")
	}()
}

func (s *Sweeper) process() error {
	ticker := time.NewTicker(s.cfg.SweepPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-s.ctx.Done():
			return nil
		case <-ticker.C:
			s.sweepOnce()
		}
	}
}

// sweepOnce runs one sweep pass, a failed pass is logged and does not prevent
// subsequent runs.
func (s *Sweeper) sweepOnce() {
	stale, err := s.storage.SweepStaleWithdrawals(s.ctx, s.cfg.StaleAfter)
	if err != nil {
		s.log.Error().Err(err).Msg("sweep run failed")
		return
	}
	for _, entry := range stale {
		text := fmt.Sprintf("✅ Withdraw ID %s for %s marked auto_completed by worker. Please process actual payout manually.", entry.Withdrawal.ID, entry.Username)
		s.notifier.SendMessage(s.ctx, text)
	}
	if len(stale) != 0 {
		s.log.Info().Msg(fmt.Sprintf("sweep run done, %d withdrawals marked auto_completed", len(stale)))
	}
}
