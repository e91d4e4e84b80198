package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/andy/tallysheet/internal/db"
	"github.com/andy/tallysheet/internal/domain"
	"github.com/andy/tallysheet/internal/repository"
)

var (
	ErrTimerAlreadyRunning = &domain.Error{Kind: domain.KindConflict, Message: "timer already running for this client"}
	ErrNoActiveTimer       = &domain.Error{Kind: domain.KindNotFound, Message: "no running timer found for this client"}
)

// TimerService runs one stopwatch per client. A running timer is an open
// time entry; stopping it closes the entry.
type TimerService interface {
	// Start opens an entry for the client (only when its timer is idle)
	Start(ctx context.Context, ownerID, clientID int64, notes string) (*domain.TimeEntry, error)

	// Stop closes the client's open entry. Non-nil notes replace the entry's notes.
	Stop(ctx context.Context, ownerID, clientID int64, notes *string) (*domain.TimeEntry, error)

	// Discard drops the client's open entry without billing it
	Discard(ctx context.Context, ownerID, clientID int64) error

	// Running lists every running timer of the owner, oldest first
	Running(ctx context.Context, ownerID int64) ([]*domain.RunningTimer, error)
}

type timerService struct {
	uow      db.UnitOfWork
	stores   StoresFunc
	now      func() time.Time
	observer UseCaseObserver
}

// NewTimerService creates a new timer service. A nil clock means time.Now.
func NewTimerService(uow db.UnitOfWork, stores StoresFunc, clock func() time.Time, observers ...UseCaseObserver) TimerService {
	if clock == nil {
		clock = time.Now
	}
	return &timerService{
		uow:      uow,
		stores:   stores,
		now:      clock,
		observer: useCaseObserverOrNoop(observers),
	}
}

func (s *timerService) Start(ctx context.Context, ownerID, clientID int64, notes string) (entry *domain.TimeEntry, err error) {
	startedAt := time.Now()
	defer func() {
		observe(ctx, s.observer, "timer.start", startedAt, err, map[string]any{"owner_id": ownerID, "client_id": clientID})
	}()

	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		st := s.stores(tx)

		if _, err := st.Clients.GetByID(ctx, ownerID, clientID); err != nil {
			return notFound(err, msgClientNotFound)
		}

		running, err := st.Timers.GetRunning(ctx, ownerID, clientID)
		if err != nil {
			return err
		}
		if running != nil {
			return ErrTimerAlreadyRunning
		}

		e := domain.NewTimeEntry(ownerID, clientID, strings.TrimSpace(notes))
		e.StartTime = s.now().UTC().Truncate(time.Second)
		if err := st.Entries.Create(ctx, e); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return ErrTimerAlreadyRunning
			}
			return err
		}
		entry = e
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

func (s *timerService) Stop(ctx context.Context, ownerID, clientID int64, notes *string) (entry *domain.TimeEntry, err error) {
	startedAt := time.Now()
	defer func() {
		observe(ctx, s.observer, "timer.stop", startedAt, err, map[string]any{"owner_id": ownerID, "client_id": clientID})
	}()

	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		st := s.stores(tx)

		running, err := st.Timers.GetRunning(ctx, ownerID, clientID)
		if err != nil {
			return err
		}
		if running == nil {
			return ErrNoActiveTimer
		}

		// the clock may lag the stored start; never close before it
		end := laterOf(s.now().UTC().Truncate(time.Second), running.StartTime)
		if err := st.Timers.Stop(ctx, ownerID, running.ID, end, notes); err != nil {
			return notFound(err, ErrNoActiveTimer.Message)
		}

		entry, err = st.Entries.GetByID(ctx, ownerID, running.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

func (s *timerService) Discard(ctx context.Context, ownerID, clientID int64) (err error) {
	startedAt := time.Now()
	defer func() {
		observe(ctx, s.observer, "timer.discard", startedAt, err, map[string]any{"owner_id": ownerID, "client_id": clientID})
	}()

	return s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		st := s.stores(tx)

		running, err := st.Timers.GetRunning(ctx, ownerID, clientID)
		if err != nil {
			return err
		}
		if running == nil {
			return ErrNoActiveTimer
		}
		return st.Entries.SoftDelete(ctx, ownerID, running.ID, "timer discarded")
	})
}

func (s *timerService) Running(ctx context.Context, ownerID int64) ([]*domain.RunningTimer, error) {
	var timers []*domain.RunningTimer
	err := s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		var err error
		timers, err = s.stores(tx).Timers.ListRunning(ctx, ownerID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return timers, nil
}

func laterOf(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}
