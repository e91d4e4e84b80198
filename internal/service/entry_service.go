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

const msgEntryNotFound = "time entry not found"

// EntryUpdate carries the fields to change; nil leaves a field as is.
type EntryUpdate struct {
	ClientID  *int64
	Notes     *string
	StartTime *time.Time
	EndTime   *time.Time
}

// EntryService manages tracked time. Every change is written to the entry's
// history together with a reason.
type EntryService interface {
	// Add records a finished interval for a client
	Add(ctx context.Context, ownerID, clientID int64, start, end time.Time, notes string) (*domain.TimeEntry, error)

	Get(ctx context.Context, ownerID, id int64) (*domain.TimeEntry, error)

	List(ctx context.Context, ownerID int64, filter repository.EntryFilter) ([]*domain.TimeEntry, error)

	Update(ctx context.Context, ownerID, id int64, upd EntryUpdate, reason string) (*domain.TimeEntry, error)

	Delete(ctx context.Context, ownerID, id int64, reason string) error

	History(ctx context.Context, ownerID, id int64) ([]*domain.EntryHistory, error)
}

type entryService struct {
	uow      db.UnitOfWork
	stores   StoresFunc
	observer UseCaseObserver
}

// NewEntryService creates a new entry service
func NewEntryService(uow db.UnitOfWork, stores StoresFunc, observers ...UseCaseObserver) EntryService {
	return &entryService{uow: uow, stores: stores, observer: useCaseObserverOrNoop(observers)}
}

func (s *entryService) Add(ctx context.Context, ownerID, clientID int64, start, end time.Time, notes string) (entry *domain.TimeEntry, err error) {
	startedAt := time.Now()
	defer func() {
		observe(ctx, s.observer, "entry.add", startedAt, err, map[string]any{"owner_id": ownerID, "client_id": clientID})
	}()

	if !end.After(start) {
		return nil, domain.NewValidationError("end time must be after start time")
	}
	e := domain.NewClosedEntry(ownerID, clientID, start, end, strings.TrimSpace(notes))

	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		st := s.stores(tx)
		if _, err := st.Clients.GetByID(ctx, ownerID, clientID); err != nil {
			return notFound(err, msgClientNotFound)
		}
		return st.Entries.Create(ctx, e)
	})
	if err != nil {
		return nil, err
	}
	return e, nil
}

func (s *entryService) Get(ctx context.Context, ownerID, id int64) (*domain.TimeEntry, error) {
	var entry *domain.TimeEntry
	err := s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		e, err := s.stores(tx).Entries.GetByID(ctx, ownerID, id)
		if err != nil {
			return notFound(err, msgEntryNotFound)
		}
		entry = e
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

func (s *entryService) List(ctx context.Context, ownerID int64, filter repository.EntryFilter) ([]*domain.TimeEntry, error) {
	var entries []*domain.TimeEntry
	err := s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		var err error
		entries, err = s.stores(tx).Entries.List(ctx, ownerID, filter)
		return err
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func (s *entryService) Update(ctx context.Context, ownerID, id int64, upd EntryUpdate, reason string) (entry *domain.TimeEntry, err error) {
	startedAt := time.Now()
	defer func() {
		observe(ctx, s.observer, "entry.update", startedAt, err, map[string]any{"owner_id": ownerID, "entry_id": id})
	}()

	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, domain.NewValidationError("a reason is required to edit an entry")
	}

	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		st := s.stores(tx)

		e, err := st.Entries.GetByID(ctx, ownerID, id)
		if err != nil {
			return notFound(err, msgEntryNotFound)
		}

		if upd.ClientID != nil {
			if _, err := st.Clients.GetByID(ctx, ownerID, *upd.ClientID); err != nil {
				return notFound(err, msgClientNotFound)
			}
			clientID := *upd.ClientID
			e.ClientID = &clientID
		}
		if upd.Notes != nil {
			e.Notes = strings.TrimSpace(*upd.Notes)
		}
		if upd.StartTime != nil {
			e.StartTime = upd.StartTime.UTC()
		}
		if upd.EndTime != nil {
			end := upd.EndTime.UTC()
			e.EndTime = &end
		}
		if e.EndTime != nil && !e.EndTime.After(e.StartTime) {
			return domain.NewValidationError("end time must be after start time")
		}

		if err := st.Entries.Update(ctx, e, reason); err != nil {
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

func (s *entryService) Delete(ctx context.Context, ownerID, id int64, reason string) (err error) {
	startedAt := time.Now()
	defer func() {
		observe(ctx, s.observer, "entry.delete", startedAt, err, map[string]any{"owner_id": ownerID, "entry_id": id})
	}()

	reason = strings.TrimSpace(reason)
	if reason == "" {
		reason = "deleted"
	}
	return s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		return notFound(s.stores(tx).Entries.SoftDelete(ctx, ownerID, id, reason), msgEntryNotFound)
	})
}

func (s *entryService) History(ctx context.Context, ownerID, id int64) ([]*domain.EntryHistory, error) {
	var history []*domain.EntryHistory
	err := s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		st := s.stores(tx)
		if _, err := st.Entries.GetByID(ctx, ownerID, id); err != nil {
			return notFound(err, msgEntryNotFound)
		}
		var err error
		history, err = st.Entries.GetHistory(ctx, ownerID, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return history, nil
}
