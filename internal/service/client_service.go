package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/andy/tallysheet/internal/db"
	"github.com/andy/tallysheet/internal/domain"
	"github.com/andy/tallysheet/internal/repository"
)

const msgClientExists = "client with this name already exists"

// ClientUpdate carries the fields to change; nil leaves a field as is.
type ClientUpdate struct {
	Name       *string
	HourlyRate *float64
}

// ClientService manages an owner's clients.
type ClientService interface {
	// Create adds a client, enforcing the owner's plan limit.
	Create(ctx context.Context, ownerID int64, name string, hourlyRate float64) (*domain.Client, error)

	Get(ctx context.Context, ownerID, id int64) (*domain.Client, error)

	// Resolve finds a client by numeric ID or by exact name.
	Resolve(ctx context.Context, ownerID int64, ref string) (*domain.Client, error)

	List(ctx context.Context, ownerID int64) ([]*domain.Client, error)

	Update(ctx context.Context, ownerID, id int64, upd ClientUpdate) (*domain.Client, error)

	// Delete removes a client, stopping its timer. Its entries are detached
	// and its timesheets kept.
	Delete(ctx context.Context, ownerID, id int64) error
}

type clientService struct {
	uow      db.UnitOfWork
	stores   StoresFunc
	observer UseCaseObserver
}

// NewClientService creates a new client service
func NewClientService(uow db.UnitOfWork, stores StoresFunc, observers ...UseCaseObserver) ClientService {
	return &clientService{uow: uow, stores: stores, observer: useCaseObserverOrNoop(observers)}
}

func (s *clientService) Create(ctx context.Context, ownerID int64, name string, hourlyRate float64) (client *domain.Client, err error) {
	startedAt := time.Now()
	defer func() {
		observe(ctx, s.observer, "client.create", startedAt, err, map[string]any{"owner_id": ownerID})
	}()

	candidate := domain.NewClient(ownerID, name, hourlyRate)
	if err := candidate.Validate(); err != nil {
		return nil, domain.NewValidationError(err.Error())
	}

	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		st := s.stores(tx)

		owner, err := st.Users.GetByID(ctx, ownerID)
		if err != nil {
			return notFound(err, "user not found")
		}

		if limit := owner.ClientLimit(); limit > 0 {
			n, err := st.Clients.Count(ctx, ownerID)
			if err != nil {
				return err
			}
			if n >= limit {
				return domain.NewLimitError(fmt.Sprintf("free plan limited to %d clients; upgrade to pro for unlimited clients", limit))
			}
		}

		if err := st.Clients.Create(ctx, candidate); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return domain.NewConflictError(msgClientExists, err)
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return candidate, nil
}

func (s *clientService) Get(ctx context.Context, ownerID, id int64) (*domain.Client, error) {
	var client *domain.Client
	err := s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		c, err := s.stores(tx).Clients.GetByID(ctx, ownerID, id)
		if err != nil {
			return notFound(err, msgClientNotFound)
		}
		client = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return client, nil
}

func (s *clientService) Resolve(ctx context.Context, ownerID int64, ref string) (*domain.Client, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, domain.NewValidationError("client is required")
	}

	var client *domain.Client
	err := s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		clients := s.stores(tx).Clients

		// a name that happens to be numeric still wins over an ID
		c, err := clients.GetByName(ctx, ownerID, ref)
		if err == nil {
			client = c
			return nil
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return err
		}

		id, perr := strconv.ParseInt(ref, 10, 64)
		if perr != nil {
			return domain.NewNotFoundError(msgClientNotFound)
		}
		c, err = clients.GetByID(ctx, ownerID, id)
		if err != nil {
			return notFound(err, msgClientNotFound)
		}
		client = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return client, nil
}

func (s *clientService) List(ctx context.Context, ownerID int64) ([]*domain.Client, error) {
	var clients []*domain.Client
	err := s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		var err error
		clients, err = s.stores(tx).Clients.List(ctx, ownerID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return clients, nil
}

func (s *clientService) Update(ctx context.Context, ownerID, id int64, upd ClientUpdate) (client *domain.Client, err error) {
	startedAt := time.Now()
	defer func() {
		observe(ctx, s.observer, "client.update", startedAt, err, map[string]any{"owner_id": ownerID, "client_id": id})
	}()

	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		clients := s.stores(tx).Clients

		c, err := clients.GetByID(ctx, ownerID, id)
		if err != nil {
			return notFound(err, msgClientNotFound)
		}
		if upd.Name != nil {
			c.Name = strings.TrimSpace(*upd.Name)
		}
		if upd.HourlyRate != nil {
			c.HourlyRate = *upd.HourlyRate
		}
		if err := c.Validate(); err != nil {
			return domain.NewValidationError(err.Error())
		}
		c.UpdatedAt = time.Now().UTC()

		if err := clients.Update(ctx, c); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return domain.NewConflictError(msgClientExists, err)
			}
			return err
		}
		client = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return client, nil
}

func (s *clientService) Delete(ctx context.Context, ownerID, id int64) (err error) {
	startedAt := time.Now()
	defer func() {
		observe(ctx, s.observer, "client.delete", startedAt, err, map[string]any{"owner_id": ownerID, "client_id": id})
	}()

	return s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		st := s.stores(tx)

		// a detached open entry could never be stopped, so close it first
		running, err := st.Timers.GetRunning(ctx, ownerID, id)
		if err != nil {
			return err
		}
		if running != nil {
			end := laterOf(time.Now().UTC(), running.StartTime)
			if err := st.Timers.Stop(ctx, ownerID, running.ID, end, nil); err != nil {
				return err
			}
		}

		return notFound(st.Clients.Delete(ctx, ownerID, id), msgClientNotFound)
	})
}
