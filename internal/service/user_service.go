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

// UserService resolves the owner every other use case is scoped to.
type UserService interface {
	// Ensure returns the user with email, creating a free-tier user on first use.
	Ensure(ctx context.Context, email string) (*domain.User, error)

	// Get returns an existing user by email.
	Get(ctx context.Context, email string) (*domain.User, error)

	// SetTier changes the user's plan.
	SetTier(ctx context.Context, email string, tier domain.Tier) (*domain.User, error)
}

type userService struct {
	uow      db.UnitOfWork
	stores   StoresFunc
	observer UseCaseObserver
}

// NewUserService creates a new user service
func NewUserService(uow db.UnitOfWork, stores StoresFunc, observers ...UseCaseObserver) UserService {
	return &userService{uow: uow, stores: stores, observer: useCaseObserverOrNoop(observers)}
}

func (s *userService) Ensure(ctx context.Context, email string) (*domain.User, error) {
	candidate := domain.NewUser(email)
	if err := candidate.Validate(); err != nil {
		return nil, domain.NewValidationError(err.Error())
	}

	var user *domain.User
	err := s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		users := s.stores(tx).Users

		existing, err := users.GetByEmail(ctx, candidate.Email)
		if err == nil {
			user = existing
			return nil
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return err
		}

		if err := users.Create(ctx, candidate); err != nil {
			return err
		}
		user = candidate
		return nil
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (s *userService) Get(ctx context.Context, email string) (*domain.User, error) {
	var user *domain.User
	err := s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		u, err := s.stores(tx).Users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
		if err != nil {
			return notFound(err, "user not found")
		}
		user = u
		return nil
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (s *userService) SetTier(ctx context.Context, email string, tier domain.Tier) (user *domain.User, err error) {
	startedAt := time.Now()
	defer func() {
		observe(ctx, s.observer, "user.set_tier", startedAt, err, map[string]any{"tier": string(tier)})
	}()

	if tier != domain.TierFree && tier != domain.TierPro {
		return nil, domain.NewValidationError("unknown tier")
	}

	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		users := s.stores(tx).Users
		u, err := users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
		if err != nil {
			return notFound(err, "user not found")
		}
		if err := users.UpdateTier(ctx, u.ID, tier); err != nil {
			return err
		}
		u.Tier = tier
		user = u
		return nil
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}
