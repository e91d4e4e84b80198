package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/andy/tallysheet/internal/db"
	"github.com/andy/tallysheet/internal/domain"
)

// UserRepo is a SQLite implementation of UserRepository
type UserRepo struct {
	db db.DBTX
}

// NewUserRepo creates a new UserRepo
func NewUserRepo(q db.DBTX) *UserRepo {
	return &UserRepo{db: q}
}

func (r *UserRepo) Create(ctx context.Context, user *domain.User) error {
	if err := user.Validate(); err != nil {
		return fmt.Errorf("invalid user: %w", err)
	}

	result, err := r.db.ExecContext(ctx,
		`INSERT INTO users (email, tier, created_at) VALUES (?, ?, ?)`,
		user.Email, string(user.Tier), formatTime(user.CreatedAt),
	)
	if err != nil {
		return wrapWrite("create user", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get user ID: %w", err)
	}

	user.ID = id
	return nil
}

func (r *UserRepo) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	return r.getOne(ctx, `SELECT id, email, tier, created_at FROM users WHERE id = ?`, id)
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.getOne(ctx, `SELECT id, email, tier, created_at FROM users WHERE email = ?`, email)
}

func (r *UserRepo) UpdateTier(ctx context.Context, id int64, tier domain.Tier) error {
	result, err := r.db.ExecContext(ctx, `UPDATE users SET tier = ? WHERE id = ?`, string(tier), id)
	if err != nil {
		return fmt.Errorf("failed to update tier: %w", err)
	}
	return checkAffected(result, fmt.Sprintf("user %d", id))
}

func (r *UserRepo) getOne(ctx context.Context, query string, arg any) (*domain.User, error) {
	u := &domain.User{}
	var tier, createdAt string

	err := r.db.QueryRowContext(ctx, query, arg).Scan(&u.ID, &u.Email, &tier, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user %v: %w", arg, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	u.Tier = domain.Tier(tier)
	if u.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("failed to parse created_at: %w", err)
	}
	return u, nil
}
