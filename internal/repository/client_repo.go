package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/andy/tallysheet/internal/db"
	"github.com/andy/tallysheet/internal/domain"
)

const clientColumns = `id, owner_id, name, hourly_rate, created_at, updated_at`

// ClientRepo is a SQLite implementation of ClientRepository
type ClientRepo struct {
	db db.DBTX
}

// NewClientRepo creates a new ClientRepo
func NewClientRepo(q db.DBTX) *ClientRepo {
	return &ClientRepo{db: q}
}

// Create inserts a new client. A name already used by the owner yields ErrDuplicate.
func (r *ClientRepo) Create(ctx context.Context, client *domain.Client) error {
	if err := client.Validate(); err != nil {
		return fmt.Errorf("invalid client: %w", err)
	}

	query := `
		INSERT INTO clients (owner_id, name, hourly_rate, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query,
		client.OwnerID,
		client.Name,
		client.HourlyRate,
		formatTime(client.CreatedAt),
		formatTime(client.UpdatedAt),
	)
	if err != nil {
		return wrapWrite("create client", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get client ID: %w", err)
	}

	client.ID = id
	return nil
}

// GetByID retrieves one of the owner's clients
func (r *ClientRepo) GetByID(ctx context.Context, ownerID, id int64) (*domain.Client, error) {
	query := `SELECT ` + clientColumns + ` FROM clients WHERE owner_id = ? AND id = ?`
	client, err := scanClient(r.db.QueryRowContext(ctx, query, ownerID, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("client %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get client: %w", err)
	}
	return client, nil
}

// GetByName retrieves one of the owner's clients by exact name
func (r *ClientRepo) GetByName(ctx context.Context, ownerID int64, name string) (*domain.Client, error) {
	query := `SELECT ` + clientColumns + ` FROM clients WHERE owner_id = ? AND name = ?`
	client, err := scanClient(r.db.QueryRowContext(ctx, query, ownerID, name))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("client %q: %w", name, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get client: %w", err)
	}
	return client, nil
}

// List retrieves all of the owner's clients ordered by name
func (r *ClientRepo) List(ctx context.Context, ownerID int64) ([]*domain.Client, error) {
	query := `SELECT ` + clientColumns + ` FROM clients WHERE owner_id = ? ORDER BY name`

	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list clients: %w", err)
	}
	defer rows.Close()

	clients := make([]*domain.Client, 0)
	for rows.Next() {
		client, err := scanClient(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan client: %w", err)
		}
		clients = append(clients, client)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating clients: %w", err)
	}

	return clients, nil
}

// Count returns how many clients the owner has
func (r *ClientRepo) Count(ctx context.Context, ownerID int64) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM clients WHERE owner_id = ?`, ownerID).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count clients: %w", err)
	}
	return n, nil
}

// Update updates name and rate of an existing client
func (r *ClientRepo) Update(ctx context.Context, client *domain.Client) error {
	if err := client.Validate(); err != nil {
		return fmt.Errorf("invalid client: %w", err)
	}

	query := `
		UPDATE clients
		SET name = ?, hourly_rate = ?, updated_at = ?
		WHERE owner_id = ? AND id = ?
	`

	result, err := r.db.ExecContext(ctx, query,
		client.Name,
		client.HourlyRate,
		formatTime(client.UpdatedAt),
		client.OwnerID,
		client.ID,
	)
	if err != nil {
		return wrapWrite("update client", err)
	}

	return checkAffected(result, fmt.Sprintf("client %d", client.ID))
}

// Delete removes a client. Its entries keep their rows with client_id set to
// NULL; timesheets are untouched.
func (r *ClientRepo) Delete(ctx context.Context, ownerID, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM clients WHERE owner_id = ? AND id = ?`, ownerID, id)
	if err != nil {
		return fmt.Errorf("failed to delete client: %w", err)
	}
	return checkAffected(result, fmt.Sprintf("client %d", id))
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanClient(s rowScanner) (*domain.Client, error) {
	client := &domain.Client{}
	var createdAt, updatedAt string

	err := s.Scan(
		&client.ID,
		&client.OwnerID,
		&client.Name,
		&client.HourlyRate,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	if client.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if client.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, fmt.Errorf("failed to parse updated_at: %w", err)
	}
	return client, nil
}
