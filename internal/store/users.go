package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ganot/hrv-ingest/internal/domain/participant"
	"github.com/ganot/hrv-ingest/internal/repository"
)

// UserRepository implements repository.UserRepository
type UserRepository struct {
	db *DB
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db *DB) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `id, age, gender, clinical_history, notes`

// GetUser retrieves a user by id
func (r *UserRepository) GetUser(ctx context.Context, id int64) (*participant.User, error) {
	if err := r.db.ensure(ctx, repository.TableUsers); err != nil {
		return nil, err
	}
	query := `SELECT ` + userColumns + ` FROM users WHERE id = ?`
	u, err := scanUser(r.db.QueryRowContext(ctx, r.db.rebind(query), id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return u, nil
}

// ListUsers returns users ordered by id
func (r *UserRepository) ListUsers(ctx context.Context, opts repository.ListOptions) ([]participant.User, error) {
	if err := r.db.ensure(ctx, repository.TableUsers); err != nil {
		return nil, err
	}
	query, args := limitOffset(`SELECT `+userColumns+` FROM users ORDER BY id`, nil, opts.Limit, opts.Offset)
	rows, err := r.db.QueryContext(ctx, r.db.rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []participant.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating user rows: %w", err)
	}
	return users, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*participant.User, error) {
	var (
		u   participant.User
		age sql.NullInt64
	)
	if err := row.Scan(&u.ID, &age, &u.Gender, &u.ClinicalHistory, &u.Notes); err != nil {
		return nil, err
	}
	if age.Valid {
		a := int(age.Int64)
		u.Age = &a
	}
	return &u, nil
}
