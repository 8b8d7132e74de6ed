package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/iho/debtledger/internal/domain"
	"github.com/iho/debtledger/internal/usecase"
)

const userColumns = `id, username, email, first_name, last_name, hashed_password, active, created_at`

// UserRepository implements user persistence
type UserRepository struct {
	db DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create inserts a new user
func (r *UserRepository) Create(ctx context.Context, tx usecase.Transaction, user *domain.User) error {
	query := `
		INSERT INTO users (id, username, email, first_name, last_name, hashed_password, active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := conn(r.db, tx).Exec(ctx, query,
		user.ID,
		user.Username,
		user.Email,
		user.FirstName,
		user.LastName,
		user.HashedPassword,
		user.Active,
		user.CreatedAt,
	)

	return err
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(r.db.QueryRow(ctx, query, id))
}

// GetByIDForUpdate locks the user row for the rest of tx.
func (r *UserRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1 FOR UPDATE`
	return scanUser(conn(r.db, tx).QueryRow(ctx, query, id))
}

// GetActiveByUsername matches the username case-insensitively.
func (r *UserRepository) GetActiveByUsername(ctx context.Context, username string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE LOWER(username) = LOWER($1) AND active`
	return scanUser(r.db.QueryRow(ctx, query, username))
}

func (r *UserRepository) ActiveUsernameTaken(ctx context.Context, username string) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE LOWER(username) = LOWER($1) AND active)`, username)
}

func (r *UserRepository) ActiveEmailTaken(ctx context.Context, email string) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE LOWER(email) = LOWER($1) AND active)`, email)
}

// Activate confirms the account. A concurrent confirmation of the same
// identity trips the partial unique index and is reported as an invalid link.
func (r *UserRepository) Activate(ctx context.Context, tx usecase.Transaction, id string) error {
	tag, err := conn(r.db, tx).Exec(ctx, `UPDATE users SET active = TRUE WHERE id = $1 AND NOT active`, id)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrInvalidActivation
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrInvalidActivation
	}
	return nil
}

// DeleteInactiveDuplicates removes pending users that share the username or
// email of user, together with their currency owner rows.
func (r *UserRepository) DeleteInactiveDuplicates(ctx context.Context, tx usecase.Transaction, user *domain.User) ([]int64, error) {
	q := conn(r.db, tx)

	rows, err := q.Query(ctx, `
		DELETE FROM currency_owners
		WHERE owner_id IN (
			SELECT id FROM users
			WHERE id <> $1 AND NOT active
			  AND (LOWER(username) = LOWER($2) OR LOWER(email) = LOWER($3))
		)
		RETURNING currency_id
	`, user.ID, user.Username, user.Email)
	if err != nil {
		return nil, fmt.Errorf("delete duplicate currency owners: %w", err)
	}

	currencyIDs, err := pgx.CollectRows(rows, pgx.RowTo[int64])
	if err != nil {
		return nil, fmt.Errorf("delete duplicate currency owners: %w", err)
	}

	_, err = q.Exec(ctx, `
		DELETE FROM users
		WHERE id <> $1 AND NOT active
		  AND (LOWER(username) = LOWER($2) OR LOWER(email) = LOWER($3))
	`, user.ID, user.Username, user.Email)
	if err != nil {
		return nil, fmt.Errorf("delete duplicate users: %w", err)
	}

	return currencyIDs, nil
}

func (r *UserRepository) exists(ctx context.Context, query string, arg string) (bool, error) {
	var found bool
	if err := r.db.QueryRow(ctx, query, arg).Scan(&found); err != nil {
		return false, err
	}
	return found, nil
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var user domain.User
	err := row.Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.FirstName,
		&user.LastName,
		&user.HashedPassword,
		&user.Active,
		&user.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}
