package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/fairabc/apiserver/types"
	"github.com/lib/pq"
)

// uniqueViolation is the Postgres error code for a unique constraint
// violation, the source of truth for duplicate-email detection.
const uniqueViolation = "23505"

// AccountRepository handles persistence for accounts.
type AccountRepository struct {
	db *sql.DB
}

func NewAccountRepository(db *sql.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

func (r *AccountRepository) GetByID(ctx context.Context, id int) (types.Account, error) {
	const query = `
		SELECT id, first_name, last_name, email, password_hash, account_type, company_name, created_at, updated_at
		FROM accounts
		WHERE id = $1`
	var account types.Account
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&account.ID,
		&account.FirstName,
		&account.LastName,
		&account.Email,
		&account.PasswordHash,
		&account.AccountType,
		&account.CompanyName,
		&account.CreatedAt,
		&account.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Account{}, ErrNotFound
		}
		return types.Account{}, err
	}
	return account, nil
}

func (r *AccountRepository) GetByEmail(ctx context.Context, email string) (types.Account, error) {
	const query = `
		SELECT id, first_name, last_name, email, password_hash, account_type, company_name, created_at, updated_at
		FROM accounts
		WHERE email = $1`
	var account types.Account
	err := r.db.QueryRowContext(ctx, query, email).Scan(
		&account.ID,
		&account.FirstName,
		&account.LastName,
		&account.Email,
		&account.PasswordHash,
		&account.AccountType,
		&account.CompanyName,
		&account.CreatedAt,
		&account.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Account{}, ErrNotFound
		}
		return types.Account{}, err
	}
	return account, nil
}

// Create inserts a new account. The unique index on accounts.email
// decides concurrent registrations: exactly one insert succeeds, the
// rest receive ErrDuplicateEmail.
func (r *AccountRepository) Create(ctx context.Context, account types.Account) (types.Account, error) {
	now := time.Now()
	account.CreatedAt = now
	account.UpdatedAt = now

	const query = `
		INSERT INTO accounts (first_name, last_name, email, password_hash, account_type, company_name, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`
	if err := r.db.QueryRowContext(
		ctx,
		query,
		account.FirstName,
		account.LastName,
		account.Email,
		account.PasswordHash,
		account.AccountType,
		account.CompanyName,
		account.CreatedAt,
		account.UpdatedAt,
	).Scan(&account.ID); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return types.Account{}, ErrDuplicateEmail
		}
		return types.Account{}, err
	}
	return account, nil
}
