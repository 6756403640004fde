package services

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/fairabc/apiserver/internal/auth"
	"github.com/fairabc/apiserver/internal/store"
	"github.com/fairabc/apiserver/types"
)

const (
	maxNameLen    = 50
	maxEmailLen   = 100
	maxCompanyLen = 100
)

// ErrInvalidCredentials is returned for both an unknown email and a
// wrong password so a caller cannot probe which emails are registered.
var ErrInvalidCredentials = errors.New("invalid credentials")

// ValidationError reports the registration fields that were missing or
// malformed.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid fields: %s", strings.Join(e.Fields, ", "))
}

// AccountTypeMismatchError is returned when credentials verify but the
// account's type differs from what the caller expected.
type AccountTypeMismatchError struct {
	Expected types.AccountType
	Actual   types.AccountType
}

func (e *AccountTypeMismatchError) Error() string {
	if e.Expected == types.AccountTypeCustomer {
		return "this account is not a customer account"
	}
	return "this account is not a company account"
}

// AccountRepository defines persistence operations for accounts.
type AccountRepository interface {
	GetByID(ctx context.Context, id int) (types.Account, error)
	GetByEmail(ctx context.Context, email string) (types.Account, error)
	Create(ctx context.Context, account types.Account) (types.Account, error)
}

// RegisterInput carries the fields required to create an account.
// CompanyName is optional regardless of account type.
type RegisterInput struct {
	FirstName   string
	LastName    string
	Email       string
	Password    string
	AccountType types.AccountType
	CompanyName string
}

// AccountService encapsulates registration and login.
type AccountService struct {
	repo   AccountRepository
	hasher auth.PasswordHasher
}

func NewAccountService(repo AccountRepository, hasher auth.PasswordHasher) *AccountService {
	return &AccountService{repo: repo, hasher: hasher}
}

// Register validates the input, hashes the password, and persists a new
// account. It fails with *ValidationError for bad input and
// store.ErrDuplicateEmail when the email is already registered. The
// store's unique constraint is authoritative: the lookup here only
// gives a friendlier fast path.
func (s *AccountService) Register(ctx context.Context, input RegisterInput) (types.Account, error) {
	input.FirstName = strings.TrimSpace(input.FirstName)
	input.LastName = strings.TrimSpace(input.LastName)
	input.Email = NormalizeEmail(input.Email)
	input.CompanyName = strings.TrimSpace(input.CompanyName)

	if err := validateRegisterInput(input); err != nil {
		return types.Account{}, err
	}

	if _, err := s.repo.GetByEmail(ctx, input.Email); err == nil {
		return types.Account{}, store.ErrDuplicateEmail
	} else if !errors.Is(err, store.ErrNotFound) {
		return types.Account{}, fmt.Errorf("check existing account: %w", err)
	}

	hashed, err := s.hasher.Hash(input.Password)
	if err != nil {
		return types.Account{}, fmt.Errorf("hash password: %w", err)
	}

	account, err := s.repo.Create(ctx, types.Account{
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		Email:        input.Email,
		PasswordHash: hashed,
		AccountType:  input.AccountType,
		CompanyName:  input.CompanyName,
	})
	if err != nil {
		return types.Account{}, err
	}
	return account, nil
}

// Login verifies the credentials and the expected account type. An
// unknown email and a wrong password both fail with
// ErrInvalidCredentials; a type mismatch fails with
// *AccountTypeMismatchError naming the expected side. Login never
// mutates stored state.
func (s *AccountService) Login(ctx context.Context, email, password string, expected types.AccountType) (types.Account, error) {
	account, err := s.repo.GetByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.Account{}, ErrInvalidCredentials
		}
		return types.Account{}, fmt.Errorf("look up account: %w", err)
	}

	if err := s.hasher.Verify(password, account.PasswordHash); err != nil {
		return types.Account{}, ErrInvalidCredentials
	}

	if account.AccountType != expected {
		return types.Account{}, &AccountTypeMismatchError{
			Expected: expected,
			Actual:   account.AccountType,
		}
	}

	return account, nil
}

// NormalizeEmail applies the store's email case policy: trimmed and
// lowercased, identically at registration and login.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateRegisterInput(input RegisterInput) error {
	var bad []string

	if input.FirstName == "" || len(input.FirstName) > maxNameLen {
		bad = append(bad, "first_name")
	}
	if input.LastName == "" || len(input.LastName) > maxNameLen {
		bad = append(bad, "last_name")
	}
	if !validEmail(input.Email) {
		bad = append(bad, "email")
	}
	if input.Password == "" {
		bad = append(bad, "password")
	}
	if !input.AccountType.Valid() {
		bad = append(bad, "account_type")
	}
	if len(input.CompanyName) > maxCompanyLen {
		bad = append(bad, "company_name")
	}

	if len(bad) > 0 {
		return &ValidationError{Fields: bad}
	}
	return nil
}

func validEmail(email string) bool {
	if email == "" || len(email) > maxEmailLen {
		return false
	}
	addr, err := mail.ParseAddress(email)
	if err != nil {
		return false
	}
	// Reject display-name forms like "Ada <ada@x.com>".
	return addr.Address == email
}
