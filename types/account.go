package types

import (
	"strings"
	"time"
)

// AccountType distinguishes customer and company accounts. It is fixed
// at registration and verified against the caller's expectation at login.
type AccountType string

const (
	AccountTypeCustomer AccountType = "customer"
	AccountTypeCompany  AccountType = "company"
)

// ParseAccountType parses a wire value into an AccountType,
// case-insensitively. The boolean reports whether the value was valid.
func ParseAccountType(value string) (AccountType, bool) {
	switch AccountType(strings.ToLower(strings.TrimSpace(value))) {
	case AccountTypeCustomer:
		return AccountTypeCustomer, true
	case AccountTypeCompany:
		return AccountTypeCompany, true
	default:
		return "", false
	}
}

// Valid reports whether t is one of the known account types.
func (t AccountType) Valid() bool {
	return t == AccountTypeCustomer || t == AccountTypeCompany
}

// Account represents a registered identity in the system.
type Account struct {
	// ID is the unique identifier of the account, assigned by the store.
	ID int `json:"id" db:"id"`

	// FirstName is the account holder's given name.
	FirstName string `json:"first_name" db:"first_name"`

	// LastName is the account holder's family name.
	LastName string `json:"last_name" db:"last_name"`

	// Email is the account's email address, unique across all accounts.
	Email string `json:"email" db:"email"`

	// PasswordHash stores the hashed representation of the account's
	// password. This field is never exposed in API responses.
	PasswordHash string `json:"-" db:"password_hash"`

	// AccountType is "customer" or "company", fixed at registration.
	AccountType AccountType `json:"account_type" db:"account_type"`

	// CompanyName is optional and conventionally set for company
	// accounts. It is stored as given regardless of account type.
	CompanyName string `json:"company_name,omitempty" db:"company_name"`

	// CreatedAt is the timestamp when the account was created.
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	// UpdatedAt is the timestamp of the most recent update to the account.
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// View returns the identity fields safe to return to a caller.
func (a Account) View() AccountView {
	return AccountView{
		ID:          a.ID,
		Email:       a.Email,
		AccountType: a.AccountType,
		FirstName:   a.FirstName,
		LastName:    a.LastName,
		CompanyName: a.CompanyName,
	}
}

// AccountView is the login success payload: account identity without
// any credential material.
type AccountView struct {
	ID          int         `json:"id"`
	Email       string      `json:"email"`
	AccountType AccountType `json:"account_type"`
	FirstName   string      `json:"first_name"`
	LastName    string      `json:"last_name"`
	CompanyName string      `json:"company_name,omitempty"`
}
