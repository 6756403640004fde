package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/fairabc/apiserver/internal/services"
	"github.com/fairabc/apiserver/internal/store"
	"github.com/fairabc/apiserver/types"
	"github.com/go-chi/chi/v5"
)

// AuthHandler provides the registration and login endpoints.
type AuthHandler struct {
	accountService *services.AccountService
}

// NewAuthHandler constructs an AuthHandler with the provided dependencies.
func NewAuthHandler(accountService *services.AccountService) *AuthHandler {
	return &AuthHandler{accountService: accountService}
}

// AuthRouter registers auth routes on the given router.
func AuthRouter(r chi.Router, accountService *services.AccountService) {
	handler := NewAuthHandler(accountService)

	r.Post("/register", handler.Register)
	r.Post("/login", handler.Login)
}

// Register creates a new account. The response never echoes the
// password or its hash.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	accountType, _ := types.ParseAccountType(req.AccountType)

	_, err := h.accountService.Register(r.Context(), services.RegisterInput{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Email:       req.Email,
		Password:    req.Password,
		AccountType: accountType,
		CompanyName: req.CompanyName,
	})
	if err != nil {
		var validationErr *services.ValidationError
		switch {
		case errors.As(err, &validationErr):
			writeJSON(w, http.StatusBadRequest, ValidationErrorResponse{
				Error:  "invalid fields",
				Fields: validationErr.Fields,
			})
		case errors.Is(err, store.ErrDuplicateEmail):
			writeError(w, http.StatusConflict, "email already registered")
		default:
			writeError(w, http.StatusInternalServerError, "failed to create account")
		}
		return
	}

	writeJSON(w, http.StatusCreated, RegisterResponse{Message: "registration successful"})
}

// Login verifies credentials and the expected account type, returning
// the account's identity fields on success.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	expected, ok := types.ParseAccountType(req.ExpectedAccountType)
	if req.Email == "" || req.Password == "" || !ok {
		writeError(w, http.StatusBadRequest, "missing credentials")
		return
	}

	account, err := h.accountService.Login(r.Context(), req.Email, req.Password, expected)
	if err != nil {
		var mismatchErr *services.AccountTypeMismatchError
		switch {
		case errors.Is(err, services.ErrInvalidCredentials):
			writeError(w, http.StatusUnauthorized, "invalid credentials")
		case errors.As(err, &mismatchErr):
			writeError(w, http.StatusUnauthorized, mismatchErr.Error())
		default:
			writeError(w, http.StatusInternalServerError, "failed to authenticate")
		}
		return
	}

	writeJSON(w, http.StatusOK, account.View())
}

type RegisterRequest struct {
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	AccountType string `json:"account_type"`
	CompanyName string `json:"company_name"`
}

type LoginRequest struct {
	Email               string `json:"email"`
	Password            string `json:"password"`
	ExpectedAccountType string `json:"expected_account_type"`
}

type RegisterResponse struct {
	Message string `json:"message"`
}

// ValidationErrorResponse enumerates the request fields that failed
// validation.
type ValidationErrorResponse struct {
	Error  string   `json:"error"`
	Fields []string `json:"fields"`
}
