package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/fairabc/apiserver/internal/auth"
	"github.com/fairabc/apiserver/internal/services"
	"github.com/fairabc/apiserver/internal/store"
)

func newTestRouter() *chi.Mux {
	accountService := services.NewAccountService(
		store.NewMemoryAccountRepository(),
		auth.NewBcryptHasherWithCost(bcrypt.MinCost),
	)

	router := chi.NewRouter()
	router.Get("/healthz", Healthz)
	router.Route("/api/auth", func(r chi.Router) {
		AuthRouter(r, accountService)
	})
	return router
}

func postJSON(t *testing.T, router http.Handler, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	payload, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return body
}

func adaRegisterRequest() RegisterRequest {
	return RegisterRequest{
		FirstName:   "Ada",
		LastName:    "Lovelace",
		Email:       "ada@x.com",
		Password:    "s3cret",
		AccountType: "customer",
	}
}

func TestHealthz(t *testing.T) {
	router := newTestRouter()

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := decodeBody(t, rec)
	if body["status"] != "ok" {
		t.Fatalf("unexpected body: %v", body)
	}
}

func TestRegisterAndLoginFlow(t *testing.T) {
	router := newTestRouter()

	rec := postJSON(t, router, "/api/auth/register", adaRegisterRequest())
	if rec.Code != http.StatusCreated {
		t.Fatalf("register: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	registerBody := decodeBody(t, rec)
	if registerBody["message"] != "registration successful" {
		t.Fatalf("unexpected register body: %v", registerBody)
	}
	for _, forbidden := range []string{"password", "password_hash"} {
		if _, present := registerBody[forbidden]; present {
			t.Fatalf("register response leaked %q", forbidden)
		}
	}

	rec = postJSON(t, router, "/api/auth/login", LoginRequest{
		Email:               "ada@x.com",
		Password:            "s3cret",
		ExpectedAccountType: "customer",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("login: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	loginBody := decodeBody(t, rec)
	if loginBody["email"] != "ada@x.com" {
		t.Fatalf("unexpected email: %v", loginBody["email"])
	}
	if loginBody["account_type"] != "customer" {
		t.Fatalf("unexpected account type: %v", loginBody["account_type"])
	}
	if loginBody["first_name"] != "Ada" || loginBody["last_name"] != "Lovelace" {
		t.Fatalf("unexpected name fields: %v", loginBody)
	}
	if _, present := loginBody["id"]; !present {
		t.Fatal("login response missing id")
	}
	for _, forbidden := range []string{"password", "password_hash"} {
		if _, present := loginBody[forbidden]; present {
			t.Fatalf("login response leaked %q", forbidden)
		}
	}
}

func TestRegisterValidationPayload(t *testing.T) {
	router := newTestRouter()

	req := adaRegisterRequest()
	req.FirstName = ""
	req.Password = ""

	rec := postJSON(t, router, "/api/auth/register", req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}

	var body ValidationErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(body.Fields) != 2 {
		t.Fatalf("expected 2 bad fields, got %v", body.Fields)
	}
}

func TestRegisterMalformedBody(t *testing.T) {
	router := newTestRouter()

	req := httptest.NewRequest(http.MethodPost, "/api/auth/register", bytes.NewReader([]byte("{not json")))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	router := newTestRouter()

	if rec := postJSON(t, router, "/api/auth/register", adaRegisterRequest()); rec.Code != http.StatusCreated {
		t.Fatalf("first register: expected 201, got %d", rec.Code)
	}

	second := adaRegisterRequest()
	second.Password = "another"
	rec := postJSON(t, router, "/api/auth/register", second)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
	body := decodeBody(t, rec)
	if body["error"] != "email already registered" {
		t.Fatalf("unexpected body: %v", body)
	}
}

func TestLoginInvalidCredentialsIndistinguishable(t *testing.T) {
	router := newTestRouter()

	if rec := postJSON(t, router, "/api/auth/register", adaRegisterRequest()); rec.Code != http.StatusCreated {
		t.Fatalf("register: expected 201, got %d", rec.Code)
	}

	wrongPassword := postJSON(t, router, "/api/auth/login", LoginRequest{
		Email:               "ada@x.com",
		Password:            "wrong",
		ExpectedAccountType: "customer",
	})
	unknownEmail := postJSON(t, router, "/api/auth/login", LoginRequest{
		Email:               "nobody@x.com",
		Password:            "s3cret",
		ExpectedAccountType: "customer",
	})

	if wrongPassword.Code != http.StatusUnauthorized || unknownEmail.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401/401, got %d/%d", wrongPassword.Code, unknownEmail.Code)
	}
	if wrongPassword.Body.String() != unknownEmail.Body.String() {
		t.Fatalf("payloads must be identical: %q vs %q",
			wrongPassword.Body.String(), unknownEmail.Body.String())
	}
}

func TestLoginAccountTypeMismatchMessages(t *testing.T) {
	router := newTestRouter()

	if rec := postJSON(t, router, "/api/auth/register", adaRegisterRequest()); rec.Code != http.StatusCreated {
		t.Fatalf("register customer: expected 201, got %d", rec.Code)
	}
	company := RegisterRequest{
		FirstName:   "Grace",
		LastName:    "Hopper",
		Email:       "grace@x.com",
		Password:    "s3cret",
		AccountType: "company",
		CompanyName: "Eckert-Mauchly",
	}
	if rec := postJSON(t, router, "/api/auth/register", company); rec.Code != http.StatusCreated {
		t.Fatalf("register company: expected 201, got %d", rec.Code)
	}

	rec := postJSON(t, router, "/api/auth/login", LoginRequest{
		Email:               "ada@x.com",
		Password:            "s3cret",
		ExpectedAccountType: "company",
	})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if body := decodeBody(t, rec); body["error"] != "this account is not a company account" {
		t.Fatalf("unexpected body: %v", body)
	}

	rec = postJSON(t, router, "/api/auth/login", LoginRequest{
		Email:               "grace@x.com",
		Password:            "s3cret",
		ExpectedAccountType: "customer",
	})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if body := decodeBody(t, rec); body["error"] != "this account is not a customer account" {
		t.Fatalf("unexpected body: %v", body)
	}
}

func TestLoginMissingCredentials(t *testing.T) {
	router := newTestRouter()

	tests := []struct {
		name string
		req  LoginRequest
	}{
		{"missing email", LoginRequest{Password: "s3cret", ExpectedAccountType: "customer"}},
		{"missing password", LoginRequest{Email: "ada@x.com", ExpectedAccountType: "customer"}},
		{"bad account type", LoginRequest{Email: "ada@x.com", Password: "s3cret", ExpectedAccountType: "partner"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := postJSON(t, router, "/api/auth/login", tt.req)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", rec.Code)
			}
		})
	}
}
