package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/rabucejojr/digial-logbook/internal/api/middleware"
	"github.com/rabucejojr/digial-logbook/internal/core/domain"
	"github.com/rabucejojr/digial-logbook/internal/core/ports"
)

type stubAuthService struct {
	registerFn       func(ctx context.Context, in ports.RegisterInput) (*ports.AuthResult, error)
	loginFn          func(ctx context.Context, identifier, password string) (*ports.AuthResult, error)
	updateProfileFn  func(ctx context.Context, userID string, u ports.ProfileUpdate) (*domain.User, error)
	changePasswordFn func(ctx context.Context, userID, current, next string) error
}

func (s *stubAuthService) Register(ctx context.Context, in ports.RegisterInput) (*ports.AuthResult, error) {
	return s.registerFn(ctx, in)
}

func (s *stubAuthService) Login(ctx context.Context, identifier, password string) (*ports.AuthResult, error) {
	return s.loginFn(ctx, identifier, password)
}

func (s *stubAuthService) Authenticate(context.Context, string) (*domain.User, error) {
	return nil, domain.ErrInvalidToken
}

func (s *stubAuthService) UpdateProfile(ctx context.Context, userID string, u ports.ProfileUpdate) (*domain.User, error) {
	return s.updateProfileFn(ctx, userID, u)
}

func (s *stubAuthService) ChangePassword(ctx context.Context, userID, current, next string) error {
	return s.changePasswordFn(ctx, userID, current, next)
}

// newContext builds an Echo context with the API validator registered.
func newContext(method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	e.Validator = NewValidator()

	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

// decodeData unmarshals the data member of a success envelope into out.
func decodeData(t *testing.T, rec *httptest.ResponseRecorder, out any) envelope {
	t.Helper()
	var raw struct {
		Success bool            `json:"success"`
		Message string          `json:"message"`
		Data    json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &raw); err != nil {
		t.Fatalf("invalid json %q: %v", rec.Body.String(), err)
	}
	if out != nil {
		if err := json.Unmarshal(raw.Data, out); err != nil {
			t.Fatalf("invalid data %s: %v", raw.Data, err)
		}
	}
	return envelope{Success: raw.Success, Message: raw.Message}
}

func requireKind(t *testing.T, err error, want domain.ErrorKind) *domain.Error {
	t.Helper()
	var de *domain.Error
	if !errors.As(err, &de) {
		t.Fatalf("expected *domain.Error, got %v", err)
	}
	if de.Kind != want {
		t.Fatalf("expected kind %v, got %v (%v)", want, de.Kind, err)
	}
	return de
}

func sampleUser() *domain.User {
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	return &domain.User{
		ID:           "665f1c2e9b1d4a0012345678",
		Username:     "alice",
		Email:        "alice@dost.gov.ph",
		PasswordHash: "$2a$12$secret",
		FirstName:    "Alice",
		LastName:     "Reyes",
		Role:         domain.RoleStaff,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func TestAuthHandler_Register_Success(t *testing.T) {
	stub := &stubAuthService{
		registerFn: func(_ context.Context, in ports.RegisterInput) (*ports.AuthResult, error) {
			if in.Username != "alice" || in.Role != domain.RoleStaff || in.Department != "ICT" {
				t.Fatalf("unexpected input: %+v", in)
			}
			return &ports.AuthResult{User: sampleUser(), Token: "token123"}, nil
		},
	}
	h := NewAuthHandler(stub)

	c, rec := newContext(http.MethodPost, "/api/auth/register",
		`{"username":"alice","email":"alice@dost.gov.ph","password":"secret1","firstName":"Alice","lastName":"Reyes","role":"staff","department":"ICT"}`)
	if err := h.Register(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	var data map[string]any
	env := decodeData(t, rec, &data)
	if !env.Success || env.Message != "User registered successfully" {
		t.Fatalf("unexpected envelope: %+v", env)
	}
	if data["token"] != "token123" {
		t.Fatalf("expected token, got %v", data["token"])
	}
	user := data["user"].(map[string]any)
	if user["username"] != "alice" || user["fullName"] != "Alice Reyes" {
		t.Fatalf("unexpected user payload: %+v", user)
	}
	if strings.Contains(rec.Body.String(), "secret") {
		t.Fatalf("password material leaked: %s", rec.Body.String())
	}
}

func TestAuthHandler_Register_ValidationErrors(t *testing.T) {
	stub := &stubAuthService{
		registerFn: func(context.Context, ports.RegisterInput) (*ports.AuthResult, error) {
			t.Fatalf("should not be called")
			return nil, nil
		},
	}
	h := NewAuthHandler(stub)

	c, _ := newContext(http.MethodPost, "/api/auth/register",
		`{"username":"a!","email":"nope","password":"123","firstName":"A","lastName":"B"}`)
	de := requireKind(t, h.Register(c), domain.KindValidation)

	fields := map[string]bool{}
	for _, d := range de.Details {
		fields[d.Field] = true
	}
	for _, f := range []string{"username", "email", "password"} {
		if !fields[f] {
			t.Errorf("expected detail for %s, got %+v", f, de.Details)
		}
	}
}

func TestAuthHandler_Register_InvalidPayload(t *testing.T) {
	h := NewAuthHandler(&stubAuthService{})

	c, _ := newContext(http.MethodPost, "/api/auth/register", "not-json")
	de := requireKind(t, h.Register(c), domain.KindValidation)
	if len(de.Details) != 1 || de.Details[0].Field != "body" {
		t.Fatalf("unexpected details: %+v", de.Details)
	}
}

func TestAuthHandler_Register_UserExists(t *testing.T) {
	stub := &stubAuthService{
		registerFn: func(context.Context, ports.RegisterInput) (*ports.AuthResult, error) {
			return nil, domain.ErrUserExists
		},
	}
	h := NewAuthHandler(stub)

	c, _ := newContext(http.MethodPost, "/api/auth/register",
		`{"username":"bob","email":"bob@dost.gov.ph","password":"secret1","firstName":"Bob","lastName":"Cruz"}`)
	if err := h.Register(c); !errors.Is(err, domain.ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
}

func TestAuthHandler_Login_Success(t *testing.T) {
	stub := &stubAuthService{
		loginFn: func(_ context.Context, identifier, password string) (*ports.AuthResult, error) {
			if identifier != "alice@dost.gov.ph" || password != "secret1" {
				t.Fatalf("unexpected args: %s %s", identifier, password)
			}
			return &ports.AuthResult{User: sampleUser(), Token: "token123"}, nil
		},
	}
	h := NewAuthHandler(stub)

	c, rec := newContext(http.MethodPost, "/api/auth/login", `{"username":"alice@dost.gov.ph","password":"secret1"}`)
	if err := h.Login(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var data authData
	env := decodeData(t, rec, &data)
	if env.Message != "Login successful" || data.Token != "token123" || data.User.Role != domain.RoleStaff {
		t.Fatalf("unexpected response: %+v %+v", env, data)
	}
}

func TestAuthHandler_Login_InvalidCredentials(t *testing.T) {
	stub := &stubAuthService{
		loginFn: func(context.Context, string, string) (*ports.AuthResult, error) {
			return nil, domain.ErrInvalidCredentials
		},
	}
	h := NewAuthHandler(stub)

	c, _ := newContext(http.MethodPost, "/api/auth/login", `{"username":"alice","password":"wrong"}`)
	if err := h.Login(c); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthHandler_Me(t *testing.T) {
	h := NewAuthHandler(&stubAuthService{})

	c, rec := newContext(http.MethodGet, "/api/auth/me", "")
	c.Set(middleware.UserKey, sampleUser())
	if err := h.Me(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	var data userData
	decodeData(t, rec, &data)
	if data.User.ID != "665f1c2e9b1d4a0012345678" {
		t.Fatalf("unexpected user: %+v", data.User)
	}
}

func TestAuthHandler_Me_WithoutUser(t *testing.T) {
	h := NewAuthHandler(&stubAuthService{})

	c, _ := newContext(http.MethodGet, "/api/auth/me", "")
	if err := h.Me(c); !errors.Is(err, domain.ErrMissingToken) {
		t.Fatalf("expected ErrMissingToken, got %v", err)
	}
}

func TestAuthHandler_UpdateMe(t *testing.T) {
	stub := &stubAuthService{
		updateProfileFn: func(_ context.Context, userID string, u ports.ProfileUpdate) (*domain.User, error) {
			if userID != "665f1c2e9b1d4a0012345678" {
				t.Fatalf("unexpected user id %s", userID)
			}
			if u.FirstName == nil || *u.FirstName != "Alicia" || u.LastName != nil {
				t.Fatalf("unexpected update: %+v", u)
			}
			out := sampleUser()
			out.FirstName = *u.FirstName
			return out, nil
		},
	}
	h := NewAuthHandler(stub)

	c, rec := newContext(http.MethodPut, "/api/auth/me", `{"firstName":"  Alicia "}`)
	c.Set(middleware.UserKey, sampleUser())
	if err := h.UpdateMe(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	var data userData
	env := decodeData(t, rec, &data)
	if env.Message != "Profile updated successfully" || data.User.FullName != "Alicia Reyes" {
		t.Fatalf("unexpected response: %+v %+v", env, data.User)
	}
}

func TestAuthHandler_ChangePassword(t *testing.T) {
	stub := &stubAuthService{
		changePasswordFn: func(_ context.Context, _, current, next string) error {
			if current != "old-pass" || next != "new-pass" {
				t.Fatalf("unexpected passwords %s %s", current, next)
			}
			return nil
		},
	}
	h := NewAuthHandler(stub)

	c, rec := newContext(http.MethodPost, "/api/auth/change-password", `{"currentPassword":"old-pass","newPassword":"new-pass"}`)
	c.Set(middleware.UserKey, sampleUser())
	if err := h.ChangePassword(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if env := decodeData(t, rec, nil); env.Message != "Password changed successfully" {
		t.Fatalf("unexpected message %q", env.Message)
	}
}

func TestAuthHandler_ChangePassword_ShortPassword(t *testing.T) {
	h := NewAuthHandler(&stubAuthService{})

	c, _ := newContext(http.MethodPost, "/api/auth/change-password", `{"currentPassword":"old-pass","newPassword":"123"}`)
	c.Set(middleware.UserKey, sampleUser())
	de := requireKind(t, h.ChangePassword(c), domain.KindValidation)
	if de.Details[0].Field != "newPassword" {
		t.Fatalf("unexpected details: %+v", de.Details)
	}
}

func TestAuthHandler_Logout(t *testing.T) {
	h := NewAuthHandler(&stubAuthService{})

	c, rec := newContext(http.MethodPost, "/api/auth/logout", "")
	c.Set(middleware.UserKey, sampleUser())
	if err := h.Logout(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if env := decodeData(t, rec, nil); !env.Success || env.Message != "Logged out successfully" {
		t.Fatalf("unexpected envelope: %+v", env)
	}
}
