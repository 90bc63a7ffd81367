package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/taskify/taskify-api/internal/core/domain"
	"github.com/taskify/taskify-api/internal/core/ports"
)

type stubAuthService struct {
	registerFn       func(ctx context.Context, in ports.RegisterInput) (*domain.User, error)
	loginFn          func(ctx context.Context, username, password string) (*ports.LoginResult, error)
	changePasswordFn func(ctx context.Context, id *domain.ResolvedIdentity, current, next string) error
}

func (s *stubAuthService) Register(ctx context.Context, in ports.RegisterInput) (*domain.User, error) {
	return s.registerFn(ctx, in)
}

func (s *stubAuthService) Authenticate(context.Context, string, string) (*domain.User, error) {
	return nil, errors.New("not used")
}

func (s *stubAuthService) Login(ctx context.Context, username, password string) (*ports.LoginResult, error) {
	return s.loginFn(ctx, username, password)
}

func (s *stubAuthService) Resolve(context.Context, string) (*domain.ResolvedIdentity, error) {
	return nil, errors.New("not used")
}

func (s *stubAuthService) ChangePassword(ctx context.Context, id *domain.ResolvedIdentity, current, next string) error {
	return s.changePasswordFn(ctx, id, current, next)
}

type stubThrottle struct {
	blocked  bool
	err      error
	failures []string
	resets   []string
}

func (s *stubThrottle) Allow(context.Context, string) (bool, error) {
	return !s.blocked, s.err
}

func (s *stubThrottle) Fail(_ context.Context, key string) error {
	s.failures = append(s.failures, key)
	return nil
}

func (s *stubThrottle) Reset(_ context.Context, key string) error {
	s.resets = append(s.resets, key)
	return nil
}

func newTestEcho() *echo.Echo {
	e := echo.New()
	e.Validator = NewValidator()
	return e
}

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return req
}

func statusOf(t *testing.T, err error) int {
	t.Helper()
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code
	}
	t.Fatalf("expected *echo.HTTPError, got %v", err)
	return 0
}

func TestAuthHandler_Register_Success(t *testing.T) {
	e := newTestEcho()
	stub := &stubAuthService{
		registerFn: func(_ context.Context, in ports.RegisterInput) (*domain.User, error) {
			if in.Username != "alice" || in.Role != "manager" || in.Password != "secret1" {
				t.Fatalf("unexpected input: %+v", in)
			}
			return &domain.User{ID: 1, Username: in.Username, Email: in.Email, Role: domain.RoleManager, PasswordHash: "$2a$hash", IsActive: true}, nil
		},
	}
	h := NewAuthHandler(stub, nil, zerolog.Nop())

	rec := httptest.NewRecorder()
	c := e.NewContext(jsonRequest(http.MethodPost, "/auth",
		`{"username":"alice","email":"a@example.com","password":"secret1","role":"manager"}`), rec)

	if err := h.Register(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["username"] != "alice" || resp["role"] != "manager" {
		t.Fatalf("unexpected payload: %+v", resp)
	}
	if strings.Contains(rec.Body.String(), "$2a$") {
		t.Fatalf("password hash leaked: %s", rec.Body.String())
	}
}

func TestAuthHandler_Register_PassesServiceErrors(t *testing.T) {
	e := newTestEcho()
	stub := &stubAuthService{
		registerFn: func(context.Context, ports.RegisterInput) (*domain.User, error) {
			return nil, domain.ErrUserExists
		},
	}
	h := NewAuthHandler(stub, nil, zerolog.Nop())

	c := e.NewContext(jsonRequest(http.MethodPost, "/auth",
		`{"username":"bob","email":"b@example.com","password":"secret1","role":"user"}`), httptest.NewRecorder())

	if err := h.Register(c); !errors.Is(err, domain.ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
}

func TestAuthHandler_Register_InvalidPayload(t *testing.T) {
	e := newTestEcho()
	stub := &stubAuthService{
		registerFn: func(context.Context, ports.RegisterInput) (*domain.User, error) {
			t.Fatalf("should not be called")
			return nil, nil
		},
	}
	h := NewAuthHandler(stub, nil, zerolog.Nop())

	for _, body := range []string{
		"not-json",
		`{"username":"bob"}`,
		`{"username":"bob","email":"nope","password":"secret1","role":"user"}`,
	} {
		c := e.NewContext(jsonRequest(http.MethodPost, "/auth", body), httptest.NewRecorder())
		if code := statusOf(t, h.Register(c)); code != http.StatusBadRequest {
			t.Fatalf("body %q: expected 400, got %d", body, code)
		}
	}
}

func TestAuthHandler_Login_JSON(t *testing.T) {
	e := newTestEcho()
	exp := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	stub := &stubAuthService{
		loginFn: func(_ context.Context, username, password string) (*ports.LoginResult, error) {
			if username != "alice" || password != "secret" {
				t.Fatalf("unexpected args: %s %s", username, password)
			}
			return &ports.LoginResult{AccessToken: "token123", TokenType: "bearer", ExpiresAt: exp}, nil
		},
	}
	throttle := &stubThrottle{}
	h := NewAuthHandler(stub, throttle, zerolog.Nop())

	rec := httptest.NewRecorder()
	c := e.NewContext(jsonRequest(http.MethodPost, "/auth/token", `{"username":"alice","password":"secret"}`), rec)

	if err := h.Login(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp tokenResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.AccessToken != "token123" || resp.TokenType != "bearer" || !resp.ExpiresAt.Equal(exp) {
		t.Fatalf("unexpected token response: %+v", resp)
	}
	if len(throttle.resets) != 1 {
		t.Fatalf("successful login should reset the throttle")
	}
}

func TestAuthHandler_Login_Form(t *testing.T) {
	e := newTestEcho()
	stub := &stubAuthService{
		loginFn: func(_ context.Context, username, password string) (*ports.LoginResult, error) {
			if username != "alice" || password != "secret" {
				t.Fatalf("unexpected args: %s %s", username, password)
			}
			return &ports.LoginResult{AccessToken: "tok", TokenType: "bearer"}, nil
		},
	}
	h := NewAuthHandler(stub, nil, zerolog.Nop())

	form := url.Values{"username": {"alice"}, "password": {"secret"}}
	req := httptest.NewRequest(http.MethodPost, "/auth/token", strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	rec := httptest.NewRecorder()

	if err := h.Login(e.NewContext(req, rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestAuthHandler_Login_InvalidCredentialCountsFailure(t *testing.T) {
	e := newTestEcho()
	stub := &stubAuthService{
		loginFn: func(context.Context, string, string) (*ports.LoginResult, error) {
			return nil, domain.ErrInvalidCredential
		},
	}
	throttle := &stubThrottle{}
	h := NewAuthHandler(stub, throttle, zerolog.Nop())

	req := jsonRequest(http.MethodPost, "/auth/token", `{"username":"Alice","password":"bad"}`)
	req.RemoteAddr = "203.0.113.9:5555"
	c := e.NewContext(req, httptest.NewRecorder())

	if err := h.Login(c); !errors.Is(err, domain.ErrInvalidCredential) {
		t.Fatalf("expected ErrInvalidCredential, got %v", err)
	}
	if len(throttle.failures) != 1 || throttle.failures[0] != "alice|203.0.113.9" {
		t.Fatalf("unexpected failures: %v", throttle.failures)
	}
}

func TestAuthHandler_Login_CancelledRequestIsNotCounted(t *testing.T) {
	e := newTestEcho()
	ctx, cancel := context.WithCancel(context.Background())
	stub := &stubAuthService{
		loginFn: func(context.Context, string, string) (*ports.LoginResult, error) {
			cancel()
			return nil, domain.ErrInvalidCredential
		},
	}
	throttle := &stubThrottle{}
	h := NewAuthHandler(stub, throttle, zerolog.Nop())

	req := jsonRequest(http.MethodPost, "/auth/token", `{"username":"alice","password":"right-one"}`).WithContext(ctx)
	c := e.NewContext(req, httptest.NewRecorder())
	if err := h.Login(c); !errors.Is(err, domain.ErrInvalidCredential) {
		t.Fatalf("expected ErrInvalidCredential, got %v", err)
	}
	if len(throttle.failures) != 0 {
		t.Fatalf("cancelled request should not count as a failure, got %v", throttle.failures)
	}
}

func TestAuthHandler_Login_Throttled(t *testing.T) {
	e := newTestEcho()
	stub := &stubAuthService{
		loginFn: func(context.Context, string, string) (*ports.LoginResult, error) {
			t.Fatalf("service should not be called when throttled")
			return nil, nil
		},
	}
	h := NewAuthHandler(stub, &stubThrottle{blocked: true}, zerolog.Nop())

	c := e.NewContext(jsonRequest(http.MethodPost, "/auth/token", `{"username":"alice","password":"x"}`), httptest.NewRecorder())
	if err := h.Login(c); !errors.Is(err, domain.ErrTooManyAttempts) {
		t.Fatalf("expected ErrTooManyAttempts, got %v", err)
	}
}

func TestAuthHandler_Login_ThrottleDownFailsOpen(t *testing.T) {
	e := newTestEcho()
	stub := &stubAuthService{
		loginFn: func(context.Context, string, string) (*ports.LoginResult, error) {
			return &ports.LoginResult{AccessToken: "tok", TokenType: "bearer"}, nil
		},
	}
	h := NewAuthHandler(stub, &stubThrottle{err: errors.New("redis down")}, zerolog.Nop())

	rec := httptest.NewRecorder()
	c := e.NewContext(jsonRequest(http.MethodPost, "/auth/token", `{"username":"alice","password":"x"}`), rec)
	if err := h.Login(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestAuthHandler_Login_InvalidPayload(t *testing.T) {
	e := newTestEcho()
	stub := &stubAuthService{
		loginFn: func(context.Context, string, string) (*ports.LoginResult, error) {
			t.Fatalf("should not be called")
			return nil, nil
		},
	}
	h := NewAuthHandler(stub, nil, zerolog.Nop())

	c := e.NewContext(jsonRequest(http.MethodPost, "/auth/token", "{"), httptest.NewRecorder())
	if code := statusOf(t, h.Login(c)); code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", code)
	}
}
