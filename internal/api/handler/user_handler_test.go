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

	"github.com/accountd/auth-api/internal/core/domain"
	"github.com/accountd/auth-api/internal/core/ports"
)

type stubAuthService struct {
	registerFn       func(ctx context.Context, input ports.RegisterInput) (string, *domain.User, error)
	loginFn          func(ctx context.Context, input ports.LoginInput) (string, *domain.User, error)
	updateProfileFn  func(ctx context.Context, caller ports.Caller, input ports.UpdateProfileInput) (*domain.User, error)
	changePasswordFn func(ctx context.Context, caller ports.Caller, input ports.ChangePasswordInput) (string, error)
	deleteUserFn     func(ctx context.Context, caller ports.Caller, targetID string) error
	getUserByIDFn    func(ctx context.Context, caller ports.Caller, targetID string) (*domain.User, error)
	unlockUserFn     func(ctx context.Context, targetID string) error
}

func (s *stubAuthService) Register(ctx context.Context, input ports.RegisterInput) (string, *domain.User, error) {
	return s.registerFn(ctx, input)
}

func (s *stubAuthService) Login(ctx context.Context, input ports.LoginInput) (string, *domain.User, error) {
	return s.loginFn(ctx, input)
}

func (s *stubAuthService) UpdateProfile(ctx context.Context, caller ports.Caller, input ports.UpdateProfileInput) (*domain.User, error) {
	return s.updateProfileFn(ctx, caller, input)
}

func (s *stubAuthService) ChangePassword(ctx context.Context, caller ports.Caller, input ports.ChangePasswordInput) (string, error) {
	return s.changePasswordFn(ctx, caller, input)
}

func (s *stubAuthService) DeleteUser(ctx context.Context, caller ports.Caller, targetID string) error {
	return s.deleteUserFn(ctx, caller, targetID)
}

func (s *stubAuthService) GetUserByID(ctx context.Context, caller ports.Caller, targetID string) (*domain.User, error) {
	return s.getUserByIDFn(ctx, caller, targetID)
}

func (s *stubAuthService) UnlockUser(ctx context.Context, targetID string) error {
	return s.unlockUserFn(ctx, targetID)
}

func newTestContext(t *testing.T, method, path, body string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	e.Validator = NewValidator()

	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func tokenCookieFrom(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	res := rec.Result()
	for _, cookie := range res.Cookies() {
		if cookie.Name == tokenCookie {
			return cookie
		}
	}
	return nil
}

func TestAuthHandler_Register_Success(t *testing.T) {
	stub := &stubAuthService{
		registerFn: func(_ context.Context, input ports.RegisterInput) (string, *domain.User, error) {
			if input.Name != "Ann" || input.Email != "ann@x.com" {
				t.Fatalf("unexpected input: %+v", input)
			}
			return "token123", &domain.User{ID: "user_1", Name: "Ann", Email: "ann@x.com", Role: domain.RoleUser, PasswordHash: "$2a$hash"}, nil
		},
	}
	h := NewAuthHandler(stub, false, time.Hour)

	c, rec := newTestContext(t, http.MethodPost, "/api/auth/register",
		`{"name":"Ann","email":"ann@x.com","password":"password1","confirm_password":"password1"}`)

	if err := h.Register(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	if strings.Contains(strings.ToLower(rec.Body.String()), "password") {
		t.Fatalf("response leaks password material: %s", rec.Body.String())
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["token"] != "token123" {
		t.Fatalf("expected token, got %v", resp["token"])
	}
	user, ok := resp["user"].(map[string]any)
	if !ok || user["email"] != "ann@x.com" {
		t.Fatalf("unexpected user payload: %+v", resp["user"])
	}

	cookie := tokenCookieFrom(t, rec)
	if cookie == nil || cookie.Value != "token123" || !cookie.HttpOnly {
		t.Fatalf("expected httpOnly token cookie, got %+v", cookie)
	}
}

func TestAuthHandler_Register_MissingField(t *testing.T) {
	stub := &stubAuthService{
		registerFn: func(context.Context, ports.RegisterInput) (string, *domain.User, error) {
			t.Fatalf("should not be called")
			return "", nil, nil
		},
	}
	h := NewAuthHandler(stub, false, time.Hour)

	c, _ := newTestContext(t, http.MethodPost, "/api/auth/register",
		`{"name":"Ann","email":"ann@x.com","password":"password1"}`)

	err := h.Register(c)
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 HTTPError, got %v", err)
	}
}

func TestAuthHandler_Register_InvalidPayload(t *testing.T) {
	stub := &stubAuthService{
		registerFn: func(context.Context, ports.RegisterInput) (string, *domain.User, error) {
			t.Fatalf("should not be called")
			return "", nil, nil
		},
	}
	h := NewAuthHandler(stub, false, time.Hour)

	c, _ := newTestContext(t, http.MethodPost, "/api/auth/register", "not-json")

	err := h.Register(c)
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 HTTPError, got %v", err)
	}
}

func TestAuthHandler_Register_ServiceError(t *testing.T) {
	stub := &stubAuthService{
		registerFn: func(context.Context, ports.RegisterInput) (string, *domain.User, error) {
			return "", nil, domain.ErrEmailTaken
		},
	}
	h := NewAuthHandler(stub, false, time.Hour)

	c, _ := newTestContext(t, http.MethodPost, "/api/auth/register",
		`{"name":"Ann","email":"ann@x.com","password":"password1","confirm_password":"password1"}`)

	if err := h.Register(c); !errors.Is(err, domain.ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken passthrough, got %v", err)
	}
}

func TestAuthHandler_Login_Success(t *testing.T) {
	stub := &stubAuthService{
		loginFn: func(_ context.Context, input ports.LoginInput) (string, *domain.User, error) {
			if input.Email != "ann@x.com" || input.Password != "password1" {
				t.Fatalf("unexpected input: %+v", input)
			}
			return "token123", &domain.User{ID: "user_1", Name: "Ann", Email: "ann@x.com", Role: domain.RoleUser}, nil
		},
	}
	h := NewAuthHandler(stub, false, time.Hour)

	c, rec := newTestContext(t, http.MethodPost, "/api/auth/login",
		`{"email":"ann@x.com","password":"password1"}`)

	if err := h.Login(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	user, ok := resp["user"].(map[string]any)
	if !ok || user["role"] != domain.RoleUser {
		t.Fatalf("expected role in login payload: %+v", resp["user"])
	}

	if cookie := tokenCookieFrom(t, rec); cookie == nil || cookie.Value != "token123" {
		t.Fatalf("expected token cookie, got %+v", cookie)
	}
}

func TestAuthHandler_Login_InvalidCredentials(t *testing.T) {
	stub := &stubAuthService{
		loginFn: func(context.Context, ports.LoginInput) (string, *domain.User, error) {
			return "", nil, domain.ErrInvalidCredentials
		},
	}
	h := NewAuthHandler(stub, false, time.Hour)

	c, _ := newTestContext(t, http.MethodPost, "/api/auth/login",
		`{"email":"ann@x.com","password":"wrong"}`)

	if err := h.Login(c); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials passthrough, got %v", err)
	}
}

func TestAuthHandler_Logout_ClearsCookie(t *testing.T) {
	h := NewAuthHandler(&stubAuthService{}, false, time.Hour)

	c, rec := newTestContext(t, http.MethodPost, "/api/auth/logout", "")
	if err := h.Logout(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	cookie := tokenCookieFrom(t, rec)
	if cookie == nil || cookie.Value != "" || cookie.MaxAge >= 0 {
		t.Fatalf("expected expired empty cookie, got %+v", cookie)
	}
}

func TestAuthHandler_UpdateProfile_Success(t *testing.T) {
	stub := &stubAuthService{
		updateProfileFn: func(_ context.Context, caller ports.Caller, input ports.UpdateProfileInput) (*domain.User, error) {
			if caller.UserID != "user_1" || input.Name != "Annette" {
				t.Fatalf("unexpected args: %+v %+v", caller, input)
			}
			return &domain.User{ID: "user_1", Name: "Annette", Email: "ann@x.com", Role: domain.RoleUser}, nil
		},
	}
	h := NewAuthHandler(stub, false, time.Hour)

	c, rec := newTestContext(t, http.MethodPut, "/api/auth/profile", `{"name":"Annette"}`)
	c.Set("user_id", "user_1")
	c.Set("role", domain.RoleUser)

	if err := h.UpdateProfile(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestAuthHandler_UpdateProfile_Unauthenticated(t *testing.T) {
	h := NewAuthHandler(&stubAuthService{}, false, time.Hour)

	c, _ := newTestContext(t, http.MethodPut, "/api/auth/profile", `{"name":"Annette"}`)

	err := h.UpdateProfile(c)
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 HTTPError, got %v", err)
	}
}

func TestAuthHandler_ChangePassword_Success(t *testing.T) {
	stub := &stubAuthService{
		changePasswordFn: func(_ context.Context, caller ports.Caller, input ports.ChangePasswordInput) (string, error) {
			if caller.UserID != "user_1" || input.NewPassword != "password2" {
				t.Fatalf("unexpected args: %+v %+v", caller, input)
			}
			return "fresh-token", nil
		},
	}
	h := NewAuthHandler(stub, false, time.Hour)

	c, rec := newTestContext(t, http.MethodPut, "/api/auth/change-password",
		`{"current_password":"password1","new_password":"password2","confirm_password":"password2"}`)
	c.Set("user_id", "user_1")
	c.Set("role", domain.RoleUser)

	if err := h.ChangePassword(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["token"] != "fresh-token" {
		t.Fatalf("expected fresh token, got %v", resp["token"])
	}
	if cookie := tokenCookieFrom(t, rec); cookie == nil || cookie.Value != "fresh-token" {
		t.Fatalf("expected rotated cookie, got %+v", cookie)
	}
}

func TestAuthHandler_DeleteUser(t *testing.T) {
	stub := &stubAuthService{
		deleteUserFn: func(_ context.Context, caller ports.Caller, targetID string) error {
			if caller.UserID != "user_1" || targetID != "user_2" {
				t.Fatalf("unexpected args: %+v %s", caller, targetID)
			}
			return nil
		},
	}
	h := NewAuthHandler(stub, false, time.Hour)

	c, rec := newTestContext(t, http.MethodDelete, "/api/auth/user/user_2", "")
	c.SetParamNames("id")
	c.SetParamValues("user_2")
	c.Set("user_id", "user_1")
	c.Set("role", domain.RoleAdmin)

	if err := h.DeleteUser(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestAuthHandler_GetUserByID_HidesPasswordHash(t *testing.T) {
	stub := &stubAuthService{
		getUserByIDFn: func(_ context.Context, _ ports.Caller, targetID string) (*domain.User, error) {
			return &domain.User{ID: targetID, Name: "Ann", Email: "ann@x.com", Role: domain.RoleUser, PasswordHash: "$2a$secret"}, nil
		},
	}
	h := NewAuthHandler(stub, false, time.Hour)

	c, rec := newTestContext(t, http.MethodGet, "/api/auth/users/user_1", "")
	c.SetParamNames("id")
	c.SetParamValues("user_1")
	c.Set("user_id", "user_1")
	c.Set("role", domain.RoleUser)

	if err := h.GetUserByID(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "secret") || strings.Contains(rec.Body.String(), "password") {
		t.Fatalf("response leaks password hash: %s", rec.Body.String())
	}
}

func TestAuthHandler_GetUserByID_NotFound(t *testing.T) {
	stub := &stubAuthService{
		getUserByIDFn: func(context.Context, ports.Caller, string) (*domain.User, error) {
			return nil, domain.ErrUserNotFound
		},
	}
	h := NewAuthHandler(stub, false, time.Hour)

	c, _ := newTestContext(t, http.MethodGet, "/api/auth/users/missing", "")
	c.SetParamNames("id")
	c.SetParamValues("missing")
	c.Set("user_id", "user_1")
	c.Set("role", domain.RoleAdmin)

	if err := h.GetUserByID(c); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound passthrough, got %v", err)
	}
}

func TestAuthHandler_UnlockUser(t *testing.T) {
	stub := &stubAuthService{
		unlockUserFn: func(_ context.Context, targetID string) error {
			if targetID != "user_2" {
				t.Fatalf("unexpected target: %s", targetID)
			}
			return nil
		},
	}
	h := NewAuthHandler(stub, false, time.Hour)

	c, rec := newTestContext(t, http.MethodPost, "/api/auth/users/user_2/unlock", "")
	c.SetParamNames("id")
	c.SetParamValues("user_2")

	if err := h.UnlockUser(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}
