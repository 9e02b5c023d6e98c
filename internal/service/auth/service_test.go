package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"colognehub/internal/apiclient"
	"colognehub/internal/domain"
	"colognehub/internal/pending"
	"colognehub/internal/session"
)

type stubAPI struct {
	loginRes   domain.AuthResult
	loginErr   error
	registered []apiclient.RegisterRequest
	resets     []string
	verified   []string
}

func (s *stubAPI) Login(context.Context, string, string) (domain.AuthResult, error) {
	return s.loginRes, s.loginErr
}

func (s *stubAPI) Register(_ context.Context, in apiclient.RegisterRequest) (string, error) {
	s.registered = append(s.registered, in)
	return "", nil
}

func (s *stubAPI) ForgotPassword(context.Context, string) (string, error) {
	return "Reset link sent", nil
}

func (s *stubAPI) ResetPassword(_ context.Context, token, _ string) (string, error) {
	s.resets = append(s.resets, token)
	return "Password updated", nil
}

func (s *stubAPI) VerifyEmail(_ context.Context, token string) (string, error) {
	s.verified = append(s.verified, token)
	return "Email verified", nil
}

func TestLoginSavesSessionAndResumesPendingAction(t *testing.T) {
	ctx := context.Background()
	store := session.NewMemory()
	coord := pending.New(store, nil, nil, nil)
	var replayed []domain.AddToCartData
	if err := coord.RegisterAddToCart(func(_ context.Context, in domain.AddToCartData) error {
		replayed = append(replayed, in)
		return nil
	}); err != nil {
		t.Fatalf("register: %v", err)
	}
	_, _ = coord.RequireAuthWithAction(ctx, domain.PendingAction{
		Type: domain.ActionAddToCart,
		Data: map[string]interface{}{"productId": "p1", "quantity": 2},
	}, func() error { return nil })

	var changes []session.Change
	unsubscribe := store.Subscribe(func(c session.Change) { changes = append(changes, c) })
	defer unsubscribe()

	api := &stubAPI{loginRes: domain.AuthResult{Token: "tok", Role: domain.RoleAdmin, Username: "ada"}}
	svc := New(api, store, coord, nil)
	res, err := svc.Login(ctx, LoginInput{Email: " Ada@Example.com ", Password: "x"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if !res.Resumed || len(replayed) != 1 || replayed[0].Quantity != 2 {
		t.Fatalf("expected pending action replayed once, got %+v %v", replayed, res.Resumed)
	}
	if !res.Session.IsAdmin() || res.Session.Email != "ada@example.com" {
		t.Fatalf("unexpected session %+v", res.Session)
	}
	if len(changes) == 0 || !changes[0].Has(session.KeyToken) {
		t.Fatalf("expected a session broadcast, got %+v", changes)
	}
}

func TestLoginMapsRejectedCredentials(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/api/auth/login", func(c *gin.Context) {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid email or password"})
	})
	srv := httptest.NewServer(r)
	defer srv.Close()

	store := session.NewMemory()
	svc := New(apiclient.New(srv.URL, store), store, nil, nil)
	_, err := svc.Login(context.Background(), LoginInput{Email: "a@b.co", Password: "Wrong123"})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected invalid credentials, got %v", err)
	}
	if ok, _ := store.Authenticated(context.Background()); ok {
		t.Fatalf("session must stay anonymous")
	}
}

func TestLoginValidatesEmail(t *testing.T) {
	svc := New(&stubAPI{}, session.NewMemory(), nil, nil)
	if _, err := svc.Login(context.Background(), LoginInput{Email: "nope", Password: "x"}); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestRegisterValidation(t *testing.T) {
	api := &stubAPI{}
	svc := New(api, session.NewMemory(), nil, nil)
	ctx := context.Background()

	if _, err := svc.Register(ctx, RegisterInput{Username: "ada", Email: "ada@example.com", Password: "short"}); err == nil {
		t.Fatalf("expected password length error")
	}
	if _, err := svc.Register(ctx, RegisterInput{Username: "ada", Email: "ada@example.com", Password: "alllowercase1"}); err == nil {
		t.Fatalf("expected password complexity error")
	}
	if _, err := svc.Register(ctx, RegisterInput{Username: "ada", Email: "ada@example.com", Password: "Secret123", ConfirmPassword: "Secret124"}); !errors.Is(err, ErrPasswordMismatch) {
		t.Fatalf("expected mismatch, got %v", err)
	}
	if _, err := svc.Register(ctx, RegisterInput{Username: "a", Email: "ada@example.com", Password: "Secret123"}); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected username error, got %v", err)
	}
	if len(api.registered) != 0 {
		t.Fatalf("expected no network call for invalid forms")
	}

	msg, err := svc.Register(ctx, RegisterInput{Username: " ada ", Email: "ADA@example.com", Password: "Secret123", ConfirmPassword: "Secret123"})
	if err != nil || msg == "" {
		t.Fatalf("register: %v %q", err, msg)
	}
	if api.registered[0].Email != "ada@example.com" || api.registered[0].Username != "ada" {
		t.Fatalf("unexpected register payload %+v", api.registered[0])
	}
}

func TestLogoutClearsEverything(t *testing.T) {
	ctx := context.Background()
	store := session.NewMemory()
	_ = store.SaveAuth(ctx, domain.AuthResult{Token: "tok", Role: domain.RoleCustomer, Username: "ada"})
	_ = store.Set(ctx, session.KeyPendingAction, `{"type":"ADD_TO_CART"}`)

	svc := New(&stubAPI{}, store, nil, nil)
	if err := svc.Logout(ctx); err != nil {
		t.Fatalf("logout: %v", err)
	}
	snap, _ := svc.Session(ctx)
	if snap.Authenticated() || snap.Username != "" {
		t.Fatalf("expected empty session, got %+v", snap)
	}
	if _, ok, _ := store.Get(ctx, session.KeyPendingAction); ok {
		t.Fatalf("expected pending action cleared")
	}
}

func TestResetAndForgotPassword(t *testing.T) {
	api := &stubAPI{}
	svc := New(api, session.NewMemory(), nil, nil)
	ctx := context.Background()

	if _, err := svc.ForgotPassword(ctx, "not-an-email"); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if msg, err := svc.ForgotPassword(ctx, "ada@example.com"); err != nil || msg != "Reset link sent" {
		t.Fatalf("forgot: %v %q", err, msg)
	}
	if _, err := svc.ResetPassword(ctx, ResetPasswordInput{Token: "t", Password: "Secret123", ConfirmPassword: "Other123"}); !errors.Is(err, ErrPasswordMismatch) {
		t.Fatalf("expected mismatch, got %v", err)
	}
	if _, err := svc.ResetPassword(ctx, ResetPasswordInput{Token: "t", Password: "Secret123", ConfirmPassword: "Secret123"}); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if len(api.resets) != 1 || api.resets[0] != "t" {
		t.Fatalf("unexpected resets %v", api.resets)
	}
}

func TestVerifyEmailMarksSession(t *testing.T) {
	ctx := context.Background()
	store := session.NewMemory()
	_ = store.SaveAuth(ctx, domain.AuthResult{Token: "tok", Role: domain.RoleCustomer})
	svc := New(&stubAPI{}, store, nil, nil)

	if _, err := svc.VerifyEmail(ctx, "abc"); err != nil {
		t.Fatalf("verify: %v", err)
	}
	snap, _ := store.Snapshot(ctx)
	if !snap.IsEmailVerified {
		t.Fatalf("expected verified flag")
	}
	if _, err := svc.VerifyEmail(ctx, " "); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
