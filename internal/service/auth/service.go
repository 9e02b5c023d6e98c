package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"colognehub/internal/apiclient"
	"colognehub/internal/domain"
	"colognehub/internal/logging"
	"colognehub/internal/session"
	"colognehub/internal/validation"
)

var (
	// ErrInvalidCredentials is returned when the backend rejects a login.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrPasswordMismatch is returned when a confirmation does not match.
	ErrPasswordMismatch = fmt.Errorf("%w: passwords do not match", domain.ErrValidation)
)

type authAPI interface {
	Login(ctx context.Context, email, password string) (domain.AuthResult, error)
	Register(ctx context.Context, in apiclient.RegisterRequest) (string, error)
	ForgotPassword(ctx context.Context, email string) (string, error)
	ResetPassword(ctx context.Context, token, password string) (string, error)
	VerifyEmail(ctx context.Context, token string) (string, error)
}

type sessionStore interface {
	SaveAuth(ctx context.Context, res domain.AuthResult) error
	Snapshot(ctx context.Context) (session.Snapshot, error)
	Authenticated(ctx context.Context) (bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, keys ...string) error
}

type resumer interface {
	Resume(ctx context.Context) (bool, error)
}

// Service runs the account flows and keeps the session store in sync.
type Service struct {
	api         authAPI
	store       sessionStore
	pending     resumer
	logger      *zap.Logger
	passwordMin int
}

// New creates a Service. pending may be nil when no actions are deferred.
func New(api authAPI, store sessionStore, pending resumer, logger *zap.Logger) *Service {
	return &Service{
		api:         api,
		store:       store,
		pending:     pending,
		logger:      logging.OrNop(logger),
		passwordMin: 8,
	}
}

// LoginInput is the login form.
type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResult reports the new session and whether a deferred action ran.
type LoginResult struct {
	Session session.Snapshot `json:"session"`
	Resumed bool             `json:"resumedPendingAction"`
}

// Login authenticates, persists the session and replays any pending action.
func (s *Service) Login(ctx context.Context, in LoginInput) (LoginResult, error) {
	in.Email = strings.TrimSpace(strings.ToLower(in.Email))
	if err := validation.Struct(in); err != nil {
		return LoginResult{}, err
	}
	res, err := s.api.Login(ctx, in.Email, in.Password)
	if err != nil {
		switch apiclient.StatusOf(err) {
		case http.StatusBadRequest, http.StatusUnauthorized, http.StatusNotFound:
			return LoginResult{}, fmt.Errorf("%w: %s", ErrInvalidCredentials, apiclient.Message(err))
		}
		return LoginResult{}, err
	}
	if res.Token == "" {
		return LoginResult{}, errors.New("login response carried no token")
	}
	if res.Email == "" {
		res.Email = in.Email
	}
	if err := s.store.SaveAuth(ctx, res); err != nil {
		return LoginResult{}, fmt.Errorf("save session: %w", err)
	}
	s.logger.Info("logged in", zap.String("username", res.Username), zap.String("role", res.Role))

	out := LoginResult{}
	if s.pending != nil {
		resumed, err := s.pending.Resume(ctx)
		if err != nil {
			s.logger.Warn("pending action not resumed", zap.Error(err))
		}
		out.Resumed = resumed
	}
	snap, err := s.store.Snapshot(ctx)
	if err != nil {
		return LoginResult{}, err
	}
	out.Session = snap
	return out, nil
}

// RegisterInput is the signup form.
type RegisterInput struct {
	Username        string `json:"username" validate:"required,min=3,max=30"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required"`
	ConfirmPassword string `json:"confirmPassword"`
}

// Register creates an account. The backend emails a verification link; the
// shopper is not logged in.
func (s *Service) Register(ctx context.Context, in RegisterInput) (string, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(strings.ToLower(in.Email))
	if err := validation.Struct(in); err != nil {
		return "", err
	}
	if err := validatePassword(in.Password, s.passwordMin); err != nil {
		return "", err
	}
	if in.ConfirmPassword != "" && in.ConfirmPassword != in.Password {
		return "", ErrPasswordMismatch
	}
	msg, err := s.api.Register(ctx, apiclient.RegisterRequest{Username: in.Username, Email: in.Email, Password: in.Password})
	if err != nil {
		return "", err
	}
	if msg == "" {
		msg = "Registration successful. Please check your email to verify your account."
	}
	return msg, nil
}

// Logout clears every persisted session field, including a pending action.
func (s *Service) Logout(ctx context.Context) error {
	return s.store.Delete(ctx,
		session.KeyToken, session.KeyRole, session.KeyUsername,
		session.KeyEmail, session.KeyIsEmailVerified, session.KeyPendingAction,
	)
}

// Session returns the current session fields.
func (s *Service) Session(ctx context.Context) (session.Snapshot, error) {
	return s.store.Snapshot(ctx)
}

// ForgotPassword requests a reset email.
func (s *Service) ForgotPassword(ctx context.Context, email string) (string, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if err := validation.Var("email", email, "required,email"); err != nil {
		return "", err
	}
	return s.api.ForgotPassword(ctx, email)
}

// ResetPasswordInput is the reset form.
type ResetPasswordInput struct {
	Token           string `json:"token" validate:"required"`
	Password        string `json:"password" validate:"required"`
	ConfirmPassword string `json:"confirmPassword" validate:"required"`
}

// ResetPassword sets a new password with an emailed token.
func (s *Service) ResetPassword(ctx context.Context, in ResetPasswordInput) (string, error) {
	if err := validation.Struct(in); err != nil {
		return "", err
	}
	if in.Password != in.ConfirmPassword {
		return "", ErrPasswordMismatch
	}
	if err := validatePassword(in.Password, s.passwordMin); err != nil {
		return "", err
	}
	return s.api.ResetPassword(ctx, in.Token, in.Password)
}

// VerifyEmail confirms the address behind token. A logged-in session is
// marked verified.
func (s *Service) VerifyEmail(ctx context.Context, token string) (string, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return "", fmt.Errorf("%w: verification token required", domain.ErrValidation)
	}
	msg, err := s.api.VerifyEmail(ctx, token)
	if err != nil {
		return "", err
	}
	authed, err := s.store.Authenticated(ctx)
	if err != nil {
		return msg, err
	}
	if authed {
		if err := s.store.Set(ctx, session.KeyIsEmailVerified, "true"); err != nil {
			return msg, err
		}
	}
	return msg, nil
}

func validatePassword(p string, min int) error {
	trimmed := strings.TrimSpace(p)
	if len(trimmed) < min {
		return fmt.Errorf("%w: password must be at least %d characters", domain.ErrValidation, min)
	}
	hasUpper := false
	hasLower := false
	hasDigit := false
	for _, r := range trimmed {
		switch {
		case r >= 'A' && r <= 'Z':
			hasUpper = true
		case r >= 'a' && r <= 'z':
			hasLower = true
		case r >= '0' && r <= '9':
			hasDigit = true
		}
	}
	if !hasUpper || !hasLower || !hasDigit {
		return fmt.Errorf("%w: password must contain at least 1 uppercase letter, 1 lowercase letter, and 1 number", domain.ErrValidation)
	}
	return nil
}
