package apiclient

import (
	"context"
	"net/http"

	"colognehub/internal/domain"
)

type loginBody struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	domain.AuthResult
	User *domain.AuthResult `json:"user"`
}

// Login exchanges credentials for a session token.
func (c *Client) Login(ctx context.Context, email, password string) (domain.AuthResult, error) {
	var resp loginResponse
	if err := c.call(ctx, request{
		method: http.MethodPost,
		path:   "/api/auth/login",
		body:   loginBody{Email: email, Password: password},
	}, &resp); err != nil {
		return domain.AuthResult{}, err
	}
	res := resp.AuthResult
	if resp.User != nil {
		if res.Role == "" {
			res.Role = resp.User.Role
		}
		if res.Username == "" {
			res.Username = resp.User.Username
		}
		if res.Email == "" {
			res.Email = resp.User.Email
		}
		res.IsEmailVerified = res.IsEmailVerified || resp.User.IsEmailVerified
	}
	if res.Role == "" {
		res.Role = domain.RoleCustomer
	}
	return res, nil
}

// RegisterRequest is the payload of POST /api/auth/register.
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// Register creates an account and returns the server's confirmation message.
func (c *Client) Register(ctx context.Context, in RegisterRequest) (string, error) {
	var resp messageResponse
	err := c.call(ctx, request{method: http.MethodPost, path: "/api/auth/register", body: in}, &resp)
	return resp.Message, err
}

// ForgotPassword asks the server to email a reset link.
func (c *Client) ForgotPassword(ctx context.Context, email string) (string, error) {
	var resp messageResponse
	err := c.call(ctx, request{
		method: http.MethodPost,
		path:   "/api/auth/forgot-password",
		body:   map[string]string{"email": email},
	}, &resp)
	return resp.Message, err
}

// ResetPassword sets a new password using an emailed token.
func (c *Client) ResetPassword(ctx context.Context, token, password string) (string, error) {
	var resp messageResponse
	err := c.call(ctx, request{
		method: http.MethodPost,
		path:   pathID("/api/auth/reset-password", token),
		body:   map[string]string{"password": password},
	}, &resp)
	return resp.Message, err
}

// VerifyEmail confirms an account's email address.
func (c *Client) VerifyEmail(ctx context.Context, token string) (string, error) {
	var resp messageResponse
	err := c.call(ctx, request{method: http.MethodGet, path: pathID("/api/auth/verify-email", token)}, &resp)
	return resp.Message, err
}
