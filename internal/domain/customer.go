package domain

import "time"

// Roles understood by the storefront.
const (
	RoleCustomer = "customer"
	RoleAdmin    = "admin"
)

// User is an account as listed by the admin console.
type User struct {
	ID              string    `json:"_id"`
	Username        string    `json:"username"`
	Email           string    `json:"email"`
	Role            string    `json:"role"`
	IsEmailVerified bool      `json:"isEmailVerified"`
	CreatedAt       time.Time `json:"createdAt"`
}

// AuthResult is the payload returned by a successful login.
type AuthResult struct {
	Token           string `json:"token"`
	Role            string `json:"role"`
	Username        string `json:"username"`
	Email           string `json:"email"`
	IsEmailVerified bool   `json:"isEmailVerified"`
}
