package domain

import "time"

// Brand groups products in the admin console and the catalog filters.
type Brand struct {
	ID          string `json:"_id,omitempty"`
	Name        string `json:"name" validate:"required,max=120"`
	Description string `json:"description,omitempty" validate:"max=2000"`
	LogoURL     string `json:"logoUrl,omitempty" validate:"omitempty,url"`
}

// Subscriber is a newsletter sign-up.
type Subscriber struct {
	ID        string    `json:"_id" csv:"id"`
	Email     string    `json:"email" csv:"email"`
	CreatedAt time.Time `json:"createdAt" csv:"subscribed_at"`
}
