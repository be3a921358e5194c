package domain

import "github.com/google/uuid"

// User is the authenticated identity as known to the client.
// Field names follow the IdentityX wire contract.
type User struct {
	ID         uuid.UUID `json:"userId"`
	Username   string    `json:"username"`
	Email      string    `json:"email"`
	FirstName  string    `json:"firstName"`
	LastName   string    `json:"lastName"`
	MiddleName string    `json:"middleName,omitempty"`
}

// Credentials is the login request payload.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Registration is the register request payload. ConfirmPassword is a
// client-side check only and is stripped before transmission.
type Registration struct {
	FirstName       string `json:"firstName"`
	LastName        string `json:"lastName,omitempty"`
	Username        string `json:"username"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"-"`
}
