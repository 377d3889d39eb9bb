// Package model defines domain entities for the application.
package model

import "time"

// User is a registered account. PasswordHash holds an argon2id PHC string.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email,omitempty"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// Principal is the identity attached to an authenticated request.
// Handlers scope every store operation to Principal.UserID.
type Principal struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
}

// Principal returns the request identity for the user.
func (u *User) Principal() *Principal {
	return &Principal{UserID: u.ID, Username: u.Username}
}
