package models

import "github.com/google/uuid"

// User is an account row. Password holds the argon2id encoded hash, never
// plaintext, and is excluded from JSON.
type User struct {
	ID       uuid.UUID `json:"id"`
	Email    string    `json:"email"`
	Username string    `json:"username"`
	Password string    `json:"-"`
}
