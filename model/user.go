package model

import (
	"time"

	"github.com/google/uuid"
)

// User is the credential record shared by login, registration and password reset.
type User struct {
	ID             uuid.UUID `json:"id"`
	Email          string    `json:"email"`
	HashedPassword string    `json:"-"`
	CreatedAt      time.Time `json:"created_at"`
}
