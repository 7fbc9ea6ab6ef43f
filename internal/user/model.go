package user

import (
	"time"

	"github.com/gofrs/uuid"
)

type User struct {
	ID           uuid.UUID `json:"id" db:"id"`
	Name         string    `json:"name" db:"name"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	Phone        string    `json:"phone,omitempty" db:"phone"`
	IsAdmin      bool      `json:"is_admin" db:"is_admin"`
	Street       string    `json:"street,omitempty" db:"street"`
	Apartment    string    `json:"apartment,omitempty" db:"apartment"`
	Zip          string    `json:"zip,omitempty" db:"zip"`
	City         string    `json:"city,omitempty" db:"city"`
	Country      string    `json:"country,omitempty" db:"country"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}
