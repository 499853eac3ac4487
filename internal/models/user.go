package models

import (
	"strings"
	"time"
)

type User struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Password  string    `json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DisplayName returns "FirstName L." format (first name + last initial).
// Leaderboards show this instead of the full name.
func (u User) DisplayName() string {
	return FormatDisplayName(u.Name)
}

func FormatDisplayName(fullName string) string {
	parts := strings.Fields(fullName)
	if len(parts) <= 1 {
		return fullName
	}
	lastName := []rune(parts[len(parts)-1])
	if len(lastName) > 0 {
		return parts[0] + " " + string(lastName[0]) + "."
	}
	return parts[0]
}

type RegisterRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
