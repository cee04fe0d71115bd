package domain

import "time"

type Role string

const (
	RoleStudent Role = "student"
	RoleTutor   Role = "tutor"
)

// Valid indica si el rol pertenece al conjunto soportado.
func (r Role) Valid() bool {
	return r == RoleStudent || r == RoleTutor
}

// TimestampLayout es el formato de las marcas de tiempo persistidas como texto.
const TimestampLayout = time.RFC3339Nano

// FormatTimestamp convierte un instante al formato persistido (UTC).
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// User es el unico documento persistido: uno por email.
type User struct {
	ID           string        `json:"_id,omitempty"`
	Email        string        `json:"email"`
	Name         string        `json:"name,omitempty"`
	Image        string        `json:"image,omitempty"`
	Role         Role          `json:"role"`
	CreatedAt    string        `json:"created_at"`
	LastLoggedIn string        `json:"last_loggedIn"`
	UpdatedAt    string        `json:"updated_at,omitempty"`
	Profile      *TutorProfile `json:"profile,omitempty"`
}
