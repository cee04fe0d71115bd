package repository

import (
	"context"
	"errors"

	"edunextgen-api/internal/domain"
)

// ErrNotFound se devuelve cuando no existe un usuario con el email pedido.
var ErrNotFound = errors.New("user not found")

// WriteResult describe el resultado de un upsert de login.
type WriteResult struct {
	Acknowledged  bool   `json:"acknowledged"`
	Inserted      bool   `json:"inserted"`
	MatchedCount  int64  `json:"matchedCount"`
	ModifiedCount int64  `json:"modifiedCount"`
	UpsertedCount int64  `json:"upsertedCount"`
	UpsertedID    string `json:"upsertedId,omitempty"`
}

// UpdateResult describe el resultado de una escritura de perfil.
type UpdateResult struct {
	Acknowledged  bool  `json:"acknowledged"`
	MatchedCount  int64 `json:"matchedCount"`
	ModifiedCount int64 `json:"modifiedCount"`
}

// UserRepository define el contrato de persistencia para usuarios.
type UserRepository interface {
	// UpsertLogin inserta user si su email no existe; si existe solo refresca
	// last_loggedIn con user.LastLoggedIn. Debe ser atomico por email.
	UpsertLogin(ctx context.Context, user domain.User) (WriteResult, error)
	// TouchLogin refresca last_loggedIn de un usuario existente sin crear nada.
	TouchLogin(ctx context.Context, email, lastLoggedIn string) (WriteResult, error)
	GetByEmail(ctx context.Context, email string) (domain.User, error)
	UpdateProfile(ctx context.Context, email string, profile domain.TutorProfile, updatedAt string) (UpdateResult, error)
	// ListByRole devuelve los usuarios del rol ordenados por profile.rating descendente.
	ListByRole(ctx context.Context, role domain.Role) ([]domain.User, error)
	Ping(ctx context.Context) error
}
