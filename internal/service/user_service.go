package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"edunextgen-api/internal/domain"
	"edunextgen-api/internal/repository"
)

// UserService coordina el alta y el login de usuarios.
type UserService struct {
	logger *zap.Logger
	users  repository.UserRepository
	tutors TutorCache
	now    func() time.Time
}

func NewUserService(logger *zap.Logger, users repository.UserRepository, tutors TutorCache) *UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserService{
		logger: logger,
		users:  users,
		tutors: tutors,
		now:    time.Now,
	}
}

// CandidateUser es lo que llega en un login: email obligatorio, el resto opcional.
type CandidateUser struct {
	Email   string
	Name    string
	Image   string
	Role    domain.Role
	Profile *domain.ProfileInput
}

// LoginOrCreate crea el usuario en su primer login o refresca last_loggedIn.
// name, image, role y profile solo se usan al crear.
func (s *UserService) LoginOrCreate(ctx context.Context, in CandidateUser) (repository.WriteResult, error) {
	email := normalizeEmail(in.Email)
	if email == "" {
		return repository.WriteResult{}, ErrEmailRequired
	}

	role := in.Role
	if role == "" {
		role = domain.RoleStudent
	}

	now := domain.FormatTimestamp(s.now())
	if !role.Valid() {
		// el rol solo importa al crear: un usuario existente igual inicia sesion
		return s.touchExisting(ctx, email, now)
	}
	user := domain.User{
		Email:        email,
		Name:         in.Name,
		Image:        in.Image,
		Role:         role,
		CreatedAt:    now,
		LastLoggedIn: now,
	}
	switch {
	case in.Profile != nil:
		p := in.Profile.Merge(domain.Moderation{})
		user.Profile = &p
	case role == domain.RoleTutor:
		p := domain.DefaultTutorProfile()
		user.Profile = &p
	}

	res, err := s.users.UpsertLogin(ctx, user)
	if err != nil {
		return repository.WriteResult{}, storageError("upsert login", err)
	}

	if res.Inserted {
		s.logger.Info("user created", zap.String("email", email), zap.String("role", string(role)))
		if role == domain.RoleTutor && s.tutors != nil {
			s.tutors.Invalidate(ctx)
		}
	}
	return res, nil
}

func (s *UserService) touchExisting(ctx context.Context, email, now string) (repository.WriteResult, error) {
	res, err := s.users.TouchLogin(ctx, email, now)
	if err != nil {
		return repository.WriteResult{}, storageError("touch login", err)
	}
	if res.MatchedCount == 0 {
		return repository.WriteResult{}, ErrInvalidRole
	}
	return res, nil
}

// GetByEmail devuelve el registro completo del usuario.
func (s *UserService) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	email = normalizeEmail(email)
	if email == "" {
		return domain.User{}, ErrEmailRequired
	}
	return findUser(ctx, s.users, email)
}

func findUser(ctx context.Context, users repository.UserRepository, email string) (domain.User, error) {
	user, err := users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.User{}, ErrUserNotFound
		}
		return domain.User{}, storageError("find user", err)
	}
	return user, nil
}
