package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"edunextgen-api/internal/domain"
	"edunextgen-api/internal/repository"
)

// ProfileService maneja lectura y edicion del perfil de tutor.
type ProfileService struct {
	logger *zap.Logger
	users  repository.UserRepository
	tutors TutorCache
	now    func() time.Time
}

func NewProfileService(logger *zap.Logger, users repository.UserRepository, tutors TutorCache) *ProfileService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProfileService{
		logger: logger,
		users:  users,
		tutors: tutors,
		now:    time.Now,
	}
}

// MergeProfile reemplaza los campos editables con los del input (los omitidos
// quedan vacios) y conserva verified, rating y totalReviews del registro.
func (s *ProfileService) MergeProfile(ctx context.Context, email string, in domain.ProfileInput) (repository.UpdateResult, error) {
	email = normalizeEmail(email)
	if email == "" {
		return repository.UpdateResult{}, ErrEmailRequired
	}

	user, err := findUser(ctx, s.users, email)
	if err != nil {
		return repository.UpdateResult{}, err
	}

	merged := in.Merge(domain.ModerationOf(user.Profile))
	res, err := s.users.UpdateProfile(ctx, email, merged, domain.FormatTimestamp(s.now()))
	if err != nil {
		return repository.UpdateResult{}, storageError("update profile", err)
	}
	if res.ModifiedCount == 0 {
		s.logger.Warn("profile update modified nothing", zap.String("email", email), zap.Int64("matched", res.MatchedCount))
		return res, ErrProfileNotUpdated
	}

	if s.tutors != nil {
		s.tutors.Invalidate(ctx)
	}
	return res, nil
}

// GetProfile devuelve la proyeccion publica; sin perfil se usa el perfil vacio.
func (s *ProfileService) GetProfile(ctx context.Context, email string) (domain.ProfileView, error) {
	email = normalizeEmail(email)
	if email == "" {
		return domain.ProfileView{}, ErrEmailRequired
	}

	user, err := findUser(ctx, s.users, email)
	if err != nil {
		return domain.ProfileView{}, err
	}
	return domain.NewProfileView(user), nil
}
