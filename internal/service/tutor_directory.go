package service

import (
	"cmp"
	"context"
	"slices"

	"go.uber.org/zap"

	"edunextgen-api/internal/domain"
	"edunextgen-api/internal/repository"
)

// TutorCache guarda el listado de tutores ya ordenado, versionado por
// generacion: Invalidate avanza la generacion y un Set con una generacion
// vieja nunca vuelve a ser leido.
type TutorCache interface {
	Generation(ctx context.Context) (int64, bool)
	Get(ctx context.Context, gen int64) ([]domain.TutorListing, bool)
	Set(ctx context.Context, gen int64, tutors []domain.TutorListing)
	Invalidate(ctx context.Context)
}

// TutorDirectory lista tutores ordenados por rating.
type TutorDirectory struct {
	logger *zap.Logger
	users  repository.UserRepository
	cache  TutorCache
}

func NewTutorDirectory(logger *zap.Logger, users repository.UserRepository, cache TutorCache) *TutorDirectory {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TutorDirectory{
		logger: logger,
		users:  users,
		cache:  cache,
	}
}

// ListTutors devuelve todos los tutores por profile.rating descendente;
// sin rating cuentan como 0.
func (d *TutorDirectory) ListTutors(ctx context.Context) ([]domain.TutorListing, error) {
	var (
		gen       int64
		cacheable bool
	)
	// la generacion se lee antes de consultar el store
	if d.cache != nil {
		gen, cacheable = d.cache.Generation(ctx)
		if cacheable {
			if cached, ok := d.cache.Get(ctx, gen); ok {
				return cached, nil
			}
		}
	}

	users, err := d.users.ListByRole(ctx, domain.RoleTutor)
	if err != nil {
		return nil, storageError("list tutors", err)
	}

	tutors := make([]domain.TutorListing, 0, len(users))
	for _, u := range users {
		tutors = append(tutors, domain.NewTutorListing(u))
	}
	// El orden del store no trata igual un rating ausente y un 0; se reordena aca.
	slices.SortStableFunc(tutors, func(a, b domain.TutorListing) int {
		return cmp.Compare(domain.RatingOf(b.Profile), domain.RatingOf(a.Profile))
	})

	if cacheable {
		d.cache.Set(ctx, gen, tutors)
	}
	return tutors, nil
}
