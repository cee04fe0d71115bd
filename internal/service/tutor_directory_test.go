package service

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"edunextgen-api/internal/domain"
	"edunextgen-api/internal/repository"
)

// staticUserRepo devuelve usuarios en un orden fijo, sin ordenar.
type staticUserRepo struct {
	failingUserRepo
	users []domain.User
	calls int
}

func (s *staticUserRepo) ListByRole(context.Context, domain.Role) ([]domain.User, error) {
	s.calls++
	return s.users, nil
}

func tutorWithRating(email string, rating float64) domain.User {
	p := domain.DefaultTutorProfile()
	p.Rating = rating
	return domain.User{Email: email, Role: domain.RoleTutor, Profile: &p}
}

func TestTutorDirectoryListTutors_OrdersByRating(t *testing.T) {
	repo := &staticUserRepo{users: []domain.User{
		tutorWithRating("a@x.com", 4.5),
		{Email: "none@x.com", Role: domain.RoleTutor},
		tutorWithRating("b@x.com", 2.0),
		tutorWithRating("c@x.com", 5.0),
		tutorWithRating("zero@x.com", 0),
	}}
	dir := NewTutorDirectory(zap.NewNop(), repo, nil)

	tutors, err := dir.ListTutors(context.Background())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	want := []string{"c@x.com", "a@x.com", "b@x.com", "none@x.com", "zero@x.com"}
	if len(tutors) != len(want) {
		t.Fatalf("expected %d tutors, got %d", len(want), len(tutors))
	}
	for i, email := range want {
		if tutors[i].Email != email {
			t.Fatalf("position %d: expected %s, got %s", i, email, tutors[i].Email)
		}
	}
	if tutors[3].Profile != nil {
		t.Fatalf("tutor without profile should project without one")
	}
}

func TestTutorDirectoryListTutors_UsesMemoryStore(t *testing.T) {
	repo := repository.NewMemoryUserRepository()
	ctx := context.Background()
	for _, u := range []domain.User{
		tutorWithRating("a@x.com", 4.5),
		tutorWithRating("b@x.com", 2.0),
		tutorWithRating("c@x.com", 5.0),
		{Email: "s@x.com", Role: domain.RoleStudent},
	} {
		if _, err := repo.UpsertLogin(ctx, u); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	tutors, err := NewTutorDirectory(zap.NewNop(), repo, nil).ListTutors(ctx)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	ratings := make([]float64, 0, len(tutors))
	for _, tt := range tutors {
		ratings = append(ratings, domain.RatingOf(tt.Profile))
		if tt.ID == "" {
			t.Fatalf("expected id in listing")
		}
	}
	if len(ratings) != 3 || ratings[0] != 5.0 || ratings[1] != 4.5 || ratings[2] != 2.0 {
		t.Fatalf("expected [5 4.5 2], got %v", ratings)
	}
}

func TestTutorDirectoryListTutors_Cache(t *testing.T) {
	repo := &staticUserRepo{users: []domain.User{tutorWithRating("a@x.com", 1)}}
	cache := &mockTutorCache{}
	dir := NewTutorDirectory(zap.NewNop(), repo, cache)

	if _, err := dir.ListTutors(context.Background()); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if repo.calls != 1 || cache.sets != 1 {
		t.Fatalf("expected store query and cache fill, got calls=%d sets=%d", repo.calls, cache.sets)
	}

	tutors, err := dir.ListTutors(context.Background())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if repo.calls != 1 {
		t.Fatalf("expected cached result without store query, got %d calls", repo.calls)
	}
	if len(tutors) != 1 || tutors[0].Email != "a@x.com" {
		t.Fatalf("unexpected cached tutors %+v", tutors)
	}

	cache.Invalidate(context.Background())
	if _, err := dir.ListTutors(context.Background()); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if repo.calls != 2 {
		t.Fatalf("expected store query after invalidation, got %d calls", repo.calls)
	}
}

// racingListRepo lee los tutores y, antes de devolverlos, deja correr un
// merge concurrente; el listado que devuelve queda viejo.
type racingListRepo struct {
	repository.UserRepository
	duringList func()
}

func (r *racingListRepo) ListByRole(ctx context.Context, role domain.Role) ([]domain.User, error) {
	users, err := r.UserRepository.ListByRole(ctx, role)
	if r.duringList != nil {
		fn := r.duringList
		r.duringList = nil
		fn()
	}
	return users, err
}

func TestTutorDirectoryListTutors_MergeDuringListIsNotCached(t *testing.T) {
	ctx := context.Background()
	mem := repository.NewMemoryUserRepository()
	if _, err := mem.UpsertLogin(ctx, tutorWithRating("t@x.com", 3)); err != nil {
		t.Fatalf("seed: %v", err)
	}

	cache := &mockTutorCache{}
	repo := &racingListRepo{UserRepository: mem}
	profiles := NewProfileService(zap.NewNop(), repo, cache)
	dir := NewTutorDirectory(zap.NewNop(), repo, cache)

	repo.duringList = func() {
		if _, err := profiles.MergeProfile(ctx, "t@x.com", domain.ProfileInput{Title: "Math Tutor"}); err != nil {
			t.Fatalf("merge: %v", err)
		}
	}
	stale, err := dir.ListTutors(ctx)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if stale[0].Profile.Title != "" {
		t.Fatalf("expected the pre-merge snapshot, got %+v", stale[0].Profile)
	}

	fresh, err := dir.ListTutors(ctx)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(fresh) != 1 || fresh[0].Profile == nil || fresh[0].Profile.Title != "Math Tutor" {
		t.Fatalf("expected merged title after invalidation, got %+v", fresh)
	}
}

func TestTutorDirectoryListTutors_StorageError(t *testing.T) {
	dir := NewTutorDirectory(zap.NewNop(), &failingUserRepo{err: errors.New("down")}, nil)
	if _, err := dir.ListTutors(context.Background()); !errors.Is(err, ErrStorage) {
		t.Fatalf("expected ErrStorage, got %v", err)
	}
}
