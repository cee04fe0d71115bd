package repository

import (
	"context"
	"reflect"
	"slices"
	"sort"
	"sync"

	"github.com/google/uuid"

	"edunextgen-api/internal/domain"
)

// MemoryUserRepository implementa UserRepository en memoria (desarrollo y tests).
type MemoryUserRepository struct {
	mu      sync.Mutex
	byEmail map[string]domain.User
}

func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{byEmail: make(map[string]domain.User)}
}

func (r *MemoryUserRepository) UpsertLogin(_ context.Context, user domain.User) (WriteResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.byEmail[user.Email]; ok {
		modified := int64(0)
		if existing.LastLoggedIn != user.LastLoggedIn {
			existing.LastLoggedIn = user.LastLoggedIn
			r.byEmail[user.Email] = existing
			modified = 1
		}
		return WriteResult{Acknowledged: true, MatchedCount: 1, ModifiedCount: modified}, nil
	}

	user.ID = uuid.NewString()
	user.Profile = cloneProfile(user.Profile)
	r.byEmail[user.Email] = user
	return WriteResult{
		Acknowledged:  true,
		Inserted:      true,
		UpsertedCount: 1,
		UpsertedID:    user.ID,
	}, nil
}

func (r *MemoryUserRepository) TouchLogin(_ context.Context, email, lastLoggedIn string) (WriteResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.byEmail[email]
	if !ok {
		return WriteResult{Acknowledged: true}, nil
	}
	modified := int64(0)
	if existing.LastLoggedIn != lastLoggedIn {
		existing.LastLoggedIn = lastLoggedIn
		r.byEmail[email] = existing
		modified = 1
	}
	return WriteResult{Acknowledged: true, MatchedCount: 1, ModifiedCount: modified}, nil
}

func (r *MemoryUserRepository) GetByEmail(_ context.Context, email string) (domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.byEmail[email]
	if !ok {
		return domain.User{}, ErrNotFound
	}
	user.Profile = cloneProfile(user.Profile)
	return user, nil
}

func (r *MemoryUserRepository) UpdateProfile(_ context.Context, email string, profile domain.TutorProfile, updatedAt string) (UpdateResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.byEmail[email]
	if !ok {
		return UpdateResult{Acknowledged: true}, nil
	}
	if user.UpdatedAt == updatedAt && user.Profile != nil && reflect.DeepEqual(*user.Profile, profile) {
		return UpdateResult{Acknowledged: true, MatchedCount: 1}, nil
	}
	user.Profile = cloneProfile(&profile)
	user.UpdatedAt = updatedAt
	r.byEmail[email] = user
	return UpdateResult{Acknowledged: true, MatchedCount: 1, ModifiedCount: 1}, nil
}

func (r *MemoryUserRepository) ListByRole(_ context.Context, role domain.Role) ([]domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	users := make([]domain.User, 0)
	for _, u := range r.byEmail {
		if u.Role != role {
			continue
		}
		u.Profile = cloneProfile(u.Profile)
		users = append(users, u)
	}
	// el mapa no tiene orden; email como desempate deja el resultado estable
	sort.Slice(users, func(i, j int) bool {
		ri, rj := domain.RatingOf(users[i].Profile), domain.RatingOf(users[j].Profile)
		if ri != rj {
			return ri > rj
		}
		return users[i].Email < users[j].Email
	})
	return users, nil
}

func (r *MemoryUserRepository) Ping(context.Context) error {
	return nil
}

func cloneProfile(p *domain.TutorProfile) *domain.TutorProfile {
	if p == nil {
		return nil
	}
	c := *p
	c.Education = slices.Clone(p.Education)
	c.Subjects = slices.Clone(p.Subjects)
	c.Experience = slices.Clone(p.Experience)
	return &c
}
