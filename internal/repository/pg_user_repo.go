package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"edunextgen-api/internal/domain"
)

// pgQuerier es la parte de *pgxpool.Pool que usa el repositorio.
type pgQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Ping(ctx context.Context) error
}

// PgUserRepository guarda cada usuario como documento JSONB en Postgres.
type PgUserRepository struct {
	pool pgQuerier
}

func NewPgUserRepository(pool *pgxpool.Pool) *PgUserRepository {
	return &PgUserRepository{pool: pool}
}

func (r *PgUserRepository) UpsertLogin(ctx context.Context, user domain.User) (WriteResult, error) {
	// xmax = 0 solo en filas recien insertadas.
	const query = `
		INSERT INTO users (id, email, doc)
		VALUES ($1, $2, $3::jsonb)
		ON CONFLICT (email) DO UPDATE
			SET doc = jsonb_set(users.doc, '{last_loggedIn}', to_jsonb($4::text))
		RETURNING id, (xmax = 0) AS inserted
	`
	doc, err := marshalUserDoc(user)
	if err != nil {
		return WriteResult{}, err
	}

	var (
		id       string
		inserted bool
	)
	err = r.pool.QueryRow(ctx, query,
		uuid.NewString(),
		user.Email,
		doc,
		user.LastLoggedIn,
	).Scan(&id, &inserted)
	if err != nil {
		return WriteResult{}, err
	}

	if inserted {
		return WriteResult{Acknowledged: true, Inserted: true, UpsertedCount: 1, UpsertedID: id}, nil
	}
	return WriteResult{Acknowledged: true, MatchedCount: 1, ModifiedCount: 1}, nil
}

func (r *PgUserRepository) TouchLogin(ctx context.Context, email, lastLoggedIn string) (WriteResult, error) {
	const query = `
		UPDATE users
		SET doc = jsonb_set(doc, '{last_loggedIn}', to_jsonb($2::text))
		WHERE email = $1
	`
	tag, err := r.pool.Exec(ctx, query, email, lastLoggedIn)
	if err != nil {
		return WriteResult{}, err
	}
	n := tag.RowsAffected()
	return WriteResult{Acknowledged: true, MatchedCount: n, ModifiedCount: n}, nil
}

func (r *PgUserRepository) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	const query = `
		SELECT id, doc
		FROM users
		WHERE email = $1
	`
	var (
		id  string
		raw []byte
	)
	err := r.pool.QueryRow(ctx, query, email).Scan(&id, &raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.User{}, ErrNotFound
	}
	if err != nil {
		return domain.User{}, err
	}
	return unmarshalUserDoc(id, raw)
}

func (r *PgUserRepository) UpdateProfile(ctx context.Context, email string, profile domain.TutorProfile, updatedAt string) (UpdateResult, error) {
	// Igual que un $set de Mongo: contenido identico no cuenta como modificado.
	const query = `
		WITH target AS (
			SELECT id FROM users WHERE email = $1
		), changed AS (
			UPDATE users
			SET doc = doc || $2::jsonb
			WHERE email = $1 AND (doc || $2::jsonb) <> doc
			RETURNING id
		)
		SELECT (SELECT count(*) FROM target), (SELECT count(*) FROM changed)
	`
	patch, err := profilePatch(profile, updatedAt)
	if err != nil {
		return UpdateResult{}, err
	}

	var matched, modified int64
	if err := r.pool.QueryRow(ctx, query, email, patch).Scan(&matched, &modified); err != nil {
		return UpdateResult{}, err
	}
	return UpdateResult{Acknowledged: true, MatchedCount: matched, ModifiedCount: modified}, nil
}

func (r *PgUserRepository) ListByRole(ctx context.Context, role domain.Role) ([]domain.User, error) {
	const query = `
		SELECT id, doc
		FROM users
		WHERE doc->>'role' = $1
		ORDER BY COALESCE((doc #>> '{profile,rating}')::double precision, 0) DESC, email
	`
	rows, err := r.pool.Query(ctx, query, string(role))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]domain.User, 0)
	for rows.Next() {
		var (
			id  string
			raw []byte
		)
		if err := rows.Scan(&id, &raw); err != nil {
			return nil, err
		}
		u, err := unmarshalUserDoc(id, raw)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (r *PgUserRepository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

func marshalUserDoc(user domain.User) (string, error) {
	user.ID = ""
	if user.Profile != nil {
		p := user.Profile.Normalized()
		user.Profile = &p
	}
	raw, err := json.Marshal(user)
	if err != nil {
		return "", fmt.Errorf("encode user doc: %w", err)
	}
	return string(raw), nil
}

func unmarshalUserDoc(id string, raw []byte) (domain.User, error) {
	var u domain.User
	if err := json.Unmarshal(raw, &u); err != nil {
		return domain.User{}, fmt.Errorf("decode user doc: %w", err)
	}
	u.ID = id
	if u.Profile != nil {
		p := u.Profile.Normalized()
		u.Profile = &p
	}
	return u, nil
}

func profilePatch(profile domain.TutorProfile, updatedAt string) (string, error) {
	raw, err := json.Marshal(map[string]any{
		"profile":    profile.Normalized(),
		"updated_at": updatedAt,
	})
	if err != nil {
		return "", fmt.Errorf("encode profile patch: %w", err)
	}
	return string(raw), nil
}
