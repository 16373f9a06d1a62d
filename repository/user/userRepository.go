package userrepo

import (
	"context"
	"database/sql"

	"booklend/model"
)

type Repo interface {
	// Upsert refreshes the identity directory from verified token claims.
	Upsert(ctx context.Context, u *model.User) error
	ByID(ctx context.Context, id int64) (*model.User, error)
}

type repo struct{ db *sql.DB }

func New(db *sql.DB) Repo { return &repo{db: db} }

func (r *repo) Upsert(ctx context.Context, u *model.User) error {
	const q = `
		INSERT INTO users (id, name, avatar_url)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE
		SET name = EXCLUDED.name, avatar_url = EXCLUDED.avatar_url
		RETURNING created_at`
	return r.db.QueryRowContext(ctx, q, u.ID, u.Name, u.AvatarURL).Scan(&u.CreatedAt)
}

func (r *repo) ByID(ctx context.Context, id int64) (*model.User, error) {
	u := &model.User{}
	const q = `
		SELECT id, name, avatar_url, created_at
		FROM users
		WHERE id = $1`
	err := r.db.QueryRowContext(ctx, q, id).Scan(&u.ID, &u.Name, &u.AvatarURL, &u.CreatedAt)
	if err != nil {
		return nil, err
	}
	return u, nil
}
