package bookrepo

import (
	"context"
	"database/sql"

	"booklend/model"
)

type Repo interface {
	Insert(ctx context.Context, b *model.Book) error
	ByID(ctx context.Context, id int64) (*model.Book, error)
	List(ctx context.Context) ([]model.Book, error)

	// OwnerTx locks the book row for the delete sequence.
	OwnerTx(ctx context.Context, tx *sql.Tx, id int64) (int64, error)
	DeleteTx(ctx context.Context, tx *sql.Tx, id int64) error
}

type repo struct{ db *sql.DB }

func New(db *sql.DB) Repo { return &repo{db} }

func (r *repo) Insert(ctx context.Context, b *model.Book) error {
	const q = `
		INSERT INTO books (title, author, isbn, description, cover_url, owner_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`
	return r.db.QueryRowContext(ctx, q,
		b.Title, b.Author, b.ISBN, b.Description, b.CoverURL, b.OwnerID,
	).Scan(&b.ID, &b.CreatedAt)
}

const bookCols = `
	b.id, b.title, b.author, b.isbn, b.description, b.cover_url, b.owner_id, b.created_at,
	u.id, u.name, u.avatar_url, u.created_at`

func scanBook(row interface{ Scan(...any) error }) (model.Book, error) {
	var b model.Book
	var owner model.User
	err := row.Scan(
		&b.ID, &b.Title, &b.Author, &b.ISBN, &b.Description, &b.CoverURL, &b.OwnerID, &b.CreatedAt,
		&owner.ID, &owner.Name, &owner.AvatarURL, &owner.CreatedAt,
	)
	if err != nil {
		return model.Book{}, err
	}
	b.Owner = &owner
	return b, nil
}

func (r *repo) ByID(ctx context.Context, id int64) (*model.Book, error) {
	const q = `
		SELECT` + bookCols + `
		FROM books b
		JOIN users u ON u.id = b.owner_id
		WHERE b.id = $1`
	b, err := scanBook(r.db.QueryRowContext(ctx, q, id))
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *repo) List(ctx context.Context) ([]model.Book, error) {
	const q = `
		SELECT` + bookCols + `
		FROM books b
		JOIN users u ON u.id = b.owner_id
		ORDER BY b.created_at DESC, b.id DESC`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Book
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (r *repo) OwnerTx(ctx context.Context, tx *sql.Tx, id int64) (int64, error) {
	const q = `
		SELECT owner_id
		FROM books
		WHERE id = $1
		FOR UPDATE`
	var ownerID int64
	err := tx.QueryRowContext(ctx, q, id).Scan(&ownerID)
	return ownerID, err
}

func (r *repo) DeleteTx(ctx context.Context, tx *sql.Tx, id int64) error {
	const q = `DELETE FROM books WHERE id = $1`
	_, err := tx.ExecContext(ctx, q, id)
	return err
}
