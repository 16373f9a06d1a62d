// repository/rental/repo.go
package rentalrepo

import (
	"context"
	"database/sql"
	"errors"

	"booklend/model"
)

type Repo interface {
	// Tx-scoped methods run inside the caller's transaction.
	BookExistsTx(ctx context.Context, tx *sql.Tx, bookID int64) (bool, error)
	OpenByBookTx(ctx context.Context, tx *sql.Tx, bookID int64) (*model.Rental, error)
	InsertTx(ctx context.Context, tx *sql.Tx, bookID, userID int64) (*model.Rental, error)
	CloseTx(ctx context.Context, tx *sql.Tx, rentalID int64) (*model.Rental, error)
	DeleteByBookTx(ctx context.Context, tx *sql.Tx, bookID int64) (int64, error)

	// Read-side projections.
	ListOpen(ctx context.Context) ([]model.Rental, error)
	ByBook(ctx context.Context, bookID int64) ([]model.Rental, error)
	ByUser(ctx context.Context, userID int64) ([]model.Rental, error)
}

type repo struct{ db *sql.DB }

func New(db *sql.DB) Repo { return &repo{db: db} }

func (r *repo) BookExistsTx(ctx context.Context, tx *sql.Tx, bookID int64) (bool, error) {
	const q = `SELECT EXISTS (SELECT 1 FROM books WHERE id = $1)`
	var exists bool
	err := tx.QueryRowContext(ctx, q, bookID).Scan(&exists)
	return exists, err
}

// OpenByBookTx locks the open rental for the book, if any. Returns (nil, nil)
// when the book has no open rental.
func (r *repo) OpenByBookTx(ctx context.Context, tx *sql.Tx, bookID int64) (*model.Rental, error) {
	const q = `
		SELECT id, book_id, user_id, rented_at, returned_at
		FROM rentals
		WHERE book_id = $1
		AND returned_at IS NULL
		FOR UPDATE`
	rent := &model.Rental{}
	err := tx.QueryRowContext(ctx, q, bookID).Scan(
		&rent.ID, &rent.BookID, &rent.UserID, &rent.RentedAt, &rent.ReturnedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return rent, nil
}

func (r *repo) InsertTx(ctx context.Context, tx *sql.Tx, bookID, userID int64) (*model.Rental, error) {
	const q = `
		INSERT INTO rentals (book_id, user_id)
		VALUES ($1, $2)
		RETURNING id, rented_at`
	rent := &model.Rental{BookID: bookID, UserID: userID}
	if err := tx.QueryRowContext(ctx, q, bookID, userID).Scan(&rent.ID, &rent.RentedAt); err != nil {
		return nil, err
	}
	return rent, nil
}

// CloseTx sets returned_at on an open rental. The returned_at IS NULL guard
// keeps closed rentals immutable; sql.ErrNoRows means the rental was already
// closed (or never existed).
func (r *repo) CloseTx(ctx context.Context, tx *sql.Tx, rentalID int64) (*model.Rental, error) {
	const q = `
		UPDATE rentals
		SET returned_at = now()
		WHERE id = $1
		AND returned_at IS NULL
		RETURNING id, book_id, user_id, rented_at, returned_at`
	rent := &model.Rental{}
	err := tx.QueryRowContext(ctx, q, rentalID).Scan(
		&rent.ID, &rent.BookID, &rent.UserID, &rent.RentedAt, &rent.ReturnedAt,
	)
	if err != nil {
		return nil, err
	}
	return rent, nil
}

func (r *repo) DeleteByBookTx(ctx context.Context, tx *sql.Tx, bookID int64) (int64, error) {
	const q = `DELETE FROM rentals WHERE book_id = $1`
	res, err := tx.ExecContext(ctx, q, bookID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const rentalWithUserCols = `
	r.id, r.book_id, r.user_id, r.rented_at, r.returned_at,
	u.id, u.name, u.avatar_url, u.created_at`

func scanRentalWithUser(row interface{ Scan(...any) error }) (model.Rental, error) {
	var rent model.Rental
	var renter model.User
	err := row.Scan(
		&rent.ID, &rent.BookID, &rent.UserID, &rent.RentedAt, &rent.ReturnedAt,
		&renter.ID, &renter.Name, &renter.AvatarURL, &renter.CreatedAt,
	)
	if err != nil {
		return model.Rental{}, err
	}
	rent.User = &renter
	return rent, nil
}

// ListOpen returns every open rental with its renter, for annotating book
// listings in one round trip.
func (r *repo) ListOpen(ctx context.Context) ([]model.Rental, error) {
	const q = `
		SELECT` + rentalWithUserCols + `
		FROM rentals r
		JOIN users u ON u.id = r.user_id
		WHERE r.returned_at IS NULL`
	return r.queryRentals(ctx, q)
}

// ByBook returns the full rental history for a book, newest first.
func (r *repo) ByBook(ctx context.Context, bookID int64) ([]model.Rental, error) {
	const q = `
		SELECT` + rentalWithUserCols + `
		FROM rentals r
		JOIN users u ON u.id = r.user_id
		WHERE r.book_id = $1
		ORDER BY r.rented_at DESC, r.id DESC`
	return r.queryRentals(ctx, q, bookID)
}

func (r *repo) queryRentals(ctx context.Context, q string, args ...any) ([]model.Rental, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Rental
	for rows.Next() {
		rent, err := scanRentalWithUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rent)
	}
	return out, rows.Err()
}

// ByUser returns a user's rentals, newest first, each with the nested book
// and its owner.
func (r *repo) ByUser(ctx context.Context, userID int64) ([]model.Rental, error) {
	const q = `
		SELECT r.id, r.book_id, r.user_id, r.rented_at, r.returned_at,
			b.id, b.title, b.author, b.isbn, b.description, b.cover_url, b.owner_id, b.created_at,
			o.id, o.name, o.avatar_url, o.created_at
		FROM rentals r
		JOIN books b ON b.id = r.book_id
		JOIN users o ON o.id = b.owner_id
		WHERE r.user_id = $1
		ORDER BY r.rented_at DESC, r.id DESC`
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Rental
	for rows.Next() {
		var rent model.Rental
		var b model.Book
		var owner model.User
		if err := rows.Scan(
			&rent.ID, &rent.BookID, &rent.UserID, &rent.RentedAt, &rent.ReturnedAt,
			&b.ID, &b.Title, &b.Author, &b.ISBN, &b.Description, &b.CoverURL, &b.OwnerID, &b.CreatedAt,
			&owner.ID, &owner.Name, &owner.AvatarURL, &owner.CreatedAt,
		); err != nil {
			return nil, err
		}
		b.Owner = &owner
		rent.Book = &b
		out = append(out, rent)
	}
	return out, rows.Err()
}
