package rental

import (
	"context"
	"database/sql"
	"errors"

	"booklend/model"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
)

// errors used by controllers

type ErrCode string

const (
	ErrBookNotFound   ErrCode = "BOOK_NOT_FOUND"
	ErrAlreadyRented  ErrCode = "ALREADY_RENTED"
	ErrRentalNotFound ErrCode = "RENTAL_NOT_FOUND"
	ErrNotRenter      ErrCode = "NOT_RENTER"
)

type codedError struct{ code ErrCode }

func (e codedError) Error() string { return string(e.code) }
func (e codedError) Code() ErrCode { return e.code }
func makeErr(c ErrCode) error      { return codedError{code: c} }

// Code extracts error code
func Code(err error) ErrCode {
	var ce interface{ Code() ErrCode }
	if errors.As(err, &ce) {
		return ce.Code()
	}
	return ""
}

type Repo interface {
	BookExistsTx(ctx context.Context, tx *sql.Tx, bookID int64) (bool, error)
	OpenByBookTx(ctx context.Context, tx *sql.Tx, bookID int64) (*model.Rental, error)
	InsertTx(ctx context.Context, tx *sql.Tx, bookID, userID int64) (*model.Rental, error)
	CloseTx(ctx context.Context, tx *sql.Tx, rentalID int64) (*model.Rental, error)
	ByUser(ctx context.Context, userID int64) ([]model.Rental, error)
}

type Service interface {
	// Rent opens a rental for the acting user. Any authenticated user may
	// rent, the owner included.
	Rent(ctx context.Context, bookID, userID int64) (*model.Rental, error)

	// Return closes the book's open rental; only its holder may do so.
	Return(ctx context.Context, bookID, userID int64) (*model.Rental, error)

	// MyRentals lists the user's rentals with nested book and owner.
	MyRentals(ctx context.Context, userID int64) ([]model.Rental, error)
}

type service struct {
	db *sql.DB
	r  Repo
}

func New(db *sql.DB, r Repo) Service {
	return &service{db: db, r: r}
}

// Rent runs check-then-insert in one transaction. The explicit check gives
// the common conflict a clean answer; the partial unique index on open
// rentals catches the race two concurrent rents can still hit, so the
// unique violation maps to the same ALREADY_RENTED.
func (s *service) Rent(ctx context.Context, bookID, userID int64) (rent *model.Rental, err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	exists, err := s.r.BookExistsTx(ctx, tx, bookID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, makeErr(ErrBookNotFound)
	}

	open, err := s.r.OpenByBookTx(ctx, tx, bookID)
	if err != nil {
		return nil, err
	}
	if open != nil {
		return nil, makeErr(ErrAlreadyRented)
	}

	rent, err = s.r.InsertTx(ctx, tx, bookID, userID)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, makeErr(ErrAlreadyRented)
		}
		return nil, err
	}

	if err = tx.Commit(); err != nil {
		return nil, err
	}
	return rent, nil
}

func (s *service) Return(ctx context.Context, bookID, userID int64) (rent *model.Rental, err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	open, err := s.r.OpenByBookTx(ctx, tx, bookID)
	if err != nil {
		return nil, err
	}
	if open == nil {
		return nil, makeErr(ErrRentalNotFound)
	}
	if open.UserID != userID {
		return nil, makeErr(ErrNotRenter)
	}

	rent, err = s.r.CloseTx(ctx, tx, open.ID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, makeErr(ErrRentalNotFound)
		}
		return nil, err
	}

	if err = tx.Commit(); err != nil {
		return nil, err
	}
	return rent, nil
}

func (s *service) MyRentals(ctx context.Context, userID int64) ([]model.Rental, error) {
	return s.r.ByUser(ctx, userID)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}
