package booksvc

import (
	"context"
	"database/sql"
	"errors"

	"booklend/model"
)

type ErrCode string

const (
	ErrBadInput ErrCode = "BAD_INPUT"
	ErrNotFound ErrCode = "BOOK_NOT_FOUND"
	ErrNotOwner ErrCode = "NOT_OWNER"
)

type codedError struct{ code ErrCode }

func (e codedError) Error() string { return string(e.code) }
func (e codedError) Code() ErrCode { return e.code }
func makeErr(c ErrCode) error      { return codedError{code: c} }

func Code(err error) ErrCode {
	var ce interface{ Code() ErrCode }
	if errors.As(err, &ce) {
		return ce.Code()
	}
	return ""
}

// Filter narrows List by derived availability.
type Filter string

const (
	FilterAll       Filter = ""
	FilterAvailable Filter = "available"
	FilterRented    Filter = "rented"
)

type CreateParams struct {
	Title       string
	Author      string
	ISBN        *string
	Description *string
	CoverURL    string
}

type BookRepo interface {
	Insert(ctx context.Context, b *model.Book) error
	ByID(ctx context.Context, id int64) (*model.Book, error)
	List(ctx context.Context) ([]model.Book, error)
	OwnerTx(ctx context.Context, tx *sql.Tx, id int64) (int64, error)
	DeleteTx(ctx context.Context, tx *sql.Tx, id int64) error
}

type RentalRepo interface {
	ListOpen(ctx context.Context) ([]model.Rental, error)
	ByBook(ctx context.Context, bookID int64) ([]model.Rental, error)
	DeleteByBookTx(ctx context.Context, tx *sql.Tx, bookID int64) (int64, error)
}

type Service interface {
	Create(ctx context.Context, ownerID int64, p CreateParams) (*model.Book, error)

	// Delete removes a book and its rental history; owner only.
	Delete(ctx context.Context, bookID, userID int64) error

	List(ctx context.Context, f Filter) ([]model.AnnotatedBook, error)
	Get(ctx context.Context, bookID int64) (*model.BookDetail, error)
}

type service struct {
	db *sql.DB
	br BookRepo
	rr RentalRepo
}

func New(db *sql.DB, br BookRepo, rr RentalRepo) Service {
	return &service{db: db, br: br, rr: rr}
}

func (s *service) Create(ctx context.Context, ownerID int64, p CreateParams) (*model.Book, error) {
	if p.Title == "" || p.Author == "" || p.CoverURL == "" {
		return nil, makeErr(ErrBadInput)
	}
	b := &model.Book{
		Title:       p.Title,
		Author:      p.Author,
		ISBN:        p.ISBN,
		Description: p.Description,
		CoverURL:    p.CoverURL,
		OwnerID:     ownerID,
	}
	if err := s.br.Insert(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

// Delete removes rentals before the book, in one transaction, so no orphan
// rental can survive its book.
func (s *service) Delete(ctx context.Context, bookID, userID int64) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	ownerID, err := s.br.OwnerTx(ctx, tx, bookID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return makeErr(ErrNotFound)
		}
		return err
	}
	if ownerID != userID {
		return makeErr(ErrNotOwner)
	}

	if _, err = s.rr.DeleteByBookTx(ctx, tx, bookID); err != nil {
		return err
	}
	if err = s.br.DeleteTx(ctx, tx, bookID); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *service) List(ctx context.Context, f Filter) ([]model.AnnotatedBook, error) {
	books, err := s.br.List(ctx)
	if err != nil {
		return nil, err
	}
	open, err := s.rr.ListOpen(ctx)
	if err != nil {
		return nil, err
	}

	openByBook := make(map[int64][]model.Rental, len(open))
	for _, r := range open {
		openByBook[r.BookID] = append(openByBook[r.BookID], r)
	}

	out := make([]model.AnnotatedBook, 0, len(books))
	for _, b := range books {
		ab := model.Annotate(b, openByBook[b.ID])
		switch f {
		case FilterAvailable:
			if !ab.IsAvailable {
				continue
			}
		case FilterRented:
			if ab.IsAvailable {
				continue
			}
		}
		out = append(out, ab)
	}
	return out, nil
}

func (s *service) Get(ctx context.Context, bookID int64) (*model.BookDetail, error) {
	b, err := s.br.ByID(ctx, bookID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, makeErr(ErrNotFound)
		}
		return nil, err
	}
	history, err := s.rr.ByBook(ctx, bookID)
	if err != nil {
		return nil, err
	}
	return &model.BookDetail{
		AnnotatedBook: model.Annotate(*b, history),
		Rentals:       history,
	}, nil
}
