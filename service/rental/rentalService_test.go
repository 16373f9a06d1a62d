// service/rental/rental_service_test.go
package rental

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"booklend/model"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"
)

// newTestDB returns an empty in-memory database; the mocks below ignore the
// transaction handle, the db only provides BeginTx/Commit/Rollback plumbing.
func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

type mockRepo struct {
	bookExistsFn func(ctx context.Context, tx *sql.Tx, bookID int64) (bool, error)
	openFn       func(ctx context.Context, tx *sql.Tx, bookID int64) (*model.Rental, error)
	insertFn     func(ctx context.Context, tx *sql.Tx, bookID, userID int64) (*model.Rental, error)
	closeFn      func(ctx context.Context, tx *sql.Tx, rentalID int64) (*model.Rental, error)
	byUserFn     func(ctx context.Context, userID int64) ([]model.Rental, error)
}

var _ Repo = (*mockRepo)(nil)

func (m *mockRepo) BookExistsTx(ctx context.Context, tx *sql.Tx, bookID int64) (bool, error) {
	if m.bookExistsFn == nil {
		return true, nil
	}
	return m.bookExistsFn(ctx, tx, bookID)
}

func (m *mockRepo) OpenByBookTx(ctx context.Context, tx *sql.Tx, bookID int64) (*model.Rental, error) {
	if m.openFn == nil {
		return nil, nil
	}
	return m.openFn(ctx, tx, bookID)
}

func (m *mockRepo) InsertTx(ctx context.Context, tx *sql.Tx, bookID, userID int64) (*model.Rental, error) {
	if m.insertFn == nil {
		return &model.Rental{ID: 1, BookID: bookID, UserID: userID, RentedAt: time.Now()}, nil
	}
	return m.insertFn(ctx, tx, bookID, userID)
}

func (m *mockRepo) CloseTx(ctx context.Context, tx *sql.Tx, rentalID int64) (*model.Rental, error) {
	if m.closeFn == nil {
		now := time.Now()
		return &model.Rental{ID: rentalID, ReturnedAt: &now}, nil
	}
	return m.closeFn(ctx, tx, rentalID)
}

func (m *mockRepo) ByUser(ctx context.Context, userID int64) ([]model.Rental, error) {
	if m.byUserFn == nil {
		return nil, nil
	}
	return m.byUserFn(ctx, userID)
}

// --- Rent ---

func TestRent_Success(t *testing.T) {
	ctx := context.Background()
	svc := New(newTestDB(t), &mockRepo{})

	rent, err := svc.Rent(ctx, 10, 7)
	require.NoError(t, err)
	require.Equal(t, int64(10), rent.BookID)
	require.Equal(t, int64(7), rent.UserID)
	require.Nil(t, rent.ReturnedAt)
}

func TestRent_BookNotFound(t *testing.T) {
	ctx := context.Background()
	m := &mockRepo{
		bookExistsFn: func(ctx context.Context, tx *sql.Tx, bookID int64) (bool, error) {
			return false, nil
		},
	}
	svc := New(newTestDB(t), m)

	_, err := svc.Rent(ctx, 99, 7)
	require.Error(t, err)
	require.Equal(t, ErrBookNotFound, Code(err))
}

func TestRent_AlreadyRented(t *testing.T) {
	ctx := context.Background()
	m := &mockRepo{
		openFn: func(ctx context.Context, tx *sql.Tx, bookID int64) (*model.Rental, error) {
			return &model.Rental{ID: 1, BookID: bookID, UserID: 5}, nil
		},
	}
	svc := New(newTestDB(t), m)

	// Conflict regardless of caller, the current holder included.
	for _, uid := range []int64{5, 7} {
		_, err := svc.Rent(ctx, 10, uid)
		require.Error(t, err)
		require.Equal(t, ErrAlreadyRented, Code(err))
	}
}

// Two concurrent rents can both see no open rental; the loser's insert hits
// the partial unique index and must surface as ALREADY_RENTED.
func TestRent_UniqueViolationMapsToConflict(t *testing.T) {
	ctx := context.Background()
	m := &mockRepo{
		insertFn: func(ctx context.Context, tx *sql.Tx, bookID, userID int64) (*model.Rental, error) {
			return nil, &pgconn.PgError{
				Code:           pgerrcode.UniqueViolation,
				ConstraintName: "rentals_one_active_per_book",
			}
		},
	}
	svc := New(newTestDB(t), m)

	_, err := svc.Rent(ctx, 10, 7)
	require.Error(t, err)
	require.Equal(t, ErrAlreadyRented, Code(err))
}

// --- Return ---

func TestReturn_NoOpenRental(t *testing.T) {
	ctx := context.Background()
	svc := New(newTestDB(t), &mockRepo{})

	_, err := svc.Return(ctx, 10, 7)
	require.Error(t, err)
	require.Equal(t, ErrRentalNotFound, Code(err))
}

func TestReturn_WrongUser(t *testing.T) {
	ctx := context.Background()
	m := &mockRepo{
		openFn: func(ctx context.Context, tx *sql.Tx, bookID int64) (*model.Rental, error) {
			return &model.Rental{ID: 3, BookID: bookID, UserID: 5}, nil
		},
	}
	svc := New(newTestDB(t), m)

	_, err := svc.Return(ctx, 10, 7)
	require.Error(t, err)
	require.Equal(t, ErrNotRenter, Code(err))
}

func TestReturn_Success(t *testing.T) {
	ctx := context.Background()
	closed := false
	m := &mockRepo{
		openFn: func(ctx context.Context, tx *sql.Tx, bookID int64) (*model.Rental, error) {
			return &model.Rental{ID: 3, BookID: bookID, UserID: 7}, nil
		},
		closeFn: func(ctx context.Context, tx *sql.Tx, rentalID int64) (*model.Rental, error) {
			require.Equal(t, int64(3), rentalID)
			closed = true
			now := time.Now()
			return &model.Rental{ID: rentalID, BookID: 10, UserID: 7, ReturnedAt: &now}, nil
		},
	}
	svc := New(newTestDB(t), m)

	rent, err := svc.Return(ctx, 10, 7)
	require.NoError(t, err)
	require.True(t, closed)
	require.NotNil(t, rent.ReturnedAt)
}

// --- full lifecycle against a stateful mock ---

// statefulRepo keeps rentals in memory and enforces nothing itself, so the
// test observes exactly what the service layer decides.
type statefulRepo struct {
	mockRepo
	nextID  int64
	rentals []*model.Rental
}

func (s *statefulRepo) open(bookID int64) *model.Rental {
	for _, r := range s.rentals {
		if r.BookID == bookID && r.ReturnedAt == nil {
			return r
		}
	}
	return nil
}

func newStatefulRepo() *statefulRepo {
	s := &statefulRepo{nextID: 1}
	s.openFn = func(ctx context.Context, tx *sql.Tx, bookID int64) (*model.Rental, error) {
		if r := s.open(bookID); r != nil {
			cp := *r
			return &cp, nil
		}
		return nil, nil
	}
	s.insertFn = func(ctx context.Context, tx *sql.Tx, bookID, userID int64) (*model.Rental, error) {
		r := &model.Rental{ID: s.nextID, BookID: bookID, UserID: userID, RentedAt: time.Now()}
		s.nextID++
		s.rentals = append(s.rentals, r)
		cp := *r
		return &cp, nil
	}
	s.closeFn = func(ctx context.Context, tx *sql.Tx, rentalID int64) (*model.Rental, error) {
		for _, r := range s.rentals {
			if r.ID == rentalID && r.ReturnedAt == nil {
				now := time.Now()
				r.ReturnedAt = &now
				cp := *r
				return &cp, nil
			}
		}
		return nil, sql.ErrNoRows
	}
	return s
}

func TestRentReturnRent_Lifecycle(t *testing.T) {
	ctx := context.Background()
	repo := newStatefulRepo()
	svc := New(newTestDB(t), repo)

	const (
		owner  = int64(1)
		renter = int64(2)
		bookID = int64(10)
	)

	// renter rents the available book
	r1, err := svc.Rent(ctx, bookID, renter)
	require.NoError(t, err)

	// owner tries to return someone else's rental
	_, err = svc.Return(ctx, bookID, owner)
	require.Equal(t, ErrNotRenter, Code(err))

	// the holder returns it
	ret, err := svc.Return(ctx, bookID, renter)
	require.NoError(t, err)
	require.Equal(t, r1.ID, ret.ID)
	require.NotNil(t, ret.ReturnedAt)

	// renting again opens a second rental row
	r2, err := svc.Rent(ctx, bookID, renter)
	require.NoError(t, err)
	require.NotEqual(t, r1.ID, r2.ID)
	require.Len(t, repo.rentals, 2)
}
