// model/rental.go
package model

import "time"

// Rental records one lending of a book. A rental with a nil ReturnedAt is
// open; once ReturnedAt is set the row is immutable (no re-opening).
type Rental struct {
	ID         int64      `json:"id"`
	BookID     int64      `json:"bookId"`
	UserID     int64      `json:"userId"`
	User       *User      `json:"user,omitempty"`
	Book       *Book      `json:"book,omitempty"`
	RentedAt   time.Time  `json:"rentedAt"`
	ReturnedAt *time.Time `json:"returnedAt"`
}

// Active reports whether the rental is still open.
func (r Rental) Active() bool { return r.ReturnedAt == nil }
