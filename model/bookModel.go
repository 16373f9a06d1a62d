// model/book.go
package model

import "time"

type Book struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Author      string    `json:"author"`
	ISBN        *string   `json:"isbn,omitempty"`
	Description *string   `json:"description,omitempty"`
	CoverURL    string    `json:"coverImage"`
	OwnerID     int64     `json:"ownerId"`
	Owner       *User     `json:"owner,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// AnnotatedBook is a Book plus the derived lending fields. isAvailable and
// currentRental are never stored; they are computed from the rental set.
type AnnotatedBook struct {
	Book
	IsAvailable   bool    `json:"isAvailable"`
	CurrentRental *Rental `json:"currentRental"`
}

// BookDetail additionally carries the full rental history, newest first.
type BookDetail struct {
	AnnotatedBook
	Rentals []Rental `json:"rentals"`
}

// Annotate derives the availability fields from a book's rentals. The slice
// may be in any order and may be the full history; the open rental (nil
// ReturnedAt) wins. At most one open rental can exist per book.
func Annotate(b Book, rentals []Rental) AnnotatedBook {
	out := AnnotatedBook{Book: b, IsAvailable: true}
	for i := range rentals {
		if rentals[i].ReturnedAt == nil {
			r := rentals[i]
			out.CurrentRental = &r
			out.IsAvailable = false
			break
		}
	}
	return out
}
