// model/book.go
package model

type Book struct {
	ID        int64  `json:"id"`
	Title     string `json:"title"`
	Author    string `json:"author"`
	ISBN      string `json:"isbn"`
	Available bool   `json:"available"`

	// BorrowerID references the user currently holding the book.
	// Invariant: Available == true iff BorrowerID == nil, and both sides
	// change inside the same transaction.
	BorrowerID *int64 `json:"borrower_id,omitempty"`
}
