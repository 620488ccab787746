package lendingsvc

import (
	"context"
	"database/sql"
	"errors"

	"libraryapi/apperr"
	"libraryapi/model"
	bookrepo "libraryapi/repository/book"
)

// Repo is the slice of the book repository the lending engine needs. The
// Borrow/Return row operations are atomic in the repository (one transaction,
// row lock), which is what keeps two concurrent borrows of the same book from
// both succeeding.
type Repo interface {
	ByID(ctx context.Context, id int64) (*model.Book, error)
	Borrow(ctx context.Context, bookID, borrowerID int64) (*model.Book, error)
	Return(ctx context.Context, bookID int64) (*model.Book, error)
	Borrowed(ctx context.Context, limit, offset int) ([]model.Book, int64, error)
	BorrowedBy(ctx context.Context, userID int64, limit, offset int) ([]model.Book, int64, error)
}

var _ Repo = (bookrepo.Repo)(nil)

type Service interface {
	// Borrow hands the book to the user. Conflict when it is already out,
	// NotFound when there is no such book.
	Borrow(ctx context.Context, bookID int64, user *model.User) (*model.Book, error)

	// Return puts the book back on the shelf. Ownership is a boundary
	// decision: callers verify the current borrower before invoking this,
	// and Return itself only rejects books that are not out at all.
	Return(ctx context.Context, bookID int64) (*model.Book, error)

	ByID(ctx context.Context, bookID int64) (*model.Book, error)
	Borrowed(ctx context.Context, limit, offset int) ([]model.Book, int64, error)
	BorrowedBy(ctx context.Context, userID int64, limit, offset int) ([]model.Book, int64, error)
}

type service struct{ r Repo }

func New(r Repo) Service { return &service{r: r} }

func (s *service) Borrow(ctx context.Context, bookID int64, user *model.User) (*model.Book, error) {
	if user == nil {
		return nil, apperr.New(apperr.ErrValidation, "borrower is required")
	}
	b, err := s.r.Borrow(ctx, bookID, user.ID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.New(apperr.ErrNotFound, "book not found")
		}
		return nil, err
	}
	return b, nil
}

func (s *service) Return(ctx context.Context, bookID int64) (*model.Book, error) {
	b, err := s.r.Return(ctx, bookID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.New(apperr.ErrNotFound, "book not found")
		}
		return nil, err
	}
	return b, nil
}

func (s *service) ByID(ctx context.Context, bookID int64) (*model.Book, error) {
	b, err := s.r.ByID(ctx, bookID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.New(apperr.ErrNotFound, "book not found")
		}
		return nil, err
	}
	return b, nil
}

func (s *service) Borrowed(ctx context.Context, limit, offset int) ([]model.Book, int64, error) {
	return s.r.Borrowed(ctx, limit, offset)
}

func (s *service) BorrowedBy(ctx context.Context, userID int64, limit, offset int) ([]model.Book, int64, error) {
	return s.r.BorrowedBy(ctx, userID, limit, offset)
}
