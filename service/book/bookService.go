package booksvc

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"libraryapi/apperr"
	"libraryapi/model"
	bookrepo "libraryapi/repository/book"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
)

type Repo interface {
	Create(ctx context.Context, b *model.Book) error
	ByID(ctx context.Context, id int64) (*model.Book, error)
	Update(ctx context.Context, id int64, title, author, isbn string) (*model.Book, error)
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, limit, offset int) ([]model.Book, int64, error)
	ByTitle(ctx context.Context, title string, limit, offset int) ([]model.Book, int64, error)
	ByAuthor(ctx context.Context, author string, limit, offset int) ([]model.Book, int64, error)
	Available(ctx context.Context, limit, offset int) ([]model.Book, int64, error)
}

var _ Repo = (bookrepo.Repo)(nil)

type Service interface {
	Create(ctx context.Context, title, author, isbn string) (*model.Book, error)
	ByID(ctx context.Context, id int64) (*model.Book, error)
	Update(ctx context.Context, id int64, title, author, isbn string) (*model.Book, error)
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, limit, offset int) ([]model.Book, int64, error)
	ByTitle(ctx context.Context, title string, limit, offset int) ([]model.Book, int64, error)
	ByAuthor(ctx context.Context, author string, limit, offset int) ([]model.Book, int64, error)
	Available(ctx context.Context, limit, offset int) ([]model.Book, int64, error)
}

type service struct{ r Repo }

func New(r Repo) Service { return &service{r: r} }

func (s *service) Create(ctx context.Context, title, author, isbn string) (*model.Book, error) {
	title = strings.TrimSpace(title)
	isbn = strings.TrimSpace(isbn)
	if title == "" {
		return nil, apperr.New(apperr.ErrValidation, "book title cannot be empty")
	}
	if isbn == "" {
		return nil, apperr.New(apperr.ErrValidation, "isbn cannot be empty")
	}

	b := &model.Book{Title: title, Author: author, ISBN: isbn}
	if err := s.r.Create(ctx, b); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return nil, apperr.New(apperr.ErrConflict, "isbn already exists")
		}
		return nil, err
	}
	return b, nil
}

func (s *service) ByID(ctx context.Context, id int64) (*model.Book, error) {
	return mapNotFound(s.r.ByID(ctx, id))
}

// Update changes title/author/isbn only. Availability and borrower are owned
// by the lending engine and cannot be overwritten through a generic update.
func (s *service) Update(ctx context.Context, id int64, title, author, isbn string) (*model.Book, error) {
	title = strings.TrimSpace(title)
	isbn = strings.TrimSpace(isbn)
	if title == "" {
		return nil, apperr.New(apperr.ErrValidation, "book title cannot be empty")
	}
	if isbn == "" {
		return nil, apperr.New(apperr.ErrValidation, "isbn cannot be empty")
	}

	b, err := s.r.Update(ctx, id, title, author, isbn)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return nil, apperr.New(apperr.ErrConflict, "isbn already exists")
		}
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.New(apperr.ErrNotFound, "book not found")
		}
		return nil, err
	}
	return b, nil
}

func (s *service) Delete(ctx context.Context, id int64) error {
	if err := s.r.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return apperr.New(apperr.ErrNotFound, "book not found")
		}
		return err
	}
	return nil
}

func (s *service) List(ctx context.Context, limit, offset int) ([]model.Book, int64, error) {
	return s.r.List(ctx, limit, offset)
}

func (s *service) ByTitle(ctx context.Context, title string, limit, offset int) ([]model.Book, int64, error) {
	return s.r.ByTitle(ctx, title, limit, offset)
}

func (s *service) ByAuthor(ctx context.Context, author string, limit, offset int) ([]model.Book, int64, error) {
	return s.r.ByAuthor(ctx, author, limit, offset)
}

func (s *service) Available(ctx context.Context, limit, offset int) ([]model.Book, int64, error) {
	return s.r.Available(ctx, limit, offset)
}

func mapNotFound(b *model.Book, err error) (*model.Book, error) {
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.New(apperr.ErrNotFound, "book not found")
		}
		return nil, err
	}
	return b, nil
}
