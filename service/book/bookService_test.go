package booksvc

import (
	"context"
	"database/sql"
	"testing"

	"libraryapi/apperr"
	"libraryapi/model"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
)

type mockRepo struct {
	createFn func(ctx context.Context, b *model.Book) error
	byIDFn   func(ctx context.Context, id int64) (*model.Book, error)
	updateFn func(ctx context.Context, id int64, title, author, isbn string) (*model.Book, error)
	deleteFn func(ctx context.Context, id int64) error
}

var _ Repo = (*mockRepo)(nil)

func (m *mockRepo) Create(ctx context.Context, b *model.Book) error { return m.createFn(ctx, b) }

func (m *mockRepo) ByID(ctx context.Context, id int64) (*model.Book, error) {
	return m.byIDFn(ctx, id)
}

func (m *mockRepo) Update(ctx context.Context, id int64, title, author, isbn string) (*model.Book, error) {
	return m.updateFn(ctx, id, title, author, isbn)
}

func (m *mockRepo) Delete(ctx context.Context, id int64) error { return m.deleteFn(ctx, id) }

func (m *mockRepo) List(ctx context.Context, limit, offset int) ([]model.Book, int64, error) {
	return nil, 0, nil
}

func (m *mockRepo) ByTitle(ctx context.Context, title string, limit, offset int) ([]model.Book, int64, error) {
	return nil, 0, nil
}

func (m *mockRepo) ByAuthor(ctx context.Context, author string, limit, offset int) ([]model.Book, int64, error) {
	return nil, 0, nil
}

func (m *mockRepo) Available(ctx context.Context, limit, offset int) ([]model.Book, int64, error) {
	return nil, 0, nil
}

func TestCreate(t *testing.T) {
	m := &mockRepo{
		createFn: func(ctx context.Context, b *model.Book) error {
			b.ID = 11
			return nil
		},
	}
	svc := New(m)

	b, err := svc.Create(context.Background(), "  Dune  ", "Frank Herbert", " 9780441013593 ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b.ID != 11 {
		t.Errorf("expected id 11, got %d", b.ID)
	}
	if b.Title != "Dune" || b.ISBN != "9780441013593" {
		t.Errorf("expected trimmed fields, got %q %q", b.Title, b.ISBN)
	}
	if b.BorrowerID != nil {
		t.Error("new book must not have a borrower")
	}
}

func TestCreate_EmptyTitle(t *testing.T) {
	svc := New(&mockRepo{})

	_, err := svc.Create(context.Background(), "   ", "Frank Herbert", "9780441013593")
	if apperr.Code(err) != apperr.ErrValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCreate_DuplicateISBN(t *testing.T) {
	m := &mockRepo{
		createFn: func(ctx context.Context, b *model.Book) error {
			return &pgconn.PgError{Code: pgerrcode.UniqueViolation}
		},
	}
	svc := New(m)

	_, err := svc.Create(context.Background(), "Dune", "Frank Herbert", "9780441013593")
	if apperr.Code(err) != apperr.ErrConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestUpdate_LeavesLendingStateAlone(t *testing.T) {
	borrower := int64(5)
	m := &mockRepo{
		updateFn: func(ctx context.Context, id int64, title, author, isbn string) (*model.Book, error) {
			// the repo query only touches descriptive columns
			return &model.Book{ID: id, Title: title, Author: author, ISBN: isbn, Available: false, BorrowerID: &borrower}, nil
		},
	}
	svc := New(m)

	b, err := svc.Update(context.Background(), 3, "Dune Messiah", "Frank Herbert", "9780441172696")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b.Available || b.BorrowerID == nil || *b.BorrowerID != 5 {
		t.Errorf("update must not change availability or borrower, got %+v", b)
	}
}

func TestUpdate_NotFound(t *testing.T) {
	m := &mockRepo{
		updateFn: func(ctx context.Context, id int64, title, author, isbn string) (*model.Book, error) {
			return nil, sql.ErrNoRows
		},
	}
	svc := New(m)

	_, err := svc.Update(context.Background(), 404, "Dune", "Frank Herbert", "9780441013593")
	if apperr.Code(err) != apperr.ErrNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestDelete_NotFound(t *testing.T) {
	m := &mockRepo{
		deleteFn: func(ctx context.Context, id int64) error { return sql.ErrNoRows },
	}
	svc := New(m)

	err := svc.Delete(context.Background(), 404)
	if apperr.Code(err) != apperr.ErrNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}
