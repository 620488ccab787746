package bookrepo

import (
	"context"
	"database/sql"

	"libraryapi/apperr"
	"libraryapi/model"
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
	Borrowed(ctx context.Context, limit, offset int) ([]model.Book, int64, error)
	BorrowedBy(ctx context.Context, userID int64, limit, offset int) ([]model.Book, int64, error)

	// Borrow and Return are single-transaction read-modify-writes holding a
	// row lock on the book, so two concurrent borrows of the same id can
	// never both see available = TRUE.
	Borrow(ctx context.Context, bookID, borrowerID int64) (*model.Book, error)
	Return(ctx context.Context, bookID int64) (*model.Book, error)
}

type repo struct{ db *sql.DB }

func New(db *sql.DB) Repo { return &repo{db: db} }

const bookCols = `id, title, author, isbn, available, borrower_id`

func (r *repo) Create(ctx context.Context, b *model.Book) error {
	const q = `
		INSERT INTO books (title, author, isbn, available)
		VALUES ($1, $2, $3, TRUE)
		RETURNING id`
	if err := r.db.QueryRowContext(ctx, q, b.Title, b.Author, b.ISBN).Scan(&b.ID); err != nil {
		return err
	}
	b.Available = true
	b.BorrowerID = nil
	return nil
}

func (r *repo) ByID(ctx context.Context, id int64) (*model.Book, error) {
	const q = `SELECT ` + bookCols + ` FROM books WHERE id = $1`
	return scanBook(r.db.QueryRowContext(ctx, q, id))
}

// Update touches only the descriptive fields. Availability and borrower move
// exclusively through Borrow/Return.
func (r *repo) Update(ctx context.Context, id int64, title, author, isbn string) (*model.Book, error) {
	const q = `
		UPDATE books
		SET title = $2, author = $3, isbn = $4
		WHERE id = $1
		RETURNING ` + bookCols
	return scanBook(r.db.QueryRowContext(ctx, q, id, title, author, isbn))
}

func (r *repo) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM books WHERE id = $1`, id)
	if err != nil {
		return err
	}
	aff, _ := res.RowsAffected()
	if aff == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *repo) List(ctx context.Context, limit, offset int) ([]model.Book, int64, error) {
	const q = `SELECT ` + bookCols + ` FROM books ORDER BY title ASC, id LIMIT $1 OFFSET $2`
	const c = `SELECT count(*) FROM books`
	return r.paged(ctx, q, c, nil, limit, offset)
}

func (r *repo) ByTitle(ctx context.Context, title string, limit, offset int) ([]model.Book, int64, error) {
	const q = `
		SELECT ` + bookCols + ` FROM books
		WHERE title ILIKE '%' || $1 || '%'
		ORDER BY title ASC, id LIMIT $2 OFFSET $3`
	const c = `SELECT count(*) FROM books WHERE title ILIKE '%' || $1 || '%'`
	return r.paged(ctx, q, c, []any{title}, limit, offset)
}

func (r *repo) ByAuthor(ctx context.Context, author string, limit, offset int) ([]model.Book, int64, error) {
	const q = `
		SELECT ` + bookCols + ` FROM books
		WHERE author ILIKE '%' || $1 || '%'
		ORDER BY title ASC, id LIMIT $2 OFFSET $3`
	const c = `SELECT count(*) FROM books WHERE author ILIKE '%' || $1 || '%'`
	return r.paged(ctx, q, c, []any{author}, limit, offset)
}

func (r *repo) Available(ctx context.Context, limit, offset int) ([]model.Book, int64, error) {
	const q = `SELECT ` + bookCols + ` FROM books WHERE available ORDER BY title ASC, id LIMIT $1 OFFSET $2`
	const c = `SELECT count(*) FROM books WHERE available`
	return r.paged(ctx, q, c, nil, limit, offset)
}

func (r *repo) Borrowed(ctx context.Context, limit, offset int) ([]model.Book, int64, error) {
	const q = `SELECT ` + bookCols + ` FROM books WHERE NOT available ORDER BY title ASC, id LIMIT $1 OFFSET $2`
	const c = `SELECT count(*) FROM books WHERE NOT available`
	return r.paged(ctx, q, c, nil, limit, offset)
}

func (r *repo) BorrowedBy(ctx context.Context, userID int64, limit, offset int) ([]model.Book, int64, error) {
	const q = `
		SELECT ` + bookCols + ` FROM books
		WHERE NOT available AND borrower_id = $1
		ORDER BY title ASC, id LIMIT $2 OFFSET $3`
	const c = `SELECT count(*) FROM books WHERE NOT available AND borrower_id = $1`
	return r.paged(ctx, q, c, []any{userID}, limit, offset)
}

func (r *repo) Borrow(ctx context.Context, bookID, borrowerID int64) (b *model.Book, err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var available bool
	const lock = `SELECT available FROM books WHERE id = $1 FOR UPDATE`
	if err = tx.QueryRowContext(ctx, lock, bookID).Scan(&available); err != nil {
		return nil, err
	}
	if !available {
		err = apperr.New(apperr.ErrConflict, "book is already borrowed")
		return nil, err
	}

	const q = `
		UPDATE books
		SET available = FALSE, borrower_id = $2
		WHERE id = $1
		RETURNING ` + bookCols
	if b, err = scanBook(tx.QueryRowContext(ctx, q, bookID, borrowerID)); err != nil {
		return nil, err
	}
	if err = tx.Commit(); err != nil {
		return nil, err
	}
	return b, nil
}

func (r *repo) Return(ctx context.Context, bookID int64) (b *model.Book, err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var available bool
	const lock = `SELECT available FROM books WHERE id = $1 FOR UPDATE`
	if err = tx.QueryRowContext(ctx, lock, bookID).Scan(&available); err != nil {
		return nil, err
	}
	if available {
		err = apperr.New(apperr.ErrConflict, "book is not currently borrowed")
		return nil, err
	}

	const q = `
		UPDATE books
		SET available = TRUE, borrower_id = NULL
		WHERE id = $1
		RETURNING ` + bookCols
	if b, err = scanBook(tx.QueryRowContext(ctx, q, bookID)); err != nil {
		return nil, err
	}
	if err = tx.Commit(); err != nil {
		return nil, err
	}
	return b, nil
}

func (r *repo) paged(ctx context.Context, q, countQ string, args []any, limit, offset int) ([]model.Book, int64, error) {
	var total int64
	if err := r.db.QueryRowContext(ctx, countQ, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.db.QueryContext(ctx, q, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []model.Book
	for rows.Next() {
		var b model.Book
		if err := rows.Scan(&b.ID, &b.Title, &b.Author, &b.ISBN, &b.Available, &b.BorrowerID); err != nil {
			return nil, 0, err
		}
		out = append(out, b)
	}
	return out, total, rows.Err()
}

type rowScanner interface{ Scan(dest ...any) error }

func scanBook(row rowScanner) (*model.Book, error) {
	b := &model.Book{}
	if err := row.Scan(&b.ID, &b.Title, &b.Author, &b.ISBN, &b.Available, &b.BorrowerID); err != nil {
		return nil, err
	}
	return b, nil
}
