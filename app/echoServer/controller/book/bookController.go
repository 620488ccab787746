// app/echoServer/controller/book/bookController.go
package book

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"libraryapi/apperr"
	"libraryapi/app/echoServer/authctx"
	"libraryapi/model"
	booksvc "libraryapi/service/book"
	lendingsvc "libraryapi/service/lending"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type Controller struct {
	Svc     booksvc.Service
	Lending lendingsvc.Service
	V       *validator.Validate
	Log     *slog.Logger
}

// POST /api/books (admin)
func (ct *Controller) Create(c echo.Context) error {
	var req BookReq
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if err := ct.V.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "validation error")
	}

	b, err := ct.Svc.Create(c.Request().Context(), req.Title, req.Author, req.ISBN)
	if err != nil {
		switch apperr.Code(err) {
		case apperr.ErrValidation:
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		case apperr.ErrConflict:
			return echo.NewHTTPError(http.StatusConflict, "isbn already exists")
		default:
			ct.Log.Error("book create error", "err", err)
			return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
		}
	}
	return c.JSON(http.StatusCreated, b)
}

// PUT /api/books/:id (admin). Only title/author/isbn can change here.
func (ct *Controller) Update(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req BookReq
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if err := ct.V.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "validation error")
	}
	if req.TouchesLending() {
		return echo.NewHTTPError(http.StatusBadRequest, "availability and borrower can only change through borrow and return")
	}

	b, err := ct.Svc.Update(c.Request().Context(), id, req.Title, req.Author, req.ISBN)
	if err != nil {
		switch apperr.Code(err) {
		case apperr.ErrNotFound:
			return echo.NewHTTPError(http.StatusNotFound, "book not found")
		case apperr.ErrValidation:
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		case apperr.ErrConflict:
			return echo.NewHTTPError(http.StatusConflict, "isbn already exists")
		default:
			ct.Log.Error("book update error", "err", err)
			return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
		}
	}
	return c.JSON(http.StatusOK, b)
}

// DELETE /api/books/:id (admin)
func (ct *Controller) Delete(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := ct.Svc.Delete(c.Request().Context(), id); err != nil {
		if apperr.Is(err, apperr.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "book not found")
		}
		ct.Log.Error("book delete error", "err", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	return c.NoContent(http.StatusNoContent)
}

// GET /api/books
func (ct *Controller) List(c echo.Context) error {
	return ct.paged(c, ct.Svc.List)
}

// GET /api/books/:id
func (ct *Controller) Detail(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	b, err := ct.Svc.ByID(c.Request().Context(), id)
	if err != nil {
		if apperr.Is(err, apperr.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "book not found")
		}
		ct.Log.Error("book detail error", "err", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	return c.JSON(http.StatusOK, b)
}

// GET /api/books/title/:title
func (ct *Controller) ByTitle(c echo.Context) error {
	title := c.Param("title")
	return ct.paged(c, func(ctx context.Context, limit, offset int) ([]model.Book, int64, error) {
		return ct.Svc.ByTitle(ctx, title, limit, offset)
	})
}

// GET /api/books/author/:author
func (ct *Controller) ByAuthor(c echo.Context) error {
	author := c.Param("author")
	return ct.paged(c, func(ctx context.Context, limit, offset int) ([]model.Book, int64, error) {
		return ct.Svc.ByAuthor(ctx, author, limit, offset)
	})
}

// GET /api/books/available
func (ct *Controller) Available(c echo.Context) error {
	return ct.paged(c, ct.Svc.Available)
}

// GET /api/books/borrowed (admin)
func (ct *Controller) Borrowed(c echo.Context) error {
	return ct.paged(c, ct.Lending.Borrowed)
}

// GET /api/books/borrowed/:userId (self or admin)
func (ct *Controller) BorrowedBy(c echo.Context) error {
	userID, err := strconv.ParseInt(c.Param("userId"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid user id")
	}
	return ct.paged(c, func(ctx context.Context, limit, offset int) ([]model.Book, int64, error) {
		return ct.Lending.BorrowedBy(ctx, userID, limit, offset)
	})
}

// POST /api/books/:id/borrow (any authenticated caller)
func (ct *Controller) Borrow(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	ident := authctx.User(c)
	if ident == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	b, err := ct.Lending.Borrow(c.Request().Context(), id, ident)
	if err != nil {
		switch apperr.Code(err) {
		case apperr.ErrNotFound:
			return echo.NewHTTPError(http.StatusNotFound, "book not found")
		case apperr.ErrConflict:
			// expected user error, not a fault
			return echo.NewHTTPError(http.StatusBadRequest, "book is already borrowed")
		default:
			ct.Log.Error("borrow error", "err", err, "book_id", id)
			return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
		}
	}
	return c.JSON(http.StatusOK, b)
}

// POST /api/books/:id/return (current borrower only)
//
// Ownership is decided here, once, before the lending engine runs: the
// engine itself does not re-check the borrower.
func (ct *Controller) Return(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	ident := authctx.User(c)
	if ident == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	b, err := ct.Lending.ByID(c.Request().Context(), id)
	if err != nil {
		if apperr.Is(err, apperr.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "book not found")
		}
		ct.Log.Error("return lookup error", "err", err, "book_id", id)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	if b.BorrowerID == nil || *b.BorrowerID != ident.ID {
		return echo.NewHTTPError(http.StatusForbidden, "you are not authorized to return this book")
	}

	returned, err := ct.Lending.Return(c.Request().Context(), id)
	if err != nil {
		switch apperr.Code(err) {
		case apperr.ErrNotFound:
			return echo.NewHTTPError(http.StatusNotFound, "book not found")
		case apperr.ErrConflict:
			return echo.NewHTTPError(http.StatusBadRequest, "book is not currently borrowed")
		default:
			ct.Log.Error("return error", "err", err, "book_id", id)
			return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
		}
	}
	return c.JSON(http.StatusOK, returned)
}

func (ct *Controller) paged(c echo.Context, query func(ctx context.Context, limit, offset int) ([]model.Book, int64, error)) error {
	page, size, err := pageQuery(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid pagination parameters")
	}

	books, total, err := query(c.Request().Context(), size, page*size)
	if err != nil {
		ct.Log.Error("book query error", "err", err, "path", c.Path())
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	if len(books) == 0 {
		return c.NoContent(http.StatusNoContent)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"content":        books,
		"page":           page,
		"size":           size,
		"total_elements": total,
	})
}

func pathID(c echo.Context) (int64, error) {
	return strconv.ParseInt(c.Param("id"), 10, 64)
}

func pageQuery(c echo.Context) (page, size int, err error) {
	page, size = 0, 10
	if v := c.QueryParam("page"); v != "" {
		if page, err = strconv.Atoi(v); err != nil || page < 0 {
			return 0, 0, echo.ErrBadRequest
		}
	}
	if v := c.QueryParam("size"); v != "" {
		if size, err = strconv.Atoi(v); err != nil || size <= 0 {
			return 0, 0, echo.ErrBadRequest
		}
	}
	return page, size, nil
}
