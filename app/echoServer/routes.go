package echoServer

import (
	"log/slog"

	"libraryapi/app/echoServer/controller/auth"
	"libraryapi/app/echoServer/controller/book"
	"libraryapi/app/echoServer/controller/user"
	authsvc "libraryapi/service/auth"

	"github.com/labstack/echo/v4"
)

type C struct {
	Auth *auth.Controller
	User *user.Controller
	Book *book.Controller

	AuthSvc authsvc.Service
	Log     *slog.Logger
}

// Register wires every route behind the request guard. The guard runs on
// every request, including the public ones: rejection is the policy's call,
// not the token extractor's.
func Register(e *echo.Echo, c C) {
	e.Use(RequestGuard(c.AuthSvc, c.Log))

	// Auth
	e.POST("/auth/login", c.Auth.Login)
	e.POST("/auth/register", c.Auth.Register)

	// Users
	e.GET("/users", c.User.List)
	e.GET("/users/user", c.User.Get)
	e.GET("/users/user/current", c.User.Current)
	e.GET("/users/search", c.User.Search)
	e.PUT("/users/:id/updateName", c.User.UpdateName)
	e.PATCH("/users/:id/password", c.User.UpdatePassword)
	e.PATCH("/users/:id/disable", c.User.Disable)
	e.PATCH("/users/:id/enable", c.User.Enable)
	e.PATCH("/users/:id/expire", c.User.Expire)
	e.DELETE("/users/:id", c.User.Delete)

	// Books
	e.GET("/api/books", c.Book.List)
	e.GET("/api/books/available", c.Book.Available)
	e.GET("/api/books/borrowed", c.Book.Borrowed)
	e.GET("/api/books/borrowed/:userId", c.Book.BorrowedBy)
	e.GET("/api/books/title/:title", c.Book.ByTitle)
	e.GET("/api/books/author/:author", c.Book.ByAuthor)
	e.GET("/api/books/:id", c.Book.Detail)
	e.POST("/api/books", c.Book.Create)
	e.PUT("/api/books/:id", c.Book.Update)
	e.DELETE("/api/books/:id", c.Book.Delete)

	// Lending
	e.POST("/api/books/:id/borrow", c.Book.Borrow)
	e.POST("/api/books/:id/return", c.Book.Return)
}
