// Package main library API.
//
// @title           Library API
// @version         1.0
// @description     Library management service (auth, users, books, lending).
// @BasePath        /
// @schemes         http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description  Use:  Bearer <JWT>
package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"libraryapi/app/echoServer"
	authctrl "libraryapi/app/echoServer/controller/auth"
	bookctrl "libraryapi/app/echoServer/controller/book"
	userctrl "libraryapi/app/echoServer/controller/user"
	"libraryapi/app/echoServer/validation"
	"libraryapi/config"
	"libraryapi/model"
	bookrepo "libraryapi/repository/book"
	userrepo "libraryapi/repository/user"
	authsvc "libraryapi/service/auth"
	booksvc "libraryapi/service/book"
	lendingsvc "libraryapi/service/lending"
	usersvc "libraryapi/service/user"
	"libraryapi/util/database"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	echoSwagger "github.com/swaggo/echo-swagger"
)

func main() {

	cfg := config.Load()
	ctx := context.Background()

	// logger
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	// DB: *sql.DB
	db, err := database.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Error("db connect failed", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	// repos
	ur := userrepo.New(db)
	br := bookrepo.New(db)

	// services
	as := authsvc.New(ur, cfg.JWTSecret, time.Duration(cfg.TokenTTLHours)*time.Hour)
	us := usersvc.New(ur)
	bs := booksvc.New(br)
	ls := lendingsvc.New(br)

	if err := seedAdmin(ctx, log, ur, as, cfg); err != nil {
		log.Error("admin bootstrap failed", "err", err)
		os.Exit(1)
	}

	// controllers
	v := validator.New()
	authC := &authctrl.Controller{Svc: as, V: v, Log: log}
	userC := &userctrl.Controller{Svc: us, V: v, Log: log}
	bookC := &bookctrl.Controller{Svc: bs, Lending: ls, V: v, Log: log}

	// echo
	e := echo.New()
	echoServer.RegisterMiddlewares(e)
	e.Validator = validation.New()

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]any{
			"status":  "ok",
			"message": "Service is healthy and connected",
		})
	})

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	echoServer.Register(e, echoServer.C{
		Auth:    authC,
		User:    userC,
		Book:    bookC,
		AuthSvc: as,
		Log:     log,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.Port
	}
	if port == "" {
		port = "8080"
	}

	log.Info("starting server", "port", port, "env", cfg.Env)

	e.Logger.Fatal(e.Start(":" + port))
}

// seedAdmin registers the default admin account on an empty user table, so
// there is always one identity able to register everyone else.
func seedAdmin(ctx context.Context, log *slog.Logger, ur userrepo.Repo, as authsvc.Service, cfg config.App) error {
	n, err := ur.Count(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	_, err = as.Register(ctx, model.RegisterReq{
		Username: cfg.AdminUsername,
		Password: cfg.AdminPassword,
		Roles:    []model.Role{model.RoleAdmin, model.RoleUser},
	})
	if err != nil {
		return err
	}
	log.Info("seeded default admin account", "username", cfg.AdminUsername)
	return nil
}
