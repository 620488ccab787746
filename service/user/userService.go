package usersvc

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"libraryapi/apperr"
	"libraryapi/model"
	userrepo "libraryapi/repository/user"
	"libraryapi/util/hash"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
)

type Service interface {
	List(ctx context.Context, limit, offset int) ([]model.User, int64, error)
	Search(ctx context.Context, name string, limit, offset int) ([]model.User, int64, error)
	ByID(ctx context.Context, id int64) (*model.User, error)
	ByUsername(ctx context.Context, username string) (*model.User, error)
	Rename(ctx context.Context, id int64, username string) (*model.User, error)
	ChangePassword(ctx context.Context, id int64, password string) error
	SetEnabled(ctx context.Context, id int64, enabled bool) (*model.User, error)
	Expire(ctx context.Context, id int64) (*model.User, error)
	Delete(ctx context.Context, id int64) error
}

type service struct{ ur userrepo.Repo }

func New(ur userrepo.Repo) Service { return &service{ur: ur} }

func (s *service) List(ctx context.Context, limit, offset int) ([]model.User, int64, error) {
	return s.ur.List(ctx, limit, offset)
}

func (s *service) Search(ctx context.Context, name string, limit, offset int) ([]model.User, int64, error) {
	if strings.TrimSpace(name) == "" {
		return nil, 0, apperr.New(apperr.ErrValidation, "search name cannot be empty")
	}
	return s.ur.SearchByUsername(ctx, name, limit, offset)
}

func (s *service) ByID(ctx context.Context, id int64) (*model.User, error) {
	return s.mapNotFound(s.ur.ByID(ctx, id))
}

func (s *service) ByUsername(ctx context.Context, username string) (*model.User, error) {
	return s.mapNotFound(s.ur.ByUsername(ctx, username))
}

func (s *service) Rename(ctx context.Context, id int64, username string) (*model.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, apperr.New(apperr.ErrValidation, "username cannot be empty")
	}
	if err := s.ur.UpdateUsername(ctx, id, username); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return nil, apperr.New(apperr.ErrConflict, "username already exists")
		}
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.New(apperr.ErrNotFound, "user not found")
		}
		return nil, err
	}
	return s.mapNotFound(s.ur.ByID(ctx, id))
}

func (s *service) ChangePassword(ctx context.Context, id int64, password string) error {
	if strings.TrimSpace(password) == "" {
		return apperr.New(apperr.ErrValidation, "new password must not be empty")
	}
	hashed, err := hash.HashPassword(password)
	if err != nil {
		return err
	}
	if err := s.ur.UpdatePassword(ctx, id, hashed); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return apperr.New(apperr.ErrNotFound, "user not found")
		}
		return err
	}
	return nil
}

func (s *service) SetEnabled(ctx context.Context, id int64, enabled bool) (*model.User, error) {
	if err := s.ur.SetEnabled(ctx, id, enabled); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.New(apperr.ErrNotFound, "user not found")
		}
		return nil, err
	}
	return s.mapNotFound(s.ur.ByID(ctx, id))
}

func (s *service) Expire(ctx context.Context, id int64) (*model.User, error) {
	if err := s.ur.SetExpired(ctx, id, true); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.New(apperr.ErrNotFound, "user not found")
		}
		return nil, err
	}
	return s.mapNotFound(s.ur.ByID(ctx, id))
}

func (s *service) Delete(ctx context.Context, id int64) error {
	if err := s.ur.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return apperr.New(apperr.ErrNotFound, "user not found")
		}
		return err
	}
	return nil
}

func (s *service) mapNotFound(u *model.User, err error) (*model.User, error) {
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.New(apperr.ErrNotFound, "user not found")
		}
		return nil, err
	}
	return u, nil
}
