package authsvc

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"libraryapi/apperr"
	"libraryapi/model"
	userrepo "libraryapi/repository/user"
	"libraryapi/util/hash"
	jwtutil "libraryapi/util/jwt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
)

// Service is the authenticator: it registers identities, trades credentials
// for bearer tokens, and turns an incoming token back into a live identity.
type Service interface {
	Register(ctx context.Context, req model.RegisterReq) (*model.User, error)
	Verify(ctx context.Context, req model.LoginReq) (string, error)
	Resolve(ctx context.Context, token string) (*model.User, error)
}

type service struct {
	ur     userrepo.Repo
	secret string
	ttl    time.Duration
}

func New(ur userrepo.Repo, secret string, ttl time.Duration) Service {
	return &service{ur: ur, secret: secret, ttl: ttl}
}

func (s *service) Register(ctx context.Context, req model.RegisterReq) (*model.User, error) {
	username := strings.TrimSpace(req.Username)
	if username == "" || req.Password == "" {
		return nil, apperr.New(apperr.ErrValidation, "username and password are required")
	}
	if len(req.Roles) == 0 {
		return nil, apperr.New(apperr.ErrValidation, "at least one role is required")
	}
	for _, r := range req.Roles {
		if !r.Valid() {
			return nil, apperr.New(apperr.ErrValidation, "unknown role: "+string(r))
		}
	}

	hashed, err := hash.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	u := &model.User{
		Username:     username,
		PasswordHash: hashed,
		Enabled:      true,
		Expired:      false,
		Roles:        req.Roles,
	}
	if err := s.ur.Create(ctx, u); err != nil {
		if isUniqueViolation(err) {
			return nil, apperr.New(apperr.ErrConflict, "username already taken")
		}
		return nil, err
	}
	return u, nil
}

func (s *service) Verify(ctx context.Context, req model.LoginReq) (string, error) {
	u, err := s.ur.ByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", apperr.New(apperr.ErrNotFound, "user not found")
		}
		return "", err
	}
	if !hash.Check(u.PasswordHash, req.Password) {
		return "", apperr.New(apperr.ErrAuthentication, "invalid credentials")
	}
	if !u.Enabled {
		return "", apperr.New(apperr.ErrLocked, "account is disabled")
	}
	if u.Expired {
		return "", apperr.New(apperr.ErrExpired, "account is expired")
	}
	return jwtutil.Issue(s.secret, u.Username, s.ttl)
}

// Resolve validates the token, then re-reads the subject from the store.
// The re-read is deliberate: roles and the enabled/expired flags come from
// the current record, never from the token, so a role change or disablement
// is effective on the very next request.
func (s *service) Resolve(ctx context.Context, token string) (*model.User, error) {
	sub, err := jwtutil.ParseSubject(token, s.secret)
	if err != nil {
		return nil, apperr.New(apperr.ErrInvalidToken, "invalid or expired token")
	}

	u, err := s.ur.ByUsername(ctx, sub)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.New(apperr.ErrNotFound, "token subject no longer exists")
		}
		return nil, err
	}
	if !u.Enabled {
		return nil, apperr.New(apperr.ErrLocked, "account is disabled")
	}
	if u.Expired {
		return nil, apperr.New(apperr.ErrExpired, "account is expired")
	}
	return u, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}
