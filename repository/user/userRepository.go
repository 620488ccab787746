package userrepo

import (
	"context"
	"database/sql"

	"libraryapi/model"
)

type Repo interface {
	Create(ctx context.Context, u *model.User) error
	ByUsername(ctx context.Context, username string) (*model.User, error)
	ByID(ctx context.Context, id int64) (*model.User, error)
	List(ctx context.Context, limit, offset int) ([]model.User, int64, error)
	SearchByUsername(ctx context.Context, name string, limit, offset int) ([]model.User, int64, error)
	UpdateUsername(ctx context.Context, id int64, username string) error
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error
	SetEnabled(ctx context.Context, id int64, enabled bool) error
	SetExpired(ctx context.Context, id int64, expired bool) error
	Delete(ctx context.Context, id int64) error
	Count(ctx context.Context) (int64, error)
}

type repo struct{ db *sql.DB }

func New(db *sql.DB) Repo { return &repo{db: db} }

func (r *repo) Create(ctx context.Context, u *model.User) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	const q = `
		INSERT INTO users (username, password_hash, enabled, expired)
		VALUES ($1, $2, $3, $4)
		RETURNING id`
	if err = tx.QueryRowContext(ctx, q, u.Username, u.PasswordHash, u.Enabled, u.Expired).Scan(&u.ID); err != nil {
		return err
	}

	const ins = `INSERT INTO user_roles (user_id, role) VALUES ($1, $2)`
	for _, role := range u.Roles {
		if _, err = tx.ExecContext(ctx, ins, u.ID, string(role)); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (r *repo) ByUsername(ctx context.Context, username string) (*model.User, error) {
	const q = `
		SELECT id, username, password_hash, enabled, expired
		FROM users
		WHERE username = $1`
	return r.one(ctx, q, username)
}

func (r *repo) ByID(ctx context.Context, id int64) (*model.User, error) {
	const q = `
		SELECT id, username, password_hash, enabled, expired
		FROM users
		WHERE id = $1`
	return r.one(ctx, q, id)
}

func (r *repo) one(ctx context.Context, q string, arg any) (*model.User, error) {
	u := &model.User{}
	err := r.db.QueryRowContext(ctx, q, arg).
		Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Enabled, &u.Expired)
	if err != nil {
		return nil, err
	}
	if u.Roles, err = r.roles(ctx, u.ID); err != nil {
		return nil, err
	}
	return u, nil
}

func (r *repo) roles(ctx context.Context, userID int64) ([]model.Role, error) {
	const q = `SELECT role FROM user_roles WHERE user_id = $1 ORDER BY role`
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Role
	for rows.Next() {
		var role string
		if err := rows.Scan(&role); err != nil {
			return nil, err
		}
		out = append(out, model.Role(role))
	}
	return out, rows.Err()
}

func (r *repo) List(ctx context.Context, limit, offset int) ([]model.User, int64, error) {
	// Page the users first, then join roles, so the limit counts users and
	// not join rows.
	const q = `
		SELECT u.id, u.username, u.password_hash, u.enabled, u.expired, ur.role
		FROM (
			SELECT id, username, password_hash, enabled, expired
			FROM users
			ORDER BY username ASC
			LIMIT $1 OFFSET $2
		) u
		LEFT JOIN user_roles ur ON ur.user_id = u.id
		ORDER BY u.username ASC, u.id, ur.role`
	const c = `SELECT count(*) FROM users`
	return r.paged(ctx, q, c, nil, limit, offset)
}

func (r *repo) SearchByUsername(ctx context.Context, name string, limit, offset int) ([]model.User, int64, error) {
	const q = `
		SELECT u.id, u.username, u.password_hash, u.enabled, u.expired, ur.role
		FROM (
			SELECT id, username, password_hash, enabled, expired
			FROM users
			WHERE username ILIKE '%' || $1 || '%'
			ORDER BY username ASC
			LIMIT $2 OFFSET $3
		) u
		LEFT JOIN user_roles ur ON ur.user_id = u.id
		ORDER BY u.username ASC, u.id, ur.role`
	const c = `SELECT count(*) FROM users WHERE username ILIKE '%' || $1 || '%'`
	return r.paged(ctx, q, c, []any{name}, limit, offset)
}

// paged runs the windowed user+role join and merges the role rows into users.
func (r *repo) paged(ctx context.Context, q, countQ string, args []any, limit, offset int) ([]model.User, int64, error) {
	var total int64
	if err := r.db.QueryRowContext(ctx, countQ, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.db.QueryContext(ctx, q, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var merged []model.User
	for rows.Next() {
		var u model.User
		var role sql.NullString
		if err := rows.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Enabled, &u.Expired, &role); err != nil {
			return nil, 0, err
		}
		n := len(merged)
		if n > 0 && merged[n-1].ID == u.ID {
			if role.Valid {
				merged[n-1].Roles = append(merged[n-1].Roles, model.Role(role.String))
			}
			continue
		}
		if role.Valid {
			u.Roles = []model.Role{model.Role(role.String)}
		}
		merged = append(merged, u)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return merged, total, nil
}

func (r *repo) UpdateUsername(ctx context.Context, id int64, username string) error {
	const q = `UPDATE users SET username = $2 WHERE id = $1`
	return r.exec(ctx, q, id, username)
}

func (r *repo) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	const q = `UPDATE users SET password_hash = $2 WHERE id = $1`
	return r.exec(ctx, q, id, passwordHash)
}

func (r *repo) SetEnabled(ctx context.Context, id int64, enabled bool) error {
	const q = `UPDATE users SET enabled = $2 WHERE id = $1`
	return r.exec(ctx, q, id, enabled)
}

func (r *repo) SetExpired(ctx context.Context, id int64, expired bool) error {
	const q = `UPDATE users SET expired = $2 WHERE id = $1`
	return r.exec(ctx, q, id, expired)
}

func (r *repo) exec(ctx context.Context, q string, args ...any) error {
	res, err := r.db.ExecContext(ctx, q, args...)
	if err != nil {
		return err
	}
	aff, _ := res.RowsAffected()
	if aff == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes the user and hands back any book they still hold, in one
// transaction so no book is left pointing at a missing borrower.
func (r *repo) Delete(ctx context.Context, id int64) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	const release = `
		UPDATE books
		SET available = TRUE, borrower_id = NULL
		WHERE borrower_id = $1`
	if _, err = tx.ExecContext(ctx, release, id); err != nil {
		return err
	}

	if _, err = tx.ExecContext(ctx, `DELETE FROM user_roles WHERE user_id = $1`, id); err != nil {
		return err
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return err
	}
	aff, _ := res.RowsAffected()
	if aff == 0 {
		err = sql.ErrNoRows
		return err
	}
	return tx.Commit()
}

func (r *repo) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx, `SELECT count(*) FROM users`).Scan(&n)
	return n, err
}
