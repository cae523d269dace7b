package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/roamio/tours-api/internal/domain"
	"github.com/roamio/tours-api/internal/listing"
)

type UsersRepo interface {
	Create(ctx context.Context, req *domain.SignupRequest, passwordHash string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id int64) (*domain.User, error)
	FindAll(ctx context.Context, q listing.Query) ([]domain.User, error)
	UpdateSelf(ctx context.Context, id int64, req *domain.UpdateSelfRequest) (*domain.User, error)
	UpdateByID(ctx context.Context, id int64, patch *domain.UpdateUserRequest) (*domain.User, error)
	// DeleteByID soft-deletes: accounts are deactivated, never removed.
	DeleteByID(ctx context.Context, id int64) error
	SetPassword(ctx context.Context, id int64, passwordHash string) error
	SetResetToken(ctx context.Context, id int64, tokenHash string, expires time.Time) error
	ClearResetToken(ctx context.Context, id int64) error
	FindByResetToken(ctx context.Context, tokenHash string) (*domain.User, error)
}

const userCols = `id, name, email, password_hash, role, password_changed_at,
	reset_token_hash, reset_token_expires, active, created_at, updated_at`

var userListCols = map[string]string{
	"name":       "name",
	"email":      "email",
	"role":       "role",
	"created_at": "created_at",
}

type UsersRepoImpl struct{ pool *pgxpool.Pool }

func NewUsersRepo(pool *pgxpool.Pool) *UsersRepoImpl { return &UsersRepoImpl{pool: pool} }

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*domain.User, error) {
	var u domain.User
	var resetHash *string
	if err := row.Scan(
		&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.PasswordChangedAt,
		&resetHash, &u.ResetTokenExpires, &u.Active, &u.CreatedAt, &u.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if resetHash != nil {
		u.ResetTokenHash = *resetHash
	}
	return &u, nil
}

func (r *UsersRepoImpl) Create(ctx context.Context, req *domain.SignupRequest, passwordHash string) (*domain.User, error) {
	q := `
INSERT INTO users (name, email, password_hash, password_changed_at)
VALUES ($1, lower($2), $3, now() - interval '1 second')
RETURNING ` + userCols
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	u, err := scanUser(r.pool.QueryRow(ctx, q, req.Name, req.Email, passwordHash))
	return u, classify(err, "user")
}

func (r *UsersRepoImpl) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	q := `SELECT ` + userCols + ` FROM users WHERE email = lower($1) AND active`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	u, err := scanUser(r.pool.QueryRow(ctx, q, email))
	return u, classify(err, "user")
}

func (r *UsersRepoImpl) FindByID(ctx context.Context, id int64) (*domain.User, error) {
	q := `SELECT ` + userCols + ` FROM users WHERE id = $1 AND active`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	u, err := scanUser(r.pool.QueryRow(ctx, q, id))
	return u, classify(err, "user")
}

func (r *UsersRepoImpl) FindAll(ctx context.Context, lq listing.Query) ([]domain.User, error) {
	q, args := listSQL(`SELECT `+userCols+` FROM users`, "active", userListCols, lq, "id ASC")
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, classify(err, "user")
	}
	defer rows.Close()

	users := []domain.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, classify(err, "user")
		}
		users = append(users, *u)
	}
	return users, classify(rows.Err(), "user")
}

func (r *UsersRepoImpl) UpdateSelf(ctx context.Context, id int64, req *domain.UpdateSelfRequest) (*domain.User, error) {
	sets, args := []string{}, []any{id}
	if req.Name != nil {
		args = append(args, *req.Name)
		sets = append(sets, fmt.Sprintf("name = $%d", len(args)))
	}
	if req.Email != nil {
		args = append(args, *req.Email)
		sets = append(sets, fmt.Sprintf("email = lower($%d)", len(args)))
	}
	if len(sets) == 0 {
		return r.FindByID(ctx, id)
	}
	return r.update(ctx, sets, args)
}

func (r *UsersRepoImpl) UpdateByID(ctx context.Context, id int64, patch *domain.UpdateUserRequest) (*domain.User, error) {
	sets, args := []string{}, []any{id}
	if patch.Name != nil {
		args = append(args, *patch.Name)
		sets = append(sets, fmt.Sprintf("name = $%d", len(args)))
	}
	if patch.Email != nil {
		args = append(args, *patch.Email)
		sets = append(sets, fmt.Sprintf("email = lower($%d)", len(args)))
	}
	if patch.Role != nil {
		args = append(args, *patch.Role)
		sets = append(sets, fmt.Sprintf("role = $%d", len(args)))
	}
	if patch.Active != nil {
		args = append(args, *patch.Active)
		sets = append(sets, fmt.Sprintf("active = $%d", len(args)))
	}
	if len(sets) == 0 {
		return r.FindByID(ctx, id)
	}
	return r.update(ctx, sets, args)
}

func (r *UsersRepoImpl) update(ctx context.Context, sets []string, args []any) (*domain.User, error) {
	q := `UPDATE users SET ` + strings.Join(sets, ", ") + `, updated_at = now()
WHERE id = $1 RETURNING ` + userCols
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	u, err := scanUser(r.pool.QueryRow(ctx, q, args...))
	return u, classify(err, "user")
}

func (r *UsersRepoImpl) DeleteByID(ctx context.Context, id int64) error {
	const q = `UPDATE users SET active = FALSE, updated_at = now() WHERE id = $1 AND active`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	tag, err := r.pool.Exec(ctx, q, id)
	if err != nil {
		return classify(err, "user")
	}
	if tag.RowsAffected() == 0 {
		return classify(pgx.ErrNoRows, "user")
	}
	return nil
}

// SetPassword installs a new hash, invalidating outstanding session tokens
// and any pending reset token. The one second rewind keeps a token issued in
// the same instant valid.
func (r *UsersRepoImpl) SetPassword(ctx context.Context, id int64, passwordHash string) error {
	const q = `
UPDATE users SET password_hash = $2,
	password_changed_at = now() - interval '1 second',
	reset_token_hash = NULL,
	reset_token_expires = NULL,
	updated_at = now()
WHERE id = $1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	tag, err := r.pool.Exec(ctx, q, id, passwordHash)
	if err != nil {
		return classify(err, "user")
	}
	if tag.RowsAffected() == 0 {
		return classify(pgx.ErrNoRows, "user")
	}
	return nil
}

func (r *UsersRepoImpl) SetResetToken(ctx context.Context, id int64, tokenHash string, expires time.Time) error {
	const q = `
UPDATE users SET reset_token_hash = $2, reset_token_expires = $3, updated_at = now()
WHERE id = $1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	_, err := r.pool.Exec(ctx, q, id, tokenHash, expires)
	return classify(err, "user")
}

func (r *UsersRepoImpl) ClearResetToken(ctx context.Context, id int64) error {
	const q = `
UPDATE users SET reset_token_hash = NULL, reset_token_expires = NULL, updated_at = now()
WHERE id = $1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	_, err := r.pool.Exec(ctx, q, id)
	return classify(err, "user")
}

func (r *UsersRepoImpl) FindByResetToken(ctx context.Context, tokenHash string) (*domain.User, error) {
	q := `SELECT ` + userCols + ` FROM users
WHERE reset_token_hash = $1 AND reset_token_expires > now() AND active`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	u, err := scanUser(r.pool.QueryRow(ctx, q, tokenHash))
	return u, classify(err, "user")
}
