package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/inkwellhq/inkwell/internal/domain/entity"
	"github.com/inkwellhq/inkwell/internal/domain/repository"
)

const uniqueViolation = "23505"

// mapUniqueViolation translates a pg unique-constraint error into the domain
// error for the column it guards. This is what closes the check-then-insert
// race on email/username/slug.
func mapUniqueViolation(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != uniqueViolation {
		return err
	}
	switch pgErr.ConstraintName {
	case "users_email_key", "pending_users_email_key":
		return repository.ErrDuplicateEmail
	case "users_username_key":
		return repository.ErrDuplicateUsername
	case "short_urls_slug_key":
		return repository.ErrDuplicateSlug
	}
	return err
}

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

const userColumns = `
	id, email, COALESCE(password, ''), name, username, COALESCE(avatar_url, ''),
	provider, email_verified, COALESCE(verification_token, ''),
	COALESCE(verification_code, ''), code_expires_at, created_at, updated_at
`

func scanUser(row pgx.Row) (*entity.User, error) {
	u := &entity.User{}
	var codeExp *time.Time
	if err := row.Scan(&u.ID, &u.Email, &u.Password, &u.Name, &u.Username,
		&u.AvatarURL, &u.Provider, &u.EmailVerified, &u.VerificationToken,
		&u.VerificationCode, &codeExp, &u.CreatedAt, &u.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	if codeExp != nil {
		u.CodeExpiresAt = *codeExp
	}
	return u, nil
}

func (r *UserRepository) Create(ctx context.Context, u *entity.User) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO users (email, password, name, username, avatar_url, provider, email_verified, verification_token)
		VALUES ($1, NULLIF($2, ''), $3, $4, NULLIF($5, ''), $6, $7, NULLIF($8, ''))
		RETURNING id, created_at, updated_at
	`, u.Email, u.Password, u.Name, u.Username, u.AvatarURL, u.Provider, u.EmailVerified, u.VerificationToken)

	if err := row.Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return mapUniqueViolation(err)
	}
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	return scanUser(r.pool.QueryRow(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE id = $1
	`, id))
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	return scanUser(r.pool.QueryRow(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE email = $1
	`, email))
}

func (r *UserRepository) Update(ctx context.Context, u *entity.User) error {
	u.UpdatedAt = time.Now()

	res, err := r.pool.Exec(ctx, `
		UPDATE users
		SET email = $1, name = $2, username = $3, avatar_url = NULLIF($4, ''),
		    password = NULLIF($5, ''), email_verified = $6, updated_at = $7
		WHERE id = $8
	`, u.Email, u.Name, u.Username, u.AvatarURL, u.Password, u.EmailVerified, u.UpdatedAt, u.ID)
	if err != nil {
		return mapUniqueViolation(err)
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *UserRepository) Delete(ctx context.Context, id string) error {
	res, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *UserRepository) UsernameExists(ctx context.Context, username string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM users WHERE username = $1)`, username,
	).Scan(&exists)
	return exists, err
}

func (r *UserRepository) SetVerificationCode(ctx context.Context, id, code string, expiresAt time.Time) error {
	res, err := r.pool.Exec(ctx, `
		UPDATE users
		SET verification_code = $1, code_expires_at = $2, updated_at = now()
		WHERE id = $3
	`, code, expiresAt, id)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *UserRepository) GetByEmailAndCode(ctx context.Context, email, code string) (*entity.User, error) {
	return scanUser(r.pool.QueryRow(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE email = $1 AND verification_code = $2 AND code_expires_at > now()
	`, email, code))
}

func (r *UserRepository) ClearVerificationCode(ctx context.Context, id string) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE users
		SET verification_code = NULL, code_expires_at = NULL, updated_at = now()
		WHERE id = $1
	`, id)
	return err
}

func (r *UserRepository) VerifyEmailByToken(ctx context.Context, token string) error {
	res, err := r.pool.Exec(ctx, `
		UPDATE users
		SET email_verified = true, verification_token = NULL, updated_at = now()
		WHERE verification_token = $1
	`, token)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

var _ repository.UserRepository = (*UserRepository)(nil)

type PendingUserRepository struct {
	pool *pgxpool.Pool
}

func NewPendingUserRepository(pool *pgxpool.Pool) *PendingUserRepository {
	return &PendingUserRepository{pool: pool}
}

func (r *PendingUserRepository) Upsert(ctx context.Context, p *entity.PendingUser) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO pending_users (email, verification_code, code_expires_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (email) DO UPDATE
		SET verification_code = EXCLUDED.verification_code,
		    code_expires_at = EXCLUDED.code_expires_at,
		    verified = false,
		    updated_at = now()
		RETURNING id, created_at, updated_at
	`, p.Email, p.VerificationCode, p.CodeExpiresAt)
	return row.Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
}

func (r *PendingUserRepository) GetByEmail(ctx context.Context, email string) (*entity.PendingUser, error) {
	p := &entity.PendingUser{}
	var codeExp *time.Time
	row := r.pool.QueryRow(ctx, `
		SELECT id, email, COALESCE(verification_code, ''), code_expires_at, verified, created_at, updated_at
		FROM pending_users
		WHERE email = $1
	`, email)
	if err := row.Scan(&p.ID, &p.Email, &p.VerificationCode, &codeExp, &p.Verified, &p.CreatedAt, &p.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	if codeExp != nil {
		p.CodeExpiresAt = *codeExp
	}
	return p, nil
}

func (r *PendingUserRepository) RedeemCode(ctx context.Context, email, code string) (*entity.PendingUser, error) {
	p := &entity.PendingUser{Email: email, Verified: true}
	row := r.pool.QueryRow(ctx, `
		UPDATE pending_users
		SET verification_code = NULL, code_expires_at = NULL, verified = true, updated_at = now()
		WHERE email = $1 AND verification_code = $2 AND code_expires_at > now()
		RETURNING id, created_at, updated_at
	`, email, code)
	if err := row.Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return p, nil
}

func (r *PendingUserRepository) Delete(ctx context.Context, email string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM pending_users WHERE email = $1`, email)
	return err
}

var _ repository.PendingUserRepository = (*PendingUserRepository)(nil)
