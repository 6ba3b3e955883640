// Package pg implementa core.Repository sobre PostgreSQL con pgx.
// Esquema: accounts, phone_numbers y refresh_tokens (ver migrations/).
package pg

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/blubbai/backend/internal/domain"
	"github.com/blubbai/backend/internal/security/totp"
	"github.com/blubbai/backend/internal/store/core"
)

type Store struct {
	pool *pgxpool.Pool
}

// New abre el pool contra el DSN dado y verifica conectividad.
func New(ctx context.Context, dsn string) (*Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("open pgx pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return &Store{pool: pool}, nil
}

// Close libera el pool.
func (s *Store) Close() { s.pool.Close() }

func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

const accountColumns = `
	a.uid, a.username, a.email, a.password_hash, a.totp_secret,
	a.secret_method, a.mail_verified, a.created_at, a.updated_at,
	p.id, p.country, p.number
`

const accountQuery = `
	SELECT ` + accountColumns + `
	FROM accounts a
	LEFT JOIN phone_numbers p ON p.id = a.phone_id
`

func (s *Store) FindByUsername(ctx context.Context, username string) (*domain.Account, error) {
	row := s.pool.QueryRow(ctx, accountQuery+` WHERE lower(a.username) = lower($1)`, username)
	return scanAccount(row)
}

func (s *Store) FindByUID(ctx context.Context, uid uuid.UUID) (*domain.Account, error) {
	row := s.pool.QueryRow(ctx, accountQuery+` WHERE a.uid = $1`, uid)
	return scanAccount(row)
}

// Save inserta o actualiza la cuenta. El alta genera uid, secret TOTP
// y timestamps; el update conserva los campos inmutables del registro
// existente (uid, created_at, totp_secret).
func (s *Store) Save(ctx context.Context, a *domain.Account) (*domain.Account, error) {
	if a.UID == uuid.Nil {
		return s.insert(ctx, a)
	}

	var phoneID *uuid.UUID
	if a.PhoneNumber != nil {
		phoneID = &a.PhoneNumber.ID
	}
	var method *string
	if a.SecretMethod != nil {
		m := string(*a.SecretMethod)
		method = &m
	}

	const query = `
		UPDATE accounts
		SET username = $2, email = $3, password_hash = $4,
		    secret_method = $5, mail_verified = $6, phone_id = $7,
		    updated_at = NOW()
		WHERE uid = $1
	`
	tag, err := s.pool.Exec(ctx, query,
		a.UID, a.Username, a.Email, a.PasswordHash, method, a.MailVerified, phoneID,
	)
	if err != nil {
		return nil, conflictError(err)
	}
	if tag.RowsAffected() == 0 {
		return nil, core.ErrNotFound
	}
	return s.FindByUID(ctx, a.UID)
}

func (s *Store) insert(ctx context.Context, a *domain.Account) (*domain.Account, error) {
	_, secret, err := totp.GenerateSecret()
	if err != nil {
		return nil, err
	}

	var phoneID *uuid.UUID
	if a.PhoneNumber != nil {
		phoneID = &a.PhoneNumber.ID
	}

	const query = `
		INSERT INTO accounts (uid, username, email, password_hash, totp_secret,
		                      secret_method, mail_verified, phone_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NULL, FALSE, $6, NOW(), NOW())
	`
	uid := uuid.New()
	if _, err := s.pool.Exec(ctx, query,
		uid, a.Username, a.Email, a.PasswordHash, secret, phoneID,
	); err != nil {
		return nil, conflictError(err)
	}
	return s.FindByUID(ctx, uid)
}

// Delete borra la cuenta y cascadea teléfono y refresh tokens.
func (s *Store) Delete(ctx context.Context, a *domain.Account) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM refresh_tokens WHERE account_uid = $1`, a.UID); err != nil {
		return err
	}
	tag, err := tx.Exec(ctx, `DELETE FROM accounts WHERE uid = $1`, a.UID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return core.ErrNotFound
	}
	if a.PhoneNumber != nil {
		if _, err := tx.Exec(ctx, `DELETE FROM phone_numbers WHERE id = $1`, a.PhoneNumber.ID); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

func (s *Store) SavePhone(ctx context.Context, p *domain.PhoneNumber) (*domain.PhoneNumber, error) {
	cp := *p
	if cp.ID == uuid.Nil {
		cp.ID = uuid.New()
	}
	const query = `
		INSERT INTO phone_numbers (id, country, number)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET country = $2, number = $3
	`
	if _, err := s.pool.Exec(ctx, query, cp.ID, cp.Country, cp.Number); err != nil {
		return nil, err
	}
	return &cp, nil
}

func (s *Store) SaveRefresh(ctx context.Context, rt *domain.RefreshToken) (*domain.RefreshToken, error) {
	cp := *rt
	if cp.ID == uuid.Nil {
		cp.ID = uuid.New()
	}
	const query = `
		INSERT INTO refresh_tokens (id, account_uid, token, issued_at, expires_at, revoked)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET revoked = $6
	`
	if _, err := s.pool.Exec(ctx, query,
		cp.ID, cp.AccountUID, cp.Token, cp.IssuedAt, cp.ExpiresAt, cp.Revoked,
	); err != nil {
		return nil, err
	}
	return &cp, nil
}

func (s *Store) FindRefreshByToken(ctx context.Context, token string) (*domain.RefreshToken, error) {
	const query = `
		SELECT id, account_uid, token, issued_at, expires_at, revoked
		FROM refresh_tokens WHERE token = $1
	`
	var rt domain.RefreshToken
	err := s.pool.QueryRow(ctx, query, token).Scan(
		&rt.ID, &rt.AccountUID, &rt.Token, &rt.IssuedAt, &rt.ExpiresAt, &rt.Revoked,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, core.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rt, nil
}

// ─── Helpers de scan ───

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row rowScanner) (*domain.Account, error) {
	var (
		a       domain.Account
		method  *string
		phoneID *uuid.UUID
		country *string
		number  *string
	)
	err := row.Scan(
		&a.UID, &a.Username, &a.Email, &a.PasswordHash, &a.TOTPSecret,
		&method, &a.MailVerified, &a.CreatedAt, &a.UpdatedAt,
		&phoneID, &country, &number,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, core.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if method != nil {
		if m, err := domain.ParseMethod2FA(*method); err == nil {
			a.SecretMethod = &m
		}
	}
	if phoneID != nil {
		a.PhoneNumber = &domain.PhoneNumber{ID: *phoneID}
		if country != nil {
			a.PhoneNumber.Country = *country
		}
		if number != nil {
			a.PhoneNumber.Number = *number
		}
	}
	return &a, nil
}

// conflictError mapea violaciones de unicidad (23505) al error del
// core según el índice violado; cualquier otro error pasa intacto.
func conflictError(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != "23505" {
		return err
	}
	if pgErr.ConstraintName == "accounts_email_lower_idx" {
		return core.ErrEmailConflict
	}
	return core.ErrConflict
}
