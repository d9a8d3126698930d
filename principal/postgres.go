package principal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// DBTX is the subset of *sql.DB and *sql.Tx used by [PostgresStore].
type DBTX interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

const selectPrincipal = `SELECT u.email, u.password_hash, r.name, u.is_active
	FROM users u
	JOIN roles r ON r.id = u.role_id
	WHERE u.email = $1`

const upsertPrincipal = `INSERT INTO users (email, password_hash, role_id, is_active)
	VALUES ($1, $2, (SELECT id FROM roles WHERE name = $3), $4)
	ON CONFLICT (email) DO UPDATE
	SET password_hash = EXCLUDED.password_hash, role_id = EXCLUDED.role_id, is_active = EXCLUDED.is_active`

// errUnknownRole marks a row whose role name this service does not know. Such
// an account is treated as unusable, never as a store failure.
var errUnknownRole = errors.New("unknown role")

// PostgresStore reads principals from PostgreSQL.
type PostgresStore struct {
	db       DBTX
	verifier PasswordVerifier
}

// NewPostgresStore binds the store to db.
func NewPostgresStore(db DBTX, verifier PasswordVerifier) *PostgresStore {
	return &PostgresStore{db: db, verifier: verifier}
}

// OpenPostgres opens a pgx-backed *sql.DB and checks connectivity.
func OpenPostgres(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}

type principalRow struct {
	principal Principal
	hash      string
}

func (s *PostgresStore) fetch(ctx context.Context, identity string) (principalRow, error) {
	var (
		row      principalRow
		roleName string
	)
	err := s.db.QueryRowContext(ctx, selectPrincipal, identity).
		Scan(&row.principal.Identity, &row.hash, &roleName, &row.principal.Active)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return row, ErrNotFound
		}
		return row, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	role, err := ParseRole(roleName)
	if err != nil {
		return row, fmt.Errorf("%w: principal %q: %w", errUnknownRole, identity, err)
	}
	row.principal.Role = role
	return row, nil
}

// Verify implements [Store].
func (s *PostgresStore) Verify(ctx context.Context, identity, password string) (Principal, error) {
	row, err := s.fetch(ctx, NormalizeIdentity(identity))
	if err != nil {
		if errors.Is(err, ErrNotFound) || errors.Is(err, errUnknownRole) {
			s.verifier.VerifyDummy(password)
			return Principal{}, ErrInvalidCredentials
		}
		return Principal{}, err
	}
	return checkPassword(s.verifier, row.principal, password, row.hash)
}

// Load implements [Store].
func (s *PostgresStore) Load(ctx context.Context, identity string) (Principal, error) {
	row, err := s.fetch(ctx, NormalizeIdentity(identity))
	if err != nil {
		if errors.Is(err, errUnknownRole) {
			return Principal{}, fmt.Errorf("%w: %w", ErrNotFound, err)
		}
		return Principal{}, err
	}
	return row.principal, nil
}

// Upsert creates or replaces an account row. Used for seeding.
func (s *PostgresStore) Upsert(ctx context.Context, identity, passwordHash string, role Role, active bool) error {
	identity = NormalizeIdentity(identity)
	if identity == "" || !role.Valid() {
		return errors.New("principal: identity and valid role required")
	}
	if _, err := s.db.ExecContext(ctx, upsertPrincipal, identity, passwordHash, role.String(), active); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}
