package principal

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/pressly/goose/v3"
)

const selectPattern = `(?s)^SELECT\s+u\.email,\s*u\.password_hash,\s*r\.name,\s*u\.is_active\s+FROM\s+users\s+u\s+JOIN\s+roles\s+r\s+ON\s+r\.id\s*=\s*u\.role_id\s+WHERE\s+u\.email\s*=\s*\$1\s*$`

func newStoreWithMock(t *testing.T) (*PostgresStore, sqlmock.Sqlmock, *stubVerifier) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	v := &stubVerifier{}
	return NewPostgresStore(db, v), mock, v
}

func principalRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"email", "password_hash", "name", "is_active"})
}

func TestPostgresVerify_Success(t *testing.T) {
	s, mock, _ := newStoreWithMock(t)
	mock.ExpectQuery(selectPattern).
		WithArgs("alice@example.com").
		WillReturnRows(principalRows().AddRow("alice@example.com", "hash:secret", "CANDIDATE", true))

	p, err := s.Verify(context.Background(), "  Alice@Example.com", "secret")
	if err != nil {
		t.Fatalf("Verify error: %v", err)
	}
	if p.Identity != "alice@example.com" || p.Role != RoleCandidate || !p.Active {
		t.Fatalf("unexpected principal: %+v", p)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPostgresVerify_UnknownUser(t *testing.T) {
	s, mock, v := newStoreWithMock(t)
	mock.ExpectQuery(selectPattern).
		WithArgs("ghost@example.com").
		WillReturnError(sql.ErrNoRows)

	if _, err := s.Verify(context.Background(), "ghost@example.com", "x"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if v.dummyCalls != 1 {
		t.Fatalf("expected dummy verification, got %d calls", v.dummyCalls)
	}
}

func TestPostgresVerify_InactiveOrWrongPassword(t *testing.T) {
	s, mock, _ := newStoreWithMock(t)
	mock.ExpectQuery(selectPattern).
		WithArgs("bob@example.com").
		WillReturnRows(principalRows().AddRow("bob@example.com", "hash:pw", "RECRUITER", false))
	mock.ExpectQuery(selectPattern).
		WithArgs("bob@example.com").
		WillReturnRows(principalRows().AddRow("bob@example.com", "hash:pw", "RECRUITER", true))

	ctx := context.Background()
	if _, err := s.Verify(ctx, "bob@example.com", "pw"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("inactive: expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := s.Verify(ctx, "bob@example.com", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("wrong password: expected ErrInvalidCredentials, got %v", err)
	}
}

func TestPostgresVerify_UnknownRoleLooksLikeBadCredentials(t *testing.T) {
	s, mock, v := newStoreWithMock(t)
	mock.ExpectQuery(selectPattern).
		WithArgs("weird@example.com").
		WillReturnRows(principalRows().AddRow("weird@example.com", "hash:pw", "JANITOR", true))

	_, err := s.Verify(context.Background(), "weird@example.com", "pw")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if errors.Is(err, ErrUnavailable) {
		t.Fatal("unknown role must not surface as a store failure")
	}
	if v.dummyCalls != 1 {
		t.Fatalf("expected one dummy verification, got %d", v.dummyCalls)
	}
}

func TestPostgresVerify_DBError(t *testing.T) {
	s, mock, _ := newStoreWithMock(t)
	mock.ExpectQuery(selectPattern).
		WithArgs("alice@example.com").
		WillReturnError(errors.New("db down"))

	_, err := s.Verify(context.Background(), "alice@example.com", "x")
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
	if errors.Is(err, ErrInvalidCredentials) {
		t.Fatal("backend failure must not look like bad credentials")
	}
}

func TestPostgresLoad(t *testing.T) {
	s, mock, _ := newStoreWithMock(t)
	mock.ExpectQuery(selectPattern).
		WithArgs("carol@example.com").
		WillReturnRows(principalRows().AddRow("carol@example.com", "hash:pw", "ADMIN", false))
	mock.ExpectQuery(selectPattern).
		WithArgs("nobody@example.com").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery(selectPattern).
		WithArgs("weird@example.com").
		WillReturnRows(principalRows().AddRow("weird@example.com", "hash:pw", "JANITOR", true))

	ctx := context.Background()
	p, err := s.Load(ctx, "carol@example.com")
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if p.Role != RoleAdmin || p.Active {
		t.Fatalf("unexpected principal: %+v", p)
	}
	if _, err := s.Load(ctx, "nobody@example.com"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := s.Load(ctx, "weird@example.com"); !errors.Is(err, ErrNotFound) || errors.Is(err, ErrUnavailable) {
		t.Fatalf("unknown role: expected ErrNotFound, got %v", err)
	}
}

func TestPostgresUpsert(t *testing.T) {
	s, mock, _ := newStoreWithMock(t)
	mock.ExpectExec(`(?s)^INSERT\s+INTO\s+users.*ON\s+CONFLICT\s+\(email\)\s+DO\s+UPDATE`).
		WithArgs("dave@example.com", "hash:pw", "RECRUITER", true).
		WillReturnResult(sqlmock.NewResult(1, 1))

	if err := s.Upsert(context.Background(), "Dave@Example.com", "hash:pw", RoleRecruiter, true); err != nil {
		t.Fatalf("Upsert error: %v", err)
	}
	if err := s.Upsert(context.Background(), "", "hash:pw", RoleRecruiter, true); err == nil {
		t.Fatal("expected empty identity to be rejected")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestMigrateUsesEmbeddedDir(t *testing.T) {
	orig := gooseUpContext
	t.Cleanup(func() { gooseUpContext = orig })

	var gotDir string
	gooseUpContext = func(_ context.Context, _ *sql.DB, dir string, _ ...goose.OptionsFunc) error {
		gotDir = dir
		return nil
	}

	db, _, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	defer db.Close()

	if err := Migrate(context.Background(), db); err != nil {
		t.Fatalf("Migrate error: %v", err)
	}
	if gotDir != "migrations" {
		t.Fatalf("unexpected migrations dir %q", gotDir)
	}
	entries, err := migrations.ReadDir("migrations")
	if err != nil || len(entries) == 0 {
		t.Fatalf("expected embedded migrations, got %v %v", entries, err)
	}
}
