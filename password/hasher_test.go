package password

import (
	"errors"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func fastArgon2() Config {
	return Config{
		Scheme: SchemeArgon2id,
		Argon2: Argon2Params{MemoryKiB: 8 * 1024, Iterations: 1, Threads: 1, SaltLen: 16, KeyLen: 32},
	}
}

func fastBcrypt() Config {
	return Config{Scheme: SchemeBcrypt, BcryptCost: bcrypt.MinCost}
}

func TestArgon2HashAndVerify(t *testing.T) {
	h, err := New(fastArgon2())
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	encoded, err := h.Hash("P@ssw0rd-Ascii")
	if err != nil {
		t.Fatalf("Hash error: %v", err)
	}
	if !strings.HasPrefix(encoded, "$argon2id$v=19$m=8192,t=1,p=1$") {
		t.Fatalf("unexpected prefix: %s", encoded)
	}

	ok, err := h.Verify("P@ssw0rd-Ascii", encoded)
	if err != nil || !ok {
		t.Fatalf("expected match, got ok=%v err=%v", ok, err)
	}
	ok, err = h.Verify("wrong-password", encoded)
	if err != nil || ok {
		t.Fatalf("expected mismatch, got ok=%v err=%v", ok, err)
	}
}

func TestBcryptHashAndVerify(t *testing.T) {
	h, err := New(fastBcrypt())
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	encoded, err := h.Hash("secret-pass")
	if err != nil {
		t.Fatalf("Hash error: %v", err)
	}
	if !strings.HasPrefix(encoded, "$2a$04$") {
		t.Fatalf("unexpected prefix: %s", encoded)
	}
	if ok, err := h.Verify("secret-pass", encoded); err != nil || !ok {
		t.Fatalf("expected match, got ok=%v err=%v", ok, err)
	}
	if ok, err := h.Verify("other", encoded); err != nil || ok {
		t.Fatalf("expected mismatch, got ok=%v err=%v", ok, err)
	}
}

func TestVerifyAcceptsEitherFormat(t *testing.T) {
	argon, err := New(fastArgon2())
	if err != nil {
		t.Fatalf("New argon: %v", err)
	}
	legacy, err := New(fastBcrypt())
	if err != nil {
		t.Fatalf("New bcrypt: %v", err)
	}

	bcryptHash, err := legacy.Hash("shared-secret")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	if ok, err := argon.Verify("shared-secret", bcryptHash); err != nil || !ok {
		t.Fatalf("argon2 hasher must verify bcrypt rows, got ok=%v err=%v", ok, err)
	}

	// Spring and PHP emit $2b$/$2y$ variants of the same algorithm.
	for _, prefix := range []string{"$2b$", "$2y$"} {
		variant := prefix + strings.TrimPrefix(bcryptHash, "$2a$")
		if ok, err := argon.Verify("shared-secret", variant); err != nil || !ok {
			t.Fatalf("%s variant: ok=%v err=%v", prefix, ok, err)
		}
	}

	argonHash, err := argon.Hash("shared-secret")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	if ok, err := legacy.Verify("shared-secret", argonHash); err != nil || !ok {
		t.Fatalf("bcrypt hasher must verify argon2 rows, got ok=%v err=%v", ok, err)
	}
}

func TestVerifyRejectsUnknownAndBrokenHashes(t *testing.T) {
	h, err := New(fastArgon2())
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	if _, err := h.Verify("x", "plaintext"); !errors.Is(err, ErrUnsupportedHash) {
		t.Fatalf("expected ErrUnsupportedHash, got %v", err)
	}

	broken := []string{
		"$argon2id$v=19$m=8192,t=1$c2FsdHNhbHRzYWx0c2FsdA$a2V5",
		"$argon2id$v=18$m=8192,t=1,p=1$c2FsdHNhbHRzYWx0c2FsdA$a2V5",
		"$argon2id$v=19$m=1024,t=1,p=1$c2FsdHNhbHRzYWx0c2FsdA$a2V5a2V5a2V5a2V5a2V5",
		"$argon2id$v=19$m=8192,t=1,p=1$!!!$a2V5",
	}
	for _, enc := range broken {
		if _, err := h.Verify("x", enc); !errors.Is(err, ErrInvalidHash) {
			t.Fatalf("expected ErrInvalidHash for %q, got %v", enc, err)
		}
	}
	if _, err := h.Verify("x", "$2a$04$short"); !errors.Is(err, ErrInvalidHash) {
		t.Fatalf("expected ErrInvalidHash for truncated bcrypt, got %v", err)
	}
}

func TestHashRejectsEmptyPassword(t *testing.T) {
	h, err := New(fastArgon2())
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	if _, err := h.Hash(""); !errors.Is(err, ErrEmptyPassword) {
		t.Fatalf("expected ErrEmptyPassword, got %v", err)
	}
}

func TestNewRejectsWeakConfig(t *testing.T) {
	weak := fastArgon2()
	weak.Argon2.MemoryKiB = 1024
	if _, err := New(weak); err == nil {
		t.Fatal("expected weak argon2 memory to be rejected")
	}
	if _, err := New(Config{Scheme: SchemeBcrypt, BcryptCost: 2}); err == nil {
		t.Fatal("expected low bcrypt cost to be rejected")
	}
	if _, err := New(Config{Scheme: "md5"}); err == nil {
		t.Fatal("expected unknown scheme to be rejected")
	}
}

func TestNeedsRehash(t *testing.T) {
	argon, err := New(fastArgon2())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	legacy, err := New(fastBcrypt())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	current, _ := argon.Hash("pw-123456")
	old, _ := legacy.Hash("pw-123456")

	if argon.NeedsRehash(current) {
		t.Fatal("hash with current params should not need rehash")
	}
	if !argon.NeedsRehash(old) {
		t.Fatal("bcrypt row should be upgraded under argon2id")
	}

	stronger := fastArgon2()
	stronger.Argon2.Iterations = 2
	upgraded, err := New(stronger)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if !upgraded.NeedsRehash(current) {
		t.Fatal("weaker iterations should need rehash")
	}
	if legacy.NeedsRehash(old) {
		t.Fatal("bcrypt row at current cost should not need rehash")
	}
}

func TestVerifyDummyDoesNotPanic(t *testing.T) {
	h, err := New(fastArgon2())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	h.VerifyDummy("anything")
}
