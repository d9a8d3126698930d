package principal

import (
	"context"
	"errors"
	"sync"
)

type memoryAccount struct {
	principal Principal
	hash      string
}

// MemoryStore keeps accounts in process memory.
type MemoryStore struct {
	verifier PasswordVerifier

	mu       sync.RWMutex
	accounts map[string]memoryAccount
}

// NewMemoryStore returns an empty store that checks passwords with verifier.
func NewMemoryStore(verifier PasswordVerifier) *MemoryStore {
	return &MemoryStore{
		verifier: verifier,
		accounts: make(map[string]memoryAccount),
	}
}

// Put adds or replaces an account. passwordHash must be an encoding the verifier
// understands.
func (s *MemoryStore) Put(identity, passwordHash string, role Role, active bool) error {
	identity = NormalizeIdentity(identity)
	if identity == "" {
		return errors.New("principal: empty identity")
	}
	if !role.Valid() {
		return errors.New("principal: invalid role")
	}
	s.mu.Lock()
	s.accounts[identity] = memoryAccount{
		principal: Principal{Identity: identity, Role: role, Active: active},
		hash:      passwordHash,
	}
	s.mu.Unlock()
	return nil
}

// SetActive flips the active flag. It returns ErrNotFound for unknown identities.
func (s *MemoryStore) SetActive(identity string, active bool) error {
	identity = NormalizeIdentity(identity)
	s.mu.Lock()
	defer s.mu.Unlock()
	acct, ok := s.accounts[identity]
	if !ok {
		return ErrNotFound
	}
	acct.principal.Active = active
	s.accounts[identity] = acct
	return nil
}

// Delete removes an account.
func (s *MemoryStore) Delete(identity string) {
	s.mu.Lock()
	delete(s.accounts, NormalizeIdentity(identity))
	s.mu.Unlock()
}

// Verify implements [Store].
func (s *MemoryStore) Verify(_ context.Context, identity, password string) (Principal, error) {
	s.mu.RLock()
	acct, ok := s.accounts[NormalizeIdentity(identity)]
	s.mu.RUnlock()
	if !ok {
		s.verifier.VerifyDummy(password)
		return Principal{}, ErrInvalidCredentials
	}
	return checkPassword(s.verifier, acct.principal, password, acct.hash)
}

// Load implements [Store].
func (s *MemoryStore) Load(_ context.Context, identity string) (Principal, error) {
	s.mu.RLock()
	acct, ok := s.accounts[NormalizeIdentity(identity)]
	s.mu.RUnlock()
	if !ok {
		return Principal{}, ErrNotFound
	}
	return acct.principal, nil
}
