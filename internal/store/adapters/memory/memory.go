// Package memory implementa core.Repository en memoria.
// Se usa en desarrollo (STORAGE_DRIVER=memory) y en los tests del core.
package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/blubbai/backend/internal/domain"
	"github.com/blubbai/backend/internal/security/totp"
	"github.com/blubbai/backend/internal/store/core"
)

type Store struct {
	mu       sync.RWMutex
	accounts map[uuid.UUID]*domain.Account
	byName   map[string]uuid.UUID
	byEmail  map[string]uuid.UUID // solo emails no vacíos
	phones   map[uuid.UUID]*domain.PhoneNumber
	refresh  map[uuid.UUID]*domain.RefreshToken

	now func() time.Time // inyectable en tests
}

func New() *Store {
	return &Store{
		accounts: make(map[uuid.UUID]*domain.Account),
		byName:   make(map[string]uuid.UUID),
		byEmail:  make(map[string]uuid.UUID),
		phones:   make(map[uuid.UUID]*domain.PhoneNumber),
		refresh:  make(map[uuid.UUID]*domain.RefreshToken),
		now:      time.Now,
	}
}

func (s *Store) Ping(ctx context.Context) error { return nil }

func (s *Store) FindByUsername(ctx context.Context, username string) (*domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	uid, ok := s.byName[strings.ToLower(username)]
	if !ok {
		return nil, core.ErrNotFound
	}
	return cloneAccount(s.accounts[uid]), nil
}

func (s *Store) FindByUID(ctx context.Context, uid uuid.UUID) (*domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.accounts[uid]
	if !ok {
		return nil, core.ErrNotFound
	}
	return cloneAccount(a), nil
}

func (s *Store) Save(ctx context.Context, a *domain.Account) (*domain.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().UTC()
	key := strings.ToLower(a.Username)
	emailKey := strings.ToLower(a.Email)

	if existing, ok := s.accounts[a.UID]; ok {
		// Update: campos inmutables se conservan del registro existente.
		if other, taken := s.byName[key]; taken && other != existing.UID {
			return nil, core.ErrConflict
		}
		if other, taken := s.byEmail[emailKey]; emailKey != "" && taken && other != existing.UID {
			return nil, core.ErrEmailConflict
		}
		up := cloneAccount(a)
		up.UID = existing.UID
		up.CreatedAt = existing.CreatedAt
		up.TOTPSecret = existing.TOTPSecret
		up.UpdatedAt = now
		delete(s.byName, strings.ToLower(existing.Username))
		delete(s.byEmail, strings.ToLower(existing.Email))
		s.accounts[up.UID] = up
		s.byName[key] = up.UID
		if emailKey != "" {
			s.byEmail[emailKey] = up.UID
		}
		return cloneAccount(up), nil
	}

	// Alta: el store genera UID, secret TOTP y timestamps.
	if _, taken := s.byName[key]; taken {
		return nil, core.ErrConflict
	}
	if _, taken := s.byEmail[emailKey]; emailKey != "" && taken {
		return nil, core.ErrEmailConflict
	}
	created := cloneAccount(a)
	created.UID = uuid.New()
	_, secret, err := totp.GenerateSecret()
	if err != nil {
		return nil, err
	}
	created.TOTPSecret = secret
	created.CreatedAt = now
	created.UpdatedAt = now
	created.MailVerified = false
	s.accounts[created.UID] = created
	s.byName[key] = created.UID
	if emailKey != "" {
		s.byEmail[emailKey] = created.UID
	}
	return cloneAccount(created), nil
}

func (s *Store) Delete(ctx context.Context, a *domain.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.accounts[a.UID]
	if !ok {
		return core.ErrNotFound
	}
	if existing.PhoneNumber != nil {
		delete(s.phones, existing.PhoneNumber.ID)
	}
	for id, rt := range s.refresh {
		if rt.AccountUID == existing.UID {
			delete(s.refresh, id)
		}
	}
	delete(s.byName, strings.ToLower(existing.Username))
	delete(s.byEmail, strings.ToLower(existing.Email))
	delete(s.accounts, existing.UID)
	return nil
}

func (s *Store) SavePhone(ctx context.Context, p *domain.PhoneNumber) (*domain.PhoneNumber, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *p
	if cp.ID == uuid.Nil {
		cp.ID = uuid.New()
	}
	s.phones[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (s *Store) SaveRefresh(ctx context.Context, rt *domain.RefreshToken) (*domain.RefreshToken, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *rt
	if cp.ID == uuid.Nil {
		cp.ID = uuid.New()
	}
	if cp.IssuedAt.IsZero() {
		cp.IssuedAt = s.now().UTC()
	}
	s.refresh[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (s *Store) FindRefreshByToken(ctx context.Context, token string) (*domain.RefreshToken, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, rt := range s.refresh {
		if rt.Token == token {
			cp := *rt
			return &cp, nil
		}
	}
	return nil, core.ErrNotFound
}

func cloneAccount(a *domain.Account) *domain.Account {
	if a == nil {
		return nil
	}
	cp := *a
	if a.SecretMethod != nil {
		m := *a.SecretMethod
		cp.SecretMethod = &m
	}
	if a.PhoneNumber != nil {
		pn := *a.PhoneNumber
		cp.PhoneNumber = &pn
	}
	if a.Role != nil {
		r := *a.Role
		cp.Role = &r
	}
	return &cp
}
