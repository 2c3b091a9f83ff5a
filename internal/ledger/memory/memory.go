// Package memory provides an in-memory record and account store, used for
// local development and tests.
package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"finanze/internal/core"
	"finanze/internal/ledger"
)

var (
	ErrRecordNotFound  = ledger.ErrRecordNotFound
	ErrAccountNotFound = ledger.ErrAccountNotFound
)

type Store struct {
	mu       sync.Mutex
	records  map[string][]core.Record  // keyed by user id
	accounts map[string][]core.Account // keyed by user id
}

func New() *Store {
	return &Store{
		records:  make(map[string][]core.Record),
		accounts: make(map[string][]core.Account),
	}
}

// Append stores the record and returns a generated id.
func (s *Store) Append(_ context.Context, userID string, r core.Record) (string, error) {
	if err := r.Validate(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	r.ID = uuid.NewString()
	s.records[userID] = append(s.records[userID], r)
	return r.ID, nil
}

// Update replaces the stored record with the same id.
func (s *Store) Update(_ context.Context, userID string, r core.Record) error {
	if err := r.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, existing := range s.records[userID] {
		if existing.ID == r.ID {
			r.CreatedAt = existing.CreatedAt
			s.records[userID][i] = r
			return nil
		}
	}
	return ErrRecordNotFound
}

func (s *Store) Delete(_ context.Context, userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	records := s.records[userID]
	for i, existing := range records {
		if existing.ID == id {
			s.records[userID] = append(records[:i], records[i+1:]...)
			return nil
		}
	}
	return ErrRecordNotFound
}

// ListRecords returns a defensive copy of the user's records.
func (s *Store) ListRecords(_ context.Context, userID string) ([]core.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Record(nil), s.records[userID]...), nil
}

func (s *Store) CreateAccount(_ context.Context, userID string, a core.Account) (string, error) {
	if err := a.Validate(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	a.ID = uuid.NewString()
	s.accounts[userID] = append(s.accounts[userID], a)
	return a.ID, nil
}

func (s *Store) ListAccounts(_ context.Context, userID string) ([]core.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Account(nil), s.accounts[userID]...), nil
}

// DeleteAccount removes the account only; its records stay orphaned.
func (s *Store) DeleteAccount(_ context.Context, userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	accounts := s.accounts[userID]
	for i, existing := range accounts {
		if existing.ID == id {
			s.accounts[userID] = append(accounts[:i], accounts[i+1:]...)
			return nil
		}
	}
	return ErrAccountNotFound
}
