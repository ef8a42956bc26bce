package store

import (
	"context"
	"fmt"
	"math/big"
	"sort"
	"sync"

	"github.com/ExhibitionDefi/exhibition-defi-sub002/internal/fixedpoint"
	"github.com/ExhibitionDefi/exhibition-defi-sub002/internal/model"
)

// MemoryStore implements Store with in-memory maps. Used for testing
// and development. Not suitable for production (no persistence).
type MemoryStore struct {
	mu     sync.RWMutex
	drafts map[string]*model.SaleDraft
	ledger []model.Contribution
}

// NewMemoryStore creates a new in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		drafts: make(map[string]*model.SaleDraft),
	}
}

func (s *MemoryStore) CreateDraft(_ context.Context, d *model.SaleDraft) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.drafts[d.ID]; ok {
		return fmt.Errorf("draft %s already exists", d.ID)
	}
	c := *d
	s.drafts[d.ID] = &c
	return nil
}

func (s *MemoryStore) GetDraft(_ context.Context, id string) (*model.SaleDraft, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	d, ok := s.drafts[id]
	if !ok {
		return nil, fmt.Errorf("draft %s: %w", id, ErrNotFound)
	}
	c := *d
	return &c, nil
}

func (s *MemoryStore) ListDrafts(_ context.Context, owner string) ([]model.SaleDraft, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	drafts := make([]model.SaleDraft, 0, len(s.drafts))
	for _, d := range s.drafts {
		if owner != "" && d.Owner != owner {
			continue
		}
		drafts = append(drafts, *d)
	}
	// Newest first, matching the PostgreSQL ordering.
	sort.Slice(drafts, func(i, j int) bool {
		return drafts[i].CreatedAt.After(drafts[j].CreatedAt)
	})
	return drafts, nil
}

func (s *MemoryStore) UpdateDraft(_ context.Context, d *model.SaleDraft) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.drafts[d.ID]
	if !ok {
		return fmt.Errorf("draft %s: %w", d.ID, ErrNotFound)
	}
	c := *d
	c.CreatedAt = existing.CreatedAt
	s.drafts[d.ID] = &c
	return nil
}

func (s *MemoryStore) InsertContribution(_ context.Context, c *model.Contribution) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.drafts[c.DraftID]; !ok {
		return fmt.Errorf("draft %s: %w", c.DraftID, ErrNotFound)
	}
	entry := *c
	entry.Amount = fixedpoint.NewAmount(c.Amount.Value, c.Amount.Decimals)
	s.ledger = append(s.ledger, entry)
	return nil
}

func (s *MemoryStore) GetContributionsByDraft(_ context.Context, draftID string) ([]model.Contribution, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []model.Contribution
	for _, c := range s.ledger {
		if c.DraftID == draftID {
			result = append(result, c)
		}
	}
	return result, nil
}

// GetWalletTotals sums the ledger per wallet (single lock, no re-entrant calls).
func (s *MemoryStore) GetWalletTotals(_ context.Context, draftID string) (map[string]*big.Int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	totals := make(map[string]*big.Int)
	for _, c := range s.ledger {
		if c.DraftID != draftID {
			continue
		}
		t, ok := totals[c.Wallet]
		if !ok {
			t = new(big.Int)
			totals[c.Wallet] = t
		}
		t.Add(t, c.Amount.Value)
	}
	return totals, nil
}
