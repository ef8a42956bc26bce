package store

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ExhibitionDefi/exhibition-defi-sub002/internal/model"
)

// CachedStore wraps a primary Store (PostgreSQL) with a Redis read-through
// cache for drafts. Draft writes go to the primary store and refresh or
// invalidate the cache. The contribution ledger is never cached.
type CachedStore struct {
	primary Store
	rdb     *redis.Client
	ttl     time.Duration
}

// NewCachedStore creates a cached wrapper around a primary store.
func NewCachedStore(primary Store, rdb *redis.Client, ttl time.Duration) *CachedStore {
	return &CachedStore{
		primary: primary,
		rdb:     rdb,
		ttl:     ttl,
	}
}

// --- Write-through (write to primary, invalidate cache) ---

func (s *CachedStore) CreateDraft(ctx context.Context, d *model.SaleDraft) error {
	if err := s.primary.CreateDraft(ctx, d); err != nil {
		return err
	}
	s.cacheDraft(ctx, d)
	return nil
}

func (s *CachedStore) UpdateDraft(ctx context.Context, d *model.SaleDraft) error {
	if err := s.primary.UpdateDraft(ctx, d); err != nil {
		return err
	}
	s.rdb.Del(ctx, draftKey(d.ID))
	return nil
}

// --- Read-through (check cache first) ---

func (s *CachedStore) GetDraft(ctx context.Context, id string) (*model.SaleDraft, error) {
	data, err := s.rdb.Get(ctx, draftKey(id)).Bytes()
	if err == nil {
		var d model.SaleDraft
		if json.Unmarshal(data, &d) == nil {
			return &d, nil
		}
	}

	d, err := s.primary.GetDraft(ctx, id)
	if err != nil {
		return nil, err
	}
	s.cacheDraft(ctx, d)
	return d, nil
}

// --- Passthrough (not cached) ---

func (s *CachedStore) InsertContribution(ctx context.Context, c *model.Contribution) error {
	return s.primary.InsertContribution(ctx, c)
}

// GetWalletTotals always reads the primary store: the contribution limits
// are checked against these totals.
func (s *CachedStore) GetWalletTotals(ctx context.Context, draftID string) (map[string]*big.Int, error) {
	return s.primary.GetWalletTotals(ctx, draftID)
}

func (s *CachedStore) ListDrafts(ctx context.Context, owner string) ([]model.SaleDraft, error) {
	return s.primary.ListDrafts(ctx, owner)
}

func (s *CachedStore) GetContributionsByDraft(ctx context.Context, draftID string) ([]model.Contribution, error) {
	return s.primary.GetContributionsByDraft(ctx, draftID)
}

// --- Cache helpers ---

func (s *CachedStore) cacheDraft(ctx context.Context, d *model.SaleDraft) {
	if data, err := json.Marshal(d); err == nil {
		s.rdb.Set(ctx, draftKey(d.ID), data, s.ttl)
	}
}

func draftKey(id string) string { return fmt.Sprintf("draft:%s", id) }
