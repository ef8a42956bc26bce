package store

import (
	"context"
	"errors"
	"math/big"
	"testing"
	"time"

	"github.com/ExhibitionDefi/exhibition-defi-sub002/internal/fixedpoint"
	"github.com/ExhibitionDefi/exhibition-defi-sub002/internal/model"
)

func newDraft(id, owner string, created time.Time) *model.SaleDraft {
	return &model.SaleDraft{
		ID:                   id,
		Owner:                owner,
		Status:               model.StatusDraft,
		ContributionDecimals: 6,
		ProjectDecimals:      18,
		FundingGoal:          "1000000",
		CreatedAt:            created,
		UpdatedAt:            created,
	}
}

func TestMemoryStore_DraftLifecycle(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	now := time.Now().UTC()

	d := newDraft("d1", "0xowner", now)
	if err := s.CreateDraft(ctx, d); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := s.CreateDraft(ctx, d); err == nil {
		t.Error("expected duplicate create to fail")
	}

	// Mutating the caller's copy must not change the stored draft.
	d.FundingGoal = "5"
	got, err := s.GetDraft(ctx, "d1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.FundingGoal != "1000000" {
		t.Errorf("stored draft was mutated: %s", got.FundingGoal)
	}

	got.SoftCap = "600000"
	got.CreatedAt = now.Add(time.Hour)
	if err := s.UpdateDraft(ctx, got); err != nil {
		t.Fatalf("update: %v", err)
	}
	updated, _ := s.GetDraft(ctx, "d1")
	if updated.SoftCap != "600000" {
		t.Errorf("expected soft cap to be updated, got %q", updated.SoftCap)
	}
	if !updated.CreatedAt.Equal(now) {
		t.Error("update must not change created_at")
	}
}

func TestMemoryStore_NotFound(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	if _, err := s.GetDraft(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if err := s.UpdateDraft(ctx, newDraft("missing", "x", time.Now())); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound on update, got %v", err)
	}
	err := s.InsertContribution(ctx, &model.Contribution{DraftID: "missing", Amount: fixedpoint.Zero(6)})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound on contribution, got %v", err)
	}
}

func TestMemoryStore_ListDrafts(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	base := time.Now().UTC()

	s.CreateDraft(ctx, newDraft("a", "alice", base))
	s.CreateDraft(ctx, newDraft("b", "bob", base.Add(time.Minute)))
	s.CreateDraft(ctx, newDraft("c", "alice", base.Add(2*time.Minute)))

	all, _ := s.ListDrafts(ctx, "")
	if len(all) != 3 {
		t.Fatalf("expected 3 drafts, got %d", len(all))
	}
	if all[0].ID != "c" {
		t.Errorf("expected newest first, got %s", all[0].ID)
	}

	alice, _ := s.ListDrafts(ctx, "alice")
	if len(alice) != 2 {
		t.Errorf("expected 2 drafts for alice, got %d", len(alice))
	}
}

func TestMemoryStore_WalletTotals(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	s.CreateDraft(ctx, newDraft("d1", "owner", time.Now()))
	s.CreateDraft(ctx, newDraft("d2", "owner", time.Now()))

	contribute := func(draft, wallet string, v int64) {
		t.Helper()
		err := s.InsertContribution(ctx, &model.Contribution{
			ID:        draft + wallet + big.NewInt(v).String(),
			DraftID:   draft,
			Wallet:    wallet,
			Amount:    fixedpoint.NewAmount(big.NewInt(v), 6),
			Timestamp: time.Now(),
		})
		if err != nil {
			t.Fatalf("insert: %v", err)
		}
	}
	contribute("d1", "w1", 100)
	contribute("d1", "w1", 50)
	contribute("d1", "w2", 7)
	contribute("d2", "w1", 1000)

	totals, err := s.GetWalletTotals(ctx, "d1")
	if err != nil {
		t.Fatalf("totals: %v", err)
	}
	if totals["w1"].Int64() != 150 || totals["w2"].Int64() != 7 {
		t.Errorf("unexpected totals: w1=%s w2=%s", totals["w1"], totals["w2"])
	}

	entries, _ := s.GetContributionsByDraft(ctx, "d1")
	if len(entries) != 3 {
		t.Errorf("expected 3 ledger entries, got %d", len(entries))
	}
}
