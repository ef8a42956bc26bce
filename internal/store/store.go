// Package store defines the persistence interface for the launchpad engine.
// Implementations include PostgreSQL (source of truth), Redis (read-through
// cache), and in-memory (for testing).
package store

import (
	"context"
	"errors"
	"math/big"

	"github.com/ExhibitionDefi/exhibition-defi-sub002/internal/model"
)

// ErrNotFound is returned when a draft does not exist.
var ErrNotFound = errors.New("store: not found")

// Store is the persistence interface. PostgreSQL is the source of truth;
// Redis provides a read-through cache layer.
type Store interface {
	// --- Sale drafts ---

	// CreateDraft persists a new draft.
	CreateDraft(ctx context.Context, d *model.SaleDraft) error

	// GetDraft retrieves a draft by its ID.
	GetDraft(ctx context.Context, id string) (*model.SaleDraft, error)

	// ListDrafts returns all drafts, or only the owner's when owner is set.
	ListDrafts(ctx context.Context, owner string) ([]model.SaleDraft, error)

	// UpdateDraft replaces the form fields and status of an existing draft.
	UpdateDraft(ctx context.Context, d *model.SaleDraft) error

	// --- Immutable contribution ledger ---

	// InsertContribution appends an immutable contribution record.
	InsertContribution(ctx context.Context, c *model.Contribution) error

	// GetContributionsByDraft returns all contributions to a sale in order.
	GetContributionsByDraft(ctx context.Context, draftID string) ([]model.Contribution, error)

	// GetWalletTotals returns the amount contributed so far per wallet.
	GetWalletTotals(ctx context.Context, draftID string) (map[string]*big.Int, error)
}
