package calculator

import (
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/ExhibitionDefi/exhibition-defi-sub002/internal/fixedpoint"
	"github.com/ExhibitionDefi/exhibition-defi-sub002/internal/limits"
	"github.com/ExhibitionDefi/exhibition-defi-sub002/internal/metrics"
	"github.com/ExhibitionDefi/exhibition-defi-sub002/internal/model"
)

// ContributionRequest is the JSON body for POST /drafts/{draftID}/contributions
// and its /check variant. Amount is human decimal text in contribution tokens.
type ContributionRequest struct {
	Wallet string `json:"wallet"`
	Amount string `json:"amount"`
}

// ContributionResponse is returned after a contribution is recorded.
type ContributionResponse struct {
	Contribution *model.Contribution `json:"contribution"`
	WalletTotal  fixedpoint.Amount   `json:"wallet_total"`
	TotalRaised  fixedpoint.Amount   `json:"total_raised"`
}

// CheckResponse reports whether a contribution would be accepted.
type CheckResponse struct {
	Allowed   bool               `json:"allowed"`
	Reason    string             `json:"reason,omitempty"`
	Remaining *fixedpoint.Amount `json:"remaining,omitempty"` // nil when no limit applies
}

// limiterFor builds the contribution limits of d. The funding goal is the
// hard cap; empty limits are not enforced.
func limiterFor(d *model.SaleDraft) (*limits.ContributionLimiter, error) {
	parse := func(field, text string) (*big.Int, error) {
		if strings.TrimSpace(text) == "" {
			return nil, nil
		}
		a, err := fixedpoint.ParseAmount(text, d.ContributionDecimals)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", field, err)
		}
		return a.Value, nil
	}
	minC, err := parse("min_contribution", d.MinContribution)
	if err != nil {
		return nil, err
	}
	maxC, err := parse("max_contribution", d.MaxContribution)
	if err != nil {
		return nil, err
	}
	hardCap, err := parse("funding_goal", d.FundingGoal)
	if err != nil {
		return nil, err
	}
	return limits.NewContributionLimiter(minC, maxC, hardCap), nil
}

// rejectionReason is the metrics label for a limits error.
func rejectionReason(err error) string {
	switch {
	case errors.Is(err, limits.ErrBelowMinimum):
		return "below_minimum"
	case errors.Is(err, limits.ErrAboveMaximum):
		return "above_maximum"
	case errors.Is(err, limits.ErrHardCapExceeded):
		return "hard_cap"
	default:
		return "invalid_amount"
	}
}

func (req *ContributionRequest) validate() error {
	if strings.TrimSpace(req.Wallet) == "" {
		return errors.New("wallet is required")
	}
	return nil
}

// RecordContribution handles POST /api/v1/drafts/{draftID}/contributions
// Checks the sale's limits, then appends to the contribution ledger. Only
// submitted drafts take contributions.
func (s *Service) RecordContribution(w http.ResponseWriter, r *http.Request) {
	var req ContributionRequest
	if !decode(w, r, &req) {
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, err.Error(), http.StatusBadRequest)
		return
	}

	ctx := r.Context()

	// Serialize the limit check and the insert.
	s.mu.Lock()
	defer s.mu.Unlock()

	d, err := s.store.GetDraft(ctx, chi.URLParam(r, "draftID"))
	if err != nil {
		fail(w, "contribution", err)
		return
	}
	if d.Status != model.StatusSubmitted {
		fail(w, "contribution", errSaleNotOpen)
		return
	}
	amount, err := fixedpoint.ParseAmount(req.Amount, d.ContributionDecimals)
	if err != nil {
		fail(w, "contribution", fmt.Errorf("amount: %w", err))
		return
	}
	limiter, err := limiterFor(d)
	if err != nil {
		fail(w, "contribution", err)
		return
	}
	totals, err := s.store.GetWalletTotals(ctx, d.ID)
	if err != nil {
		fail(w, "contribution", err)
		return
	}

	wallet := strings.TrimSpace(req.Wallet)
	if err := limiter.CheckContribution(wallet, amount.Value, totals); err != nil {
		metrics.ContributionLimitRejections.WithLabelValues(rejectionReason(err)).Inc()
		fail(w, "contribution", err)
		return
	}

	c := &model.Contribution{
		ID:        uuid.New().String(),
		DraftID:   d.ID,
		Wallet:    wallet,
		Amount:    amount,
		Timestamp: time.Now().UTC(),
	}
	if err := s.store.InsertContribution(ctx, c); err != nil {
		fail(w, "contribution", err)
		return
	}
	metrics.Contributions.Inc()

	walletTotal := new(big.Int).Add(amount.Value, valueOr0(totals[wallet]))
	raised := limits.TotalRaised(totals)
	raised.Add(raised, amount.Value)

	resp := ContributionResponse{
		Contribution: c,
		WalletTotal:  fixedpoint.NewAmount(walletTotal, d.ContributionDecimals),
		TotalRaised:  fixedpoint.NewAmount(raised, d.ContributionDecimals),
	}

	slog.Info("contribution recorded",
		"id", c.ID,
		"draft", d.ID,
		"wallet", wallet,
		"amount", amount.String(),
		"total_raised", resp.TotalRaised.String(),
	)

	if s.wsHub != nil {
		s.wsHub.Broadcast(WSMessage{
			Type:        MsgContributionRecorded,
			DraftID:     d.ID,
			Wallet:      wallet,
			Amount:      &c.Amount,
			TotalRaised: &resp.TotalRaised,
		})
	}

	ok(w, "contribution", http.StatusCreated, resp)
}

// CheckContribution handles POST /api/v1/drafts/{draftID}/contributions/check
// Reports whether a contribution would be accepted without recording it.
func (s *Service) CheckContribution(w http.ResponseWriter, r *http.Request) {
	var req ContributionRequest
	if !decode(w, r, &req) {
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, err.Error(), http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	d, err := s.store.GetDraft(ctx, chi.URLParam(r, "draftID"))
	if err != nil {
		fail(w, "contribution_check", err)
		return
	}
	if d.Status != model.StatusSubmitted {
		fail(w, "contribution_check", errSaleNotOpen)
		return
	}
	amount, err := fixedpoint.ParseAmount(req.Amount, d.ContributionDecimals)
	if err != nil {
		fail(w, "contribution_check", fmt.Errorf("amount: %w", err))
		return
	}
	limiter, err := limiterFor(d)
	if err != nil {
		fail(w, "contribution_check", err)
		return
	}
	totals, err := s.store.GetWalletTotals(ctx, d.ID)
	if err != nil {
		fail(w, "contribution_check", err)
		return
	}

	wallet := strings.TrimSpace(req.Wallet)
	resp := CheckResponse{Allowed: true}
	if err := limiter.CheckContribution(wallet, amount.Value, totals); err != nil {
		resp.Allowed = false
		resp.Reason = err.Error()
	}
	if rem := limiter.Remaining(wallet, totals); rem != nil {
		a := fixedpoint.NewAmount(rem, d.ContributionDecimals)
		resp.Remaining = &a
	}
	ok(w, "contribution_check", http.StatusOK, resp)
}

// ListContributions handles GET /api/v1/drafts/{draftID}/contributions
func (s *Service) ListContributions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	draftID := chi.URLParam(r, "draftID")
	if _, err := s.store.GetDraft(ctx, draftID); err != nil {
		writeError(w, "draft not found", http.StatusNotFound)
		return
	}
	cs, err := s.store.GetContributionsByDraft(ctx, draftID)
	if err != nil {
		writeError(w, "failed to get contributions", http.StatusInternalServerError)
		return
	}
	if cs == nil {
		cs = []model.Contribution{}
	}
	writeJSON(w, http.StatusOK, cs)
}

func valueOr0(v *big.Int) *big.Int {
	if v == nil {
		return new(big.Int)
	}
	return v
}
