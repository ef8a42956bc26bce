package calculator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/ExhibitionDefi/exhibition-defi-sub002/internal/allocation"
	"github.com/ExhibitionDefi/exhibition-defi-sub002/internal/launch"
	"github.com/ExhibitionDefi/exhibition-defi-sub002/internal/limits"
	"github.com/ExhibitionDefi/exhibition-defi-sub002/internal/metrics"
	"github.com/ExhibitionDefi/exhibition-defi-sub002/internal/model"
	"github.com/ExhibitionDefi/exhibition-defi-sub002/internal/token"
	"github.com/ExhibitionDefi/exhibition-defi-sub002/internal/tokenomics"
)

var (
	// errDraftLocked is returned when a submitted draft is edited.
	errDraftLocked = errors.New("draft already submitted")
	// errSaleNotOpen is returned for contributions to an unsubmitted draft.
	errSaleNotOpen = errors.New("draft not submitted; contributions are closed")
	// errLedgerLocked is returned when an edit would reprice recorded
	// contributions.
	errLedgerLocked = errors.New("contribution decimals and funding goal are fixed once contributions exist")
)

// DraftRequest is the JSON body for POST /drafts and PUT /drafts/{draftID}.
// Numeric fields are decimal text as typed; empty means not entered.
type DraftRequest struct {
	Owner     string `json:"owner"`
	TokenName string `json:"token_name"`
	Symbol    string `json:"token_symbol"`

	ContributionDecimals *uint8 `json:"contribution_decimals"` // nil keeps the current value (18 on create)
	ProjectDecimals      *uint8 `json:"project_decimals"`      // nil keeps the current value (18 on create)

	FundingGoal         string `json:"funding_goal"`
	SoftCap             string `json:"soft_cap"`
	MinContribution     string `json:"min_contribution"`
	MaxContribution     string `json:"max_contribution"`
	TokenPrice          string `json:"token_price"`
	InitialTotalSupply  string `json:"initial_total_supply"`
	AmountTokensForSale string `json:"amount_tokens_for_sale"`
	LiquidityPercentage string `json:"liquidity_percentage"`

	SaleDurationDays      string `json:"sale_duration_days"`
	LiquidityLockDays     string `json:"liquidity_lock_days"`
	VestingCliffDays      string `json:"vesting_cliff_days"`
	VestingDurationDays   string `json:"vesting_duration_days"`
	VestingInitialRelease string `json:"vesting_initial_release"`

	// Submit moves the draft to submitted once it converts cleanly to
	// launch arguments. Submitted drafts are read-only.
	Submit bool `json:"submit"`
}

// DraftResponse pairs a saved draft with its current validation report.
type DraftResponse struct {
	Draft  *model.SaleDraft  `json:"draft"`
	Report tokenomics.Report `json:"report"`
}

// apply copies the form fields of req onto d. Omitted decimals leave d's
// current values in place.
func (req *DraftRequest) apply(d *model.SaleDraft) {
	d.TokenName = strings.TrimSpace(req.TokenName)
	d.Symbol = strings.ToUpper(strings.TrimSpace(req.Symbol))
	if req.ContributionDecimals != nil {
		d.ContributionDecimals = *req.ContributionDecimals
	}
	if req.ProjectDecimals != nil {
		d.ProjectDecimals = *req.ProjectDecimals
	}
	d.FundingGoal = req.FundingGoal
	d.SoftCap = req.SoftCap
	d.MinContribution = req.MinContribution
	d.MaxContribution = req.MaxContribution
	d.TokenPrice = req.TokenPrice
	d.InitialTotalSupply = req.InitialTotalSupply
	d.AmountTokensForSale = req.AmountTokensForSale
	d.LiquidityPercentage = req.LiquidityPercentage
	d.SaleDurationDays = req.SaleDurationDays
	d.LiquidityLockDays = req.LiquidityLockDays
	d.VestingCliffDays = req.VestingCliffDays
	d.VestingDurationDays = req.VestingDurationDays
	d.VestingInitialRelease = req.VestingInitialRelease
}

// checkDraft validates the parts of a draft that can be checked before the
// form is complete: decimals always, token metadata once either is entered.
// It returns the draft's tokenomics report.
func checkDraft(d *model.SaleDraft) (tokenomics.Report, error) {
	if err := token.CheckDecimals(d.ContributionDecimals); err != nil {
		return tokenomics.Report{}, err
	}
	if d.TokenName != "" || d.Symbol != "" {
		if _, err := token.ParseMetadata(d.TokenName, d.Symbol, d.ProjectDecimals); err != nil {
			return tokenomics.Report{}, err
		}
	} else if err := token.CheckDecimals(d.ProjectDecimals); err != nil {
		return tokenomics.Report{}, err
	}
	return tokenomics.Validate(d.TokenomicsInput())
}

// CreateDraft handles POST /api/v1/drafts
func (s *Service) CreateDraft(w http.ResponseWriter, r *http.Request) {
	var req DraftRequest
	if !decode(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Owner) == "" {
		writeError(w, "owner is required", http.StatusBadRequest)
		return
	}

	now := time.Now().UTC()
	d := &model.SaleDraft{
		ID:        uuid.New().String(),
		Owner:     strings.TrimSpace(req.Owner),
		Status:    model.StatusDraft,
		CreatedAt: now,
		UpdatedAt: now,

		ContributionDecimals: token.DefaultDecimals,
		ProjectDecimals:      token.DefaultDecimals,
	}
	req.apply(d)

	rep, err := s.save(r.Context(), d, req.Submit, true)
	if err != nil {
		fail(w, "draft_create", err)
		return
	}

	slog.Info("draft created",
		"id", d.ID,
		"owner", d.Owner,
		"status", d.Status,
		"valid", rep.Valid,
	)
	ok(w, "draft_create", http.StatusCreated, DraftResponse{Draft: d, Report: rep})
}

// UpdateDraft handles PUT /api/v1/drafts/{draftID}
func (s *Service) UpdateDraft(w http.ResponseWriter, r *http.Request) {
	var req DraftRequest
	if !decode(w, r, &req) {
		return
	}

	ctx := r.Context()
	d, err := s.store.GetDraft(ctx, chi.URLParam(r, "draftID"))
	if err != nil {
		fail(w, "draft_update", err)
		return
	}
	if d.Status == model.StatusSubmitted {
		writeError(w, errDraftLocked.Error(), http.StatusConflict)
		return
	}

	prev := *d
	req.apply(d)
	if err := s.checkLedgerLock(ctx, &prev, d); err != nil {
		fail(w, "draft_update", err)
		return
	}
	d.UpdatedAt = time.Now().UTC()

	rep, err := s.save(ctx, d, req.Submit, false)
	if err != nil {
		fail(w, "draft_update", err)
		return
	}

	slog.Info("draft updated", "id", d.ID, "status", d.Status, "valid", rep.Valid)
	ok(w, "draft_update", http.StatusOK, DraftResponse{Draft: d, Report: rep})
}

// checkLedgerLock refuses edits that change how recorded contributions are
// read: their decimals and the hard cap they were checked against.
func (s *Service) checkLedgerLock(ctx context.Context, prev, next *model.SaleDraft) error {
	if prev.ContributionDecimals == next.ContributionDecimals &&
		strings.TrimSpace(prev.FundingGoal) == strings.TrimSpace(next.FundingGoal) {
		return nil
	}
	cs, err := s.store.GetContributionsByDraft(ctx, prev.ID)
	if err != nil {
		return err
	}
	if len(cs) > 0 {
		return fmt.Errorf("%w: %d recorded", errLedgerLocked, len(cs))
	}
	return nil
}

// save validates d, optionally submits it, and persists it. Every save is
// broadcast to the draft's watchers.
func (s *Service) save(ctx context.Context, d *model.SaleDraft, submit, create bool) (tokenomics.Report, error) {
	rep, err := checkDraft(d)
	if err != nil {
		return tokenomics.Report{}, err
	}
	recordFindings(rep)

	action := "update"
	if create {
		action = "create"
	}
	if submit {
		if !rep.Valid {
			return rep, fmt.Errorf("%w: tokenomics has %d warning(s)", launch.ErrIncomplete, len(rep.Warnings()))
		}
		if _, err := launch.Build(d); err != nil {
			return rep, err
		}
		d.Status = model.StatusSubmitted
		action = "submit"
	}

	if create {
		err = s.store.CreateDraft(ctx, d)
	} else {
		err = s.store.UpdateDraft(ctx, d)
	}
	if err != nil {
		return rep, err
	}
	metrics.DraftsSaved.WithLabelValues(action).Inc()

	if s.wsHub != nil {
		s.wsHub.Broadcast(WSMessage{
			Type:    MsgDraftValidated,
			DraftID: d.ID,
			Report:  &rep,
		})
	}
	return rep, nil
}

// GetDraft handles GET /api/v1/drafts/{draftID}
func (s *Service) GetDraft(w http.ResponseWriter, r *http.Request) {
	d, err := s.store.GetDraft(r.Context(), chi.URLParam(r, "draftID"))
	if err != nil {
		writeError(w, "draft not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

// ListDrafts handles GET /api/v1/drafts
// Optionally filtered by ?owner=<address>.
func (s *Service) ListDrafts(w http.ResponseWriter, r *http.Request) {
	drafts, err := s.store.ListDrafts(r.Context(), r.URL.Query().Get("owner"))
	if err != nil {
		writeError(w, "failed to list drafts", http.StatusInternalServerError)
		return
	}
	if drafts == nil {
		drafts = []model.SaleDraft{}
	}
	writeJSON(w, http.StatusOK, drafts)
}

// GetDraftReport handles GET /api/v1/drafts/{draftID}/report
func (s *Service) GetDraftReport(w http.ResponseWriter, r *http.Request) {
	d, err := s.store.GetDraft(r.Context(), chi.URLParam(r, "draftID"))
	if err != nil {
		fail(w, "draft_report", err)
		return
	}
	rep, err := tokenomics.Validate(d.TokenomicsInput())
	if err != nil {
		fail(w, "draft_report", err)
		return
	}
	ok(w, "draft_report", http.StatusOK, model.DraftReport{DraftID: d.ID, Report: rep})
}

// GetDraftArgs handles GET /api/v1/drafts/{draftID}/launch-args
// Returns the createProject arguments, or 409 while the tokenomics report
// still carries warnings.
func (s *Service) GetDraftArgs(w http.ResponseWriter, r *http.Request) {
	d, err := s.store.GetDraft(r.Context(), chi.URLParam(r, "draftID"))
	if err != nil {
		fail(w, "launch_args", err)
		return
	}
	rep, err := tokenomics.Validate(d.TokenomicsInput())
	if err != nil {
		fail(w, "launch_args", err)
		return
	}
	if !rep.Valid {
		metrics.CalculationsTotal.WithLabelValues("launch_args", "invalid").Inc()
		writeJSON(w, http.StatusConflict, map[string]any{
			"error":    "tokenomics report has warnings",
			"warnings": rep.Warnings(),
		})
		return
	}
	args, err := launch.Build(d)
	if err != nil {
		fail(w, "launch_args", err)
		return
	}
	ok(w, "launch_args", http.StatusOK, args)
}

// GetDraftAllocation handles GET /api/v1/drafts/{draftID}/allocation
// Splits what the sale has raised so far, or the funding goal while no
// contribution is recorded.
func (s *Service) GetDraftAllocation(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	d, err := s.store.GetDraft(ctx, chi.URLParam(r, "draftID"))
	if err != nil {
		fail(w, "draft_allocation", err)
		return
	}
	totals, err := s.store.GetWalletTotals(ctx, d.ID)
	if err != nil {
		fail(w, "draft_allocation", err)
		return
	}

	var res allocation.Result
	if raised := limits.TotalRaised(totals); raised.Sign() > 0 {
		res, err = s.splitBase(raised, d.TokenPrice, d.LiquidityPercentage, s.platformFee,
			d.ContributionDecimals, d.ProjectDecimals)
	} else {
		res, err = s.split(d.FundingGoal, d.TokenPrice, d.LiquidityPercentage, s.platformFee,
			d.ContributionDecimals, d.ProjectDecimals)
	}
	if err != nil {
		fail(w, "draft_allocation", err)
		return
	}
	ok(w, "draft_allocation", http.StatusOK, res)
}
