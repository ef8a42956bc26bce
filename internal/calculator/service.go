// Package calculator exposes the token-economics engine over HTTP: amount
// conversion, basis-point parsing, allocation splits, swap fees, tokenomics
// validation and duration normalization, plus persisted sale drafts and
// their contribution ledger.
package calculator

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"

	"github.com/ExhibitionDefi/exhibition-defi-sub002/internal/bps"
	"github.com/ExhibitionDefi/exhibition-defi-sub002/internal/fixedpoint"
	"github.com/ExhibitionDefi/exhibition-defi-sub002/internal/launch"
	"github.com/ExhibitionDefi/exhibition-defi-sub002/internal/limits"
	"github.com/ExhibitionDefi/exhibition-defi-sub002/internal/metrics"
	"github.com/ExhibitionDefi/exhibition-defi-sub002/internal/store"
	"github.com/ExhibitionDefi/exhibition-defi-sub002/internal/swapfee"
	"github.com/ExhibitionDefi/exhibition-defi-sub002/internal/token"
	"github.com/ExhibitionDefi/exhibition-defi-sub002/internal/tokenomics"
)

// Service handles calculator and draft operations. Contribution recording
// is serialized with a mutex (single-instance) so the limit check and the
// ledger insert see the same totals.
type Service struct {
	store       store.Store
	platformFee bps.Rate
	swapFees    swapfee.Config
	mu          sync.Mutex
	wsHub       *WSHub // optional WebSocket hub for report broadcasts
}

// NewService creates a new calculator service.
// Pass nil for hub if WebSocket broadcasting is not needed.
func NewService(st store.Store, platformFee bps.Rate, swapFees swapfee.Config, hub *WSHub) *Service {
	return &Service{
		store:       st,
		platformFee: platformFee,
		swapFees:    swapFees,
		wsHub:       hub,
	}
}

// --- Response helpers ---

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// failure maps an engine, store or limit error to an HTTP status and a
// metrics outcome label.
func failure(err error) (int, string) {
	switch {
	case errors.Is(err, fixedpoint.ErrEmpty),
		errors.Is(err, fixedpoint.ErrInvalidNumber),
		errors.Is(err, fixedpoint.ErrOverflow),
		errors.Is(err, bps.ErrOutOfRange),
		errors.Is(err, token.ErrInvalidName),
		errors.Is(err, token.ErrInvalidSymbol),
		errors.Is(err, token.ErrInvalidDecimals),
		errors.Is(err, launch.ErrIncomplete):
		return http.StatusBadRequest, "invalid"
	case errors.Is(err, fixedpoint.ErrDivisionByZero):
		return http.StatusUnprocessableEntity, "division_by_zero"
	case errors.Is(err, swapfee.ErrProtocolExceedsTrading),
		errors.Is(err, swapfee.ErrInsufficientLiquidity):
		return http.StatusUnprocessableEntity, "invalid_pool"
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, limits.ErrInvalidAmount),
		errors.Is(err, limits.ErrBelowMinimum),
		errors.Is(err, limits.ErrAboveMaximum),
		errors.Is(err, limits.ErrHardCapExceeded):
		return http.StatusConflict, "limit"
	case errors.Is(err, errSaleNotOpen),
		errors.Is(err, errLedgerLocked):
		return http.StatusConflict, "state"
	default:
		return http.StatusInternalServerError, "error"
	}
}

// fail records the outcome of operation and writes the mapped error.
func fail(w http.ResponseWriter, operation string, err error) {
	status, outcome := failure(err)
	metrics.CalculationsTotal.WithLabelValues(operation, outcome).Inc()
	if status == http.StatusInternalServerError {
		slog.Error("request failed", "operation", operation, "err", err)
		writeError(w, "internal error", status)
		return
	}
	writeError(w, err.Error(), status)
}

// ok records a successful operation and writes v as JSON.
func ok(w http.ResponseWriter, operation string, status int, v any) {
	metrics.CalculationsTotal.WithLabelValues(operation, "ok").Inc()
	writeJSON(w, status, v)
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, "invalid request body", http.StatusBadRequest)
		return false
	}
	return true
}

// recordFindings counts a report's findings by kind and code.
func recordFindings(rep tokenomics.Report) {
	for _, f := range rep.Findings {
		metrics.ValidationFindings.WithLabelValues(f.Kind.String(), string(f.Code)).Inc()
	}
}
