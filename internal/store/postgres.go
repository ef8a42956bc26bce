package store

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ExhibitionDefi/exhibition-defi-sub002/internal/fixedpoint"
	"github.com/ExhibitionDefi/exhibition-defi-sub002/internal/model"
)

// PostgresStore implements Store using PostgreSQL as the source of truth.
// Form fields are stored as the TEXT the owner typed; ledger amounts are
// NUMERIC(78,0) base units so no uint256 value is ever truncated.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgreSQL-backed store.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const draftColumns = `id, owner, status, token_name, token_symbol,
		contribution_decimals, project_decimals,
		funding_goal, soft_cap, min_contribution, max_contribution,
		token_price, initial_total_supply, amount_tokens_for_sale, liquidity_percentage,
		sale_duration_days, liquidity_lock_days, vesting_cliff_days, vesting_duration_days,
		vesting_initial_release, created_at, updated_at`

func (s *PostgresStore) CreateDraft(ctx context.Context, d *model.SaleDraft) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO sale_drafts (`+draftColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22)`,
		d.ID, d.Owner, d.Status, d.TokenName, d.Symbol,
		int16(d.ContributionDecimals), int16(d.ProjectDecimals),
		d.FundingGoal, d.SoftCap, d.MinContribution, d.MaxContribution,
		d.TokenPrice, d.InitialTotalSupply, d.AmountTokensForSale, d.LiquidityPercentage,
		d.SaleDurationDays, d.LiquidityLockDays, d.VestingCliffDays, d.VestingDurationDays,
		d.VestingInitialRelease, d.CreatedAt, d.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("create draft %s: %w", d.ID, err)
	}
	return nil
}

func (s *PostgresStore) GetDraft(ctx context.Context, id string) (*model.SaleDraft, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+draftColumns+` FROM sale_drafts WHERE id = $1`, id)
	d, err := scanDraft(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("draft %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get draft %s: %w", id, err)
	}
	return d, nil
}

func (s *PostgresStore) ListDrafts(ctx context.Context, owner string) ([]model.SaleDraft, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+draftColumns+` FROM sale_drafts
		 WHERE $1 = '' OR owner = $1
		 ORDER BY created_at DESC`, owner)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var drafts []model.SaleDraft
	for rows.Next() {
		d, err := scanDraft(rows)
		if err != nil {
			return nil, err
		}
		drafts = append(drafts, *d)
	}
	return drafts, rows.Err()
}

func (s *PostgresStore) UpdateDraft(ctx context.Context, d *model.SaleDraft) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE sale_drafts
		 SET status = $2, token_name = $3, token_symbol = $4,
		     contribution_decimals = $5, project_decimals = $6,
		     funding_goal = $7, soft_cap = $8, min_contribution = $9, max_contribution = $10,
		     token_price = $11, initial_total_supply = $12, amount_tokens_for_sale = $13,
		     liquidity_percentage = $14, sale_duration_days = $15, liquidity_lock_days = $16,
		     vesting_cliff_days = $17, vesting_duration_days = $18, vesting_initial_release = $19,
		     updated_at = $20
		 WHERE id = $1`,
		d.ID, d.Status, d.TokenName, d.Symbol,
		int16(d.ContributionDecimals), int16(d.ProjectDecimals),
		d.FundingGoal, d.SoftCap, d.MinContribution, d.MaxContribution,
		d.TokenPrice, d.InitialTotalSupply, d.AmountTokensForSale,
		d.LiquidityPercentage, d.SaleDurationDays, d.LiquidityLockDays,
		d.VestingCliffDays, d.VestingDurationDays, d.VestingInitialRelease,
		d.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update draft %s: %w", d.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("draft %s: %w", d.ID, ErrNotFound)
	}
	return nil
}

func (s *PostgresStore) InsertContribution(ctx context.Context, c *model.Contribution) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO contributions (id, draft_id, wallet, amount, decimals, timestamp)
		 VALUES ($1, $2, $3, $4::NUMERIC, $5, $6)`,
		c.ID, c.DraftID, c.Wallet, c.Amount.Value.String(), int16(c.Amount.Decimals), c.Timestamp,
	)
	return err
}

func (s *PostgresStore) GetContributionsByDraft(ctx context.Context, draftID string) ([]model.Contribution, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, draft_id, wallet, amount::TEXT, decimals, timestamp
		 FROM contributions WHERE draft_id = $1 ORDER BY timestamp`, draftID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []model.Contribution
	for rows.Next() {
		var c model.Contribution
		var amountS string
		var decimals int16
		if err := rows.Scan(&c.ID, &c.DraftID, &c.Wallet, &amountS, &decimals, &c.Timestamp); err != nil {
			return nil, err
		}
		v, ok := new(big.Int).SetString(amountS, 10)
		if !ok {
			return nil, fmt.Errorf("contribution %s: bad amount %q", c.ID, amountS)
		}
		c.Amount = fixedpoint.Amount{Value: v, Decimals: uint8(decimals)}
		entries = append(entries, c)
	}
	return entries, rows.Err()
}

func (s *PostgresStore) GetWalletTotals(ctx context.Context, draftID string) (map[string]*big.Int, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT wallet, COALESCE(SUM(amount), 0)::TEXT
		 FROM contributions WHERE draft_id = $1
		 GROUP BY wallet`, draftID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	totals := make(map[string]*big.Int)
	for rows.Next() {
		var wallet, totalS string
		if err := rows.Scan(&wallet, &totalS); err != nil {
			return nil, err
		}
		v, ok := new(big.Int).SetString(totalS, 10)
		if !ok {
			return nil, fmt.Errorf("wallet %s: bad total %q", wallet, totalS)
		}
		totals[wallet] = v
	}
	return totals, rows.Err()
}

// scanDraft reads one sale_drafts row in draftColumns order.
func scanDraft(row pgx.Row) (*model.SaleDraft, error) {
	var d model.SaleDraft
	var contribDec, projectDec int16
	if err := row.Scan(&d.ID, &d.Owner, &d.Status, &d.TokenName, &d.Symbol,
		&contribDec, &projectDec,
		&d.FundingGoal, &d.SoftCap, &d.MinContribution, &d.MaxContribution,
		&d.TokenPrice, &d.InitialTotalSupply, &d.AmountTokensForSale, &d.LiquidityPercentage,
		&d.SaleDurationDays, &d.LiquidityLockDays, &d.VestingCliffDays, &d.VestingDurationDays,
		&d.VestingInitialRelease, &d.CreatedAt, &d.UpdatedAt); err != nil {
		return nil, err
	}
	d.ContributionDecimals = uint8(contribDec)
	d.ProjectDecimals = uint8(projectDec)
	return &d, nil
}
