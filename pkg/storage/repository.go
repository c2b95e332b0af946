package storage

import (
	"context"
	"fmt"
	"time"

	"osrs-toolkit/pkg/market"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// RunRecord summarizes one persisted analysis run
type RunRecord struct {
	ID          int64
	JobName     string
	Strategy    string
	Summary     string
	CatalogSize int
	CreatedAt   time.Time
}

// querier is the slice of the pgx pool surface the repository uses; tests
// substitute a fake here.
type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error)
}

var _ querier = (*pgxpool.Pool)(nil)

// Repository persists analysis runs and their ranked opportunities
type Repository struct {
	pool querier
}

// NewRepository creates a new Repository
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// SaveRun stores one report under the given job name and returns the run
// id. The opportunity rows go in via COPY, one batch per run.
func (r *Repository) SaveRun(ctx context.Context, jobName string, report *market.Report) (int64, error) {
	var runID int64
	err := r.pool.QueryRow(ctx, `
		INSERT INTO analysis_runs (job_name, strategy, summary, catalog_size, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`, jobName, string(report.Strategy), report.Summary, report.CatalogSize, report.GeneratedAt).Scan(&runID)
	if err != nil {
		return 0, fmt.Errorf("insert analysis run: %w", err)
	}

	if len(report.Items) == 0 {
		return runID, nil
	}

	columns := []string{
		"run_id", "rank", "item_id", "name", "buy_price", "sell_price",
		"profit_per_unit", "roi_percent", "trade_limit", "volume_24h",
		"hourly_profit", "trend",
	}

	_, err = r.pool.CopyFrom(
		ctx,
		pgx.Identifier{"opportunities"},
		columns,
		pgx.CopyFromSlice(len(report.Items), func(i int) ([]interface{}, error) {
			opp := report.Items[i]
			return []interface{}{
				runID,
				i + 1,
				opp.ItemID,
				opp.Name,
				opp.BuyPrice,
				opp.SellPrice,
				opp.ProfitPerUnit,
				opp.ROIPercent,
				opp.TradeLimit,
				opp.Volume24h,
				opp.HourlyProfitEstimate,
				string(opp.Trend),
			}, nil
		}),
	)
	if err != nil {
		return 0, fmt.Errorf("copy opportunities: %w", err)
	}

	return runID, nil
}

// LatestRun returns the most recent persisted run for a job, or nil when
// the job has never run.
func (r *Repository) LatestRun(ctx context.Context, jobName string) (*RunRecord, error) {
	var rec RunRecord
	err := r.pool.QueryRow(ctx, `
		SELECT id, job_name, strategy, summary, catalog_size, created_at
		FROM analysis_runs
		WHERE job_name = $1
		ORDER BY created_at DESC
		LIMIT 1
	`, jobName).Scan(&rec.ID, &rec.JobName, &rec.Strategy, &rec.Summary, &rec.CatalogSize, &rec.CreatedAt)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query latest run: %w", err)
	}
	return &rec, nil
}

// TopItems returns the ranked opportunities of a run, best first
func (r *Repository) TopItems(ctx context.Context, runID int64, limit int) ([]market.Opportunity, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT item_id, name, buy_price, sell_price, profit_per_unit,
		       roi_percent, trade_limit, volume_24h, hourly_profit, trend
		FROM opportunities
		WHERE run_id = $1
		ORDER BY rank ASC
		LIMIT $2
	`, runID, limit)
	if err != nil {
		return nil, fmt.Errorf("query opportunities: %w", err)
	}
	defer rows.Close()

	var items []market.Opportunity
	for rows.Next() {
		var opp market.Opportunity
		var trend string
		if err := rows.Scan(&opp.ItemID, &opp.Name, &opp.BuyPrice, &opp.SellPrice,
			&opp.ProfitPerUnit, &opp.ROIPercent, &opp.TradeLimit, &opp.Volume24h,
			&opp.HourlyProfitEstimate, &trend); err != nil {
			return nil, fmt.Errorf("scan opportunity: %w", err)
		}
		opp.Trend = market.Trend(trend)
		items = append(items, opp)
	}
	return items, rows.Err()
}

// RunCount returns the total number of persisted runs
func (r *Repository) RunCount(ctx context.Context) (int64, error) {
	var count int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM analysis_runs`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count runs: %w", err)
	}
	return count, nil
}
