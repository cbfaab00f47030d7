package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/bennettsui/5ml-agenticai-v1-sub007/infrastructure/database/postgres"
	"github.com/bennettsui/5ml-agenticai-v1-sub007/internal/domain"
)

const (
	performanceTable = "ads_daily_performance"
)

var performanceColumns = []string{
	"platform", "tenant_id", "account_id", "campaign_id", "campaign_name", "date",
	"impressions", "reach", "clicks", "spend", "conversions", "revenue",
	"cpc", "cpm", "ctr", "roas",
}

// A chave natural nunca aparece no SET; só as colunas mutáveis são sobrescritas
const upsertSuffix = `
	ON CONFLICT (platform, tenant_id, campaign_id, date) DO UPDATE SET
		account_id = EXCLUDED.account_id,
		campaign_name = EXCLUDED.campaign_name,
		impressions = EXCLUDED.impressions,
		reach = EXCLUDED.reach,
		clicks = EXCLUDED.clicks,
		spend = EXCLUDED.spend,
		conversions = EXCLUDED.conversions,
		revenue = EXCLUDED.revenue,
		cpc = EXCLUDED.cpc,
		cpm = EXCLUDED.cpm,
		ctr = EXCLUDED.ctr,
		roas = EXCLUDED.roas,
		updated_at = NOW()
`

//go:generate mockgen -source=performance.go -destination=mocks/performance.go -package=mocks
type PerformanceRepository interface {
	Upsert(ctx context.Context, rows []domain.DailyMetric, tenantID string) (int, error)
	Query(ctx context.Context, filter domain.PerformanceFilter) ([]domain.DailyMetric, error)
	QueryAggregated(ctx context.Context, filter domain.PerformanceFilter) ([]domain.AggregatedMetric, error)
}

type performanceRepository struct {
	conn postgres.Conn
}

func NewPerformanceRepository(conn postgres.Conn) PerformanceRepository {
	return &performanceRepository{
		conn: conn,
	}
}

// Upsert grava o lote inteiro numa única transação. Um lote com linha de outro
// tenant é recusado antes de qualquer escrita.
func (r *performanceRepository) Upsert(ctx context.Context, rows []domain.DailyMetric, tenantID string) (int, error) {
	if len(rows) == 0 {
		return 0, nil
	}

	for _, row := range rows {
		if row.TenantID != tenantID {
			return 0, fmt.Errorf("%w: campaign %s has tenant %q, batch tenant %q",
				domain.ErrTenantMismatch, row.CampaignID, row.TenantID, tenantID)
		}
	}

	written := 0
	err := r.conn.RunInTransaction(ctx, func(tx *sql.Tx) error {
		for _, row := range rows {
			query, args, err := upsertQuery(row)
			if err != nil {
				return fmt.Errorf("erro ao construir a query: %w", err)
			}

			if _, err := tx.ExecContext(ctx, query, args...); err != nil {
				return fmt.Errorf("erro ao gravar campanha %s em %s: %w",
					row.CampaignID, row.Date.Format(time.DateOnly), err)
			}
			written++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	return written, nil
}

func upsertQuery(row domain.DailyMetric) (string, []any, error) {
	return squirrel.StatementBuilder.
		Insert(performanceTable).
		Columns(performanceColumns...).
		Values(
			string(row.Platform),
			row.TenantID,
			row.AccountID,
			row.CampaignID,
			row.CampaignName,
			row.Date.Format(time.DateOnly),
			row.Impressions,
			nullInt64(row.Reach),
			row.Clicks,
			row.Spend,
			row.Conversions,
			row.Revenue,
			row.CPC,
			row.CPM,
			row.CTR,
			row.ROAS,
		).
		Suffix(upsertSuffix).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
}

// Query devolve as linhas do recorte ordenadas por data desc e nome de campanha
func (r *performanceRepository) Query(ctx context.Context, filter domain.PerformanceFilter) ([]domain.DailyMetric, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	builder := squirrel.
		Select(append(append([]string{}, performanceColumns...), "updated_at")...).
		From(performanceTable).
		Where(squirrel.GtOrEq{"date": filter.From.Format(time.DateOnly)}).
		Where(squirrel.LtOrEq{"date": filter.To.Format(time.DateOnly)}).
		OrderBy("date DESC", "campaign_name ASC").
		PlaceholderFormat(squirrel.Dollar)

	if filter.TenantID != "" {
		builder = builder.Where(squirrel.Eq{"tenant_id": filter.TenantID})
	}
	if filter.Platform != "" {
		builder = builder.Where(squirrel.Eq{"platform": string(filter.Platform)})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("erro ao construir a query: %w", err)
	}

	rows, err := r.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("erro ao executar a query: %w", err)
	}
	defer rows.Close()

	metrics := make([]domain.DailyMetric, 0)
	for rows.Next() {
		metric, err := scanDailyMetric(rows)
		if err != nil {
			return nil, fmt.Errorf("erro ao escanear performance: %w", err)
		}
		metrics = append(metrics, metric)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("erro durante a iteração de linhas: %w", err)
	}

	return metrics, nil
}

// QueryAggregated soma o recorte por data; o ROAS é recalculado sobre os totais
func (r *performanceRepository) QueryAggregated(ctx context.Context, filter domain.PerformanceFilter) ([]domain.AggregatedMetric, error) {
	rows, err := r.Query(ctx, filter)
	if err != nil {
		return nil, err
	}

	return domain.AggregateDaily(rows), nil
}

func scanDailyMetric(rows *sql.Rows) (domain.DailyMetric, error) {
	var (
		m        domain.DailyMetric
		platform string
		reach    sql.NullInt64
	)

	err := rows.Scan(
		&platform,
		&m.TenantID,
		&m.AccountID,
		&m.CampaignID,
		&m.CampaignName,
		&m.Date,
		&m.Impressions,
		&reach,
		&m.Clicks,
		&m.Spend,
		&m.Conversions,
		&m.Revenue,
		&m.CPC,
		&m.CPM,
		&m.CTR,
		&m.ROAS,
		&m.UpdatedAt,
	)
	if err != nil {
		return domain.DailyMetric{}, err
	}

	m.Platform = domain.Platform(platform)
	m.Date = domain.DateOnly(m.Date)
	if reach.Valid {
		value := reach.Int64
		m.Reach = &value
	}

	return m, nil
}

func nullInt64(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}
