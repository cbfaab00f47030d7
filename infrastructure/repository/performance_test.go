package repository

import (
	"context"
	"database/sql/driver"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bennettsui/5ml-agenticai-v1-sub007/infrastructure/database/postgres"
	"github.com/bennettsui/5ml-agenticai-v1-sub007/internal/domain"
)

var upsertPattern = regexp.QuoteMeta("INSERT INTO ads_daily_performance") + ".*" +
	regexp.QuoteMeta("ON CONFLICT (platform, tenant_id, campaign_id, date) DO UPDATE SET")

func newMockConn(t *testing.T) (*postgres.Connection, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return &postgres.Connection{DB: db}, mock
}

func anyArgs(n int) []driver.Value {
	args := make([]driver.Value, n)
	for i := range args {
		args[i] = sqlmock.AnyArg()
	}
	return args
}

func metaRow(tenant, campaign string, day time.Time) domain.DailyMetric {
	spend := decimal.NewFromInt(50)
	return domain.DailyMetric{
		Platform:     domain.PlatformMeta,
		TenantID:     tenant,
		AccountID:    "act_123",
		CampaignID:   campaign,
		CampaignName: "Campanha " + campaign,
		Date:         day,
		Impressions:  1000,
		Clicks:       10,
		Spend:        spend,
		CPC:          domain.DeriveCPC(spend, 10),
		CPM:          domain.DeriveCPM(spend, 1000),
		CTR:          domain.DeriveCTR(10, 1000),
	}
}

func TestUpsertSuffixNeverTouchesNaturalKey(t *testing.T) {
	for _, key := range []string{"platform", "tenant_id", "campaign_id", "date"} {
		assert.NotContains(t, upsertSuffix, "\t"+key+" = EXCLUDED", key)
	}
	for _, column := range []string{"campaign_name", "impressions", "reach", "clicks", "spend", "conversions", "revenue", "cpc", "cpm", "ctr", "roas"} {
		assert.Contains(t, upsertSuffix, column+" = EXCLUDED."+column)
	}
	assert.Contains(t, upsertSuffix, "updated_at = NOW()")
}

func TestPerformanceRepository_Upsert(t *testing.T) {
	conn, mock := newMockConn(t)
	repo := NewPerformanceRepository(conn)
	day := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)

	args := anyArgs(len(performanceColumns))
	args[0] = "meta"
	args[1] = "t1"
	args[5] = "2026-02-01"

	mock.ExpectBegin()
	mock.ExpectExec(upsertPattern).WithArgs(args...).WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(upsertPattern).WithArgs(args...).WillReturnResult(sqlmock.NewResult(2, 1))
	mock.ExpectCommit()

	count, err := repo.Upsert(context.Background(), []domain.DailyMetric{
		metaRow("t1", "c1", day),
		metaRow("t1", "c2", day),
	}, "t1")

	require.NoError(t, err)
	assert.Equal(t, 2, count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPerformanceRepository_UpsertSameKeyTwice(t *testing.T) {
	conn, mock := newMockConn(t)
	repo := NewPerformanceRepository(conn)
	day := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)

	first := metaRow("t1", "c1", day)
	updated := metaRow("t1", "c1", day)
	updated.CampaignName = "Campanha renomeada"
	updated.Spend = decimal.NewFromInt(75)

	// a mesma chave natural nas duas gravações; só os valores mudam
	keyArgs := func(row domain.DailyMetric) []driver.Value {
		args := anyArgs(len(performanceColumns))
		args[0] = "meta"
		args[1] = "t1"
		args[3] = "c1"
		args[4] = row.CampaignName
		args[5] = "2026-02-01"
		args[9] = row.Spend.String()
		return args
	}

	mock.ExpectBegin()
	mock.ExpectExec(upsertPattern).WithArgs(keyArgs(first)...).WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()
	mock.ExpectBegin()
	// ON CONFLICT DO UPDATE reporta 1 linha afetada, sem duplicar
	mock.ExpectExec(upsertPattern).WithArgs(keyArgs(updated)...).WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	count, err := repo.Upsert(context.Background(), []domain.DailyMetric{first}, "t1")
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	count, err = repo.Upsert(context.Background(), []domain.DailyMetric{updated}, "t1")
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPerformanceRepository_UpsertRollsBackOnFailure(t *testing.T) {
	conn, mock := newMockConn(t)
	repo := NewPerformanceRepository(conn)
	day := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectExec(upsertPattern).WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(upsertPattern).WillReturnError(errors.New("deadlock detected"))
	mock.ExpectRollback()

	count, err := repo.Upsert(context.Background(), []domain.DailyMetric{
		metaRow("t1", "c1", day),
		metaRow("t1", "c2", day),
	}, "t1")

	assert.Error(t, err)
	assert.Equal(t, 0, count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPerformanceRepository_UpsertRejectsForeignTenant(t *testing.T) {
	conn, mock := newMockConn(t)
	repo := NewPerformanceRepository(conn)
	day := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)

	count, err := repo.Upsert(context.Background(), []domain.DailyMetric{
		metaRow("t1", "c1", day),
		metaRow("t2", "c2", day),
	}, "t1")

	assert.ErrorIs(t, err, domain.ErrTenantMismatch)
	assert.Equal(t, 0, count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPerformanceRepository_UpsertEmptyBatch(t *testing.T) {
	conn, mock := newMockConn(t)

	count, err := NewPerformanceRepository(conn).Upsert(context.Background(), nil, "t1")

	assert.NoError(t, err)
	assert.Equal(t, 0, count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func performanceRows() *sqlmock.Rows {
	return sqlmock.NewRows(append(append([]string{}, performanceColumns...), "updated_at"))
}

func TestPerformanceRepository_QueryAggregatedScenario(t *testing.T) {
	conn, mock := newMockConn(t)
	repo := NewPerformanceRepository(conn)
	day := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)

	rows := performanceRows().AddRow(
		"meta", "t1", "act_123", "c1", "Campanha c1", day,
		int64(1000), nil, int64(10), "50.000000", nil, nil,
		"5.000000", "50.000000", "1.000000", nil, time.Now(),
	)
	mock.ExpectQuery(regexp.QuoteMeta("FROM ads_daily_performance WHERE date >= $1 AND date <= $2 AND tenant_id = $3 AND platform = $4 ORDER BY date DESC, campaign_name ASC")).
		WithArgs("2026-02-01", "2026-02-01", "t1", "meta").
		WillReturnRows(rows)

	result, err := repo.QueryAggregated(context.Background(), domain.PerformanceFilter{
		TenantID: "t1",
		Platform: domain.PlatformMeta,
		From:     day,
		To:       day,
	})

	require.NoError(t, err)
	require.Len(t, result, 1)
	assert.Equal(t, day, result[0].Date)
	assert.Equal(t, int64(1000), result[0].Impressions)
	assert.Equal(t, int64(10), result[0].Clicks)
	assert.True(t, decimal.NewFromInt(50).Equal(result[0].Spend))
	assert.True(t, result[0].ROAS.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPerformanceRepository_QueryScansNullables(t *testing.T) {
	conn, mock := newMockConn(t)
	repo := NewPerformanceRepository(conn)
	day := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)

	rows := performanceRows().
		AddRow("meta", "t1", "act_123", "c1", "A", day, int64(100), int64(80), int64(0), "10", "1", "30", nil, "100", "0", "3", time.Now()).
		AddRow("google", "t1", "111", "g1", "B", day, int64(0), nil, int64(0), "0", "0", "0", nil, nil, nil, nil, time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("FROM ads_daily_performance")).
		WithArgs("2026-02-01", "2026-02-01", "t1").
		WillReturnRows(rows)

	result, err := repo.Query(context.Background(), domain.PerformanceFilter{TenantID: "t1", From: day, To: day})

	require.NoError(t, err)
	require.Len(t, result, 2)
	require.NotNil(t, result[0].Reach)
	assert.Equal(t, int64(80), *result[0].Reach)
	assert.False(t, result[0].CPC.Valid)
	assert.True(t, result[0].ROAS.Valid)
	assert.Equal(t, domain.PlatformGoogle, result[1].Platform)
	assert.Nil(t, result[1].Reach)
	assert.False(t, result[1].ROAS.Valid)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPerformanceRepository_QueryInvalidRange(t *testing.T) {
	conn, mock := newMockConn(t)
	day := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)

	_, err := NewPerformanceRepository(conn).Query(context.Background(), domain.PerformanceFilter{From: day, To: day.AddDate(0, 0, -1)})

	assert.ErrorIs(t, err, domain.ErrInvalidDateRange)
	assert.NoError(t, mock.ExpectationsWereMet())
}
