package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func nullDec(s string) decimal.NullDecimal {
	return decimal.NewNullDecimal(dec(s))
}

func TestDerivedRatios(t *testing.T) {
	tests := []struct {
		name        string
		spend       string
		clicks      int64
		impressions int64
		wantCPC     decimal.NullDecimal
		wantCPM     decimal.NullDecimal
		wantCTR     decimal.NullDecimal
	}{
		{
			name:        "valores normais",
			spend:       "50",
			clicks:      10,
			impressions: 1000,
			wantCPC:     nullDec("5"),
			wantCPM:     nullDec("50"),
			wantCTR:     nullDec("1"),
		},
		{
			name:        "sem cliques gera cpc nulo",
			spend:       "100",
			clicks:      0,
			impressions: 2000,
			wantCPC:     decimal.NullDecimal{},
			wantCPM:     nullDec("50"),
			wantCTR:     nullDec("0"),
		},
		{
			name:        "sem impressões gera cpm e ctr nulos",
			spend:       "10",
			clicks:      0,
			impressions: 0,
			wantCPC:     decimal.NullDecimal{},
			wantCPM:     decimal.NullDecimal{},
			wantCTR:     decimal.NullDecimal{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spend := dec(tt.spend)
			assertNullDecimal(t, tt.wantCPC, DeriveCPC(spend, tt.clicks))
			assertNullDecimal(t, tt.wantCPM, DeriveCPM(spend, tt.impressions))
			assertNullDecimal(t, tt.wantCTR, DeriveCTR(tt.clicks, tt.impressions))
		})
	}
}

func TestDeriveROAS(t *testing.T) {
	assertNullDecimal(t, nullDec("3"), DeriveROAS(nullDec("30"), dec("10")))
	assertNullDecimal(t, decimal.NullDecimal{}, DeriveROAS(nullDec("30"), dec("0")))
	assertNullDecimal(t, decimal.NullDecimal{}, DeriveROAS(decimal.NullDecimal{}, dec("10")))
}

func TestCoalescePrefersNative(t *testing.T) {
	assertNullDecimal(t, nullDec("1.5"), Coalesce(nullDec("1.5"), nullDec("9")))
	assertNullDecimal(t, nullDec("9"), Coalesce(decimal.NullDecimal{}, nullDec("9")))
}

func TestAggregateDaily_ROASFromTotals(t *testing.T) {
	day := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	rows := []DailyMetric{
		{CampaignID: "a", Date: day, Impressions: 100, Clicks: 5, Spend: dec("10"), Revenue: nullDec("30"), ROAS: nullDec("3")},
		{CampaignID: "b", Date: day, Impressions: 200, Clicks: 7, Spend: dec("20"), Revenue: nullDec("0"), ROAS: nullDec("0")},
		{CampaignID: "c", Date: day, Impressions: 0, Clicks: 0, Spend: dec("0")},
	}

	result := AggregateDaily(rows)

	assert.Len(t, result, 1)
	assert.Equal(t, day, result[0].Date)
	assert.Equal(t, int64(300), result[0].Impressions)
	assert.Equal(t, int64(12), result[0].Clicks)
	assert.True(t, dec("30").Equal(result[0].Spend))
	assert.True(t, dec("30").Equal(result[0].Revenue))
	assert.True(t, dec("1").Equal(result[0].ROAS), "roas = %s", result[0].ROAS)
}

func TestAggregateDaily_ZeroSpendAndOrdering(t *testing.T) {
	d1 := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	d2 := time.Date(2026, 2, 2, 15, 30, 0, 0, time.UTC)
	rows := []DailyMetric{
		{CampaignID: "a", Date: d1, Spend: dec("0"), Revenue: nullDec("12")},
		{CampaignID: "a", Date: d2, Spend: dec("0.1"), Conversions: nullDec("1")},
		{CampaignID: "b", Date: d2, Spend: dec("0.2"), Conversions: nullDec("2")},
	}

	result := AggregateDaily(rows)

	assert.Len(t, result, 2)
	assert.Equal(t, DateOnly(d2), result[0].Date)
	assert.True(t, dec("0.3").Equal(result[0].Spend), "soma exata esperada, obtido %s", result[0].Spend)
	assert.True(t, dec("3").Equal(result[0].Conversions))
	assert.True(t, result[0].ROAS.IsZero())
	assert.Equal(t, d1, result[1].Date)
	assert.True(t, result[1].ROAS.IsZero())
}

func TestPerformanceFilterValidate(t *testing.T) {
	day := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)

	assert.NoError(t, PerformanceFilter{From: day, To: day}.Validate())
	assert.ErrorIs(t, PerformanceFilter{From: day.AddDate(0, 0, 1), To: day}.Validate(), ErrInvalidDateRange)
	assert.ErrorIs(t, PerformanceFilter{To: day}.Validate(), ErrInvalidDateRange)
	assert.Error(t, PerformanceFilter{From: day, To: day, Platform: "tiktok"}.Validate())
}

func assertNullDecimal(t *testing.T, want, got decimal.NullDecimal) {
	t.Helper()
	if !want.Valid {
		assert.False(t, got.Valid, "esperado nulo, obtido %s", got.Decimal)
		return
	}
	if assert.True(t, got.Valid, "esperado %s, obtido nulo", want.Decimal) {
		assert.True(t, want.Decimal.Equal(got.Decimal), "esperado %s, obtido %s", want.Decimal, got.Decimal)
	}
}
