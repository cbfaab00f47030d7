package domain

import (
	"errors"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// Platform identifica a origem de uma linha de performance
type Platform string

const (
	PlatformMeta   Platform = "meta"
	PlatformGoogle Platform = "google"
)

func (p Platform) Valid() bool {
	return p == PlatformMeta || p == PlatformGoogle
}

// ratioPlaces é a escala usada para métricas derivadas (cpc, cpm, ctr, roas)
const ratioPlaces = 6

var (
	thousand = decimal.NewFromInt(1000)
	hundred  = decimal.NewFromInt(100)
)

// DailyMetric é a linha normalizada de performance diária de uma campanha.
// Chave natural: (Platform, TenantID, CampaignID, Date).
type DailyMetric struct {
	Platform     Platform            `json:"platform"`
	TenantID     string              `json:"tenant_id"`
	AccountID    string              `json:"account_id"`
	CampaignID   string              `json:"campaign_id"`
	CampaignName string              `json:"campaign_name"`
	Date         time.Time           `json:"date"`
	Impressions  int64               `json:"impressions"`
	Reach        *int64              `json:"reach"`
	Clicks       int64               `json:"clicks"`
	Spend        decimal.Decimal     `json:"spend"`
	Conversions  decimal.NullDecimal `json:"conversions"`
	Revenue      decimal.NullDecimal `json:"revenue"`
	CPC          decimal.NullDecimal `json:"cpc"`
	CPM          decimal.NullDecimal `json:"cpm"`
	CTR          decimal.NullDecimal `json:"ctr"`
	ROAS         decimal.NullDecimal `json:"roas"`
	UpdatedAt    time.Time           `json:"updated_at,omitempty"`
}

// NaturalKey retorna a chave única usada pelo upsert
func (m DailyMetric) NaturalKey() string {
	return string(m.Platform) + "|" + m.TenantID + "|" + m.CampaignID + "|" + m.Date.Format(time.DateOnly)
}

// AggregatedMetric é a soma de todas as linhas de uma data
type AggregatedMetric struct {
	Date        time.Time       `json:"date"`
	Impressions int64           `json:"impressions"`
	Clicks      int64           `json:"clicks"`
	Spend       decimal.Decimal `json:"spend"`
	Conversions decimal.Decimal `json:"conversions"`
	Revenue     decimal.Decimal `json:"revenue"`
	ROAS        decimal.Decimal `json:"roas"`
}

// PerformanceFilter define o recorte das consultas de leitura.
// TenantID e Platform vazios não filtram.
type PerformanceFilter struct {
	TenantID string
	Platform Platform
	From     time.Time
	To       time.Time
}

var (
	ErrInvalidDateRange = errors.New("invalid date range")
	ErrInvalidPlatform  = errors.New("invalid platform")
)

func (f PerformanceFilter) Validate() error {
	if f.From.IsZero() || f.To.IsZero() || f.From.After(f.To) {
		return ErrInvalidDateRange
	}
	if f.Platform != "" && !f.Platform.Valid() {
		return ErrInvalidPlatform
	}
	return nil
}

// DateOnly trunca um instante para o dia-calendário em UTC
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DeriveCPC calcula spend/clicks; nulo quando não houve cliques
func DeriveCPC(spend decimal.Decimal, clicks int64) decimal.NullDecimal {
	if clicks <= 0 {
		return decimal.NullDecimal{}
	}
	return valid(spend.DivRound(decimal.NewFromInt(clicks), ratioPlaces))
}

// DeriveCPM calcula spend/impressions*1000; nulo quando não houve impressões
func DeriveCPM(spend decimal.Decimal, impressions int64) decimal.NullDecimal {
	if impressions <= 0 {
		return decimal.NullDecimal{}
	}
	return valid(spend.Mul(thousand).DivRound(decimal.NewFromInt(impressions), ratioPlaces))
}

// DeriveCTR calcula clicks/impressions em percentual, como a Meta reporta
func DeriveCTR(clicks, impressions int64) decimal.NullDecimal {
	if impressions <= 0 {
		return decimal.NullDecimal{}
	}
	return valid(decimal.NewFromInt(clicks).Mul(hundred).DivRound(decimal.NewFromInt(impressions), ratioPlaces))
}

// DeriveROAS calcula revenue/spend; nulo sem receita ou sem gasto
func DeriveROAS(revenue decimal.NullDecimal, spend decimal.Decimal) decimal.NullDecimal {
	if !revenue.Valid || !spend.IsPositive() {
		return decimal.NullDecimal{}
	}
	return valid(revenue.Decimal.DivRound(spend, ratioPlaces))
}

// Coalesce retorna o valor nativo quando presente, senão o derivado
func Coalesce(native, derived decimal.NullDecimal) decimal.NullDecimal {
	if native.Valid {
		return native
	}
	return derived
}

func valid(d decimal.Decimal) decimal.NullDecimal {
	return decimal.NullDecimal{Decimal: d, Valid: true}
}

// AggregateDaily soma as linhas por data (desc). Campos nulos contam como zero
// e o ROAS é recalculado sobre os totais, nunca pela média dos ROAS por linha.
func AggregateDaily(rows []DailyMetric) []AggregatedMetric {
	byDate := make(map[time.Time]*AggregatedMetric)
	for _, row := range rows {
		day := DateOnly(row.Date)
		agg, ok := byDate[day]
		if !ok {
			agg = &AggregatedMetric{Date: day}
			byDate[day] = agg
		}

		agg.Impressions += row.Impressions
		agg.Clicks += row.Clicks
		agg.Spend = agg.Spend.Add(row.Spend)
		if row.Conversions.Valid {
			agg.Conversions = agg.Conversions.Add(row.Conversions.Decimal)
		}
		if row.Revenue.Valid {
			agg.Revenue = agg.Revenue.Add(row.Revenue.Decimal)
		}
	}

	result := make([]AggregatedMetric, 0, len(byDate))
	for _, agg := range byDate {
		if agg.Spend.IsPositive() {
			agg.ROAS = agg.Revenue.DivRound(agg.Spend, ratioPlaces)
		}
		result = append(result, *agg)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Date.After(result[j].Date)
	})

	return result
}
