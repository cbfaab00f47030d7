package google

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	googledomain "github.com/bennettsui/5ml-agenticai-v1-sub007/infrastructure/integrator/google/domain"
	"github.com/bennettsui/5ml-agenticai-v1-sub007/infrastructure/integrator/google/googleclient"
	"github.com/bennettsui/5ml-agenticai-v1-sub007/internal/domain"
)

// microsExp converte micros (1/1_000_000 da moeda) em unidades
const microsExp = -6

var hundred = decimal.NewFromInt(100)

type GoogleIntegrator struct {
	Client googleclient.Client
}

func New(client googleclient.Client) *GoogleIntegrator {
	return &GoogleIntegrator{
		Client: client,
	}
}

func (s *GoogleIntegrator) Platform() domain.Platform {
	return domain.PlatformGoogle
}

// Fetch consulta as métricas diárias por campanha e normaliza para DailyMetric
func (s *GoogleIntegrator) Fetch(ctx context.Context, cred *domain.TenantCredential, since, until time.Time) ([]domain.DailyMetric, error) {
	results, err := s.Client.SearchCampaignMetrics(ctx, googleclient.SearchRequest{
		TenantID:        cred.TenantID,
		CustomerID:      cred.AccountID,
		LoginCustomerID: cred.ExtraValue(domain.ExtraLoginCustomerID),
		DeveloperToken:  cred.ExtraValue(domain.ExtraDeveloperToken),
		Version:         cred.ExtraValue(domain.ExtraAPIVersion),
		OAuth: googleclient.OAuthCredentials{
			ClientID:     cred.ExtraValue(domain.ExtraClientID),
			ClientSecret: cred.ExtraValue(domain.ExtraClientSecret),
			RefreshToken: cred.RefreshToken,
		},
		Since: since,
		Until: until,
	})
	if err != nil {
		return nil, err
	}

	rows := make([]domain.DailyMetric, 0, len(results))
	for _, result := range results {
		row, err := FactoryDailyMetric(result)
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"tenant_id":   cred.TenantID,
				"campaign_id": result.Campaign.ID,
			}).WithError(err).Warn("google: skipping malformed search row")
			continue
		}

		row.TenantID = cred.TenantID
		row.AccountID = cred.AccountID
		rows = append(rows, row)
	}

	logrus.WithFields(logrus.Fields{
		"tenant_id":   cred.TenantID,
		"customer_id": cred.AccountID,
		"rows":        len(rows),
	}).Info("google: campaign metrics normalized")

	return rows, nil
}

// FactoryDailyMetric converte uma linha do GAQL para o formato comum.
// Google não informa alcance; CTR chega como fração e vira percentual.
func FactoryDailyMetric(in googledomain.SearchRow) (domain.DailyMetric, error) {
	date, err := time.Parse(time.DateOnly, in.Segments.Date)
	if err != nil {
		return domain.DailyMetric{}, fmt.Errorf("invalid segments.date %q: %w", in.Segments.Date, err)
	}

	m := in.Metrics
	impressions := m.Impressions.IntPart()
	clicks := m.Clicks.IntPart()
	spend := m.CostMicros.Shift(microsExp)
	revenue := decimal.NewNullDecimal(m.ConversionsValue)

	row := domain.DailyMetric{
		Platform:     domain.PlatformGoogle,
		CampaignID:   in.Campaign.ID,
		CampaignName: in.Campaign.Name,
		Date:         domain.DateOnly(date),
		Impressions:  impressions,
		Clicks:       clicks,
		Spend:        spend,
		Conversions:  decimal.NewNullDecimal(m.Conversions),
		Revenue:      revenue,
		ROAS:         domain.DeriveROAS(revenue, spend),
	}

	row.CPC = domain.Coalesce(fromMicros(m.AverageCPC), domain.DeriveCPC(spend, clicks))
	row.CPM = domain.Coalesce(fromMicros(m.AverageCPM), domain.DeriveCPM(spend, impressions))
	row.CTR = domain.Coalesce(percent(m.CTR), domain.DeriveCTR(clicks, impressions))

	return row, nil
}

func fromMicros(v decimal.NullDecimal) decimal.NullDecimal {
	if !v.Valid {
		return v
	}
	return decimal.NewNullDecimal(v.Decimal.Shift(microsExp))
}

func percent(v decimal.NullDecimal) decimal.NullDecimal {
	if !v.Valid {
		return v
	}
	return decimal.NewNullDecimal(v.Decimal.Mul(hundred))
}
