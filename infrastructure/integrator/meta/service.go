package meta

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	metadomain "github.com/bennettsui/5ml-agenticai-v1-sub007/infrastructure/integrator/meta/domain"
	"github.com/bennettsui/5ml-agenticai-v1-sub007/infrastructure/integrator/meta/metaclient"
	"github.com/bennettsui/5ml-agenticai-v1-sub007/internal/domain"
)

// purchaseActionTypes em ordem de preferência. A Meta repete a mesma compra
// sob vários tipos, então só o primeiro encontrado é usado.
var purchaseActionTypes = []string{
	"omni_purchase",
	"purchase",
	"offsite_conversion.fb_pixel_purchase",
}

type MetaIntegrator struct {
	Client metaclient.Client
}

func New(client metaclient.Client) *MetaIntegrator {
	return &MetaIntegrator{
		Client: client,
	}
}

func (s *MetaIntegrator) Platform() domain.Platform {
	return domain.PlatformMeta
}

// Fetch lê os insights diários por campanha e normaliza para DailyMetric
func (s *MetaIntegrator) Fetch(ctx context.Context, cred *domain.TenantCredential, since, until time.Time) ([]domain.DailyMetric, error) {
	insights, err := s.Client.GetCampaignInsights(ctx, metaclient.InsightsRequest{
		AccountID:   cred.AccountID,
		AccessToken: cred.AccessToken,
		Version:     cred.ExtraValue(domain.ExtraAPIVersion),
		Since:       since,
		Until:       until,
	})
	if err != nil {
		return nil, err
	}

	rows := make([]domain.DailyMetric, 0, len(insights))
	for _, insight := range insights {
		row, err := FactoryDailyMetric(insight)
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"tenant_id":   cred.TenantID,
				"campaign_id": insight.CampaignID,
				"date":        insight.DateStart,
			}).WithError(err).Warn("meta: skipping malformed insight row")
			continue
		}

		row.TenantID = cred.TenantID
		row.AccountID = cred.AccountID
		rows = append(rows, row)
	}

	logrus.WithFields(logrus.Fields{
		"tenant_id":  cred.TenantID,
		"account_id": cred.AccountID,
		"rows":       len(rows),
	}).Info("meta: campaign insights normalized")

	return rows, nil
}

// FactoryDailyMetric converte uma linha da Graph API para o formato comum
func FactoryDailyMetric(in metadomain.CampaignInsight) (domain.DailyMetric, error) {
	date, err := time.Parse(time.DateOnly, in.DateStart)
	if err != nil {
		return domain.DailyMetric{}, fmt.Errorf("invalid date_start %q: %w", in.DateStart, err)
	}

	impressions, err := parseInt(in.Impressions)
	if err != nil {
		return domain.DailyMetric{}, fmt.Errorf("invalid impressions: %w", err)
	}

	clicks, err := parseInt(in.Clicks)
	if err != nil {
		return domain.DailyMetric{}, fmt.Errorf("invalid clicks: %w", err)
	}

	spend, err := parseDecimal(in.Spend)
	if err != nil {
		return domain.DailyMetric{}, fmt.Errorf("invalid spend: %w", err)
	}

	row := domain.DailyMetric{
		Platform:     domain.PlatformMeta,
		CampaignID:   in.CampaignID,
		CampaignName: in.CampaignName,
		Date:         domain.DateOnly(date),
		Impressions:  impressions,
		Clicks:       clicks,
		Spend:        spend.Decimal,
		Conversions:  purchaseValue(in.Actions),
		Revenue:      purchaseValue(in.ActionValues),
	}

	if in.Reach != "" {
		if reach, err := strconv.ParseInt(in.Reach, 10, 64); err == nil {
			row.Reach = &reach
		}
	}

	row.CPC = domain.Coalesce(optionalDecimal(in.CPC), domain.DeriveCPC(row.Spend, clicks))
	row.CPM = domain.Coalesce(optionalDecimal(in.CPM), domain.DeriveCPM(row.Spend, impressions))
	row.CTR = domain.Coalesce(optionalDecimal(in.CTR), domain.DeriveCTR(clicks, impressions))
	row.ROAS = domain.Coalesce(purchaseROAS(in.PurchaseROAS), domain.DeriveROAS(row.Revenue, row.Spend))

	return row, nil
}

// purchaseROAS usa a entrada de compra; sem ela, a primeira entrada do array
func purchaseROAS(entries []metadomain.ActionValue) decimal.NullDecimal {
	if len(entries) == 0 {
		return decimal.NullDecimal{}
	}
	if v := purchaseValue(entries); v.Valid {
		return v
	}
	return optionalDecimal(entries[0].Value)
}

func purchaseValue(entries []metadomain.ActionValue) decimal.NullDecimal {
	for _, actionType := range purchaseActionTypes {
		for _, entry := range entries {
			if entry.ActionType == actionType {
				return optionalDecimal(entry.Value)
			}
		}
	}
	return decimal.NullDecimal{}
}

func parseInt(s string) (int64, error) {
	if strings.TrimSpace(s) == "" {
		return 0, nil
	}
	return strconv.ParseInt(strings.TrimSpace(s), 10, 64)
}

func parseDecimal(s string) (decimal.NullDecimal, error) {
	if strings.TrimSpace(s) == "" {
		return decimal.NewNullDecimal(decimal.Zero), nil
	}
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.NullDecimal{}, err
	}
	return decimal.NewNullDecimal(d), nil
}

func optionalDecimal(s string) decimal.NullDecimal {
	if strings.TrimSpace(s) == "" {
		return decimal.NullDecimal{}
	}
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(d)
}
