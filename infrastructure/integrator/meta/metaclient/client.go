package metaclient

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	metadomain "github.com/bennettsui/5ml-agenticai-v1-sub007/infrastructure/integrator/meta/domain"
	"github.com/bennettsui/5ml-agenticai-v1-sub007/internal/config"
	"github.com/bennettsui/5ml-agenticai-v1-sub007/internal/domain"
	"github.com/bennettsui/5ml-agenticai-v1-sub007/pkg/backoff"
	"github.com/bennettsui/5ml-agenticai-v1-sub007/pkg/utils"
)

const insightFields = "campaign_id,campaign_name,impressions,reach,clicks,spend,cpc,cpm,ctr,actions,action_values,purchase_roas"

// maxPages evita laço infinito caso a API devolva o mesmo cursor
const maxPages = 1000

type Client interface {
	GetCampaignInsights(ctx context.Context, req InsightsRequest) ([]metadomain.CampaignInsight, error)
}

// InsightsRequest descreve uma leitura diária por campanha de uma conta
type InsightsRequest struct {
	AccountID   string
	AccessToken string
	Version     string
	Since       time.Time
	Until       time.Time
}

type MetaClient struct {
	baseURL    string
	version    string
	pageSize   int
	httpClient *http.Client
	policy     backoff.Policy
}

type Option func(*MetaClient)

func WithHTTPClient(c *http.Client) Option {
	return func(m *MetaClient) { m.httpClient = c }
}

func WithPolicy(p backoff.Policy) Option {
	return func(m *MetaClient) { m.policy = p }
}

func WithBaseURL(baseURL string) Option {
	return func(m *MetaClient) { m.baseURL = strings.TrimRight(baseURL, "/") }
}

func NewClient(cfg *config.Config, opts ...Option) *MetaClient {
	timeout := cfg.Retry.HTTPTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	client := &MetaClient{
		baseURL:    strings.TrimRight(cfg.Meta.BaseURL, "/"),
		version:    cfg.Meta.Version,
		pageSize:   cfg.Meta.PageSize,
		httpClient: &http.Client{Timeout: timeout},
		policy:     backoff.New(cfg.Retry.MaxRetries, cfg.Retry.BaseDelay),
	}

	for _, opt := range opts {
		opt(client)
	}

	return client
}

// GetCampaignInsights lê todas as páginas de insights diários da conta
func (c *MetaClient) GetCampaignInsights(ctx context.Context, req InsightsRequest) ([]metadomain.CampaignInsight, error) {
	next := c.insightsURL(req)
	var rows []metadomain.CampaignInsight

	for page := 0; next != ""; page++ {
		if page >= maxPages {
			return nil, fmt.Errorf("meta: pagination exceeded %d pages", maxPages)
		}

		pageURL := next
		body, err := utils.MakeRequest(ctx, c.httpClient, c.policy, domain.PlatformMeta, func(ctx context.Context) (*http.Request, error) {
			return http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
		})
		if err != nil {
			logMetaError(req.AccountID, err)
			return nil, err
		}

		resp, err := metadomain.DecodeInsights(body)
		if err != nil {
			return nil, fmt.Errorf("meta: decode insights: %w", err)
		}

		rows = append(rows, resp.Data...)
		next = resp.Paging.Next

		logrus.WithFields(logrus.Fields{
			"account_id": req.AccountID,
			"page":       page + 1,
			"rows":       len(resp.Data),
		}).Debug("meta: insights page fetched")
	}

	return rows, nil
}

func (c *MetaClient) insightsURL(req InsightsRequest) string {
	version := c.version
	if req.Version != "" {
		version = req.Version
	}

	accountID := strings.TrimPrefix(req.AccountID, "act_")
	timeRange := fmt.Sprintf("{\"since\":\"%s\",\"until\":\"%s\"}", req.Since.Format(time.DateOnly), req.Until.Format(time.DateOnly))

	params := url.Values{}
	params.Add("level", "campaign")
	params.Add("time_increment", "1")
	params.Add("time_range", timeRange)
	params.Add("fields", insightFields)
	if c.pageSize > 0 {
		params.Add("limit", strconv.Itoa(c.pageSize))
	}
	params.Add("access_token", req.AccessToken)

	return fmt.Sprintf("%s/%s/act_%s/insights?%s", c.baseURL, version, accountID, params.Encode())
}

func logMetaError(accountID string, err error) {
	fields := logrus.Fields{"account_id": accountID}

	if providerErr, ok := err.(*domain.ProviderError); ok {
		fields["status"] = providerErr.Status
		if apiErr := metadomain.DecodeError(providerErr.Body); apiErr != nil {
			fields["meta_code"] = apiErr.Error.Code
			fields["fbtrace_id"] = apiErr.Error.FBTraceID
			fields["token_expired"] = apiErr.IsTokenExpired()
		}
	}

	logrus.WithFields(fields).WithError(err).Error("meta: failed to fetch campaign insights")
}
