package googleclient

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	googledomain "github.com/bennettsui/5ml-agenticai-v1-sub007/infrastructure/integrator/google/domain"
	"github.com/bennettsui/5ml-agenticai-v1-sub007/internal/config"
	"github.com/bennettsui/5ml-agenticai-v1-sub007/internal/domain"
	"github.com/bennettsui/5ml-agenticai-v1-sub007/pkg/backoff"
	"github.com/bennettsui/5ml-agenticai-v1-sub007/pkg/utils"
)

const campaignQuery = `SELECT campaign.id, campaign.name, segments.date, ` +
	`metrics.impressions, metrics.clicks, metrics.cost_micros, ` +
	`metrics.conversions, metrics.conversions_value, ` +
	`metrics.ctr, metrics.average_cpc, metrics.average_cpm ` +
	`FROM campaign WHERE segments.date BETWEEN '%s' AND '%s'`

// maxPages evita laço infinito caso a API repita o mesmo token
const maxPages = 1000

type Client interface {
	SearchCampaignMetrics(ctx context.Context, req SearchRequest) ([]googledomain.SearchRow, error)
}

// SearchRequest reúne tudo que uma consulta de um tenant precisa
type SearchRequest struct {
	TenantID        string
	CustomerID      string
	LoginCustomerID string
	DeveloperToken  string
	Version         string
	OAuth           OAuthCredentials
	Since           time.Time
	Until           time.Time
}

type GoogleClient struct {
	baseURL    string
	version    string
	httpClient *http.Client
	policy     backoff.Policy
	tokens     TokenSource
}

type Option func(*GoogleClient)

func WithHTTPClient(c *http.Client) Option {
	return func(g *GoogleClient) { g.httpClient = c }
}

func WithPolicy(p backoff.Policy) Option {
	return func(g *GoogleClient) { g.policy = p }
}

func WithTokenSource(ts TokenSource) Option {
	return func(g *GoogleClient) { g.tokens = ts }
}

func NewClient(cfg *config.Config, opts ...Option) *GoogleClient {
	timeout := cfg.Retry.HTTPTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	client := &GoogleClient{
		baseURL:    strings.TrimRight(cfg.Google.BaseURL, "/"),
		version:    cfg.Google.Version,
		httpClient: &http.Client{Timeout: timeout},
		policy:     backoff.New(cfg.Retry.MaxRetries, cfg.Retry.BaseDelay),
	}

	for _, opt := range opts {
		opt(client)
	}

	if client.tokens == nil {
		client.tokens = &RefreshTokenSource{TokenURL: cfg.Google.TokenURL, HTTPClient: client.httpClient}
	}

	return client
}

// SearchCampaignMetrics troca o refresh token e lê todas as páginas do GAQL
func (c *GoogleClient) SearchCampaignMetrics(ctx context.Context, req SearchRequest) ([]googledomain.SearchRow, error) {
	accessToken, err := c.tokens.AccessToken(ctx, req.OAuth)
	if err != nil {
		logrus.WithField("tenant_id", req.TenantID).WithError(err).Error("google: oauth token exchange failed")
		return nil, &domain.OAuthTokenError{TenantID: req.TenantID, Err: err}
	}

	endpoint := c.searchURL(req)
	query := fmt.Sprintf(campaignQuery, req.Since.Format(time.DateOnly), req.Until.Format(time.DateOnly))

	var rows []googledomain.SearchRow
	pageToken := ""

	for page := 0; ; page++ {
		if page >= maxPages {
			return nil, fmt.Errorf("google: pagination exceeded %d pages", maxPages)
		}

		payload, err := googledomain.EncodeSearch(googledomain.SearchRequest{Query: query, PageToken: pageToken})
		if err != nil {
			return nil, err
		}

		body, err := utils.MakeRequest(ctx, c.httpClient, c.policy, domain.PlatformGoogle, func(ctx context.Context) (*http.Request, error) {
			httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
			if err != nil {
				return nil, err
			}
			httpReq.Header.Set("Content-Type", "application/json")
			httpReq.Header.Set("Authorization", "Bearer "+accessToken)
			httpReq.Header.Set("developer-token", req.DeveloperToken)
			if req.LoginCustomerID != "" {
				httpReq.Header.Set("login-customer-id", normalizeCustomerID(req.LoginCustomerID))
			}
			return httpReq, nil
		})
		if err != nil {
			logGoogleError(req.CustomerID, err)
			return nil, err
		}

		resp, err := googledomain.DecodeSearch(body)
		if err != nil {
			return nil, fmt.Errorf("google: decode search response: %w", err)
		}

		rows = append(rows, resp.Results...)

		logrus.WithFields(logrus.Fields{
			"customer_id": req.CustomerID,
			"page":        page + 1,
			"rows":        len(resp.Results),
		}).Debug("google: search page fetched")

		if resp.NextPageToken == "" {
			break
		}
		pageToken = resp.NextPageToken
	}

	return rows, nil
}

func (c *GoogleClient) searchURL(req SearchRequest) string {
	version := c.version
	if req.Version != "" {
		version = req.Version
	}
	return fmt.Sprintf("%s/%s/customers/%s/googleAds:search", c.baseURL, version, normalizeCustomerID(req.CustomerID))
}

// normalizeCustomerID remove os hífens do formato 123-456-7890
func normalizeCustomerID(id string) string {
	return strings.ReplaceAll(strings.TrimSpace(id), "-", "")
}

func logGoogleError(customerID string, err error) {
	fields := logrus.Fields{"customer_id": customerID}

	if providerErr, ok := err.(*domain.ProviderError); ok {
		fields["status"] = providerErr.Status
		if apiErr := googledomain.DecodeError(providerErr.Body); apiErr != nil {
			fields["google_status"] = apiErr.Error.Status
		}
	}

	logrus.WithFields(fields).WithError(err).Error("google: failed to search campaign metrics")
}
