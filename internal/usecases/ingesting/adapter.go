package ingesting

import (
	"context"
	"fmt"
	"time"

	"github.com/bennettsui/5ml-agenticai-v1-sub007/internal/domain"
)

// TenantFetchAdapter liga um fetcher de plataforma à credencial do tenant
type TenantFetchAdapter struct {
	service  domain.Service
	resolver CredentialResolver
	fetcher  PlatformFetcher
}

func NewTenantFetchAdapter(service domain.Service, resolver CredentialResolver, fetcher PlatformFetcher) (*TenantFetchAdapter, error) {
	if service.Platform() == "" || service.Platform() != fetcher.Platform() {
		return nil, fmt.Errorf("%w: fetcher %q cannot serve %q", domain.ErrUnsupportedService, fetcher.Platform(), service)
	}

	return &TenantFetchAdapter{
		service:  service,
		resolver: resolver,
		fetcher:  fetcher,
	}, nil
}

func (a *TenantFetchAdapter) Service() domain.Service {
	return a.service
}

// FetchForTenant resolve a credencial antes de qualquer chamada de rede e carimba
// tenant e conta em todas as linhas devolvidas.
func (a *TenantFetchAdapter) FetchForTenant(ctx context.Context, tenantID string, since, until time.Time) ([]domain.DailyMetric, error) {
	cred, err := a.resolver.Resolve(ctx, tenantID, a.service)
	if err != nil {
		return nil, err
	}

	rows, err := a.fetcher.Fetch(ctx, cred, since, until)
	if err != nil {
		return nil, err
	}

	platform := a.fetcher.Platform()
	for i := range rows {
		rows[i].TenantID = tenantID
		rows[i].AccountID = cred.AccountID
		rows[i].Platform = platform
	}

	return rows, nil
}
