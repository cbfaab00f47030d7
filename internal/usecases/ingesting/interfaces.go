package ingesting

import (
	"context"
	"time"

	"github.com/bennettsui/5ml-agenticai-v1-sub007/internal/domain"
)

//go:generate mockgen -source=interfaces.go -destination=mocks/interfaces.go -package=mocks

// PlatformFetcher busca e normaliza as métricas diárias de uma plataforma
type PlatformFetcher interface {
	Platform() domain.Platform
	Fetch(ctx context.Context, cred *domain.TenantCredential, since, until time.Time) ([]domain.DailyMetric, error)
}

// CredentialResolver resolve a credencial de (tenant, serviço)
type CredentialResolver interface {
	Resolve(ctx context.Context, tenantID string, service domain.Service) (*domain.TenantCredential, error)
	ListTargets(ctx context.Context) ([]domain.FetchTarget, error)
}

// MetricStore grava as linhas normalizadas de um tenant
type MetricStore interface {
	Upsert(ctx context.Context, rows []domain.DailyMetric, tenantID string) (int, error)
}
