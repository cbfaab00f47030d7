package credentialing

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/bennettsui/5ml-agenticai-v1-sub007/infrastructure/repository"
	"github.com/bennettsui/5ml-agenticai-v1-sub007/internal/config"
	"github.com/bennettsui/5ml-agenticai-v1-sub007/internal/domain"
)

// CredentialResolver encontra a credencial de um tenant para um serviço.
// Não há retentativa: ausência é falha imediata.
type CredentialResolver interface {
	Resolve(ctx context.Context, tenantID string, service domain.Service) (*domain.TenantCredential, error)
	ListTargets(ctx context.Context) ([]domain.FetchTarget, error)
}

type Service struct {
	credentialRepository repository.CredentialRepository
	googleDefaults       map[string]string
}

func NewService(
	credentialRepository repository.CredentialRepository,
	cfg *config.Config,
) *Service {
	return &Service{
		credentialRepository: credentialRepository,
		googleDefaults: map[string]string{
			domain.ExtraDeveloperToken: cfg.Google.DeveloperToken,
			domain.ExtraClientID:       cfg.Google.ClientID,
			domain.ExtraClientSecret:   cfg.Google.ClientSecret,
		},
	}
}

func (s *Service) Resolve(ctx context.Context, tenantID string, service domain.Service) (*domain.TenantCredential, error) {
	if !service.Valid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnsupportedService, service)
	}

	cred, err := s.credentialRepository.GetByTenantAndService(ctx, tenantID, service)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"tenant_id": tenantID,
			"service":   service,
		}).WithError(err).Error("credentials: failed to load tenant credential")
		return nil, err
	}

	if cred == nil || !usable(cred) {
		logrus.WithFields(logrus.Fields{
			"tenant_id": tenantID,
			"service":   service,
		}).Warn("credentials: tenant has no usable credential")
		return nil, &domain.CredentialsMissingError{TenantID: tenantID, Service: service}
	}

	if service == domain.ServiceGoogleAds {
		s.applyGoogleDefaults(cred)
	}

	return cred, nil
}

func (s *Service) ListTargets(ctx context.Context) ([]domain.FetchTarget, error) {
	targets, err := s.credentialRepository.ListTargets(ctx)
	if err != nil {
		return nil, err
	}

	valid := make([]domain.FetchTarget, 0, len(targets))
	for _, target := range targets {
		if !target.Service.Valid() {
			logrus.WithFields(logrus.Fields{
				"tenant_id": target.TenantID,
				"service":   target.Service,
			}).Warn("credentials: ignoring unsupported service")
			continue
		}
		valid = append(valid, target)
	}

	return valid, nil
}

// usable: Meta precisa do access token, Google do refresh token
func usable(cred *domain.TenantCredential) bool {
	if cred.AccountID == "" {
		return false
	}

	switch cred.Service {
	case domain.ServiceMetaAds:
		return cred.AccessToken != ""
	case domain.ServiceGoogleAds:
		return cred.RefreshToken != ""
	}

	return false
}

// applyGoogleDefaults completa apenas campos não secretos ausentes na linha do tenant
func (s *Service) applyGoogleDefaults(cred *domain.TenantCredential) {
	if cred.Extra == nil {
		cred.Extra = make(map[string]string, len(s.googleDefaults))
	}

	for key, value := range s.googleDefaults {
		if cred.Extra[key] == "" && value != "" {
			cred.Extra[key] = value
		}
	}
}
