package credentialing

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/bennettsui/5ml-agenticai-v1-sub007/infrastructure/repository/mocks"
	"github.com/bennettsui/5ml-agenticai-v1-sub007/internal/config"
	"github.com/bennettsui/5ml-agenticai-v1-sub007/internal/domain"
)

func testConfig() *config.Config {
	return &config.Config{
		Google: config.Google{DeveloperToken: "platform-dev", ClientID: "platform-cid", ClientSecret: "platform-secret"},
	}
}

func TestResolve(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := mocks.NewMockCredentialRepository(ctrl)
	service := NewService(mockRepo, testConfig())

	tests := []struct {
		name     string
		tenantID string
		service  domain.Service
		setup    func()
		validate func(t *testing.T, cred *domain.TenantCredential, err error)
	}{
		{
			name:     "credencial meta válida",
			tenantID: "t1",
			service:  domain.ServiceMetaAds,
			setup: func() {
				mockRepo.EXPECT().
					GetByTenantAndService(gomock.Any(), "t1", domain.ServiceMetaAds).
					Return(&domain.TenantCredential{TenantID: "t1", Service: domain.ServiceMetaAds, AccountID: "act_123", AccessToken: "tok"}, nil)
			},
			validate: func(t *testing.T, cred *domain.TenantCredential, err error) {
				require.NoError(t, err)
				assert.Equal(t, "act_123", cred.AccountID)
				assert.Empty(t, cred.ExtraValue(domain.ExtraDeveloperToken))
			},
		},
		{
			name:     "sem linha retorna CredentialsMissing",
			tenantID: "t2",
			service:  domain.ServiceMetaAds,
			setup: func() {
				mockRepo.EXPECT().
					GetByTenantAndService(gomock.Any(), "t2", domain.ServiceMetaAds).
					Return(nil, nil)
			},
			validate: func(t *testing.T, cred *domain.TenantCredential, err error) {
				assert.Nil(t, cred)
				var missing *domain.CredentialsMissingError
				require.True(t, errors.As(err, &missing))
				assert.Equal(t, "t2", missing.TenantID)
				assert.Equal(t, domain.ServiceMetaAds, missing.Service)
			},
		},
		{
			name:     "google sem refresh token é tratado como ausente",
			tenantID: "t3",
			service:  domain.ServiceGoogleAds,
			setup: func() {
				mockRepo.EXPECT().
					GetByTenantAndService(gomock.Any(), "t3", domain.ServiceGoogleAds).
					Return(&domain.TenantCredential{TenantID: "t3", Service: domain.ServiceGoogleAds, AccountID: "1"}, nil)
			},
			validate: func(t *testing.T, cred *domain.TenantCredential, err error) {
				assert.ErrorIs(t, err, domain.ErrCredentialsMissing)
			},
		},
		{
			name:     "google completa apenas campos não secretos ausentes",
			tenantID: "t4",
			service:  domain.ServiceGoogleAds,
			setup: func() {
				mockRepo.EXPECT().
					GetByTenantAndService(gomock.Any(), "t4", domain.ServiceGoogleAds).
					Return(&domain.TenantCredential{
						TenantID:     "t4",
						Service:      domain.ServiceGoogleAds,
						AccountID:    "1234567890",
						RefreshToken: "tenant-rt",
						Extra:        map[string]string{domain.ExtraDeveloperToken: "tenant-dev"},
					}, nil)
			},
			validate: func(t *testing.T, cred *domain.TenantCredential, err error) {
				require.NoError(t, err)
				assert.Equal(t, "tenant-dev", cred.ExtraValue(domain.ExtraDeveloperToken))
				assert.Equal(t, "platform-cid", cred.ExtraValue(domain.ExtraClientID))
				assert.Equal(t, "platform-secret", cred.ExtraValue(domain.ExtraClientSecret))
				assert.Equal(t, "tenant-rt", cred.RefreshToken)
				assert.Empty(t, cred.AccessToken)
			},
		},
		{
			name:     "erro de banco é propagado",
			tenantID: "t5",
			service:  domain.ServiceMetaAds,
			setup: func() {
				mockRepo.EXPECT().
					GetByTenantAndService(gomock.Any(), "t5", domain.ServiceMetaAds).
					Return(nil, errors.New("connection refused"))
			},
			validate: func(t *testing.T, cred *domain.TenantCredential, err error) {
				assert.Error(t, err)
				assert.False(t, errors.Is(err, domain.ErrCredentialsMissing))
			},
		},
		{
			name:     "serviço desconhecido não consulta o banco",
			tenantID: "t6",
			service:  domain.Service("tiktok_ads"),
			setup:    func() {},
			validate: func(t *testing.T, cred *domain.TenantCredential, err error) {
				assert.ErrorIs(t, err, domain.ErrUnsupportedService)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setup()
			cred, err := service.Resolve(context.Background(), tt.tenantID, tt.service)
			tt.validate(t, cred, err)
		})
	}
}

func TestListTargetsSkipsUnsupportedServices(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := mocks.NewMockCredentialRepository(ctrl)
	mockRepo.EXPECT().ListTargets(gomock.Any()).Return([]domain.FetchTarget{
		{TenantID: "t1", Service: domain.ServiceMetaAds},
		{TenantID: "t1", Service: "crm"},
		{TenantID: "t2", Service: domain.ServiceGoogleAds},
	}, nil)

	targets, err := NewService(mockRepo, testConfig()).ListTargets(context.Background())

	require.NoError(t, err)
	assert.Len(t, targets, 2)
}
