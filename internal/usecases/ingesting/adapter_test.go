package ingesting

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/bennettsui/5ml-agenticai-v1-sub007/internal/domain"
	"github.com/bennettsui/5ml-agenticai-v1-sub007/internal/usecases/ingesting/mocks"
)

var testDay = time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)

func newFetcher(ctrl *gomock.Controller, platform domain.Platform) *mocks.MockPlatformFetcher {
	fetcher := mocks.NewMockPlatformFetcher(ctrl)
	fetcher.EXPECT().Platform().Return(platform).AnyTimes()
	return fetcher
}

func TestFetchForTenant_NoNetworkWhenCredentialsMissing(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	resolver := mocks.NewMockCredentialResolver(ctrl)
	fetcher := newFetcher(ctrl, domain.PlatformMeta)

	resolver.EXPECT().
		Resolve(gomock.Any(), "t9", domain.ServiceMetaAds).
		Return(nil, &domain.CredentialsMissingError{TenantID: "t9", Service: domain.ServiceMetaAds})
	// Fetch sem EXPECT: qualquer chamada falha o teste

	adapter, err := NewTenantFetchAdapter(domain.ServiceMetaAds, resolver, fetcher)
	require.NoError(t, err)

	rows, err := adapter.FetchForTenant(context.Background(), "t9", testDay, testDay)

	assert.Nil(t, rows)
	assert.ErrorIs(t, err, domain.ErrCredentialsMissing)
}

func TestFetchForTenant_StampsTenantAndAccount(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	resolver := mocks.NewMockCredentialResolver(ctrl)
	fetcher := newFetcher(ctrl, domain.PlatformMeta)
	cred := &domain.TenantCredential{TenantID: "t1", Service: domain.ServiceMetaAds, AccountID: "act_123", AccessToken: "tok"}

	resolver.EXPECT().Resolve(gomock.Any(), "t1", domain.ServiceMetaAds).Return(cred, nil)
	fetcher.EXPECT().
		Fetch(gomock.Any(), cred, testDay, testDay).
		Return([]domain.DailyMetric{
			{CampaignID: "c1", Date: testDay, Spend: decimal.NewFromInt(50)},
			{CampaignID: "c2", TenantID: "outro", Date: testDay},
		}, nil)

	adapter, err := NewTenantFetchAdapter(domain.ServiceMetaAds, resolver, fetcher)
	require.NoError(t, err)

	rows, err := adapter.FetchForTenant(context.Background(), "t1", testDay, testDay)

	require.NoError(t, err)
	require.Len(t, rows, 2)
	for _, row := range rows {
		assert.Equal(t, "t1", row.TenantID)
		assert.Equal(t, "act_123", row.AccountID)
		assert.Equal(t, domain.PlatformMeta, row.Platform)
	}
}

func TestNewTenantFetchAdapter_RejectsMismatchedFetcher(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	_, err := NewTenantFetchAdapter(domain.ServiceGoogleAds, mocks.NewMockCredentialResolver(ctrl), newFetcher(ctrl, domain.PlatformMeta))

	assert.ErrorIs(t, err, domain.ErrUnsupportedService)
}
