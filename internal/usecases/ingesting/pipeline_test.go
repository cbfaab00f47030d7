package ingesting

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/bennettsui/5ml-agenticai-v1-sub007/internal/domain"
	"github.com/bennettsui/5ml-agenticai-v1-sub007/internal/usecases/ingesting/mocks"
)

type pipelineFixture struct {
	resolver *mocks.MockCredentialResolver
	store    *mocks.MockMetricStore
	meta     *mocks.MockPlatformFetcher
	google   *mocks.MockPlatformFetcher
	pipeline *Pipeline
}

func newPipelineFixture(t *testing.T, ctrl *gomock.Controller) *pipelineFixture {
	t.Helper()

	f := &pipelineFixture{
		resolver: mocks.NewMockCredentialResolver(ctrl),
		store:    mocks.NewMockMetricStore(ctrl),
		meta:     newFetcher(ctrl, domain.PlatformMeta),
		google:   newFetcher(ctrl, domain.PlatformGoogle),
	}

	pipeline, err := NewPipeline(f.resolver, f.store, 2, f.meta, f.google)
	require.NoError(t, err)
	f.pipeline = pipeline

	return f
}

func credFor(tenant string, service domain.Service) *domain.TenantCredential {
	return &domain.TenantCredential{TenantID: tenant, Service: service, AccountID: tenant + "-acc", AccessToken: "a", RefreshToken: "r"}
}

func TestRunJobs_TenantIsolation(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	f := newPipelineFixture(t, ctrl)

	for _, tenant := range []string{"t1", "t2"} {
		cred := credFor(tenant, domain.ServiceMetaAds)
		f.resolver.EXPECT().Resolve(gomock.Any(), tenant, domain.ServiceMetaAds).Return(cred, nil)
		f.meta.EXPECT().Fetch(gomock.Any(), cred, testDay, testDay).
			Return([]domain.DailyMetric{{CampaignID: "shared-campaign", Date: testDay}}, nil)
	}

	f.store.EXPECT().Upsert(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, rows []domain.DailyMetric, tenantID string) (int, error) {
			for _, row := range rows {
				assert.Equal(t, tenantID, row.TenantID)
				assert.Equal(t, tenantID+"-acc", row.AccountID)
			}
			return len(rows), nil
		}).Times(2)

	report := f.pipeline.RunJobs(context.Background(), []Job{
		{TenantID: "t1", Service: domain.ServiceMetaAds},
		{TenantID: "t2", Service: domain.ServiceMetaAds},
	}, testDay, testDay)

	assert.Equal(t, 2, report.Succeeded)
	assert.Equal(t, 0, report.Failed)
	assert.NotEmpty(t, report.RunID)
	assert.Equal(t, "t1", report.Jobs[0].TenantID)
	assert.Equal(t, 1, report.Jobs[0].Written)
}

func TestRunJobs_FailureIsIsolatedPerJob(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	f := newPipelineFixture(t, ctrl)

	metaCred := credFor("t1", domain.ServiceMetaAds)
	googleCred := credFor("t1", domain.ServiceGoogleAds)

	f.resolver.EXPECT().Resolve(gomock.Any(), "t1", domain.ServiceMetaAds).Return(metaCred, nil)
	f.resolver.EXPECT().Resolve(gomock.Any(), "t1", domain.ServiceGoogleAds).Return(googleCred, nil)
	f.resolver.EXPECT().Resolve(gomock.Any(), "t2", domain.ServiceMetaAds).
		Return(nil, &domain.CredentialsMissingError{TenantID: "t2", Service: domain.ServiceMetaAds})

	f.meta.EXPECT().Fetch(gomock.Any(), metaCred, gomock.Any(), gomock.Any()).
		Return(nil, &domain.RateLimitExceededError{Platform: domain.PlatformMeta, Attempts: 4})
	f.google.EXPECT().Fetch(gomock.Any(), googleCred, gomock.Any(), gomock.Any()).
		Return([]domain.DailyMetric{{CampaignID: "g1", Date: testDay}}, nil)
	f.store.EXPECT().Upsert(gomock.Any(), gomock.Len(1), "t1").Return(1, nil)

	report := f.pipeline.RunJobs(context.Background(), []Job{
		{TenantID: "t1", Service: domain.ServiceMetaAds},
		{TenantID: "t1", Service: domain.ServiceGoogleAds},
		{TenantID: "t2", Service: domain.ServiceMetaAds},
	}, testDay, testDay)

	assert.Equal(t, 1, report.Succeeded)
	assert.Equal(t, 2, report.Failed)
	assert.ErrorIs(t, report.Jobs[0].Err(), domain.ErrRateLimitExceeded)
	assert.Contains(t, report.Jobs[0].Error, "fetch meta_ads for tenant t1")
	assert.NoError(t, report.Jobs[1].Err())
	assert.Equal(t, domain.PlatformGoogle, report.Jobs[1].Platform)
	assert.ErrorIs(t, report.Jobs[2].Err(), domain.ErrCredentialsMissing)
}

func TestRunJobs_UpsertFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	f := newPipelineFixture(t, ctrl)

	cred := credFor("t1", domain.ServiceMetaAds)
	f.resolver.EXPECT().Resolve(gomock.Any(), "t1", domain.ServiceMetaAds).Return(cred, nil)
	f.meta.EXPECT().Fetch(gomock.Any(), cred, gomock.Any(), gomock.Any()).
		Return([]domain.DailyMetric{{CampaignID: "c1"}, {CampaignID: "c2"}}, nil)
	f.store.EXPECT().Upsert(gomock.Any(), gomock.Any(), "t1").Return(0, errors.New("deadlock detected"))

	report := f.pipeline.RunJobs(context.Background(), []Job{{TenantID: "t1", Service: domain.ServiceMetaAds}}, testDay, testDay)

	require.Len(t, report.Jobs, 1)
	assert.Equal(t, 1, report.Failed)
	assert.Equal(t, 2, report.Jobs[0].Fetched)
	assert.Equal(t, 0, report.Jobs[0].Written)
}

func TestRunJobs_UnknownService(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	f := newPipelineFixture(t, ctrl)

	report := f.pipeline.RunJobs(context.Background(), []Job{{TenantID: "t1", Service: "tiktok_ads"}}, testDay, testDay)

	assert.Equal(t, 1, report.Failed)
	assert.ErrorIs(t, report.Jobs[0].Err(), domain.ErrUnsupportedService)
}

func TestRunJobs_CancelledContextSkipsPendingJobs(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	f := newPipelineFixture(t, ctrl)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report := f.pipeline.RunJobs(ctx, []Job{
		{TenantID: "t1", Service: domain.ServiceMetaAds},
		{TenantID: "t2", Service: domain.ServiceGoogleAds},
	}, testDay, testDay)

	assert.Equal(t, 2, report.Failed)
	for _, job := range report.Jobs {
		assert.ErrorIs(t, job.Err(), context.Canceled)
	}
}

func TestRun_ListsTargets(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	f := newPipelineFixture(t, ctrl)

	f.resolver.EXPECT().ListTargets(gomock.Any()).Return([]domain.FetchTarget{
		{TenantID: "t1", Service: domain.ServiceGoogleAds},
	}, nil)
	cred := credFor("t1", domain.ServiceGoogleAds)
	f.resolver.EXPECT().Resolve(gomock.Any(), "t1", domain.ServiceGoogleAds).Return(cred, nil)
	f.google.EXPECT().Fetch(gomock.Any(), cred, gomock.Any(), gomock.Any()).Return(nil, nil)
	f.store.EXPECT().Upsert(gomock.Any(), gomock.Any(), "t1").Return(0, nil)

	report, err := f.pipeline.Run(context.Background(), testDay, testDay)

	require.NoError(t, err)
	assert.Equal(t, 1, report.Succeeded)
}

func TestRun_ListTargetsError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	f := newPipelineFixture(t, ctrl)

	f.resolver.EXPECT().ListTargets(gomock.Any()).Return(nil, errors.New("db down"))

	report, err := f.pipeline.Run(context.Background(), testDay, testDay)

	assert.Nil(t, report)
	assert.Error(t, err)
}
