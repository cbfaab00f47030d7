package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/bennettsui/5ml-agenticai-v1-sub007/infrastructure/repository/mocks"
	"github.com/bennettsui/5ml-agenticai-v1-sub007/internal/config"
	"github.com/bennettsui/5ml-agenticai-v1-sub007/internal/scheduler"
	"github.com/bennettsui/5ml-agenticai-v1-sub007/internal/usecases/governing"
	"github.com/bennettsui/5ml-agenticai-v1-sub007/pkg/log"
)

type idleTrigger struct{}

func (idleTrigger) TriggerManualSync(time.Time, time.Time) error { return nil }
func (idleTrigger) GetStatus() scheduler.SyncStatus              { return scheduler.SyncStatus{} }

func newTestServer(t *testing.T) *Server {
	t.Helper()

	gov, err := governing.New(governing.Config{
		DailyTokenLimit: 100,
		DailyCostLimit:  decimal.NewFromInt(1),
		Cooldown:        time.Minute,
		LoopWindow:      time.Minute,
	})
	require.NoError(t, err)

	cfg := &config.Config{
		Server: config.Server{Host: "127.0.0.1", Port: "0", AllowedOrigins: []string{"http://localhost:3000"}},
		Auth:   config.Auth{Secret: "secret"},
	}

	srv, err := New(cfg, Dependencies{
		Governance: gov,
		Metrics:    mocks.NewMockPerformanceRepository(gomock.NewController(t)),
		Ingestion:  idleTrigger{},
	})
	require.NoError(t, err)
	return srv
}

func TestNew_MissingDependencies(t *testing.T) {
	_, err := New(&config.Config{}, Dependencies{})
	assert.Error(t, err)
}

func TestServer_Chain(t *testing.T) {
	srv := newTestServer(t)

	t.Run("leitura sem token recusada com CORS e correlação", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/v1/performance", nil)
		req.Header.Set("Origin", "http://localhost:3000")
		rec := httptest.NewRecorder()

		srv.Handler().ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
		assert.NotEmpty(t, rec.Header().Get(log.CorrelationHeader))
	})

	t.Run("rota de operador exige token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/orchestration/reset", nil)
		rec := httptest.NewRecorder()

		srv.Handler().ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("healthcheck sem banco", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/healthcheck", nil)
		rec := httptest.NewRecorder()

		srv.Handler().ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
	})
}
