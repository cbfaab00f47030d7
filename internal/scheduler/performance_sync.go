package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/sirupsen/logrus"

	"github.com/bennettsui/5ml-agenticai-v1-sub007/internal/config"
	"github.com/bennettsui/5ml-agenticai-v1-sub007/internal/domain"
	"github.com/bennettsui/5ml-agenticai-v1-sub007/internal/usecases/ingesting"
)

// ErrSyncRunning é devolvido quando já existe uma rodada em andamento
var ErrSyncRunning = errors.New("performance sync already running")

// IngestionRunner é o pipeline visto pelo agendador
type IngestionRunner interface {
	Run(ctx context.Context, since, until time.Time) (*ingesting.RunReport, error)
}

// PerformanceSyncConfig representa a configuração do agendador de performance
type PerformanceSyncConfig struct {
	CronSchedule string
	LookbackDays int
	SyncEnabled  bool
}

// SyncStatus é o status exposto em /v1/ingestion/status
type SyncStatus struct {
	SyncEnabled         bool                 `json:"sync_enabled"`
	SyncCron            string               `json:"sync_cron"`
	SyncLookbackDays    int                  `json:"sync_lookback_days"`
	Running             bool                 `json:"running"`
	LastSyncStartedAt   time.Time            `json:"last_sync_started_at"`
	LastSyncCompletedAt time.Time            `json:"last_sync_completed_at"`
	LastError           string               `json:"last_error,omitempty"`
	LastReport          *ingesting.RunReport `json:"last_report,omitempty"`
}

// PerformanceSyncService agenda e executa a ingestão diária de todas as plataformas
type PerformanceSyncService struct {
	scheduler *gocron.Scheduler
	config    PerformanceSyncConfig
	runner    IngestionRunner
	now       func() time.Time

	// ctx é o contexto do processo; cancelado no shutdown
	ctx context.Context

	syncMutex           sync.Mutex
	syncRunning         bool
	lastSyncStartedAt   time.Time
	lastSyncCompletedAt time.Time
	lastError           string
	lastReport          *ingesting.RunReport
}

// NewPerformanceSyncService cria o serviço a partir da config global
func NewPerformanceSyncService(runner IngestionRunner, appConfig *config.Config) *PerformanceSyncService {
	syncConfig := PerformanceSyncConfig{
		CronSchedule: appConfig.PerformanceSync.CronSchedule,
		LookbackDays: appConfig.PerformanceSync.LookbackDays,
		SyncEnabled:  appConfig.PerformanceSync.Enabled,
	}
	if syncConfig.LookbackDays <= 0 {
		syncConfig.LookbackDays = 1
	}

	logrus.WithFields(logrus.Fields{
		"cron_schedule": syncConfig.CronSchedule,
		"lookback_days": syncConfig.LookbackDays,
		"sync_enabled":  syncConfig.SyncEnabled,
	}).Info("Configuração do agendador de performance carregada")

	return &PerformanceSyncService{
		scheduler: gocron.NewScheduler(time.UTC),
		config:    syncConfig,
		runner:    runner,
		now:       time.Now,
		ctx:       context.Background(),
	}
}

// Start inicia o agendador
func (s *PerformanceSyncService) Start(ctx context.Context) error {
	s.ctx = ctx

	if !s.config.SyncEnabled {
		logrus.Info("Sincronização de performance desabilitada por configuração")
		return nil
	}

	logrus.WithField("cron", s.config.CronSchedule).Info("Iniciando agendador de sincronização de performance")

	_, err := s.scheduler.Cron(s.config.CronSchedule).Do(func() {
		since, until := s.window()
		if _, err := s.sync(ctx, since, until); err != nil && !errors.Is(err, ErrSyncRunning) {
			logrus.WithError(err).Error("Erro na sincronização agendada de performance")
		}
	})
	if err != nil {
		return fmt.Errorf("erro ao agendar sincronização de performance: %w", err)
	}

	s.scheduler.StartAsync()

	go func() {
		<-ctx.Done()
		logrus.Info("Parando agendador de sincronização de performance")
		s.scheduler.Stop()
	}()

	return nil
}

// window cobre os últimos LookbackDays dias completos, terminando ontem
func (s *PerformanceSyncService) window() (time.Time, time.Time) {
	today := domain.DateOnly(s.now())
	return today.AddDate(0, 0, -s.config.LookbackDays), today.AddDate(0, 0, -1)
}

// sync executa uma rodada, recusando sobreposição
func (s *PerformanceSyncService) sync(ctx context.Context, since, until time.Time) (*ingesting.RunReport, error) {
	if !s.acquire() {
		logrus.Info("Sincronização de performance já em andamento, ignorando")
		return nil, ErrSyncRunning
	}
	defer s.release()

	return s.execute(ctx, since, until)
}

func (s *PerformanceSyncService) acquire() bool {
	s.syncMutex.Lock()
	defer s.syncMutex.Unlock()

	if s.syncRunning {
		return false
	}
	s.syncRunning = true
	s.lastSyncStartedAt = s.now()
	return true
}

func (s *PerformanceSyncService) release() {
	s.syncMutex.Lock()
	s.syncRunning = false
	s.syncMutex.Unlock()
}

func (s *PerformanceSyncService) execute(ctx context.Context, since, until time.Time) (*ingesting.RunReport, error) {
	logrus.WithFields(logrus.Fields{
		"start_date": since.Format(time.DateOnly),
		"end_date":   until.Format(time.DateOnly),
	}).Info("Iniciando sincronização de performance para todos os tenants")

	report, err := s.runner.Run(ctx, since, until)

	s.syncMutex.Lock()
	defer s.syncMutex.Unlock()

	s.lastSyncCompletedAt = s.now()
	if err != nil {
		s.lastError = err.Error()
		return nil, err
	}

	s.lastError = ""
	s.lastReport = report

	logrus.WithFields(logrus.Fields{
		"run_id":    report.RunID,
		"succeeded": report.Succeeded,
		"failed":    report.Failed,
	}).Info("Sincronização de performance concluída")

	return report, nil
}

// TriggerManualSync dispara uma rodada em background. Datas zeradas usam a
// janela padrão. Devolve ErrSyncRunning se já houver uma rodada em andamento.
func (s *PerformanceSyncService) TriggerManualSync(since, until time.Time) error {
	defaultSince, defaultUntil := s.window()
	if since.IsZero() {
		since = defaultSince
	}
	if until.IsZero() {
		until = defaultUntil
	}
	if until.Before(since) {
		return fmt.Errorf("%w: until before since", domain.ErrInvalidDateRange)
	}

	if !s.acquire() {
		logrus.Info("Sincronização de performance já em andamento, ignorando solicitação manual")
		return ErrSyncRunning
	}

	logrus.Info("Iniciando sincronização manual de performance")
	go func() {
		defer s.release()
		if _, err := s.execute(s.ctx, since, until); err != nil {
			logrus.WithError(err).Error("Erro na sincronização manual de performance")
		}
	}()

	return nil
}

// GetStatus retorna o status atual do agendador
func (s *PerformanceSyncService) GetStatus() SyncStatus {
	s.syncMutex.Lock()
	defer s.syncMutex.Unlock()

	return SyncStatus{
		SyncEnabled:         s.config.SyncEnabled,
		SyncCron:            s.config.CronSchedule,
		SyncLookbackDays:    s.config.LookbackDays,
		Running:             s.syncRunning,
		LastSyncStartedAt:   s.lastSyncStartedAt,
		LastSyncCompletedAt: s.lastSyncCompletedAt,
		LastError:           s.lastError,
		LastReport:          s.lastReport,
	}
}
