package ingesting

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/bennettsui/5ml-agenticai-v1-sub007/internal/domain"
	"github.com/bennettsui/5ml-agenticai-v1-sub007/pkg/metrics"
)

const defaultMaxConcurrentJobs = 4

// Job é a unidade de trabalho: um tenant numa plataforma
type Job struct {
	TenantID string         `json:"tenant_id"`
	Service  domain.Service `json:"service"`
}

// JobResult resume o que aconteceu com um job. Falhas ficam aqui e nunca
// interrompem os outros jobs da rodada.
type JobResult struct {
	TenantID string          `json:"tenant_id"`
	Service  domain.Service  `json:"service"`
	Platform domain.Platform `json:"platform"`
	Fetched  int             `json:"fetched"`
	Written  int             `json:"written"`
	Error    string          `json:"error,omitempty"`
	Duration time.Duration   `json:"duration"`

	err error
}

func (r JobResult) Err() error {
	return r.err
}

// RunReport é o relatório de uma rodada completa
type RunReport struct {
	RunID      string      `json:"run_id"`
	Since      time.Time   `json:"since"`
	Until      time.Time   `json:"until"`
	StartedAt  time.Time   `json:"started_at"`
	FinishedAt time.Time   `json:"finished_at"`
	Succeeded  int         `json:"succeeded"`
	Failed     int         `json:"failed"`
	Jobs       []JobResult `json:"jobs"`
}

type Pipeline struct {
	resolver          CredentialResolver
	store             MetricStore
	adapters          map[domain.Service]*TenantFetchAdapter
	maxConcurrentJobs int
}

// NewPipeline registra um adapter por serviço a partir dos fetchers informados
func NewPipeline(resolver CredentialResolver, store MetricStore, maxConcurrentJobs int, fetchers ...PlatformFetcher) (*Pipeline, error) {
	if maxConcurrentJobs <= 0 {
		maxConcurrentJobs = defaultMaxConcurrentJobs
	}

	adapters := make(map[domain.Service]*TenantFetchAdapter, len(fetchers))
	for _, fetcher := range fetchers {
		service := serviceFor(fetcher.Platform())
		adapter, err := NewTenantFetchAdapter(service, resolver, fetcher)
		if err != nil {
			return nil, err
		}
		adapters[service] = adapter
	}

	return &Pipeline{
		resolver:          resolver,
		store:             store,
		adapters:          adapters,
		maxConcurrentJobs: maxConcurrentJobs,
	}, nil
}

func serviceFor(platform domain.Platform) domain.Service {
	switch platform {
	case domain.PlatformMeta:
		return domain.ServiceMetaAds
	case domain.PlatformGoogle:
		return domain.ServiceGoogleAds
	}
	return ""
}

// Run ingere todos os pares (tenant, serviço) cadastrados
func (p *Pipeline) Run(ctx context.Context, since, until time.Time) (*RunReport, error) {
	targets, err := p.resolver.ListTargets(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "list ingestion targets")
	}

	jobs := make([]Job, 0, len(targets))
	for _, target := range targets {
		jobs = append(jobs, Job{TenantID: target.TenantID, Service: target.Service})
	}

	return p.RunJobs(ctx, jobs, since, until), nil
}

// RunJobs executa os jobs num pool limitado. Cada job pagina em sequência e
// grava numa única transação; cancelar o contexto aborta retentativas e jobs pendentes.
func (p *Pipeline) RunJobs(ctx context.Context, jobs []Job, since, until time.Time) *RunReport {
	report := &RunReport{
		RunID:     uuid.New().String(),
		Since:     domain.DateOnly(since),
		Until:     domain.DateOnly(until),
		StartedAt: time.Now(),
		Jobs:      make([]JobResult, len(jobs)),
	}

	entry := logrus.WithFields(logrus.Fields{
		"run_id": report.RunID,
		"jobs":   len(jobs),
		"since":  report.Since.Format(time.DateOnly),
		"until":  report.Until.Format(time.DateOnly),
	})
	entry.Info("ingestion: run started")

	// Criar um canal para controlar o número de workers concorrentes
	semaphore := make(chan struct{}, p.maxConcurrentJobs)
	var wg sync.WaitGroup

	for i, job := range jobs {
		if err := ctx.Err(); err != nil {
			report.Jobs[i] = p.failed(job, errors.Wrap(err, "job not started"), 0)
			continue
		}

		select {
		case <-ctx.Done():
			report.Jobs[i] = p.failed(job, errors.Wrap(ctx.Err(), "job not started"), 0)
			continue
		case semaphore <- struct{}{}:
		}

		wg.Add(1)
		go func(i int, job Job) {
			defer func() {
				<-semaphore
				wg.Done()
			}()

			report.Jobs[i] = p.runJob(ctx, job, since, until)
		}(i, job)
	}

	wg.Wait()

	for _, result := range report.Jobs {
		if result.err != nil {
			report.Failed++
		} else {
			report.Succeeded++
		}
	}
	report.FinishedAt = time.Now()

	entry.WithFields(logrus.Fields{
		"succeeded": report.Succeeded,
		"failed":    report.Failed,
		"duration":  report.FinishedAt.Sub(report.StartedAt).String(),
	}).Info("ingestion: run finished")

	return report
}

func (p *Pipeline) runJob(ctx context.Context, job Job, since, until time.Time) JobResult {
	start := time.Now()

	adapter, ok := p.adapters[job.Service]
	if !ok {
		return p.failed(job, errors.Wrapf(domain.ErrUnsupportedService, "service %q", job.Service), time.Since(start))
	}

	rows, err := adapter.FetchForTenant(ctx, job.TenantID, since, until)
	if err != nil {
		return p.failed(job, errors.Wrapf(err, "fetch %s for tenant %s", job.Service, job.TenantID), time.Since(start))
	}

	written, err := p.store.Upsert(ctx, rows, job.TenantID)
	if err != nil {
		result := p.failed(job, errors.Wrapf(err, "upsert %d rows for tenant %s", len(rows), job.TenantID), time.Since(start))
		result.Fetched = len(rows)
		return result
	}

	platform := job.Service.Platform()
	metrics.IngestionJobs.WithLabelValues(string(platform), "success").Inc()
	metrics.IngestedRows.WithLabelValues(string(platform)).Add(float64(written))

	logrus.WithFields(logrus.Fields{
		"tenant_id": job.TenantID,
		"service":   job.Service,
		"fetched":   len(rows),
		"written":   written,
	}).Info("ingestion: job completed")

	return JobResult{
		TenantID: job.TenantID,
		Service:  job.Service,
		Platform: platform,
		Fetched:  len(rows),
		Written:  written,
		Duration: time.Since(start),
	}
}

func (p *Pipeline) failed(job Job, err error, elapsed time.Duration) JobResult {
	platform := job.Service.Platform()
	metrics.IngestionJobs.WithLabelValues(string(platform), "failure").Inc()

	logrus.WithFields(logrus.Fields{
		"tenant_id": job.TenantID,
		"service":   job.Service,
	}).WithError(err).Error("ingestion: job failed")

	return JobResult{
		TenantID: job.TenantID,
		Service:  job.Service,
		Platform: platform,
		Error:    err.Error(),
		Duration: elapsed,
		err:      err,
	}
}
