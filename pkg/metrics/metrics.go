package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "adcore"

// Registry é o registro privado exposto em /metrics
var Registry = prometheus.NewRegistry()

var (
	ProviderRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "provider_requests_total",
			Help:      "Requisições feitas às APIs de anúncios, por plataforma e status HTTP.",
		},
		[]string{"platform", "status"},
	)

	ProviderRetries = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "provider_rate_limit_retries_total",
			Help:      "Retentativas disparadas por HTTP 429.",
		},
		[]string{"platform"},
	)

	IngestionJobs = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ingestion_jobs_total",
			Help:      "Jobs de ingestão (tenant, plataforma) por resultado.",
		},
		[]string{"platform", "result"},
	)

	IngestedRows = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ingested_rows_total",
			Help:      "Linhas diárias gravadas via upsert.",
		},
		[]string{"platform"},
	)

	GovernorAdmissions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "governor_admissions_total",
			Help:      "Decisões de admissão do governador de uso.",
		},
		[]string{"result"},
	)

	GovernorState = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "governor_breaker_state",
			Help:      "Estado do circuit breaker: 0=CLOSED, 1=HALF_OPEN, 2=OPEN.",
		},
	)

	GovernorDailyTokens = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "governor_daily_tokens",
			Help:      "Tokens consumidos no dia corrente.",
		},
	)

	GovernorDailyCost = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "governor_daily_cost",
			Help:      "Custo acumulado no dia corrente.",
		},
	)
)

func init() {
	Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		ProviderRequests,
		ProviderRetries,
		IngestionJobs,
		IngestedRows,
		GovernorAdmissions,
		GovernorState,
		GovernorDailyTokens,
		GovernorDailyCost,
	)
}

// Handler expõe o registro no formato OpenMetrics
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{EnableOpenMetrics: true})
}
