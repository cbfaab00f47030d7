package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/bennettsui/5ml-agenticai-v1-sub007/internal/domain"
	"github.com/bennettsui/5ml-agenticai-v1-sub007/pkg/apiErrors"
	"github.com/bennettsui/5ml-agenticai-v1-sub007/pkg/log"
	"github.com/bennettsui/5ml-agenticai-v1-sub007/pkg/utils"
)

// defaultRangeDays é a janela usada quando from/to não são informados
const defaultRangeDays = 30

// PerformanceReader é a parte de leitura do MetricStore
type PerformanceReader interface {
	Query(ctx context.Context, filter domain.PerformanceFilter) ([]domain.DailyMetric, error)
	QueryAggregated(ctx context.Context, filter domain.PerformanceFilter) ([]domain.AggregatedMetric, error)
}

func parsePerformanceFilter(r *http.Request) (domain.PerformanceFilter, error) {
	query := r.URL.Query()

	from, err := utils.ParseDate(query.Get("from"))
	if err != nil {
		return domain.PerformanceFilter{}, err
	}
	to, err := utils.ParseDate(query.Get("to"))
	if err != nil {
		return domain.PerformanceFilter{}, err
	}

	if to.IsZero() {
		to = domain.DateOnly(time.Now())
	}
	if from.IsZero() {
		from = to.AddDate(0, 0, -(defaultRangeDays - 1))
	}

	filter := domain.PerformanceFilter{
		TenantID: query.Get("tenant_id"),
		Platform: domain.Platform(query.Get("platform")),
		From:     from,
		To:       to,
	}
	return filter, filter.Validate()
}

func GetPerformance(reader PerformanceReader) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := log.ForContext(r.Context())

		filter, err := parsePerformanceFilter(r)
		if err != nil {
			apiErrors.WriteError(w, apiErrors.ErrInvalidRequest, err.Error(), nil)
			return
		}

		rows, err := reader.Query(r.Context(), filter)
		if err != nil {
			logger.WithError(err).Error("performance: failed to query daily rows")
			apiErrors.WriteError(w, apiErrors.ErrDatabaseOperation, "Erro ao consultar performance", nil)
			return
		}

		writeJSON(w, r, http.StatusOK, map[string]any{
			"from": filter.From.Format(time.DateOnly),
			"to":   filter.To.Format(time.DateOnly),
			"rows": rows,
		})
	})
}

func GetDailyPerformance(reader PerformanceReader) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := log.ForContext(r.Context())

		filter, err := parsePerformanceFilter(r)
		if err != nil {
			apiErrors.WriteError(w, apiErrors.ErrInvalidRequest, err.Error(), nil)
			return
		}

		days, err := reader.QueryAggregated(r.Context(), filter)
		if err != nil {
			logger.WithError(err).Error("performance: failed to aggregate daily rows")
			apiErrors.WriteError(w, apiErrors.ErrDatabaseOperation, "Erro ao consultar performance", nil)
			return
		}

		writeJSON(w, r, http.StatusOK, map[string]any{
			"from": filter.From.Format(time.DateOnly),
			"to":   filter.To.Format(time.DateOnly),
			"days": days,
		})
	})
}
