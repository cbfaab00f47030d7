package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/bennettsui/5ml-agenticai-v1-sub007/internal/usecases/governing"
	"github.com/bennettsui/5ml-agenticai-v1-sub007/pkg/apiErrors"
	"github.com/bennettsui/5ml-agenticai-v1-sub007/pkg/log"
	"github.com/bennettsui/5ml-agenticai-v1-sub007/pkg/middleware"
	"github.com/bennettsui/5ml-agenticai-v1-sub007/pkg/utils"
)

// Governance é a visão do governador exposta pela API
type Governance interface {
	Status() governing.Status
	Usage(hours int) []governing.UsageBucket
	Alerts(limit int) []governing.AlertEvent
	Config() governing.Config
	SetConfig(ctx context.Context, cfg governing.Config) error
	Reset(ctx context.Context)
	Trip(ctx context.Context, reason string)
}

const (
	defaultUsageHours  = 24
	maxUsageHours      = 48
	defaultAlertsLimit = 50
	maxAlertsLimit     = 200
)

func GetOrchestrationStatus(gov Governance) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, r, http.StatusOK, gov.Status())
	})
}

func GetOrchestrationUsage(gov Governance) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hours, err := utils.ParseLimit(r.URL.Query().Get("hours"), defaultUsageHours, maxUsageHours)
		if err != nil {
			apiErrors.WriteError(w, apiErrors.ErrInvalidFormat, err.Error(), nil)
			return
		}

		writeJSON(w, r, http.StatusOK, map[string]any{
			"hours":   hours,
			"buckets": gov.Usage(hours),
		})
	})
}

func GetOrchestrationAlerts(gov Governance) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		limit, err := utils.ParseLimit(r.URL.Query().Get("limit"), defaultAlertsLimit, maxAlertsLimit)
		if err != nil {
			apiErrors.WriteError(w, apiErrors.ErrInvalidFormat, err.Error(), nil)
			return
		}

		writeJSON(w, r, http.StatusOK, map[string]any{
			"alerts": gov.Alerts(limit),
		})
	})
}

// configRequest aceita atualização parcial: campos ausentes mantêm o valor atual
type configRequest struct {
	DailyTokenLimit        *int64           `json:"daily_token_limit"`
	DailyCostLimit         *decimal.Decimal `json:"daily_cost_limit"`
	LoopDetectionThreshold *int             `json:"loop_detection_threshold"`
	BudgetWarningPct       *float64         `json:"budget_warning_pct"`
	CooldownSeconds        *int             `json:"cooldown_seconds"`
	LoopWindowSeconds      *int             `json:"loop_window_seconds"`
}

func (req configRequest) apply(cfg governing.Config) governing.Config {
	if req.DailyTokenLimit != nil {
		cfg.DailyTokenLimit = *req.DailyTokenLimit
	}
	if req.DailyCostLimit != nil {
		cfg.DailyCostLimit = *req.DailyCostLimit
	}
	if req.LoopDetectionThreshold != nil {
		cfg.LoopDetectionThreshold = *req.LoopDetectionThreshold
	}
	if req.BudgetWarningPct != nil {
		cfg.BudgetWarningPct = *req.BudgetWarningPct
	}
	if req.CooldownSeconds != nil {
		cfg.Cooldown = time.Duration(*req.CooldownSeconds) * time.Second
	}
	if req.LoopWindowSeconds != nil {
		cfg.LoopWindow = time.Duration(*req.LoopWindowSeconds) * time.Second
	}
	return cfg
}

func UpdateOrchestrationConfig(gov Governance) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := log.ForContext(r.Context())

		var req configRequest
		if err := decodeBody(r, &req); err != nil {
			apiErrors.WriteError(w, apiErrors.ErrInvalidFormat, "Corpo inválido: "+err.Error(), nil)
			return
		}

		cfg := req.apply(gov.Config())
		// durações explícitas <= 0 são erro, não "manter o atual"
		if (req.CooldownSeconds != nil && cfg.Cooldown <= 0) || (req.LoopWindowSeconds != nil && cfg.LoopWindow <= 0) {
			apiErrors.WriteError(w, apiErrors.ErrInvalidConfig, "cooldown_seconds e loop_window_seconds devem ser positivos", nil)
			return
		}

		if err := gov.SetConfig(r.Context(), cfg); err != nil {
			if errors.Is(err, governing.ErrInvalidConfig) {
				apiErrors.WriteError(w, apiErrors.ErrInvalidConfig, err.Error(), nil)
				return
			}
			apiErrors.WriteDomainError(w, err)
			return
		}

		claims, _ := middleware.ClaimsFrom(r.Context())
		logger.WithFields(log.Fields{"operator": subjectOf(claims)}).Info("orchestration: governance config updated")

		updated := gov.Config()
		writeJSON(w, r, http.StatusOK, map[string]any{
			"config":              updated,
			"cooldown_seconds":    int(updated.Cooldown.Seconds()),
			"loop_window_seconds": int(updated.LoopWindow.Seconds()),
		})
	})
}

func ResetOrchestration(gov Governance) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, _ := middleware.ClaimsFrom(r.Context())
		log.ForContext(r.Context()).WithField("operator", subjectOf(claims)).Warn("orchestration: breaker reset by operator")

		gov.Reset(r.Context())
		writeJSON(w, r, http.StatusOK, gov.Status())
	})
}

type tripRequest struct {
	Reason string `json:"reason"`
}

func TripOrchestration(gov Governance) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req tripRequest
		if err := decodeBody(r, &req); err != nil {
			apiErrors.WriteError(w, apiErrors.ErrInvalidFormat, "Corpo inválido: "+err.Error(), nil)
			return
		}

		claims, _ := middleware.ClaimsFrom(r.Context())
		reason := req.Reason
		if reason == "" {
			reason = "manual trip by " + subjectOf(claims)
		}
		log.ForContext(r.Context()).WithField("reason", reason).Warn("orchestration: breaker tripped by operator")

		gov.Trip(r.Context(), reason)
		writeJSON(w, r, http.StatusOK, gov.Status())
	})
}
