package handler

import (
	"net/http"

	"github.com/bennettsui/5ml-agenticai-v1-sub007/internal/api/handler/router"
	"github.com/bennettsui/5ml-agenticai-v1-sub007/internal/domain"
	"github.com/bennettsui/5ml-agenticai-v1-sub007/pkg/metrics"
	"github.com/bennettsui/5ml-agenticai-v1-sub007/pkg/middleware"
)

func operatorOnly(secret string) []router.Middleware {
	return []router.Middleware{middleware.AuthMiddleware(secret), middleware.OperatorOnly()}
}

// anyRole protege as leituras: dados de tenants nunca saem sem token
func anyRole(secret string) []router.Middleware {
	return []router.Middleware{middleware.AuthMiddleware(secret), middleware.AllRoles()}
}

func subjectOf(claims *domain.Claims) string {
	if claims == nil || claims.Subject == "" {
		return "operator"
	}
	return claims.Subject
}

func Healthcheck(db Pinger) []router.Route {
	return []router.Route{
		{
			Path:    "/healthcheck",
			Method:  http.MethodGet,
			Handler: HealthcheckHandler(db),
		},
		{
			Path:    "/metrics",
			Method:  http.MethodGet,
			Handler: metrics.Handler(),
		},
	}
}

func Orchestration(gov Governance, secret string) []router.Route {
	return []router.Route{
		{
			Path:        "/orchestration/status",
			Method:      http.MethodGet,
			Handler:     GetOrchestrationStatus(gov),
			Middlewares: anyRole(secret),
		},
		{
			Path:        "/orchestration/usage",
			Method:      http.MethodGet,
			Handler:     GetOrchestrationUsage(gov),
			Middlewares: anyRole(secret),
		},
		{
			Path:        "/orchestration/alerts",
			Method:      http.MethodGet,
			Handler:     GetOrchestrationAlerts(gov),
			Middlewares: anyRole(secret),
		},
		{
			Path:        "/orchestration/config",
			Method:      http.MethodPost,
			Handler:     UpdateOrchestrationConfig(gov),
			Middlewares: operatorOnly(secret),
		},
		{
			Path:        "/orchestration/reset",
			Method:      http.MethodPost,
			Handler:     ResetOrchestration(gov),
			Middlewares: operatorOnly(secret),
		},
		{
			Path:        "/orchestration/trip",
			Method:      http.MethodPost,
			Handler:     TripOrchestration(gov),
			Middlewares: operatorOnly(secret),
		},
	}
}

func Performance(reader PerformanceReader, secret string) []router.Route {
	return []router.Route{
		{
			Path:        "/v1/performance",
			Method:      http.MethodGet,
			Handler:     GetPerformance(reader),
			Middlewares: anyRole(secret),
		},
		{
			Path:        "/v1/performance/daily",
			Method:      http.MethodGet,
			Handler:     GetDailyPerformance(reader),
			Middlewares: anyRole(secret),
		},
	}
}

func Ingestion(trigger IngestionTrigger, secret string) []router.Route {
	return []router.Route{
		{
			Path:        "/v1/ingestion/run",
			Method:      http.MethodPost,
			Handler:     RunIngestion(trigger),
			Middlewares: operatorOnly(secret),
		},
		{
			Path:        "/v1/ingestion/status",
			Method:      http.MethodGet,
			Handler:     GetIngestionStatus(trigger),
			Middlewares: anyRole(secret),
		},
	}
}
