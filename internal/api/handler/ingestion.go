package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/bennettsui/5ml-agenticai-v1-sub007/internal/domain"
	"github.com/bennettsui/5ml-agenticai-v1-sub007/internal/scheduler"
	"github.com/bennettsui/5ml-agenticai-v1-sub007/pkg/apiErrors"
	"github.com/bennettsui/5ml-agenticai-v1-sub007/pkg/log"
	"github.com/bennettsui/5ml-agenticai-v1-sub007/pkg/utils"
)

// IngestionTrigger é o agendador visto pela API
type IngestionTrigger interface {
	TriggerManualSync(since, until time.Time) error
	GetStatus() scheduler.SyncStatus
}

type runRequest struct {
	Since string `json:"since"`
	Until string `json:"until"`
}

// RunIngestion dispara uma rodada manual em background e responde 202
func RunIngestion(trigger IngestionTrigger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := log.ForContext(r.Context())

		var req runRequest
		if err := decodeBody(r, &req); err != nil {
			apiErrors.WriteError(w, apiErrors.ErrInvalidFormat, "Corpo inválido: "+err.Error(), nil)
			return
		}

		since, err := utils.ParseDate(req.Since)
		if err != nil {
			apiErrors.WriteError(w, apiErrors.ErrInvalidFormat, err.Error(), nil)
			return
		}
		until, err := utils.ParseDate(req.Until)
		if err != nil {
			apiErrors.WriteError(w, apiErrors.ErrInvalidFormat, err.Error(), nil)
			return
		}

		err = trigger.TriggerManualSync(since, until)
		switch {
		case errors.Is(err, scheduler.ErrSyncRunning):
			apiErrors.WriteError(w, apiErrors.ErrSyncRunning, "Já existe uma sincronização em andamento", nil)
			return
		case errors.Is(err, domain.ErrInvalidDateRange):
			apiErrors.WriteError(w, apiErrors.ErrInvalidRequest, err.Error(), nil)
			return
		case err != nil:
			logger.WithError(err).Error("ingestion: failed to trigger manual run")
			apiErrors.WriteDomainError(w, err)
			return
		}

		logger.WithFields(log.Fields{"since": req.Since, "until": req.Until}).Info("ingestion: manual run triggered")
		writeJSON(w, r, http.StatusAccepted, map[string]any{
			"message": "Sincronização iniciada com sucesso",
		})
	})
}

func GetIngestionStatus(trigger IngestionTrigger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, r, http.StatusOK, trigger.GetStatus())
	})
}
