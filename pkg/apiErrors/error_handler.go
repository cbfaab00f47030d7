package apiErrors

import (
	"errors"
	"net/http"
	"strconv"

	jsoniter "github.com/json-iterator/go"

	"github.com/bennettsui/5ml-agenticai-v1-sub007/internal/domain"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	// Erros de autenticação (1000-1999)
	ErrInvalidToken          = "AUTH_006" // Token inválido
	ErrExpiredToken          = "AUTH_007" // Token expirado
	ErrInsufficientPrivilege = "AUTH_008" // Privilégios insuficientes

	// Erros de validação (2000-2999)
	ErrInvalidRequest      = "VAL_001" // Requisição inválida
	ErrMissingRequiredData = "VAL_002" // Dados obrigatórios ausentes
	ErrInvalidFormat       = "VAL_003" // Formato de dados inválido
	ErrNotFound            = "VAL_004" // Rota inexistente
	ErrMethodNotAllowed    = "VAL_005" // Método não aceito na rota

	// Erros de ingestão (3000-3999)
	ErrCredentialsMissing = "ING_001" // Tenant sem credencial para o serviço
	ErrSyncRunning        = "ING_002" // Já existe uma rodada em andamento
	ErrRateLimited        = "ING_003" // Retentativas de 429 esgotadas

	// Erros de governança (4000-4999)
	ErrCircuitOpen   = "GOV_001" // Circuito aberto, chamada recusada
	ErrInvalidConfig = "GOV_002" // Configuração de governança inválida

	// Erros do servidor (5000-5999)
	ErrInternalServer    = "SRV_001" // Erro interno do servidor
	ErrDatabaseOperation = "SRV_002" // Erro de operação de banco de dados
	ErrExternalService   = "SRV_003" // Erro em serviço externo
)

// Mapeamento de códigos de erro para status HTTP
var httpStatusMap = map[string]int{
	ErrInvalidToken:          http.StatusUnauthorized,
	ErrExpiredToken:          http.StatusUnauthorized,
	ErrInsufficientPrivilege: http.StatusForbidden,
	ErrInvalidRequest:        http.StatusBadRequest,
	ErrMissingRequiredData:   http.StatusBadRequest,
	ErrInvalidFormat:         http.StatusBadRequest,
	ErrNotFound:              http.StatusNotFound,
	ErrMethodNotAllowed:      http.StatusMethodNotAllowed,
	ErrCredentialsMissing:    http.StatusUnprocessableEntity,
	ErrSyncRunning:           http.StatusConflict,
	ErrRateLimited:           http.StatusTooManyRequests,
	ErrCircuitOpen:           http.StatusServiceUnavailable,
	ErrInvalidConfig:         http.StatusBadRequest,
	ErrInternalServer:        http.StatusInternalServerError,
	ErrDatabaseOperation:     http.StatusInternalServerError,
	ErrExternalService:       http.StatusBadGateway,
}

// APIError representa um erro de API padronizado
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message,omitempty"`
	Details any    `json:"details,omitempty"`
}

// StatusFor devolve o status HTTP de um código, 500 quando desconhecido
func StatusFor(code string) int {
	if status, ok := httpStatusMap[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// WriteError escreve o erro padronizado para a resposta HTTP
func WriteError(w http.ResponseWriter, code string, message string, details any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(StatusFor(code))
	json.NewEncoder(w).Encode(APIError{
		Code:    code,
		Message: message,
		Details: details,
	})
}

// WriteDomainError traduz os erros tipados do domínio para o código certo
func WriteDomainError(w http.ResponseWriter, err error) {
	var circuitErr *domain.CircuitOpenError
	if errors.As(err, &circuitErr) {
		if seconds := int(circuitErr.RetryAfter.Seconds()); seconds > 0 {
			w.Header().Set("Retry-After", strconv.Itoa(seconds))
		}
		WriteError(w, ErrCircuitOpen, err.Error(), map[string]any{
			"state":               circuitErr.State,
			"retry_after_seconds": int(circuitErr.RetryAfter.Seconds()),
		})
		return
	}

	switch {
	case errors.Is(err, domain.ErrInvalidDateRange), errors.Is(err, domain.ErrInvalidPlatform), errors.Is(err, domain.ErrUnsupportedService):
		WriteError(w, ErrInvalidRequest, err.Error(), nil)
	case errors.Is(err, domain.ErrCredentialsMissing):
		WriteError(w, ErrCredentialsMissing, err.Error(), nil)
	case errors.Is(err, domain.ErrRateLimitExceeded):
		WriteError(w, ErrRateLimited, err.Error(), nil)
	case errors.Is(err, domain.ErrProvider), errors.Is(err, domain.ErrOAuthToken):
		WriteError(w, ErrExternalService, err.Error(), nil)
	default:
		WriteError(w, ErrInternalServer, "Erro interno do servidor", nil)
	}
}
