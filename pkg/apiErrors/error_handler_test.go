package apiErrors

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bennettsui/5ml-agenticai-v1-sub007/internal/domain"
)

func TestWriteDomainError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{
			name:       "circuit open",
			err:        &domain.CircuitOpenError{State: "OPEN", RetryAfter: 90 * time.Second},
			wantStatus: http.StatusServiceUnavailable,
			wantCode:   ErrCircuitOpen,
		},
		{
			name:       "wrapped credentials missing",
			err:        fmt.Errorf("fetch: %w", &domain.CredentialsMissingError{TenantID: "t1", Service: domain.ServiceGoogleAds}),
			wantStatus: http.StatusUnprocessableEntity,
			wantCode:   ErrCredentialsMissing,
		},
		{
			name:       "invalid date range",
			err:        domain.ErrInvalidDateRange,
			wantStatus: http.StatusBadRequest,
			wantCode:   ErrInvalidRequest,
		},
		{
			name:       "provider error",
			err:        &domain.ProviderError{Platform: domain.PlatformMeta, Status: 400},
			wantStatus: http.StatusBadGateway,
			wantCode:   ErrExternalService,
		},
		{
			name:       "unknown error hides details",
			err:        errors.New("pq: connection refused"),
			wantStatus: http.StatusInternalServerError,
			wantCode:   ErrInternalServer,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			WriteDomainError(rec, tt.err)

			assert.Equal(t, tt.wantStatus, rec.Code)

			var body APIError
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.wantCode, body.Code)
			assert.NotContains(t, body.Message, "pq:")
		})
	}
}

func TestWriteDomainError_RetryAfterHeader(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteDomainError(rec, &domain.CircuitOpenError{State: "OPEN", RetryAfter: 2 * time.Minute})

	assert.Equal(t, "120", rec.Header().Get("Retry-After"))
}

func TestStatusFor_Unknown(t *testing.T) {
	assert.Equal(t, http.StatusInternalServerError, StatusFor("NOPE"))
}
