package domain

import (
	"errors"
	"fmt"
	"time"
)

// Erros base da ingestão e da governança. Os tipos abaixo carregam o contexto
// de diagnóstico e respondem a errors.Is com o sentinel correspondente.
var (
	ErrCredentialsMissing = errors.New("credentials missing")
	ErrRateLimitExceeded  = errors.New("rate limit exceeded")
	ErrProvider           = errors.New("provider error")
	ErrCircuitOpen        = errors.New("circuit open")
	ErrOAuthToken         = errors.New("oauth token exchange failed")
	ErrTenantMismatch     = errors.New("row tenant does not match batch tenant")
	ErrUnsupportedService = errors.New("unsupported service")
)

// CredentialsMissingError indica ausência de credencial para (tenant, serviço)
type CredentialsMissingError struct {
	TenantID string
	Service  Service
}

func (e *CredentialsMissingError) Error() string {
	return fmt.Sprintf("credentials missing for tenant %q service %q", e.TenantID, e.Service)
}

func (e *CredentialsMissingError) Is(target error) bool {
	return target == ErrCredentialsMissing
}

// RateLimitExceededError indica que as retentativas de 429 se esgotaram
type RateLimitExceededError struct {
	Platform Platform
	Attempts int
}

func (e *RateLimitExceededError) Error() string {
	return fmt.Sprintf("%s: rate limit exceeded after %d attempts", e.Platform, e.Attempts)
}

func (e *RateLimitExceededError) Is(target error) bool {
	return target == ErrRateLimitExceeded
}

// ProviderError é qualquer resposta não-2xx diferente de 429
type ProviderError struct {
	Platform Platform
	Status   int
	Body     string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s: provider returned status %d: %s", e.Platform, e.Status, e.Body)
}

func (e *ProviderError) Is(target error) bool {
	return target == ErrProvider
}

// OAuthTokenError indica falha na troca do refresh token do Google
type OAuthTokenError struct {
	TenantID string
	Err      error
}

func (e *OAuthTokenError) Error() string {
	if e.TenantID == "" {
		return fmt.Sprintf("oauth token exchange failed: %v", e.Err)
	}
	return fmt.Sprintf("oauth token exchange failed for tenant %q: %v", e.TenantID, e.Err)
}

func (e *OAuthTokenError) Unwrap() error {
	return e.Err
}

func (e *OAuthTokenError) Is(target error) bool {
	return target == ErrOAuthToken
}

// CircuitOpenError é devolvido quando a governança recusa uma chamada
type CircuitOpenError struct {
	State      string
	Reason     string
	RetryAfter time.Duration
}

func (e *CircuitOpenError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("circuit %s: call rejected", e.State)
	}
	return fmt.Sprintf("circuit %s: call rejected: %s", e.State, e.Reason)
}

func (e *CircuitOpenError) Is(target error) bool {
	return target == ErrCircuitOpen
}
