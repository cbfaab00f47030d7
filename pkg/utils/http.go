package utils

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/bennettsui/5ml-agenticai-v1-sub007/internal/domain"
	"github.com/bennettsui/5ml-agenticai-v1-sub007/pkg/backoff"
	"github.com/bennettsui/5ml-agenticai-v1-sub007/pkg/metrics"
	"github.com/sirupsen/logrus"
)

// maxErrorBody limita quanto do corpo de erro vai para ProviderError
const maxErrorBody = 2048

// RequestFactory cria uma nova requisição a cada tentativa
type RequestFactory func(ctx context.Context) (*http.Request, error)

// MakeRequest executa a requisição aplicando a política de retentativa em 429.
// Qualquer outra resposta não-2xx vira ProviderError sem nova tentativa.
func MakeRequest(ctx context.Context, client *http.Client, policy backoff.Policy, platform domain.Platform, newRequest RequestFactory) ([]byte, error) {
	var body []byte

	attempts, err := policy.Run(ctx, func(ctx context.Context) (bool, error) {
		req, err := newRequest(ctx)
		if err != nil {
			return false, err
		}

		resp, err := client.Do(req)
		if err != nil {
			return false, err
		}
		defer resp.Body.Close()

		metrics.ProviderRequests.WithLabelValues(string(platform), strconv.Itoa(resp.StatusCode)).Inc()

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return false, err
		}

		switch {
		case resp.StatusCode == http.StatusTooManyRequests:
			metrics.ProviderRetries.WithLabelValues(string(platform)).Inc()
			logrus.WithFields(logrus.Fields{
				"platform": platform,
				"url":      req.URL.Path,
			}).Warn(fmt.Sprintf("%s: rate limited by provider", platform))
			return true, nil
		case resp.StatusCode < 200 || resp.StatusCode > 299:
			return false, &domain.ProviderError{
				Platform: platform,
				Status:   resp.StatusCode,
				Body:     truncate(string(data), maxErrorBody),
			}
		}

		body = data
		return false, nil
	})

	if errors.Is(err, backoff.ErrRetriesExhausted) {
		return nil, &domain.RateLimitExceededError{Platform: platform, Attempts: attempts}
	}
	if err != nil {
		return nil, err
	}

	return body, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
