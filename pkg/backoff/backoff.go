// Package backoff implementa a política de retentativa usada pelos clientes
// das APIs de anúncios: atraso exponencial de 2^tentativa * base.
package backoff

import (
	"context"
	"errors"
	"time"
)

// ErrRetriesExhausted é devolvido quando todas as retentativas foram consumidas
var ErrRetriesExhausted = errors.New("backoff: retries exhausted")

// Sleeper bloqueia pelo tempo informado ou até o contexto ser cancelado
type Sleeper func(ctx context.Context, d time.Duration) error

// Operation executa uma tentativa. retry=true pede nova tentativa.
type Operation func(ctx context.Context) (retry bool, err error)

type Policy struct {
	MaxRetries int
	Base       time.Duration
	Sleep      Sleeper
}

// Default: 3 retentativas com 2s, 4s e 8s de espera
func Default() Policy {
	return Policy{
		MaxRetries: 3,
		Base:       time.Second,
		Sleep:      ContextSleep,
	}
}

// New monta uma política a partir da configuração. Cada campo cai no padrão
// sozinho: base <= 0 mantém 1s, maxRetries < 0 mantém 3.
func New(maxRetries int, base time.Duration) Policy {
	p := Default()
	if base > 0 {
		p.Base = base
	}
	if maxRetries >= 0 {
		p.MaxRetries = maxRetries
	}
	return p
}

// ContextSleep dorme respeitando o cancelamento do contexto
func ContextSleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Delay retorna a espera antes da retentativa n (1-based)
func (p Policy) Delay(retry int) time.Duration {
	if retry < 1 {
		return 0
	}
	return time.Duration(1<<uint(retry)) * p.Base
}

// Schedule lista todas as esperas da política, na ordem
func (p Policy) Schedule() []time.Duration {
	delays := make([]time.Duration, 0, p.MaxRetries)
	for i := 1; i <= p.MaxRetries; i++ {
		delays = append(delays, p.Delay(i))
	}
	return delays
}

// Run executa op até ela não pedir retentativa. Retorna o número de tentativas
// feitas e ErrRetriesExhausted quando a última tentativa ainda pediu retry.
func (p Policy) Run(ctx context.Context, op Operation) (int, error) {
	sleep := p.Sleep
	if sleep == nil {
		sleep = ContextSleep
	}

	for attempt := 0; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return attempt, err
		}

		retry, err := op(ctx)
		if !retry {
			return attempt + 1, err
		}

		if attempt >= p.MaxRetries {
			return attempt + 1, ErrRetriesExhausted
		}

		if err := sleep(ctx, p.Delay(attempt+1)); err != nil {
			return attempt + 1, err
		}
	}
}
