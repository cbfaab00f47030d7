package orchestrating

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/bennettsui/5ml-agenticai-v1-sub007/internal/usecases/governing"
)

var ErrInvalidCall = errors.New("invalid agent call")

// AgentOutput é o que a função do agente devolve: o resultado e o consumo real
type AgentOutput struct {
	Output any
	Usage  governing.Usage
}

type AgentFunc func(ctx context.Context) (AgentOutput, error)

type AgentCall struct {
	Agent         string
	Input         string
	EstimatedCost decimal.Decimal
	Run           AgentFunc
}

type AgentResult struct {
	CallID   string          `json:"call_id"`
	Agent    string          `json:"agent"`
	Output   any             `json:"output"`
	Usage    governing.Usage `json:"usage"`
	Probe    bool            `json:"probe"`
	Duration time.Duration   `json:"duration"`
}

// Gateway envolve toda chamada de agente com admissão e registro de consumo
type Gateway struct {
	governor Governor
}

// NewGateway é o ponto de entrada dos agentes que rodam no mesmo processo.
// Não há rota HTTP para invocar agentes: quem os hospeda recebe o Gateway já
// ligado ao Governor compartilhado e toda chamada passa por Invoke.
func NewGateway(governor Governor) *Gateway {
	return &Gateway{governor: governor}
}

// Invoke admite, executa e registra. O registro acontece mesmo quando o agente
// falha, já que chamadas com erro também consomem tokens.
func (g *Gateway) Invoke(ctx context.Context, call AgentCall) (*AgentResult, error) {
	if call.Agent == "" || call.Run == nil {
		return nil, fmt.Errorf("%w: agent name and run function are required", ErrInvalidCall)
	}

	callID := uuid.New().String()
	entry := logrus.WithFields(logrus.Fields{
		"call_id": callID,
		"agent":   call.Agent,
	})

	permit, err := g.governor.Admit(ctx, governing.Call{
		Agent:         call.Agent,
		Input:         call.Input,
		EstimatedCost: call.EstimatedCost,
	})
	if err != nil {
		entry.WithError(err).Warn("orchestration: call rejected by governor")
		return nil, err
	}

	start := time.Now()
	out, runErr := run(ctx, call.Run)
	elapsed := time.Since(start)

	g.governor.Record(ctx, permit, out.Usage, runErr)

	entry = entry.WithFields(logrus.Fields{
		"probe":    permit.Probe,
		"tokens":   out.Usage.Tokens,
		"cost":     out.Usage.Cost.StringFixed(4),
		"duration": elapsed.String(),
	})

	if runErr != nil {
		entry.WithError(runErr).Error("orchestration: agent call failed")
		return nil, runErr
	}

	entry.Info("orchestration: agent call completed")

	return &AgentResult{
		CallID:   callID,
		Agent:    call.Agent,
		Output:   out.Output,
		Usage:    out.Usage,
		Probe:    permit.Probe,
		Duration: elapsed,
	}, nil
}

// run converte panic do agente em erro para que o consumo ainda seja registrado
func run(ctx context.Context, fn AgentFunc) (out AgentOutput, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("agent panicked: %v", r)
		}
	}()
	return fn(ctx)
}
