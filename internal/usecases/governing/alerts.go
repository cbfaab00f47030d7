package governing

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/bennettsui/5ml-agenticai-v1-sub007/pkg/utils"
)

//go:generate mockgen -source=alerts.go -destination=mocks/alerts.go -package=mocks

type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// AlertEvent é um registro imutável do log de alertas
type AlertEvent struct {
	ID        string    `json:"id"`
	Severity  Severity  `json:"severity"`
	Message   string    `json:"message"`
	State     State     `json:"state"`
	Timestamp time.Time `json:"timestamp"`
}

// AlertSink recebe cada alerta depois que o lock do governador é liberado.
// Falhas do sink são só logadas.
type AlertSink interface {
	Publish(ctx context.Context, alert AlertEvent) error
}

// LogSink escreve os alertas no logrus
type LogSink struct{}

func (LogSink) Publish(_ context.Context, alert AlertEvent) error {
	entry := logrus.WithFields(logrus.Fields{
		"alert_id": alert.ID,
		"severity": alert.Severity,
		"state":    alert.State,
	})

	switch alert.Severity {
	case SeverityCritical:
		entry.Error("governance: " + alert.Message)
	case SeverityWarning:
		entry.Warn("governance: " + alert.Message)
	default:
		entry.Info("governance: " + alert.Message)
	}
	return nil
}

// alertLog é um buffer circular: só cresce até size e depois descarta os mais antigos
type alertLog struct {
	events []AlertEvent
	size   int
}

func newAlertLog(size int) *alertLog {
	if size <= 0 {
		size = defaultAlertLogSize
	}
	return &alertLog{size: size}
}

func (l *alertLog) append(alert AlertEvent) {
	l.events = append(l.events, alert)
	if over := len(l.events) - l.size; over > 0 {
		l.events = append([]AlertEvent(nil), l.events[over:]...)
	}
}

// recent devolve os últimos limit alertas, do mais novo para o mais antigo
func (l *alertLog) recent(limit int) []AlertEvent {
	if limit <= 0 || limit > len(l.events) {
		limit = len(l.events)
	}
	result := make([]AlertEvent, 0, limit)
	for i := len(l.events) - 1; i >= 0 && len(result) < limit; i-- {
		result = append(result, l.events[i])
	}
	return result
}

func newAlert(severity Severity, state State, message string, now time.Time) AlertEvent {
	id, err := utils.GenerateID()
	if err != nil {
		id = now.Format("20060102150405.000000000")
	}
	return AlertEvent{
		ID:        id,
		Severity:  severity,
		Message:   message,
		State:     state,
		Timestamp: now.UTC(),
	}
}
