package governing

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

//go:generate mockgen -source=snapshot.go -destination=mocks/snapshot.go -package=mocks

// Snapshot é o estado serializado do governador
type Snapshot struct {
	State    State         `json:"state"`
	Reason   string        `json:"reason,omitempty"`
	OpenedAt time.Time     `json:"opened_at"`
	Counters Counters      `json:"counters"`
	Config   Config        `json:"config"`
	Buckets  []UsageBucket `json:"buckets"`
	Alerts   []AlertEvent  `json:"alerts"`
	SavedAt  time.Time     `json:"saved_at"`
}

// SnapshotStore persiste o snapshot fora do processo. Load devolve nil, nil
// quando não há nada salvo.
type SnapshotStore interface {
	Save(ctx context.Context, snapshot Snapshot) error
	Load(ctx context.Context) (*Snapshot, error)
}

func (g *Governor) Snapshot() Snapshot {
	g.mu.Lock()
	defer g.mu.Unlock()

	// alerts.recent devolve do mais novo para o mais antigo
	recent := g.alerts.recent(0)
	alerts := make([]AlertEvent, len(recent))
	for i, alert := range recent {
		alerts[len(recent)-1-i] = alert
	}

	return Snapshot{
		State:    g.state,
		Reason:   g.reason,
		OpenedAt: g.openedAt,
		Counters: g.counters,
		Config:   g.cfg,
		Buckets:  g.hourly.snapshot(),
		Alerts:   alerts,
		SavedAt:  g.now(),
	}
}

// Persist grava o snapshot atual no store configurado
func (g *Governor) Persist(ctx context.Context) error {
	if g.store == nil {
		return nil
	}
	return g.store.Save(ctx, g.Snapshot())
}

// Restore carrega o último snapshot. Uma prova em andamento não sobrevive ao
// restart, e contadores de outro dia são zerados pelo rollover.
func (g *Governor) Restore(ctx context.Context) error {
	if g.store == nil {
		return nil
	}

	snapshot, err := g.store.Load(ctx)
	if err != nil {
		return err
	}
	if snapshot == nil {
		return nil
	}

	g.mu.Lock()
	defer g.unlock(ctx)

	if snapshot.State.Valid() {
		g.state = snapshot.State
		g.reason = snapshot.Reason
		g.openedAt = snapshot.OpenedAt
	}

	cfg := snapshot.Config
	cfg.Cooldown = g.cfg.Cooldown
	cfg.LoopWindow = g.cfg.LoopWindow
	if err := cfg.Validate(); err == nil {
		g.cfg = cfg
	}

	g.counters = snapshot.Counters
	g.counters.TokensPerMinute = 0
	g.counters.CallsPerMinute = 0
	g.probeInFlight = false
	g.hourly.restore(snapshot.Buckets)
	for _, alert := range snapshot.Alerts {
		g.alerts.append(alert)
	}
	g.advance(g.now())

	logrus.WithFields(logrus.Fields{
		"state":    g.state,
		"tokens":   g.counters.DailyTokens,
		"cost":     g.counters.DailyCost.StringFixed(4),
		"saved_at": snapshot.SavedAt,
	}).Info("governance: snapshot restored")

	return nil
}

// RunPersistence salva o snapshot a cada intervalo até o contexto acabar,
// com um último save na saída.
func (g *Governor) RunPersistence(ctx context.Context, interval time.Duration) {
	if g.store == nil || interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			saveCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			if err := g.Persist(saveCtx); err != nil {
				logrus.WithError(err).Error("governance: final snapshot save failed")
			}
			cancel()
			return
		case <-ticker.C:
			if err := g.Persist(ctx); err != nil {
				logrus.WithError(err).Warn("governance: snapshot save failed")
			}
		}
	}
}
