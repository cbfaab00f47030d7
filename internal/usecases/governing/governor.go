package governing

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/bennettsui/5ml-agenticai-v1-sub007/internal/domain"
	"github.com/bennettsui/5ml-agenticai-v1-sub007/pkg/metrics"
)

// Clock permite congelar o tempo nos testes
type Clock func() time.Time

// Call descreve uma chamada de agente pedindo admissão
type Call struct {
	Agent         string
	Input         string
	EstimatedCost decimal.Decimal
}

// Usage é o consumo real informado depois da chamada
type Usage struct {
	Tokens int64           `json:"tokens"`
	Cost   decimal.Decimal `json:"cost"`
}

// Permit é devolvido pelo Admit e precisa voltar no Record
type Permit struct {
	Agent      string
	Probe      bool
	AdmittedAt time.Time

	probeSeq uint64
}

// Counters é o contador global do dia corrente
type Counters struct {
	DailyTokens     int64           `json:"daily_tokens"`
	DailyCost       decimal.Decimal `json:"daily_cost"`
	TokensPerMinute int64           `json:"tokens_per_minute"`
	CallsPerMinute  int             `json:"calls_per_minute"`
	LastResetAt     time.Time       `json:"last_reset_at"`
}

type Status struct {
	State             State        `json:"state"`
	Reason            string       `json:"reason,omitempty"`
	OpenedAt          *time.Time   `json:"opened_at,omitempty"`
	RetryAfterSeconds int64        `json:"retry_after_seconds,omitempty"`
	ProbeInFlight     bool         `json:"probe_in_flight"`
	Counters          Counters     `json:"counters"`
	Config            Config       `json:"config"`
	RecentAlerts      []AlertEvent `json:"recent_alerts"`
}

const statusAlerts = 10

type Option func(*Governor)

func WithClock(clock Clock) Option {
	return func(g *Governor) { g.now = clock }
}

func WithSinks(sinks ...AlertSink) Option {
	return func(g *Governor) { g.sinks = append(g.sinks, sinks...) }
}

func WithStore(store SnapshotStore) Option {
	return func(g *Governor) { g.store = store }
}

// WithLocation define em qual fuso a meia-noite zera os contadores
func WithLocation(loc *time.Location) Option {
	return func(g *Governor) {
		if loc != nil {
			g.loc = loc
		}
	}
}

func WithAlertLogSize(size int) Option {
	return func(g *Governor) { g.alerts = newAlertLog(size) }
}

// Governor é o circuit breaker global de uso de IA. Todo o estado fica atrás
// de um único mutex; alertas só saem para os sinks depois do unlock.
type Governor struct {
	mu sync.Mutex

	cfg      Config
	state    State
	reason   string
	openedAt time.Time
	counters Counters
	warned   bool

	probeInFlight bool
	probeIssuedAt time.Time
	probeSeq      uint64

	window  minuteWindow
	hourly  *hourlyUsage
	loops   *loopDetector
	alerts  *alertLog
	pending []AlertEvent

	now   Clock
	loc   *time.Location
	sinks []AlertSink
	store SnapshotStore
}

func New(cfg Config, opts ...Option) (*Governor, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	g := &Governor{
		cfg:    cfg,
		state:  StateClosed,
		hourly: newHourlyUsage(),
		loops:  newLoopDetector(),
		alerts: newAlertLog(defaultAlertLogSize),
		now:    time.Now,
		loc:    time.UTC,
	}

	for _, opt := range opts {
		opt(g)
	}

	g.counters = Counters{DailyCost: decimal.Zero, LastResetAt: g.startOfDay(g.now())}
	g.updateGauges()

	return g, nil
}

// Admit decide se a chamada pode seguir. Em HALF_OPEN só uma chamada de prova
// é liberada por vez; as demais recebem CircuitOpenError.
func (g *Governor) Admit(ctx context.Context, call Call) (*Permit, error) {
	g.mu.Lock()
	defer g.unlock(ctx)

	now := g.now()
	g.advance(now)

	permit, err := g.admit(now, call)
	switch {
	case err != nil:
		metrics.GovernorAdmissions.WithLabelValues("rejected").Inc()
	case permit.Probe:
		metrics.GovernorAdmissions.WithLabelValues("probe").Inc()
	default:
		metrics.GovernorAdmissions.WithLabelValues("allowed").Inc()
	}

	return permit, err
}

func (g *Governor) admit(now time.Time, call Call) (*Permit, error) {
	if g.state == StateOpen {
		return nil, g.rejection(g.cfg.Cooldown - now.Sub(g.openedAt))
	}

	// a prova passa mesmo com o orçamento estourado; o Record decide se fecha
	if g.state == StateHalfOpen {
		// a prova expira depois de um cooldown sem Record
		if g.probeInFlight {
			if wait := g.cfg.Cooldown - now.Sub(g.probeIssuedAt); wait > 0 {
				return nil, &domain.CircuitOpenError{
					State:      string(StateHalfOpen),
					Reason:     "probe call in flight",
					RetryAfter: wait,
				}
			}
		}

		g.probeInFlight = true
		g.probeIssuedAt = now
		g.probeSeq++

		return &Permit{Agent: call.Agent, Probe: true, AdmittedAt: now, probeSeq: g.probeSeq}, nil
	}

	if g.cfg.LoopDetectionThreshold > 0 {
		count := g.loops.observe(fingerprintOf(call.Agent, call.Input), now, g.cfg.LoopWindow)
		if count > g.cfg.LoopDetectionThreshold {
			g.fire(EventLoopDetected, fmt.Sprintf("agent %q repeated the same input %d times within %s", call.Agent, count, g.cfg.LoopWindow), now)
			return nil, g.rejection(g.cfg.Cooldown)
		}
	}

	if reason := g.cfg.breach(g.counters); reason != "" {
		g.fire(EventThresholdBreached, reason, now)
		return nil, g.rejection(g.cfg.Cooldown)
	}

	g.warnIfNearBudget(call.EstimatedCost, now)

	return &Permit{Agent: call.Agent, AdmittedAt: now}, nil
}

// Record soma o consumo real e reavalia o breaker. Nunca falha: o consumo
// sempre é contabilizado, inclusive quando a chamada deu erro.
func (g *Governor) Record(ctx context.Context, permit *Permit, usage Usage, callErr error) {
	g.mu.Lock()
	defer g.unlock(ctx)

	now := g.now()
	g.advance(now)

	tokens := usage.Tokens
	if tokens < 0 {
		tokens = 0
	}
	cost := usage.Cost
	if cost.IsNegative() {
		cost = decimal.Zero
	}

	g.counters.DailyTokens += tokens
	g.counters.DailyCost = g.counters.DailyCost.Add(cost)
	g.window.add(now, tokens)
	g.hourly.add(now, tokens, cost)

	reason := g.cfg.breach(g.counters)
	probe := permit != nil && permit.Probe && permit.probeSeq == g.probeSeq && g.state == StateHalfOpen

	switch {
	case probe:
		g.probeInFlight = false
		switch {
		case reason != "":
			g.fire(EventThresholdBreached, reason, now)
		case callErr != nil:
			g.fire(EventProbeFailed, "probe call failed: "+callErr.Error(), now)
		default:
			g.fire(EventProbeSucceeded, "", now)
		}
	case reason != "" && g.state != StateOpen:
		g.fire(EventThresholdBreached, reason, now)
	default:
		g.warnIfNearBudget(decimal.Zero, now)
	}
}

// Trip abre o circuito manualmente
func (g *Governor) Trip(ctx context.Context, reason string) {
	g.mu.Lock()
	defer g.unlock(ctx)

	if reason == "" {
		reason = "manual trip"
	}
	g.fire(EventTrip, reason, g.now())
}

// Reset força CLOSED e zera os contadores do dia
func (g *Governor) Reset(ctx context.Context) {
	g.mu.Lock()
	defer g.unlock(ctx)

	now := g.now()
	previous := g.state

	g.state, _ = Transition(g.state, EventReset)
	g.reason = ""
	g.openedAt = time.Time{}
	g.probeInFlight = false
	g.probeSeq++
	g.counters = Counters{DailyCost: decimal.Zero, LastResetAt: now}
	g.warned = false
	g.window = minuteWindow{}
	g.loops.reset()

	g.alert(SeverityInfo, fmt.Sprintf("circuit reset by operator (was %s)", previous), now)
}

func (g *Governor) Config() Config {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.cfg
}

// SetConfig troca os limites. Um limite reduzido abaixo do consumo atual só
// abre o circuito na próxima admissão.
func (g *Governor) SetConfig(ctx context.Context, cfg Config) error {
	g.mu.Lock()
	defer g.unlock(ctx)

	if cfg.Cooldown <= 0 {
		cfg.Cooldown = g.cfg.Cooldown
	}
	if cfg.LoopWindow <= 0 {
		cfg.LoopWindow = g.cfg.LoopWindow
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	g.cfg = cfg
	g.warned = false
	g.alert(SeverityInfo, fmt.Sprintf(
		"governance config updated: token limit %d, cost limit %s, loop threshold %d, warning at %.0f%%",
		cfg.DailyTokenLimit, cfg.DailyCostLimit.String(), cfg.LoopDetectionThreshold, cfg.BudgetWarningPct,
	), g.now())

	return nil
}

func (g *Governor) Status() Status {
	g.mu.Lock()
	defer g.unlock(context.Background())

	now := g.now()
	g.advance(now)

	status := Status{
		State:         g.state,
		Reason:        g.reason,
		ProbeInFlight: g.probeInFlight,
		Counters:      g.currentCounters(now),
		Config:        g.cfg,
		RecentAlerts:  g.alerts.recent(statusAlerts),
	}

	if g.state == StateOpen {
		openedAt := g.openedAt
		status.OpenedAt = &openedAt
		if remaining := g.cfg.Cooldown - now.Sub(g.openedAt); remaining > 0 {
			status.RetryAfterSeconds = int64((remaining + time.Second - 1) / time.Second)
		}
	}

	return status
}

func (g *Governor) Counters() Counters {
	g.mu.Lock()
	defer g.unlock(context.Background())

	now := g.now()
	g.advance(now)
	return g.currentCounters(now)
}

// Usage devolve as últimas horas em ordem cronológica, com horas sem uso zeradas
func (g *Governor) Usage(hours int) []UsageBucket {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.hourly.series(g.now(), hours)
}

// Alerts devolve os alertas mais recentes primeiro
func (g *Governor) Alerts(limit int) []AlertEvent {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.alerts.recent(limit)
}

func (g *Governor) currentCounters(now time.Time) Counters {
	counters := g.counters
	counters.TokensPerMinute, counters.CallsPerMinute = g.window.rate(now)
	return counters
}

// fire aplica o evento e registra o alerta correspondente. Deve ser chamado com o lock.
func (g *Governor) fire(event Event, reason string, now time.Time) {
	previous := g.state
	next, ok := Transition(previous, event)
	if !ok {
		return
	}
	g.state = next

	switch next {
	case StateOpen:
		g.openedAt = now
		g.reason = reason
		g.probeInFlight = false
		g.alert(SeverityCritical, fmt.Sprintf("circuit opened (%s): %s", event, reason), now)
	case StateHalfOpen:
		g.probeInFlight = false
		g.alert(SeverityInfo, "cooldown elapsed, circuit half-open: next call is a probe", now)
	case StateClosed:
		g.reason = ""
		g.openedAt = time.Time{}
		g.probeInFlight = false
		g.alert(SeverityInfo, fmt.Sprintf("circuit closed after %s", event), now)
	}
}

func (g *Governor) alert(severity Severity, message string, now time.Time) {
	alert := newAlert(severity, g.state, message, now)
	g.alerts.append(alert)
	g.pending = append(g.pending, alert)
}

// warnIfNearBudget dispara o alerta de orçamento no máximo uma vez por dia
func (g *Governor) warnIfNearBudget(estimate decimal.Decimal, now time.Time) {
	if g.warned {
		return
	}
	threshold, ok := g.cfg.warningThreshold()
	if !ok {
		return
	}

	projected := g.counters.DailyCost.Add(estimate)
	if !projected.GreaterThan(threshold) {
		return
	}

	g.warned = true
	g.alert(SeverityWarning, fmt.Sprintf(
		"daily cost %s is above %.0f%% of the %s budget",
		projected.StringFixed(4), g.cfg.BudgetWarningPct, g.cfg.DailyCostLimit.StringFixed(2),
	), now)
}

// advance aplica as transições que dependem só do relógio
func (g *Governor) advance(now time.Time) {
	g.rollover(now)
	if g.state == StateOpen && now.Sub(g.openedAt) >= g.cfg.Cooldown {
		g.fire(EventCooldownElapsed, "", now)
	}
}

// rollover zera os contadores na virada do dia. O estado do breaker não muda.
func (g *Governor) rollover(now time.Time) {
	dayStart := g.startOfDay(now)
	if !dayStart.After(g.counters.LastResetAt) {
		return
	}

	logrus.WithFields(logrus.Fields{
		"tokens": g.counters.DailyTokens,
		"cost":   g.counters.DailyCost.StringFixed(4),
		"state":  g.state,
	}).Info("governance: daily counters rolled over")

	g.counters = Counters{DailyCost: decimal.Zero, LastResetAt: dayStart}
	g.warned = false
}

func (g *Governor) startOfDay(t time.Time) time.Time {
	local := t.In(g.loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, g.loc)
}

func (g *Governor) rejection(retryAfter time.Duration) error {
	return &domain.CircuitOpenError{
		State:      string(g.state),
		Reason:     g.reason,
		RetryAfter: retryAfter,
	}
}

// unlock libera o mutex e só então entrega os alertas pendentes
func (g *Governor) unlock(ctx context.Context) {
	pending := g.pending
	g.pending = nil
	g.updateGauges()
	g.mu.Unlock()

	for _, alert := range pending {
		for _, sink := range g.sinks {
			if err := sink.Publish(ctx, alert); err != nil {
				logrus.WithField("alert_id", alert.ID).WithError(err).Warn("governance: failed to publish alert")
			}
		}
	}
}

func (g *Governor) updateGauges() {
	metrics.GovernorState.Set(g.state.gaugeValue())
	metrics.GovernorDailyTokens.Set(float64(g.counters.DailyTokens))
	metrics.GovernorDailyCost.Set(g.counters.DailyCost.InexactFloat64())
}
