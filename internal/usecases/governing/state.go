package governing

// State é o estado do circuit breaker de governança
type State string

const (
	StateClosed   State = "CLOSED"
	StateOpen     State = "OPEN"
	StateHalfOpen State = "HALF_OPEN"
)

// Event é tudo que pode mover o breaker
type Event string

const (
	EventThresholdBreached Event = "threshold_breached"
	EventLoopDetected      Event = "loop_detected"
	EventTrip              Event = "trip"
	EventCooldownElapsed   Event = "cooldown_elapsed"
	EventProbeSucceeded    Event = "probe_succeeded"
	EventProbeFailed       Event = "probe_failed"
	EventReset             Event = "reset"
)

// Transition é a função pura de transição. ok=false quando a aresta não existe
// e o estado deve permanecer o mesmo.
//
//	CLOSED    --breach|loop|trip--> OPEN
//	OPEN      --breach|loop|trip--> OPEN (reinicia o cooldown)
//	OPEN      --cooldown----------> HALF_OPEN
//	HALF_OPEN --probe ok----------> CLOSED
//	HALF_OPEN --probe fail|breach|loop|trip--> OPEN
//	*         --reset-------------> CLOSED
func Transition(from State, event Event) (State, bool) {
	if event == EventReset {
		return StateClosed, true
	}

	switch from {
	case StateClosed:
		if opens(event) {
			return StateOpen, true
		}
	case StateOpen:
		if opens(event) {
			return StateOpen, true
		}
		if event == EventCooldownElapsed {
			return StateHalfOpen, true
		}
	case StateHalfOpen:
		if opens(event) || event == EventProbeFailed {
			return StateOpen, true
		}
		if event == EventProbeSucceeded {
			return StateClosed, true
		}
	}

	return from, false
}

func opens(event Event) bool {
	return event == EventThresholdBreached || event == EventLoopDetected || event == EventTrip
}

// gaugeValue é o valor exportado no gauge do Prometheus
func (s State) gaugeValue() float64 {
	switch s {
	case StateHalfOpen:
		return 1
	case StateOpen:
		return 2
	}
	return 0
}

func (s State) Valid() bool {
	return s == StateClosed || s == StateOpen || s == StateHalfOpen
}
