package governing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTransition(t *testing.T) {
	tests := []struct {
		from   State
		event  Event
		want   State
		wantOK bool
	}{
		{StateClosed, EventThresholdBreached, StateOpen, true},
		{StateClosed, EventLoopDetected, StateOpen, true},
		{StateClosed, EventTrip, StateOpen, true},
		{StateClosed, EventCooldownElapsed, StateClosed, false},
		{StateClosed, EventProbeSucceeded, StateClosed, false},
		{StateClosed, EventReset, StateClosed, true},

		{StateOpen, EventCooldownElapsed, StateHalfOpen, true},
		{StateOpen, EventTrip, StateOpen, true},
		{StateOpen, EventProbeSucceeded, StateOpen, false},
		{StateOpen, EventProbeFailed, StateOpen, false},
		{StateOpen, EventReset, StateClosed, true},

		{StateHalfOpen, EventProbeSucceeded, StateClosed, true},
		{StateHalfOpen, EventProbeFailed, StateOpen, true},
		{StateHalfOpen, EventThresholdBreached, StateOpen, true},
		{StateHalfOpen, EventCooldownElapsed, StateHalfOpen, false},
		{StateHalfOpen, EventReset, StateClosed, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"/"+string(tt.event), func(t *testing.T) {
			got, ok := Transition(tt.from, tt.event)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantOK, ok)
		})
	}
}

func TestClosedOnlyReachableFromHalfOpenOrReset(t *testing.T) {
	events := []Event{EventThresholdBreached, EventLoopDetected, EventTrip, EventCooldownElapsed, EventProbeSucceeded, EventProbeFailed}
	for _, event := range events {
		got, _ := Transition(StateOpen, event)
		assert.NotEqual(t, StateClosed, got, "OPEN --%s--> CLOSED não deve existir", event)
	}
}
