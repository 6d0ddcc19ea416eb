package process

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestState_CanTransition(t *testing.T) {
	testCases := []struct {
		from   State
		to     State
		expect bool
	}{
		{from: StateReady, to: StateRunning, expect: true},
		{from: StateReady, to: StateBlocked, expect: false},
		{from: StateRunning, to: StateTerminated, expect: true},
		{from: StateRunning, to: StateBlocked, expect: true},
		{from: StateRunning, to: StateReady, expect: true},
		{from: StateBlocked, to: StateReady, expect: true},
		{from: StateBlocked, to: StateRunning, expect: false},
		{from: StateTerminated, to: StateReady, expect: false},
		{from: State(42), to: StateReady, expect: false},
	}
	for _, tc := range testCases {
		t.Run(tc.from.String()+"->"+tc.to.String(), func(t *testing.T) {
			assert.Equal(t, tc.expect, tc.from.CanTransition(tc.to))
		})
	}
}

func TestState_Text(t *testing.T) {
	data, err := json.Marshal(map[string]State{"state": StateBlocked})
	assert.NoError(t, err)
	assert.JSONEq(t, `{"state":"Blocked"}`, string(data))

	var decoded map[string]State
	assert.NoError(t, json.Unmarshal([]byte(`{"state":"running"}`), &decoded))
	assert.Equal(t, StateRunning, decoded["state"])

	_, err = ParseState("zombie")
	assert.Error(t, err)
	assert.Equal(t, "State(9)", State(9).String())
}

func TestSpec_Validate(t *testing.T) {
	testCases := []struct {
		name      string
		spec      Spec
		expectErr bool
	}{
		{name: "no io", spec: NewSpec(10, 100)},
		{name: "io window", spec: NewSpec(10, 50).WithIO(3, 6)},
		{name: "zero burst", spec: NewSpec(0, 100), expectErr: true},
		{name: "zero memory", spec: NewSpec(10, 0), expectErr: true},
		{name: "half io", spec: NewSpec(10, 10).WithIO(3, NoIO), expectErr: true},
		{name: "io at zero", spec: NewSpec(10, 10).WithIO(0, 4), expectErr: true},
		{name: "empty window", spec: NewSpec(10, 10).WithIO(4, 4), expectErr: true},
		{name: "window reaches burst", spec: NewSpec(10, 10).WithIO(4, 10), expectErr: true},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.spec.Validate()
			if tc.expectErr {
				assert.True(t, errors.Is(err, ErrInvalidArgument))
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestProcess_Lifecycle(t *testing.T) {
	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	p := New(1, NewSpec(2, 64).WithIO(1, 2), created)
	assert.Equal(t, -1, p.MemoryAddress)
	assert.Equal(t, StateReady, p.State)
	assert.Equal(t, created, p.CreatedAt)

	p.SetState(StateRunning)
	p.Grant()
	assert.True(t, p.ShouldBlock())
	assert.False(t, p.IsComplete())
	p.SetState(StateBlocked)

	clone := p.Clone()
	clone.Runtime = 99
	assert.Equal(t, 1, p.Runtime)

	assert.Panics(t, func() { p.SetState(StateRunning) })
	assert.Equal(t, "PID: 1, State: Blocked, Memory Size: 64 bytes, Memory Address: -1", p.Summary().String())
}

func TestSpec_HasIO(t *testing.T) {
	assert.False(t, NewSpec(5, 10).HasIO())
	assert.True(t, NewSpec(5, 10).WithIO(1, 3).HasIO())
}

func TestLocation_String(t *testing.T) {
	testCases := []struct {
		location Location
		expect   string
	}{
		{location: LocationNone, expect: "none"},
		{location: LocationReady, expect: "ready"},
		{location: LocationRunning, expect: "running"},
		{location: LocationBlocked, expect: "blocked"},
	}
	for _, tc := range testCases {
		t.Run(tc.expect, func(t *testing.T) {
			assert.Equal(t, tc.expect, tc.location.String())
		})
	}
}
