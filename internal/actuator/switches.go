// Package actuator drives the heating and cooling switches over MQTT and
// tracks their confirmed state for the control loop.
package actuator

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"dualtherm/internal/logger"
	"dualtherm/internal/mqtt"
)

// Command payloads understood by the switches.
const (
	payloadOn  = "ON"
	payloadOff = "OFF"
)

// switchState is the last confirmed state of one switch.
type switchState struct {
	on        bool
	known     bool
	changedAt time.Time
}

// Switches maps actuator ids to MQTT switch topics: commands go to
// "<id>/set", confirmed state arrives on "<id>/state". Until a state
// report arrives a switch is treated as off.
type Switches struct {
	client mqtt.Client
	log    *logger.Logger

	mu      sync.Mutex
	states  map[string]switchState
	started time.Time

	now func() time.Time // stubbed in tests
}

// New subscribes to the state topics of the given actuator ids.
func New(client mqtt.Client, log *logger.Logger, ids ...string) (*Switches, error) {
	s := &Switches{
		client: client,
		log:    log,
		states: map[string]switchState{},
		now:    time.Now,
	}
	s.started = s.now()

	for _, id := range ids {
		id := id
		if err := client.Subscribe(stateTopic(id), func(_ string, payload []byte) {
			s.observe(id, payload)
		}); err != nil {
			return nil, fmt.Errorf("subscribe %s: %w", stateTopic(id), err)
		}
	}
	return s, nil
}

// TurnOn commands the switch on.
func (s *Switches) TurnOn(ctx context.Context, id string) error {
	return s.command(ctx, id, payloadOn)
}

// TurnOff commands the switch off.
func (s *Switches) TurnOff(ctx context.Context, id string) error {
	return s.command(ctx, id, payloadOff)
}

func (s *Switches) command(ctx context.Context, id, payload string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.client.Publish(setTopic(id), []byte(payload), false); err != nil {
		return fmt.Errorf("command %s %s: %w", id, payload, err)
	}
	// Commands are taken at face value. A state report for the same switch
	// overrides this if the hardware disagrees. Re-issuing the standing
	// command (keep-alive) is not a transition and keeps the hold time.
	on := payload == payloadOn
	s.mu.Lock()
	prev := s.states[id]
	changedAt := s.now()
	if prev.known && prev.on == on {
		changedAt = prev.changedAt
	}
	s.states[id] = switchState{on: on, known: true, changedAt: changedAt}
	s.mu.Unlock()
	return nil
}

// observe applies a confirmed state report. Reports that match the tracked
// on/off value keep the original transition time so the cycle gate still
// measures the real hold.
func (s *Switches) observe(id string, payload []byte) {
	on, ok := parseSwitchPayload(payload)
	if !ok {
		s.log.Warnw("ignoring unreadable switch state", "actuator", id, "payload", string(payload))
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	prev := s.states[id]
	if prev.known && prev.on == on {
		return
	}
	s.states[id] = switchState{on: on, known: true, changedAt: s.now()}
	s.log.Infow("switch state changed", "actuator", id, "on", on)
}

// IsOn reports the tracked state of the switch.
func (s *Switches) IsOn(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.states[id].on
}

// HeldFor is the time the switch has been in its current state. For a
// switch that has never reported, this is the time since tracking began,
// so a restart does not hold the cycle gate closed forever.
func (s *Switches) HeldFor(id string) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.states[id]
	if !ok || !st.known {
		return s.now().Sub(s.started)
	}
	return s.now().Sub(st.changedAt)
}

func parseSwitchPayload(payload []byte) (on, ok bool) {
	switch strings.ToUpper(strings.TrimSpace(string(payload))) {
	case payloadOn, "TRUE", "1":
		return true, true
	case payloadOff, "FALSE", "0":
		return false, true
	}
	return false, false
}

func setTopic(id string) string   { return id + "/set" }
func stateTopic(id string) string { return id + "/state" }
