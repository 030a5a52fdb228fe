package actuator

import (
	"context"
	"testing"
	"time"

	"dualtherm/internal/logger"
	"dualtherm/internal/mqtt"
)

const testSwitch = "home/switch/heater"

func newTestSwitches(t *testing.T) (*Switches, *mqtt.FakeClient, *time.Time) {
	t.Helper()
	client := mqtt.NewFakeClient()
	s, err := New(client, logger.Get(logger.ErrorLevel), testSwitch)
	if err != nil {
		t.Fatalf("New(): %v", err)
	}
	clock := time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return clock }
	s.started = clock
	return s, client, &clock
}

func TestCommands_PublishToSetTopic(t *testing.T) {
	s, client, _ := newTestSwitches(t)

	if err := s.TurnOn(context.Background(), testSwitch); err != nil {
		t.Fatalf("TurnOn(): %v", err)
	}
	msg, ok := client.LastPublished(testSwitch + "/set")
	if !ok || string(msg.Payload) != "ON" {
		t.Fatalf("published %q, %v; want ON", msg.Payload, ok)
	}
	if !s.IsOn(testSwitch) {
		t.Fatalf("switch not tracked as on after command")
	}

	if err := s.TurnOff(context.Background(), testSwitch); err != nil {
		t.Fatalf("TurnOff(): %v", err)
	}
	msg, _ = client.LastPublished(testSwitch + "/set")
	if string(msg.Payload) != "OFF" {
		t.Fatalf("published %q, want OFF", msg.Payload)
	}
	if s.IsOn(testSwitch) {
		t.Fatalf("switch still tracked as on after off command")
	}
}

func TestStateReports_OverrideTrackedState(t *testing.T) {
	s, client, _ := newTestSwitches(t)

	client.Deliver(testSwitch+"/state", []byte("ON"))
	if !s.IsOn(testSwitch) {
		t.Fatalf("state report not applied")
	}

	// The hardware disagreeing with a command wins.
	if err := s.TurnOff(context.Background(), testSwitch); err != nil {
		t.Fatalf("TurnOff(): %v", err)
	}
	client.Deliver(testSwitch+"/state", []byte("ON"))
	if !s.IsOn(testSwitch) {
		t.Fatalf("state report did not override command")
	}

	client.Deliver(testSwitch+"/state", []byte("garbage"))
	if !s.IsOn(testSwitch) {
		t.Fatalf("unreadable report changed tracked state")
	}
}

func TestHeldFor_MeasuresCurrentState(t *testing.T) {
	s, client, clock := newTestSwitches(t)

	// Never reported: held since tracking began.
	*clock = clock.Add(5 * time.Minute)
	if got := s.HeldFor(testSwitch); got != 5*time.Minute {
		t.Fatalf("HeldFor (unknown) = %v, want 5m", got)
	}

	client.Deliver(testSwitch+"/state", []byte("ON"))
	*clock = clock.Add(3 * time.Minute)
	if got := s.HeldFor(testSwitch); got != 3*time.Minute {
		t.Fatalf("HeldFor = %v, want 3m", got)
	}

	// A matching re-report keeps the original transition time.
	client.Deliver(testSwitch+"/state", []byte("ON"))
	*clock = clock.Add(2 * time.Minute)
	if got := s.HeldFor(testSwitch); got != 5*time.Minute {
		t.Fatalf("HeldFor after duplicate report = %v, want 5m", got)
	}

	client.Deliver(testSwitch+"/state", []byte("OFF"))
	if got := s.HeldFor(testSwitch); got != 0 {
		t.Fatalf("HeldFor after transition = %v, want 0", got)
	}
}

func TestHeldFor_RepeatedCommandKeepsHold(t *testing.T) {
	s, _, clock := newTestSwitches(t)

	if err := s.TurnOn(context.Background(), testSwitch); err != nil {
		t.Fatalf("TurnOn(): %v", err)
	}
	*clock = clock.Add(10 * time.Minute)

	// Re-affirming the standing command is not a transition; the hold time
	// must keep measuring from the original on command.
	if err := s.TurnOn(context.Background(), testSwitch); err != nil {
		t.Fatalf("TurnOn() re-issue: %v", err)
	}
	if got := s.HeldFor(testSwitch); got != 10*time.Minute {
		t.Fatalf("HeldFor after re-issued command = %v, want 10m", got)
	}

	// An actual flip still resets it.
	if err := s.TurnOff(context.Background(), testSwitch); err != nil {
		t.Fatalf("TurnOff(): %v", err)
	}
	if got := s.HeldFor(testSwitch); got != 0 {
		t.Fatalf("HeldFor after transition = %v, want 0", got)
	}
}

func TestCommand_CancelledContext(t *testing.T) {
	s, client, _ := newTestSwitches(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := s.TurnOn(ctx, testSwitch); err == nil {
		t.Fatalf("expected context error")
	}
	if len(client.Published) != 0 {
		t.Fatalf("command published despite cancelled context")
	}
}
