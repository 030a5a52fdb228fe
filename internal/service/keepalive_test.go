package service

import (
	"context"
	"testing"

	"dualtherm/internal/climate"
	"dualtherm/internal/logger"
)

func TestKeepAlive_StartupPassReaffirmsCommand(t *testing.T) {
	sink := newFakeSink()
	core, err := climate.New(testConfig(), sink, sink, logger.Get(logger.ErrorLevel))
	if err != nil {
		t.Fatalf("climate.New(): %v", err)
	}
	if err := core.UpdateTemperature(context.Background(), "19.0"); err != nil {
		t.Fatalf("UpdateTemperature: %v", err)
	}
	sink.commands = nil

	erepo := &localEventRepo{}
	svc := NewKeepAliveService(core, erepo, logger.Get(logger.ErrorLevel))

	// Non-positive interval: single startup pass, then return.
	svc.Run(context.Background(), 0)

	if len(erepo.events) != 1 || erepo.events[0].Type != EventStartup {
		t.Fatalf("events = %+v, want one STARTUP", erepo.events)
	}
	if len(sink.commands) != 1 || sink.commands[0] != "on:"+testHeater {
		t.Fatalf("commands = %v, want heater re-affirmed on", sink.commands)
	}
}
