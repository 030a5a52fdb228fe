package service

import (
	"context"

	"dualtherm"
	"dualtherm/internal/climate"
)

type MonitoringService struct {
	core *climate.Controller
}

func NewMonitoringService(core *climate.Controller) *MonitoringService {
	return &MonitoringService{core: core}
}

// GetState returns the live thermostat snapshot. The controller is the
// source of truth; persistence only matters across restarts.
func (s *MonitoringService) GetState(_ context.Context) (dualtherm.ThermostatState, error) {
	return s.core.Snapshot(), nil
}
