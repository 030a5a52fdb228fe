package service

import (
	"context"
	"time"

	"dualtherm"
	"dualtherm/internal/climate"
	"dualtherm/internal/logger"
	"dualtherm/internal/repository"
)

type Authorization interface {
	SignUp(username, password string) (int, error)
	GenerateToken(username, password string) (string, error)
	ParseToken(accessToken string) (int, error)
}

// Thermostat exposes control operations: mode, setpoints, presets and the
// inbound sensor feed.
type Thermostat interface {
	SetMode(ctx context.Context, mode string) error
	SetTemperature(ctx context.Context, p TemperatureParams) error
	SetPreset(ctx context.Context, preset string) error
	HandleSensorReading(ctx context.Context, entityID, value string)
	Restore(ctx context.Context) error
}

// Monitoring exposes the read-only thermostat snapshot.
type Monitoring interface {
	GetState(ctx context.Context) (dualtherm.ThermostatState, error)
}

// EventLog exposes append-only logs with filtering access.
type EventLog interface {
	List(ctx context.Context, f LogFilter) ([]dualtherm.ThermostatEvent, error)
}

// KeepAlive runs the background loop that periodically re-affirms actuator
// commands. Stop via context cancellation in main() for graceful shutdown.
type KeepAlive interface {
	Run(ctx context.Context, tick time.Duration)
}

// TemperatureParams carries a setpoint change. Single-target installs use
// TargetTempC; range installs use the low/high pair (either side may be
// omitted to keep its current value).
type TemperatureParams struct {
	TargetTempC     *float64
	TargetTempLowC  *float64
	TargetTempHighC *float64
}

// LogFilter supports history filtering by time range and type.
type LogFilter struct {
	From time.Time // inclusive; zero means no lower bound
	To   time.Time // inclusive; zero means no upper bound
	Type string    // "", "MODE_CHANGE", "TARGET_CHANGE", "PRESET_CHANGE", "SENSOR_FAULT", "STARTUP"
}

// Service aggregates all sub-services.
type Service struct {
	Thermostat
	Monitoring
	EventLog
	KeepAlive
	Authorization
}

// NewService wires the controller and repository layer into concrete services.
func NewService(core *climate.Controller, repos *repository.Repository, log *logger.Logger) *Service {
	return &Service{
		Thermostat:    NewThermostatService(core, repos.SettingsRepo, repos.EventRepo, log),
		Monitoring:    NewMonitoringService(core),
		EventLog:      NewEventLogService(repos.EventRepo),
		KeepAlive:     NewKeepAliveService(core, repos.EventRepo, log),
		Authorization: NewAuthService(repos.Auth),
	}
}
