package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"dualtherm"
	"dualtherm/internal/climate"
	"dualtherm/internal/logger"
	"dualtherm/internal/repository"
)

// Event types written to the log.
const (
	EventModeChange   = "MODE_CHANGE"
	EventTargetChange = "TARGET_CHANGE"
	EventPresetChange = "PRESET_CHANGE"
	EventSensorFault  = "SENSOR_FAULT"
	EventStartup      = "STARTUP"
)

var (
	errMissingTarget = errors.New("no setpoint given")
	errUnknownPreset = errors.New("unknown preset: must be none or away")
)

type ThermostatService struct {
	core         *climate.Controller
	settingsRepo repository.SettingsRepo
	eventRepo    repository.EventRepo
	log          *logger.Logger
}

func NewThermostatService(core *climate.Controller, settingsRepo repository.SettingsRepo, eventRepo repository.EventRepo, log *logger.Logger) *ThermostatService {
	return &ThermostatService{core: core, settingsRepo: settingsRepo, eventRepo: eventRepo, log: log}
}

// Restore loads persisted settings into the controller and writes the
// resolved result back, so defaults filled in on first boot survive the
// next restart. Runs once at startup, before any sensor traffic.
func (s *ThermostatService) Restore(ctx context.Context) error {
	saved, err := s.settingsRepo.Load(ctx)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}
	s.core.Restore(saved)
	if err := s.settingsRepo.Save(ctx, s.core.Settings()); err != nil {
		return fmt.Errorf("save resolved settings: %w", err)
	}
	return nil
}

// SetMode validates and applies an operating mode, then persists and logs
// the change.
func (s *ThermostatService) SetMode(ctx context.Context, mode string) error {
	m, err := climate.ParseMode(mode)
	if err != nil {
		return err
	}
	if err := s.core.SetMode(ctx, m); err != nil {
		return err
	}
	if err := s.persist(ctx); err != nil {
		return err
	}
	return s.eventRepo.Append(ctx, dualtherm.ThermostatEvent{
		EventID:     uuid.NewString(),
		OccurredAt:  time.Now().UTC(),
		Type:        EventModeChange,
		Description: "Mode changed to " + string(m),
		Metadata:    map[string]any{"mode": string(m)},
	})
}

// SetTemperature applies a setpoint change. Values must lie within the
// configured min/max bounds, and match the install's setpoint shape
// (single target or low/high range).
func (s *ThermostatService) SetTemperature(ctx context.Context, p TemperatureParams) error {
	if p.TargetTempC == nil && p.TargetTempLowC == nil && p.TargetTempHighC == nil {
		return errMissingTarget
	}
	for _, v := range []*float64{p.TargetTempC, p.TargetTempLowC, p.TargetTempHighC} {
		if err := s.checkBounds(v); err != nil {
			return err
		}
	}

	var err error
	if p.TargetTempC != nil {
		err = s.core.SetTarget(ctx, *p.TargetTempC)
	} else {
		err = s.core.SetRange(ctx, p.TargetTempLowC, p.TargetTempHighC)
	}
	if err != nil {
		return err
	}

	if err := s.persist(ctx); err != nil {
		return err
	}
	settings := s.core.Settings()
	return s.eventRepo.Append(ctx, dualtherm.ThermostatEvent{
		EventID:     uuid.NewString(),
		OccurredAt:  time.Now().UTC(),
		Type:        EventTargetChange,
		Description: "Target temperature changed",
		Metadata: map[string]any{
			"target_c":      deref(settings.TargetTempC),
			"target_low_c":  deref(settings.TargetTempLowC),
			"target_high_c": deref(settings.TargetTempHighC),
		},
	})
}

// SetPreset switches between the "none" and "away" presets.
func (s *ThermostatService) SetPreset(ctx context.Context, preset string) error {
	var away bool
	switch preset {
	case climate.PresetAway:
		away = true
	case climate.PresetNone:
		away = false
	default:
		return fmt.Errorf("%w: %q", errUnknownPreset, preset)
	}

	if err := s.core.SetAway(ctx, away); err != nil {
		return err
	}
	if err := s.persist(ctx); err != nil {
		return err
	}
	return s.eventRepo.Append(ctx, dualtherm.ThermostatEvent{
		EventID:     uuid.NewString(),
		OccurredAt:  time.Now().UTC(),
		Type:        EventPresetChange,
		Description: "Preset changed to " + preset,
		Metadata:    map[string]any{"preset": preset},
	})
}

// HandleSensorReading routes an inbound sensor payload to the controller.
// Unreadable temperature values are logged as SENSOR_FAULT events; the
// feed itself never stops.
func (s *ThermostatService) HandleSensorReading(ctx context.Context, entityID, value string) {
	cfg := s.core.Config()
	switch entityID {
	case cfg.Sensor:
		if err := s.core.UpdateTemperature(ctx, value); err != nil {
			if errors.Is(err, climate.ErrBadReading) {
				_ = s.eventRepo.Append(ctx, dualtherm.ThermostatEvent{
					EventID:     uuid.NewString(),
					OccurredAt:  time.Now().UTC(),
					Type:        EventSensorFault,
					Description: "Unreadable temperature reading",
					Metadata:    map[string]any{"entity": entityID, "value": value},
				})
				return
			}
			s.log.Errorw("temperature update failed", "entity", entityID, "err", err)
		}
	case cfg.HumiditySensor:
		if err := s.core.UpdateHumidity(value); err != nil {
			s.log.Warnw("humidity update failed", "entity", entityID, "err", err)
		}
	default:
		s.log.Warnw("reading from unknown entity", "entity", entityID)
	}
}

func (s *ThermostatService) persist(ctx context.Context) error {
	if err := s.settingsRepo.Save(ctx, s.core.Settings()); err != nil {
		return fmt.Errorf("persist settings: %w", err)
	}
	return nil
}

func (s *ThermostatService) checkBounds(v *float64) error {
	if v == nil {
		return nil
	}
	cfg := s.core.Config()
	if *v < cfg.MinTemp || *v > cfg.MaxTemp {
		return fmt.Errorf("target %.1f outside allowed range %.1f..%.1f", *v, cfg.MinTemp, cfg.MaxTemp)
	}
	return nil
}

func deref(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}
