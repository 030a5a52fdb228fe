package climate

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"
	"time"

	"dualtherm"
	"dualtherm/internal/logger"
)

// CommandSink issues on/off commands to the actuator subsystem. Calls may
// block and may fail; the controller never retries, the next evaluation
// re-derives the correct action from current truth.
type CommandSink interface {
	TurnOn(ctx context.Context, actuatorID string) error
	TurnOff(ctx context.Context, actuatorID string) error
}

// StatusSource answers actuator status queries for the decision procedure
// and the cycle-duration gate.
type StatusSource interface {
	IsOn(actuatorID string) bool
	// HeldFor is the time the actuator has been in its current on/off state.
	HeldFor(actuatorID string) time.Duration
}

// ErrBadReading is returned for sensor values that do not parse as a number.
// The previous measurement is retained.
var ErrBadReading = errors.New("sensor reading is not a number")

var errAwayUnavailable = errors.New("away preset is not configured")

// Sensor payloads that mean "no update", not a numeric value.
const (
	stateUnavailable = "unavailable"
	stateUnknown     = "unknown"
)

// Controller is the dual-setpoint thermostat core: authoritative mode,
// setpoints, tolerances and last measurement, plus the decision procedure
// in loop.go. A mutex serializes evaluation passes; callers may invoke
// operations from any goroutine, but each pass runs to completion before
// the next begins.
type Controller struct {
	mu       sync.Mutex
	cfg      Config
	log      *logger.Logger
	commands CommandSink
	status   StatusSource

	mode        Mode
	setpoints   Setpoints
	curTemp     *float64
	curHumidity *float64

	// active latches true the first time a measurement and the relevant
	// setpoints are both known. It never reverts.
	active bool

	away        bool
	savedTarget *float64
}

// New builds a controller from configuration. Persisted values are applied
// afterwards via Restore, before the first evaluation.
func New(cfg Config, commands CommandSink, status StatusSource, log *logger.Logger) (*Controller, error) {
	cfg = cfg.withDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("thermostat config: %w", err)
	}

	c := &Controller{
		cfg:       cfg,
		log:       log,
		commands:  commands,
		status:    status,
		mode:      cfg.InitialMode,
		setpoints: newSetpoints(cfg.SetpointKind()),
	}

	switch cfg.SetpointKind() {
	case SingleTarget:
		if cfg.TargetTemp != nil {
			_ = c.setpoints.SetTarget(*cfg.TargetTemp)
		}
	case RangeTargets:
		_ = c.setpoints.SetLow(*cfg.TargetTempLow)
		_ = c.setpoints.SetHigh(*cfg.TargetTempHigh)
	}

	// Seed the pre-away save slot the same way a fresh device would.
	if cfg.TargetTemp != nil {
		c.savedTarget = cfg.TargetTemp
	} else if cfg.AwayTemp != nil {
		c.savedTarget = cfg.AwayTemp
	}

	return c, nil
}

// Config returns the controller configuration.
func (c *Controller) Config() Config { return c.cfg }

// Restore applies previously persisted settings and then fills any still
// unknown targets with mode-appropriate defaults. It must run before the
// first evaluation; it issues no actuator commands.
func (c *Controller) Restore(s dualtherm.ThermostatSettings) {
	c.mu.Lock()
	defer c.mu.Unlock()

	// A configured initial mode wins over the persisted one.
	if c.mode == "" && s.Mode != "" {
		if m, err := ParseMode(s.Mode); err == nil {
			c.mode = m
		} else {
			c.log.Warnw("ignoring persisted mode", "mode", s.Mode, "err", err)
		}
	}
	if c.mode == "" {
		c.mode = ModeOff
	}

	switch c.setpoints.Kind() {
	case SingleTarget:
		if _, ok := c.setpoints.Target(); !ok && s.TargetTempC != nil {
			_ = c.setpoints.SetTarget(*s.TargetTempC)
		}
	case RangeTargets:
		if s.TargetTempLowC != nil {
			_ = c.setpoints.SetLow(*s.TargetTempLowC)
		}
		if s.TargetTempHighC != nil {
			_ = c.setpoints.SetHigh(*s.TargetTempHighC)
		}
	}

	if s.Away && c.cfg.AwayTemp != nil && c.setpoints.Kind() == SingleTarget {
		c.away = true
		if s.SavedTargetC != nil {
			c.savedTarget = s.SavedTargetC
		}
	}

	c.fillDefaultTargets()
}

// fillDefaultTargets resolves targets that neither configuration nor
// persistence supplied. Heat defaults low, Cool defaults high, so the
// device stays passive until someone picks a real setpoint.
func (c *Controller) fillDefaultTargets() {
	switch c.setpoints.Kind() {
	case SingleTarget:
		if _, ok := c.setpoints.Target(); ok {
			return
		}
		t := c.cfg.MinTemp
		if c.mode == ModeCool {
			t = c.cfg.MaxTemp
		}
		_ = c.setpoints.SetTarget(t)
		c.log.Warnw("no saved target temperature, falling back to default", "target_c", t)
	case RangeTargets:
		if _, _, ok := c.setpoints.Range(); ok {
			return
		}
		_ = c.setpoints.SetLow(c.cfg.MinTemp)
		_ = c.setpoints.SetHigh(c.cfg.MaxTemp)
		c.log.Warnw("no saved target range, falling back to defaults",
			"low_c", c.cfg.MinTemp, "high_c", c.cfg.MaxTemp)
	}
}

// SetMode changes the operating mode and re-evaluates immediately, bypassing
// the cycle gate. Switching directly between HEAT and COOL commands the
// opposite actuator off first unless the hardware is reverse-cycle.
func (c *Controller) SetMode(ctx context.Context, mode Mode) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch mode {
	case ModeHeat:
		c.mode = ModeHeat
		if c.deviceActive() && !c.cfg.ReverseCycle {
			if err := c.coolerOff(ctx); err != nil {
				return err
			}
		}
		return c.evaluate(ctx, true, false)
	case ModeCool:
		c.mode = ModeCool
		if c.deviceActive() && !c.cfg.ReverseCycle {
			if err := c.heaterOff(ctx); err != nil {
				return err
			}
		}
		return c.evaluate(ctx, true, false)
	case ModeHeatCool:
		c.mode = ModeHeatCool
		return c.evaluate(ctx, true, false)
	case ModeOff:
		c.mode = ModeOff
		if c.deviceActive() {
			if err := c.heaterOff(ctx); err != nil {
				return err
			}
			return c.coolerOff(ctx)
		}
		return nil
	default:
		c.log.Errorw("unrecognized mode command", "mode", mode)
		return fmt.Errorf("%w: %q", ErrUnknownMode, mode)
	}
}

// SetTarget sets the single target temperature and re-evaluates, bypassing
// the cycle gate. Valid only for single-target configurations.
func (c *Controller) SetTarget(ctx context.Context, temp float64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.setpoints.SetTarget(temp); err != nil {
		return err
	}
	return c.evaluate(ctx, true, false)
}

// SetRange updates one or both range targets and re-evaluates, bypassing
// the cycle gate. Valid only for range configurations.
func (c *Controller) SetRange(ctx context.Context, low, high *float64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if low != nil {
		if err := c.setpoints.SetLow(*low); err != nil {
			return err
		}
	}
	if high != nil {
		if err := c.setpoints.SetHigh(*high); err != nil {
			return err
		}
	}
	return c.evaluate(ctx, true, false)
}

// SetAway enters or leaves the away preset. Entering saves the current
// target and applies the configured away temperature; leaving restores the
// saved target exactly. Requesting the current state is a no-op.
func (c *Controller) SetAway(ctx context.Context, away bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cfg.AwayTemp == nil {
		return errAwayUnavailable
	}
	if away == c.away {
		return nil
	}

	if away {
		if t, ok := c.setpoints.Target(); ok {
			saved := t
			c.savedTarget = &saved
		}
		c.away = true
		_ = c.setpoints.SetTarget(*c.cfg.AwayTemp)
	} else {
		c.away = false
		if c.savedTarget != nil {
			_ = c.setpoints.SetTarget(*c.savedTarget)
		}
	}
	return c.evaluate(ctx, true, false)
}

// UpdateTemperature records a new temperature reading and re-evaluates.
// "unavailable"/"unknown" payloads are treated as no update. A value that
// fails to parse is rejected with ErrBadReading; prior state is untouched.
func (c *Controller) UpdateTemperature(ctx context.Context, raw string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	v, ok, err := parseReading(raw)
	if err != nil {
		c.log.Warnw("ignoring unreadable temperature", "value", raw, "err", err)
		return err
	}
	if !ok {
		return nil
	}
	c.curTemp = &v
	return c.evaluate(ctx, false, false)
}

// UpdateHumidity records a humidity reading. Humidity is informational only
// and never triggers actuation.
func (c *Controller) UpdateHumidity(raw string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	v, ok, err := parseReading(raw)
	if err != nil {
		c.log.Warnw("ignoring unreadable humidity", "value", raw, "err", err)
		return err
	}
	if !ok {
		return nil
	}
	c.curHumidity = &v
	return nil
}

// Tick is the keep-alive entry point: a periodic re-evaluation that
// re-affirms the current actuator command and skips the cycle gate.
func (c *Controller) Tick(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.evaluate(ctx, false, true)
}

// Armed reports whether a measurement and the relevant setpoints have both
// been observed at least once.
func (c *Controller) Armed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active
}

// Mode returns the current operating mode.
func (c *Controller) Mode() Mode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mode
}

// Snapshot returns the externally visible state.
func (c *Controller) Snapshot() dualtherm.ThermostatState {
	c.mu.Lock()
	defer c.mu.Unlock()

	st := dualtherm.ThermostatState{
		Mode:      string(c.mode),
		Action:    c.action(),
		Preset:    PresetNone,
		HeaterOn:  c.status.IsOn(c.cfg.Heater),
		CoolerOn:  c.status.IsOn(c.cfg.Cooler),
		Active:    c.active,
		UpdatedAt: time.Now().UTC(),
	}
	if c.away {
		st.Preset = PresetAway
	}
	if c.curTemp != nil {
		t := roundToPrecision(*c.curTemp, c.cfg.Precision)
		st.CurrentTempC = &t
	}
	if c.curHumidity != nil {
		h := *c.curHumidity
		st.CurrentHumidity = &h
	}
	if t, ok := c.setpoints.Target(); ok {
		st.TargetTempC = &t
	}
	if low, high, ok := c.setpoints.Range(); ok {
		st.TargetTempLowC = &low
		st.TargetTempHighC = &high
	}
	return st
}

// Settings returns the persistable slice of state.
func (c *Controller) Settings() dualtherm.ThermostatSettings {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := dualtherm.ThermostatSettings{
		Mode:      string(c.mode),
		Away:      c.away,
		UpdatedAt: time.Now().UTC(),
	}
	if t, ok := c.setpoints.Target(); ok {
		s.TargetTempC = &t
	}
	if low, high, ok := c.setpoints.Range(); ok {
		s.TargetTempLowC = &low
		s.TargetTempHighC = &high
	}
	if c.savedTarget != nil {
		saved := *c.savedTarget
		s.SavedTargetC = &saved
	}
	return s
}

// action derives what the device is doing right now.
func (c *Controller) action() string {
	switch {
	case c.mode == ModeOff:
		return ActionOff
	case !c.deviceActive():
		return ActionIdle
	case c.mode == ModeCool:
		return ActionCooling
	case c.mode == ModeHeat:
		return ActionHeating
	default: // HEAT_COOL: report whichever actuator is on
		if c.status.IsOn(c.cfg.Heater) {
			return ActionHeating
		}
		if c.status.IsOn(c.cfg.Cooler) {
			return ActionCooling
		}
		return ActionIdle
	}
}

// parseReading maps a raw sensor payload to (value, updated, error).
// Empty and unavailable/unknown payloads mean "no update".
func parseReading(raw string) (float64, bool, error) {
	s := strings.TrimSpace(raw)
	if s == "" || strings.EqualFold(s, stateUnavailable) || strings.EqualFold(s, stateUnknown) {
		return 0, false, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false, fmt.Errorf("%w: %q", ErrBadReading, raw)
	}
	return v, true, nil
}

func roundToPrecision(v, precision float64) float64 {
	return math.Round(v/precision) * precision
}
