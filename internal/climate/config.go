package climate

import (
	"errors"
	"fmt"
	"time"
)

// Defaults matching common household installs.
const (
	DefaultTolerance = 0.3
	DefaultMinTempC  = 7.0
	DefaultMaxTempC  = 35.0
)

// Temperature display precisions.
const (
	PrecisionWhole  = 1.0
	PrecisionHalves = 0.5
	PrecisionTenths = 0.1
)

// Config is the already-typed configuration surface of the controller.
// Optional values are pointers; nil means "not configured".
type Config struct {
	Heater         string // actuator id of the heating output
	Cooler         string // actuator id of the cooling output
	Sensor         string // entity id of the temperature sensor
	HumiditySensor string // optional humidity sensor entity id

	// ReverseCycle: the hardware switches cycle direction itself, so the
	// opposite actuator is not forced off on a HEAT<->COOL switch.
	ReverseCycle bool

	MinTemp float64
	MaxTemp float64

	// Exactly one representation: TargetTemp, or TargetTempLow+TargetTempHigh.
	// All nil is allowed; targets then come from restore or fallback defaults.
	TargetTemp     *float64
	TargetTempLow  *float64
	TargetTempHigh *float64

	ColdTolerance float64
	HotTolerance  float64

	// MinCycleDuration is the elapsed-time floor an actuator must hold its
	// current on/off state before a non-forced evaluation may flip it.
	// Zero disables the gate.
	MinCycleDuration time.Duration

	// KeepAlive is the periodic re-evaluation interval. Zero disables it.
	KeepAlive time.Duration

	InitialMode Mode     // empty means "restore persisted mode, else OFF"
	AwayTemp    *float64 // enables the away preset when set
	Precision   float64  // PrecisionWhole, PrecisionHalves or PrecisionTenths
}

var (
	errMissingEntity    = errors.New("heater, cooler and sensor ids are required")
	errMixedSetpoints   = errors.New("configure either target_temp or target_temp_low+target_temp_high, not both")
	errHalfRange        = errors.New("target_temp_low and target_temp_high must be configured together")
	errInvertedRange    = errors.New("target_temp_low must be <= target_temp_high")
	errNegativeTol      = errors.New("tolerances must be >= 0")
	errInvertedBounds   = errors.New("min_temp must be < max_temp")
	errBadPrecision     = errors.New("precision must be 1.0, 0.5 or 0.1")
	errAwayNeedsSingle  = errors.New("away_temp requires a single-target configuration")
	errNegativeDuration = errors.New("durations must be >= 0")
)

// withDefaults resolves unset optional values explicitly.
func (c Config) withDefaults() Config {
	if c.MinTemp == 0 && c.MaxTemp == 0 {
		c.MinTemp = DefaultMinTempC
		c.MaxTemp = DefaultMaxTempC
	}
	if c.Precision == 0 {
		c.Precision = PrecisionTenths
	}
	return c
}

// SetpointKind derives the configured representation: a range when both
// range targets are present, a single target otherwise.
func (c Config) SetpointKind() SetpointKind {
	if c.TargetTempLow != nil && c.TargetTempHigh != nil {
		return RangeTargets
	}
	return SingleTarget
}

// Validate checks the configuration surface. It is a setup-time check owned
// by the constructing layer; the control loop assumes a valid Config.
func (c Config) Validate() error {
	if c.Heater == "" || c.Cooler == "" || c.Sensor == "" {
		return errMissingEntity
	}
	if c.TargetTemp != nil && (c.TargetTempLow != nil || c.TargetTempHigh != nil) {
		return errMixedSetpoints
	}
	if (c.TargetTempLow == nil) != (c.TargetTempHigh == nil) {
		return errHalfRange
	}
	if c.TargetTempLow != nil && *c.TargetTempLow > *c.TargetTempHigh {
		return errInvertedRange
	}
	if c.ColdTolerance < 0 || c.HotTolerance < 0 {
		return errNegativeTol
	}
	if c.MinTemp >= c.MaxTemp {
		return errInvertedBounds
	}
	if c.MinCycleDuration < 0 || c.KeepAlive < 0 {
		return errNegativeDuration
	}
	switch c.Precision {
	case PrecisionWhole, PrecisionHalves, PrecisionTenths:
	default:
		return errBadPrecision
	}
	if c.AwayTemp != nil && c.SetpointKind() != SingleTarget {
		return errAwayNeedsSingle
	}
	if c.InitialMode != "" {
		if _, err := ParseMode(string(c.InitialMode)); err != nil {
			return fmt.Errorf("initial_mode: %w", err)
		}
	}
	return nil
}
