package climate

import (
	"errors"
	"fmt"
	"strings"
)

// Mode selects which actuator(s) may be commanded and which setpoint(s) apply.
type Mode string

const (
	ModeOff      Mode = "OFF"
	ModeHeat     Mode = "HEAT"
	ModeCool     Mode = "COOL"
	ModeHeatCool Mode = "HEAT_COOL"
)

// ErrUnknownMode is returned for mode commands outside the known set.
// The controller state is left unchanged.
var ErrUnknownMode = errors.New("unknown mode: must be OFF, HEAT, COOL, or HEAT_COOL")

// ParseMode normalizes a textual mode. "HEATCOOL" and "AUTO" are accepted as
// aliases for HEAT_COOL since both show up in client payloads.
func ParseMode(s string) (Mode, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "OFF":
		return ModeOff, nil
	case "HEAT":
		return ModeHeat, nil
	case "COOL":
		return ModeCool, nil
	case "HEAT_COOL", "HEATCOOL", "AUTO":
		return ModeHeatCool, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownMode, s)
	}
}

// Actions reported in the state snapshot: what the device is doing right now,
// as opposed to the mode, which is what it is allowed to do.
const (
	ActionOff     = "off"
	ActionIdle    = "idle"
	ActionHeating = "heating"
	ActionCooling = "cooling"
)

// Presets.
const (
	PresetNone = "none"
	PresetAway = "away"
)
