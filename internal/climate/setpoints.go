package climate

import "errors"

// SetpointKind discriminates the two setpoint representations. The kind is
// chosen once, at construction, from the configuration, and never changes.
type SetpointKind int

const (
	// SingleTarget: one target temperature, used by OFF/HEAT/COOL.
	SingleTarget SetpointKind = iota
	// RangeTargets: a (low, high) pair, used by HEAT_COOL and also consulted
	// as the heating/cooling setpoint in single-mode operation.
	RangeTargets
)

// ErrWrongSetpointKind is returned when a command addresses the
// representation the controller was not configured with.
var ErrWrongSetpointKind = errors.New("setpoint command does not match configured representation")

// Setpoints is a tagged variant: either a single target or a low/high range.
// Values start unknown; the controller stays un-armed until they are set.
type Setpoints struct {
	kind SetpointKind

	target    float64
	targetSet bool

	low     float64
	lowSet  bool
	high    float64
	highSet bool
}

func newSetpoints(kind SetpointKind) Setpoints {
	return Setpoints{kind: kind}
}

func (s *Setpoints) Kind() SetpointKind { return s.kind }

// Known reports whether the mode-relevant setpoints have all been observed.
func (s *Setpoints) Known() bool {
	if s.kind == RangeTargets {
		return s.lowSet && s.highSet
	}
	return s.targetSet
}

func (s *Setpoints) SetTarget(t float64) error {
	if s.kind != SingleTarget {
		return ErrWrongSetpointKind
	}
	s.target = t
	s.targetSet = true
	return nil
}

func (s *Setpoints) SetLow(t float64) error {
	if s.kind != RangeTargets {
		return ErrWrongSetpointKind
	}
	s.low = t
	s.lowSet = true
	return nil
}

func (s *Setpoints) SetHigh(t float64) error {
	if s.kind != RangeTargets {
		return ErrWrongSetpointKind
	}
	s.high = t
	s.highSet = true
	return nil
}

func (s *Setpoints) Target() (float64, bool) {
	return s.target, s.kind == SingleTarget && s.targetSet
}

func (s *Setpoints) Range() (low, high float64, ok bool) {
	return s.low, s.high, s.kind == RangeTargets && s.lowSet && s.highSet
}

// heating returns the setpoint the heater works toward: the single target,
// or the low end of the range.
func (s *Setpoints) heating() float64 {
	if s.kind == RangeTargets {
		return s.low
	}
	return s.target
}

// cooling returns the setpoint the cooler works toward: the single target,
// or the high end of the range.
func (s *Setpoints) cooling() float64 {
	if s.kind == RangeTargets {
		return s.high
	}
	return s.target
}
