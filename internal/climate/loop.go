package climate

import "context"

// evaluate is the control loop: one decision pass over current state and
// actuator status, issuing at most one command transition per actuator.
// Callers hold c.mu. force bypasses the cycle-duration gate (explicit
// mode/setpoint/preset changes); tick marks keep-alive invocations, which
// also skip the gate but only re-affirm the standing command.
func (c *Controller) evaluate(ctx context.Context, force, tick bool) error {
	if !c.active && c.curTemp != nil && c.setpoints.Known() {
		c.active = true
		c.log.Infow("current and target temperature observed, thermostat armed", "mode", c.mode)
	}

	if !c.active || c.mode == ModeOff {
		// OFF always wins: anything still running gets shut down.
		if c.mode == ModeOff && c.deviceActive() {
			if err := c.heaterOff(ctx); err != nil {
				return err
			}
			return c.coolerOff(ctx)
		}
		return nil
	}

	if !force && !tick && c.cfg.MinCycleDuration > 0 && !c.cycleLongEnough() {
		return nil
	}

	cur := *c.curTemp
	if c.deviceActive() {
		return c.deactivatePass(ctx, cur, tick)
	}
	return c.activatePass(ctx, cur, tick)
}

// cycleLongEnough checks the minimum-cycle gate for the mode-relevant
// actuator(s): the heater in HEAT, the cooler in COOL, and each actuator
// independently in HEAT_COOL.
func (c *Controller) cycleLongEnough() bool {
	d := c.cfg.MinCycleDuration
	switch c.mode {
	case ModeHeat:
		return c.status.HeldFor(c.cfg.Heater) >= d
	case ModeCool:
		return c.status.HeldFor(c.cfg.Cooler) >= d
	case ModeHeatCool:
		return c.status.HeldFor(c.cfg.Heater) >= d && c.status.HeldFor(c.cfg.Cooler) >= d
	}
	return true
}

// deactivatePass decides when to turn the running actuator off. Thresholds
// here are tighter than activation (tolerance added on the comfortable
// side), which is what produces the hysteresis.
func (c *Controller) deactivatePass(ctx context.Context, cur float64, tick bool) error {
	tooCold := c.tooColdDeactivate(cur)
	tooHot := c.tooHotDeactivate(cur)

	switch {
	case tooCold && c.mode == ModeCool:
		c.log.Infow("too cold, turning off cooler", "temp_c", cur, "cooler", c.cfg.Cooler)
		return c.coolerOff(ctx)
	case tooHot && c.mode == ModeHeat:
		c.log.Infow("too hot, turning off heater", "temp_c", cur, "heater", c.cfg.Heater)
		return c.heaterOff(ctx)
	case tooCold && tooHot && c.mode == ModeHeatCool:
		// back inside the comfort band: both off
		c.log.Infow("inside comfort band, turning off heater and cooler", "temp_c", cur)
		if err := c.heaterOff(ctx); err != nil {
			return err
		}
		return c.coolerOff(ctx)
	case tick:
		// keep-alive: re-issue the standing on command
		switch c.mode {
		case ModeCool:
			return c.coolerOn(ctx)
		case ModeHeat:
			return c.heaterOn(ctx)
		case ModeHeatCool:
			if c.status.IsOn(c.cfg.Heater) {
				return c.heaterOn(ctx)
			}
			if c.status.IsOn(c.cfg.Cooler) {
				return c.coolerOn(ctx)
			}
		}
	}
	return nil
}

// activatePass decides when to turn an actuator on.
func (c *Controller) activatePass(ctx context.Context, cur float64, tick bool) error {
	tooCold := c.tooColdActivate(cur)
	tooHot := c.tooHotActivate(cur)

	switch {
	case tooHot && (c.mode == ModeCool || c.mode == ModeHeatCool):
		c.log.Infow("too hot, turning on cooler", "temp_c", cur, "cooler", c.cfg.Cooler)
		return c.coolerOn(ctx)
	case tooCold && (c.mode == ModeHeat || c.mode == ModeHeatCool):
		c.log.Infow("too cold, turning on heater", "temp_c", cur, "heater", c.cfg.Heater)
		return c.heaterOn(ctx)
	case tick:
		// keep-alive: re-issue the standing off command
		switch c.mode {
		case ModeCool:
			return c.coolerOff(ctx)
		case ModeHeat:
			return c.heaterOff(ctx)
		case ModeHeatCool:
			if c.status.IsOn(c.cfg.Heater) {
				return c.heaterOff(ctx)
			}
			if c.status.IsOn(c.cfg.Cooler) {
				return c.coolerOff(ctx)
			}
		}
	}
	return nil
}

// Activation thresholds: act at the edges of the desired range.

func (c *Controller) tooColdActivate(cur float64) bool {
	return c.setpoints.heating() >= cur+c.cfg.ColdTolerance
}

func (c *Controller) tooHotActivate(cur float64) bool {
	return cur >= c.setpoints.cooling()+c.cfg.HotTolerance
}

// Deactivation thresholds. In HEAT_COOL each side is compared against the
// opposite setpoint: the heater keeps running until the temperature clears
// low+hot_tolerance and the cooler until it drops under high-cold_tolerance,
// so both only stop inside [low+hot_tolerance, high-cold_tolerance]. This
// wide dead-band is deliberate; it keeps auto mode from toggling actuators
// around each setpoint.

func (c *Controller) tooColdDeactivate(cur float64) bool {
	if c.mode == ModeHeatCool {
		_, high, _ := c.setpoints.Range()
		return high >= cur+c.cfg.ColdTolerance
	}
	return c.setpoints.heating() >= cur+c.cfg.ColdTolerance
}

func (c *Controller) tooHotDeactivate(cur float64) bool {
	if c.mode == ModeHeatCool {
		low, _, _ := c.setpoints.Range()
		return cur >= low+c.cfg.HotTolerance
	}
	return cur >= c.setpoints.cooling()+c.cfg.HotTolerance
}

// deviceActive reports whether either actuator is currently on.
func (c *Controller) deviceActive() bool {
	return c.status.IsOn(c.cfg.Heater) || c.status.IsOn(c.cfg.Cooler)
}

// Command helpers. Failures are logged and surfaced; state is not rolled
// back, the next evaluation re-derives the correct action.

func (c *Controller) heaterOn(ctx context.Context) error {
	return c.command(ctx, c.cfg.Heater, true)
}

func (c *Controller) heaterOff(ctx context.Context) error {
	return c.command(ctx, c.cfg.Heater, false)
}

func (c *Controller) coolerOn(ctx context.Context) error {
	return c.command(ctx, c.cfg.Cooler, true)
}

func (c *Controller) coolerOff(ctx context.Context) error {
	return c.command(ctx, c.cfg.Cooler, false)
}

func (c *Controller) command(ctx context.Context, id string, on bool) error {
	var err error
	if on {
		err = c.commands.TurnOn(ctx, id)
	} else {
		err = c.commands.TurnOff(ctx, id)
	}
	if err != nil {
		c.log.Errorw("actuator command failed", "actuator", id, "on", on, "err", err)
	}
	return err
}
