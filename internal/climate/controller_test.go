package climate

import (
	"context"
	"errors"
	"testing"

	"dualtherm"
)

func TestAwayPreset_RoundTripRestoresExactTarget(t *testing.T) {
	cfg := singleConfig(ModeHeat, 21.5)
	cfg.AwayTemp = f64(10)
	c, _ := newTestController(t, cfg)
	mustUpdateTemp(t, c, "19.0")

	if err := c.SetAway(context.Background(), true); err != nil {
		t.Fatalf("SetAway(true): %v", err)
	}
	st := c.Snapshot()
	if st.Preset != PresetAway {
		t.Fatalf("preset = %s, want away", st.Preset)
	}
	if st.TargetTempC == nil || *st.TargetTempC != 10 {
		t.Fatalf("away target = %v, want 10", st.TargetTempC)
	}

	// Several control passes while away must not disturb the saved target.
	for _, temp := range []string{"12.0", "9.0", "11.0"} {
		mustUpdateTemp(t, c, temp)
	}

	if err := c.SetAway(context.Background(), false); err != nil {
		t.Fatalf("SetAway(false): %v", err)
	}
	st = c.Snapshot()
	if st.Preset != PresetNone {
		t.Fatalf("preset = %s, want none", st.Preset)
	}
	if st.TargetTempC == nil || *st.TargetTempC != 21.5 {
		t.Fatalf("restored target = %v, want 21.5", st.TargetTempC)
	}
}

func TestAwayPreset_RepeatedRequestIsNoOp(t *testing.T) {
	cfg := singleConfig(ModeHeat, 21)
	cfg.AwayTemp = f64(10)
	c, _ := newTestController(t, cfg)
	mustUpdateTemp(t, c, "19.0")

	if err := c.SetAway(context.Background(), true); err != nil {
		t.Fatalf("SetAway(true): %v", err)
	}
	// Second enter must not overwrite the saved pre-away target with 10.
	if err := c.SetAway(context.Background(), true); err != nil {
		t.Fatalf("SetAway(true) again: %v", err)
	}
	if err := c.SetAway(context.Background(), false); err != nil {
		t.Fatalf("SetAway(false): %v", err)
	}
	if st := c.Snapshot(); st.TargetTempC == nil || *st.TargetTempC != 21 {
		t.Fatalf("restored target = %v, want 21", st.TargetTempC)
	}
}

func TestAwayPreset_UnconfiguredRejected(t *testing.T) {
	c, _ := newTestController(t, singleConfig(ModeHeat, 21))
	if err := c.SetAway(context.Background(), true); err == nil {
		t.Fatalf("expected error when away_temp is not configured")
	}
}

func TestUpdateTemperature_BadReadingKeepsPriorState(t *testing.T) {
	c, acts := newTestController(t, singleConfig(ModeHeat, 20))
	mustUpdateTemp(t, c, "19.0")
	assertCommands(t, acts, "on:"+testHeater)

	err := c.UpdateTemperature(context.Background(), "banana")
	if !errors.Is(err, ErrBadReading) {
		t.Fatalf("expected ErrBadReading, got %v", err)
	}
	st := c.Snapshot()
	if st.CurrentTempC == nil || *st.CurrentTempC != 19.0 {
		t.Fatalf("measurement lost after bad reading: %v", st.CurrentTempC)
	}
	if !c.Armed() {
		t.Fatalf("armed flag reverted after bad reading")
	}
}

func TestUpdateTemperature_UnavailableIsNoUpdate(t *testing.T) {
	c, acts := newTestController(t, singleConfig(ModeHeat, 20))
	mustUpdateTemp(t, c, "19.0")
	acts.commands = nil

	for _, v := range []string{"unavailable", "unknown", "", "  "} {
		if err := c.UpdateTemperature(context.Background(), v); err != nil {
			t.Fatalf("UpdateTemperature(%q): %v", v, err)
		}
	}
	if st := c.Snapshot(); st.CurrentTempC == nil || *st.CurrentTempC != 19.0 {
		t.Fatalf("measurement changed by unavailable payload")
	}
	assertCommands(t, acts)
}

func TestUpdateHumidity_InformationalOnly(t *testing.T) {
	cfg := singleConfig(ModeHeat, 20)
	cfg.HumiditySensor = "home/sensor/humidity"
	c, acts := newTestController(t, cfg)
	mustUpdateTemp(t, c, "19.9")
	acts.commands = nil

	if err := c.UpdateHumidity("87.5"); err != nil {
		t.Fatalf("UpdateHumidity(): %v", err)
	}
	st := c.Snapshot()
	if st.CurrentHumidity == nil || *st.CurrentHumidity != 87.5 {
		t.Fatalf("humidity = %v, want 87.5", st.CurrentHumidity)
	}
	// Humidity never drives actuation.
	assertCommands(t, acts)
}

func TestRestore_PersistedSettingsSeedState(t *testing.T) {
	cfg := singleConfig("", 0)
	cfg.TargetTemp = nil
	cfg.AwayTemp = f64(12)
	c, _ := newTestController(t, cfg)

	c.Restore(dualtherm.ThermostatSettings{
		Mode:         "COOL",
		TargetTempC:  f64(23),
		Away:         true,
		SavedTargetC: f64(21),
	})

	if got := c.Mode(); got != ModeCool {
		t.Fatalf("mode = %s, want COOL", got)
	}
	st := c.Snapshot()
	if st.Preset != PresetAway {
		t.Fatalf("preset = %s, want away", st.Preset)
	}
	if st.TargetTempC == nil || *st.TargetTempC != 23 {
		t.Fatalf("target = %v, want 23", st.TargetTempC)
	}

	// Leaving away restores the persisted saved target.
	mustUpdateTemp(t, c, "22.0")
	if err := c.SetAway(context.Background(), false); err != nil {
		t.Fatalf("SetAway(false): %v", err)
	}
	if st := c.Snapshot(); st.TargetTempC == nil || *st.TargetTempC != 21 {
		t.Fatalf("restored target = %v, want 21", st.TargetTempC)
	}
}

func TestRestore_ConfiguredInitialModeWins(t *testing.T) {
	c, _ := newTestController(t, singleConfig(ModeHeat, 20))
	c.Restore(dualtherm.ThermostatSettings{Mode: "COOL"})
	if got := c.Mode(); got != ModeHeat {
		t.Fatalf("mode = %s, configured initial mode must win", got)
	}
}

func TestRestore_EmptySettingsFallBackToDefaults(t *testing.T) {
	cases := []struct {
		name string
		mode Mode
		want float64
	}{
		{"heat defaults to min", ModeHeat, DefaultMinTempC},
		{"cool defaults to max", ModeCool, DefaultMaxTempC},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := singleConfig(tc.mode, 0)
			cfg.TargetTemp = nil
			c, _ := newTestController(t, cfg)
			c.Restore(dualtherm.ThermostatSettings{})
			st := c.Snapshot()
			if st.TargetTempC == nil || *st.TargetTempC != tc.want {
				t.Fatalf("target = %v, want %v", st.TargetTempC, tc.want)
			}
		})
	}
}

func TestRestore_WrongRepresentationIgnored(t *testing.T) {
	cfg := Config{
		Heater:        testHeater,
		Cooler:        testCooler,
		Sensor:        testSensor,
		ColdTolerance: 0.5,
		HotTolerance:  0.5,
		InitialMode:   ModeHeatCool,
	}
	c, _ := newTestController(t, cfg)
	// Single-target kind without range config: persisted range values are
	// ignored for the wrong representation.
	c.Restore(dualtherm.ThermostatSettings{TargetTempLowC: f64(18), TargetTempHighC: f64(26)})
	st := c.Snapshot()
	if st.TargetTempC == nil {
		t.Fatalf("expected single-target fallback, got %+v", st)
	}
}

func TestSnapshot_ActionAndPrecision(t *testing.T) {
	cfg := singleConfig(ModeHeat, 20)
	cfg.Precision = PrecisionHalves
	c, _ := newTestController(t, cfg)

	st := c.Snapshot()
	if st.Action != ActionIdle {
		t.Fatalf("action = %s, want idle before any command", st.Action)
	}

	mustUpdateTemp(t, c, "19.26")
	st = c.Snapshot()
	if st.Action != ActionHeating {
		t.Fatalf("action = %s, want heating", st.Action)
	}
	if st.CurrentTempC == nil || *st.CurrentTempC != 19.5 {
		t.Fatalf("rounded temp = %v, want 19.5", st.CurrentTempC)
	}

	if err := c.SetMode(context.Background(), ModeOff); err != nil {
		t.Fatalf("SetMode(OFF): %v", err)
	}
	if st := c.Snapshot(); st.Action != ActionOff {
		t.Fatalf("action = %s, want off", st.Action)
	}
}

func TestSettings_ReflectPersistableState(t *testing.T) {
	cfg := singleConfig(ModeHeat, 21)
	cfg.AwayTemp = f64(10)
	c, _ := newTestController(t, cfg)
	mustUpdateTemp(t, c, "19.0")
	if err := c.SetAway(context.Background(), true); err != nil {
		t.Fatalf("SetAway(true): %v", err)
	}

	s := c.Settings()
	if s.Mode != string(ModeHeat) || !s.Away {
		t.Fatalf("settings = %+v", s)
	}
	if s.TargetTempC == nil || *s.TargetTempC != 10 {
		t.Fatalf("persisted target = %v, want away temp 10", s.TargetTempC)
	}
	if s.SavedTargetC == nil || *s.SavedTargetC != 21 {
		t.Fatalf("persisted saved target = %v, want 21", s.SavedTargetC)
	}
}
