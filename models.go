package dualtherm

import "time"

// ThermostatState is the externally visible snapshot of the controller:
// what the API, the websocket stream, and the event log metadata all see.
type ThermostatState struct {
	Mode            string    `json:"mode"`   // OFF | HEAT | COOL | HEAT_COOL
	Action          string    `json:"action"` // off | idle | heating | cooling
	Preset          string    `json:"preset"` // none | away
	CurrentTempC    *float64  `json:"current_temp_c,omitempty"`
	CurrentHumidity *float64  `json:"current_humidity,omitempty"`
	TargetTempC     *float64  `json:"target_temp_c,omitempty"`
	TargetTempLowC  *float64  `json:"target_temp_low_c,omitempty"`
	TargetTempHighC *float64  `json:"target_temp_high_c,omitempty"`
	HeaterOn        bool      `json:"heater_on"`
	CoolerOn        bool      `json:"cooler_on"`
	Active          bool      `json:"active"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// ThermostatSettings is the slice of state that survives a restart:
// mode, setpoints, and the away preset with its saved target.
// A zero Mode means "nothing persisted yet".
type ThermostatSettings struct {
	Mode            string    `json:"mode"`
	TargetTempC     *float64  `json:"target_temp_c,omitempty"`
	TargetTempLowC  *float64  `json:"target_temp_low_c,omitempty"`
	TargetTempHighC *float64  `json:"target_temp_high_c,omitempty"`
	Away            bool      `json:"away"`
	SavedTargetC    *float64  `json:"saved_target_c,omitempty"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// ThermostatEvent is a single log entry.
type ThermostatEvent struct {
	EventID     string    `json:"event_id"`
	OccurredAt  time.Time `json:"occurred_at"`
	Type        string    `json:"type"`        // MODE_CHANGE | TARGET_CHANGE | PRESET_CHANGE | SENSOR_FAULT | STARTUP
	Description string    `json:"description"` // human-readable
	Metadata    any       `json:"metadata,omitempty"`
}

type User struct {
	ID           int    `json:"id"`
	Username     string `json:"username"`
	PasswordHash string `json:"-"` // don't expose hash
}
