package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"dualtherm"
)

type SettingsSQLite struct {
	db *sql.DB
}

func NewSettingsSQLite(db *sql.DB) *SettingsSQLite {
	return &SettingsSQLite{db: db}
}

const (
	thermostatSettingsRowID = 1

	insertOrUpdateSettingsSQL = `
		INSERT INTO thermostat_settings (id, mode, target_c, target_low_c, target_high_c, away, saved_target_c, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			mode=excluded.mode,
			target_c=excluded.target_c,
			target_low_c=excluded.target_low_c,
			target_high_c=excluded.target_high_c,
			away=excluded.away,
			saved_target_c=excluded.saved_target_c,
			updated_at=excluded.updated_at
	`

	selectSettingsSQL = `
		SELECT id, mode, target_c, target_low_c, target_high_c, away, saved_target_c, updated_at
		FROM thermostat_settings WHERE id=?
	`
)

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func floatPtr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}

// Save updates or inserts the thermostat_settings row (id always 1).
func (r *SettingsSQLite) Save(ctx context.Context, s dualtherm.ThermostatSettings) error {
	// ensure UpdatedAt is always persisted as UTC; set if zero
	tsUTC := s.UpdatedAt
	if tsUTC.IsZero() {
		tsUTC = time.Now().UTC()
	} else {
		tsUTC = tsUTC.UTC()
	}

	_, err := r.db.ExecContext(ctx, insertOrUpdateSettingsSQL,
		thermostatSettingsRowID,
		s.Mode,
		nullFloat(s.TargetTempC),
		nullFloat(s.TargetTempLowC),
		nullFloat(s.TargetTempHighC),
		s.Away,
		nullFloat(s.SavedTargetC),
		tsUTC,
	)
	return err
}

// Load fetches the single thermostat_settings row (id=1). A missing row is
// not an error; the zero value means "nothing persisted yet".
func (r *SettingsSQLite) Load(ctx context.Context) (dualtherm.ThermostatSettings, error) {
	row := r.db.QueryRowContext(ctx, selectSettingsSQL, thermostatSettingsRowID)

	var (
		s          dualtherm.ThermostatSettings
		id         int
		target     sql.NullFloat64
		targetLow  sql.NullFloat64
		targetHigh sql.NullFloat64
		saved      sql.NullFloat64
	)
	if err := row.Scan(
		&id,
		&s.Mode,
		&target,
		&targetLow,
		&targetHigh,
		&s.Away,
		&saved,
		&s.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return dualtherm.ThermostatSettings{}, nil // nothing saved yet
		}
		return dualtherm.ThermostatSettings{}, err
	}

	s.TargetTempC = floatPtr(target)
	s.TargetTempLowC = floatPtr(targetLow)
	s.TargetTempHighC = floatPtr(targetHigh)
	s.SavedTargetC = floatPtr(saved)
	s.UpdatedAt = s.UpdatedAt.UTC()

	return s, nil
}
