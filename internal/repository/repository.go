package repository

import (
	"context"
	"database/sql"
	"time"

	"dualtherm"
)

type Authorization interface {
	Create(username, hash string) (int, error)
	GetByUsername(username string) (*dualtherm.User, error)
}

type SettingsRepo interface {
	Save(ctx context.Context, s dualtherm.ThermostatSettings) error
	Load(ctx context.Context) (dualtherm.ThermostatSettings, error)
}

type EventRepo interface {
	Append(ctx context.Context, e dualtherm.ThermostatEvent) error
	List(ctx context.Context, from, to time.Time, typ string) ([]dualtherm.ThermostatEvent, error)
}

type Repository struct {
	SettingsRepo SettingsRepo
	EventRepo    EventRepo
	Auth         Authorization
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{
		SettingsRepo: NewSettingsSQLite(db),
		EventRepo:    NewEventSQLite(db),
		Auth:         NewUserRepository(db),
	}
}
