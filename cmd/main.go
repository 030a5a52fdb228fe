package main

import (
	"context"
	"database/sql"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/viper"

	_ "dualtherm/docs"
	"dualtherm/internal/actuator"
	"dualtherm/internal/climate"
	"dualtherm/internal/handlers"
	"dualtherm/internal/logger"
	"dualtherm/internal/mqtt"
	"dualtherm/internal/repository"
	"dualtherm/internal/repository/db"
	"dualtherm/internal/sensor"
	"dualtherm/internal/server"
	"dualtherm/internal/service"
)

// @title           dualtherm API
// @version         1.0
// @description     Dual-setpoint hysteresis thermostat control service
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// init logger
	log := logger.Get(logger.InfoLevel)

	// load config.yml
	if err := loadConfig(); err != nil {
		log.Fatalw("error reading config", "err", err)
	}

	// open DB
	sqldb, err := openDB(log)
	if err != nil {
		log.Fatalw("failed to init sqlite", "err", err)
	}
	defer func() {
		if cerr := sqldb.Close(); cerr != nil {
			log.Errorw("failed to close sqlite", "err", cerr)
		}
	}()

	// connect to the MQTT broker carrying sensors and switches
	broker, err := mqtt.Connect(viper.GetString("mqtt.broker"), viper.GetString("mqtt.client_id"))
	if err != nil {
		log.Fatalw("failed to connect to mqtt broker", "err", err)
	}
	defer broker.Close()

	cfg := climateConfig()

	// actuator tracking subscribes to switch state topics
	switches, err := actuator.New(broker, logger.Named("actuator"), cfg.Heater, cfg.Cooler)
	if err != nil {
		log.Fatalw("failed to subscribe to switch states", "err", err)
	}

	core, err := climate.New(cfg, switches, switches, logger.Named("climate"))
	if err != nil {
		log.Fatalw("invalid thermostat configuration", "err", err)
	}

	// wire dependencies
	repos := repository.NewRepository(sqldb)
	services := service.NewService(core, repos, log)
	apiHandler := handlers.NewHandler(services, log)

	// context for background goroutines
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// apply persisted settings before any sensor traffic arrives
	if err := services.Thermostat.Restore(ctx); err != nil {
		log.Fatalw("failed to restore persisted settings", "err", err)
	}

	// start the sensor feed
	feed := sensor.NewFeed(broker, services.Thermostat, logger.Named("sensor"), cfg.Sensor, cfg.HumiditySensor)
	if err := feed.Start(ctx); err != nil {
		log.Fatalw("failed to subscribe to sensors", "err", err)
	}

	// start keep-alive loop (via composed service)
	go services.KeepAlive.Run(ctx, cfg.KeepAlive)

	// start HTTP server
	srv := &server.Server{}
	runHTTPServer(srv, viper.GetString("port"), apiHandler, log)

	// graceful shutdown
	waitForShutdown(cancel, srv, log)
}

func loadConfig() error {
	viper.AddConfigPath("configs") // configs/config.yml
	viper.SetConfigName("config")

	viper.SetDefault("thermostat.cold_tolerance", climate.DefaultTolerance)
	viper.SetDefault("thermostat.hot_tolerance", climate.DefaultTolerance)
	viper.SetDefault("thermostat.precision", climate.PrecisionTenths)
	viper.SetDefault("mqtt.client_id", "dualtherm")

	return viper.ReadInConfig()
}

// openDB initializes the SQLite database using configuration.
func openDB(log *logger.Logger) (*sql.DB, error) {
	dbPath := viper.GetString("db.path")
	if dbPath == "" {
		log.Infow("db.path not set in config; using default file", "default", "app.db")
		dbPath = "app.db"
	}
	return db.InitDB(dbPath)
}

// climateConfig maps config keys to the typed controller configuration.
func climateConfig() climate.Config {
	return climate.Config{
		Heater:           viper.GetString("thermostat.heater"),
		Cooler:           viper.GetString("thermostat.cooler"),
		Sensor:           viper.GetString("thermostat.sensor"),
		HumiditySensor:   viper.GetString("thermostat.humidity_sensor"),
		ReverseCycle:     viper.GetBool("thermostat.reverse_cycle"),
		MinTemp:          viper.GetFloat64("thermostat.min_temp"),
		MaxTemp:          viper.GetFloat64("thermostat.max_temp"),
		TargetTemp:       optionalFloat("thermostat.target_temp"),
		TargetTempLow:    optionalFloat("thermostat.target_temp_low"),
		TargetTempHigh:   optionalFloat("thermostat.target_temp_high"),
		ColdTolerance:    viper.GetFloat64("thermostat.cold_tolerance"),
		HotTolerance:     viper.GetFloat64("thermostat.hot_tolerance"),
		MinCycleDuration: viper.GetDuration("thermostat.min_cycle_duration"),
		KeepAlive:        viper.GetDuration("thermostat.keep_alive"),
		InitialMode:      climate.Mode(viper.GetString("thermostat.initial_mode")),
		AwayTemp:         optionalFloat("thermostat.away_temp"),
		Precision:        viper.GetFloat64("thermostat.precision"),
	}
}

// optionalFloat distinguishes "not configured" from an explicit zero.
func optionalFloat(key string) *float64 {
	if !viper.IsSet(key) {
		return nil
	}
	v := viper.GetFloat64(key)
	return &v
}

// runHTTPServer runs the HTTP server in a separate goroutine.
func runHTTPServer(srv *server.Server, port string, handler *handlers.Handler, log *logger.Logger) {
	go func() {
		if port == "" {
			port = "8080"
		}
		if err := srv.Run(port, handler.InitRoutes()); err != nil {
			log.Fatalw("error starting server", "err", err)
		}
	}()
}

// waitForShutdown listens for termination signals and performs graceful shutdown.
func waitForShutdown(cancel context.CancelFunc, srv *server.Server, log *logger.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Infow("shutting down server...")

	// stop background goroutines
	cancel()

	// allow in-flight requests to complete
	ctx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalw("server forced to shutdown", "err", err)
	}
}
