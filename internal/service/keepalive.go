package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"dualtherm"
	"dualtherm/internal/climate"
	"dualtherm/internal/logger"
	"dualtherm/internal/repository"
)

// KeepAliveService periodically re-runs the control loop so switches with
// their own safety timeout see a fresh command even when nothing changes.
type KeepAliveService struct {
	core      *climate.Controller
	eventRepo repository.EventRepo
	log       *logger.Logger
}

func NewKeepAliveService(core *climate.Controller, eventRepo repository.EventRepo, log *logger.Logger) *KeepAliveService {
	return &KeepAliveService{core: core, eventRepo: eventRepo, log: log}
}

// Run evaluates once at startup, then ticks at the given interval until
// ctx is canceled. A non-positive interval disables the periodic part.
func (s *KeepAliveService) Run(ctx context.Context, tick time.Duration) {
	_ = s.eventRepo.Append(ctx, dualtherm.ThermostatEvent{
		EventID:     uuid.NewString(),
		OccurredAt:  time.Now().UTC(),
		Type:        EventStartup,
		Description: "Thermostat control loop started",
		Metadata:    map[string]any{"keep_alive": tick.String()},
	})
	if err := s.core.Tick(ctx); err != nil {
		s.log.Errorw("startup evaluation failed", "err", err)
	}

	if tick <= 0 {
		return
	}

	t := time.NewTicker(tick)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if err := s.core.Tick(ctx); err != nil {
				s.log.Errorw("keep-alive evaluation failed", "err", err)
			}
		}
	}
}
