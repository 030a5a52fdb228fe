// Package sensor subscribes to the measurement topics and forwards raw
// readings to the thermostat.
package sensor

import (
	"context"
	"fmt"

	"dualtherm/internal/logger"
	"dualtherm/internal/mqtt"
)

// Handler consumes raw sensor payloads. Values are passed through as
// published; the consumer owns parsing and fault handling.
type Handler interface {
	HandleSensorReading(ctx context.Context, entityID, value string)
}

// Feed wires sensor topics to a Handler. The entity id doubles as the
// MQTT topic.
type Feed struct {
	client   mqtt.Client
	handler  Handler
	log      *logger.Logger
	entities []string
}

// NewFeed builds a feed for the given entity ids. Empty ids (unconfigured
// optional sensors) are skipped.
func NewFeed(client mqtt.Client, handler Handler, log *logger.Logger, entityIDs ...string) *Feed {
	f := &Feed{client: client, handler: handler, log: log}
	for _, id := range entityIDs {
		if id != "" {
			f.entities = append(f.entities, id)
		}
	}
	return f
}

// Start subscribes to every entity topic. Deliveries are handed to the
// handler with the feed's base context.
func (f *Feed) Start(ctx context.Context) error {
	for _, id := range f.entities {
		id := id
		err := f.client.Subscribe(id, func(_ string, payload []byte) {
			f.handler.HandleSensorReading(ctx, id, string(payload))
		})
		if err != nil {
			return fmt.Errorf("subscribe sensor %s: %w", id, err)
		}
		f.log.Infow("listening for sensor readings", "entity", id)
	}
	return nil
}
