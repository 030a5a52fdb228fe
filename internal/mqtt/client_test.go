package mqtt

import (
	"errors"
	"testing"
)

func TestFakeClient_RecordsPublishes(t *testing.T) {
	f := NewFakeClient()

	if err := f.Publish("home/switch/heater/set", []byte("ON"), false); err != nil {
		t.Fatalf("Publish(): %v", err)
	}
	if err := f.Publish("home/switch/heater/set", []byte("OFF"), false); err != nil {
		t.Fatalf("Publish(): %v", err)
	}

	if len(f.Published) != 2 {
		t.Fatalf("published %d messages, want 2", len(f.Published))
	}
	last, ok := f.LastPublished("home/switch/heater/set")
	if !ok || string(last.Payload) != "OFF" {
		t.Fatalf("LastPublished = %q, %v", last.Payload, ok)
	}
}

func TestFakeClient_DeliverRoutesToHandler(t *testing.T) {
	f := NewFakeClient()

	var gotTopic, gotPayload string
	err := f.Subscribe("home/sensor/temperature", func(topic string, payload []byte) {
		gotTopic, gotPayload = topic, string(payload)
	})
	if err != nil {
		t.Fatalf("Subscribe(): %v", err)
	}

	f.Deliver("home/sensor/temperature", []byte("21.4"))
	if gotTopic != "home/sensor/temperature" || gotPayload != "21.4" {
		t.Fatalf("handler got (%q, %q)", gotTopic, gotPayload)
	}

	// Messages on unsubscribed topics are dropped.
	f.Deliver("home/sensor/other", []byte("x"))
	if gotPayload != "21.4" {
		t.Fatalf("unsubscribed delivery reached handler")
	}
}

func TestFakeClient_ErrorsAndClose(t *testing.T) {
	f := NewFakeClient()
	f.PublishErr = errors.New("broker gone")

	if err := f.Publish("t", nil, false); err == nil {
		t.Fatalf("expected publish error")
	}
	f.Close()
	if !f.Closed {
		t.Fatalf("Close() not recorded")
	}
}
