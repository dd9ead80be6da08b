package amqp

import (
	"encoding/json"

	"gagebu/internal/session"
)

// EncodeSaveEvent converts a save event to its wire form.
func EncodeSaveEvent(ev session.SaveEvent) ([]byte, error) {
	return json.Marshal(ev)
}

// DecodeSaveEvent parses a save event from its wire form.
func DecodeSaveEvent(data []byte) (session.SaveEvent, error) {
	var ev session.SaveEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		return session.SaveEvent{}, err
	}
	return ev, nil
}
