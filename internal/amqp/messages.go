package amqp

import (
	"encoding/json"
	"errors"

	"fintrack/internal/core"
)

var errMissingEventType = errors.New("ledger event without type")

func EncodeLedgerEvent(e core.LedgerEvent) ([]byte, error) {
	return json.Marshal(e)
}

// DecodeLedgerEvent parses a message body, rejecting events without a type
// or owner.
func DecodeLedgerEvent(data []byte) (core.LedgerEvent, error) {
	var e core.LedgerEvent
	if err := json.Unmarshal(data, &e); err != nil {
		return core.LedgerEvent{}, err
	}
	if e.Type == "" {
		return core.LedgerEvent{}, errMissingEventType
	}
	if e.Username == "" {
		return core.LedgerEvent{}, core.ErrEmptyUsername
	}
	return e, nil
}
