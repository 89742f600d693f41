package engine

import "errors"

var (
	// ErrUnknownEvent indicates an event the engine does not subscribe to.
	ErrUnknownEvent = errors.New("unknown event")

	// ErrLedger indicates the ledger rejected a planned transition.
	ErrLedger = errors.New("ledger update failed")
)
