package events

import "time"

// MockStart is emitted before variables and data are synthesized for an
// operation.
type MockStart struct {
	OperationName string
	OperationType string
}

// MockFinish is emitted after a mock response is produced.
type MockFinish struct {
	OperationName string
	OperationType string
	Err           error
	Duration      time.Duration
}
