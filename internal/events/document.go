package events

import "time"

// DocumentBuildStart is emitted before the operations of a document are
// resolved against the schema.
type DocumentBuildStart struct {
	Document string
}

// DocumentBuildFinish is emitted after a document build, successful or not.
type DocumentBuildFinish struct {
	Document   string
	Operations []string
	Err        error
	Duration   time.Duration
}
