package model

import "time"

// Snapshot is the authoritative set of Connections observed in one tick,
// plus any recoverable collector errors (never fatal — collectors degrade
// to a partial result rather than aborting the tick).
type Snapshot struct {
	Timestamp   time.Time
	Connections []Connection
	Speed       SpeedState
	Errors      []string
}
