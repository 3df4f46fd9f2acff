package constants

import "time"

const (
	ExternalAPITimeout = 10 * time.Second
	RequestTimeout     = 2 * time.Minute
	ShutdownTimeout    = 5 * time.Second
)

const (
	// fixed by the persisted query
	HistoryPageSize  = 150
	DefaultBatchSize = 4
)

const (
	DefaultApexBase = 2800
	MajorTickLP     = 400
	MinorTickLP     = 200
)

const (
	ClientMaxConnsPerHost = 16
	ClientIdleDuration    = 1 * time.Minute
	ClientRateBurst       = 4
)
