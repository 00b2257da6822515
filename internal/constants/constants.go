package constants

import "time"

const (
	DatabaseTimeout = 5 * time.Second
	WalletTimeout   = 10 * time.Second
	RequestTimeout  = 30 * time.Second
)

const (
	DBMaxOpenConns    = 4
	DBMaxIdleConns    = 4
	DBConnMaxLifetime = 1 * time.Hour
	DBMaxIdleTime     = 10 * time.Minute
)

const (
	// QueueDepth bounds each write-queue worker's backlog.
	QueueDepth = 256
	TaskIDSize = 8
)

const (
	SessionSweepInterval = 1 * time.Second
	StaticTypeChoice     = "1"
	DynamicTypeChoice    = "2"
	CancelKeyword        = "cancel"
	DoneKeyword          = "done"
	ConfirmKeyword       = "confirm"
)

const (
	ShutdownTimeout = 5 * time.Second
)
