package config

import "time"

// Default values.
const (
	DefaultTimeout = 5 * time.Minute
	DefaultWorkers = 0
)
