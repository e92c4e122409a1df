package fetcher

import "time"

type Config struct {
	// Enabled false skips the network entirely; every Outcome is degraded.
	Enabled bool
	Timeout time.Duration
}
