package cache

import "time"

// TTLs per cached data type.
const (
	FundamentalsTTL = 24 * time.Hour
	DefaultTTL      = FundamentalsTTL
)
