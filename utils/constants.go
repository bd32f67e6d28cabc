// File: utils/constants.go
package utils

import "time"

// SessionCachePrefix is the prefix used for Redis session snapshot keys.
const SessionCachePrefix = "session:"

// PhoneFlowPrefix is the prefix used for Redis phone OTP flow keys.
const PhoneFlowPrefix = "phoneFlow:"

// SessionCacheTTL is the time-to-live for persisted session snapshots.
const SessionCacheTTL = 24 * time.Hour
