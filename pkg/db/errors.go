package db

import (
	"errors"
	"fmt"
	"time"
)

// ErrNotConnected is returned when the pool is used before Connect.
var ErrNotConnected = errors.New("no database connection")

// DatabaseError carries the backend's message text for a failed statement.
// The transaction has been rolled back and the connection returned to the
// pool by the time it surfaces.
type DatabaseError struct {
	Message string
}

func (e *DatabaseError) Error() string {
	return fmt.Sprintf("Database error: %s", e.Message)
}

// PoolExhaustionError means no connection became available within the
// configured acquire timeout. The process stays alive; only the request fails.
type PoolExhaustionError struct {
	Timeout time.Duration
}

func (e *PoolExhaustionError) Error() string {
	return fmt.Sprintf("no database connection became available within %s", e.Timeout)
}
