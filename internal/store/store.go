// ABOUTME: Store interface and data types for invocation audit persistence
// ABOUTME: Defines InvocationRecord, filter options, and the Store interface

package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a requested entity does not exist
var ErrNotFound = errors.New("not found")

// Outcome classifies how a tool invocation ended.
type Outcome string

const (
	OutcomeOK          Outcome = "ok"           // tool returned a result
	OutcomeInvalidArgs Outcome = "invalid_args" // arguments did not fit the tool's shape
	OutcomeError       Outcome = "error"        // tool ran and failed
)

// ValidOutcomes lists all valid invocation outcomes.
var ValidOutcomes = []Outcome{
	OutcomeOK,
	OutcomeInvalidArgs,
	OutcomeError,
}

// InvocationRecord is one audited tool invocation.
type InvocationRecord struct {
	ID         string    // UUID v4
	Tool       string    // registered tool name
	Outcome    Outcome   // how the invocation ended
	DurationMS int64     // wall-clock duration in milliseconds
	Timestamp  time.Time // when the invocation started
	Error      string    // failure detail, empty on success (bounded)
}

// InvocationFilter specifies filtering options for listing invocations.
type InvocationFilter struct {
	Since   *time.Time // records at or after this time
	Until   *time.Time // records at or before this time
	Tool    *string    // filter by tool name
	Outcome *Outcome   // filter by outcome
	Limit   int        // max results (default 100, max 1000)
}

// Store defines the interface for invocation audit persistence
type Store interface {
	RecordInvocation(ctx context.Context, rec *InvocationRecord) error
	GetInvocation(ctx context.Context, id string) (*InvocationRecord, error)
	ListInvocations(ctx context.Context, f InvocationFilter) ([]InvocationRecord, error)

	// Close releases any resources held by the store
	Close() error
}
