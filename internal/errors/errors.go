package errors

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrNotFound is returned when a coin has no persisted records.
var ErrNotFound = errors.New("no data found for the specified coin")

// ErrInvalidArgument reports a missing or malformed caller-supplied value.
type ErrInvalidArgument struct {
	Field   string
	Message string
}

func (e *ErrInvalidArgument) Error() string {
	return e.Field + ": " + e.Message
}

// UpstreamError wraps a total failure of the price source: the whole
// ingestion cycle was aborted and nothing was written.
type UpstreamError struct {
	Err error
}

func (e *UpstreamError) Error() string {
	return "upstream price fetch failed: " + e.Err.Error()
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// PersistenceError wraps a storage-layer fault on a read or write.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence failure during %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// PartialIngestionFailure collects per-coin failures from a cycle that
// still persisted the remaining coins. It is reported to the scheduler,
// never to HTTP callers.
type PartialIngestionFailure struct {
	Failures map[string]error
}

func (e *PartialIngestionFailure) Error() string {
	coins := make([]string, 0, len(e.Failures))
	for coin := range e.Failures {
		coins = append(coins, coin)
	}
	sort.Strings(coins)
	return fmt.Sprintf("ingestion failed for %d coin(s): %s", len(coins), strings.Join(coins, ", "))
}
