package application

import (
	"errors"
	"fmt"
)

// Sentinel errors for common conditions
var (
	ErrNotFound         = errors.New("not found")
	ErrNotReady         = errors.New("document not indexed yet")
	ErrInvalidTarget    = errors.New("invalid target")
	ErrUnsupportedStore = errors.New("unsupported store")
	ErrUnknownWorkspace = errors.New("unknown workspace")
)

// ValidationError represents a validation failure with details
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// RefreshError records a failed refresh of one node. Refresh failures are
// logged and the refresh is abandoned; the graph is left as it was.
type RefreshError struct {
	ID  string
	Op  string
	Err error
}

func (e *RefreshError) Error() string {
	return fmt.Sprintf("refresh %s (%s): %v", e.ID, e.Op, e.Err)
}

func (e *RefreshError) Unwrap() error {
	return e.Err
}

// StoreError reports a node id whose store has no registered data store
type StoreError struct {
	ID    string
	Store string
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("no data store %q for %s", e.Store, e.ID)
}

func (e *StoreError) Is(target error) bool {
	return target == ErrUnsupportedStore
}
