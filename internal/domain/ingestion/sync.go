package ingestion

import "fmt"

// SyncSummary holds the number of records applied per entity collection
// during one sync run. On a failed run it carries the counts applied before
// the failure.
type SyncSummary struct {
	Customers int `json:"customers"`
	Products  int `json:"products"`
	Orders    int `json:"orders"`
}

// Total returns the total number of applied records
func (s SyncSummary) Total() int {
	return s.Customers + s.Products + s.Orders
}

// SyncError reports a failed sync run. Stage names the collection being
// pulled when the failure happened and Partial carries everything applied up
// to that point. Work from completed stages is kept, not rolled back.
type SyncError struct {
	Stage   EntityKind
	Partial SyncSummary
	Err     error
}

// Error implements the error interface
func (e *SyncError) Error() string {
	return fmt.Sprintf("sync failed during %s pull: %v", e.Stage, e.Err)
}

// Unwrap returns the underlying cause
func (e *SyncError) Unwrap() error {
	return e.Err
}

// NewSyncError wraps a stage failure with the partial progress made
func NewSyncError(stage EntityKind, partial SyncSummary, err error) *SyncError {
	return &SyncError{Stage: stage, Partial: partial, Err: err}
}
