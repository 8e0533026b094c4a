package shared

import "fmt"

// FetchError reports a failed load or subscription. Prior local state is kept.
type FetchError struct {
	Op         string
	Collection string
	Err        error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Collection, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

type SubmitStage string

const (
	StageBooking SubmitStage = "booking"
	StageSlot    SubmitStage = "slot"
	StageCommit  SubmitStage = "commit"
)

// SubmitError reports a failed write during submit. The session stays selectable for retry.
type SubmitError struct {
	SlotID string
	Stage  SubmitStage
	Err    error
}

func (e *SubmitError) Error() string {
	return fmt.Sprintf("submit slot %s failed at %s write: %v", e.SlotID, e.Stage, e.Err)
}

func (e *SubmitError) Unwrap() error {
	return e.Err
}
