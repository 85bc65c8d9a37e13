package replay

import (
	"fmt"
)

// ReplayError points at the first step that could not be replayed.
// StepIndex is -1 for problems with the spec itself.
type ReplayError struct {
	StepIndex int32          `json:"step_index"`
	Reason    string         `json:"reason"`
	Message   string         `json:"message"`
	Expected  *ExpectedState `json:"expected,omitempty"`
}

// ExpectedState is what the hand was waiting for when a step failed.
type ExpectedState struct {
	Seat         uint16   `json:"seat"`
	Street       string   `json:"street,omitempty"`
	LegalActions []string `json:"legal_actions,omitempty"`
	ToCall       int64    `json:"to_call,omitempty"`
	MinRaise     int64    `json:"min_raise,omitempty"`
	MaxRaise     int64    `json:"max_raise,omitempty"`
}

func (e *ReplayError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("replay error(step=%d reason=%s): %s", e.StepIndex, e.Reason, e.Message)
}

func specError(reason, format string, args ...any) *ReplayError {
	return &ReplayError{StepIndex: -1, Reason: reason, Message: fmt.Sprintf(format, args...)}
}
