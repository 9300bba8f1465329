package leads

import "errors"

var (
	// ErrEmptyPayload is returned when both summary and transcript are missing
	ErrEmptyPayload = errors.New("missing summary or transcript")

	// ErrLeadNotFound is returned when a lead is not found
	ErrLeadNotFound = errors.New("lead not found")
)
