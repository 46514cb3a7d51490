package contract

import "errors"

var (
	// Tool failure taxonomy. Unavailable and Timeout are transient and may
	// be retried; InvalidArgument is permanent and must fail fast.
	ErrUnavailable     = errors.New("tool unavailable")
	ErrInvalidArgument = errors.New("invalid tool argument")
	ErrTimeout         = errors.New("tool call timed out")

	// ErrRetriesExhausted is terminal for the turn: the retry budget is
	// spent and the last underlying cause is carried in the wrap chain.
	ErrRetriesExhausted = errors.New("retry budget exhausted")

	ErrUnknownTool       = errors.New("unknown tool")
	ErrModelInvoke       = errors.New("model invoke failed")
	ErrMalformedDecision = errors.New("model decision violates schema")
	ErrValidation        = errors.New("validation failed")
)

// IsTransient reports whether err may succeed on a later attempt.
func IsTransient(err error) bool {
	return errors.Is(err, ErrUnavailable) || errors.Is(err, ErrTimeout)
}
