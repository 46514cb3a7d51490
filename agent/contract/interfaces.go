package contract

import "context"

// Tool is a uniform capability: text in, text out. Implementations must
// accept a non-empty input, hold no per-call mutable state, and report
// failures through the sentinel taxonomy in errors.go.
type Tool interface {
	Name() string
	Description() string
	Execute(ctx context.Context, input string) (string, error)
}

// Decider turns a question plus conversation context and tool catalog into
// exactly one Action. Unparseable oracle output is ErrMalformedDecision,
// never a guessed action.
type Decider interface {
	Decide(ctx context.Context, req DecideRequest) (Action, error)
}

// Memory is the per-session conversation log. Context never fails a turn;
// a Record error means durable persistence failed and is a warning only,
// the in-process log is already updated.
type Memory interface {
	Context(sessionID string) string
	Record(ctx context.Context, sessionID string, e Entry) error
}

// TranscriptStore is the durable append-only backend behind Memory.
type TranscriptStore interface {
	Append(ctx context.Context, sessionID string, e Entry) error
}
