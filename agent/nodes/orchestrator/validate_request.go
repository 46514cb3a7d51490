package orchestratornode

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	contractx "github.com/jagoss/tesis-umpe-supermarket-stock-prediction/agent/contract"
)

var (
	ErrInvalidQuestion = errors.New("question is empty")
	ErrInvalidSession  = errors.New("session id is empty")
)

type GraphInput struct {
	SessionID string
	Question  string
}

type GraphOutput struct {
	Answer   string
	Fallback bool
}

// TurnState carries one question through the turn pipeline. Resolved
// means an answer is already set and downstream nodes pass through;
// Failed additionally marks the answer as the fallback text.
type TurnState struct {
	SessionID string
	Question  string
	TurnID    string
	StartedAt time.Time

	ContextText string
	Action      contractx.Action
	Tool        contractx.Tool

	Answer   string
	Resolved bool
	Failed   bool
}

func ValidateRequest(in GraphInput, nowFn func() time.Time) (*TurnState, error) {
	sessionID := strings.TrimSpace(in.SessionID)
	if sessionID == "" {
		return nil, ErrInvalidSession
	}

	question := strings.TrimSpace(in.Question)
	if question == "" {
		return nil, ErrInvalidQuestion
	}

	return &TurnState{
		SessionID: sessionID,
		Question:  question,
		TurnID:    uuid.NewString(),
		StartedAt: nowFn().UTC(),
	}, nil
}
