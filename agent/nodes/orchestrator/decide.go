package orchestratornode

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	contractx "github.com/jagoss/tesis-umpe-supermarket-stock-prediction/agent/contract"
	"github.com/jagoss/tesis-umpe-supermarket-stock-prediction/pkg/metrics"
)

// Decide asks the oracle for the turn's action. Decision failures never
// abort the turn: a malformed or failed decision resolves to the
// fallback answer, with the real cause logged for operators. Only
// caller cancellation propagates as an error.
func Decide(
	ctx context.Context,
	in *TurnState,
	decider contractx.Decider,
	tools []contractx.ToolDescriptor,
	timeout time.Duration,
	fallback string,
) (*TurnState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: turn state is nil", contractx.ErrValidation)
	}
	if in.Resolved {
		return in, nil
	}

	dctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	started := time.Now()
	action, err := decider.Decide(dctx, contractx.DecideRequest{
		Question: in.Question,
		Context:  in.ContextText,
		Tools:    tools,
	})
	elapsed := time.Since(started)

	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		outcome := "error"
		if errors.Is(err, contractx.ErrMalformedDecision) {
			// A schema violation means the prompt and the parser have
			// drifted apart, not that the model service hiccuped.
			outcome = "malformed"
			log.Error().Err(err).
				Str("turn_id", in.TurnID).
				Str("session_id", in.SessionID).
				Msg("decision violates the action schema")
		} else {
			log.Error().Err(err).
				Str("turn_id", in.TurnID).
				Str("session_id", in.SessionID).
				Msg("decision oracle failed")
		}
		metrics.RecordDecision(outcome, elapsed)
		in.Answer = fallback
		in.Resolved = true
		in.Failed = true
		return in, nil
	}

	metrics.RecordDecision(string(action.Type), elapsed)
	in.Action = action

	if action.Type == contractx.ActionAnswer {
		log.Debug().
			Str("turn_id", in.TurnID).
			Str("session_id", in.SessionID).
			Msg("oracle answered directly")
		in.Answer = action.Answer
		in.Resolved = true
	} else {
		log.Debug().
			Str("turn_id", in.TurnID).
			Str("session_id", in.SessionID).
			Str("tool", action.Tool).
			Msg("oracle requested a tool")
	}
	return in, nil
}
