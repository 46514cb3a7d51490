package orchestratornode

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	contractx "github.com/jagoss/tesis-umpe-supermarket-stock-prediction/agent/contract"
)

// RecordExchange appends the completed exchange to memory. Fallback
// turns are not recorded, and a cancelled turn writes nothing, so a
// session's history only ever contains real answers. Persistence
// failures downgrade to warnings and never cost the user their answer.
func RecordExchange(ctx context.Context, in *TurnState, memory contractx.Memory, nowFn func() time.Time) (*TurnState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: turn state is nil", contractx.ErrValidation)
	}
	if in.Failed {
		return in, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	err := memory.Record(ctx, in.SessionID, contractx.Entry{
		Question: in.Question,
		Answer:   in.Answer,
		At:       nowFn().UTC(),
	})
	if err != nil {
		log.Warn().Err(err).
			Str("turn_id", in.TurnID).
			Str("session_id", in.SessionID).
			Msg("recording exchange failed")
	}
	return in, nil
}

func FinalizeReply(in *TurnState) (GraphOutput, error) {
	if in == nil || !in.Resolved {
		return GraphOutput{}, fmt.Errorf("%w: turn finished without an answer", contractx.ErrValidation)
	}
	return GraphOutput{Answer: in.Answer, Fallback: in.Failed}, nil
}
