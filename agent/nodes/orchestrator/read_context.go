package orchestratornode

import (
	"fmt"

	contractx "github.com/jagoss/tesis-umpe-supermarket-stock-prediction/agent/contract"
)

// ReadContext loads the session's conversation window. It never fails
// the turn; a brand new session simply decides without history.
func ReadContext(in *TurnState, memory contractx.Memory) (*TurnState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: turn state is nil", contractx.ErrValidation)
	}
	in.ContextText = memory.Context(in.SessionID)
	return in, nil
}
