package orchestratornode

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	contractx "github.com/jagoss/tesis-umpe-supermarket-stock-prediction/agent/contract"
)

// Router resolves a decided tool name against the catalog.
type Router interface {
	Select(name string) (contractx.Tool, error)
}

// Route resolves the requested tool. An unknown tool name is a
// catalog/prompt mismatch, so it is logged as a configuration anomaly
// rather than a service error, and the turn resolves to the fallback.
func Route(in *TurnState, router Router, fallback string) (*TurnState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: turn state is nil", contractx.ErrValidation)
	}
	if in.Resolved {
		return in, nil
	}

	selected, err := router.Select(in.Action.Tool)
	if err != nil {
		if errors.Is(err, contractx.ErrUnknownTool) {
			log.Error().Err(err).
				Str("turn_id", in.TurnID).
				Str("session_id", in.SessionID).
				Str("tool", in.Action.Tool).
				Msg("UnknownTool: oracle named a tool outside the catalog")
		} else {
			log.Error().Err(err).
				Str("turn_id", in.TurnID).
				Str("session_id", in.SessionID).
				Str("tool", in.Action.Tool).
				Msg("tool routing failed")
		}
		in.Answer = fallback
		in.Resolved = true
		in.Failed = true
		return in, nil
	}

	in.Tool = selected
	return in, nil
}

// Invoke executes the routed tool under its own timeout. Terminal tool
// failures, including an exhausted retry budget, resolve the turn to
// the fallback answer; caller cancellation propagates as an error.
func Invoke(ctx context.Context, in *TurnState, timeout time.Duration, fallback string) (*TurnState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: turn state is nil", contractx.ErrValidation)
	}
	if in.Resolved {
		return in, nil
	}
	if in.Tool == nil {
		return nil, fmt.Errorf("%w: no tool routed for invocation", contractx.ErrValidation)
	}

	tctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	started := time.Now()
	output, err := in.Tool.Execute(tctx, in.Action.Argument)
	elapsed := time.Since(started)

	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		event := log.Error().Err(err).
			Str("turn_id", in.TurnID).
			Str("session_id", in.SessionID).
			Str("tool", in.Tool.Name()).
			Dur("latency", elapsed)
		if errors.Is(err, contractx.ErrRetriesExhausted) {
			event.Msg("ResourceExhausted: tool failed after full retry budget")
		} else {
			event.Msg("tool invocation failed")
		}
		in.Answer = fallback
		in.Resolved = true
		in.Failed = true
		return in, nil
	}

	log.Debug().
		Str("turn_id", in.TurnID).
		Str("session_id", in.SessionID).
		Str("tool", in.Tool.Name()).
		Dur("latency", elapsed).
		Msg("tool invocation succeeded")

	in.Answer = output
	in.Resolved = true
	return in, nil
}
