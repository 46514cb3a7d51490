package decider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/compose"

	contractx "github.com/jagoss/tesis-umpe-supermarket-stock-prediction/agent/contract"
)

// LLMDecider asks the decision oracle for one Action per turn. The oracle's
// raw output always passes through ParseDecision; the model is never trusted
// to be structurally valid.
type LLMDecider struct {
	runner compose.Runnable[map[string]any, contractx.Action]
}

func New(ctx context.Context, chatModel einomodel.BaseChatModel, systemPrompt string) (*LLMDecider, error) {
	if strings.TrimSpace(systemPrompt) == "" {
		return nil, fmt.Errorf("%w: decider system prompt is empty", contractx.ErrValidation)
	}

	runner, err := compileDeciderGraph(ctx, chatModel, systemPrompt)
	if err != nil {
		return nil, fmt.Errorf("%w: compile decider graph: %v", contractx.ErrModelInvoke, err)
	}
	return &LLMDecider{runner: runner}, nil
}

func (d *LLMDecider) Decide(ctx context.Context, req contractx.DecideRequest) (contractx.Action, error) {
	if strings.TrimSpace(req.Question) == "" {
		return contractx.Action{}, fmt.Errorf("%w: question is required", contractx.ErrValidation)
	}
	if len(req.Tools) == 0 {
		return contractx.Action{}, fmt.Errorf("%w: tool catalog is empty", contractx.ErrValidation)
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return contractx.Action{}, fmt.Errorf("%w: marshal decide payload: %v", contractx.ErrValidation, err)
	}

	action, err := d.runner.Invoke(ctx, map[string]any{
		"input": string(payload),
	})
	if err != nil {
		if errors.Is(err, contractx.ErrMalformedDecision) {
			return contractx.Action{}, err
		}
		return contractx.Action{}, fmt.Errorf("%w: decider invoke: %v", contractx.ErrModelInvoke, err)
	}
	return action, nil
}
