package decider

import (
	"context"
	"fmt"

	einomodel "github.com/cloudwego/eino/components/model"
	einoprompt "github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	contractx "github.com/jagoss/tesis-umpe-supermarket-stock-prediction/agent/contract"
)

func compileDeciderGraph(
	ctx context.Context,
	chatModel einomodel.BaseChatModel,
	systemPrompt string,
) (compose.Runnable[map[string]any, contractx.Action], error) {
	template := einoprompt.FromMessages(
		schema.FString,
		schema.SystemMessage(systemPrompt),
		schema.UserMessage("{input}"),
	)

	graph := compose.NewGraph[map[string]any, contractx.Action]()
	if err := graph.AddChatTemplateNode("prompt", template); err != nil {
		return nil, fmt.Errorf("add decider prompt node: %w", err)
	}
	if err := graph.AddChatModelNode("model", chatModel); err != nil {
		return nil, fmt.Errorf("add decider model node: %w", err)
	}
	if err := graph.AddLambdaNode("parse_decision",
		compose.InvokableLambda(func(ctx context.Context, msg *schema.Message) (contractx.Action, error) {
			if msg == nil {
				return contractx.Action{}, fmt.Errorf("%w: oracle returned no message", contractx.ErrMalformedDecision)
			}
			return ParseDecision(msg.Content)
		}),
	); err != nil {
		return nil, fmt.Errorf("add decider parse node: %w", err)
	}

	edges := [][2]string{
		{compose.START, "prompt"},
		{"prompt", "model"},
		{"model", "parse_decision"},
		{"parse_decision", compose.END},
	}
	for _, edge := range edges {
		if err := graph.AddEdge(edge[0], edge[1]); err != nil {
			return nil, fmt.Errorf("add decider edge %s->%s: %w", edge[0], edge[1], err)
		}
	}

	runner, err := graph.Compile(ctx, compose.WithGraphName("decider.decision_graph"))
	if err != nil {
		return nil, fmt.Errorf("compile decider graph: %w", err)
	}
	return runner, nil
}
