package decider

import (
	"context"
	"errors"
	"testing"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	contractx "github.com/jagoss/tesis-umpe-supermarket-stock-prediction/agent/contract"
)

type fakeChatModel struct {
	responses []*schema.Message
	err       error
	idx       int
}

func (f *fakeChatModel) Generate(ctx context.Context, input []*schema.Message, opts ...einomodel.Option) (*schema.Message, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.idx >= len(f.responses) {
		return nil, errors.New("no fake response left")
	}
	msg := f.responses[f.idx]
	f.idx++
	return msg, nil
}

func (f *fakeChatModel) Stream(ctx context.Context, input []*schema.Message, opts ...einomodel.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, errors.New("stream not implemented in fake model")
}

func (f *fakeChatModel) WithTools(tools []*schema.ToolInfo) (einomodel.ToolCallingChatModel, error) {
	return f, nil
}

func catalog() []contractx.ToolDescriptor {
	return []contractx.ToolDescriptor{
		{Name: "inventory.query", Description: "Query current product stock."},
		{Name: "stock.predict", Description: "Forecast future stock."},
	}
}

func TestDecideInvoke(t *testing.T) {
	t.Parallel()

	fake := &fakeChatModel{
		responses: []*schema.Message{
			{Content: `{"type":"invoke","tool":"stock.predict","argument":"forecast for SKU-42 next week"}`},
		},
	}

	d, err := New(context.Background(), fake, "decider prompt")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	action, err := d.Decide(context.Background(), contractx.DecideRequest{
		Question: "What is the forecasted stock for SKU-42 next week?",
		Context:  "User: hi\nAssistant: hello",
		Tools:    catalog(),
	})
	if err != nil {
		t.Fatalf("Decide() error = %v", err)
	}
	if action.Type != contractx.ActionInvoke || action.Tool != "stock.predict" {
		t.Fatalf("unexpected action: %+v", action)
	}
}

func TestDecideDirectAnswer(t *testing.T) {
	t.Parallel()

	fake := &fakeChatModel{
		responses: []*schema.Message{
			{Content: `{"type":"answer","answer":"You already asked: 42 units."}`},
		},
	}

	d, err := New(context.Background(), fake, "decider prompt")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	action, err := d.Decide(context.Background(), contractx.DecideRequest{
		Question: "Remind me what you said about SKU-42.",
		Tools:    catalog(),
	})
	if err != nil {
		t.Fatalf("Decide() error = %v", err)
	}
	if action.Type != contractx.ActionAnswer {
		t.Fatalf("unexpected action: %+v", action)
	}
}

func TestDecideMalformedOracleOutput(t *testing.T) {
	t.Parallel()

	fake := &fakeChatModel{
		responses: []*schema.Message{
			{Content: "let me think about that..."},
		},
	}

	d, err := New(context.Background(), fake, "decider prompt")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	_, err = d.Decide(context.Background(), contractx.DecideRequest{
		Question: "anything",
		Tools:    catalog(),
	})
	if !errors.Is(err, contractx.ErrMalformedDecision) {
		t.Fatalf("expected ErrMalformedDecision, got %v", err)
	}
}

func TestDecideOracleFailure(t *testing.T) {
	t.Parallel()

	fake := &fakeChatModel{err: errors.New("connection refused")}

	d, err := New(context.Background(), fake, "decider prompt")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	_, err = d.Decide(context.Background(), contractx.DecideRequest{
		Question: "anything",
		Tools:    catalog(),
	})
	if !errors.Is(err, contractx.ErrModelInvoke) {
		t.Fatalf("expected ErrModelInvoke, got %v", err)
	}
}

func TestDecideValidation(t *testing.T) {
	t.Parallel()

	d, err := New(context.Background(), &fakeChatModel{}, "decider prompt")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if _, err := d.Decide(context.Background(), contractx.DecideRequest{Tools: catalog()}); !errors.Is(err, contractx.ErrValidation) {
		t.Fatalf("expected ErrValidation for empty question, got %v", err)
	}
	if _, err := d.Decide(context.Background(), contractx.DecideRequest{Question: "q"}); !errors.Is(err, contractx.ErrValidation) {
		t.Fatalf("expected ErrValidation for empty catalog, got %v", err)
	}
}
