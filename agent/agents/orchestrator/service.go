package orchestrator

import (
	"context"
	"errors"
	"time"

	"github.com/cloudwego/eino/compose"

	contractx "github.com/jagoss/tesis-umpe-supermarket-stock-prediction/agent/contract"
	nodex "github.com/jagoss/tesis-umpe-supermarket-stock-prediction/agent/nodes/orchestrator"
	"github.com/jagoss/tesis-umpe-supermarket-stock-prediction/pkg/metrics"
)

var (
	ErrInvalidQuestion = nodex.ErrInvalidQuestion
	ErrInvalidSession  = nodex.ErrInvalidSession
)

const defaultFallbackAnswer = "Sorry, I could not work that out right now. Could you rephrase the question or try again in a moment?"

type Config struct {
	FallbackAnswer string        `envconfig:"FALLBACK_ANSWER"`
	DecideTimeout  time.Duration `envconfig:"DECIDE_TIMEOUT" default:"30s"`
	ToolTimeout    time.Duration `envconfig:"TOOL_TIMEOUT" default:"20s"`
}

// Orchestrator runs the turn pipeline: read context, decide, route,
// invoke, record, reply. It owns its memory and router; the decider
// and tools are shared stateless collaborators.
type Orchestrator struct {
	decider contractx.Decider
	router  nodex.Router
	tools   []contractx.ToolDescriptor
	memory  contractx.Memory

	graphRunner compose.Runnable[nodex.GraphInput, nodex.GraphOutput]

	fallback      string
	decideTimeout time.Duration
	toolTimeout   time.Duration

	now func() time.Time
}

// Catalog is the router plus the descriptor listing shown to the
// decider each turn.
type Catalog interface {
	nodex.Router
	Descriptors() []contractx.ToolDescriptor
}

func New(
	decider contractx.Decider,
	catalog Catalog,
	memory contractx.Memory,
	cfg Config,
) (*Orchestrator, error) {
	if decider == nil {
		return nil, errors.New("decider is required")
	}
	if catalog == nil {
		return nil, errors.New("tool catalog is required")
	}
	if memory == nil {
		return nil, errors.New("conversation memory is required")
	}

	fallback := cfg.FallbackAnswer
	if fallback == "" {
		fallback = defaultFallbackAnswer
	}
	decideTimeout := cfg.DecideTimeout
	if decideTimeout <= 0 {
		decideTimeout = 30 * time.Second
	}
	toolTimeout := cfg.ToolTimeout
	if toolTimeout <= 0 {
		toolTimeout = 20 * time.Second
	}

	o := &Orchestrator{
		decider:       decider,
		router:        catalog,
		tools:         catalog.Descriptors(),
		memory:        memory,
		fallback:      fallback,
		decideTimeout: decideTimeout,
		toolTimeout:   toolTimeout,
		now:           time.Now,
	}

	graphRunner, err := o.compileProcessGraph(context.Background())
	if err != nil {
		return nil, err
	}
	o.graphRunner = graphRunner

	return o, nil
}

// Process answers one question for a session. It returns exactly one
// answer, real or fallback, for every accepted question; the only
// error paths are input validation and caller cancellation.
func (o *Orchestrator) Process(ctx context.Context, sessionID string, question string) (string, error) {
	started := o.now()
	out, err := o.graphRunner.Invoke(ctx, nodex.GraphInput{
		SessionID: sessionID,
		Question:  question,
	})
	if err != nil {
		if ctx.Err() != nil {
			metrics.RecordTurn("cancelled", time.Since(started))
		}
		return "", err
	}

	outcome := "answered"
	if out.Fallback {
		outcome = "fallback"
	}
	metrics.RecordTurn(outcome, time.Since(started))
	return out.Answer, nil
}
