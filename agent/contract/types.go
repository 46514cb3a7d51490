package contract

import (
	"strings"
	"time"
)

type ActionType string

const (
	// ActionAnswer means the decider produced the final answer itself.
	ActionAnswer ActionType = "answer"
	// ActionInvoke means a named tool must be executed with an argument.
	ActionInvoke ActionType = "invoke"
)

// Action is the decider's structured output for one turn: either a direct
// answer or a single tool invocation. Exactly one variant is populated.
type Action struct {
	Type     ActionType `json:"type"`
	Answer   string     `json:"answer,omitempty"`
	Tool     string     `json:"tool,omitempty"`
	Argument string     `json:"argument,omitempty"`
}

func DirectAnswer(text string) Action {
	return Action{Type: ActionAnswer, Answer: text}
}

func Invoke(tool, argument string) Action {
	return Action{Type: ActionInvoke, Tool: tool, Argument: argument}
}

// ToolDescriptor is the catalog entry shown to the decider.
type ToolDescriptor struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type DecideRequest struct {
	Question string           `json:"question"`
	Context  string           `json:"context"`
	Tools    []ToolDescriptor `json:"tools"`
}

// Entry is one completed turn of a session: question and answer are
// immutable once appended, ordered by At.
type Entry struct {
	Question string    `json:"question"`
	Answer   string    `json:"answer"`
	At       time.Time `json:"at"`
}

func (e Entry) Empty() bool {
	return strings.TrimSpace(e.Question) == "" && strings.TrimSpace(e.Answer) == ""
}
