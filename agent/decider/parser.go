package decider

import (
	"encoding/json"
	"fmt"
	"strings"

	contractx "github.com/jagoss/tesis-umpe-supermarket-stock-prediction/agent/contract"
)

type rawDecision struct {
	Type     string `json:"type"`
	Answer   string `json:"answer"`
	Tool     string `json:"tool"`
	Argument string `json:"argument"`
}

// ParseDecision maps the oracle's raw textual output onto an Action. It is
// the hard boundary of the decision contract: anything that does not decode
// into exactly one recognized action shape is ErrMalformedDecision. Routing
// never sees an ambiguous action.
func ParseDecision(content string) (contractx.Action, error) {
	body := extractJSONObject(content)
	if body == "" {
		return contractx.Action{}, fmt.Errorf("%w: no JSON object in oracle output", contractx.ErrMalformedDecision)
	}

	var raw rawDecision
	if err := json.Unmarshal([]byte(body), &raw); err != nil {
		return contractx.Action{}, fmt.Errorf("%w: %v", contractx.ErrMalformedDecision, err)
	}

	switch contractx.ActionType(strings.TrimSpace(raw.Type)) {
	case contractx.ActionAnswer:
		answer := strings.TrimSpace(raw.Answer)
		if answer == "" {
			return contractx.Action{}, fmt.Errorf("%w: answer action with empty answer", contractx.ErrMalformedDecision)
		}
		if strings.TrimSpace(raw.Tool) != "" {
			return contractx.Action{}, fmt.Errorf("%w: answer action names a tool", contractx.ErrMalformedDecision)
		}
		return contractx.DirectAnswer(answer), nil

	case contractx.ActionInvoke:
		tool := strings.TrimSpace(raw.Tool)
		argument := strings.TrimSpace(raw.Argument)
		if tool == "" {
			return contractx.Action{}, fmt.Errorf("%w: invoke action without tool name", contractx.ErrMalformedDecision)
		}
		if argument == "" {
			return contractx.Action{}, fmt.Errorf("%w: invoke action without argument", contractx.ErrMalformedDecision)
		}
		return contractx.Invoke(tool, argument), nil

	default:
		return contractx.Action{}, fmt.Errorf("%w: unrecognized action type %q", contractx.ErrMalformedDecision, raw.Type)
	}
}

// extractJSONObject tolerates markdown fences and prose around the object,
// nothing more. Returns "" when no object delimiters are present.
func extractJSONObject(content string) string {
	trimmed := strings.TrimSpace(content)
	if strings.HasPrefix(trimmed, "```") {
		trimmed = strings.TrimPrefix(trimmed, "```json")
		trimmed = strings.TrimPrefix(trimmed, "```")
		trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
		trimmed = strings.TrimSpace(trimmed)
	}

	start := strings.Index(trimmed, "{")
	end := strings.LastIndex(trimmed, "}")
	if start < 0 || end <= start {
		return ""
	}
	return trimmed[start : end+1]
}
