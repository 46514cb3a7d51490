package prompt

import (
	_ "embed"
	"strings"
)

//go:embed template/decider.txt
var deciderRaw string

// Decider returns the decision oracle's system prompt. The embed is
// compile-time; trimming is cheap and safe to call concurrently.
func Decider() string {
	return strings.TrimSpace(deciderRaw)
}
