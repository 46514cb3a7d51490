package memory

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"

	contractx "github.com/jagoss/tesis-umpe-supermarket-stock-prediction/agent/contract"
	"github.com/jagoss/tesis-umpe-supermarket-stock-prediction/pkg/metrics"
)

type Config struct {
	// Window is the number of most recent exchanges rendered into the
	// decision context for each session.
	Window int `envconfig:"MEMORY_WINDOW" default:"10"`
}

// WindowLog keeps the full exchange history per session in memory and
// renders only the trailing window into prompt context. An optional
// TranscriptStore receives every exchange for durable storage; its
// failures are reported but never surface to the caller.
type WindowLog struct {
	mu       sync.Mutex
	sessions map[string][]contractx.Entry

	window int
	store  contractx.TranscriptStore
}

var _ contractx.Memory = (*WindowLog)(nil)

func NewWindowLog(conf Config, store contractx.TranscriptStore) *WindowLog {
	window := conf.Window
	if window <= 0 {
		window = 10
	}
	return &WindowLog{
		sessions: make(map[string][]contractx.Entry),
		window:   window,
		store:    store,
	}
}

// Context renders the last window of exchanges for a session in
// chronological order. Unknown sessions render as empty context.
func (w *WindowLog) Context(sessionID string) string {
	w.mu.Lock()
	entries := w.sessions[sessionID]
	if len(entries) > w.window {
		entries = entries[len(entries)-w.window:]
	}
	entries = append([]contractx.Entry(nil), entries...)
	w.mu.Unlock()

	if len(entries) == 0 {
		return ""
	}

	var sb strings.Builder
	for i, e := range entries {
		if i > 0 {
			sb.WriteByte('\n')
		}
		fmt.Fprintf(&sb, "User: %s\nAssistant: %s", e.Question, e.Answer)
	}
	return sb.String()
}

// Record appends one completed exchange to the session log and forwards
// it to the transcript store when one is configured.
func (w *WindowLog) Record(ctx context.Context, sessionID string, e contractx.Entry) error {
	w.mu.Lock()
	w.sessions[sessionID] = append(w.sessions[sessionID], e)
	w.mu.Unlock()

	if w.store == nil {
		return nil
	}
	if err := w.store.Append(ctx, sessionID, e); err != nil {
		metrics.RecordMemoryPersistFailure()
		log.Warn().Err(err).Str("session_id", sessionID).Msg("transcript append failed")
	}
	return nil
}
