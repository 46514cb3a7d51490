package memory

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"

	contractx "github.com/jagoss/tesis-umpe-supermarket-stock-prediction/agent/contract"
)

type TranscriptConfig struct {
	DSN string `envconfig:"TRANSCRIPT_DSN"`
}

type conversationTurn struct {
	bun.BaseModel `bun:"table:conversation_turns,alias:ct"`

	ID        int64     `bun:"id,pk,autoincrement"`
	SessionID string    `bun:"session_id,notnull"`
	Question  string    `bun:"question,notnull"`
	Answer    string    `bun:"answer,notnull"`
	CreatedAt time.Time `bun:"created_at,notnull"`
}

// Transcript persists completed exchanges to Postgres so conversations
// survive restarts and can be audited out of band.
type Transcript struct {
	db bun.IDB
}

var _ contractx.TranscriptStore = (*Transcript)(nil)

func NewTranscript(db bun.IDB) *Transcript { return &Transcript{db: db} }

// OpenTranscript dials Postgres with the configured DSN and returns a
// store backed by it.
func OpenTranscript(conf TranscriptConfig) (*Transcript, error) {
	if conf.DSN == "" {
		return nil, fmt.Errorf("transcript DSN is empty")
	}
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(conf.DSN)))
	return NewTranscript(bun.NewDB(sqldb, pgdialect.New())), nil
}

func (t *Transcript) Append(ctx context.Context, sessionID string, e contractx.Entry) error {
	turn := &conversationTurn{
		SessionID: sessionID,
		Question:  e.Question,
		Answer:    e.Answer,
		CreatedAt: e.At,
	}
	if _, err := t.db.NewInsert().Model(turn).Exec(ctx); err != nil {
		return fmt.Errorf("insert conversation turn: %w", err)
	}
	return nil
}
