package tool

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	contractx "github.com/jagoss/tesis-umpe-supermarket-stock-prediction/agent/contract"
)

type fixedEmbedder struct {
	vector []float64
	err    error
}

func (f *fixedEmbedder) Embed(ctx context.Context, text string) ([]float64, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.vector, nil
}

func newKnowledgeBaseServer(t *testing.T, embedder Embedder, handler http.HandlerFunc) *KnowledgeBase {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	kb, err := NewKnowledgeBase(RAGConfig{BaseURL: srv.URL, TopK: 2}, embedder)
	if err != nil {
		t.Fatalf("NewKnowledgeBase() error = %v", err)
	}
	return kb
}

func TestKnowledgeBaseSearch(t *testing.T) {
	t.Parallel()

	embedder := &fixedEmbedder{vector: []float64{0.1, 0.2, 0.3}}
	kb := newKnowledgeBaseServer(t, embedder, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}

		var body struct {
			Vector []float64 `json:"vector"`
			TopK   int       `json:"top_k"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if len(body.Vector) != 3 || body.TopK != 2 {
			t.Errorf("unexpected request body: %+v", body)
		}

		_, _ = w.Write([]byte(`{"documents":[
			{"text":"Dairy is restocked every Tuesday.","score":0.91},
			{"text":"Perishables hold two days of buffer stock.","score":0.84}
		]}`))
	})

	out, err := kb.Execute(context.Background(), "when is dairy restocked?")
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if !strings.Contains(out, "restocked every Tuesday") {
		t.Fatalf("unexpected output: %q", out)
	}
	if len(strings.Split(out, "\n")) != 2 {
		t.Fatalf("expected 2 passages, got %q", out)
	}
}

func TestKnowledgeBaseNoMatches(t *testing.T) {
	t.Parallel()

	kb := newKnowledgeBaseServer(t, &fixedEmbedder{vector: []float64{1}}, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"documents":[]}`))
	})

	out, err := kb.Execute(context.Background(), "unknown topic")
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if !strings.Contains(out, "No knowledge base passages") {
		t.Fatalf("unexpected output: %q", out)
	}
}

func TestKnowledgeBaseEmbedderFailurePropagates(t *testing.T) {
	t.Parallel()

	embedErr := errors.New("connection refused")
	kb := newKnowledgeBaseServer(t, &fixedEmbedder{err: embedErr}, func(w http.ResponseWriter, r *http.Request) {
		t.Error("retrieval backend must not be called when embedding fails")
	})

	_, err := kb.Execute(context.Background(), "anything")
	if !errors.Is(err, embedErr) {
		t.Fatalf("expected embedder error, got %v", err)
	}
}

func TestKnowledgeBaseBackendErrorIsUnavailable(t *testing.T) {
	t.Parallel()

	kb := newKnowledgeBaseServer(t, &fixedEmbedder{vector: []float64{1}}, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "index rebuilding", http.StatusServiceUnavailable)
	})

	_, err := kb.Execute(context.Background(), "anything")
	if !errors.Is(err, contractx.ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}
