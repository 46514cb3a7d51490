package tool

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	contractx "github.com/jagoss/tesis-umpe-supermarket-stock-prediction/agent/contract"
)

func newPredictServer(t *testing.T, handler http.HandlerFunc) (*StockPredict, *httptest.Server) {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	predict, err := NewStockPredict(PredictConfig{BaseURL: srv.URL, APIKey: "test-key"})
	if err != nil {
		t.Fatalf("NewStockPredict() error = %v", err)
	}
	return predict, srv
}

func TestStockPredictSuccess(t *testing.T) {
	t.Parallel()

	predict, _ := newPredictServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/predict" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "ApiKey test-key" {
			t.Errorf("unexpected authorization header: %q", got)
		}

		var body struct {
			Features map[string]any `json:"features"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if body.Features["product_id"] != "SKU-42" {
			t.Errorf("expected extracted product_id, got %v", body.Features["product_id"])
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"result": "120 units"}`))
	})

	out, err := predict.Execute(context.Background(), "forecast for SKU-42 next week")
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if out != "120 units" {
		t.Fatalf("unexpected output: %q", out)
	}
}

func TestStockPredictRendersLegacyBody(t *testing.T) {
	t.Parallel()

	predict, _ := newPredictServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"prediction": "150 units over 7 days", "confidence": 0.85, "model_version": "v1.2.0"}`))
	})

	out, err := predict.Execute(context.Background(), "forecast for SKU-7")
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if out != "150 units over 7 days (confidence 0.85, model v1.2.0)" {
		t.Fatalf("unexpected output: %q", out)
	}
}

func TestStockPredictServerErrorIsUnavailable(t *testing.T) {
	t.Parallel()

	predict, _ := newPredictServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	_, err := predict.Execute(context.Background(), "forecast for SKU-42")
	if !errors.Is(err, contractx.ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}

func TestStockPredictMalformedBodyIsInvalidArgument(t *testing.T) {
	t.Parallel()

	predict, _ := newPredictServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"result": `))
	})

	_, err := predict.Execute(context.Background(), "forecast for SKU-42")
	if !errors.Is(err, contractx.ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
}

func TestStockPredictRetryExhaustionOnRepeated500(t *testing.T) {
	t.Parallel()

	var calls int
	predict, _ := newPredictServer(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	wrapped := WithRetry(predict, fastRetryConfig(3))
	_, err := wrapped.Execute(context.Background(), "forecast for SKU-42 next week")
	if !errors.Is(err, contractx.ErrRetriesExhausted) {
		t.Fatalf("expected ErrRetriesExhausted, got %v", err)
	}
	if calls != 3 {
		t.Fatalf("expected 3 HTTP calls, got %d", calls)
	}
}

func TestStockPredictEmptyInput(t *testing.T) {
	t.Parallel()

	predict, _ := newPredictServer(t, func(w http.ResponseWriter, r *http.Request) {})

	_, err := predict.Execute(context.Background(), " ")
	if !errors.Is(err, contractx.ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
}
