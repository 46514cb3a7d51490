package tool

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	contractx "github.com/jagoss/tesis-umpe-supermarket-stock-prediction/agent/contract"
)

const ToolStockPredict = "stock.predict"

const maxPredictResponseBytes = 1 << 20

// Product identifiers look like SKU-42 in user questions.
var skuPattern = regexp.MustCompile(`(?i)\bSKU-\d+\b`)

type PredictConfig struct {
	BaseURL string        `envconfig:"BASE_URL" split_words:"true" required:"true"`
	APIKey  string        `envconfig:"API_KEY" split_words:"true" required:"true"`
	Timeout time.Duration `envconfig:"TIMEOUT" split_words:"true" default:"15s"`
}

// StockPredict calls the remote prediction service. Non-2xx responses are
// Unavailable, malformed JSON bodies are InvalidArgument; neither is ever a
// silent empty result.
type StockPredict struct {
	conf       PredictConfig
	httpClient *http.Client
}

func NewStockPredict(conf PredictConfig) (*StockPredict, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(conf.BaseURL), "/")
	if baseURL == "" {
		return nil, fmt.Errorf("%w: prediction base url is required", contractx.ErrValidation)
	}
	if strings.TrimSpace(conf.APIKey) == "" {
		return nil, fmt.Errorf("%w: prediction api key is required", contractx.ErrValidation)
	}
	conf.BaseURL = baseURL

	timeout := conf.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &StockPredict{
		conf:       conf,
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

func (p *StockPredict) Name() string { return ToolStockPredict }

func (p *StockPredict) Description() string {
	return "Forecast future stock or demand for a product using the prediction model service."
}

type predictResponse struct {
	Result       string          `json:"result"`
	Prediction   json.RawMessage `json:"prediction"`
	Confidence   *float64        `json:"confidence"`
	ModelVersion string          `json:"model_version"`
}

func (p *StockPredict) Execute(ctx context.Context, input string) (string, error) {
	query := strings.TrimSpace(input)
	if query == "" {
		return "", fmt.Errorf("%w: prediction query is empty", contractx.ErrInvalidArgument)
	}

	features := map[string]any{"query": query}
	if sku := skuPattern.FindString(query); sku != "" {
		features["product_id"] = strings.ToUpper(sku)
	}

	payload, err := json.Marshal(map[string]any{"features": features})
	if err != nil {
		return "", fmt.Errorf("%w: marshal prediction payload: %v", contractx.ErrInvalidArgument, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.conf.BaseURL+"/predict", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("%w: build prediction request: %v", contractx.ErrInvalidArgument, err)
	}
	req.Header.Set("Authorization", "ApiKey "+p.conf.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", wrapTransportError("predict", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxPredictResponseBytes))
	if err != nil {
		return "", fmt.Errorf("%w: read prediction response: %v", contractx.ErrUnavailable, err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return "", fmt.Errorf("%w: prediction http status=%d body=%s",
			contractx.ErrUnavailable, resp.StatusCode, truncate(string(raw), 256))
	}

	var parsed predictResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("%w: malformed prediction response: %v", contractx.ErrInvalidArgument, err)
	}

	return renderPrediction(parsed)
}

// renderPrediction prefers the flat result field; older model servers answer
// with prediction plus confidence and model_version instead.
func renderPrediction(parsed predictResponse) (string, error) {
	if result := strings.TrimSpace(parsed.Result); result != "" {
		return result, nil
	}

	prediction := strings.TrimSpace(string(parsed.Prediction))
	if prediction == "" || prediction == "null" {
		return "", fmt.Errorf("%w: prediction response carries no result", contractx.ErrInvalidArgument)
	}

	var text string
	if err := json.Unmarshal([]byte(prediction), &text); err != nil {
		// Not a JSON string: render the raw structure.
		text = prediction
	}

	var sb strings.Builder
	sb.WriteString(text)
	if parsed.Confidence != nil {
		fmt.Fprintf(&sb, " (confidence %.2f", *parsed.Confidence)
		if v := strings.TrimSpace(parsed.ModelVersion); v != "" {
			fmt.Fprintf(&sb, ", model %s", v)
		}
		sb.WriteString(")")
	}
	return sb.String(), nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
