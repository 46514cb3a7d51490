package tool

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	contractx "github.com/jagoss/tesis-umpe-supermarket-stock-prediction/agent/contract"
)

const ToolWebSearch = "web.search"

type SearchConfig struct {
	BaseURL    string        `envconfig:"BASE_URL" split_words:"true" default:"https://api.tavily.com"`
	APIKey     string        `envconfig:"API_KEY" split_words:"true" required:"true"`
	Depth      string        `envconfig:"DEPTH" split_words:"true" default:"basic"`
	MaxResults int           `envconfig:"MAX_RESULTS" split_words:"true" default:"5"`
	Timeout    time.Duration `envconfig:"TIMEOUT" split_words:"true" default:"10s"`
}

// WebSearch queries a Tavily-style search API and renders the top results
// as a text fragment for answer composition.
type WebSearch struct {
	conf       SearchConfig
	httpClient *http.Client
}

func NewWebSearch(conf SearchConfig) (*WebSearch, error) {
	if strings.TrimSpace(conf.APIKey) == "" {
		return nil, fmt.Errorf("%w: search api key is required", contractx.ErrValidation)
	}
	if conf.MaxResults <= 0 {
		conf.MaxResults = 5
	}
	timeout := conf.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &WebSearch{
		conf:       conf,
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

func (s *WebSearch) Name() string { return ToolWebSearch }

func (s *WebSearch) Description() string {
	return "Search the web for fresh outside information and return top result snippets."
}

func (s *WebSearch) Execute(ctx context.Context, input string) (string, error) {
	query := strings.TrimSpace(input)
	if query == "" {
		return "", fmt.Errorf("%w: search query is empty", contractx.ErrInvalidArgument)
	}

	payload, err := json.Marshal(map[string]any{
		"query":   query,
		"api_key": s.conf.APIKey,
		"depth":   s.conf.Depth,
	})
	if err != nil {
		return "", fmt.Errorf("%w: marshal search request: %v", contractx.ErrInvalidArgument, err)
	}

	url := strings.TrimRight(s.conf.BaseURL, "/") + "/search"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("%w: build search request: %v", contractx.ErrInvalidArgument, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", wrapTransportError("search", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return "", fmt.Errorf("%w: search http status=%d", contractx.ErrUnavailable, resp.StatusCode)
	}

	var response struct {
		Results []struct {
			Title   string `json:"title"`
			URL     string `json:"url"`
			Content string `json:"content"`
		} `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return "", fmt.Errorf("%w: decode search response: %v", contractx.ErrUnavailable, err)
	}

	if len(response.Results) == 0 {
		return "No search results found for: " + query, nil
	}

	var sb strings.Builder
	for i, r := range response.Results {
		if i >= s.conf.MaxResults {
			break
		}
		if i > 0 {
			sb.WriteString("\n")
		}
		fmt.Fprintf(&sb, "- %s: %s (%s)", r.Title, r.Content, r.URL)
	}
	return sb.String(), nil
}

// wrapTransportError maps client-side transport failures onto the tool
// failure taxonomy: deadline and cancellation become Timeout, everything
// else is a transient Unavailable.
func wrapTransportError(op string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%w: %s: %v", contractx.ErrTimeout, op, err)
	}
	var netErr interface{ Timeout() bool }
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: %s: %v", contractx.ErrTimeout, op, err)
	}
	return fmt.Errorf("%w: %s: %v", contractx.ErrUnavailable, op, err)
}
