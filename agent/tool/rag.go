package tool

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	openaisdk "github.com/openai/openai-go"

	contractx "github.com/jagoss/tesis-umpe-supermarket-stock-prediction/agent/contract"
)

const ToolKnowledgeBase = "knowledge_base.search"

// Embedder converts query text into the vector the retrieval backend indexes.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float64, error)
}

// OpenAIEmbedder backs Embedder with the OpenAI embeddings endpoint.
type OpenAIEmbedder struct {
	client *openaisdk.Client
	model  string
}

func NewOpenAIEmbedder(client *openaisdk.Client, model string) (*OpenAIEmbedder, error) {
	if client == nil {
		return nil, fmt.Errorf("%w: openai client is required", contractx.ErrValidation)
	}
	if strings.TrimSpace(model) == "" {
		model = "text-embedding-3-small"
	}
	return &OpenAIEmbedder{client: client, model: model}, nil
}

func (e *OpenAIEmbedder) Embed(ctx context.Context, text string) ([]float64, error) {
	resp, err := e.client.Embeddings.New(ctx, openaisdk.EmbeddingNewParams{
		Input: openaisdk.EmbeddingNewParamsInputUnion{OfString: openaisdk.String(text)},
		Model: openaisdk.EmbeddingModel(e.model),
	})
	if err != nil {
		return nil, wrapTransportError("embed", err)
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("%w: embedding response is empty", contractx.ErrUnavailable)
	}
	return resp.Data[0].Embedding, nil
}

type RAGConfig struct {
	BaseURL string        `envconfig:"BASE_URL" split_words:"true" required:"true"`
	TopK    int           `envconfig:"TOP_K" split_words:"true" default:"4"`
	Timeout time.Duration `envconfig:"TIMEOUT" split_words:"true" default:"10s"`
}

// KnowledgeBase is a thin retrieval adapter: text to embedding, embedding to
// ranked documents, documents back to a text context fragment. The vector
// index itself is an external collaborator.
type KnowledgeBase struct {
	conf       RAGConfig
	embedder   Embedder
	httpClient *http.Client
}

func NewKnowledgeBase(conf RAGConfig, embedder Embedder) (*KnowledgeBase, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(conf.BaseURL), "/")
	if baseURL == "" {
		return nil, fmt.Errorf("%w: retrieval base url is required", contractx.ErrValidation)
	}
	if embedder == nil {
		return nil, fmt.Errorf("%w: embedder is required", contractx.ErrValidation)
	}
	conf.BaseURL = baseURL
	if conf.TopK <= 0 {
		conf.TopK = 4
	}
	timeout := conf.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &KnowledgeBase{
		conf:       conf,
		embedder:   embedder,
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

func (k *KnowledgeBase) Name() string { return ToolKnowledgeBase }

func (k *KnowledgeBase) Description() string {
	return "Search the product and policy knowledge base and return relevant passages."
}

func (k *KnowledgeBase) Execute(ctx context.Context, input string) (string, error) {
	query := strings.TrimSpace(input)
	if query == "" {
		return "", fmt.Errorf("%w: retrieval query is empty", contractx.ErrInvalidArgument)
	}

	vector, err := k.embedder.Embed(ctx, query)
	if err != nil {
		return "", err
	}

	payload, err := json.Marshal(map[string]any{
		"vector": vector,
		"top_k":  k.conf.TopK,
	})
	if err != nil {
		return "", fmt.Errorf("%w: marshal retrieval request: %v", contractx.ErrInvalidArgument, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, k.conf.BaseURL+"/search", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("%w: build retrieval request: %v", contractx.ErrInvalidArgument, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := k.httpClient.Do(req)
	if err != nil {
		return "", wrapTransportError("retrieve", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return "", fmt.Errorf("%w: retrieval http status=%d", contractx.ErrUnavailable, resp.StatusCode)
	}

	var response struct {
		Documents []struct {
			Text  string  `json:"text"`
			Score float64 `json:"score"`
		} `json:"documents"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return "", fmt.Errorf("%w: decode retrieval response: %v", contractx.ErrUnavailable, err)
	}

	if len(response.Documents) == 0 {
		return "No knowledge base passages matched: " + query, nil
	}

	var sb strings.Builder
	for i, d := range response.Documents {
		if i >= k.conf.TopK {
			break
		}
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString("- " + strings.TrimSpace(d.Text))
	}
	return sb.String(), nil
}
