package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/avast/retry-go/v4"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"

	"github.com/campusbuddy/chat-backend/internal/config"
	"github.com/campusbuddy/chat-backend/internal/entity"
	pkghttp "github.com/campusbuddy/chat-backend/pkg/http"
)

const (
	chatCompletionsEndpoint = "/chat/completions"
	embeddingsEndpoint      = "/embeddings"
)

// Connector talks to an OpenAI-compatible API for chat completions and
// embeddings. Transient upstream failures (429, 5xx, network) are retried
// with backoff; everything else surfaces immediately.
type Connector struct {
	config    config.OpenAIConfig
	connector *pkghttp.Connector
	logger    *zap.Logger
}

func NewConnector(cfg config.OpenAIConfig, logger *zap.Logger) *Connector {
	connCfg := &pkghttp.ConnectorConfig{
		BaseURL: cfg.Url,
		Logger:  logger,
	}

	conn := pkghttp.NewConnector(
		connCfg,
		pkghttp.WithRequestTimeout(cfg.RequestTimeout),
		pkghttp.WithConnTimeout(cfg.ConnTimeout),
		pkghttp.WithKeepAlive(cfg.KeepAlive),
		pkghttp.WithIdleConnTimeout(cfg.IdleConnTimeout),
		pkghttp.WithResponseHeaderTimeout(cfg.ResponseHeaderTimeout),
		pkghttp.WithRequestLogging(),
		pkghttp.WithAuthToken(cfg.APIKey),
	)

	return &Connector{
		config:    cfg,
		connector: conn,
		logger:    logger,
	}
}

// ChatCompletion sends the messages to the configured chat model and
// returns the reply text.
func (c *Connector) ChatCompletion(ctx context.Context, messages []entity.ChatMessage) (string, error) {
	req := &entity.ChatCompletionRequest{
		Model:       c.config.ChatModel,
		Messages:    messages,
		Temperature: c.config.Temperature,
		MaxTokens:   c.config.MaxTokens,
	}

	var resp entity.ChatCompletionResponse
	err := c.doWithRetry(ctx, chatCompletionsEndpoint, req, &resp)
	if err != nil {
		return "", c.wrapUpstream(err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: no choices in completion response", entity.ErrUpstream)
	}

	ctxzap.Debug(ctx, "chat completion received",
		zap.String("model", c.config.ChatModel),
		zap.Int("reply_length", len(resp.Choices[0].Message.Content)),
	)

	return resp.Choices[0].Message.Content, nil
}

// CreateEmbeddings embeds the texts with the configured embedding model,
// batching requests to the upstream batch size. Vectors come back in input
// order.
func (c *Connector) CreateEmbeddings(ctx context.Context, texts []string) ([][]float64, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	batchSize := c.config.EmbedBatchSize
	if batchSize <= 0 {
		batchSize = 64
	}

	vectors := make([][]float64, 0, len(texts))
	for start := 0; start < len(texts); start += batchSize {
		end := start + batchSize
		if end > len(texts) {
			end = len(texts)
		}

		req := &entity.EmbeddingRequest{
			Model: c.config.EmbeddingModel,
			Input: texts[start:end],
		}

		var resp entity.EmbeddingResponse
		if err := c.doWithRetry(ctx, embeddingsEndpoint, req, &resp); err != nil {
			return nil, c.wrapUpstream(err)
		}

		if len(resp.Data) != end-start {
			return nil, fmt.Errorf("%w: got %d embeddings for %d inputs", entity.ErrUpstream, len(resp.Data), end-start)
		}

		for _, d := range resp.Data {
			vectors = append(vectors, d.Embedding)
		}
	}

	ctxzap.Debug(ctx, "embeddings created",
		zap.String("model", c.config.EmbeddingModel),
		zap.Int("count", len(vectors)),
	)

	return vectors, nil
}

func (c *Connector) doWithRetry(ctx context.Context, endpoint string, reqBody, respBody any) error {
	return retry.Do(
		func() error {
			return c.connector.DoRequest(ctx, http.MethodPost, endpoint, reqBody, respBody)
		},
		append(c.config.Retry.ToRetryOptions(),
			retry.Context(ctx),
			retry.RetryIf(isRetryable),
		)...,
	)
}

func isRetryable(err error) bool {
	var httpErr *pkghttp.HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Retryable()
	}
	var netErr *pkghttp.NetworkError
	return errors.As(err, &netErr)
}

func (c *Connector) wrapUpstream(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", entity.ErrUpstreamTimeout, err)
	}
	return fmt.Errorf("%w: %v", entity.ErrUpstream, err)
}
