package engine

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	talentalignErrors "talentalign/internal/errors"

	"github.com/sony/gobreaker/v2"
	"google.golang.org/api/googleapi"
	"google.golang.org/genai"
)

// NeuralConfig configures the Gemini embedding strategy
type NeuralConfig struct {
	Enabled    bool
	APIKey     string
	Model      string
	Timeout    time.Duration
	MaxRetries int

	BreakerMaxRequests      uint32
	BreakerInterval         time.Duration
	BreakerTimeout          time.Duration
	BreakerMinRequests      uint32
	BreakerFailureThreshold float64
}

// GeminiEmbedder produces sentence embeddings via the Gemini embedding API,
// guarded by a circuit breaker and retry with exponential backoff.
type GeminiEmbedder struct {
	client *genai.Client
	cfg    NeuralConfig
	cb     *gobreaker.CircuitBreaker[*genai.EmbedContentResponse]
	logger *talentalignErrors.Logger
}

// NewGeminiEmbedder creates the neural embedding strategy. Client creation
// validates configuration but performs no network I/O; the first Embed call
// is the real availability probe.
func NewGeminiEmbedder(ctx context.Context, cfg NeuralConfig, logger *talentalignErrors.Logger) (*GeminiEmbedder, error) {
	if cfg.APIKey == "" {
		return nil, talentalignErrors.NewConfigError(talentalignErrors.ErrCodeMissingAPIKey,
			"Gemini embedding requires an API key", nil)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: cfg.APIKey,
	})
	if err != nil {
		return nil, talentalignErrors.NewEmbeddingError(talentalignErrors.ErrCodeEmbeddingFailed,
			"Failed to create Gemini client", err)
	}

	settings := gobreaker.Settings{
		Name:        "embedding-gemini",
		MaxRequests: cfg.BreakerMaxRequests,
		Interval:    cfg.BreakerInterval,
		Timeout:     cfg.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= cfg.BreakerMinRequests &&
				failureRatio >= cfg.BreakerFailureThreshold
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Info("Embedding circuit breaker state changed",
				"name", name,
				"from", from.String(),
				"to", to.String())
		},
	}

	return &GeminiEmbedder{
		client: client,
		cfg:    cfg,
		cb:     gobreaker.NewCircuitBreaker[*genai.EmbedContentResponse](settings),
		logger: logger,
	}, nil
}

// Embed batch-embeds texts and L2-normalizes the returned vectors
func (g *GeminiEmbedder) Embed(ctx context.Context, texts []string) ([][]float64, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	contents := make([]*genai.Content, len(texts))
	for i, t := range texts {
		contents[i] = genai.NewContentFromText(t, genai.RoleUser)
	}

	embedCtx := ctx
	if g.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		embedCtx, cancel = context.WithTimeout(ctx, g.cfg.Timeout)
		defer cancel()
	}

	resp, err := g.cb.Execute(func() (*genai.EmbedContentResponse, error) {
		return g.embedWithRetry(embedCtx, contents)
	})
	if err != nil {
		return nil, err
	}

	if len(resp.Embeddings) != len(texts) {
		return nil, talentalignErrors.NewEmbeddingError(talentalignErrors.ErrCodeEmbeddingFailed,
			fmt.Sprintf("embedding count mismatch: got %d for %d texts", len(resp.Embeddings), len(texts)), nil)
	}

	vectors := make([][]float64, len(resp.Embeddings))
	for i, emb := range resp.Embeddings {
		vec := make([]float64, len(emb.Values))
		for j, v := range emb.Values {
			vec[j] = float64(v)
		}
		vectors[i] = l2Normalize(vec)
	}
	return vectors, nil
}

// embedWithRetry retries transient failures with exponential backoff
func (g *GeminiEmbedder) embedWithRetry(ctx context.Context, contents []*genai.Content) (*genai.EmbedContentResponse, error) {
	var lastErr error

	for attempt := 0; attempt <= g.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			g.logger.Warn("Retrying embedding request",
				"attempt", attempt,
				"max_retries", g.cfg.MaxRetries,
				"error", lastErr.Error())

			backoff := min(time.Duration(1<<(attempt-1))*time.Second, 10*time.Second)
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		resp, err := g.client.Models.EmbedContent(ctx, g.cfg.Model, contents, &genai.EmbedContentConfig{})
		if err == nil {
			return resp, nil
		}
		lastErr = err

		if !isRetryableEmbedError(err) {
			break
		}
	}

	return nil, fmt.Errorf("embedding failed after %d attempts: %w", g.cfg.MaxRetries+1, lastErr)
}

// isRetryableEmbedError treats network failures and throttling/server
// status codes as transient
func isRetryableEmbedError(err error) bool {
	if err == nil {
		return false
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case http.StatusTooManyRequests,
			http.StatusInternalServerError,
			http.StatusBadGateway,
			http.StatusServiceUnavailable,
			http.StatusGatewayTimeout:
			return true
		}
	}

	return false
}

// SimilarityBackend selects between the neural and lexical strategies once
// per process. The neural encoder is initialized lazily on first use; if
// initialization or the first call fails, the backend permanently falls
// back to the lexical strategy and never retries the encoder.
type SimilarityBackend struct {
	cfg     NeuralConfig
	logger  *talentalignErrors.Logger
	lexical *LexicalEmbedder

	initOnce sync.Once
	neural   *GeminiEmbedder

	mu       sync.Mutex
	fellBack bool
	probed   bool

	// onFallback, when set, is invoked once when the backend abandons
	// the neural strategy
	onFallback func()
}

// NewSimilarityBackend creates a backend with the configured strategy.
// With Enabled false the lexical strategy is used directly.
func NewSimilarityBackend(cfg NeuralConfig, logger *talentalignErrors.Logger) *SimilarityBackend {
	return &SimilarityBackend{
		cfg:     cfg,
		logger:  logger,
		lexical: NewLexicalEmbedder(),
	}
}

// SetFallbackHook registers a callback fired when the neural strategy is
// permanently abandoned. Must be called before first use.
func (b *SimilarityBackend) SetFallbackHook(fn func()) {
	b.onFallback = fn
}

// init performs the one-time strategy selection. Concurrent first callers
// all observe the same outcome.
func (b *SimilarityBackend) init(ctx context.Context) {
	b.initOnce.Do(func() {
		if !b.cfg.Enabled {
			b.fellBack = true
			return
		}
		neural, err := NewGeminiEmbedder(ctx, b.cfg, b.logger)
		if err != nil {
			b.logger.Warn("Neural embedding unavailable, using lexical fallback",
				"error", err.Error())
			b.markFallback()
			return
		}
		b.neural = neural
	})
}

func (b *SimilarityBackend) markFallback() {
	b.mu.Lock()
	already := b.fellBack
	b.fellBack = true
	b.mu.Unlock()
	if !already && b.onFallback != nil {
		b.onFallback()
	}
}

// Embed delegates to the active strategy. A neural failure before any
// successful call demotes the backend to lexical for the process lifetime;
// later transient failures degrade only the current call.
func (b *SimilarityBackend) Embed(ctx context.Context, texts []string) ([][]float64, error) {
	b.init(ctx)

	b.mu.Lock()
	useNeural := !b.fellBack && b.neural != nil
	probed := b.probed
	b.mu.Unlock()

	if useNeural {
		vectors, err := b.neural.Embed(ctx, texts)
		if err == nil {
			if !probed {
				b.mu.Lock()
				b.probed = true
				b.mu.Unlock()
			}
			return vectors, nil
		}

		if !probed {
			// The encoder never worked; treat this as a load failure.
			b.logger.Warn("Neural encoder failed on first use, falling back to lexical strategy",
				"error", err.Error())
			b.markFallback()
		} else {
			b.logger.Warn("Neural embedding failed, degrading this call to lexical",
				"error", err.Error())
		}
	}

	return b.lexical.Embed(ctx, texts)
}

// Similarity embeds the pair in one joint call and returns cosine
// similarity clamped to [0,1]
func (b *SimilarityBackend) Similarity(ctx context.Context, textA, textB string) (float64, error) {
	vectors, err := b.Embed(ctx, []string{textA, textB})
	if err != nil {
		return 0, err
	}
	if len(vectors) != 2 {
		return 0, talentalignErrors.NewEmbeddingError(talentalignErrors.ErrCodeEmbeddingFailed,
			"similarity requires exactly two vectors", nil)
	}
	return clamp01(cosine(vectors[0], vectors[1])), nil
}

// UsingFallback reports whether the lexical strategy is active
func (b *SimilarityBackend) UsingFallback() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.fellBack
}
