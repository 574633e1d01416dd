package cli

import (
	"talentalign/internal/config"
	"talentalign/internal/engine"
	"talentalign/internal/errors"
	"talentalign/internal/store"
)

// buildEngine assembles the analysis engine and its similarity backend
// from the loaded configuration
func buildEngine(cfg *config.Config, logger *errors.Logger) (*engine.Engine, *engine.SimilarityBackend) {
	backend := engine.NewSimilarityBackend(engine.NeuralConfig{
		Enabled:    cfg.Embedding.Provider == "gemini",
		APIKey:     cfg.Embedding.APIKey,
		Model:      cfg.Embedding.Model,
		Timeout:    cfg.Embedding.Timeout,
		MaxRetries: cfg.Embedding.MaxRetries,

		BreakerMaxRequests:      cfg.Embedding.CircuitBreaker.MaxRequests,
		BreakerInterval:         cfg.Embedding.CircuitBreaker.Interval,
		BreakerTimeout:          cfg.Embedding.CircuitBreaker.Timeout,
		BreakerMinRequests:      cfg.Embedding.CircuitBreaker.MinRequests,
		BreakerFailureThreshold: cfg.Embedding.CircuitBreaker.FailureThreshold,
	}, logger)

	eng := engine.New(backend, engine.NewVocabulary(cfg.Engine.ExtraSkills...), engine.Config{
		MaxHeatmapPoints: cfg.Engine.MaxHeatmapPoints,
		TopSections:      cfg.Engine.TopSections,
		ChunkPreviewLen:  cfg.Engine.ChunkPreviewLen,
		CacheTTL:         cfg.Engine.CacheTTL,
	}, logger)

	return eng, backend
}

// openStore opens the SQLite store at the configured path. A blank path
// disables persistence.
func openStore(cfg *config.Config) (*store.Store, error) {
	if cfg.Storage.Path == "" {
		return nil, nil
	}
	return store.Open(cfg.Storage.Path)
}
