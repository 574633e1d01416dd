package server

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"talentalign/internal/observability"
)

// Start starts the HTTP server with all configured components
func (s *Server) Start() error {
	om, err := observability.NewManager(s.AppConfig.Observability, s.Version)
	if err != nil {
		return fmt.Errorf("failed to initialize observability: %w", err)
	}
	defer s.shutdownObservability(om)

	if s.Backend != nil {
		s.Backend.SetFallbackHook(func() {
			observability.Count(context.Background(), om.GetMetrics().EmbedderFallbacks)
		})
	}

	httpServer := s.setupHTTPServer(om)

	var reloader *certReloader
	if s.AppConfig.Server.TLS.Enabled {
		reloader, err = s.configureTLS(httpServer)
		if err != nil {
			return err
		}
	}

	s.displayServerInfo()

	return s.startWithGracefulShutdown(httpServer, reloader)
}

// shutdownObservability handles observability cleanup
func (s *Server) shutdownObservability(om *observability.Manager) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := om.Shutdown(ctx); err != nil {
		s.Logger.LogError(err, "Failed to shutdown observability")
	}
}

// setupHTTPServer creates and configures the HTTP server
func (s *Server) setupHTTPServer(om *observability.Manager) *http.Server {
	mux := s.setupRoutes(om)
	handler := om.HTTPMiddleware()(mux)
	addr := fmt.Sprintf("%s:%s", s.Host, s.Port)

	return &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  s.ReadTimeout,
		WriteTimeout: s.WriteTimeout,
		IdleTimeout:  s.IdleTimeout,
	}
}

// configureTLS installs a hot-reloading certificate source on the server
func (s *Server) configureTLS(httpServer *http.Server) (*certReloader, error) {
	tlsCfg := s.AppConfig.Server.TLS

	reloader, err := newCertReloader(tlsCfg.CertFile, tlsCfg.KeyFile, s.Logger)
	if err != nil {
		return nil, err
	}

	if tlsCfg.AutoReload {
		if err := reloader.Watch(); err != nil {
			return nil, err
		}
	}

	httpServer.TLSConfig = &tls.Config{
		GetCertificate: reloader.GetCertificate,
		MinVersion:     tlsMinVersion(tlsCfg.MinVersion),
	}

	return reloader, nil
}

// displayServerInfo logs the effective server configuration at startup
func (s *Server) displayServerInfo() {
	s.Logger.Info("Server configuration",
		"address", fmt.Sprintf("%s:%s", s.Host, s.Port),
		"tls_enabled", s.AppConfig.Server.TLS.Enabled,
		"auth_enabled", len(s.APIKeys) > 0,
		"rate_limit_enabled", s.RateLimit != nil && s.RateLimit.Enabled,
		"storage_enabled", s.Store != nil,
		"embedding_provider", s.AppConfig.Embedding.Provider)
}

// startWithGracefulShutdown starts the HTTP server and handles graceful shutdown
func (s *Server) startWithGracefulShutdown(server *http.Server, reloader *certReloader) error {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)

	go func() {
		s.Logger.Info("Starting HTTP server",
			"address", server.Addr,
			"tls_enabled", server.TLSConfig != nil)

		var err error
		if server.TLSConfig != nil {
			// certificates come from the reloader's GetCertificate
			err = server.ListenAndServeTLS("", "")
		} else {
			err = server.ListenAndServe()
		}

		if err != nil && err != http.ErrServerClosed {
			serverErrors <- err
		}
	}()

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server failed to start: %w", err)
	case sig := <-quit:
		s.Logger.Info("Received shutdown signal, starting graceful shutdown",
			"signal", sig.String())

		return s.performGracefulShutdown(server, reloader)
	}
}

// performGracefulShutdown handles the graceful shutdown process
func (s *Server) performGracefulShutdown(server *http.Server, reloader *certReloader) error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if reloader != nil {
		if err := reloader.Stop(); err != nil {
			s.Logger.LogError(err, "Failed to stop certificate reloader")
		}
	}

	if s.RateLimiter != nil {
		s.RateLimiter.Close()
	}

	s.Logger.Info("Shutting down HTTP server...")
	if err := server.Shutdown(shutdownCtx); err != nil {
		s.Logger.LogError(err, "Failed to shutdown server gracefully, forcing close")
		return server.Close()
	}

	s.Logger.Info("Server shutdown completed successfully")
	return nil
}
