package cli

import (
	"fmt"

	"talentalign/internal/server"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP matching service",
	Long: `Start an HTTP server exposing the matching engine as a REST API.

Available endpoints:
- POST /v1/analyze: Score a resume against a job description
- POST /v1/compare: Rank a resume against multiple roles
- POST /v1/interview-kit: Generate an interview kit from a skill gap
- GET/POST /v1/roles, /v1/roles/{id}: Manage stored role profiles
- POST /v1/share, GET /v1/share/{token}: Share analysis results by token
- GET /health: Health check endpoint
- GET /stats: Server statistics and rate limiting info

TLS Configuration:
- Use --cert-file and --key-file for TLS certificates
- Certificate files are hot-reloaded when server.tls.autoReload is set`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringP("port", "p", "", "Port to listen on (default from config)")
	serveCmd.Flags().String("host", "", "Host to bind to (default from config)")
	serveCmd.Flags().String("cert-file", "", "Server certificate file (PEM, overrides config)")
	serveCmd.Flags().String("key-file", "", "Server private key file (PEM, overrides config)")

	// Bind flags to viper config keys
	bindFlag := func(key, flagName string) {
		if err := viper.BindPFlag(key, serveCmd.Flags().Lookup(flagName)); err != nil {
			panic(err)
		}
	}

	bindFlag("server.port", "port")
	bindFlag("server.host", "host")
	bindFlag("server.tls.certfile", "cert-file")
	bindFlag("server.tls.keyfile", "key-file")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := getConfigFromContext(cmd.Context())
	logger := getLoggerFromContext(cmd.Context())

	eng, backend := buildEngine(cfg, logger)

	st, err := openStore(cfg)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	if st != nil {
		defer func() { _ = st.Close() }()
	}

	srv := server.NewServer(cfg, server.Deps{
		Engine:  eng,
		Backend: backend,
		Store:   st,
	}, Version, logger)

	return srv.Start()
}
