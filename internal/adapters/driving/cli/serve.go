package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docqa/internal/adapters/driving/api"
	"github.com/custodia-labs/docqa/internal/core/domain"
)

var (
	serveAddr        string
	serveMaxUploadMB int64
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API",
	Long: `Start the HTTP API.

Endpoints:
  GET  /                        welcome message
  GET  /health                  liveness probe
  POST /api/v1/upload           multipart upload, field "files"
  POST /api/v1/query            {"query": "...", "top_k": 5}
  GET  /api/v1/documents        document catalogue
  GET  /api/v1/documents/{id}   one document

The listen address defaults to server.addr from the config file,
overridable with API_HOST and API_PORT.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from settings, "+domain.DefaultServerAddr+")")
	serveCmd.Flags().Int64Var(&serveMaxUploadMB, "max-upload-mb", api.DefaultMaxUploadSize>>20, "upload size limit in MiB")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	if ingestService == nil {
		return notConfigured("ingest")
	}
	if queryService == nil {
		return notConfigured("query")
	}

	server, err := api.NewServer(&api.Ports{
		Ingest:   ingestService,
		Query:    queryService,
		Document: documentService,
	}, api.WithMaxUploadSize(serveMaxUploadMB<<20))
	if err != nil {
		return err
	}

	addr := resolveServeAddr()
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd.Printf("API listening on http://%s\n", addr)
	if err := server.Run(ctx, addr); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// resolveServeAddr prefers the flag, then settings, then the default.
func resolveServeAddr() string {
	if serveAddr != "" {
		return serveAddr
	}
	if settingsService != nil {
		if s, err := settingsService.Get(); err == nil && s.Server.Addr != "" {
			return s.Server.Addr
		}
	}
	return domain.DefaultServerAddr
}
