package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docqa/internal/adapters/driving/mcp"
)

var mcpPort int

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "MCP server commands",
	Long:  `Expose docqa to AI assistants through the Model Context Protocol.`,
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Start an MCP server backed by the local index.

Tools:     ask, search, ingest_files, list_documents
Resources: docqa://documents, docqa://documents/{id}

ingest_files and the document resources are only offered when ingestion
and the document catalogue are configured.

With no --port the server speaks JSON-RPC over stdin/stdout, which is
what desktop assistants launch:

  {"mcpServers": {"docqa": {"command": "docqa", "args": ["mcp", "serve"]}}}

With --port it serves the streamable HTTP transport instead, useful with
MCP Inspector:

  docqa mcp serve --port 8080`,
	Args: cobra.NoArgs,
	RunE: runMCPServe,
}

func init() {
	mcpServeCmd.Flags().IntVarP(&mcpPort, "port", "p", 0, "HTTP port (0 = use stdio)")
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	addr, err := mcp.ListenAddr(mcpPort)
	if err != nil {
		return err
	}
	if queryService == nil {
		return notConfigured("query")
	}

	server, err := mcp.NewServer(&mcp.Ports{
		Query:    queryService,
		Ingest:   ingestService,
		Document: documentService,
	}, mcp.WithVersion(version))
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if addr == "" {
		// stdout carries the protocol from here on.
		return server.Run(ctx)
	}

	cmd.Printf("MCP server listening on http://localhost%s\n", addr)
	if err := server.RunHTTP(ctx, addr); err != nil {
		return fmt.Errorf("mcp server: %w", err)
	}
	return nil
}
