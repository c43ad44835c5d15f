package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docqa/internal/connectors/filesystem"
	"github.com/custodia-labs/docqa/internal/core/domain"
)

var (
	ingestWatch bool
	ingestJSON  bool
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [paths...]",
	Short: "Index PDF documents",
	Long: `Extracts, chunks, embeds and indexes PDF files.

Directories are scanned recursively for .pdf files; hidden files and
directories are skipped. Files given explicitly are always attempted, so
unsupported files are reported as failures.

With --watch, a single directory is indexed and then watched: every PDF
created or modified below it is indexed as it settles. Stop with Ctrl+C.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().BoolVarP(&ingestWatch, "watch", "w", false, "keep watching the directory for new PDFs")
	ingestCmd.Flags().BoolVar(&ingestJSON, "json", false, "output the result as JSON")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		return notConfigured("ingest")
	}

	if ingestWatch {
		if len(args) != 1 {
			return errors.New("--watch takes exactly one directory")
		}
		return runIngestWatch(cmd, args[0])
	}

	ctx := cmd.Context()
	files, err := filesystem.Collect(ctx, args)
	if err != nil {
		return fmt.Errorf("collecting files: %w", err)
	}
	if len(files) == 0 {
		cmd.Println("No PDF files found.")
		return nil
	}

	result, err := ingestService.Ingest(ctx, files)
	if err != nil {
		return fmt.Errorf("ingest failed: %w", err)
	}

	if ingestJSON {
		return outputIngestJSON(cmd, result)
	}
	outputIngestResult(cmd, result)
	return nil
}

func runIngestWatch(cmd *cobra.Command, dir string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	conn := filesystem.New(filesystem.ResolvePath(dir))
	if err := conn.Validate(); err != nil {
		return err
	}
	defer conn.Close()

	existing, err := conn.Scan(ctx)
	if err != nil {
		return fmt.Errorf("scanning %s: %w", dir, err)
	}
	if len(existing) > 0 {
		result, err := ingestService.Ingest(ctx, existing)
		if err != nil {
			return fmt.Errorf("ingest failed: %w", err)
		}
		outputIngestResult(cmd, result)
	}

	uploads, err := conn.Watch(ctx)
	if err != nil {
		return fmt.Errorf("watching %s: %w", dir, err)
	}
	cmd.Printf("Watching %s for PDFs (Ctrl+C to stop)\n", conn.RootPath())

	return watchLoop(ctx, cmd, uploads)
}

// watchLoop ingests each upload as it arrives until the channel closes.
func watchLoop(ctx context.Context, cmd *cobra.Command, uploads <-chan domain.FileUpload) error {
	for file := range uploads {
		result, err := ingestService.Ingest(ctx, []domain.FileUpload{file})
		if err != nil {
			if ctx.Err() != nil {
				break
			}
			return fmt.Errorf("ingest failed: %w", err)
		}
		outputIngestResult(cmd, result)
	}
	cmd.Println("Stopped watching.")
	return nil
}

func outputIngestJSON(cmd *cobra.Command, result domain.IngestResult) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputIngestResult(cmd *cobra.Command, result domain.IngestResult) {
	cmd.Println(result.Message)
	for _, id := range result.DocumentIDs {
		cmd.Printf("  indexed  %s\n", id)
	}
	for _, f := range result.Failures {
		cmd.Printf("  failed   %s: %s\n", f.Filename, f.Reason)
	}
}
