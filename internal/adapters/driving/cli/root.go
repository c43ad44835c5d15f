// Package cli provides the cobra command tree for docqa.
// It implements a driving adapter following hexagonal architecture principles.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docqa/internal/core/ports/driven"
	"github.com/custodia-labs/docqa/internal/core/ports/driving"
	"github.com/custodia-labs/docqa/internal/logger"
)

// version is set at build time with -ldflags "-X .../cli.version=...".
var version = "dev"

var verbose bool

// Services wired by the composition root.
var (
	ingestService   driving.IngestService
	queryService    driving.QueryService
	documentService driving.DocumentService
	settingsService driving.SettingsService
	configValidator driven.AIConfigValidator

	// setupErr explains why the AI-backed services are missing, if they are.
	setupErr error
)

var rootCmd = &cobra.Command{
	Use:   "docqa",
	Short: "Ask questions about your PDF documents",
	Long: `docqa indexes PDF documents and answers natural-language questions
about them, citing the documents and pages each answer is based on.

Get started:
  docqa ingest ./papers        # index every PDF under ./papers
  docqa ask "What is the refund window?"
  docqa serve                  # REST API on 0.0.0.0:8000`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log pipeline stages to stderr")
}

// Services bundles the ports the commands drive.
type Services struct {
	Ingest    driving.IngestService
	Query     driving.QueryService
	Document  driving.DocumentService
	Settings  driving.SettingsService
	Validator driven.AIConfigValidator
}

// SetServices installs the services used by the commands.
func SetServices(s Services) {
	ingestService = s.Ingest
	queryService = s.Query
	documentService = s.Document
	settingsService = s.Settings
	configValidator = s.Validator
}

// SetSetupError records why some services could not be built.
// Commands that need them report it instead of a bare "not configured".
func SetSetupError(err error) {
	setupErr = err
}

// notConfigured reports a missing service, with the setup error when known.
func notConfigured(name string) error {
	if setupErr != nil {
		return fmt.Errorf("%s service not configured: %w", name, setupErr)
	}
	return fmt.Errorf("%s service not configured", name)
}

// Execute runs the root command.
func Execute() error {
	rootCmd.SetOut(os.Stdout)
	return rootCmd.Execute()
}
