package cli

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docqa/internal/logger"
)

func TestRootCmd_Use(t *testing.T) {
	assert.Equal(t, "docqa", rootCmd.Use)
}

func TestRootCmd_HasSubcommands(t *testing.T) {
	commands := rootCmd.Commands()
	names := make([]string, 0, len(commands))
	for _, cmd := range commands {
		names = append(names, cmd.Name())
	}

	for _, want := range []string{"ingest", "ask", "search", "document", "serve", "mcp", "settings", "tui", "version"} {
		assert.Contains(t, names, want)
	}
}

func TestRootCmd_VerboseFlag(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	defer logger.SetVerbose(false)

	_, err := executeCommand("--verbose", "version")

	require.NoError(t, err)
	assert.True(t, logger.IsVerbose())
}

func TestNotConfigured(t *testing.T) {
	prev := setupErr
	defer SetSetupError(prev)

	SetSetupError(nil)
	assert.EqualError(t, notConfigured("query"), "query service not configured")

	cause := errors.New("embedding: OPENAI_API_KEY not set")
	SetSetupError(cause)
	err := notConfigured("query")
	require.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "query service not configured")
}

func TestSetServices(t *testing.T) {
	ts, cleanup := setupTestServicesWith()
	defer cleanup()

	assert.Equal(t, ts.ingest, ingestService)
	assert.Equal(t, ts.query, queryService)
	assert.Equal(t, ts.document, documentService)
	assert.Equal(t, ts.settings, settingsService)
	assert.Equal(t, ts.validator, configValidator)
}
