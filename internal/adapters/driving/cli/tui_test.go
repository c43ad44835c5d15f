package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docqa/internal/adapters/driving/tui/messages"
)

func TestTUICmd_Exists(t *testing.T) {
	found := false
	for _, cmd := range rootCmd.Commands() {
		if cmd.Name() == "tui" {
			found = true
			break
		}
	}
	assert.True(t, found, "tui command should be registered")
}

func TestTUICmd_Metadata(t *testing.T) {
	assert.Equal(t, "tui", tuiCmd.Use)
	assert.NotEmpty(t, tuiCmd.Short)
	assert.Contains(t, tuiCmd.Long, "Ask questions")
	assert.NotNil(t, tuiCmd.RunE)
}

func TestTUICmd_TopKFlag(t *testing.T) {
	flag := tuiCmd.Flags().Lookup("top-k")
	require.NotNil(t, flag)
	assert.Equal(t, "k", flag.Shorthand)
	assert.Equal(t, "0", flag.DefValue)
}

func TestTUICmd_RejectsArgs(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	_, err := executeCommand("tui", "extra")

	require.Error(t, err)
}

func TestNewTUIApp(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	tuiTopK = 3

	app, err := newTUIApp()

	require.NoError(t, err)
	require.NotNil(t, app)
	assert.Equal(t, messages.ViewMenu, app.CurrentView())
	assert.False(t, app.Ready())
}

func TestNewTUIApp_WithoutDocumentService(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	documentService = nil

	app, err := newTUIApp()

	require.NoError(t, err)
	assert.NotNil(t, app)
}

func TestNewTUIApp_NoQueryService(t *testing.T) {
	cleanup := clearServices()
	defer cleanup()

	app, err := newTUIApp()

	require.Error(t, err)
	assert.Nil(t, app)
	assert.Contains(t, err.Error(), "query service not configured")
}

func TestNewTUIApp_NegativeTopK(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	tuiTopK = -1

	_, err := newTUIApp()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create TUI")
}

func TestNewTUIApp_ReportsSetupError(t *testing.T) {
	cleanup := clearServices()
	defer cleanup()
	SetSetupError(errBoom)

	_, err := newTUIApp()

	require.ErrorIs(t, err, errBoom)
}
