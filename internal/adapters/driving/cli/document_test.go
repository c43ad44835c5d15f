package cli

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

// Document Command Tests

func TestDocumentCmd_Use(t *testing.T) {
	assert.Equal(t, "document", documentCmd.Use)
}

func TestDocumentCmd_Short(t *testing.T) {
	assert.Equal(t, "Inspect indexed documents", documentCmd.Short)
}

func TestDocumentCmd_HasSubcommands(t *testing.T) {
	commands := documentCmd.Commands()
	commandNames := make([]string, 0, len(commands))
	for _, cmd := range commands {
		commandNames = append(commandNames, cmd.Name())
	}

	assert.Contains(t, commandNames, "list")
	assert.Contains(t, commandNames, "get")
}

// Document List Tests

func TestDocumentListCmd_Executes(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	out, err := executeCommand("document", "list")

	require.NoError(t, err)
	for _, want := range []string{"ID", "TITLE", "CHUNKS", "doc-1", "Refund Policy", "refunds.pdf", "ago"} {
		assert.Contains(t, out, want)
	}
	assert.Contains(t, out, "1 document indexed, 7 chunks")
}

func TestDocumentListCmd_RejectsArgs(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	_, err := executeCommand("document", "list", "extra")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown command")
}

func TestDocumentListCmd_Empty(t *testing.T) {
	ts, cleanup := setupTestServicesWith()
	defer cleanup()
	ts.document.docs = nil

	out, err := executeCommand("document", "list")

	require.NoError(t, err)
	assert.Contains(t, out, "No documents indexed.")
}

func TestDocumentListCmd_JSON(t *testing.T) {
	ts, cleanup := setupTestServicesWith()
	defer cleanup()
	ts.document.docs = nil

	out, err := executeCommand("document", "list", "--json")

	require.NoError(t, err)
	assert.Equal(t, "[]\n", out)
}

func TestDocumentListCmd_Error(t *testing.T) {
	ts, cleanup := setupTestServicesWith()
	defer cleanup()
	ts.document.err = errBoom

	_, err := executeCommand("document", "list")

	require.ErrorIs(t, err, errBoom)
}

// Document Get Tests

func TestDocumentGetCmd_Use(t *testing.T) {
	assert.Equal(t, "get [doc-id]", documentGetCmd.Use)
}

func TestDocumentGetCmd_RequiresExactlyOneArg(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	_, err := executeCommand("document", "get")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg(s)")
}

func TestDocumentGetCmd_Executes(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	out, err := executeCommand("document", "get", "doc-1")

	require.NoError(t, err)
	assert.Contains(t, out, "Document: doc-1")
	assert.Contains(t, out, "Author: Legal")
	assert.Contains(t, out, "Pages: 4")
	assert.Contains(t, out, "Indexed: 2026-02-03 04:05:06 (")
}

func TestDocumentGetCmd_JSON(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	out, err := executeCommand("document", "get", "--json", "doc-1")

	require.NoError(t, err)
	var doc domain.Document
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.Equal(t, "doc-1", doc.ID)
	assert.Equal(t, 7, doc.ChunkCount)
}

func TestDocumentGetCmd_NotFound(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	_, err := executeCommand("document", "get", "missing")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "document missing not found")
}

func TestDocumentCmd_ServiceNotConfigured(t *testing.T) {
	cleanup := clearServices()
	defer cleanup()

	_, err := executeCommand("document", "list")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "document service not configured")
}

func TestDocumentTable(t *testing.T) {
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	docs := []domain.Document{
		{ID: "a", Filename: "a.pdf", Metadata: domain.DocumentMetadata{Title: "Alpha", PageCount: 2}, ChunkCount: 3, CreatedAt: now.Add(-3 * time.Hour)},
		{ID: "b", Filename: "b.pdf", Metadata: domain.DocumentMetadata{Title: "Beta", PageCount: 10}, ChunkCount: 1200},
	}

	out := documentTable(docs, now)

	assert.Contains(t, out, "Alpha")
	assert.Contains(t, out, "3 hours ago")
	assert.Contains(t, out, "1200")
	assert.Contains(t, out, "-")
}

func TestPluralise(t *testing.T) {
	assert.Equal(t, "1 document", pluralise(1, "document"))
	assert.Equal(t, "0 documents", pluralise(0, "document"))
	assert.Equal(t, "1,500 documents", pluralise(1500, "document"))
}

func TestTotalChunks(t *testing.T) {
	assert.Equal(t, 0, totalChunks(nil))
	assert.Equal(t, 9, totalChunks([]domain.Document{{ChunkCount: 4}, {ChunkCount: 5}}))
}
