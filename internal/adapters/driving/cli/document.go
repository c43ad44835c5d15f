package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

var documentJSON bool

var documentCmd = &cobra.Command{
	Use:   "document",
	Short: "Inspect indexed documents",
	Long:  `List indexed documents or show the metadata of one.`,
}

var documentListCmd = &cobra.Command{
	Use:   "list",
	Short: "List indexed documents",
	Args:  cobra.NoArgs,
	RunE:  runDocumentList,
}

var documentGetCmd = &cobra.Command{
	Use:   "get [doc-id]",
	Short: "Show document info",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentGet,
}

func init() {
	documentCmd.PersistentFlags().BoolVar(&documentJSON, "json", false, "output as JSON")
	documentCmd.AddCommand(documentListCmd, documentGetCmd)
	rootCmd.AddCommand(documentCmd)
}

func runDocumentList(cmd *cobra.Command, _ []string) error {
	if documentService == nil {
		return notConfigured("document")
	}

	docs, err := documentService.List(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list documents: %w", err)
	}
	if docs == nil {
		docs = []domain.Document{}
	}

	switch {
	case documentJSON:
		return printJSON(cmd, docs)
	case len(docs) == 0:
		cmd.Println("No documents indexed.")
		return nil
	}

	cmd.Println(documentTable(docs, time.Now()))
	cmd.Printf("%s indexed, %s chunks\n",
		pluralise(len(docs), "document"), humanize.Comma(int64(totalChunks(docs))))
	return nil
}

// documentTable renders one row per document.
func documentTable(docs []domain.Document, now time.Time) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderRow(false).
		Headers("ID", "TITLE", "FILE", "PAGES", "CHUNKS", "INDEXED").
		StyleFunc(func(_, _ int) lipgloss.Style {
			return lipgloss.NewStyle().Padding(0, 1)
		})

	for i := range docs {
		d := &docs[i]
		t.Row(
			d.ID,
			d.Metadata.Title,
			d.Filename,
			strconv.Itoa(d.Metadata.PageCount),
			strconv.Itoa(d.ChunkCount),
			indexedAgo(d.CreatedAt, now),
		)
	}
	return t.String()
}

func indexedAgo(at, now time.Time) string {
	if at.IsZero() {
		return "-"
	}
	return humanize.RelTime(at, now, "ago", "from now")
}

func totalChunks(docs []domain.Document) int {
	n := 0
	for i := range docs {
		n += docs[i].ChunkCount
	}
	return n
}

func pluralise(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return humanize.Comma(int64(n)) + " " + noun + "s"
}

func runDocumentGet(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		return notConfigured("document")
	}

	id := args[0]
	doc, err := documentService.Get(cmd.Context(), id)
	if errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("document %s not found", id)
	}
	if err != nil {
		return fmt.Errorf("failed to get document: %w", err)
	}

	if documentJSON {
		return printJSON(cmd, doc)
	}

	cmd.Printf("Document: %s\n", doc.ID)
	for _, f := range []struct{ label, value string }{
		{"Title", doc.Metadata.Title},
		{"Author", doc.Metadata.Author},
		{"File", doc.Filename},
		{"Pages", strconv.Itoa(doc.Metadata.PageCount)},
		{"Chunks", strconv.Itoa(doc.ChunkCount)},
	} {
		cmd.Printf("  %s: %s\n", f.label, f.value)
	}
	if !doc.CreatedAt.IsZero() {
		cmd.Printf("  Indexed: %s (%s)\n",
			doc.CreatedAt.Format("2006-01-02 15:04:05"), humanize.Time(doc.CreatedAt))
	}
	return nil
}

func printJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal: %w", err)
	}
	cmd.Println(string(data))
	return nil
}
