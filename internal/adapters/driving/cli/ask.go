package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

var (
	askTopK   int
	askJSON   bool
	askFormat string
)

// Output formats for ask.
const (
	formatText = "text"
	formatJSON = "json"
	formatYAML = "yaml"
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Answer a question from the indexed documents",
	Long: `Retrieves the passages most similar to the question and asks the
configured LLM to answer using only those passages. The answer is followed
by the documents and pages it was based on.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().IntVarP(&askTopK, "top-k", "k", 0, "number of passages to retrieve (0 = configured default)")
	askCmd.Flags().BoolVar(&askJSON, "json", false, "output the result as JSON")
	askCmd.Flags().StringVarP(&askFormat, "format", "f", formatText, "output format: text, json or yaml")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	if queryService == nil {
		return notConfigured("query")
	}

	format := askFormat
	if askJSON {
		format = formatJSON
	}
	switch format {
	case formatText, formatJSON, formatYAML:
	default:
		return fmt.Errorf("unknown format %q (want text, json or yaml)", format)
	}
	if askTopK < 0 {
		return errors.New("--top-k must not be negative")
	}

	question := strings.Join(args, " ")
	result := queryService.AnswerQuery(cmd.Context(), domain.Query{Text: question, TopK: askTopK})

	var err error
	switch format {
	case formatJSON:
		err = outputAnswerJSON(cmd, result)
	case formatYAML:
		err = outputAnswerYAML(cmd, result)
	default:
		outputAnswerText(cmd, result)
	}
	if err != nil {
		return err
	}

	if !result.Success {
		return fmt.Errorf("answer failed: %s", result.ErrorMessage)
	}
	return nil
}

func outputAnswerJSON(cmd *cobra.Command, result domain.AnswerResult) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputAnswerYAML(cmd *cobra.Command, result domain.AnswerResult) error {
	data, err := yaml.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}
	cmd.Print(string(data))
	return nil
}

func outputAnswerText(cmd *cobra.Command, result domain.AnswerResult) {
	if !result.Success {
		return
	}
	if result.Answer == "" {
		cmd.Println("No relevant content was found in the indexed documents.")
		return
	}

	cmd.Println(result.Answer)
	if len(result.Sources) == 0 {
		return
	}

	cmd.Println()
	cmd.Println("Sources:")
	for i, src := range result.Sources {
		cmd.Printf("  [%d] %s, p. %d", i+1, src.Title, src.PageNumber)
		if src.Author != "" && src.Author != domain.DefaultAuthor {
			cmd.Printf(" (%s)", src.Author)
		}
		cmd.Printf("  %.2f\n", src.Score)
	}
}
