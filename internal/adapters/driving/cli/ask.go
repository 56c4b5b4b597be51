package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var (
	askTopK    int
	askJSON    bool
	askSources bool
)

var askCmd = needsServices(&cobra.Command{
	Use:   "ask [doc-id] [question]",
	Short: "Ask a question about a document",
	Long: `Answer a question using only the most relevant chunks of one document.

The answer and the chunks it was grounded in are recorded in your history.`,
	Args: cobra.MinimumNArgs(2),
	RunE: runAsk,
})

func init() {
	askCmd.Flags().IntVarP(&askTopK, "top-k", "k", 0, "number of chunks to use as context (0 = configured default)")
	askCmd.Flags().BoolVar(&askJSON, "json", false, "output answer and sources as JSON")
	askCmd.Flags().BoolVarP(&askSources, "sources", "s", false, "print the source chunks")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	docID := args[0]
	question := strings.Join(args[1:], " ")

	ctx, cancel, ownerID, err := begin(cmd)
	if err != nil {
		return err
	}
	defer cancel()

	result, err := services.Ask.Ask(ctx, ownerID, docID, question, askTopK)
	if err != nil {
		return fmt.Errorf("ask failed: %w", err)
	}

	if askJSON {
		return writeJSON(cmd, result)
	}

	cmd.Println(result.Answer)
	if !askSources {
		return nil
	}

	cmd.Println()
	cmd.Println("Sources:")
	for i, src := range result.Sources {
		cmd.Printf("%d. [chunk %d] score %.3f\n", i+1, src.ChunkIndex, src.Score)
		cmd.Printf("   %s\n", preview(src.Text, 120))
	}
	return nil
}

// preview returns text on one line, cut to at most n runes.
func preview(text string, n int) string {
	text = strings.Join(strings.Fields(text), " ")
	runes := []rune(text)
	if len(runes) <= n {
		return text
	}
	return string(runes[:n]) + "..."
}
