package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var (
	historyDoc  string
	historyJSON bool
)

var historyCmd = needsServices(&cobra.Command{
	Use:   "history",
	Short: "Show answered questions, newest first",
	Args:  cobra.NoArgs,
	RunE:  runHistory,
})

func init() {
	historyCmd.Flags().StringVarP(&historyDoc, "doc", "d", "", "only show questions about this document")
	historyCmd.Flags().BoolVar(&historyJSON, "json", false, "output as JSON")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, _ []string) error {
	ctx, cancel, ownerID, err := begin(cmd)
	if err != nil {
		return err
	}
	defer cancel()

	entries, err := services.History.List(ctx, ownerID, historyDoc)
	if err != nil {
		return fmt.Errorf("failed to list history: %w", err)
	}

	if historyJSON {
		return writeJSON(cmd, entries)
	}

	if len(entries) == 0 {
		cmd.Println("No questions asked yet.")
		return nil
	}

	for i := range entries {
		e := &entries[i]
		cmd.Printf("[%s] %s\n", e.CreatedAt.Local().Format(time.DateTime), e.DocumentID)
		cmd.Printf("Q: %s\n", e.Question)
		cmd.Printf("A: %s\n", preview(e.Answer, 200))
		cmd.Printf("   (%d sources)\n\n", len(e.Sources))
	}
	return nil
}
