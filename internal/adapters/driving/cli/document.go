package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var docsJSON bool

var documentCmd = &cobra.Command{
	Use:     "docs",
	Aliases: []string{"document"},
	Short:   "Manage uploaded documents",
}

var documentListCmd = needsServices(&cobra.Command{
	Use:   "list",
	Short: "List your documents, newest first",
	Args:  cobra.NoArgs,
	RunE:  runDocumentList,
})

var documentGetCmd = needsServices(&cobra.Command{
	Use:   "get [doc-id]",
	Short: "Show document details",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentGet,
})

func init() {
	documentCmd.PersistentFlags().BoolVar(&docsJSON, "json", false, "output as JSON")
	documentCmd.AddCommand(documentListCmd)
	documentCmd.AddCommand(documentGetCmd)
	rootCmd.AddCommand(documentCmd)
}

func runDocumentList(cmd *cobra.Command, _ []string) error {
	ctx, cancel, ownerID, err := begin(cmd)
	if err != nil {
		return err
	}
	defer cancel()

	docs, err := services.Document.List(ctx, ownerID)
	if err != nil {
		return fmt.Errorf("failed to list documents: %w", err)
	}

	if docsJSON {
		return writeJSON(cmd, docs)
	}

	if len(docs) == 0 {
		cmd.Println("No documents. Upload one with 'docqa ingest <file>'.")
		return nil
	}

	cmd.Printf("Documents (%d):\n\n", len(docs))
	for i := range docs {
		cmd.Printf("  %s  %s\n", docs[i].ID, docs[i].Filename)
		cmd.Printf("    %d chunks, uploaded %s\n", docs[i].ChunkCount, docs[i].CreatedAt.Local().Format(time.DateTime))
	}
	return nil
}

func runDocumentGet(cmd *cobra.Command, args []string) error {
	ctx, cancel, ownerID, err := begin(cmd)
	if err != nil {
		return err
	}
	defer cancel()

	doc, err := services.Document.Get(ctx, ownerID, args[0])
	if err != nil {
		return fmt.Errorf("failed to get document: %w", err)
	}

	if docsJSON {
		return writeJSON(cmd, doc)
	}

	cmd.Printf("Document: %s\n", doc.ID)
	cmd.Printf("  Filename:    %s\n", doc.Filename)
	if doc.MIMEType != "" {
		cmd.Printf("  Type:        %s\n", doc.MIMEType)
	}
	cmd.Printf("  Text length: %d\n", doc.TotalTextLength)
	cmd.Printf("  Chunks:      %d\n", doc.ChunkCount)
	if doc.ObjectRef != "" {
		cmd.Printf("  Original:    %s\n", doc.ObjectRef)
	}
	cmd.Printf("  Uploaded:    %s\n", doc.CreatedAt.Local().Format(time.DateTime))
	return nil
}
