package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

var (
	ingestMIME string
	ingestName string
	ingestText bool
	ingestJSON bool
)

var ingestCmd = needsServices(&cobra.Command{
	Use:   "ingest [file]",
	Short: "Upload a document",
	Long: `Upload a document so that questions can be asked about it.

PDF, DOCX, HTML, Markdown and plain text files are supported. The original
file is kept in the object store and its text is chunked and embedded.
Nothing is stored if any step fails.

Use "-" to read raw text from stdin together with --name.

Examples:
  docqa ingest handbook.pdf
  docqa ingest notes.bin --mime text/plain
  cat notes.txt | docqa ingest - --name notes.txt`,
	Args: cobra.ExactArgs(1),
	RunE: runIngest,
})

func init() {
	ingestCmd.Flags().StringVar(&ingestMIME, "mime", "", "content type (detected from the file when empty)")
	ingestCmd.Flags().StringVar(&ingestName, "name", "", "document name (defaults to the file name)")
	ingestCmd.Flags().BoolVar(&ingestText, "text", false, "ingest the file as raw text, skipping extraction and upload")
	ingestCmd.Flags().BoolVar(&ingestJSON, "json", false, "output result as JSON")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	path := args[0]

	var content []byte
	var err error
	if path == "-" {
		if ingestName == "" {
			return errors.New("--name is required when reading from stdin")
		}
		content, err = io.ReadAll(cmd.InOrStdin())
	} else {
		content, err = os.ReadFile(path)
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	name := ingestName
	if name == "" {
		name = filepath.Base(path)
	}

	ctx, cancel, ownerID, err := begin(cmd)
	if err != nil {
		return err
	}
	defer cancel()

	var result *domain.IngestResult
	if ingestText || path == "-" {
		result, err = services.Ingest.Ingest(ctx, ownerID, string(content), name)
	} else {
		result, err = services.Ingest.IngestFile(ctx, ownerID, content, name, detectMIME(ingestMIME, name, content))
	}
	if err != nil {
		return fmt.Errorf("ingest failed: %w", err)
	}

	if ingestJSON {
		return writeJSON(cmd, result)
	}

	cmd.Printf("Ingested %s\n", name)
	cmd.Printf("  Document: %s\n", result.DocumentID)
	cmd.Printf("  Chunks:   %d\n", result.ChunkCount)
	return nil
}

// detectMIME prefers an explicit type, then the extension, then sniffing.
func detectMIME(explicit, name string, content []byte) string {
	if explicit != "" {
		return explicit
	}
	if byExt := mime.TypeByExtension(filepath.Ext(name)); byExt != "" {
		return byExt
	}
	return http.DetectContentType(content)
}

func writeJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	cmd.Println(string(data))
	return nil
}
