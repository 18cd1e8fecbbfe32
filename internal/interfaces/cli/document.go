package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/comparo/backend/internal/domain/knowledge"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [json-file]",
	Short: "Ingest documents from a JSON file",
	Long: `Reads a JSON array of {"content": "...", "metadata": {...}} objects and ingests it.
Use "-" to read from standard input.`,
	Args: cobra.ExactArgs(1),
	RunE: runIngest,
}

var uploadCmd = &cobra.Command{
	Use:   "upload [file]",
	Short: "Upload a PDF, HTML, Markdown or text file",
	Args:  cobra.ExactArgs(1),
	RunE:  runUpload,
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List documents, newest first",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

var deleteCmd = &cobra.Command{
	Use:   "delete [doc-id]",
	Short: "Delete a document",
	Args:  cobra.ExactArgs(1),
	RunE:  runDelete,
}

// upload 参数
var uploadFields UploadFields

func init() {
	uploadCmd.Flags().StringVar(&uploadFields.Title, "title", "", "Document title (defaults to the file title)")
	uploadCmd.Flags().StringVar(&uploadFields.Source, "source", "", "Document source (defaults to the file name)")
	uploadCmd.Flags().StringVar(&uploadFields.Category, "category", "", "Document category")

	rootCmd.AddCommand(ingestCmd)
	rootCmd.AddCommand(uploadCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(deleteCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	var r io.Reader
	if args[0] == "-" {
		r = cmd.InOrStdin()
	} else {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("failed to open %s: %w", args[0], err)
		}
		defer f.Close()
		r = f
	}

	var items []knowledge.IngestItem
	if err := json.NewDecoder(r).Decode(&items); err != nil {
		return fmt.Errorf("invalid JSON input: %w", err)
	}
	if len(items) == 0 {
		return errors.New("no documents to ingest")
	}

	report, err := apiClient.Ingest(cmd.Context(), items)
	if err != nil {
		return fmt.Errorf("failed to ingest documents: %w", err)
	}
	printReport(cmd, report)
	return nil
}

func runUpload(cmd *cobra.Command, args []string) error {
	report, err := apiClient.Upload(cmd.Context(), args[0], uploadFields)
	if err != nil {
		return fmt.Errorf("failed to upload %s: %w", args[0], err)
	}
	printReport(cmd, report)
	return nil
}

func runList(cmd *cobra.Command, args []string) error {
	list, err := apiClient.List(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list documents: %w", err)
	}

	if list.Total == 0 {
		cmd.Printf("No documents (backend: %s)\n", list.Backend)
		return nil
	}

	cmd.Printf("Documents (backend: %s):\n\n", list.Backend)
	for _, d := range list.Documents {
		cmd.Printf("  %s\n", d.ID)
		if title := d.Title(); title != "" {
			cmd.Printf("    Title: %s\n", title)
		}
		if src := d.Metadata.Source(); src != "" {
			cmd.Printf("    Source: %s\n", src)
		}
		if idx, ok := d.Metadata.ChunkIndex(); ok {
			count, _ := d.Metadata.ChunkCount()
			cmd.Printf("    Chunk: %d/%d\n", idx+1, count)
		}
		cmd.Printf("    Created: %s\n", d.CreatedAt.Format("2006-01-02 15:04"))
		cmd.Println()
	}
	cmd.Printf("Total: %d documents\n", list.Total)
	return nil
}

func runDelete(cmd *cobra.Command, args []string) error {
	if err := apiClient.Delete(cmd.Context(), args[0]); err != nil {
		return fmt.Errorf("failed to delete %s: %w", args[0], err)
	}
	cmd.Printf("Deleted %s\n", args[0])
	return nil
}

func printReport(cmd *cobra.Command, report *knowledge.IngestReport) {
	ok := color.New(color.FgGreen).SprintFunc()
	bad := color.New(color.FgRed).SprintFunc()

	cmd.Printf("Inserted: %s  Failed: %s\n",
		ok(report.Inserted),
		bad(report.Failed),
	)
	for i, r := range report.Results {
		if r.Success {
			cmd.Printf("  [%d] %s %s\n", i, ok("ok"), r.ID)
		} else {
			cmd.Printf("  [%d] %s %s\n", i, bad("failed"), r.Error)
		}
	}
}
