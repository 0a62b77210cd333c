package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/sercha-library/internal/adapters/driving/watch"
	"github.com/custodia-labs/sercha-library/internal/core/domain"
	"github.com/custodia-labs/sercha-library/internal/ingest"
)

var (
	addURL        string
	addText       string
	addType       string
	addCollection string
	addChunkSize  int
)

var addCmd = &cobra.Command{
	Use:   "add [file...]",
	Short: "Add records to the library",
	Long: `Adds records from files, from stdin ("-"), or from flags.

A JSON file may hold a single record, an array of records, or
{"items": [...]}. Text (.txt) and markdown (.md) files become one
document, split into chunks when longer than --chunk-size.

Examples:
  sercha-library add batch.json
  sercha-library add --collection notes meeting.md
  cat batch.json | sercha-library add -
  sercha-library add --url https://example.com/post --text "Post body"`,
	RunE: runAdd,
}

func init() {
	addCmd.Flags().StringVar(&addURL, "url", "", "URL of a single record to add")
	addCmd.Flags().StringVar(&addText, "text", "", "text of a single record to add")
	addCmd.Flags().StringVar(&addType, "type", string(domain.ContentTypeDocument), "content type of a single record")
	addCmd.Flags().StringVar(&addCollection, "collection", "", "collection for flag and text file records")
	addCmd.Flags().IntVar(&addChunkSize, "chunk-size", ingest.DefaultChunkSize, "characters per chunk for text files")
	rootCmd.AddCommand(addCmd)
}

func runAdd(cmd *cobra.Command, args []string) error {
	if err := requireLibrary(); err != nil {
		return err
	}

	records, err := recordsFromInput(cmd, args)
	if err != nil {
		return err
	}

	res, err := libraryService.Add(commandContext(cmd), records)
	if err != nil {
		return fmt.Errorf("failed to add records: %w", err)
	}
	if res != nil && !res.Success {
		return fmt.Errorf("backend rejected records: %s", res.Message)
	}

	cmd.Printf("Added %s.\n", plural(len(records), "record"))
	return nil
}

func recordsFromInput(cmd *cobra.Command, args []string) ([]domain.Record, error) {
	if len(args) == 0 {
		if addURL == "" && addText == "" {
			return nil, errors.New("nothing to add: pass JSON files or --url/--text")
		}
		r := domain.Record{URL: addURL, Text: addText, ContentType: domain.ContentType(addType)}
		if addCollection != "" {
			r.Metadata = map[string]any{domain.MetaCollection: addCollection}
		}
		return []domain.Record{r}, nil
	}

	var records []domain.Record
	for _, path := range args {
		var (
			data []byte
			err  error
		)
		if path == "-" {
			data, err = io.ReadAll(cmd.InOrStdin())
		} else {
			data, err = os.ReadFile(path)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
		parsed, err := decodeFile(path, data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		records = append(records, parsed...)
	}
	return records, nil
}

// decodeFile converts text and markdown files and parses everything else,
// stdin included, as JSON records.
func decodeFile(path string, data []byte) ([]domain.Record, error) {
	if ingest.Supported(path) {
		opts := []ingest.Option{ingest.WithChunkSize(addChunkSize)}
		if addCollection != "" {
			opts = append(opts, ingest.WithCollection(addCollection))
		}
		return ingest.FromFile(path, data, opts...)
	}
	return watch.ParseRecords(data)
}
