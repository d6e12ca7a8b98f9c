package cli

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"productcatalog/service"
)

// decodeProducts accepts a JSON array, NDJSON, or a single JSON object.
func decodeProducts(b []byte) ([]service.CreateProductRequest, error) {
	b = bytes.TrimSpace(b)
	if len(b) == 0 {
		return nil, errors.New("empty file")
	}

	var reqs []service.CreateProductRequest
	if b[0] == '[' {
		if err := json.Unmarshal(b, &reqs); err != nil {
			return nil, err
		}
		return reqs, nil
	}

	scanner := bufio.NewScanner(bytes.NewReader(b))
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var r service.CreateProductRequest
		if err := json.Unmarshal(line, &r); err != nil {
			return nil, err
		}
		reqs = append(reqs, r)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return reqs, nil
}

func init() {
	// import
	var importFile string
	importCmd := &cobra.Command{
		Use:   "import --file <file>",
		Short: "Import products from JSON or NDJSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			if importFile == "" {
				return errors.New("--file required")
			}
			b, err := os.ReadFile(importFile)
			if err != nil {
				return err
			}
			reqs, err := decodeProducts(b)
			if err != nil {
				return err
			}

			created, err := services.Products.Import(cmd.Context(), reqs)
			slog.Info("import finished", "file", importFile, "requested", len(reqs), "created", len(created))
			if err != nil {
				return err
			}
			fmt.Printf("imported %d products\n", len(created))
			return nil
		},
	}
	importCmd.Flags().StringVar(&importFile, "file", "", "input file")
	rootCmd.AddCommand(importCmd)

	// export
	var exportFile string
	exportCmd := &cobra.Command{
		Use:   "export --file <file>",
		Short: "Export products to JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			if exportFile == "" {
				return errors.New("--file required")
			}
			out, err := services.Products.GetAll(cmd.Context())
			if err != nil {
				return err
			}
			b, err := json.MarshalIndent(out, "", "  ")
			if err != nil {
				return err
			}
			if dir := filepath.Dir(exportFile); dir != "" {
				if err := os.MkdirAll(dir, 0o755); err != nil {
					return err
				}
			}
			return os.WriteFile(exportFile, b, 0o644)
		},
	}
	exportCmd.Flags().StringVar(&exportFile, "file", "", "output file")
	rootCmd.AddCommand(exportCmd)
}
