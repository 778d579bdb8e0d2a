package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/docmig/internal/doc"
	"github.com/roach88/docmig/internal/store"
)

// ImportOptions holds flags for the import command.
type ImportOptions struct {
	*RootOptions
	Database string
	ID       string
}

// DocumentInfo describes a stored document.
type DocumentInfo struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Revision int    `json:"revision"`
	Hash     string `json:"hash"`
	Seq      int64  `json:"seq"`
}

func newDocumentInfo(d store.Document) DocumentInfo {
	return DocumentInfo{ID: d.ID, Name: d.Name, Revision: d.Revision, Hash: d.Hash, Seq: d.Seq}
}

func (i DocumentInfo) String() string {
	return fmt.Sprintf("%s %q revision %d hash %s seq %d", i.ID, i.Name, i.Revision, i.Hash, i.Seq)
}

// NewImportCommand creates the import command.
func NewImportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ImportOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "import <document>",
		Short: "Store a document file in a SQLite store",
		Long: `Decode a document file and store its canonical form. The document keeps
its revision; run "docmig migrate --db" to bring stored documents up to
date. Importing again under the same id replaces the stored body.

Example:
  docmig import --db ./docs.db plant.yaml
  docmig import --db ./docs.db --id plant-v2 plant.cue`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	cmd.Flags().StringVar(&opts.ID, "id", "", "document id (defaults to the file name without extension)")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runImport(opts *ImportOptions, path string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)
	logger := opts.logger(cmd)

	d, _, err := doc.DecodeFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fail(formatter, ExitCommandError, ErrCodeNotFound, fmt.Sprintf("document not found: %s", path), err)
		}
		return fail(formatter, ExitCommandError, ErrCodeDecode, fmt.Sprintf("failed to decode %s", path), err)
	}

	id := opts.ID
	if id == "" {
		id = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}

	st, err := store.Open(opts.Database)
	if err != nil {
		return fail(formatter, ExitCommandError, ErrCodeStore, "failed to open database", err)
	}
	defer func() {
		if closeErr := st.Close(); closeErr != nil {
			logger.Error("error closing database", "error", closeErr)
		}
	}()

	stored, err := st.SaveDomain(commandContext(cmd), id, d)
	if err != nil {
		return fail(formatter, ExitCommandError, ErrCodeStore, fmt.Sprintf("failed to store %s", id), err)
	}
	logger.Info("document imported", "id", id, "revision", stored.Revision, "seq", stored.Seq)

	return formatter.Success(newDocumentInfo(stored))
}
