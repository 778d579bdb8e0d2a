package cli

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/docmig/internal/doc"
	"github.com/roach88/docmig/internal/store"
)

// ShowOptions holds flags for the show command.
type ShowOptions struct {
	*RootOptions
	Database string
	Body     bool
}

// RunInfo describes one recorded migration run.
type RunInfo struct {
	From    int   `json:"from"`
	To      int   `json:"to"`
	Steps   int   `json:"steps"`
	Fixes   int   `json:"fixes"`
	Flagged int   `json:"flagged"`
	Seq     int64 `json:"seq"`
}

// ShowResult is the output of the show command.
type ShowResult struct {
	DocumentInfo
	Runs []RunInfo      `json:"runs"`
	Body json.RawMessage `json:"body,omitempty"`

	text string // YAML rendering of Body for text output
}

func (r ShowResult) String() string {
	var b strings.Builder
	b.WriteString(r.DocumentInfo.String())
	for _, run := range r.Runs {
		fmt.Fprintf(&b, "\n  run seq %d: revision %d -> %d (%d steps, %d fixes, %d flagged)",
			run.Seq, run.From, run.To, run.Steps, run.Fixes, run.Flagged)
	}
	if r.text != "" {
		b.WriteString("\n---\n")
		b.WriteString(strings.TrimSuffix(r.text, "\n"))
	}
	return b.String()
}

// NewShowCommand creates the show command.
func NewShowCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ShowOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show a stored document and its migration runs",
		Long: `Show a stored document's revision, content hash and migration history.
With --body the document itself is included (YAML in text output,
canonical JSON in JSON output).

Example:
  docmig show --db ./docs.db plant
  docmig show --db ./docs.db plant --body`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShow(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	cmd.Flags().BoolVar(&opts.Body, "body", false, "include the document body")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runShow(opts *ShowOptions, id string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)
	logger := opts.logger(cmd)
	ctx := commandContext(cmd)

	st, err := store.Open(opts.Database)
	if err != nil {
		return fail(formatter, ExitCommandError, ErrCodeStore, "failed to open database", err)
	}
	defer func() {
		if closeErr := st.Close(); closeErr != nil {
			logger.Error("error closing database", "error", closeErr)
		}
	}()

	stored, err := st.GetDocument(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fail(formatter, ExitCommandError, ErrCodeNotFound, fmt.Sprintf("document not found: %s", id), err)
		}
		return fail(formatter, ExitCommandError, ErrCodeStore, fmt.Sprintf("failed to read %s", id), err)
	}

	runs, err := st.Runs(ctx, id)
	if err != nil {
		return fail(formatter, ExitCommandError, ErrCodeStore, fmt.Sprintf("failed to read runs of %s", id), err)
	}

	result := ShowResult{DocumentInfo: newDocumentInfo(stored), Runs: []RunInfo{}}
	for _, r := range runs {
		result.Runs = append(result.Runs, RunInfo{
			From:    r.FromRevision,
			To:      r.ToRevision,
			Steps:   r.Steps,
			Fixes:   r.Fixes,
			Flagged: r.Flagged,
			Seq:     r.Seq,
		})
	}

	if opts.Body {
		result.Body = json.RawMessage(stored.Body)
		if formatter.Format != "json" {
			d, err := stored.Decode()
			if err != nil {
				return fail(formatter, ExitCommandError, ErrCodeDecode, fmt.Sprintf("failed to decode %s", id), err)
			}
			var buf bytes.Buffer
			if err := doc.Encode(&buf, d, doc.FormatYAML); err != nil {
				return fail(formatter, ExitFailure, ErrCodeGeneric, "failed to render document", err)
			}
			result.text = buf.String()
		}
	}

	return formatter.Success(result)
}
