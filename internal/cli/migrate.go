package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/roach88/docmig/internal/doc"
	"github.com/roach88/docmig/internal/ledger"
	"github.com/roach88/docmig/internal/steps"
	"github.com/roach88/docmig/internal/store"
)

// MigrateOptions holds flags for the migrate command.
type MigrateOptions struct {
	*RootOptions
	Database    string
	Out         string
	DryRun      bool
	ToRevision  int
	MetricsFile string
}

// MigrateResult summarises one document passed through the ledger.
type MigrateResult struct {
	Document string              `json:"document"`
	From     int                 `json:"from"`
	To       int                 `json:"to"`
	Steps    []ledger.StepResult `json:"steps"`
	Fixes    int                 `json:"fixes"`
	Flagged  int                 `json:"flagged"`
	Written  bool                `json:"written"`
	Hash     string              `json:"hash"`
}

// MigrateSummary is the output of the migrate command.
type MigrateSummary struct {
	Documents []MigrateResult `json:"documents"`
}

func (s MigrateSummary) String() string {
	if len(s.Documents) == 0 {
		return "no documents"
	}
	var b strings.Builder
	for i, r := range s.Documents {
		if i > 0 {
			b.WriteByte('\n')
		}
		switch {
		case len(r.Steps) == 0:
			fmt.Fprintf(&b, "%s: up to date at revision %d", r.Document, r.To)
		default:
			fmt.Fprintf(&b, "%s: revision %d -> %d (%d steps, %d fixes, %d flagged)",
				r.Document, r.From, r.To, len(r.Steps), r.Fixes, r.Flagged)
		}
		if r.Written {
			b.WriteString(", written")
		}
		for _, st := range r.Steps {
			state := "unchanged"
			if st.Changed {
				state = "changed"
			}
			fmt.Fprintf(&b, "\n  %d %s: %s, %d fixes", st.Revision, st.Name, state, st.Fixes)
			if st.Flagged > 0 {
				fmt.Fprintf(&b, ", %d flagged", st.Flagged)
			}
		}
	}
	return b.String()
}

// NewMigrateCommand creates the migrate command.
func NewMigrateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &MigrateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "migrate [document]",
		Short: "Run pending migration steps",
		Long: `Run every pending migration step against a document file or against
every document in a store.

A document file is rewritten in place (or to --out) only if a step ran.
CUE documents are read-only and require --out.

Example:
  docmig migrate plant.yaml
  docmig migrate plant.cue --out plant.json
  docmig migrate --db ./docs.db --dry-run --format json`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrate(opts, args, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "migrate every document in this SQLite store")
	cmd.Flags().StringVarP(&opts.Out, "out", "o", "", "write the migrated document here instead of in place")
	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "run the steps but write nothing")
	cmd.Flags().IntVar(&opts.ToRevision, "to-revision", 0, "stop after this revision (0 = latest)")
	cmd.Flags().StringVar(&opts.MetricsFile, "metrics-textfile", "", "write Prometheus metrics to this file")

	return cmd
}

func runMigrate(opts *MigrateOptions, args []string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)
	logger := opts.logger(cmd)

	switch {
	case opts.Database == "" && len(args) == 0:
		return fail(formatter, ExitCommandError, ErrCodeUsage, "a document path or --db is required", nil)
	case opts.Database != "" && len(args) > 0:
		return fail(formatter, ExitCommandError, ErrCodeUsage, "a document path and --db are mutually exclusive", nil)
	case opts.Database != "" && opts.Out != "":
		return fail(formatter, ExitCommandError, ErrCodeUsage, "--out cannot be used with --db", nil)
	case opts.ToRevision < 0:
		return fail(formatter, ExitCommandError, ErrCodeUsage, fmt.Sprintf("invalid --to-revision %d", opts.ToRevision), nil)
	}

	l, reg, err := opts.ledger(logger)
	if err != nil {
		return fail(formatter, ExitCommandError, ErrCodeMetrics, "failed to set up metrics", err)
	}

	var summary MigrateSummary
	if opts.Database != "" {
		summary, err = migrateStore(opts, l, logger, cmd, formatter)
	} else {
		var res MigrateResult
		res, err = migrateFile(opts, l, args[0], formatter)
		summary.Documents = []MigrateResult{res}
	}
	if err != nil {
		return err
	}

	if reg != nil {
		if err := prometheus.WriteToTextfile(opts.MetricsFile, reg); err != nil {
			return fail(formatter, ExitCommandError, ErrCodeMetrics, "failed to write metrics", err)
		}
	}

	return formatter.Success(summary)
}

// ledger builds the default ledger, limited by --to-revision and wired to
// a private metrics registry when --metrics-textfile is set.
func (o *MigrateOptions) ledger(logger *slog.Logger) (*ledger.Ledger, *prometheus.Registry, error) {
	lopts := []ledger.Option{ledger.WithLogger(logger)}
	if o.IDs != nil {
		lopts = append(lopts, ledger.WithIDGenerator(o.IDs))
	}

	var reg *prometheus.Registry
	if o.MetricsFile != "" {
		reg = prometheus.NewRegistry()
		m, err := ledger.NewMetrics(reg)
		if err != nil {
			return nil, nil, err
		}
		lopts = append(lopts, ledger.WithMetrics(m))
	}

	l := steps.NewLedger(lopts...)
	if o.ToRevision > 0 {
		l = l.Until(o.ToRevision)
	}
	return l, reg, nil
}

func migrateFile(opts *MigrateOptions, l *ledger.Ledger, path string, formatter *OutputFormatter) (MigrateResult, error) {
	d, format, err := doc.DecodeFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return MigrateResult{}, fail(formatter, ExitCommandError, ErrCodeNotFound, fmt.Sprintf("document not found: %s", path), err)
		}
		return MigrateResult{}, fail(formatter, ExitCommandError, ErrCodeDecode, fmt.Sprintf("failed to decode %s", path), err)
	}

	rep, err := l.RunReport(d)
	if err != nil {
		return MigrateResult{}, fail(formatter, ExitFailure, ErrCodeMigration, fmt.Sprintf("failed to migrate %s", path), err)
	}
	res := newMigrateResult(path, rep)

	if !opts.DryRun && (rep.Ran() || opts.Out != "") {
		target := opts.Out
		if target == "" {
			if format == doc.FormatCUE {
				return MigrateResult{}, fail(formatter, ExitCommandError, ErrCodeWriteFailed,
					fmt.Sprintf("cannot rewrite CUE document %s; use --out", path), nil)
			}
			target = path
		}
		if err := doc.EncodeFile(target, d); err != nil {
			return MigrateResult{}, fail(formatter, ExitCommandError, ErrCodeWriteFailed, fmt.Sprintf("failed to write %s", target), err)
		}
		d.ClearDirty()
		res.Written = true
		formatter.VerboseLog("wrote %s", target)
	}

	if res.Hash, err = doc.Hash(d); err != nil {
		return MigrateResult{}, fail(formatter, ExitFailure, ErrCodeGeneric, "failed to hash document", err)
	}
	return res, nil
}

func migrateStore(opts *MigrateOptions, l *ledger.Ledger, logger *slog.Logger, cmd *cobra.Command, formatter *OutputFormatter) (MigrateSummary, error) {
	ctx := commandContext(cmd)

	st, err := store.Open(opts.Database)
	if err != nil {
		return MigrateSummary{}, fail(formatter, ExitCommandError, ErrCodeStore, "failed to open database", err)
	}
	defer func() {
		if closeErr := st.Close(); closeErr != nil {
			logger.Error("error closing database", "error", closeErr)
		}
	}()

	rows, err := st.ListDocuments(ctx)
	if err != nil {
		return MigrateSummary{}, fail(formatter, ExitCommandError, ErrCodeStore, "failed to list documents", err)
	}

	summary := MigrateSummary{Documents: []MigrateResult{}}
	for _, row := range rows {
		d, err := row.Decode()
		if err != nil {
			return summary, fail(formatter, ExitCommandError, ErrCodeDecode, fmt.Sprintf("failed to decode %s", row.ID), err)
		}

		rep, err := l.RunReport(d)
		if err != nil {
			return summary, fail(formatter, ExitFailure, ErrCodeMigration, fmt.Sprintf("failed to migrate %s", row.ID), err)
		}
		res := newMigrateResult(row.ID, rep)
		res.Hash = row.Hash

		if rep.Ran() && !opts.DryRun {
			run, err := st.SaveMigration(ctx, row.ID, d, rep)
			if err != nil {
				return summary, fail(formatter, ExitCommandError, ErrCodeStore, fmt.Sprintf("failed to save %s", row.ID), err)
			}
			d.ClearDirty()
			res.Written = true
			if res.Hash, err = doc.Hash(d); err != nil {
				return summary, fail(formatter, ExitFailure, ErrCodeGeneric, "failed to hash document", err)
			}
			logger.Debug("stored migration run", "document", row.ID, "run", run.ID, "seq", run.Seq)
		}
		summary.Documents = append(summary.Documents, res)
	}
	return summary, nil
}

func newMigrateResult(name string, rep *ledger.Report) MigrateResult {
	return MigrateResult{
		Document: name,
		From:     rep.From,
		To:       rep.To,
		Steps:    rep.Steps,
		Fixes:    rep.Fixes(),
		Flagged:  rep.Flagged(),
	}
}
