package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/docmig/internal/doc"
	"github.com/roach88/docmig/internal/model"
	"github.com/roach88/docmig/internal/walk"
)

// WalkEntry is one entity reached by the walker.
type WalkEntry struct {
	Route string `json:"route"`
	Type  string `json:"type"`
	ID    string `json:"id,omitempty"`
	Owner string `json:"owner,omitempty"` // type of the owning entity, empty for references
}

// WalkResult lists entities in visit order.
type WalkResult struct {
	Entities []WalkEntry `json:"entities"`
}

func (r WalkResult) String() string {
	var b strings.Builder
	for i, e := range r.Entities {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(e.Route)
		b.WriteByte(' ')
		b.WriteString(e.Type)
		if e.ID != "" {
			b.WriteByte(' ')
			b.WriteString(e.ID)
		}
	}
	return b.String()
}

// NewWalkCommand creates the walk command.
func NewWalkCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "walk <document>",
		Short: "List every entity reachable from the document root",
		Long: `Walk the document graph and print each distinct entity once, in visit
order, with its route, type and global id. Useful to locate entities
named in migration warnings.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWalk(rootOpts, args[0], cmd)
		},
	}
	return cmd
}

func runWalk(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	d, _, err := doc.DecodeFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fail(formatter, ExitCommandError, ErrCodeNotFound, fmt.Sprintf("document not found: %s", path), err)
		}
		return fail(formatter, ExitCommandError, ErrCodeDecode, fmt.Sprintf("failed to decode %s", path), err)
	}

	result := WalkResult{Entities: []WalkEntry{}}
	err = walk.New().Walk([]model.Entity{d}, func(n walk.Node) error {
		entry := WalkEntry{Route: n.Route, Type: model.TypeOf(n.Entity)}
		if u, ok := n.Entity.(model.Unique); ok {
			entry.ID = u.GlobalID().String()
		}
		if n.Owner != nil {
			entry.Owner = model.TypeOf(n.Owner)
		}
		result.Entities = append(result.Entities, entry)
		return nil
	})
	if err != nil {
		return fail(formatter, ExitFailure, ErrCodeGeneric, "walk failed", err)
	}

	return formatter.Success(result)
}
