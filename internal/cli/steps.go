package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/docmig/internal/steps"
)

// StepInfo describes one catalogue entry.
type StepInfo struct {
	Revision int    `json:"revision"`
	Name     string `json:"name"`
}

// StepsResult is the output of the steps command.
type StepsResult struct {
	Steps []StepInfo `json:"steps"`
}

func (r StepsResult) String() string {
	var b strings.Builder
	for i, s := range r.Steps {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%d %s", s.Revision, s.Name)
	}
	return b.String()
}

// NewStepsCommand creates the steps command.
func NewStepsCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "steps",
		Short:         "List the migration catalogue",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			result := StepsResult{}
			for _, s := range steps.NewLedger().Steps() {
				result.Steps = append(result.Steps, StepInfo{Revision: s.Revision, Name: s.Name})
			}
			return rootOpts.formatter(cmd).Success(result)
		},
	}
}
