package ledger

import (
	"log/slog"

	"github.com/roach88/docmig/internal/model"
	"github.com/roach88/docmig/internal/walk"
)

// Context is the traversal-scoped state handed to one step invocation.
// It is created fresh for every step and discarded afterwards.
type Context struct {
	step    Step
	walker  *walk.Walker
	buffer  *walk.Buffer
	logger  *slog.Logger
	ids     model.IDGenerator
	applied int
	flagged int
}

// NewContext builds a standalone step context, for running a step
// outside a Ledger (tests, diagnostics).
func NewContext(step Step, logger *slog.Logger, ids model.IDGenerator) *Context {
	if logger == nil {
		logger = slog.Default()
	}
	if ids == nil {
		ids = model.UUIDGenerator{}
	}
	w := walk.New()
	return &Context{
		step:   step,
		walker: w,
		buffer: walk.NewBuffer(w),
		logger: logger.With("revision", step.Revision, "step", step.Name),
		ids:    ids,
	}
}

// Walker returns the step's walker.
func (c *Context) Walker() *walk.Walker { return c.walker }

// Buffer returns the step's deferred mutation buffer, guarded by Walker.
func (c *Context) Buffer() *walk.Buffer { return c.buffer }

// Logger returns a logger annotated with the step revision and name.
func (c *Context) Logger() *slog.Logger { return c.logger }

// IDs returns the host-supplied GlobalID generator.
func (c *Context) IDs() model.IDGenerator { return c.ids }

// Walk walks roots with the step's walker.
func (c *Context) Walk(roots []model.Entity, v walk.Visitor) error {
	return c.walker.WalkWith(roots, v)
}

// Apply applies the step's buffer and counts the fixes written.
func (c *Context) Apply() (int, error) {
	n, err := c.buffer.ApplyAll()
	c.applied += n
	return n, err
}

// Flag records an item the step detected but deliberately left alone.
func (c *Context) Flag(route, reason string, attrs ...any) {
	c.flagged++
	c.logger.Warn(reason, append([]any{"route", route}, attrs...)...)
}

// Applied returns the number of fixes applied so far.
func (c *Context) Applied() int { return c.applied }

// Flagged returns the number of items flagged so far.
func (c *Context) Flagged() int { return c.flagged }
