package harness

import (
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/docmig/internal/doc"
	"github.com/roach88/docmig/internal/model"
	"github.com/roach88/docmig/internal/steps"
	"github.com/roach88/docmig/internal/walk"
)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string      // Assertion type for categorization
	Route    string      // Route the assertion addressed, if any
	Expected string      // Human-readable expected outcome
	Actual   string      // Human-readable actual outcome
	Trace    []StepEvent // Steps executed by the scenario
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	if e.Route != "" {
		fmt.Fprintf(&buf, "  Route: %s\n", e.Route)
	}
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	fmt.Fprintf(&buf, "\nSteps:\n")
	for _, s := range e.Trace {
		fmt.Fprintf(&buf, "  [%d] %s changed=%t fixes=%d flagged=%d\n", s.Revision, s.Name, s.Changed, s.Fixes, s.Flagged)
	}

	return buf.String()
}

// routeIndex maps walker routes of the migrated document to their nodes.
type routeIndex map[string]walk.Node

func indexRoutes(d *doc.Domain) (routeIndex, error) {
	idx := make(routeIndex)
	err := walk.New().Walk([]model.Entity{d}, func(n walk.Node) error {
		idx[n.Route] = n
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("index routes: %w", err)
	}
	return idx, nil
}

// evaluateAssertions checks every assertion and records failures in
// result. The returned error covers malformed assertions only.
func evaluateAssertions(result *Result, assertions []Assertion) error {
	var idx routeIndex
	for i, a := range assertions {
		if needsRoutes(a.Type) && idx == nil {
			var err error
			if idx, err = indexRoutes(result.Document); err != nil {
				return err
			}
		}

		var err error
		switch a.Type {
		case AssertRevision:
			err = assertCount(result, a, result.To)
		case AssertFixes:
			err = assertCount(result, a, result.Fixes())
		case AssertFlagged:
			err = assertCount(result, a, result.Flagged())
		case AssertChanged:
			err = assertChanged(result, a)
		case AssertValue:
			err = assertValue(result, idx, a)
		case AssertSame:
			err = assertSame(result, idx, a)
		case AssertOwner:
			err = assertOwner(result, idx, a)
		case AssertUniqueIDs:
			err = assertUniqueIDs(result)
		default:
			return fmt.Errorf("assertions[%d]: unknown assertion type %q", i, a.Type)
		}

		if err != nil {
			result.AddError(err.Error())
		}
	}
	return nil
}

func needsRoutes(typ string) bool {
	switch typ {
	case AssertValue, AssertSame, AssertOwner:
		return true
	}
	return false
}

func assertCount(result *Result, a Assertion, actual int) error {
	if want := fmt.Sprint(a.Expect); want != fmt.Sprint(actual) {
		return &AssertionError{
			Type:     a.Type,
			Expected: want,
			Actual:   fmt.Sprint(actual),
			Trace:    result.Trace,
		}
	}
	return nil
}

func assertChanged(result *Result, a Assertion) error {
	actual := result.Changed()
	if !slices.Equal(actual, a.Steps) {
		return &AssertionError{
			Type:     AssertChanged,
			Expected: fmt.Sprintf("%v", a.Steps),
			Actual:   fmt.Sprintf("%v", actual),
			Trace:    result.Trace,
		}
	}
	return nil
}

// lookup returns the entity at route, or an AssertionError naming the
// missing route.
func lookup(result *Result, idx routeIndex, typ, route string) (walk.Node, error) {
	n, ok := idx[route]
	if !ok {
		return walk.Node{}, &AssertionError{
			Type:     typ,
			Route:    route,
			Expected: "entity at route",
			Actual:   "route not reached by the walker",
			Trace:    result.Trace,
		}
	}
	return n, nil
}

func readProperty(result *Result, n walk.Node, a Assertion) (any, error) {
	prop := n.Entity.Descriptor().Property(a.Property)
	if prop == nil {
		return nil, &AssertionError{
			Type:     a.Type,
			Route:    a.Route,
			Expected: fmt.Sprintf("property %s", a.Property),
			Actual:   fmt.Sprintf("%s has no such property", model.TypeOf(n.Entity)),
			Trace:    result.Trace,
		}
	}
	return model.PropertySlot(n.Entity, prop).Read()
}

// assertValue compares the text form of a property. GlobalIDs render in
// their canonical form; nil renders as "<nil>".
func assertValue(result *Result, idx routeIndex, a Assertion) error {
	n, err := lookup(result, idx, a.Type, a.Route)
	if err != nil {
		return err
	}
	v, err := readProperty(result, n, a)
	if err != nil {
		return err
	}
	if e, _ := model.Unwrap(v); e != nil {
		v = model.TypeOf(e)
	}
	if want, got := fmt.Sprint(a.Expect), fmt.Sprint(v); want != got {
		return &AssertionError{
			Type:     AssertValue,
			Route:    a.Route + "." + a.Property,
			Expected: fmt.Sprintf("%q", want),
			Actual:   fmt.Sprintf("%q", got),
			Trace:    result.Trace,
		}
	}
	return nil
}

func assertSame(result *Result, idx routeIndex, a Assertion) error {
	n, err := lookup(result, idx, a.Type, a.Route)
	if err != nil {
		return err
	}
	target, err := lookup(result, idx, a.Type, a.Target)
	if err != nil {
		return err
	}
	v, err := readProperty(result, n, a)
	if err != nil {
		return err
	}
	if e, _ := model.Unwrap(v); e != target.Entity {
		return &AssertionError{
			Type:     AssertSame,
			Route:    a.Route + "." + a.Property,
			Expected: fmt.Sprintf("the entity at %s", a.Target),
			Actual:   describe(idx, e),
			Trace:    result.Trace,
		}
	}
	return nil
}

// assertOwner checks the owner recorded in the ownership wrapper the
// entity was reached through.
func assertOwner(result *Result, idx routeIndex, a Assertion) error {
	n, err := lookup(result, idx, a.Type, a.Route)
	if err != nil {
		return err
	}
	own, ok := n.Raw.(model.Ownership)
	if !ok {
		return &AssertionError{
			Type:     AssertOwner,
			Route:    a.Route,
			Expected: "an owned slot",
			Actual:   fmt.Sprintf("reached through %T", n.Raw),
			Trace:    result.Trace,
		}
	}

	var want model.Entity
	if a.Target != doc.NoOwner {
		target, err := lookup(result, idx, a.Type, a.Target)
		if err != nil {
			return err
		}
		want = target.Entity
	}
	if own.Owner != want {
		return &AssertionError{
			Type:     AssertOwner,
			Route:    a.Route,
			Expected: describe(idx, want),
			Actual:   describe(idx, own.Owner),
			Trace:    result.Trace,
		}
	}
	return nil
}

func assertUniqueIDs(result *Result) error {
	dups, _, err := steps.FindDuplicateIDs(walk.New(), result.Document)
	if err != nil {
		return err
	}
	if len(dups) == 0 {
		return nil
	}
	routes := make([]string, 0, len(dups))
	for _, d := range dups {
		routes = append(routes, fmt.Sprintf("%s duplicates %s (%s)", d.Route, d.First, d.ID))
	}
	return &AssertionError{
		Type:     AssertUniqueIDs,
		Expected: "no duplicate GlobalIDs within a collection",
		Actual:   strings.Join(routes, "; "),
		Trace:    result.Trace,
	}
}

// describe names e by its route, falling back to its type for entities
// the walker never reached.
func describe(idx routeIndex, e model.Entity) string {
	if e == nil {
		return "<nil>"
	}
	for route, n := range idx {
		if n.Entity == e {
			return route
		}
	}
	return fmt.Sprintf("unreachable %s", model.TypeOf(e))
}
