package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/roach88/docmig/internal/doc"
)

// DefaultIDStart is the first fixture ID minted when a scenario does not
// set id_start.
const DefaultIDStart = 1000

// Scenario defines a migration scenario.
// It migrates one document fixture and asserts on the report and the
// migrated graph.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Document is the path of the document fixture, relative to the
	// scenario file. The format follows the file extension.
	Document string `yaml:"document"`

	// Until caps the migration at this revision. Zero runs every step.
	Until int `yaml:"until,omitempty"`

	// IDStart seeds the sequential GlobalID generator handed to steps.
	IDStart int `yaml:"id_start,omitempty"`

	// Assertions validate the report and the migrated document.
	Assertions []Assertion `yaml:"assertions"`
}

// Assertion validates the report or the migrated graph.
type Assertion struct {
	// Type is one of the Assert* constants.
	Type string `yaml:"type"`

	// Route addresses an entity by its walker route (value, same, owner).
	Route string `yaml:"route,omitempty"`

	// Property names a property of the entity at Route (value, same).
	Property string `yaml:"property,omitempty"`

	// Target is the route of the expected entity (same, owner).
	// For owner, "-" expects no recorded owner.
	Target string `yaml:"target,omitempty"`

	// Expect is the expected value (revision, fixes, flagged, value).
	// Values are compared as text.
	Expect any `yaml:"expect,omitempty"`

	// Steps lists the expected changed steps in order (changed).
	Steps []string `yaml:"steps,omitempty"`
}

// Assertion type constants.
const (
	AssertRevision  = "revision"
	AssertFixes     = "fixes"
	AssertFlagged   = "flagged"
	AssertChanged   = "changed"
	AssertValue     = "value"
	AssertSame      = "same"
	AssertOwner     = "owner"
	AssertUniqueIDs = "unique_ids"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed, contains
// unknown fields or is missing required fields. The document path is
// resolved against the scenario's directory.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if scenario.Document != "" && !filepath.IsAbs(scenario.Document) {
		scenario.Document = filepath.Join(filepath.Dir(path), scenario.Document)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if s.Document == "" {
		return fmt.Errorf("document is required")
	}

	if _, err := doc.FormatFromPath(s.Document); err != nil {
		return fmt.Errorf("document: %w", err)
	}

	if _, err := os.Stat(s.Document); os.IsNotExist(err) {
		return fmt.Errorf("document file not found: %s", s.Document)
	}

	if s.Until < 0 {
		return fmt.Errorf("until must be non-negative")
	}

	if s.IDStart < 0 {
		return fmt.Errorf("id_start must be non-negative")
	}

	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}

	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertRevision, AssertFixes, AssertFlagged:
		if a.Expect == nil {
			return fmt.Errorf("assertions[%d]: expect is required for %s", index, a.Type)
		}
	case AssertChanged:
		if a.Steps == nil {
			return fmt.Errorf("assertions[%d]: steps is required for changed (use [] for none)", index)
		}
	case AssertValue:
		if a.Route == "" || a.Property == "" {
			return fmt.Errorf("assertions[%d]: route and property are required for value", index)
		}
		if a.Expect == nil {
			return fmt.Errorf("assertions[%d]: expect is required for value", index)
		}
	case AssertSame:
		if a.Route == "" || a.Property == "" || a.Target == "" {
			return fmt.Errorf("assertions[%d]: route, property and target are required for same", index)
		}
	case AssertOwner:
		if a.Route == "" || a.Target == "" {
			return fmt.Errorf("assertions[%d]: route and target are required for owner", index)
		}
	case AssertUniqueIDs:
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}
