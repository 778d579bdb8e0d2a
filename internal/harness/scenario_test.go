package harness

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadScenario_Valid(t *testing.T) {
	scenario, err := LoadScenario("testdata/scenarios/legacy_repair.yaml")
	require.NoError(t, err)

	assert.Equal(t, "legacy_repair", scenario.Name)
	assert.NotEmpty(t, scenario.Description)
	assert.Equal(t, filepath.Join("testdata", "documents", "legacy.yaml"), scenario.Document,
		"document path resolves against the scenario directory")
	assert.Equal(t, 100, scenario.IDStart)
	assert.Zero(t, scenario.Until)
	require.Len(t, scenario.Assertions, 12)
	assert.Equal(t, AssertRevision, scenario.Assertions[0].Type)
	assert.Equal(t, 5, scenario.Assertions[0].Expect)
	assert.Len(t, scenario.Assertions[3].Steps, 5)
}

func TestLoadScenario_EmptyStepList(t *testing.T) {
	scenario, err := LoadScenario("testdata/scenarios/sample_current.yaml")
	require.NoError(t, err)

	changed := scenario.Assertions[2]
	assert.Equal(t, AssertChanged, changed.Type)
	assert.NotNil(t, changed.Steps, "steps: [] is an explicit empty list")
	assert.Empty(t, changed.Steps)
}

func TestLoadScenario_FileNotFound(t *testing.T) {
	_, err := LoadScenario("testdata/scenarios/missing.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read scenario file")
}

func TestLoadScenario_Invalid(t *testing.T) {
	document, err := filepath.Abs("testdata/documents/legacy.yaml")
	require.NoError(t, err)

	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name:    "missing name",
			yaml:    "description: d\ndocument: %s\nassertions: [{type: unique_ids}]\n",
			wantErr: "name is required",
		},
		{
			name:    "missing description",
			yaml:    "name: n\ndocument: %s\nassertions: [{type: unique_ids}]\n",
			wantErr: "description is required",
		},
		{
			name:    "missing assertions",
			yaml:    "name: n\ndescription: d\ndocument: %s\n",
			wantErr: "assertions list is required",
		},
		{
			name:    "unknown field",
			yaml:    "name: n\ndescription: d\ndocument: %s\nassertion: []\n",
			wantErr: "failed to parse YAML",
		},
		{
			name:    "negative until",
			yaml:    "name: n\ndescription: d\ndocument: %s\nuntil: -1\nassertions: [{type: unique_ids}]\n",
			wantErr: "until must be non-negative",
		},
		{
			name:    "unknown assertion type",
			yaml:    "name: n\ndescription: d\ndocument: %s\nassertions: [{type: trace_contains}]\n",
			wantErr: `assertions[0]: unknown assertion type "trace_contains"`,
		},
		{
			name:    "revision without expect",
			yaml:    "name: n\ndescription: d\ndocument: %s\nassertions: [{type: revision}]\n",
			wantErr: "assertions[0]: expect is required for revision",
		},
		{
			name:    "changed without steps",
			yaml:    "name: n\ndescription: d\ndocument: %s\nassertions: [{type: unique_ids}, {type: changed}]\n",
			wantErr: "assertions[1]: steps is required for changed",
		},
		{
			name:    "value without property",
			yaml:    "name: n\ndescription: d\ndocument: %s\nassertions: [{type: value, route: Domain, expect: x}]\n",
			wantErr: "route and property are required for value",
		},
		{
			name:    "same without target",
			yaml:    "name: n\ndescription: d\ndocument: %s\nassertions: [{type: same, route: Domain, property: Name}]\n",
			wantErr: "route, property and target are required for same",
		},
		{
			name:    "owner without target",
			yaml:    "name: n\ndescription: d\ndocument: %s\nassertions: [{type: owner, route: Domain}]\n",
			wantErr: "route and target are required for owner",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "scenario.yaml")
			require.NoError(t, os.WriteFile(path, []byte(fmt.Sprintf(tt.yaml, document)), 0o644))

			_, err := LoadScenario(path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadScenario_DocumentChecks(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name     string
		document string
		wantErr  string
	}{
		{name: "missing", document: "", wantErr: "document is required"},
		{name: "unsupported extension", document: "plant.txt", wantErr: "unsupported document format"},
		{name: "not found", document: "absent.yaml", wantErr: "document file not found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := "name: n\ndescription: d\nassertions: [{type: unique_ids}]\n"
			if tt.document != "" {
				src += "document: " + tt.document + "\n"
			}
			path := filepath.Join(dir, tt.name+".yaml")
			require.NoError(t, os.WriteFile(path, []byte(src), 0o644))

			_, err := LoadScenario(path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
