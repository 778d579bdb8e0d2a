package cli

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/docmig/internal/doc"
)

// execute runs the root command with args and returns stdout, stderr and
// the command error.
func execute(t *testing.T, opts *RootOptions, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := newRootCommand(opts)
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

// writeDocument encodes d into dir/name and returns the path.
func writeDocument(t *testing.T, dir, name string, d *doc.Domain) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, doc.EncodeFile(path, d))
	return path
}

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "docmig", cmd.Use)
	assert.Contains(t, cmd.Long, "revision")
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	commands := []string{"migrate", "walk", "steps", "import", "show", "test"}

	for _, cmdName := range commands {
		t.Run(cmdName, func(t *testing.T) {
			subCmd, _, err := cmd.Find([]string{cmdName})
			require.NoError(t, err, "Command %s should exist", cmdName)
			require.NotNil(t, subCmd)
			assert.Equal(t, cmdName, subCmd.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	verboseFlag := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verboseFlag)
	assert.Equal(t, "v", verboseFlag.Shorthand)
	assert.Equal(t, "false", verboseFlag.DefValue)

	formatFlag := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, formatFlag)
	assert.Equal(t, "text", formatFlag.DefValue)
}

func TestMigrateCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	migrateCmd, _, err := cmd.Find([]string{"migrate"})
	require.NoError(t, err)

	outFlag := migrateCmd.Flags().Lookup("out")
	require.NotNil(t, outFlag)
	assert.Equal(t, "o", outFlag.Shorthand)

	for _, name := range []string{"db", "dry-run", "to-revision", "metrics-textfile"} {
		assert.NotNil(t, migrateCmd.Flags().Lookup(name), name)
	}
}

func TestInvalidFormat(t *testing.T) {
	_, _, err := execute(t, &RootOptions{}, "--format", "xml", "steps")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}

func TestStepsCommand(t *testing.T) {
	stdout, _, err := execute(t, &RootOptions{}, "steps")
	require.NoError(t, err)
	assertGolden(t, "steps", stdout)
}

func TestWalkCommand(t *testing.T) {
	path := writeDocument(t, t.TempDir(), "plant.yaml", sampleDomain())

	stdout, _, err := execute(t, &RootOptions{}, "walk", path)
	require.NoError(t, err)
	assertGolden(t, "walk_sample", stdout)
}

func TestWalkCommand_NotFound(t *testing.T) {
	stdout, _, err := execute(t, &RootOptions{}, "walk", filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, stdout, ErrCodeNotFound)
}
