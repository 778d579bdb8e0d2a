package cli

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/docmig/internal/testutil"
)

func TestImportMigrateShow(t *testing.T) {
	dir := t.TempDir()
	db := filepath.Join(dir, "docs.db")
	path := writeDocument(t, dir, "legacy.yaml", testutil.NewLegacy().Domain)

	stdout, _, err := execute(t, &RootOptions{}, "import", "--db", db, path)
	require.NoError(t, err)
	assert.Contains(t, stdout, `legacy "plant" revision 0`)

	stdout, _, err = execute(t, legacyOptions(), "migrate", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, stdout, "legacy: revision 0 -> 5 (5 steps, 7 fixes, 0 flagged), written")

	stdout, _, err = execute(t, legacyOptions(), "migrate", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, stdout, "legacy: up to date at revision 5")

	stdout, _, err = execute(t, &RootOptions{}, "show", "--db", db, "legacy")
	require.NoError(t, err)
	assert.Contains(t, stdout, `legacy "plant" revision 5`)
	assert.Contains(t, stdout, "run seq 3: revision 0 -> 5 (5 steps, 7 fixes, 0 flagged)")

	stdout, _, err = execute(t, &RootOptions{}, "show", "--db", db, "--body", "legacy")
	require.NoError(t, err)
	assert.Contains(t, stdout, "\n---\nformat: 1\n")
	assert.Contains(t, stdout, "revision: 5")
}

func TestImport_CustomID(t *testing.T) {
	dir := t.TempDir()
	db := filepath.Join(dir, "docs.db")
	path := writeDocument(t, dir, "plant.json", sampleDomain())

	stdout, _, err := execute(t, &RootOptions{}, "--format", "json", "import", "--db", db, "--id", "plant-v2", path)
	require.NoError(t, err)

	var resp struct {
		Status string       `json:"status"`
		Data   DocumentInfo `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	assert.Equal(t, "plant-v2", resp.Data.ID)
	assert.Equal(t, int64(1), resp.Data.Seq)
	assert.Len(t, resp.Data.Hash, 64)
}

func TestImport_RequiresDB(t *testing.T) {
	path := writeDocument(t, t.TempDir(), "plant.json", sampleDomain())

	_, _, err := execute(t, &RootOptions{}, "import", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"db" not set`)
}

func TestShow_JSONBody(t *testing.T) {
	dir := t.TempDir()
	db := filepath.Join(dir, "docs.db")
	path := writeDocument(t, dir, "plant.json", sampleDomain())

	_, _, err := execute(t, &RootOptions{}, "import", "--db", db, path)
	require.NoError(t, err)

	stdout, _, err := execute(t, &RootOptions{}, "--format", "json", "show", "--db", db, "--body", "plant")
	require.NoError(t, err)

	var resp struct {
		Status string `json:"status"`
		Data   struct {
			ID   string          `json:"id"`
			Runs []RunInfo       `json:"runs"`
			Body json.RawMessage `json:"body"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	assert.Equal(t, "plant", resp.Data.ID)
	assert.Empty(t, resp.Data.Runs)
	assert.Contains(t, string(resp.Data.Body), `"name":"plant"`)
}

func TestShow_NotFound(t *testing.T) {
	db := filepath.Join(t.TempDir(), "docs.db")

	stdout, _, err := execute(t, &RootOptions{}, "show", "--db", db, "nope")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, stdout, ErrCodeNotFound)
}
