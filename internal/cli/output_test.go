package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetExitCode(t *testing.T) {
	assert.Equal(t, ExitSuccess, GetExitCode(nil))
	assert.Equal(t, ExitFailure, GetExitCode(errors.New("plain")))
	assert.Equal(t, ExitCommandError, GetExitCode(NewExitError(ExitCommandError, "bad")))

	inner := errors.New("inner")
	wrapped := WrapExitError(ExitFailure, "outer", inner)
	assert.ErrorIs(t, wrapped, inner)
	assert.Equal(t, "outer: inner", wrapped.Error())
}

func TestOutputFormatter_JSON(t *testing.T) {
	buf := &bytes.Buffer{}
	f := &OutputFormatter{Format: "json", Writer: buf}

	require.NoError(t, f.Success(StepsResult{Steps: []StepInfo{{Revision: 1, Name: "one"}}}))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Nil(t, resp.Error)

	buf.Reset()
	require.NoError(t, f.Error(ErrCodeDecode, "broken", "detail"))
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeDecode, resp.Error.Code)
	assert.Equal(t, "detail", resp.Error.Details)
}

func TestOutputFormatter_Text(t *testing.T) {
	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
	f := &OutputFormatter{Format: "text", Writer: out, ErrWriter: errOut}

	require.NoError(t, f.Error(ErrCodeStore, "db down", "details hidden"))
	assert.Equal(t, "Error [E203]: db down\n", out.String())

	f.VerboseLog("quiet")
	assert.Empty(t, errOut.String())

	f.Verbose = true
	f.VerboseLog("wrote %s", "x")
	assert.Equal(t, "wrote x\n", errOut.String())
}

func TestFail(t *testing.T) {
	buf := &bytes.Buffer{}
	f := &OutputFormatter{Format: "text", Writer: buf}

	err := fail(f, ExitCommandError, ErrCodeUsage, "bad flags", nil)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Equal(t, "E008: bad flags", err.Error())
	assert.Equal(t, "Error [E008]: bad flags\n", buf.String())
}
