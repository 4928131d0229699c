package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/donorlog/internal/testutil"
)

const seedScript = `name: seed
steps:
  - insert: {code: 2, name: Bruno, national_id: "222", birth_date: "1985-11-20", blood_type: A-, volume: 500}
  - delete: 1
`

const badDateScript = `name: bad-date
steps:
  - insert: {code: 3, name: Caio, national_id: "333", birth_date: "2000/01/01", blood_type: B+, volume: 400}
`

func writeScript(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestApply_SingleScript(t *testing.T) {
	path := testutil.StoreFile(t, anaLine)
	script := writeScript(t, t.TempDir(), "seed.yaml", seedScript)

	res := execute(t, "", "--storage", path, "apply", script)
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "✓ seed (2 step(s))")
	assert.Contains(t, res.stdout, "Apply Summary: 1 passed, 0 failed, 1 total")
	assert.Equal(t, []string{brunoLine}, testutil.ReadLines(t, path))
}

func TestApply_FailedStep(t *testing.T) {
	path := testutil.StoreFile(t, anaLine)
	script := writeScript(t, t.TempDir(), "bad.yaml", badDateScript)

	res := execute(t, "", "--storage", path, "apply", script)
	require.Error(t, res.err)
	assert.Equal(t, ExitFailure, GetExitCode(res.err))
	assert.Contains(t, res.stdout, "✗ bad-date")
	assert.Contains(t, res.stdout, "step 1 (insert): insert: INVALID_DATE_FORMAT")
	assert.Equal(t, []string{anaLine}, testutil.ReadLines(t, path))
}

func TestApply_DirectoryWithFilter(t *testing.T) {
	path := testutil.StoreFile(t, anaLine)
	dir := t.TempDir()
	writeScript(t, dir, "seed-01.yaml", seedScript)
	writeScript(t, dir, "other.yaml", badDateScript)
	writeScript(t, dir, "notes.txt", "not a script")

	res := execute(t, "", "--storage", path, "--format", "json", "apply", dir, "--filter", "seed-*")
	require.NoError(t, res.err)

	var data ApplyResult
	resp := decodeResponse(t, res.stdout, &data)
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, 1, data.Total)
	require.Len(t, data.Scripts, 1)
	assert.Equal(t, filepath.Join(dir, "seed-01.yaml"), data.Scripts[0].File)
	assert.Len(t, data.Scripts[0].Result.Steps, 2)
}

func TestApply_DirectoryRunsInOrder(t *testing.T) {
	path := testutil.StoreFile(t)
	dir := t.TempDir()
	writeScript(t, dir, "02-delete.yml", "name: delete\nsteps:\n  - delete: 1\n")
	writeScript(t, dir, "01-insert.yaml", "name: insert\nsteps:\n  - insert: {code: 1, name: Ana, national_id: \"111\", birth_date: \"1990-05-01\", blood_type: O+, volume: 450}\n  - insert: {code: 2, name: Bruno, national_id: \"222\", birth_date: \"1985-11-20\", blood_type: A-, volume: 500}\n")

	res := execute(t, "", "--storage", path, "apply", dir)
	require.NoError(t, res.err)
	assert.Equal(t, []string{brunoLine}, testutil.ReadLines(t, path))
}

func TestApply_FailedJSON(t *testing.T) {
	path := testutil.StoreFile(t, anaLine)
	script := writeScript(t, t.TempDir(), "bad.yaml", badDateScript)

	res := execute(t, "", "--storage", path, "--format", "json", "apply", script)
	require.Error(t, res.err)

	var data ApplyResult
	resp := decodeResponse(t, res.stdout, &data)
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "1 script(s) failed", resp.Error.Message)
	assert.Equal(t, 1, data.Failed)
	assert.Equal(t, "INVALID_DATE_FORMAT", data.Scripts[0].Result.Steps[0].ErrorCode)
}

func TestApply_MalformedScriptTouchesNothing(t *testing.T) {
	path := testutil.StoreFile(t, anaLine)
	dir := t.TempDir()
	writeScript(t, dir, "01-seed.yaml", seedScript)
	writeScript(t, dir, "02-typo.yaml", "name: typo\nsteps:\n  - remove: 1\n")

	res := execute(t, "", "--storage", path, "apply", dir)
	require.Error(t, res.err)
	assert.Equal(t, ExitCommandError, GetExitCode(res.err))
	assert.Contains(t, res.err.Error(), "invalid script")
	assert.Equal(t, []string{anaLine}, testutil.ReadLines(t, path))
}

func TestApply_Errors(t *testing.T) {
	path := testutil.StoreFile(t, anaLine)

	res := execute(t, "", "--storage", path, "apply", filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, res.err)
	assert.Equal(t, ExitCommandError, GetExitCode(res.err))
	assert.Contains(t, res.err.Error(), "script path not found")

	res = execute(t, "", "--storage", path, "apply", t.TempDir())
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "No scripts found.")
}

func TestFindScriptFiles(t *testing.T) {
	dir := t.TempDir()
	writeScript(t, dir, "b.yaml", seedScript)
	writeScript(t, dir, "a.yml", seedScript)
	writeScript(t, dir, "c.json", "{}")

	files, err := findScriptFiles(dir, "")
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "a.yml"), filepath.Join(dir, "b.yaml")}, files)

	_, err = findScriptFiles(dir, "[")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid filter pattern")
}
