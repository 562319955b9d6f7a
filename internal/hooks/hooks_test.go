package hooks

import (
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeHookConfig(t *testing.T, root string) {
	t.Helper()
	path := filepath.Join(root, ConfigFileName)
	require.NoError(t, os.WriteFile(path, []byte("repos: []\n"), 0o644))
}

// installFakePreCommit puts a pre-commit shim first on PATH that exits with
// the given status after printing its arguments.
func installFakePreCommit(t *testing.T, exitCode int) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell shim not supported on windows")
	}

	binDir := t.TempDir()
	script := "#!/bin/sh\necho \"pre-commit $@\"\nexit " + strconv.Itoa(exitCode) + "\n"
	require.NoError(t, os.WriteFile(filepath.Join(binDir, "pre-commit"), []byte(script), 0o755))
	t.Setenv("PATH", binDir+string(os.PathListSeparator)+os.Getenv("PATH"))
}

func TestRun_PassesWithoutHookConfig(t *testing.T) {
	root := t.TempDir()

	err := Runner{}.Run(root, []string{"main.go"})
	assert.NoError(t, err)
}

func TestRun_PassesWithNothingStaged(t *testing.T) {
	root := t.TempDir()
	writeHookConfig(t, root)

	err := Runner{}.Run(root, nil)
	assert.NoError(t, err)
}

func TestRun_PassesWhenHooksSucceed(t *testing.T) {
	root := t.TempDir()
	writeHookConfig(t, root)
	installFakePreCommit(t, 0)

	err := Runner{}.Run(root, []string{"main.go", "util.go"})
	assert.NoError(t, err)
}

func TestRun_FailureCarriesHookOutput(t *testing.T) {
	root := t.TempDir()
	writeHookConfig(t, root)
	installFakePreCommit(t, 1)

	err := Runner{}.Run(root, []string{"main.go"})

	var failure *FailureError
	require.ErrorAs(t, err, &failure)
	assert.Contains(t, failure.Output, "run --files main.go")
	assert.Contains(t, err.Error(), "pre-commit hooks failed")
}

func TestFailureError_MessageWithoutOutput(t *testing.T) {
	err := &FailureError{}
	assert.Equal(t, "pre-commit hooks failed", err.Error())
}
