package workspace

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustWriteFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestDiscoverCargoWorkspaceMembers(t *testing.T) {
	root := t.TempDir()
	mustWriteFile(t, filepath.Join(root, "Cargo.toml"), "[workspace]\nmembers = [\"crates/*\"]\n")
	mustWriteFile(t, filepath.Join(root, "crates/alpha/Cargo.toml"), "[package]\nname = \"alpha\"\n")
	mustWriteFile(t, filepath.Join(root, "crates/beta/Cargo.toml"), "[package]\nname = \"beta\"\n")

	members, err := Discover(root, nil, nil, 0)
	require.NoError(t, err)
	require.Len(t, members, 2)
	assert.Equal(t, "crates/alpha", members[0].RelPath)
	assert.Equal(t, ManifestCargo, members[0].Kind)
}

func TestDiscoverAutoScanFindsGoModule(t *testing.T) {
	root := t.TempDir()
	mustWriteFile(t, filepath.Join(root, "services/api/go.mod"), "module example.com/api\n\ngo 1.24\n")

	members, err := Discover(root, nil, nil, 3)
	require.NoError(t, err)
	require.Len(t, members, 1)
	assert.Equal(t, "example.com/api", members[0].Name)
	assert.Equal(t, ManifestGo, members[0].Kind)
}

func TestDiscoverExcludeGlobFilter(t *testing.T) {
	root := t.TempDir()
	mustWriteFile(t, filepath.Join(root, "pkg/a/go.mod"), "module a\n")
	mustWriteFile(t, filepath.Join(root, "pkg/b/go.mod"), "module b\n")

	members, err := Discover(root, nil, []string{"pkg/b"}, 3)
	require.NoError(t, err)
	require.Len(t, members, 1)
	assert.Equal(t, "pkg/a", members[0].RelPath)
}

func TestDiscoverRootNeverAMember(t *testing.T) {
	root := t.TempDir()
	mustWriteFile(t, filepath.Join(root, "go.mod"), "module root\n")
	mustWriteFile(t, filepath.Join(root, "sub/go.mod"), "module sub\n")

	members, err := Discover(root, nil, nil, 3)
	require.NoError(t, err)
	for _, m := range members {
		assert.NotEqual(t, "", m.RelPath)
		assert.NotEqual(t, ".", m.RelPath)
	}
}
