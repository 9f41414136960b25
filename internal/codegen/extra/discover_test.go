package extra

import (
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alia5/pimgen/internal/codegen/generr"
)

var discard = slog.New(slog.DiscardHandler)

func touch(t *testing.T, root string, rels ...string) {
	t.Helper()
	for _, rel := range rels {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte("description: test\n"), 0o644))
	}
}

func TestDiscover(t *testing.T) {
	root := t.TempDir()
	touch(t, root,
		"xyz/openbmc_project/Example/Iface2.interface.yaml",
		"xyz/openbmc_project/Example/Iface1.interface.yaml",
		"xyz/openbmc_project/Example/Iface1.errors.yaml",
		"Top.interface.yaml",
		"README.md",
	)
	// a level with only directories is still descended into
	require.NoError(t, os.MkdirAll(filepath.Join(root, "empty", "deeper"), 0o755))
	touch(t, root, "empty/deeper/Leaf.interface.yaml")

	names, err := Discover(discard, root)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"Top",
		"empty.deeper.Leaf",
		"xyz.openbmc_project.Example.Iface1",
		"xyz.openbmc_project.Example.Iface2",
	}, names)
}

func TestDiscoverMissingRoot(t *testing.T) {
	names, err := Discover(discard, filepath.Join(t.TempDir(), "extra_interfaces.d"))
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestDiscoverRootIsFile(t *testing.T) {
	root := filepath.Join(t.TempDir(), "extra_interfaces.d")
	require.NoError(t, os.WriteFile(root, nil, 0o644))

	_, err := Discover(discard, root)
	assert.True(t, generr.IsKind(err, generr.KindFileSystem))
}

func TestDiscoverCollapsesDuplicateNames(t *testing.T) {
	root := t.TempDir()
	touch(t, root, "a/b.c.interface.yaml", "a.b/c.interface.yaml")

	names, err := Discover(discard, root)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.b.c"}, names)
}

func TestDiscoverFollowsFileSymlinks(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlinks need privileges on windows")
	}
	root := t.TempDir()
	target := filepath.Join(t.TempDir(), "Real.interface.yaml")
	require.NoError(t, os.WriteFile(target, nil, 0o644))
	require.NoError(t, os.Symlink(target, filepath.Join(root, "Linked.interface.yaml")))
	require.NoError(t, os.Symlink(filepath.Join(root, "missing"), filepath.Join(root, "Dangling.interface.yaml")))

	names, err := Discover(discard, root)
	require.NoError(t, err)
	assert.Equal(t, []string{"Linked"}, names)
}

func TestModuleName(t *testing.T) {
	assert.Equal(t, "xyz.openbmc_project.Foo", ModuleName(filepath.Join("xyz", "openbmc_project", "Foo.interface.yaml")))
	assert.Equal(t, "Foo", ModuleName("Foo.interface.yaml"))
}

func TestPaths(t *testing.T) {
	name := "xyz.openbmc_project.Inventory.Item"
	assert.Equal(t, "xyz.openbmc_project.Inventory.Item.cpp", SourceFile(name))
	assert.Equal(t, "xyz/openbmc_project/Inventory/Item/server.hpp", HeaderPath(name))
	assert.Equal(t, "sdbusplus::xyz::openbmc_project::Inventory::server::Item", ServerClass(name))
	assert.Equal(t, "sdbusplus::server::Top", ServerClass("Top"))
}
