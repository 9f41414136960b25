// Package extra discovers the interface definitions under
// extra_interfaces.d and derives the dotted module names and output paths
// used for their bindings.
package extra

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/Alia5/pimgen/internal/codegen/generr"
)

// Suffix marks an interface definition file.
const Suffix = ".interface.yaml"

// Discover walks root and returns the dotted module name of every interface
// definition below it, sorted. A missing root is not an error.
//
// Names that collapse to the same dotted name (for example a/b.c and a.b/c)
// are reported once; the compiler is keyed by name, so both would produce
// identical bindings.
func Discover(logger *slog.Logger, root string) ([]string, error) {
	info, err := os.Stat(root)
	if errors.Is(err, fs.ErrNotExist) {
		logger.Debug("No extra interfaces directory", "dir", root)
		return nil, nil
	}
	if err != nil {
		return nil, generr.FileSystem(root, err)
	}
	if !info.IsDir() {
		return nil, generr.FileSystem(root, fmt.Errorf("not a directory"))
	}

	origin := make(map[string]string)
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return generr.FileSystem(path, err)
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), Suffix) {
			return nil
		}
		if !isRegular(path, d) {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return generr.FileSystem(path, err)
		}
		name := ModuleName(rel)
		if prev, dup := origin[name]; dup {
			logger.Warn("Extra interfaces collapse to the same name", "name", name, "file", rel, "first", prev)
			return nil
		}
		origin[name] = rel
		return nil
	})
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(origin))
	for name := range origin {
		names = append(names, name)
	}
	slices.Sort(names)
	return names, nil
}

func isRegular(path string, d fs.DirEntry) bool {
	if d.Type().IsRegular() {
		return true
	}
	if d.Type()&fs.ModeSymlink == 0 {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// ModuleName converts a path relative to the extra interfaces root into a
// dotted module name: "xyz/openbmc_project/Foo.interface.yaml" becomes
// "xyz.openbmc_project.Foo".
func ModuleName(rel string) string {
	rel = strings.TrimSuffix(filepath.ToSlash(rel), Suffix)
	return strings.ReplaceAll(rel, "/", ".")
}
