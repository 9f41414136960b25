package extra

import (
	"path"
	"strings"
)

// SourceFile is the flat binding source name, e.g. "xyz.openbmc_project.Foo.cpp".
func SourceFile(name string) string {
	return name + ".cpp"
}

// HeaderPath is the nested server header path, one directory per name
// component, e.g. "xyz/openbmc_project/Foo/server.hpp". Always slash
// separated.
func HeaderPath(name string) string {
	return path.Join(append(strings.Split(name, "."), "server.hpp")...)
}

// ServerClass is the C++ type sdbus++ generates for name, e.g.
// "sdbusplus::xyz::openbmc_project::server::Foo".
func ServerClass(name string) string {
	parts := strings.Split(name, ".")
	last := len(parts) - 1
	ns := append([]string{"sdbusplus"}, parts[:last]...)
	return strings.Join(append(ns, "server", parts[last]), "::")
}
