package descriptor

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/Alia5/pimgen/internal/codegen/generr"
)

// Ext is the file extension of descriptor documents.
const Ext = ".yaml"

type eventsDocument struct {
	Events []map[string]any `yaml:"events"`
}

// LoadEvents reads every descriptor in dir, in filename order, and returns
// the normalized events of all files concatenated. Each file is a mapping
// whose "events" key holds the event list; files without that key contribute
// nothing.
func LoadEvents(logger *slog.Logger, dir string) ([]Event, error) {
	files, err := listDescriptors(dir)
	if err != nil {
		return nil, err
	}

	events := []Event{}
	seen := make(map[string]string)
	for _, path := range files {
		var root yaml.Node
		if err := decodeFile(path, &root); err != nil {
			return nil, err
		}
		var doc eventsDocument
		if body := documentBody(&root); body != nil {
			if body.Kind != yaml.MappingNode {
				logger.Warn("Ignoring event file without an events mapping", "file", path)
				continue
			}
			if err := body.Decode(&doc); err != nil {
				return nil, generr.ConfigParse(path, err)
			}
		}
		for i, raw := range doc.Events {
			ev, err := RawToEvent(raw)
			if err != nil {
				return nil, withSubject(err, fmt.Sprintf("%s: events[%d]", path, i))
			}
			if prev, dup := seen[ev.Name]; dup {
				logger.Warn("Duplicate event name", "name", ev.Name, "file", path, "first", prev)
			} else {
				seen[ev.Name] = path
			}
			events = append(events, ev)
		}
		logger.Debug("Loaded event descriptors", "file", path, "count", len(doc.Events))
	}
	return events, nil
}

// LoadInterfaces reads every descriptor in dir, in filename order. Unlike
// event files, each file's top level is the list itself.
func LoadInterfaces(logger *slog.Logger, dir string) ([]Interface, error) {
	files, err := listDescriptors(dir)
	if err != nil {
		return nil, err
	}

	ifaces := []Interface{}
	for _, path := range files {
		var doc []Interface
		if err := decodeFile(path, &doc); err != nil {
			return nil, err
		}
		for i, iface := range doc {
			if iface == nil {
				return nil, generr.ConfigParse(path, fmt.Errorf("entry %d is not a mapping", i))
			}
		}
		ifaces = append(ifaces, doc...)
		logger.Debug("Loaded interface descriptors", "file", path, "count", len(doc))
	}
	return ifaces, nil
}

// listDescriptors returns the descriptor files directly inside dir, sorted
// by name so that output does not depend on directory order.
func listDescriptors(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, generr.FileSystem(dir, err)
	}
	var files []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), Ext) {
			continue
		}
		files = append(files, filepath.Join(dir, entry.Name()))
	}
	sort.Strings(files)
	return files, nil
}

func decodeFile(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return generr.FileSystem(path, err)
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return generr.ConfigParse(path, err)
	}
	return nil
}

// documentBody returns the top-level node of a decoded document, or nil for
// an empty file.
func documentBody(n *yaml.Node) *yaml.Node {
	if n.Kind == yaml.DocumentNode {
		if len(n.Content) == 0 {
			return nil
		}
		return n.Content[0]
	}
	if n.Kind == 0 {
		return nil
	}
	return n
}

func withSubject(err error, subject string) error {
	var ge *generr.Error
	if errors.As(err, &ge) {
		return ge.WithSubject(subject)
	}
	return fmt.Errorf("%s: %w", subject, err)
}
