package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"unicode"

	"github.com/Alia5/pimgen/internal/configpaths"

	toml "github.com/pelletier/go-toml"
	yaml "gopkg.in/yaml.v3"
)

// ConfigCommand groups config-related subcommands.
type ConfigCommand struct {
	Init ConfigInit `cmd:"" help:"Generate a configuration template"`
}

// ConfigInit scaffolds a configuration file holding every flag of a command
// at its default value.
type ConfigInit struct {
	Command string `arg:"" optional:"" name:"command" help:"Command to generate config for" enum:"generate" default:"generate"`
	Format  string `help:"Output format" enum:"json,yaml,yml,toml" default:"yaml"`
	Output  string `help:"Destination file path (default: pimgen.<format> in the current directory)"`
	Force   bool   `help:"Overwrite if the file already exists"`
}

// Run is called by Kong when the config init command is executed.
func (c *ConfigInit) Run() error {
	format := normalizeFormat(c.Format)
	if format == "" {
		return fmt.Errorf("unsupported format: %s", c.Format)
	}

	var root map[string]any
	switch c.Command {
	case "generate", "":
		root = layoutConfig(format, "generate",
			collectFlags(reflect.TypeOf(Generate{}), ""),
			collectFlags(reflect.TypeOf(LogConfig{}), "log."))
	default:
		return fmt.Errorf("unknown command %q; expected 'generate'", c.Command)
	}

	dest := c.Output
	if dest == "" {
		dest = "pimgen." + format
	}
	if !c.Force {
		if _, err := os.Stat(dest); err == nil {
			return errors.New("destination exists; use --force to overwrite")
		}
	}
	if err := configpaths.EnsureDir(dest); err != nil {
		return err
	}

	data, err := marshalConfig(format, root)
	if err != nil {
		return err
	}
	return os.WriteFile(dest, data, 0o644)
}

func marshalConfig(format string, root map[string]any) ([]byte, error) {
	switch format {
	case "json":
		return json.MarshalIndent(root, "", "  ")
	case "yaml":
		return yaml.Marshal(root)
	case "toml":
		return toml.Marshal(root)
	}
	return nil, fmt.Errorf("unsupported format: %s", format)
}

func normalizeFormat(f string) string {
	switch strings.ToLower(f) {
	case "json":
		return "json"
	case "yaml", "yml":
		return "yaml"
	case "toml":
		return "toml"
	default:
		return ""
	}
}

// flagDefault is one scaffolded flag: its kong name and default value.
type flagDefault struct {
	name  string
	value any
}

// layoutConfig arranges flags the way each resolver looks them up. kong.JSON
// ignores the command path and reads snake_case keys; kong-yaml nests command
// flags under the command name; kong-toml only accepts keys that flatten to a
// flag name. Global flags keep their dotted name in every format.
func layoutConfig(format, command string, cmdFlags, globalFlags []flagDefault) map[string]any {
	root := map[string]any{}
	for _, f := range globalFlags {
		root[f.name] = f.value
	}
	section := root
	if format == "yaml" {
		section = map[string]any{}
		root[command] = section
	}
	for _, f := range cmdFlags {
		key := f.name
		if format == "json" {
			key = strings.ReplaceAll(key, "-", "_")
		}
		section[key] = f.value
	}
	return root
}

func flagName(f reflect.StructField) string {
	if name := f.Tag.Get("name"); name != "" {
		return name
	}
	var b strings.Builder
	for i, r := range f.Name {
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteByte('-')
			}
			r = unicode.ToLower(r)
		}
		b.WriteRune(r)
	}
	return b.String()
}

// collectFlags lists the flags of a command struct that carry a usable
// default. Flags without one are left out: kong expands an empty path value
// to the working directory, which would override the computed fallback.
func collectFlags(t reflect.Type, prefix string) []flagDefault {
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	var out []flagDefault
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() || f.Tag.Get("kong") == "-" {
			continue
		}
		if _, isCmd := f.Tag.Lookup("cmd"); isCmd {
			continue
		}
		if val := defaultValueForField(f.Type, f.Tag.Get("default")); val != nil {
			out = append(out, flagDefault{name: prefix + flagName(f), value: val})
		}
	}
	return out
}

func defaultValueForField(t reflect.Type, def string) any {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.PkgPath() == "time" && t.Name() == "Duration" {
		if def != "" {
			return def
		}
		return "0s"
	}
	switch t.Kind() {
	case reflect.String:
		if def == "" {
			return nil
		}
		return def
	case reflect.Bool:
		b, _ := strconv.ParseBool(def)
		return b
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, _ := strconv.ParseInt(def, 10, 64)
		return n
	default:
		return nil
	}
}
