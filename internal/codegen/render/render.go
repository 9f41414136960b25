// Package render produces the aggregate generated.cpp by executing a
// text/template over the loaded events and interfaces.
package render

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"text/template"

	"github.com/Alia5/pimgen/internal/codegen/descriptor"
	"github.com/Alia5/pimgen/internal/codegen/extra"
	"github.com/Alia5/pimgen/internal/codegen/generr"
	"github.com/Alia5/pimgen/internal/codegen/meta"
)

// OutputName is the file the aggregate is written to.
const OutputName = "generated.cpp"

const embeddedName = "<embedded>/generated.cpp.tmpl"

//go:embed templates/generated.cpp.tmpl
var defaultTemplate string

type Renderer struct {
	source string
	tmpl   *template.Template
}

// New parses the template at path, or the built-in template when path is
// empty. Execution fails on any reference to a missing map key.
func New(path string) (*Renderer, error) {
	source, text := embeddedName, defaultTemplate
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, generr.FileSystem(path, err)
		}
		source, text = path, string(data)
	}

	t, err := template.New(filepath.Base(source)).
		Option("missingkey=error").
		Funcs(tplFuncs()).
		Parse(text)
	if err != nil {
		return nil, generr.TemplateRender(source, err)
	}
	return &Renderer{source: source, tmpl: t}, nil
}

// Source names the template in use.
func (r *Renderer) Source() string { return r.source }

// Render executes the template with md as its context.
func (r *Renderer) Render(w io.Writer, md *meta.Model) error {
	if err := r.tmpl.Execute(w, md); err != nil {
		return generr.TemplateRender(r.source, err)
	}
	return nil
}

// WriteFile renders into memory and writes OutputName under outputDir only
// when rendering succeeded. It returns the written path.
func (r *Renderer) WriteFile(logger *slog.Logger, outputDir string, md *meta.Model) (string, error) {
	var buf bytes.Buffer
	if err := r.Render(&buf, md); err != nil {
		return "", err
	}
	out := filepath.Join(outputDir, OutputName)
	if err := os.WriteFile(out, buf.Bytes(), 0o644); err != nil {
		return "", generr.FileSystem(out, err)
	}
	logger.Info("Generated aggregate source",
		"file", out,
		"template", r.source,
		"events", len(md.Events),
		"interfaces", len(md.Interfaces))
	return out, nil
}

func tplFuncs() template.FuncMap {
	return template.FuncMap{
		"upper":       strings.ToUpper,
		"lower":       strings.ToLower,
		"cident":      descriptor.Sanitize,
		"quote":       strconv.Quote,
		"join":        strings.Join,
		"indent":      indent,
		"headerPath":  extra.HeaderPath,
		"serverClass": extra.ServerClass,
		"str":         str,
		"trim":        func(v any) string { return strings.TrimSpace(fmt.Sprint(v)) },
		"comment":     comment,
	}
}

func indent(spaces int, s string) string {
	prefix := strings.Repeat(" ", spaces)
	parts := strings.Split(s, "\n")
	for i, p := range parts {
		if p != "" {
			parts[i] = prefix + p
		}
	}
	return strings.Join(parts, "\n")
}

// comment renders v as // line comments indented by spaces. Every line of a
// multi-line value gets its own marker.
func comment(spaces int, v any) string {
	prefix := strings.Repeat(" ", spaces) + "//"
	lines := strings.Split(strings.TrimSpace(fmt.Sprint(v)), "\n")
	for i, l := range lines {
		if l = strings.TrimRight(l, " \t\r"); l != "" {
			l = " " + l
		}
		lines[i] = prefix + l
	}
	return strings.Join(lines, "\n")
}

// str requires a string value. Descriptors are loosely typed, so a template
// that expects a name gets a render error rather than "<nil>" or "map[...]".
func str(v any) (string, error) {
	switch s := v.(type) {
	case string:
		return s, nil
	case nil:
		return "", errors.New("expected a string, got null")
	default:
		return "", fmt.Errorf("expected a string, got %T", v)
	}
}
