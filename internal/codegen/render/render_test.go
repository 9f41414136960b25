package render

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alia5/pimgen/internal/codegen/descriptor"
	"github.com/Alia5/pimgen/internal/codegen/generr"
	"github.com/Alia5/pimgen/internal/codegen/meta"
)

func mustEvent(t *testing.T, raw map[string]any) descriptor.Event {
	t.Helper()
	ev, err := descriptor.RawToEvent(raw)
	require.NoError(t, err)
	return ev
}

func writeTemplate(t *testing.T, text string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "custom.tmpl")
	require.NoError(t, os.WriteFile(path, []byte(text), 0o644))
	return path
}

func TestRenderContextShape(t *testing.T) {
	path := writeTemplate(t, `{{range .Interfaces}}I:{{.name}};{{end}}{{range .Events}}E:{{.Name}}/{{.Filter.type}}/{{.Action.type}};{{end}}`)
	r, err := New(path)
	require.NoError(t, err)

	md := &meta.Model{
		Interfaces: []descriptor.Interface{{"name": "a.B"}, {"name": "c.D"}},
		Events: []descriptor.Event{
			mustEvent(t, map[string]any{"name": "First One"}),
			mustEvent(t, map[string]any{"name": "second", "action": map[string]any{"type": "destroyObject"}}),
		},
	}

	var buf bytes.Buffer
	require.NoError(t, r.Render(&buf, md))
	assert.Equal(t, "I:a.B;I:c.D;E:first_one/none/noop;E:second/none/destroyObject;", buf.String())
}

func TestRenderMissingKeyFails(t *testing.T) {
	tests := map[string]string{
		"interface key": `{{range .Interfaces}}{{.path}}{{end}}`,
		"event field":   `{{range .Events}}{{.Field "priority"}}{{end}}`,
		"filter key":    `{{range .Events}}{{.Filter.args}}{{end}}`,
		"unknown root":  `{{.Objects}}`,
	}
	md := &meta.Model{
		Interfaces: []descriptor.Interface{{"name": "a.B"}},
		Events:     []descriptor.Event{mustEvent(t, map[string]any{"name": "x"})},
	}
	for name, text := range tests {
		t.Run(name, func(t *testing.T) {
			r, err := New(writeTemplate(t, text))
			require.NoError(t, err)

			err = r.Render(&bytes.Buffer{}, md)
			require.Error(t, err)
			assert.True(t, generr.IsKind(err, generr.KindTemplateRender), "got %v", err)
		})
	}
}

func TestNewErrors(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "missing.tmpl"))
	assert.True(t, generr.IsKind(err, generr.KindFileSystem))

	_, err = New(writeTemplate(t, `{{range .Events}`))
	assert.True(t, generr.IsKind(err, generr.KindTemplateRender))
}

func TestDefaultTemplate(t *testing.T) {
	r, err := New("")
	require.NoError(t, err)
	assert.Equal(t, embeddedName, r.Source())

	md := &meta.Model{
		Interfaces: []descriptor.Interface{{"name": "xyz.openbmc_project.Inventory.Item"}},
		Events: []descriptor.Event{
			mustEvent(t, map[string]any{"name": "Set Present", "description": "marks items present"}),
		},
	}

	var buf bytes.Buffer
	require.NoError(t, r.Render(&buf, md))
	out := buf.String()
	assert.Contains(t, out, "#include <xyz/openbmc_project/Inventory/Item/server.hpp>")
	assert.Contains(t, out, "sdbusplus::xyz::openbmc_project::Inventory::server::Item")
	assert.Contains(t, out, `"set_present"s`)
	assert.Contains(t, out, `Filter{"none"s}`)
	assert.Contains(t, out, `Action{"noop"s}`)
	assert.Contains(t, out, "// marks items present")
}

func TestDefaultTemplateMultiLineDescription(t *testing.T) {
	r, err := New("")
	require.NoError(t, err)

	md := &meta.Model{Events: []descriptor.Event{
		mustEvent(t, map[string]any{"name": "Boot", "description": "first line\n\nsecond line\n"}),
	}}

	var buf bytes.Buffer
	require.NoError(t, r.Render(&buf, md))
	assert.Contains(t, buf.String(), "    // first line\n    //\n    // second line\n    {\n")
	for _, line := range strings.Split(buf.String(), "\n") {
		assert.NotEqual(t, "second line", strings.TrimSpace(line))
	}
}

func TestComment(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want string
	}{
		{"single", "hello", "  // hello"},
		{"multi", "a\nb", "  // a\n  // b"},
		{"blank line", "a\n\nb", "  // a\n  //\n  // b"},
		{"trailing space", "  a  \r\nb\n", "  // a\n  // b"},
		{"non-string", 42, "  // 42"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, comment(2, tt.in))
		})
	}
}

func TestDefaultTemplateEmptyFilterFails(t *testing.T) {
	r, err := New("")
	require.NoError(t, err)

	md := &meta.Model{Events: []descriptor.Event{
		mustEvent(t, map[string]any{"name": "x", "filter": map[string]any{}}),
	}}
	err = r.Render(&bytes.Buffer{}, md)
	assert.True(t, generr.IsKind(err, generr.KindTemplateRender), "got %v", err)
}

func TestWriteFileOnlyOnSuccess(t *testing.T) {
	logger := slog.New(slog.DiscardHandler)
	out := t.TempDir()

	bad, err := New(writeTemplate(t, `partial {{.Missing}}`))
	require.NoError(t, err)
	_, err = bad.WriteFile(logger, out, &meta.Model{})
	require.Error(t, err)
	assert.NoFileExists(t, filepath.Join(out, OutputName))

	good, err := New(writeTemplate(t, `{{len .Events}} events`))
	require.NoError(t, err)
	path, err := good.WriteFile(logger, out, &meta.Model{})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(out, OutputName), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "0 events", string(data))
}
