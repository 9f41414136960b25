package descriptor

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Foo Bar!", "foo_bar_"},
		{"already_ok", "already_ok"},
		{"A__B", "a_b"},
		{"--leading and trailing--", "_leading_and_trailing_"},
		{"Mixed.Case/Path", "mixed_case_path"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Sanitize(tt.in))
		})
	}
}

func TestSanitizeCollapsesVariants(t *testing.T) {
	assert.Equal(t, Sanitize("Foo Bar!"), Sanitize("foo  bar?!"))
	assert.Equal(t, Sanitize("FOO-BAR"), Sanitize("foo___bar"))
}

func TestSanitizeIdempotent(t *testing.T) {
	for _, in := range []string{"Foo Bar!", "x--y", "Start__End__"} {
		once := Sanitize(in)
		assert.Equal(t, once, Sanitize(once))
	}
}
