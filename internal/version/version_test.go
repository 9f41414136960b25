package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet(t *testing.T) {
	orig := Version
	t.Cleanup(func() { Version = orig })

	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"", "0.0.1-dev", false},
		{"v1.2.3", "1.2.3", false},
		{"1.2.3-dirty", "1.2.3-dirty", false},
		{"nightly", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			Version = tt.in
			got, err := Get()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
