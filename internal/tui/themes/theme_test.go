package themes

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetTheme(t *testing.T) {
	tests := []struct {
		name string
		want Theme
	}{
		{name: "default", want: Default},
		{name: "catppuccin", want: CatppuccinMocha},
		{name: "catppuccin-mocha", want: CatppuccinMocha},
		{name: "unknown", want: Default},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want.Primary, GetTheme(tt.name).Primary)
		})
	}
}

func TestNames(t *testing.T) {
	names := Names()

	assert.Equal(t, []string{"catppuccin", "catppuccin-mocha", "default"}, names)
	for _, n := range names {
		assert.True(t, Known(n))
	}
	assert.False(t, Known("neon"))
}
