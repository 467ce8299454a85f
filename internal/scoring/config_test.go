package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 1, cfg.Version)
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"default passes", func(*Config) {}, false},
		{"missing climate range", func(c *Config) { delete(c.Ranges, Climate) }, true},
		{"inverted range", func(c *Config) { c.Ranges[Geographic] = Range{Min: 2.0, Max: 1.0} }, true},
		{"degenerate range", func(c *Config) { c.Ranges[Economic] = Range{Min: 0.5, Max: 0.5} }, true},
		{"unknown dimension", func(c *Config) {
			c.Ranges["vibes"] = Range{Min: 0, Max: 1}
			c.Weights["vibes"] = 0
		}, true},
		{"weights do not sum to one", func(c *Config) { c.Weights[Climate] = 0.5 }, true},
		{"missing weight", func(c *Config) { delete(c.Weights, Economic) }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestWithRangesDoesNotMutateReceiver(t *testing.T) {
	cfg := DefaultConfig()
	next := cfg.withRanges(map[Dimension]Range{Climate: {Min: -3.0, Max: 2.0}})

	assert.Equal(t, 2, next.Version)
	assert.Equal(t, Range{Min: -3.0, Max: 2.0}, next.Ranges[Climate])
	assert.Equal(t, Range{Min: -2.5, Max: 1.6}, cfg.Ranges[Climate])
	assert.Equal(t, 1, cfg.Version)
}
