package risk

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestConfig_Validate(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"amount tiers inverted", func(c *Config) { c.Rules.AmountHoldThreshold = 1000 }},
		{"zero velocity window", func(c *Config) { c.Velocity.Window = 0 }},
		{"velocity retention below two windows", func(c *Config) { c.Velocity.Retention = 90 * time.Minute }},
		{"zero amount step", func(c *Config) { c.Velocity.AmountStepSize = 0 }},
		{"short mule retention", func(c *Config) { c.Mule.Retention = 48 * time.Hour }},
		{"action bands inverted", func(c *Config) { c.Blend.WarnThreshold = 70 }},
		{"negative blend weight", func(c *Config) { c.Blend.ModelWeight = -0.1 }},
		{"quiz bands inverted", func(c *Config) { c.Quiz.WarnThreshold = 50 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
		})
	}
}

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		raw    string
		want   time.Time
		wantOK bool
	}{
		{"2025-09-06T12:00:00Z", base, true},
		{"2025-09-06T12:00:00", base, true},
		{"2025-09-06T14:00:00+02:00", base, true},
		{"2025-09-06T12:00:00.250Z", base.Add(250 * time.Millisecond), true},
		{"2025-09-06 12:00:00", base, true},
		{"yesterday", time.Time{}, false},
		{"", time.Time{}, false},
	}

	for _, tt := range tests {
		got, ok := ParseTimestamp(tt.raw)
		assert.Equal(t, tt.wantOK, ok, tt.raw)
		assert.True(t, tt.want.Equal(got), "%s parsed as %s", tt.raw, got)
	}
	assert.Equal(t, "2025-09-06T12:00:00", FormatTimestamp(base))
}
