package ledger

import (
	"testing"

	"github.com/alecthomas/assert/v2"
)

func TestConfigFromOptions(t *testing.T) {
	tests := []struct {
		name        string
		options     map[string][]string
		wantErr     bool
		checkConfig func(t *testing.T, config *Config)
	}{
		{
			name:    "empty options - use defaults",
			options: map[string][]string{},
			checkConfig: func(t *testing.T, config *Config) {
				assert.Equal(t, []string{"machine", "immobil"}, config.AssociationKeywords)
				assert.True(t, config.KeywordFallback)
				assert.Equal(t, []string{"closing", "clôture", "cloture"}, config.ClosingMarkers)
				assert.False(t, config.GuardClosing)
			},
		},
		{
			name: "custom association keywords",
			options: map[string][]string{
				"association_keyword": {" Equipment ", "", "VEHICLE"},
			},
			checkConfig: func(t *testing.T, config *Config) {
				assert.Equal(t, []string{"equipment", "vehicle"}, config.AssociationKeywords)
			},
		},
		{
			name: "custom closing markers",
			options: map[string][]string{
				"closing_marker": {"year end"},
			},
			checkConfig: func(t *testing.T, config *Config) {
				assert.Equal(t, []string{"year end"}, config.ClosingMarkers)
			},
		},
		{
			name: "keyword fallback off",
			options: map[string][]string{
				"keyword_fallback": {"false"},
			},
			checkConfig: func(t *testing.T, config *Config) {
				assert.False(t, config.KeywordFallback)
			},
		},
		{
			name: "guard closing on",
			options: map[string][]string{
				"guard_closing": {"TRUE"},
			},
			checkConfig: func(t *testing.T, config *Config) {
				assert.True(t, config.GuardClosing)
			},
		},
		{
			name: "invalid boolean",
			options: map[string][]string{
				"guard_closing": {"maybe"},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config, err := ConfigFromOptions(tt.options)

			if tt.wantErr {
				assert.Error(t, err, "expected error")
				return
			}

			assert.NoError(t, err, "unexpected error")
			assert.True(t, config != nil, "config should not be nil")

			if tt.checkConfig != nil {
				tt.checkConfig(t, config)
			}
		})
	}
}

func TestConfigMatching(t *testing.T) {
	cfg := NewConfig()
	assert.True(t, cfg.matchesAssociation("Supplier payable - MACHINE"))
	assert.True(t, cfg.matchesAssociation("Dette immobilisation"))
	assert.False(t, cfg.matchesAssociation("Supplier payable - paper"))

	cfg.KeywordFallback = false
	assert.False(t, cfg.matchesAssociation("Supplier payable - machine"))

	assert.True(t, cfg.isClosingLabel("Clôture de l'exercice"))
	assert.True(t, cfg.isClosingLabel(ClosingLabel))
	assert.False(t, cfg.isClosingLabel("Retained earnings brought forward"))
}
