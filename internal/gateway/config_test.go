package gateway

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfigValidate(t *testing.T) {
	valid := Config{APIKey: "key", APIURL: "https://pay.example.com", Currency: "BDT"}
	assert.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing api key", func(c *Config) { c.APIKey = "" }},
		{"missing api url", func(c *Config) { c.APIURL = "" }},
		{"missing currency", func(c *Config) { c.Currency = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrMisconfigured)
		})
	}
}

func TestNewClientRejectsMisconfiguration(t *testing.T) {
	_, err := NewClient(Config{APIKey: "key"})
	assert.ErrorIs(t, err, ErrMisconfigured)
}
