package main

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"ajei/internal/config"
)

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		secret  string
		debug   bool
		wantErr bool
	}{
		{"default secret", defaultSecretKey, false, true},
		{"empty secret", "", false, true},
		{"short secret", "too-short", false, true},
		{"long secret", strings.Repeat("s", 32), false, false},
		{"debug allows default", defaultSecretKey, true, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &config.Config{
				App:  config.AppConfig{Debug: tt.debug},
				Auth: config.AuthConfig{SecretKey: tt.secret},
			}
			err := validateConfig(cfg)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
