package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigReadsEnvironment(t *testing.T) {
	env := map[string]string{
		"OMNIGRAM_SERVER":     "https://omnigram.example",
		"OMNIGRAM_TOKEN":      "abc",
		"OMNIGRAM_TOKEN_FILE": "/tmp/token",
	}
	cfg := DefaultConfig(func(key string) string { return env[key] })

	assert.Equal(t, "https://omnigram.example", cfg.ServerURL)
	assert.Equal(t, "abc", cfg.Token)
	assert.Equal(t, "/tmp/token", cfg.TokenFile)
	assert.Equal(t, "omnigram-cli", cfg.UserAgent)
	assert.Equal(t, "text", cfg.Output)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		server  string
		output  string
		wantErr string
	}{
		{name: "defaults", server: "http://localhost:8080", output: "text"},
		{name: "https json", server: "https://omnigram.example", output: "json"},
		{name: "no scheme", server: "localhost:8080", output: "text", wantErr: `invalid server URL "localhost:8080"`},
		{name: "no host", server: "http://", output: "text", wantErr: `invalid server URL "http://"`},
		{name: "bad output", server: "http://localhost", output: "yaml", wantErr: `invalid output format "yaml": want text or json`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{ServerURL: tt.server, Output: tt.output}
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				assert.EqualError(t, err, tt.wantErr)
			}
		})
	}
}

func TestTokenFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "token")
	cfg := &Config{TokenFile: path}

	require.NoError(t, cfg.LoadToken())
	assert.Empty(t, cfg.Token)

	require.NoError(t, cfg.SaveToken("eyJ.token"))
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	loaded := &Config{TokenFile: path}
	require.NoError(t, loaded.LoadToken())
	assert.Equal(t, "eyJ.token", loaded.Token)

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestExplicitTokenWins(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token")
	require.NoError(t, os.WriteFile(path, []byte("from-file\n"), 0o600))

	cfg := &Config{Token: "from-flag", TokenFile: path}
	require.NoError(t, cfg.LoadToken())
	assert.Equal(t, "from-flag", cfg.Token)
}
