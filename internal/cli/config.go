package cli

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

// Config holds CLI configuration
type Config struct {
	ServerURL string
	Token     string
	TokenFile string
	UserAgent string
	Output    string
	Verbose   bool
}

// DefaultConfig returns a Config seeded from OMNIGRAM_* variables read through getenv
func DefaultConfig(getenv func(string) string) *Config {
	or := func(key, fallback string) string {
		if v := getenv(key); v != "" {
			return v
		}
		return fallback
	}
	return &Config{
		ServerURL: or("OMNIGRAM_SERVER", "http://localhost:8080"),
		Token:     getenv("OMNIGRAM_TOKEN"),
		TokenFile: or("OMNIGRAM_TOKEN_FILE", defaultTokenFile()),
		UserAgent: or("OMNIGRAM_USER_AGENT", "omnigram-cli"),
		Output:    "text",
	}
}

// Validate checks the server URL and output format
func (c *Config) Validate() error {
	u, err := url.Parse(c.ServerURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid server URL %q", c.ServerURL)
	}
	if c.Output != "text" && c.Output != "json" {
		return fmt.Errorf("invalid output format %q: want text or json", c.Output)
	}
	return nil
}

// LoadToken reads the player token from TokenFile unless one was given
// directly. A missing file means the server has not issued one yet.
func (c *Config) LoadToken() error {
	if c.Token != "" {
		return nil
	}
	data, err := os.ReadFile(c.TokenFile)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read token file: %w", err)
	}
	c.Token = strings.TrimSpace(string(data))
	return nil
}

// SaveToken replaces the token file so a concurrent reader never sees a partial token
func (c *Config) SaveToken(token string) error {
	c.Token = token

	dir := filepath.Dir(c.TokenFile)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".token-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.WriteString(token); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), c.TokenFile)
}

// defaultTokenFile lives under the user config dir, e.g. ~/.config/omnigram/token
func defaultTokenFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return filepath.Join(".omnigram", "token")
	}
	return filepath.Join(dir, "omnigram", "token")
}
