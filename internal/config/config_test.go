package config

import (
	"strings"
	"testing"
)

// memBackend is an in-memory Backend for tests.
type memBackend struct {
	strings map[string]string
	ints    map[string]int
	sets    map[string]string
}

func newMemBackend() *memBackend {
	return &memBackend{
		strings: make(map[string]string),
		ints:    make(map[string]int),
		sets:    make(map[string]string),
	}
}

func (b *memBackend) GetString(key string) (string, bool, error) {
	v, ok := b.strings[key]
	return v, ok, nil
}

func (b *memBackend) GetInt(key string) (int, bool, error) {
	v, ok := b.ints[key]
	return v, ok, nil
}

func (b *memBackend) SetString(key, val string) error {
	b.sets[key] = val
	b.strings[key] = val
	return nil
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, spec := range specs {
		t.Setenv(spec.env, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	b := newMemBackend()
	b.strings["gemini.api_key"] = "file-key"

	cfg, err := loadWith(b)
	if err != nil {
		t.Fatalf("loadWith: %v", err)
	}
	if cfg.Server.Port != 4700 {
		t.Errorf("Port = %d, want default 4700", cfg.Server.Port)
	}
	if cfg.Gemini.Model != "gemini-2.5-flash" {
		t.Errorf("Model = %q, want default", cfg.Gemini.Model)
	}
	if cfg.Gemini.APIKey != "file-key" {
		t.Errorf("APIKey = %q", cfg.Gemini.APIKey)
	}
}

func TestLoad_EnvOverridesBackend(t *testing.T) {
	clearEnv(t)
	b := newMemBackend()
	b.strings["gemini.api_key"] = "file-key"
	b.ints["server.port"] = 5000

	t.Setenv("CIKGU_SERVER_PORT", "6000")
	t.Setenv("CIKGU_GEMINI_API_KEY", "env-key")

	cfg, err := loadWith(b)
	if err != nil {
		t.Fatalf("loadWith: %v", err)
	}
	if cfg.Server.Port != 6000 {
		t.Errorf("Port = %d, want env override 6000", cfg.Server.Port)
	}
	if cfg.Gemini.APIKey != "env-key" {
		t.Errorf("APIKey = %q, want env override", cfg.Gemini.APIKey)
	}
}

func TestLoad_MissingAPIKey(t *testing.T) {
	clearEnv(t)
	_, err := loadWith(newMemBackend())
	if err == nil {
		t.Fatal("loadWith succeeded without API key")
	}
	if !strings.Contains(err.Error(), "CIKGU_GEMINI_API_KEY") {
		t.Errorf("error %q does not name the env variable", err)
	}
}

func TestLoad_GeneratesAndPersistsToken(t *testing.T) {
	clearEnv(t)
	b := newMemBackend()
	b.strings["gemini.api_key"] = "k"

	cfg, err := loadWith(b)
	if err != nil {
		t.Fatalf("loadWith: %v", err)
	}
	if cfg.Server.Token == "" {
		t.Fatal("no token generated")
	}
	if b.sets["server.token"] != cfg.Server.Token {
		t.Error("generated token not written back to backend")
	}

	// A configured token is kept as-is.
	b2 := newMemBackend()
	b2.strings["gemini.api_key"] = "k"
	b2.strings["server.token"] = "fixed"
	cfg2, err := loadWith(b2)
	if err != nil {
		t.Fatalf("loadWith: %v", err)
	}
	if cfg2.Server.Token != "fixed" {
		t.Errorf("Token = %q, want configured value", cfg2.Server.Token)
	}
	if len(b2.sets) != 0 {
		t.Error("backend written despite configured token")
	}
}
