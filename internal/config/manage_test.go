package config

import (
	"strings"
	"testing"
)

func TestShowAll_SkipsSecrets(t *testing.T) {
	cfg := defaults()
	cfg.Gemini.APIKey = "secret-key"
	cfg.Server.Token = "secret-token"

	for _, k := range ShowAll(cfg) {
		if k.Key == "gemini.api_key" || k.Key == "server.token" {
			t.Errorf("secret key %s listed", k.Key)
		}
		if strings.Contains(k.Value, "secret-") {
			t.Errorf("secret value leaked via %s", k.Key)
		}
	}
}

func TestSetKey_Roundtrip(t *testing.T) {
	b := newMemBackend()
	if err := setKey(b, "gemini.model", "gemini-2.5-pro"); err != nil {
		t.Fatalf("setKey: %v", err)
	}
	if b.sets["gemini.model"] != "gemini-2.5-pro" {
		t.Errorf("backend got %q", b.sets["gemini.model"])
	}
}

func TestSetKey_RejectsSecret(t *testing.T) {
	b := newMemBackend()
	err := setKey(b, "gemini.api_key", "leaked")
	if err == nil {
		t.Fatal("expected error for secret key")
	}
	if !strings.Contains(err.Error(), "CIKGU_GEMINI_API_KEY") {
		t.Errorf("error = %q, want env var hint", err)
	}
	if len(b.sets) != 0 {
		t.Errorf("backend written for rejected key: %v", b.sets)
	}
}

func TestSetKey_RejectsBadInt(t *testing.T) {
	b := newMemBackend()
	if err := setKey(b, "server.port", "loopback"); err == nil {
		t.Fatal("expected error for non-integer port")
	}
	if err := setKey(b, "server.port", "4701"); err != nil {
		t.Fatalf("setKey: %v", err)
	}
}

func TestSetKey_UnknownKey(t *testing.T) {
	b := newMemBackend()
	err := setKey(b, "server.host", "0.0.0.0")
	if err == nil || !strings.Contains(err.Error(), "unknown config key") {
		t.Fatalf("err = %v, want unknown key error", err)
	}
}

func TestValidKeys_ExcludesSecrets(t *testing.T) {
	for _, k := range ValidKeys() {
		if k == "gemini.api_key" || k == "server.token" {
			t.Errorf("secret key %s listed as settable", k)
		}
	}
}
