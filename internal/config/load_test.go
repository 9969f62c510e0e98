package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadMergesOverDefaults(t *testing.T) {
	path := writeConfig(t, `{
		"bot": {"token": "tok"},
		"guild": {"id": "g1", "quarantine_role_name": "Quarantine"},
		"detection": {"join_threshold": 10}
	}`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Detection.JoinThreshold != 10 {
		t.Fatalf("join threshold = %d, want file value 10", cfg.Detection.JoinThreshold)
	}
	if cfg.Detection.SpamWindowSec != 30 {
		t.Fatalf("spam window = %d, want default 30", cfg.Detection.SpamWindowSec)
	}
	if cfg.Database.Path != "sentinel.db" {
		t.Fatalf("db path = %q, want default", cfg.Database.Path)
	}
}

func TestLoadRejectsMissingToken(t *testing.T) {
	path := writeConfig(t, `{
		"guild": {"id": "g1", "quarantine_role_name": "Quarantine"}
	}`)

	if _, err := Load(path); err == nil {
		t.Fatal("config without a token must fail validation")
	}
}

func TestLoadRejectsZeroThreshold(t *testing.T) {
	path := writeConfig(t, `{
		"bot": {"token": "tok"},
		"guild": {"id": "g1", "quarantine_role_name": "Quarantine"},
		"detection": {"join_threshold": 0}
	}`)

	if _, err := Load(path); err == nil {
		t.Fatal("zero thresholds must fail validation")
	}
}

func TestEnvOverrides(t *testing.T) {
	path := writeConfig(t, `{
		"bot": {"token": "file-token"},
		"guild": {"id": "g1", "quarantine_role_name": "Quarantine"}
	}`)

	t.Setenv("DISCORD_TOKEN", "env-token")
	t.Setenv("APPROVED_USERS", "u1, u2 ,,u3")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Bot.Token != "env-token" {
		t.Fatalf("token = %q, env must win", cfg.Bot.Token)
	}
	if !reflect.DeepEqual(cfg.Approved.Users, []string{"u1", "u2", "u3"}) {
		t.Fatalf("approved users = %v", cfg.Approved.Users)
	}
}

func TestLoadOrDefaultFallsBack(t *testing.T) {
	cfg := LoadOrDefault(filepath.Join(t.TempDir(), "missing.json"))

	if cfg.Detection.JoinThreshold != 5 {
		t.Fatalf("join threshold = %d, want default 5", cfg.Detection.JoinThreshold)
	}
}
