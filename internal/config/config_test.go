package config

import (
	"os"
	"path/filepath"
	"testing"
)

const validPlayerID = "9c9b165c-3a48-489a-b25e-8fa2621a4ea2"

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadValidConfig(t *testing.T) {
	t.Setenv("PLAYER_ID", validPlayerID)
	path := writeConfig(t, `
game:
  scenario: 1
  url: https://berghain.challenges.listenlabs.ai
ui:
  enabled: true
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Game.Scenario != 1 {
		t.Errorf("scenario = %d, want 1", cfg.Game.Scenario)
	}
	if cfg.Game.PlayerID != validPlayerID {
		t.Errorf("player id = %q", cfg.Game.PlayerID)
	}
	if !cfg.UI.Enabled {
		t.Error("ui.enabled not read")
	}
	// Defaults
	if cfg.Game.Capacity != 1000 {
		t.Errorf("capacity default = %d, want 1000", cfg.Game.Capacity)
	}
	if cfg.Game.MaxRejects != 20000 {
		t.Errorf("max rejects default = %d, want 20000", cfg.Game.MaxRejects)
	}
}

func TestEnvOverridesFilePlayerID(t *testing.T) {
	t.Setenv("PLAYER_ID", validPlayerID)
	path := writeConfig(t, `
game:
  scenario: 2
  url: https://example.test
  player_id: 00000000-0000-0000-0000-000000000000
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Game.PlayerID != validPlayerID {
		t.Errorf("player id = %q, want env value", cfg.Game.PlayerID)
	}
}

func TestScenarioOutOfRangeRejected(t *testing.T) {
	t.Setenv("PLAYER_ID", validPlayerID)
	path := writeConfig(t, `
game:
  scenario: 4
  url: https://example.test
`)

	if _, err := Load(path); err == nil {
		t.Fatal("expected error for scenario outside {1,2,3}")
	}
}

func TestBadURLRejected(t *testing.T) {
	t.Setenv("PLAYER_ID", validPlayerID)
	path := writeConfig(t, `
game:
  scenario: 1
  url: not-a-url
`)

	if _, err := Load(path); err == nil {
		t.Fatal("expected error for malformed url")
	}
}

func TestMissingPlayerIDRejected(t *testing.T) {
	t.Setenv("PLAYER_ID", "")
	path := writeConfig(t, `
game:
  scenario: 1
  url: https://example.test
`)

	if _, err := Load(path); err == nil {
		t.Fatal("expected error for missing player id")
	}
}

func TestNonUUIDPlayerIDRejected(t *testing.T) {
	t.Setenv("PLAYER_ID", "not-a-uuid")
	path := writeConfig(t, `
game:
  scenario: 1
  url: https://example.test
`)

	if _, err := Load(path); err == nil {
		t.Fatal("expected error for non-UUID player id")
	}
}

func TestMissingFileRejected(t *testing.T) {
	t.Setenv("PLAYER_ID", validPlayerID)
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing config file")
	}
}
