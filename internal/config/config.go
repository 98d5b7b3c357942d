package config

import (
	"fmt"
	"net/url"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/viper"
)

// #region types

// GameConfig identifies the scenario to play and where to play it.
type GameConfig struct {
	Scenario          int
	URL               string
	PlayerID          string
	Capacity          int
	MaxRejects        int
	RequestsPerSecond float64
}

// UIConfig toggles the local progress UI.
type UIConfig struct {
	Enabled bool
}

// AppConfig is the validated application configuration.
type AppConfig struct {
	Game   GameConfig
	UI     UIConfig
	Debug  bool
	DBPath string
}

// #endregion types

// #region load

// Load reads the YAML config file, applies the PLAYER_ID environment
// override, and validates the result. Invalid configuration is a fatal
// startup condition for callers.
func Load(path string) (AppConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetDefault("game.capacity", 1000)
	v.SetDefault("game.max_rejects", 20000)
	v.SetDefault("game.requests_per_second", 10.0)
	v.SetDefault("ui.enabled", false)
	v.SetDefault("debug", false)
	v.SetDefault("db_path", "doorman.db")

	if err := v.ReadInConfig(); err != nil {
		return AppConfig{}, fmt.Errorf("read config %s: %w", path, err)
	}

	cfg := AppConfig{
		Game: GameConfig{
			Scenario:          v.GetInt("game.scenario"),
			URL:               v.GetString("game.url"),
			PlayerID:          v.GetString("game.player_id"),
			Capacity:          v.GetInt("game.capacity"),
			MaxRejects:        v.GetInt("game.max_rejects"),
			RequestsPerSecond: v.GetFloat64("game.requests_per_second"),
		},
		UI:     UIConfig{Enabled: v.GetBool("ui.enabled")},
		Debug:  v.GetBool("debug"),
		DBPath: v.GetString("db_path"),
	}

	// Environment wins over the file for the player identity.
	if pid := os.Getenv("PLAYER_ID"); pid != "" {
		cfg.Game.PlayerID = pid
	}

	if err := cfg.validate(); err != nil {
		return AppConfig{}, err
	}
	return cfg, nil
}

// #endregion load

// #region validate

func (c AppConfig) validate() error {
	if c.Game.Scenario < 1 || c.Game.Scenario > 3 {
		return fmt.Errorf("invalid config: game.scenario %d not in {1,2,3}", c.Game.Scenario)
	}

	u, err := url.Parse(c.Game.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid config: game.url %q is not an http(s) URL", c.Game.URL)
	}

	if c.Game.PlayerID == "" {
		return fmt.Errorf("invalid config: player id missing (set PLAYER_ID or game.player_id)")
	}
	if _, err := uuid.Parse(c.Game.PlayerID); err != nil {
		return fmt.Errorf("invalid config: player id %q is not a UUID", c.Game.PlayerID)
	}

	if c.Game.Capacity <= 0 {
		return fmt.Errorf("invalid config: game.capacity %d must be positive", c.Game.Capacity)
	}
	if c.Game.MaxRejects <= 0 {
		return fmt.Errorf("invalid config: game.max_rejects %d must be positive", c.Game.MaxRejects)
	}
	if c.Game.RequestsPerSecond < 0 {
		return fmt.Errorf("invalid config: game.requests_per_second %f must not be negative", c.Game.RequestsPerSecond)
	}
	return nil
}

// #endregion validate
