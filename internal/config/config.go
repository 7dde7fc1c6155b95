// Package config provides YAML-based server configuration with embedded
// defaults, a user/local override search path and environment overrides.
package config

import (
	"errors"
	"fmt"
	"time"
)

// Config is the full server configuration.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Log     LogConfig     `yaml:"log"`
	Storage StorageConfig `yaml:"storage"`
	Match   MatchConfig   `yaml:"match"`
	Games   GamesConfig   `yaml:"games"`
}

// ServerConfig defines the listener.
type ServerConfig struct {
	Port            int           `yaml:"port"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	AllowedOrigins  []string      `yaml:"allowed_origins"` // Empty allows any origin
}

// Addr returns the listen address for Port.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf(":%d", s.Port)
}

// LogConfig defines logger verbosity.
type LogConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
}

// StorageConfig defines the tournament history database.
type StorageConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// MatchConfig defines tournament sequencing and lifecycle timing.
type MatchConfig struct {
	GamesPerMatch       int           `yaml:"games_per_match"`
	LeadGame            string        `yaml:"lead_game"` // Empty = fully random order
	CountdownFrom       int           `yaml:"countdown_from"`
	CountdownInterval   time.Duration `yaml:"countdown_interval"`
	TimerUpdateInterval time.Duration `yaml:"timer_update_interval"`
	BackupSlack         time.Duration `yaml:"backup_slack"`
	DisposeGrace        time.Duration `yaml:"dispose_grace"`
	SuddenDeath         string        `yaml:"sudden_death"` // off, tied-after-second, tied-at-end
	MaxSuddenDeath      int           `yaml:"max_sudden_death"`
	StatusInterval      time.Duration `yaml:"status_interval"` // 0 disables the status job
}

// GamesConfig holds per-game tuning.
type GamesConfig struct {
	Reaction   ReactionConfig   `yaml:"reaction_time"`
	TicTacToe  TicTacToeConfig  `yaml:"tic_tac_toe"`
	RPS        RPSConfig        `yaml:"rock_paper_scissors"`
	WhackAMole WhackAMoleConfig `yaml:"whack_a_mole"`
}

// ReactionConfig tunes reaction time.
type ReactionConfig struct {
	Duration time.Duration `yaml:"duration"`
	MinDelay time.Duration `yaml:"min_delay"`
	MaxDelay time.Duration `yaml:"max_delay"`
	Policy   string        `yaml:"policy"` // first-click or both-click
}

// TicTacToeConfig tunes tic-tac-toe.
type TicTacToeConfig struct {
	Duration time.Duration `yaml:"duration"`
}

// RPSConfig tunes rock-paper-scissors.
type RPSConfig struct {
	Duration   time.Duration `yaml:"duration"`
	Rounds     int           `yaml:"rounds"`
	RoundDelay time.Duration `yaml:"round_delay"`
}

// WhackAMoleConfig tunes whack-a-mole.
type WhackAMoleConfig struct {
	Duration      time.Duration `yaml:"duration"`
	SpawnInterval time.Duration `yaml:"spawn_interval"`
	MoleLifetime  time.Duration `yaml:"mole_lifetime"`
	WaveMin       int           `yaml:"wave_min"`
	WaveMax       int           `yaml:"wave_max"`
}

var validSuddenDeath = map[string]bool{"off": true, "tied-after-second": true, "tied-at-end": true}

var validLevels = map[string]bool{"debug": true, "info": true, "warn": true, "error": true}

// Validate rejects configurations the server cannot run with.
func (c Config) Validate() error {
	var errs []error

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port %d out of range", c.Server.Port))
	}
	if !validLevels[c.Log.Level] {
		errs = append(errs, fmt.Errorf("log.level %q is not one of debug, info, warn, error", c.Log.Level))
	}
	if c.Storage.Enabled && c.Storage.Path == "" {
		errs = append(errs, errors.New("storage.path is required when storage is enabled"))
	}

	m := c.Match
	if m.GamesPerMatch < 1 {
		errs = append(errs, fmt.Errorf("match.games_per_match must be positive, got %d", m.GamesPerMatch))
	}
	if m.CountdownFrom < 1 || m.CountdownInterval <= 0 {
		errs = append(errs, errors.New("match countdown needs a positive start and interval"))
	}
	if m.TimerUpdateInterval <= 0 || m.DisposeGrace < 0 || m.BackupSlack <= 0 {
		errs = append(errs, errors.New("match timer intervals must be positive"))
	}
	if !validSuddenDeath[m.SuddenDeath] {
		errs = append(errs, fmt.Errorf("match.sudden_death %q is not one of off, tied-after-second, tied-at-end", m.SuddenDeath))
	}
	if m.MaxSuddenDeath < 0 {
		errs = append(errs, errors.New("match.max_sudden_death cannot be negative"))
	}

	g := c.Games
	for name, d := range map[string]time.Duration{
		"reaction_time":       g.Reaction.Duration,
		"tic_tac_toe":         g.TicTacToe.Duration,
		"rock_paper_scissors": g.RPS.Duration,
		"whack_a_mole":        g.WhackAMole.Duration,
	} {
		if d <= 0 {
			errs = append(errs, fmt.Errorf("games.%s.duration must be positive", name))
		}
	}
	if g.Reaction.MinDelay < 0 || g.Reaction.MaxDelay < g.Reaction.MinDelay {
		errs = append(errs, errors.New("games.reaction_time delay window is invalid"))
	}
	if g.Reaction.MaxDelay >= g.Reaction.Duration {
		errs = append(errs, errors.New("games.reaction_time.max_delay must be shorter than its duration"))
	}
	if g.Reaction.Policy != "first-click" && g.Reaction.Policy != "both-click" {
		errs = append(errs, fmt.Errorf("games.reaction_time.policy %q is not first-click or both-click", g.Reaction.Policy))
	}
	if g.RPS.Rounds < 1 || g.RPS.RoundDelay < 0 {
		errs = append(errs, errors.New("games.rock_paper_scissors needs at least one round"))
	}
	if g.WhackAMole.SpawnInterval <= 0 || g.WhackAMole.MoleLifetime <= 0 {
		errs = append(errs, errors.New("games.whack_a_mole spawn interval and lifetime must be positive"))
	}
	if g.WhackAMole.WaveMin < 1 || g.WhackAMole.WaveMax < g.WhackAMole.WaveMin || g.WhackAMole.WaveMax > 9 {
		errs = append(errs, errors.New("games.whack_a_mole wave size must satisfy 1 <= min <= max <= 9"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config: %w", errors.Join(errs...))
	}
	return nil
}
