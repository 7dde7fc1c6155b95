package config

import (
	_ "embed"
	"time"
)

//go:embed defaults/arena.yaml
var defaultArenaYAML []byte

// Default returns the built-in configuration. It mirrors defaults/arena.yaml
// and is used if the embedded file cannot be parsed.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Port:            3000,
			ShutdownTimeout: 10 * time.Second,
		},
		Log: LogConfig{Level: "info"},
		Storage: StorageConfig{
			Enabled: true,
			Path:    "~/.arena/arena.db",
		},
		Match: MatchConfig{
			GamesPerMatch:       3,
			LeadGame:            "reaction-time",
			CountdownFrom:       3,
			CountdownInterval:   time.Second,
			TimerUpdateInterval: time.Second,
			BackupSlack:         2 * time.Second,
			DisposeGrace:        5 * time.Second,
			SuddenDeath:         "tied-at-end",
			MaxSuddenDeath:      1,
			StatusInterval:      10 * time.Second,
		},
		Games: GamesConfig{
			Reaction: ReactionConfig{
				Duration: 15 * time.Second,
				MinDelay: 2 * time.Second,
				MaxDelay: 8 * time.Second,
				Policy:   "both-click",
			},
			TicTacToe: TicTacToeConfig{Duration: 60 * time.Second},
			RPS: RPSConfig{
				Duration:   45 * time.Second,
				Rounds:     3,
				RoundDelay: 2 * time.Second,
			},
			WhackAMole: WhackAMoleConfig{
				Duration:      30 * time.Second,
				SpawnInterval: 1200 * time.Millisecond,
				MoleLifetime:  1500 * time.Millisecond,
				WaveMin:       1,
				WaveMax:       2,
			},
		},
	}
}

// DefaultYAML returns the embedded default configuration file.
func DefaultYAML() []byte {
	return defaultArenaYAML
}
