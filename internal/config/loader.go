package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Environment variables that override the file configuration.
const (
	EnvPort     = "PORT"
	EnvLogLevel = "ARENA_LOG_LEVEL"
	EnvDBPath   = "ARENA_DB_PATH"
)

// Loaded is a configuration together with where it came from.
type Loaded struct {
	Config
	Source string // File path, or "embedded"
}

// Load loads the server configuration.
// Search order: customPath -> ~/.arena/arena.yaml -> ./configs/arena.yaml -> embedded default.
// A file only needs the keys it changes; everything else keeps the embedded
// value. A .env file in the working directory is loaded first, then PORT,
// ARENA_LOG_LEVEL and ARENA_DB_PATH override the file.
func Load(customPath string) (Loaded, error) {
	if err := LoadEnvFile(".env"); err != nil {
		return Loaded{}, err
	}

	out := Loaded{Config: embedded(), Source: "embedded"}

	// Try custom path first
	if customPath != "" {
		data, err := os.ReadFile(customPath)
		if err != nil {
			return out, fmt.Errorf("failed to read config %s: %w", customPath, err)
		}
		if err := yaml.Unmarshal(data, &out.Config); err != nil {
			return out, fmt.Errorf("failed to parse config %s: %w", customPath, err)
		}
		out.Source = customPath
	} else {
		for _, path := range []string{userConfigPath("arena.yaml"), filepath.Join("configs", "arena.yaml")} {
			if path == "" {
				continue
			}
			data, err := os.ReadFile(path)
			if err != nil {
				continue
			}
			cfg := out.Config
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				continue
			}
			out.Config, out.Source = cfg, path
			break
		}
	}

	if err := applyEnv(&out.Config); err != nil {
		return out, err
	}
	if err := out.Validate(); err != nil {
		return out, err
	}
	return out, nil
}

// LoadEnvFile loads KEY=VALUE pairs from path into the process environment
// without overriding variables that are already set. A missing file is not
// an error.
func LoadEnvFile(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

func embedded() Config {
	cfg := Default()
	if err := yaml.Unmarshal(defaultArenaYAML, &cfg); err != nil {
		return Default() // Fallback to hardcoded if embed fails
	}
	return cfg
}

func applyEnv(cfg *Config) error {
	if v := os.Getenv(EnvPort); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", EnvPort, v, err)
		}
		cfg.Server.Port = port
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv(EnvDBPath); v != "" {
		cfg.Storage.Path = v
	}
	return nil
}

// userConfigPath returns the path to user config file, or empty if home is unavailable.
func userConfigPath(filename string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".arena", filename)
}
