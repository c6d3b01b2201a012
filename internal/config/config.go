// Package config provides configuration management for the tici application.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/d-kuro/tici/pkg/models"
	"github.com/spf13/viper"
)

const (
	configName = "config"
	configType = "toml"
	envPrefix  = "TICI"
)

// ErrUnknownKey is returned when setting a key that tici does not define.
var ErrUnknownKey = errors.New("unknown configuration key")

var defaults = map[string]any{
	"tmux.command":      "tmux",
	"storage.dirname":   ".tici",
	"storage.extension": "tmux",
	"finder.preview":    true,
	"ui.color":          true,
	"ui.icons":          true,
	"ui.tilde_home":     true,
	"log.level":         "warn",
	"log.development":   false,
}

// getConfigDir returns the configuration directory path.
func getConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "tici")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if home is not available
		return filepath.Join(".", ".config", "tici")
	}
	return filepath.Join(home, ".config", "tici")
}

// Init initializes the configuration system, creating default config if needed.
func Init() error {
	return InitWithDir(getConfigDir())
}

// InitWithDir is Init with an explicit configuration directory.
func InitWithDir(configDir string) error {
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	viper.SetConfigName(configName)
	viper.SetConfigType(configType)
	viper.AddConfigPath(configDir)

	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	for key, value := range defaults {
		viper.SetDefault(key, value)
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("failed to read config: %w", err)
		}
		configPath := filepath.Join(configDir, configName+"."+configType)
		if err := viper.SafeWriteConfigAs(configPath); err != nil {
			if err := viper.WriteConfigAs(configPath); err != nil {
				return fmt.Errorf("failed to create config file: %w", err)
			}
		}
		viper.SetConfigFile(configPath)
	}

	return nil
}

// Load loads and returns the current configuration.
func Load() (*models.Config, error) {
	var cfg models.Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.Tmux.Command = expandPath(cfg.Tmux.Command)
	cfg.Storage.Extension = strings.TrimPrefix(cfg.Storage.Extension, ".")

	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns the built-in configuration.
func Default() *models.Config {
	return &models.Config{
		Tmux:    models.TmuxConfig{Command: "tmux"},
		Storage: models.StorageConfig{DirName: ".tici", Extension: "tmux"},
		Finder:  models.FinderConfig{Preview: true},
		UI:      models.UIConfig{Color: true, Icons: true, TildeHome: true},
		Log:     models.LogConfig{Level: "warn"},
	}
}

func validate(cfg *models.Config) error {
	dir := cfg.Storage.DirName
	if dir == "" || filepath.IsAbs(dir) || strings.ContainsRune(dir, filepath.Separator) || dir == "." || dir == ".." {
		return fmt.Errorf("storage.dirname must be a single directory name under $HOME, got %q", dir)
	}
	if cfg.Storage.Extension == "" || strings.ContainsAny(cfg.Storage.Extension, "/.") {
		return fmt.Errorf("storage.extension must be a plain extension, got %q", cfg.Storage.Extension)
	}
	if cfg.Tmux.Command == "" {
		return fmt.Errorf("tmux.command must not be empty")
	}
	return nil
}

func expandPath(path string) string {
	path = os.ExpandEnv(path)
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, path[2:])
		}
	}
	return path
}

// Set sets a configuration value by key and persists it.
func Set(key string, value any) error {
	if _, ok := defaults[key]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
	viper.Set(key, value)
	return viper.WriteConfig()
}

// GetValue retrieves a configuration value by key.
func GetValue(key string) any {
	return viper.Get(key)
}

// AllSettings returns all configuration settings.
func AllSettings() map[string]any {
	return viper.AllSettings()
}

// Keys returns every configuration key tici understands, sorted.
func Keys() []string {
	keys := make([]string, 0, len(defaults))
	for key := range defaults {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Get returns the current configuration, falling back to defaults when it
// cannot be loaded.
func Get() *models.Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}
