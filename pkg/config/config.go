/*
Package config manages the TOML config for wordtrie.

Values are read from a config file when one exists, then overridden by
WORDTRIE_* environment variables. Any section that cannot be decoded falls
back to its defaults, so a broken file never stops the service from starting.
*/
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/bastiangx/wordtrie/internal/utils"
	"github.com/charmbracelet/log"
)

// Config holds the entire config structure
type Config struct {
	Server ServerConfig `toml:"server"`
	Dict   DictConfig   `toml:"dict"`
	Fuzzy  FuzzyConfig  `toml:"fuzzy"`
	CLI    CliConfig    `toml:"cli"`
}

// ServerConfig has server related options.
type ServerConfig struct {
	MaxLimit     int  `toml:"max_limit"`
	MinPrefix    int  `toml:"min_prefix"`
	MaxPrefix    int  `toml:"max_prefix"`
	EnableFilter bool `toml:"enable_filter"`
}

// DictConfig holds dictionary options.
type DictConfig struct {
	DataDir            string `toml:"data_dir"`
	MaxWords           int    `toml:"max_words"`
	MinFreqThreshold   int    `toml:"min_frequency_threshold"`
	MinFreqShortPrefix int    `toml:"min_frequency_short_prefix"`
	HotWords           int    `toml:"hot_words"`
}

// FuzzyConfig holds approximate matching options.
type FuzzyConfig struct {
	MaxDistance int  `toml:"max_distance"`
	PrefixMode  bool `toml:"prefix_mode"`
	MinPrefix   int  `toml:"min_prefix"`
}

// CliConfig holds cli interface options.
type CliConfig struct {
	DefaultLimit    int  `toml:"default_limit"`
	DefaultMinLen   int  `toml:"default_min_len"`
	DefaultMaxLen   int  `toml:"default_max_len"`
	DefaultNoFilter bool `toml:"default_no_filter"`
}

// GetConfigDir returns the config directory with fallback priority:
// 1. ~/.config/
// 2. ~/Library/Application Support/ (macOS)
// 3. Current executable dir
func GetConfigDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		log.Errorf("Failed to get home directory: %v", err)
		return utils.GetExecutableDir()
	}
	primaryPath := filepath.Join(homeDir, ".config", "wordtrie")
	if result := utils.CheckDirStatus(primaryPath); result.Writable {
		return primaryPath, nil
	}
	macOSPath := filepath.Join(homeDir, "Library", "Application Support", "wordtrie")
	if result := utils.CheckDirStatus(macOSPath); result.Writable {
		return macOSPath, nil
	}
	execDir, err := utils.GetExecutableDir()
	if err != nil {
		log.Errorf("Failed to get executable directory: %v", err)
		return "", err
	}
	return execDir, nil
}

// GetDefaultConfigPath returns the default path for config.toml
func GetDefaultConfigPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "config.toml"), nil
}

// LoadConfigWithPriority loads config with priority:
// 1. Custom path from --config flag
// 2. Default path: [UserConfigDir]/wordtrie/config.toml
// 3. Builtin defaults
func LoadConfigWithPriority(customConfigPath string) (*Config, string, error) {
	if customConfigPath != "" {
		if _, statErr := os.Stat(customConfigPath); statErr == nil {
			config, err := LoadConfig(customConfigPath)
			if err != nil {
				log.Warnf("Failed to load custom config from %s: %v. Trying default path...", customConfigPath, err)
			} else {
				log.Debugf("Loaded config from custom path: %s", customConfigPath)
				return config, customConfigPath, nil
			}
		} else {
			log.Warnf("Custom config file not found at %s: %v. Trying default path...", customConfigPath, statErr)
		}
	}

	defaultPath, err := GetDefaultConfigPath()
	if err != nil {
		log.Warnf("Failed to determine default config path: %v. Using built-in defaults...", err)
		return DefaultConfig().applyEnvOverrides(), "", nil
	}

	config, err := InitConfig(defaultPath)
	if err != nil {
		log.Warnf("Failed to load/create config at default path %s: %v. Using builtin defaults...", defaultPath, err)
		return DefaultConfig().applyEnvOverrides(), "", nil
	}
	log.Debugf("Loaded config from default path: %s", defaultPath)
	return config, defaultPath, nil
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			MaxLimit:     64,
			MinPrefix:    1,
			MaxPrefix:    60,
			EnableFilter: true,
		},
		Dict: DictConfig{
			DataDir:            "data/",
			MaxWords:           50000,
			MinFreqThreshold:   20,
			MinFreqShortPrefix: 24,
			HotWords:           2000,
		},
		Fuzzy: FuzzyConfig{
			MaxDistance: 2,
			PrefixMode:  true,
			MinPrefix:   3,
		},
		CLI: CliConfig{
			DefaultLimit:    24,
			DefaultMinLen:   1,
			DefaultMaxLen:   24,
			DefaultNoFilter: false,
		},
	}
}

// InitConfig loads config from file or creates default if missing
func InitConfig(configPath string) (*Config, error) {
	configDir := filepath.Dir(configPath)

	if err := utils.EnsureDir(configDir); err != nil {
		log.Warnf("Failed to create config directory %s: %v. Using built-in defaults...", configDir, err)
		return DefaultConfig().applyEnvOverrides(), nil
	}

	if !utils.FileExists(configPath) {
		config := DefaultConfig()
		if err := SaveConfig(config, configPath); err != nil {
			log.Warnf("Failed to create default config file at %s: %v. Using built-in defaults...", configPath, err)
			return DefaultConfig().applyEnvOverrides(), nil
		}
		log.Debugf("Created default config file at: %s", configPath)
		return config.applyEnvOverrides(), nil
	}

	config, err := LoadConfig(configPath)
	if err != nil {
		log.Warnf("Failed to load config from %s: %v. Using built-in defaults...", configPath, err)
		return DefaultConfig().applyEnvOverrides(), nil
	}
	return config, nil
}

// LoadConfig loads from a TOML file
func LoadConfig(configPath string) (*Config, error) {
	config := DefaultConfig()

	if err := utils.LoadTOMLFile(configPath, config); err != nil {
		config, err = tryPartialParse(configPath)
		if err != nil {
			return nil, err
		}
	}
	if err := config.Validate(); err != nil {
		log.Warnf("Invalid values in %s: %v. Using built-in defaults...", configPath, err)
		config = DefaultConfig()
	}
	return config.applyEnvOverrides(), nil
}

// tryPartialParse keeps every section of a TOML file that still decodes
func tryPartialParse(configPath string) (*Config, error) {
	config := DefaultConfig()

	tempConfig, err := utils.ParseTOMLWithRecovery(configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
		log.Warnf("Could not parse any valid configuration from %s: %v. Using all defaults.", configPath, err)
		return config, nil
	}

	if serverSection, ok := utils.ExtractSection(tempConfig, "server"); ok {
		extractServerConfig(serverSection, &config.Server)
	}
	if dictSection, ok := utils.ExtractSection(tempConfig, "dict"); ok {
		extractDictConfig(dictSection, &config.Dict)
	}
	if fuzzySection, ok := utils.ExtractSection(tempConfig, "fuzzy"); ok {
		extractFuzzyConfig(fuzzySection, &config.Fuzzy)
	}
	if cliSection, ok := utils.ExtractSection(tempConfig, "cli"); ok {
		extractCliConfig(cliSection, &config.CLI)
	}
	return config, nil
}

func extractServerConfig(data map[string]any, server *ServerConfig) {
	if val, ok := utils.ExtractInt64(data, "max_limit"); ok {
		server.MaxLimit = val
	}
	if val, ok := utils.ExtractInt64(data, "min_prefix"); ok {
		server.MinPrefix = val
	}
	if val, ok := utils.ExtractInt64(data, "max_prefix"); ok {
		server.MaxPrefix = val
	}
	if val, ok := utils.ExtractBool(data, "enable_filter"); ok {
		server.EnableFilter = val
	}
}

func extractDictConfig(data map[string]any, dict *DictConfig) {
	if val, ok := utils.ExtractString(data, "data_dir"); ok {
		dict.DataDir = val
	}
	if val, ok := utils.ExtractInt64(data, "max_words"); ok {
		dict.MaxWords = val
	}
	if val, ok := utils.ExtractInt64(data, "min_frequency_threshold"); ok {
		dict.MinFreqThreshold = val
	}
	if val, ok := utils.ExtractInt64(data, "min_frequency_short_prefix"); ok {
		dict.MinFreqShortPrefix = val
	}
	if val, ok := utils.ExtractInt64(data, "hot_words"); ok {
		dict.HotWords = val
	}
}

func extractFuzzyConfig(data map[string]any, fuzzy *FuzzyConfig) {
	if val, ok := utils.ExtractInt64(data, "max_distance"); ok {
		fuzzy.MaxDistance = val
	}
	if val, ok := utils.ExtractBool(data, "prefix_mode"); ok {
		fuzzy.PrefixMode = val
	}
	if val, ok := utils.ExtractInt64(data, "min_prefix"); ok {
		fuzzy.MinPrefix = val
	}
}

func extractCliConfig(data map[string]any, cli *CliConfig) {
	if val, ok := utils.ExtractInt64(data, "default_limit"); ok {
		cli.DefaultLimit = val
	}
	if val, ok := utils.ExtractInt64(data, "default_min_len"); ok {
		cli.DefaultMinLen = val
	}
	if val, ok := utils.ExtractInt64(data, "default_max_len"); ok {
		cli.DefaultMaxLen = val
	}
	if val, ok := utils.ExtractBool(data, "default_no_filter"); ok {
		cli.DefaultNoFilter = val
	}
}

// Validate rejects values the completer and server cannot work with.
func (c *Config) Validate() error {
	switch {
	case c.Server.MaxLimit < 1:
		return fmt.Errorf("server.max_limit must be positive, got %d", c.Server.MaxLimit)
	case c.Server.MinPrefix < 0 || c.Server.MinPrefix > c.Server.MaxPrefix:
		return fmt.Errorf("server.min_prefix %d outside [0, max_prefix %d]", c.Server.MinPrefix, c.Server.MaxPrefix)
	case c.Dict.MaxWords < 0:
		return fmt.Errorf("dict.max_words must not be negative, got %d", c.Dict.MaxWords)
	case c.Dict.HotWords < 0:
		return fmt.Errorf("dict.hot_words must not be negative, got %d", c.Dict.HotWords)
	case c.Fuzzy.MaxDistance < 0:
		return fmt.Errorf("fuzzy.max_distance must not be negative, got %d", c.Fuzzy.MaxDistance)
	}
	return nil
}

// applyEnvOverrides lets WORDTRIE_* variables win over file values.
func (c *Config) applyEnvOverrides() *Config {
	if env := os.Getenv("WORDTRIE_DATA_DIR"); env != "" {
		c.Dict.DataDir = env
	}
	if env := os.Getenv("WORDTRIE_MAX_WORDS"); env != "" {
		if n, err := strconv.Atoi(env); err == nil && n >= 0 {
			c.Dict.MaxWords = n
		} else {
			log.Warnf("Ignoring WORDTRIE_MAX_WORDS=%q", env)
		}
	}
	if env := os.Getenv("WORDTRIE_FUZZY_DISTANCE"); env != "" {
		if n, err := strconv.Atoi(env); err == nil && n >= 0 {
			c.Fuzzy.MaxDistance = n
		} else {
			log.Warnf("Ignoring WORDTRIE_FUZZY_DISTANCE=%q", env)
		}
	}
	return c
}

// GetActiveConfigPath returns the absolute path of loaded config file
func GetActiveConfigPath(configPath string) string {
	if configPath == "" {
		if defaultPath, err := GetDefaultConfigPath(); err == nil {
			return defaultPath
		}
		return "unknown"
	}
	return utils.GetAbsolutePath(configPath)
}

// SaveConfig saves into a TOML file
func SaveConfig(config *Config, configPath string) error {
	return utils.SaveTOMLFile(config, configPath)
}

// Update changes the server values and saves to file.
// Nothing changes when the new values do not validate.
func (c *Config) Update(configPath string, maxLimit, minPrefix, maxPrefix *int, enableFilter *bool) error {
	next := *c
	if maxLimit != nil {
		next.Server.MaxLimit = *maxLimit
	}
	if minPrefix != nil {
		next.Server.MinPrefix = *minPrefix
	}
	if maxPrefix != nil {
		next.Server.MaxPrefix = *maxPrefix
	}
	if enableFilter != nil {
		next.Server.EnableFilter = *enableFilter
	}
	if err := next.Validate(); err != nil {
		return err
	}
	if err := SaveConfig(&next, configPath); err != nil {
		return err
	}
	*c = next
	return nil
}
