// Package config loads chat relay settings from defaults, a settings file
// and environment variables.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/zava/storefront-chat/internal/chat"
)

// Config is the resolved process configuration.
type Config struct {
	Chat      chat.Settings
	Timeout   time.Duration
	Port      string
	AccessKey string // optional inbound key for the chat API
	LogLevel  string
	LogDir    string

	// Source is the settings file that was read, empty when none was found.
	Source string
}

// fileSettings mirrors the on-disk settings layout shared by all formats.
type fileSettings struct {
	ChatSettings chatSection    `json:"ChatSettings" yaml:"ChatSettings" toml:"ChatSettings"`
	Server       serverSection  `json:"Server" yaml:"Server" toml:"Server"`
	Logging      loggingSection `json:"Logging" yaml:"Logging" toml:"Logging"`
}

type chatSection struct {
	EndpointURL    string `json:"EndpointUrl" yaml:"EndpointUrl" toml:"EndpointUrl"`
	APIKey         string `json:"ApiKey" yaml:"ApiKey" toml:"ApiKey"`
	ModelName      string `json:"ModelName" yaml:"ModelName" toml:"ModelName"`
	TimeoutSeconds int    `json:"TimeoutSeconds" yaml:"TimeoutSeconds" toml:"TimeoutSeconds"`
}

type serverSection struct {
	Port      string `json:"Port" yaml:"Port" toml:"Port"`
	AccessKey string `json:"AccessKey" yaml:"AccessKey" toml:"AccessKey"`
}

type loggingSection struct {
	Level string `json:"Level" yaml:"Level" toml:"Level"`
	Dir   string `json:"Dir" yaml:"Dir" toml:"Dir"`
}

// DefaultFiles are probed in order when no explicit path is given.
var DefaultFiles = []string{"appsettings.json", "appsettings.yaml", "appsettings.yml", "appsettings.toml"}

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		Chat:     chat.DefaultSettings(),
		Timeout:  chat.DefaultTimeout,
		Port:     "4000",
		LogLevel: "info",
	}
}

// Load resolves configuration in this order:
//  1. built-in defaults
//  2. settings file (explicit path, CHAT_CONFIG, then DefaultFiles)
//  3. CHAT_* environment variables
//
// An empty endpoint is not an error here; the dispatcher reports it per call.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	explicit := path != "" || os.Getenv("CHAT_CONFIG") != ""
	file := discoverFile(path)
	if file != "" {
		if err := loadFile(file, &cfg); err != nil {
			if !explicit && errors.Is(err, os.ErrNotExist) {
				file = ""
			} else {
				return nil, fmt.Errorf("loading settings file %s: %w", file, err)
			}
		}
	}
	cfg.Source = file

	if err := applyEnvOverrides(&cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

func discoverFile(path string) string {
	if path != "" {
		return path
	}
	if env := os.Getenv("CHAT_CONFIG"); env != "" {
		return env
	}
	for _, candidate := range DefaultFiles {
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return ""
}

// loadFile overlays the file's values onto cfg; fields absent from the file
// keep their current values.
func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	fs := fileSettings{
		ChatSettings: chatSection{
			EndpointURL:    cfg.Chat.EndpointURL,
			APIKey:         cfg.Chat.APIKey,
			ModelName:      cfg.Chat.ModelName,
			TimeoutSeconds: int(cfg.Timeout / time.Second),
		},
		Server:  serverSection{Port: cfg.Port, AccessKey: cfg.AccessKey},
		Logging: loggingSection{Level: cfg.LogLevel, Dir: cfg.LogDir},
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		err = json.Unmarshal(data, &fs)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &fs)
	case ".toml":
		err = toml.Unmarshal(data, &fs)
	default:
		return fmt.Errorf("unsupported settings format %q", ext)
	}
	if err != nil {
		return fmt.Errorf("parsing settings: %w", err)
	}

	cfg.Chat = chat.Settings{
		EndpointURL: fs.ChatSettings.EndpointURL,
		APIKey:      fs.ChatSettings.APIKey,
		ModelName:   fs.ChatSettings.ModelName,
	}
	cfg.Timeout = time.Duration(fs.ChatSettings.TimeoutSeconds) * time.Second
	cfg.Port = fs.Server.Port
	cfg.AccessKey = fs.Server.AccessKey
	cfg.LogLevel = fs.Logging.Level
	cfg.LogDir = fs.Logging.Dir
	return nil
}

// applyEnvOverrides lets CHAT_* variables take precedence over the file.
func applyEnvOverrides(cfg *Config) error {
	if v := os.Getenv("CHAT_ENDPOINT_URL"); v != "" {
		cfg.Chat.EndpointURL = v
	}
	if v := os.Getenv("CHAT_API_KEY"); v != "" {
		cfg.Chat.APIKey = v
	}
	if v := os.Getenv("CHAT_MODEL_NAME"); v != "" {
		cfg.Chat.ModelName = v
	}
	if v := os.Getenv("CHAT_TIMEOUT_SECONDS"); v != "" {
		secs, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("CHAT_TIMEOUT_SECONDS: %w", err)
		}
		cfg.Timeout = time.Duration(secs) * time.Second
	}
	if v := os.Getenv("CHAT_API_PORT"); v != "" {
		cfg.Port = v
	}
	if v := os.Getenv("CHAT_API_ACCESS_KEY"); v != "" {
		cfg.AccessKey = v
	}
	if v := os.Getenv("CHAT_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("CHAT_LOG_DIR"); v != "" {
		cfg.LogDir = v
	}
	return nil
}

// Validate checks the process-level settings. Chat settings are checked at call time.
func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return errors.New("timeout must be positive")
	}
	if strings.TrimSpace(c.Port) == "" {
		return errors.New("port must not be empty")
	}
	if _, err := strconv.Atoi(strings.TrimPrefix(c.Port, ":")); err != nil {
		return fmt.Errorf("port %q is not numeric", c.Port)
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	if c.Chat.ModelName == "" {
		c.Chat.ModelName = chat.DefaultModelName
	}
	return nil
}
