package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Config holds application configuration
type Config struct {
	Hotkey         HotkeyConfig `json:"hotkey"`
	GestureMode    string       `json:"gesture_mode"` // "toggle" or "press-to-hold"
	RecordingsDir  string       `json:"recordings_dir"`
	UILanguage     string       `json:"ui_language"` // "ja" or "en"
	ServerPort     int          `json:"server_port"`
	NotifyOnRecord bool         `json:"notify_on_record"`
	mu             sync.RWMutex
}

// HotkeyConfig holds hotkey configuration
type HotkeyConfig struct {
	Ctrl  bool   `json:"ctrl"`
	Shift bool   `json:"shift"`
	Alt   bool   `json:"alt"`
	Cmd   bool   `json:"cmd"`
	Key   string `json:"key"` // e.g., "R"
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Hotkey: HotkeyConfig{
			Ctrl: true,
			Alt:  true,
			Key:  "R",
		},
		GestureMode:    "toggle",
		RecordingsDir:  "~/Documents/StealthRecorder",
		UILanguage:     "en",
		ServerPort:     18929,
		NotifyOnRecord: false, // recordings stay silent unless the user opts in
	}
}

// Load loads configuration from the specified path
func Load(path string) (*Config, error) {
	// If file doesn't exist, return default config
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return DefaultConfig(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Fill in fields an older config file may be missing
	if config.Hotkey.Key == "" {
		config.Hotkey.Key = "R"
	}
	if config.GestureMode == "" {
		config.GestureMode = "toggle"
	}
	if config.RecordingsDir == "" {
		config.RecordingsDir = DefaultConfig().RecordingsDir
	}
	if config.ServerPort == 0 {
		config.ServerPort = DefaultConfig().ServerPort
	}
	if config.UILanguage == "" {
		config.UILanguage = "en"
	}

	return &config, nil
}

// Save saves configuration to the specified path
func (c *Config) Save(path string) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// GetConfigPath returns the default configuration file path
func GetConfigPath() string {
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, "Library", "Application Support", "StealthRecorder", "config.json")
}

// Update updates configuration fields
func (c *Config) Update(updates map[string]interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for key, value := range updates {
		switch key {
		case "gesture_mode":
			if v, ok := value.(string); ok {
				if v != "press-to-hold" && v != "toggle" {
					return fmt.Errorf("invalid gesture_mode: %s", v)
				}
				c.GestureMode = v
			}
		case "recordings_dir":
			if v, ok := value.(string); ok {
				if v == "" {
					return fmt.Errorf("recordings_dir cannot be empty")
				}
				c.RecordingsDir = v
			}
		case "ui_language":
			if v, ok := value.(string); ok {
				if v != "ja" && v != "en" {
					return fmt.Errorf("invalid ui_language: %s", v)
				}
				c.UILanguage = v
			}
		case "server_port":
			if v, ok := value.(float64); ok {
				port := int(v)
				if port < 1024 || port > 65535 {
					return fmt.Errorf("invalid server_port: %d", port)
				}
				c.ServerPort = port
			}
		case "notify_on_record":
			if v, ok := value.(bool); ok {
				c.NotifyOnRecord = v
			}
		case "hotkey":
			if v, ok := value.(map[string]interface{}); ok {
				if ctrl, ok := v["ctrl"].(bool); ok {
					c.Hotkey.Ctrl = ctrl
				}
				if shift, ok := v["shift"].(bool); ok {
					c.Hotkey.Shift = shift
				}
				if alt, ok := v["alt"].(bool); ok {
					c.Hotkey.Alt = alt
				}
				if cmd, ok := v["cmd"].(bool); ok {
					c.Hotkey.Cmd = cmd
				}
				if key, ok := v["key"].(string); ok {
					c.Hotkey.Key = key
				}
			}
		}
	}

	return nil
}

// Clone creates a deep copy of the configuration
func (c *Config) Clone() *Config {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return &Config{
		Hotkey:         c.Hotkey,
		GestureMode:    c.GestureMode,
		RecordingsDir:  c.RecordingsDir,
		UILanguage:     c.UILanguage,
		ServerPort:     c.ServerPort,
		NotifyOnRecord: c.NotifyOnRecord,
	}
}

// GetHotkey returns the current hotkey configuration
func (c *Config) GetHotkey() HotkeyConfig {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.Hotkey
}

// SetHotkey replaces the hotkey configuration
func (c *Config) SetHotkey(hotkey HotkeyConfig) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.Hotkey = hotkey
}

// ExpandPath expands ~ to home directory in file paths
func ExpandPath(path string) (string, error) {
	if path == "" {
		return "", nil
	}

	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		return filepath.Join(homeDir, path[2:]), nil
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to get absolute path: %w", err)
	}

	return absPath, nil
}

// GetRecordingsDir returns the expanded recordings directory path
func (c *Config) GetRecordingsDir() (string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return ExpandPath(c.RecordingsDir)
}

// Validate validates all configuration fields
func (c *Config) Validate() error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.GestureMode != "press-to-hold" && c.GestureMode != "toggle" {
		return fmt.Errorf("invalid gesture_mode: %s (must be 'press-to-hold' or 'toggle')", c.GestureMode)
	}

	if c.RecordingsDir == "" {
		return fmt.Errorf("recordings_dir cannot be empty")
	}

	if c.UILanguage != "ja" && c.UILanguage != "en" {
		return fmt.Errorf("invalid ui_language: %s (must be 'ja' or 'en')", c.UILanguage)
	}

	if c.ServerPort < 1024 || c.ServerPort > 65535 {
		return fmt.Errorf("invalid server_port: %d (must be between 1024 and 65535)", c.ServerPort)
	}

	return nil
}
