package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v2"
)

// Defaults reported during the initialize handshake
const (
	DefaultName            = "TonyMcpServer"
	DefaultVersion         = "1.0"
	DefaultProtocolVersion = "2024-11-05"
	DefaultLogFile         = "mcp_debug.log"
	DefaultStateFile       = "mcp_log_state.txt"
)

// Config holds the complete application configuration
type Config struct {
	// Server identity
	Name            string `yaml:"name" json:"name"`
	Version         string `yaml:"version" json:"version"`
	ProtocolVersion string `yaml:"protocol_version" json:"protocol_version"`

	// Debug log file, written only while logging is enabled
	LogFile string `yaml:"log_file" json:"log_file"`

	// File holding the persisted logging flag
	StateFile string `yaml:"state_file" json:"state_file"`
}

// DefaultConfig returns the default configuration. Paths are relative to the
// working directory.
func DefaultConfig() *Config {
	return &Config{
		Name:            DefaultName,
		Version:         DefaultVersion,
		ProtocolVersion: DefaultProtocolVersion,
		LogFile:         DefaultLogFile,
		StateFile:       DefaultStateFile,
	}
}

// LoadConfig loads configuration from a file. Fields missing from the file
// keep their defaults.
func LoadConfig(configPath string) (*Config, error) {
	// Check if file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file not found: %s", configPath)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Parse based on file extension
	config := DefaultConfig()
	ext := filepath.Ext(configPath)

	switch ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse YAML config: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse JSON config: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported config file format: %s", ext)
	}

	return config, nil
}

// SaveConfig saves configuration to a file
func SaveConfig(config *Config, configPath string) error {
	// Validate configuration first
	if err := config.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	// Create directory if it doesn't exist
	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// Marshal based on file extension
	ext := filepath.Ext(configPath)
	var data []byte
	var err error

	switch ext {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(config)
		if err != nil {
			return fmt.Errorf("failed to marshal YAML config: %w", err)
		}
	case ".json":
		data, err = json.MarshalIndent(config, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal JSON config: %w", err)
		}
	default:
		return fmt.Errorf("unsupported config file format: %s", ext)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("server name is required")
	}

	if c.Version == "" {
		return fmt.Errorf("server version is required")
	}

	if c.ProtocolVersion == "" {
		return fmt.Errorf("protocol version is required")
	}

	if c.LogFile == "" {
		return fmt.Errorf("log file path is required")
	}

	if c.StateFile == "" {
		return fmt.Errorf("log state file path is required")
	}

	if filepath.Clean(c.LogFile) == filepath.Clean(c.StateFile) {
		return fmt.Errorf("log file and log state file must be different files")
	}

	return nil
}
