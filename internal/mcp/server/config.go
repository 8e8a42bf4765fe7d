package server

import (
	"github.com/LicTony/TonyMcpServer/internal/config"
	"github.com/LicTony/TonyMcpServer/internal/mcp/protocol"
)

// Config holds the identity the server reports during initialize
type Config struct {
	Name            string
	Version         string
	ProtocolVersion string
}

// NewConfigFromUnified creates a server Config from the application config
func NewConfigFromUnified(cfg *config.Config) *Config {
	serverConfig := DefaultConfig()
	if cfg.Name != "" {
		serverConfig.Name = cfg.Name
	}
	if cfg.Version != "" {
		serverConfig.Version = cfg.Version
	}
	if cfg.ProtocolVersion != "" {
		serverConfig.ProtocolVersion = cfg.ProtocolVersion
	}
	return serverConfig
}

// DefaultConfig returns the fixed handshake identity
func DefaultConfig() *Config {
	return &Config{
		Name:            config.DefaultName,
		Version:         config.DefaultVersion,
		ProtocolVersion: protocol.MCPProtocolVersion,
	}
}
