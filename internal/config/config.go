// Package config builds an immutable configuration snapshot from environment
// variables. The snapshot is passed explicitly to every component; there is no
// process-wide mutable configuration state.
package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the process configuration snapshot, read once at startup.
type Config struct {
	DiscordToken  string
	DatabasePath  string
	LogLevel      string
	DryRun        bool
	TemplatesPath string

	// Guild allowlist. Empty means unrestricted.
	Allowlist []string

	// Named reminder templates loaded from TemplatesPath (optional).
	Templates map[string]string
}

// Load reads configuration from the environment. DISCORD_TOKEN is required
// unless DRY_RUN is enabled.
func Load() (*Config, error) {
	cfg := &Config{
		DiscordToken:  os.Getenv("DISCORD_TOKEN"),
		DatabasePath:  os.Getenv("MCP_DISCORD_DB_PATH"),
		LogLevel:      strings.ToUpper(os.Getenv("LOG_LEVEL")),
		DryRun:        parseBool(os.Getenv("DRY_RUN")),
		TemplatesPath: os.Getenv("REMINDER_TEMPLATES_PATH"),
	}

	if cfg.DatabasePath == "" {
		cfg.DatabasePath = "discord_mcp.db"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "INFO"
	}

	if raw := os.Getenv("GUILD_ALLOWLIST"); raw != "" {
		for _, id := range strings.Split(raw, ",") {
			if id = strings.TrimSpace(id); id != "" {
				cfg.Allowlist = append(cfg.Allowlist, id)
			}
		}
	}

	if cfg.DiscordToken == "" && !cfg.DryRun {
		return nil, fmt.Errorf("DISCORD_TOKEN environment variable required")
	}

	if cfg.TemplatesPath != "" {
		templates, err := loadTemplates(cfg.TemplatesPath)
		if err != nil {
			return nil, fmt.Errorf("load reminder templates: %w", err)
		}
		cfg.Templates = templates
	}

	return cfg, nil
}

// GuildAllowed reports whether operations against the guild are permitted.
func (c *Config) GuildAllowed(guildID string) bool {
	if len(c.Allowlist) == 0 {
		return true
	}
	for _, id := range c.Allowlist {
		if id == guildID {
			return true
		}
	}
	return false
}

// Debug reports whether debug-level logging is enabled.
func (c *Config) Debug() bool {
	return c.LogLevel == "DEBUG"
}

func parseBool(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "true", "1", "yes", "on":
		return true
	}
	return false
}

// loadTemplates reads a YAML file mapping template names to reminder template
// strings. Templates may reference {title}, {mentions} and {total_optins}.
func loadTemplates(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	templates := make(map[string]string)
	if err := yaml.Unmarshal(data, &templates); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return templates, nil
}
