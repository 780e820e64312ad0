// Package config loads environment variables and provides a typed Config used across the service.
// It applies sensible defaults so the binary can run locally with minimal setup.
// The Discord credentials are required; use Validate before connecting.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	// Discord
	DiscordToken string
	GuildID      string

	// HTTP
	APIKey string
	Port   int

	// Lifetimes
	InviteTTL  time.Duration
	ChannelTTL time.Duration
}

// Load reads environment variables and applies defaults. It doesn't fail if the
// Discord credentials are missing; call Validate() when you need the gateway.
// An empty API_KEY is allowed and means every provisioning request is rejected.
func Load() (*Config, error) {
	cfg := &Config{}

	cfg.DiscordToken = os.Getenv("DISCORD_TOKEN")
	cfg.GuildID = os.Getenv("GUILD_ID")
	cfg.APIKey = os.Getenv("API_KEY")

	cfg.Port = 10000
	if v := os.Getenv("PORT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 || n > 65535 {
			return nil, fmt.Errorf("invalid PORT: %q", v)
		}
		cfg.Port = n
	}

	ttl, err := secondsEnv("INVITE_TTL_SECONDS", 600)
	if err != nil {
		return nil, err
	}
	cfg.InviteTTL = ttl

	ttl, err = secondsEnv("CHANNEL_TTL_SECONDS", 3600)
	if err != nil {
		return nil, err
	}
	cfg.ChannelTTL = ttl

	return cfg, nil
}

// Validate checks the fields required to talk to Discord at all.
func (c *Config) Validate() error {
	if c.DiscordToken == "" || c.GuildID == "" {
		return fmt.Errorf("missing required env: DISCORD_TOKEN and GUILD_ID must be set")
	}
	return nil
}

// Addr returns the listen address for the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

func secondsEnv(key string, def int) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return time.Duration(def) * time.Second, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid %s: %q", key, v)
	}
	return time.Duration(n) * time.Second, nil
}
