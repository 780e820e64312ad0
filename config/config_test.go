package config

import (
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"DISCORD_TOKEN", "GUILD_ID", "API_KEY", "PORT", "INVITE_TTL_SECONDS", "CHANNEL_TTL_SECONDS"} {
		t.Setenv(k, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != 10000 {
		t.Errorf("expected default port 10000, got %d", cfg.Port)
	}
	if cfg.InviteTTL != 600*time.Second {
		t.Errorf("expected invite ttl 600s, got %v", cfg.InviteTTL)
	}
	if cfg.ChannelTTL != 3600*time.Second {
		t.Errorf("expected channel ttl 3600s, got %v", cfg.ChannelTTL)
	}
	if cfg.APIKey != "" {
		t.Errorf("expected empty api key, got %q", cfg.APIKey)
	}
}

func TestLoadOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "8081")
	t.Setenv("INVITE_TTL_SECONDS", "120")
	t.Setenv("CHANNEL_TTL_SECONDS", "60")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != 8081 {
		t.Errorf("expected port 8081, got %d", cfg.Port)
	}
	if cfg.InviteTTL != 2*time.Minute {
		t.Errorf("expected invite ttl 2m, got %v", cfg.InviteTTL)
	}
	if cfg.ChannelTTL != time.Minute {
		t.Errorf("expected channel ttl 1m, got %v", cfg.ChannelTTL)
	}
	if cfg.Addr() != ":8081" {
		t.Errorf("expected addr :8081, got %q", cfg.Addr())
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	tests := []struct {
		key   string
		value string
	}{
		{"PORT", "notaport"},
		{"PORT", "-1"},
		{"PORT", "70000"},
		{"INVITE_TTL_SECONDS", "abc"},
		{"INVITE_TTL_SECONDS", "0"},
		{"CHANNEL_TTL_SECONDS", "-5"},
	}
	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.value)
			if _, err := Load(); err == nil {
				t.Fatalf("expected error for %s=%q", tt.key, tt.value)
			}
		})
	}
}

func TestValidateRequiresCredentials(t *testing.T) {
	tests := []struct {
		name    string
		token   string
		guild   string
		wantErr bool
	}{
		{"both set", "token", "guild", false},
		{"missing token", "", "guild", true},
		{"missing guild", "token", "", true},
		{"both missing", "", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{DiscordToken: tt.token, GuildID: tt.guild}
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() err=%v, wantErr=%v", err, tt.wantErr)
			}
		})
	}
}
