package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
telegram:
  bot_token: "test_token"
database:
  path: "test.db"
redis:
  address: "localhost:6380"
session:
  ttl_minutes: 15
reminder:
  max_attempts: 5
`
	if err := os.WriteFile(configPath, []byte(yamlContent), 0o644); err != nil {
		t.Fatalf("failed to write temp config: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Telegram.BotToken != "test_token" {
		t.Errorf("expected bot_token test_token, got %s", cfg.Telegram.BotToken)
	}
	if cfg.Redis.Address != "localhost:6380" {
		t.Errorf("expected redis address localhost:6380, got %s", cfg.Redis.Address)
	}
	if cfg.Session.TTLMinutes != 15 {
		t.Errorf("expected session ttl 15, got %d", cfg.Session.TTLMinutes)
	}
	if cfg.Reminder.MaxAttempts != 5 {
		t.Errorf("expected 5 attempts, got %d", cfg.Reminder.MaxAttempts)
	}
}

func TestLoadConfigExpandsEnv(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	t.Setenv("TEST_BOT_TOKEN", "from_env")

	yamlContent := `
telegram:
  bot_token: "${TEST_BOT_TOKEN}"
database:
  path: "test.db"
`
	if err := os.WriteFile(configPath, []byte(yamlContent), 0o644); err != nil {
		t.Fatalf("failed to write temp config: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Telegram.BotToken != "from_env" {
		t.Errorf("expected token from env, got %s", cfg.Telegram.BotToken)
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := Config{
		Telegram: TelegramConfig{BotToken: "token"},
		Database: DatabaseConfig{Path: "test.db"},
	}
	cfg.applyDefaults()

	if cfg.Session.TTLMinutes != 30 {
		t.Errorf("expected default session ttl 30, got %d", cfg.Session.TTLMinutes)
	}
	if cfg.Reminder.LeadHours != 24 {
		t.Errorf("expected default lead hours 24, got %d", cfg.Reminder.LeadHours)
	}
	if cfg.Reminder.MaxAttempts != 3 {
		t.Errorf("expected default max attempts 3, got %d", cfg.Reminder.MaxAttempts)
	}
	if cfg.Reminder.RetryDelaySeconds != 60 {
		t.Errorf("expected default retry delay 60s, got %d", cfg.Reminder.RetryDelaySeconds)
	}
	if cfg.Worker.Concurrency != 5 {
		t.Errorf("expected default concurrency 5, got %d", cfg.Worker.Concurrency)
	}
	if cfg.Redis.Address != "localhost:6379" {
		t.Errorf("expected default redis address, got %s", cfg.Redis.Address)
	}
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{
			name: "valid config",
			cfg: Config{
				Telegram: TelegramConfig{BotToken: "token"},
				Database: DatabaseConfig{Path: "path"},
				Reminder: ReminderConfig{LeadHours: 24},
			},
			wantErr: false,
		},
		{
			name: "missing token",
			cfg: Config{
				Database: DatabaseConfig{Path: "path"},
				Reminder: ReminderConfig{LeadHours: 24},
			},
			wantErr: true,
		},
		{
			name: "placeholder token",
			cfg: Config{
				Telegram: TelegramConfig{BotToken: "YOUR_BOT_TOKEN_HERE"},
				Database: DatabaseConfig{Path: "path"},
				Reminder: ReminderConfig{LeadHours: 24},
			},
			wantErr: true,
		},
		{
			name: "missing database path",
			cfg: Config{
				Telegram: TelegramConfig{BotToken: "token"},
				Reminder: ReminderConfig{LeadHours: 24},
			},
			wantErr: true,
		},
		{
			name: "negative lead hours",
			cfg: Config{
				Telegram: TelegramConfig{BotToken: "token"},
				Database: DatabaseConfig{Path: "path"},
				Reminder: ReminderConfig{LeadHours: -1},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
