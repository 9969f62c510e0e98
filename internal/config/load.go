package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
)

type Config struct {
	Bot       BotConfig       `json:"bot"`
	Guild     GuildConfig     `json:"guild"`
	Approved  ApprovedConfig  `json:"approved"`
	Staff     []StaffRole     `json:"staff"`
	Detection DetectionConfig `json:"detection"`
	Database  DatabaseConfig  `json:"database"`
	Log       LogConfig       `json:"log"`
}

type BotConfig struct {
	Token string `json:"token" validate:"required"`
}

type GuildConfig struct {
	ID                 string `json:"id" validate:"required"`
	QuarantineRoleName string `json:"quarantine_role_name" validate:"required"`
	DefaultRoleName    string `json:"default_role_name"`
	LogChannelID       string `json:"log_channel_id"`
}

type ApprovedConfig struct {
	Users []string `json:"users"`
	Bots  []string `json:"bots"`
}

// StaffRole maps a role ID to its roster tier name. Order matters: the first
// matching entry is the member's tier in the /staff report.
type StaffRole struct {
	RoleID string `json:"role_id" validate:"required"`
	Name   string `json:"name" validate:"required"`
}

type DetectionConfig struct {
	JoinThreshold      int `json:"join_threshold" validate:"min=1"`
	JoinWindowSec      int `json:"join_window_sec" validate:"min=1"`
	LeaveThreshold     int `json:"leave_threshold" validate:"min=1"`
	LeaveWindowSec     int `json:"leave_window_sec" validate:"min=1"`
	SpamThreshold      int `json:"spam_threshold" validate:"min=1"`
	SpamWindowSec      int `json:"spam_window_sec" validate:"min=1"`
	TimeoutSec         int `json:"timeout_sec" validate:"min=1"`
	TransientDeleteSec int `json:"transient_delete_sec" validate:"min=1"`
}

type DatabaseConfig struct {
	Path string `json:"path"`
}

type LogConfig struct {
	Path  string `json:"path"`
	Level string `json:"level"`
}

var GlobalConfig *Config

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := DefaultConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := Validate(cfg); err != nil {
		return nil, err
	}

	GlobalConfig = cfg
	return cfg, nil
}

func LoadOrDefault(path string) *Config {
	cfg, err := Load(path)
	if err != nil {
		cfg = DefaultConfig()
		applyEnvOverrides(cfg)
		GlobalConfig = cfg
	}
	return cfg
}

// applyEnvOverrides keeps the env var names of the original deployment so a
// dotenv-style setup keeps working unchanged.
func applyEnvOverrides(cfg *Config) {
	if token := os.Getenv("DISCORD_TOKEN"); token != "" {
		cfg.Bot.Token = token
	}
	if guildID := os.Getenv("GUILD_ID"); guildID != "" {
		cfg.Guild.ID = guildID
	}
	if roleName := os.Getenv("QUARANTINE_ROLE_NAME"); roleName != "" {
		cfg.Guild.QuarantineRoleName = roleName
	}
	if channelID := os.Getenv("LOG_CHANNEL_ID"); channelID != "" {
		cfg.Guild.LogChannelID = channelID
	}
	if users := os.Getenv("APPROVED_USERS"); users != "" {
		cfg.Approved.Users = splitIDList(users)
	}
	if bots := os.Getenv("APPROVED_BOTS"); bots != "" {
		cfg.Approved.Bots = splitIDList(bots)
	}
	if dbPath := os.Getenv("DATABASE_PATH"); dbPath != "" {
		cfg.Database.Path = dbPath
	}
}

func splitIDList(raw string) []string {
	parts := strings.Split(raw, ",")
	ids := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			ids = append(ids, p)
		}
	}
	return ids
}

func Validate(cfg *Config) error {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.Struct(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	return nil
}

func DefaultConfig() *Config {
	return &Config{
		Detection: DetectionConfig{
			JoinThreshold:      5,
			JoinWindowSec:      60,
			LeaveThreshold:     5,
			LeaveWindowSec:     60,
			SpamThreshold:      5,
			SpamWindowSec:      30,
			TimeoutSec:         600,
			TransientDeleteSec: 5,
		},
		Database: DatabaseConfig{
			Path: "sentinel.db",
		},
		Log: LogConfig{
			Path:  "sentinel.log",
			Level: "info",
		},
	}
}

func Get() *Config {
	if GlobalConfig == nil {
		return DefaultConfig()
	}
	return GlobalConfig
}
