package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

type AppConfig struct {
	RedisURL    string
	DatabaseURL string

	// Submission throttle and CAS retry budget.
	CooldownWindow time.Duration
	CommitRetries  int

	// Live game state expiry in Redis.
	GameTTL time.Duration

	// Replay pacing.
	ReplayTotal      time.Duration
	ReplayTailEvery  time.Duration
	ReplayTailFrames int

	// Optional directory of message template overrides.
	MessageDir string
}

func Load() (*AppConfig, error) {
	cfg := &AppConfig{
		CooldownWindow:   time.Second,
		CommitRetries:    5,
		GameTTL:          24 * time.Hour,
		ReplayTotal:      40 * time.Second,
		ReplayTailEvery:  2 * time.Second,
		ReplayTailFrames: 3,
	}

	cfg.RedisURL = strings.TrimSpace(os.Getenv("REDIS_URL"))
	cfg.DatabaseURL = strings.TrimSpace(os.Getenv("DATABASE_URL"))
	cfg.MessageDir = strings.TrimSpace(os.Getenv("MESSAGE_DIR"))

	if v := strings.TrimSpace(os.Getenv("MELEE_COOLDOWN_MS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.CooldownWindow = time.Duration(n) * time.Millisecond
		}
	}
	if v := strings.TrimSpace(os.Getenv("MELEE_COMMIT_RETRIES")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.CommitRetries = n
		}
	}
	if v := strings.TrimSpace(os.Getenv("MELEE_GAME_TTL")); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.GameTTL = d
		}
	}
	if v := strings.TrimSpace(os.Getenv("REPLAY_TOTAL")); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.ReplayTotal = d
		}
	}
	if v := strings.TrimSpace(os.Getenv("REPLAY_TAIL_EVERY")); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.ReplayTailEvery = d
		}
	}
	if v := strings.TrimSpace(os.Getenv("REPLAY_TAIL_FRAMES")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.ReplayTailFrames = n
		}
	}

	if cfg.RedisURL == "" {
		return nil, errors.New("REDIS_URL is required")
	}

	return cfg, nil
}
