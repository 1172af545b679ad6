package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Load reads a TOML configuration file at path, merges it on top of the
// built-in defaults, applies environment variable overrides, and returns the
// final Config. A missing file is not an error: the seeder runs on defaults
// plus environment. The returned Config has NOT been validated; the caller
// should invoke Config.Validate() after Load.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	// Load .env file if present (silently ignore if missing).
	_ = godotenv.Load()

	applyEnvOverrides(&cfg)

	return &cfg, nil
}

// applyEnvOverrides reads MINT_URL and the SEEDCOND_* environment variables
// and overwrites the corresponding Config fields when a variable is set (i.e.
// not empty).
func applyEnvOverrides(cfg *Config) {
	// ── Mint ──
	setStr(&cfg.Mint.BaseURL, "SEEDCOND_MINT_BASE_URL")
	setStr(&cfg.Mint.BaseURL, "MINT_URL") // wins over the prefixed form

	// ── Oracle ──
	setStr(&cfg.Oracle.PrivateKey, "SEEDCOND_ORACLE_PRIVATE_KEY")
	setStr(&cfg.Oracle.EncryptedKeyPath, "SEEDCOND_ORACLE_ENCRYPTED_KEY_PATH")
	setStr(&cfg.Oracle.KeyPassword, "SEEDCOND_ORACLE_KEY_PASSWORD")

	// ── Seed ──
	setDuration(&cfg.Seed.LockTTL, "SEEDCOND_SEED_LOCK_TTL")

	// ── Log ──
	setStr(&cfg.Log.File, "SEEDCOND_LOG_FILE")
	setInt(&cfg.Log.MaxSizeMB, "SEEDCOND_LOG_MAX_SIZE_MB")
	setInt(&cfg.Log.MaxBackups, "SEEDCOND_LOG_MAX_BACKUPS")
	setInt(&cfg.Log.MaxAgeDays, "SEEDCOND_LOG_MAX_AGE_DAYS")
	setBool(&cfg.Log.Compress, "SEEDCOND_LOG_COMPRESS")

	// ── Redis ──
	setBool(&cfg.Redis.Enabled, "SEEDCOND_REDIS_ENABLED")
	setStr(&cfg.Redis.Addr, "SEEDCOND_REDIS_ADDR")
	setStr(&cfg.Redis.Password, "SEEDCOND_REDIS_PASSWORD")
	setInt(&cfg.Redis.DB, "SEEDCOND_REDIS_DB")
	setInt(&cfg.Redis.PoolSize, "SEEDCOND_REDIS_POOL_SIZE")
	setInt(&cfg.Redis.MaxRetries, "SEEDCOND_REDIS_MAX_RETRIES")
	setBool(&cfg.Redis.TLSEnabled, "SEEDCOND_REDIS_TLS_ENABLED")

	// ── Supabase ──
	setBool(&cfg.Supabase.Enabled, "SEEDCOND_SUPABASE_ENABLED")
	setStr(&cfg.Supabase.DSN, "SEEDCOND_SUPABASE_DSN")
	setStr(&cfg.Supabase.DSN, "SEEDCOND_SUPABASE_URL") // compatibility alias
	setStr(&cfg.Supabase.Host, "SEEDCOND_SUPABASE_HOST")
	setInt(&cfg.Supabase.Port, "SEEDCOND_SUPABASE_PORT")
	setStr(&cfg.Supabase.Database, "SEEDCOND_SUPABASE_DATABASE")
	setStr(&cfg.Supabase.User, "SEEDCOND_SUPABASE_USER")
	setStr(&cfg.Supabase.Password, "SEEDCOND_SUPABASE_PASSWORD")
	setStr(&cfg.Supabase.SSLMode, "SEEDCOND_SUPABASE_SSL_MODE")
	setInt(&cfg.Supabase.PoolMaxConns, "SEEDCOND_SUPABASE_POOL_MAX_CONNS")
	setInt(&cfg.Supabase.PoolMinConns, "SEEDCOND_SUPABASE_POOL_MIN_CONNS")
	setBool(&cfg.Supabase.RunMigrations, "SEEDCOND_SUPABASE_RUN_MIGRATIONS")

	// ── S3 ──
	setBool(&cfg.S3.Enabled, "SEEDCOND_S3_ENABLED")
	setStr(&cfg.S3.Endpoint, "SEEDCOND_S3_ENDPOINT")
	setStr(&cfg.S3.Region, "SEEDCOND_S3_REGION")
	setStr(&cfg.S3.Bucket, "SEEDCOND_S3_BUCKET")
	setStr(&cfg.S3.Prefix, "SEEDCOND_S3_PREFIX")
	setStr(&cfg.S3.AccessKey, "SEEDCOND_S3_ACCESS_KEY")
	setStr(&cfg.S3.SecretKey, "SEEDCOND_S3_SECRET_KEY")
	setBool(&cfg.S3.UseSSL, "SEEDCOND_S3_USE_SSL")
	setBool(&cfg.S3.ForcePathStyle, "SEEDCOND_S3_FORCE_PATH_STYLE")

	// ── Notify ──
	setStr(&cfg.Notify.TelegramToken, "SEEDCOND_NOTIFY_TELEGRAM_TOKEN")
	setStr(&cfg.Notify.TelegramChatID, "SEEDCOND_NOTIFY_TELEGRAM_CHAT_ID")
	setStr(&cfg.Notify.DiscordWebhookURL, "SEEDCOND_NOTIFY_DISCORD_WEBHOOK_URL")
	setStringSlice(&cfg.Notify.Events, "SEEDCOND_NOTIFY_EVENTS")

	// ── Top-level ──
	setStr(&cfg.LogLevel, "SEEDCOND_LOG_LEVEL")
}

// ---------------------------------------------------------------------------
// Typed env-var helpers. Each only mutates the target when the environment
// variable is present and non-empty.
// ---------------------------------------------------------------------------

func setStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setDuration(dst *duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			dst.Duration = d
		}
	}
}

func setStringSlice(dst *[]string, key string) {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		cleaned := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				cleaned = append(cleaned, p)
			}
		}
		if len(cleaned) > 0 {
			*dst = cleaned
		}
	}
}
