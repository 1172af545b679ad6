package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	t.Setenv("MINT_URL", "")
	t.Setenv("SEEDCOND_MINT_BASE_URL", "")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	require.NoError(t, err)
	require.Equal(t, DefaultMintURL, cfg.Mint.BaseURL)
	require.Equal(t, 10*time.Minute, cfg.Seed.LockTTL.Duration)
	require.NoError(t, cfg.Validate())
}

func TestLoadFileAndEnvOverrides(t *testing.T) {
	path := writeConfig(t, `
log_level = "debug"

[mint]
base_url = "http://from-file:8085"

[seed]
lock_ttl = "90s"

[redis]
enabled = true
addr = "redis:6379"
`)
	t.Setenv("MINT_URL", "http://from-env:3338")
	t.Setenv("SEEDCOND_REDIS_POOL_SIZE", "9")
	t.Setenv("SEEDCOND_NOTIFY_EVENTS", "seed_failed, ,seed_complete")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "debug", cfg.LogLevel)
	require.Equal(t, "http://from-env:3338", cfg.Mint.BaseURL)
	require.Equal(t, 90*time.Second, cfg.Seed.LockTTL.Duration)
	require.True(t, cfg.Redis.Enabled)
	require.Equal(t, "redis:6379", cfg.Redis.Addr)
	require.Equal(t, 9, cfg.Redis.PoolSize)
	require.Equal(t, []string{"seed_failed", "seed_complete"}, cfg.Notify.Events)
	require.NoError(t, cfg.Validate())
}

func TestMintURLWinsOverPrefixedVariable(t *testing.T) {
	t.Setenv("SEEDCOND_MINT_BASE_URL", "http://prefixed:1")
	t.Setenv("MINT_URL", "http://plain:2")

	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, "http://plain:2", cfg.Mint.BaseURL)
}

func TestLoadRejectsMalformedFile(t *testing.T) {
	path := writeConfig(t, "log_level = [")
	_, err := Load(path)
	require.Error(t, err)
}

func TestValidateCollectsEveryProblem(t *testing.T) {
	cfg := Defaults()
	cfg.LogLevel = "loud"
	cfg.Mint.BaseURL = "mintd"
	cfg.Oracle.EncryptedKeyPath = "/keys/oracle.json"
	cfg.Redis.Enabled = true
	cfg.Redis.PoolSize = 0
	cfg.Supabase.Enabled = true
	cfg.Supabase.PoolMinConns = 10
	cfg.S3.Enabled = true
	cfg.S3.Bucket = ""

	err := cfg.Validate()
	require.Error(t, err)
	for _, want := range []string{
		"log_level",
		"mint: base_url",
		"oracle: key_password",
		"redis: pool_size",
		"supabase: pool_min_conns",
		"s3: bucket",
	} {
		require.Contains(t, err.Error(), want)
	}
}

func TestDisabledIntegrationsAreNotValidated(t *testing.T) {
	cfg := Defaults()
	cfg.Redis.Addr = ""
	cfg.Supabase.Host = ""
	cfg.S3.Bucket = ""
	require.NoError(t, cfg.Validate())
}

func TestRedactedConfig(t *testing.T) {
	cfg := Defaults()
	cfg.Oracle.PrivateKey = "deadbeef"
	cfg.Supabase.Password = "pw"
	cfg.S3.SecretKey = "secret"
	cfg.Notify.DiscordWebhookURL = "https://discord.example/hook"

	out := RedactedConfig(&cfg)
	require.Equal(t, "***", out.Oracle.PrivateKey)
	require.Equal(t, "***", out.Supabase.Password)
	require.Equal(t, "***", out.S3.SecretKey)
	require.Equal(t, "***", out.Notify.DiscordWebhookURL)
	require.Empty(t, out.Oracle.KeyPassword)
	require.Equal(t, "deadbeef", cfg.Oracle.PrivateKey)

	out.Notify.Events[0] = "changed"
	require.Equal(t, "seed_complete", cfg.Notify.Events[0])
}
