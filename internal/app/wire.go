package app

import (
	"context"
	"fmt"
	"log/slog"

	s3blob "github.com/alanyoungcy/seedconditions/internal/blob/s3"
	"github.com/alanyoungcy/seedconditions/internal/cache/redis"
	"github.com/alanyoungcy/seedconditions/internal/config"
	"github.com/alanyoungcy/seedconditions/internal/domain"
	"github.com/alanyoungcy/seedconditions/internal/notify"
	"github.com/alanyoungcy/seedconditions/internal/oracle"
	"github.com/alanyoungcy/seedconditions/internal/platform/mint"
	"github.com/alanyoungcy/seedconditions/internal/store/postgres"
)

// ReportArchiver uploads a finished seed report and returns its object key.
type ReportArchiver interface {
	Archive(ctx context.Context, report domain.SeedReport) (string, error)
}

// ReportNotifier announces a finished seed report.
type ReportNotifier interface {
	NotifyReport(ctx context.Context, report domain.SeedReport) error
}

// Dependencies bundles what a seeding run or history query needs. Optional
// integrations are nil when disabled.
type Dependencies struct {
	MintURL string
	Mint    domain.Mint
	Oracle  domain.AnnouncementBuilder

	LockManager domain.LockManager
	SeedStore   domain.SeedStore
	Archiver    ReportArchiver
	Notifier    ReportNotifier
}

// Wire constructs every dependency from cfg and returns them with a cleanup
// function that releases connections in reverse order.
func Wire(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Dependencies, func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}
	fail := func(err error) (*Dependencies, func(), error) {
		cleanup()
		return nil, nil, err
	}

	client := mint.NewClient(cfg.Mint.BaseURL)
	deps := &Dependencies{
		MintURL: client.BaseURL(),
		Mint:    client,
	}

	// --- Oracle ---
	identity, ephemeral, err := oracle.LoadIdentity(oracle.KeyConfig{
		RawPrivateKey:    cfg.Oracle.PrivateKey,
		EncryptedKeyPath: cfg.Oracle.EncryptedKeyPath,
		KeyPassword:      cfg.Oracle.KeyPassword,
	})
	if err != nil {
		return fail(fmt.Errorf("wire: oracle: %w", err))
	}
	if ephemeral {
		logger.Warn("no oracle key configured, using an ephemeral key for this run")
	}
	logger.Info("oracle identity loaded", slog.String("pubkey", fmt.Sprintf("%x", identity.PublicKey())))
	deps.Oracle = oracle.NewBuilder(identity)

	// --- Redis run lock ---
	if cfg.Redis.Enabled {
		redisClient, err := redis.New(ctx, redis.ClientConfig{
			Addr:       cfg.Redis.Addr,
			Password:   cfg.Redis.Password,
			DB:         cfg.Redis.DB,
			PoolSize:   cfg.Redis.PoolSize,
			MaxRetries: cfg.Redis.MaxRetries,
			TLSEnabled: cfg.Redis.TLSEnabled,
		})
		if err != nil {
			return fail(fmt.Errorf("wire: redis: %w", err))
		}
		closers = append(closers, func() { _ = redisClient.Close() })
		deps.LockManager = redis.NewLockManager(redisClient)
	}

	// --- PostgreSQL seed history ---
	if cfg.Supabase.Enabled {
		pgClient, err := postgres.New(ctx, postgres.ClientConfig{
			DSN:      cfg.Supabase.DSN,
			Host:     cfg.Supabase.Host,
			Port:     cfg.Supabase.Port,
			Database: cfg.Supabase.Database,
			User:     cfg.Supabase.User,
			Password: cfg.Supabase.Password,
			SSLMode:  cfg.Supabase.SSLMode,
			MaxConns: cfg.Supabase.PoolMaxConns,
			MinConns: cfg.Supabase.PoolMinConns,
		})
		if err != nil {
			return fail(fmt.Errorf("wire: postgres: %w", err))
		}
		closers = append(closers, pgClient.Close)

		if cfg.Supabase.RunMigrations {
			if err := pgClient.RunMigrations(ctx); err != nil {
				return fail(fmt.Errorf("wire: postgres migrations: %w", err))
			}
		}
		deps.SeedStore = postgres.NewSeedStore(pgClient.Pool())
	}

	// --- S3 report archive ---
	if cfg.S3.Enabled {
		s3Client, err := s3blob.New(ctx, s3blob.ClientConfig{
			Endpoint:       cfg.S3.Endpoint,
			Region:         cfg.S3.Region,
			Bucket:         cfg.S3.Bucket,
			AccessKey:      cfg.S3.AccessKey,
			SecretKey:      cfg.S3.SecretKey,
			UseSSL:         cfg.S3.UseSSL,
			ForcePathStyle: cfg.S3.ForcePathStyle,
		})
		if err != nil {
			return fail(fmt.Errorf("wire: s3: %w", err))
		}
		deps.Archiver = s3blob.NewReportArchiver(s3blob.NewWriter(s3Client), cfg.S3.Prefix)
	}

	// --- Notifications ---
	var senders []notify.Sender
	if cfg.Notify.TelegramToken != "" && cfg.Notify.TelegramChatID != "" {
		senders = append(senders, notify.NewTelegramSender(cfg.Notify.TelegramToken, cfg.Notify.TelegramChatID))
	}
	if cfg.Notify.DiscordWebhookURL != "" {
		senders = append(senders, notify.NewDiscordSender(cfg.Notify.DiscordWebhookURL))
	}
	if len(senders) > 0 {
		deps.Notifier = notify.NewNotifier(senders, cfg.Notify.Events, logger)
	}

	return deps, cleanup, nil
}
