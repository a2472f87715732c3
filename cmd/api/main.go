// @title           Marketplace API
// @version         1.0
// @description     Authentication and password recovery for the admin, user and creator portals.
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in              header
// @name            Authorization
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/creatorhub/marketplace-api/internal/api"
	"github.com/creatorhub/marketplace-api/internal/api/middleware"
	"github.com/creatorhub/marketplace-api/internal/core/domain"
	"github.com/creatorhub/marketplace-api/internal/core/ports"
	"github.com/creatorhub/marketplace-api/internal/core/service"
	"github.com/creatorhub/marketplace-api/internal/infrastructure/db/mongo"
	"github.com/creatorhub/marketplace-api/internal/infrastructure/db/postgres"
	"github.com/creatorhub/marketplace-api/internal/infrastructure/db/redis"
	"github.com/creatorhub/marketplace-api/internal/infrastructure/http/handlers"
	"github.com/creatorhub/marketplace-api/internal/infrastructure/queue"
	"github.com/creatorhub/marketplace-api/internal/infrastructure/ratelimit"
	"github.com/creatorhub/marketplace-api/internal/infrastructure/token"
	"github.com/creatorhub/marketplace-api/internal/pkg/config"
	"github.com/creatorhub/marketplace-api/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		// The logger is not configured yet.
		bootLog := logger.Init(logger.Options{})
		bootLog.Fatal().Err(err).Msg("failed to load configuration")
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.Env == "development",
		Service: "marketplace-api",
	})

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server stopped with error")
	}
	log.Info().Msg("server stopped")
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	checks := map[string]handlers.Check{}

	// --- Credential store ---
	db, err := postgres.Connect(ctx, postgres.Config{DSN: cfg.Postgres.DSN, MaxOpenConns: cfg.Postgres.MaxOpenConns})
	if err != nil {
		return err
	}
	defer db.Close()
	checks["postgres"] = handlers.PostgresCheck(db)

	if cfg.Postgres.AutoMigrate {
		if err := postgres.Migrate(ctx, db); err != nil {
			return err
		}
		log.Info().Msg("database migrations applied")
	}
	accounts := postgres.NewAccountRepository(postgres.NewStore(db))

	// --- Audit trail ---
	var (
		recorder   ports.AuditRecorder
		dispatcher *queue.Dispatcher
	)
	workerCtx, stopWorkers := context.WithCancel(context.Background())
	defer stopWorkers()

	if cfg.Audit.Enabled {
		client, mdb, err := mongo.Connect(ctx, mongo.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database, AppName: "marketplace-api"})
		if err != nil {
			return err
		}
		defer func() { _ = client.Disconnect(context.Background()) }()
		checks["mongo"] = handlers.MongoCheck(mdb)

		auditRepo := mongo.NewAuditRepository(mdb)
		if err := auditRepo.EnsureIndexes(ctx, cfg.Audit.Retention); err != nil {
			return err
		}
		dispatcher = queue.NewDispatcher(cfg.Audit.Workers, auditRepo, log)
		dispatcher.Start(workerCtx)
		recorder = dispatcher
	}

	// --- Redis-backed state ---
	var rdb *goredis.Client
	if cfg.NeedsRedis() {
		rdb, err = redis.Connect(ctx, redis.Config{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		if err != nil {
			return err
		}
		defer rdb.Close()
		checks["redis"] = handlers.RedisCheck(rdb)
	}

	var limiter middleware.Limiter
	if cfg.RateLimit.Backend == config.RateLimitRedis {
		limiter = redis.NewRateLimiter(rdb, cfg.RateLimit.Points, cfg.RateLimit.Window)
	} else {
		mem := ratelimit.NewMemory(cfg.RateLimit.Points, cfg.RateLimit.Window)
		go mem.Run(workerCtx)
		limiter = mem
	}

	var ledger ports.ResetTokenLedger
	if cfg.Auth.SingleUseReset {
		ledger = redis.NewResetLedger(rdb)
	}

	// --- Core services ---
	tokens, err := token.NewService(token.Config{
		Issuer:        cfg.JWT.Issuer,
		Audience:      cfg.JWT.Audience,
		AccessTTL:     cfg.JWT.AccessTTL(),
		RefreshTTL:    cfg.JWT.RefreshTTL(),
		PrivateKeyPEM: cfg.JWT.PrivateKey(),
		PublicKeyPEM:  cfg.JWT.PublicKey(),
	})
	if err != nil {
		return err
	}

	policy := service.CredentialPolicy{
		Fallbacks: map[domain.Role]string{
			domain.RoleAdmin:   cfg.Auth.FallbackAdmin,
			domain.RoleUser:    cfg.Auth.FallbackUser,
			domain.RoleCreator: cfg.Auth.FallbackCreator,
		},
		HashPasswords: cfg.Auth.HashPasswords,
	}
	ips := service.NewIPHasher(cfg.AnalyticsHMACSecret)

	authSvc := service.NewAuthService(accounts, tokens, policy, recorder, ips, log)
	recoverySvc := service.NewRecoveryService(accounts, tokens, policy, ledger, recorder, ips, log)

	e := api.NewRouter(api.Deps{
		Auth:        authSvc,
		Recovery:    recoverySvc,
		Tokens:      tokens,
		Limiter:     limiter,
		Checks:      checks,
		CORSOrigins: cfg.CORSOrigins,
		TrustProxy:  cfg.TrustProxy,
		Swagger:     cfg.Swagger,
		Log:         log,
	})

	// --- Serve ---
	srvErr := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.Addr()).Str("env", cfg.Env).Msg("server listening")
		if err := e.Start(cfg.Addr()); err != nil && !errors.Is(err, http.ErrServerClosed) {
			srvErr <- err
		}
		close(srvErr)
	}()

	select {
	case err := <-srvErr:
		if err != nil {
			return err
		}
	case <-ctx.Done():
		log.Info().Msg("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}

	stopWorkers()
	if dispatcher != nil {
		dispatcher.Wait()
	}
	return nil
}
