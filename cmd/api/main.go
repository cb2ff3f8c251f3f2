package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	httptransport "github.com/spec-kit/dealership/internal/api/http"
	"github.com/spec-kit/dealership/internal/api/http/handlers"
	"github.com/spec-kit/dealership/internal/auth"
	"github.com/spec-kit/dealership/internal/config"
	"github.com/spec-kit/dealership/internal/events"
	"github.com/spec-kit/dealership/internal/observability"
	"github.com/spec-kit/dealership/internal/persistence"
	"github.com/spec-kit/dealership/internal/repository"
	"github.com/spec-kit/dealership/internal/service"
	"github.com/spec-kit/dealership/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.App.Name, cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if pg.Enabled() && cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), persistence.DefaultMigrationsDir, logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(ctx, cfg.Redis, logger)
	defer redis.Close()

	var (
		identityRepo repository.IdentityRepository
		vehicleRepo  repository.VehicleRepository
	)
	if pg.Enabled() {
		identityRepo = repository.NewIdentityRepository(pg.PoolHandle())
		vehicleRepo = repository.NewVehicleRepository(pg.PoolHandle())
	} else {
		identityRepo = repository.NewMemoryIdentityRepository()
		vehicleRepo = repository.NewMemoryVehicleRepository()
	}

	var throttle service.LoginThrottle
	if redis.Enabled() {
		throttle = service.NewRedisLoginThrottle(redis.Client, cfg.Auth.ThrottleMaxFailures, cfg.Auth.ThrottleWindow())
	}

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher(worker.LogHandlerFailure(logger))
	worker.StartNotificationWorker(service.NewNotificationService(dispatcher, logger, cfg.Notification))

	hasher := auth.NewPasswordHasher(cfg.Auth.BcryptCost)
	codec, err := auth.NewTokenCodec(cfg.Auth.SessionSecret, config.SessionTTL, auth.WithLogger(logger))
	if err != nil {
		logger.Fatal("failed to init token codec", zap.Error(err))
	}
	cookies := auth.NewCookieBinding(codec.TTL(), cfg.Auth.CookieSecure)
	guard := auth.NewGuard(codec, cookies, auth.GuardConfig{
		Policy:    auth.DefaultPolicy(),
		LoginPath: cfg.Auth.LoginPath,
		HomePath:  cfg.Auth.HomePath,
		Logger:    logger,
		Recorder:  metrics,
	})

	authService, err := service.NewAuthService(service.AuthDependencies{
		Identities:    identityRepo,
		Hasher:        hasher,
		Tokens:        codec,
		Throttle:      throttle,
		Dispatcher:    dispatcher,
		Recorder:      metrics,
		Logger:        logger,
		LookupTimeout: cfg.Auth.LookupTimeout(),
	})
	if err != nil {
		logger.Fatal("failed to init auth service", zap.Error(err))
	}
	staffService := service.NewStaffService(service.StaffDependencies{
		Identities: identityRepo,
		Hasher:     hasher,
		Dispatcher: dispatcher,
		Logger:     logger,
	})
	vehicleService := service.NewVehicleService(vehicleRepo)

	if cfg.Auth.BootstrapEmail != "" {
		if _, err := staffService.EnsureSuperStaff(ctx, cfg.Auth.BootstrapEmail, cfg.Auth.BootstrapPassword); err != nil {
			logger.Fatal("failed to bootstrap super staff", zap.Error(err))
		}
	}

	limiter := httptransport.NewIPRateLimiter(cfg.Auth.LoginRatePerMinute, logger)
	defer limiter.Stop()

	app := httptransport.NewApp(cfg.App.Name, logger, metrics, cfg.App.RequestTimeout())
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:      handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Pages:       handlers.NewPagesHandler(cfg.Auth.HomePath),
		Auth:        handlers.NewAuthHandler(authService, cookies, cfg.Auth.HomePath),
		Account:     handlers.NewAccountHandler(authService, staffService),
		Vehicles:    handlers.NewVehiclesHandler(vehicleService),
		Staff:       handlers.NewStaffHandler(staffService),
		Guard:       guard,
		AuthLimiter: limiter,
		Metrics:     metrics,
	})

	go func() {
		logger.Info("listening", zap.String("addr", cfg.App.Addr()))
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
