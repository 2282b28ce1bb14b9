package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"parking-billing/internal/config"
	apphttp "parking-billing/internal/http"
	"parking-billing/internal/lock"
	"parking-billing/internal/receipts"
	"parking-billing/internal/repository"
	"parking-billing/internal/repository/memory"
	"parking-billing/internal/repository/sqlite"
	"parking-billing/internal/service"
	"parking-billing/internal/storage"
)

type repositories struct {
	users    repository.UserRepository
	zones    repository.ZoneRepository
	vehicles repository.VehicleRepository
	sessions repository.SessionRepository
	close    func() error
}

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("load config: %v", err)
	}
	if level, err := logrus.ParseLevel(cfg.Log.Level); err == nil {
		logger.SetLevel(level)
	} else {
		logger.Warnf("unknown log level %q, using info", cfg.Log.Level)
	}

	if strings.TrimSpace(cfg.Auth.JWTSecret) == "" {
		cfg.Auth.JWTSecret = uuid.NewString()
		logger.Warn("auth jwt secret not configured, tokens will not survive a restart")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repos, err := openRepositories(ctx, cfg)
	if err != nil {
		logger.Fatalf("open repositories: %v", err)
	}
	defer repos.close()

	locker, err := buildLocker(cfg, logger)
	if err != nil {
		logger.Fatalf("setup lock: %v", err)
	}

	userService := service.NewUserService(repos.users, cfg.Auth.JWTSecret, time.Duration(cfg.Auth.TokenTTLMinutes)*time.Minute)
	zoneService := service.NewZoneService(repos.zones)
	if err := zoneService.SeedDefaults(ctx); err != nil {
		logger.Fatalf("seed zones: %v", err)
	}
	if cfg.Auth.SeedDemoUser {
		demo, err := userService.EnsureUser(ctx, cfg.Auth.DemoEmail, cfg.Auth.DemoAPIKey, cfg.Auth.DemoPassword)
		if err != nil {
			logger.Fatalf("seed demo user: %v", err)
		}
		logger.Infof("demo user %s ready (id %d)", demo.Email, demo.ID)
	}

	var (
		storageSvc storage.Service
		archiver   receipts.Archiver
	)
	if cfg.Receipts.Bucket != "" {
		storageSvc, err = buildStorage(ctx, cfg, logger)
		if err != nil {
			logger.Fatalf("setup storage: %v", err)
		}
		archiver = receipts.NewArchiver(receipts.Config{
			Bucket:    cfg.Receipts.Bucket,
			KeyPrefix: cfg.Receipts.KeyPrefix,
			Workers:   cfg.Receipts.Workers,
			Logger:    logger,
		}, storageSvc)
	} else {
		logger.Info("receipt archive disabled (no bucket configured)")
	}

	sessionDeps := service.SessionDeps{
		Users:    repos.users,
		Zones:    repos.zones,
		Vehicles: repos.vehicles,
		Sessions: repos.sessions,
		Locker:   locker,
		Logger:   logger,
	}
	deps := apphttp.Deps{
		Users:    userService,
		Zones:    zoneService,
		Vehicles: service.NewVehicleService(repos.vehicles),
		Wallet:   service.NewWalletService(repos.users, locker, logger),
		Storage:  storageSvc,
		Bucket:   cfg.Receipts.Bucket,
		Logger:   logger,
	}
	if archiver != nil {
		sessionDeps.Receipts = archiver
		deps.Receipts = archiver
	}
	deps.Sessions = service.NewSessionService(sessionDeps)

	gin.SetMode(cfg.Server.Mode)
	router := gin.New()
	router.Use(gin.Recovery())
	apphttp.NewHandler(deps).RegisterRoutes(router)

	srv := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: router,
	}

	// the archiver outlives the HTTP server so late settlements still get flushed
	archiveCtx, stopArchive := context.WithCancel(context.Background())
	defer stopArchive()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Infof("listening on %s", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		err := srv.Shutdown(shutdownCtx)
		stopArchive()
		if err != nil {
			logger.Warnf("http shutdown: %v", err)
		}
		return nil
	})
	if archiver != nil {
		g.Go(func() error {
			return archiver.Run(archiveCtx)
		})
	}

	if err := g.Wait(); err != nil {
		logger.Errorf("server: %v", err)
	}
	logger.Info("bye")
}

func openRepositories(ctx context.Context, cfg config.Config) (*repositories, error) {
	if cfg.Database.Driver == "memory" {
		store := memory.NewStore()
		return &repositories{
			users:    store.Users,
			zones:    store.Zones,
			vehicles: store.Vehicles,
			sessions: store.Sessions,
			close:    func() error { return nil },
		}, nil
	}

	db, err := sqlite.Open(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	store, err := sqlite.NewStore(ctx, db)
	if err != nil {
		db.Close()
		return nil, err
	}
	return &repositories{
		users:    store.Users,
		zones:    store.Zones,
		vehicles: store.Vehicles,
		sessions: store.Sessions,
		close:    db.Close,
	}, nil
}

func buildLocker(cfg config.Config, logger *logrus.Logger) (lock.Locker, error) {
	if cfg.Lock.Backend != "redis" {
		return lock.NewLocal(), nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Redis.Addr,
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis %s: %w", cfg.Redis.Addr, err)
	}

	logger.Infof("using redis lock at %s", cfg.Redis.Addr)
	return lock.NewRedis(client, "parking:lock:", time.Duration(cfg.Lock.TTLSeconds)*time.Second, logger), nil
}

func buildStorage(ctx context.Context, cfg config.Config, logger *logrus.Logger) (storage.Service, error) {
	loadOpts := []func(*awscfg.LoadOptions) error{
		awscfg.WithRegion(cfg.Receipts.Region),
	}
	if cfg.AWS.Profile != "" {
		loadOpts = append(loadOpts, awscfg.WithSharedConfigProfile(cfg.AWS.Profile))
	}

	awsCfg, err := awscfg.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Receipts.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Receipts.Endpoint)
			o.UsePathStyle = true
		}
	})
	logger.Infof("archiving receipts to s3 bucket %s (region %s)", cfg.Receipts.Bucket, cfg.Receipts.Region)
	return storage.NewS3Service(client), nil
}
