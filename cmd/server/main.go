package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"conocida/internal/audit"
	"conocida/internal/auth"
	authhandler "conocida/internal/auth/handler"
	"conocida/internal/identity"
	identityhandler "conocida/internal/identity/handler"
	"conocida/internal/platform/config"
	"conocida/internal/platform/httpserver"
	"conocida/internal/platform/logger"
	"conocida/internal/platform/metrics"
	"conocida/internal/platform/postgres"
	platformredis "conocida/internal/platform/redis"
	"conocida/internal/profile"
	profilehandler "conocida/internal/profile/handler"
	"conocida/internal/push"
	pushhandler "conocida/internal/push/handler"
	httptransport "conocida/internal/transport/http"
	"conocida/internal/upload"
	uploadhandler "conocida/internal/upload/handler"
	"conocida/internal/version"
)

const shutdownGrace = 10 * time.Second

func main() {
	cfg := config.FromEnv()
	log := logger.New()

	if err := run(cfg, log); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	m := metrics.New()

	// Stores: postgres when configured, otherwise in-memory for local runs.
	var (
		profileStore profile.Store
		auditStore   audit.Store
		pushStore    push.TokenStore
	)
	if cfg.DatabaseURL != "" {
		pool, err := postgres.OpenPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer pool.Close()

		db, err := postgres.OpenSQL(ctx, cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer db.Close()

		profileStore = profile.NewPostgresStore(pool)
		auditStore = audit.NewPostgresStore(db)
		pushStore = push.NewPostgresTokenStore(db)
		log.Info("using postgres storage")
	} else {
		profileStore = profile.NewInMemoryStore()
		auditStore = audit.NewInMemoryStore()
		pushStore = push.NewMemoryTokenStore()
		log.Warn("DATABASE_URL not set, using in-memory storage")
	}

	// Step-up sessions: Redis when configured, process memory otherwise.
	var sessions auth.SessionStore = auth.NewMemorySessionStore()
	redisClient, err := platformredis.New(cfg.Redis)
	if err != nil {
		return err
	}
	if redisClient != nil {
		defer redisClient.Close()
		sessions = auth.NewRedisSessionStore(redisClient.Client)
		log.Info("using redis step-up sessions")
	}

	pinHash, err := resolvePINHash(cfg)
	if err != nil {
		return err
	}
	stepup := auth.NewStepUpService(pinHash, sessions, cfg.StepUpTTL)
	jwtSvc := auth.NewJWTService(cfg.JWTSigningKey, "conocida", "conocida-app")

	// Audit pipeline: services publish to a buffered inbox, the worker
	// persists and optionally mirrors to Kafka.
	publisher := audit.NewChannelPublisher(256, m)
	kafkaSink, err := audit.NewKafkaSink(cfg.Kafka)
	if err != nil {
		return err
	}
	var sink audit.Sink
	if kafkaSink != nil {
		defer kafkaSink.Close()
		sink = kafkaSink
		log.Info("mirroring audit events to kafka", "topic", cfg.Kafka.Topic)
	}
	worker := audit.NewWorker(auditStore, sink, publisher.Inbox(), log)

	objectStore := upload.NewS3Store(cfg.Storage)
	pushSvc := push.NewService(pushStore, dispatcherOrNil(cfg), log, push.WithMetrics(m))

	profileOpts := []profile.ServiceOption{
		profile.WithMetrics(m),
	}
	if cfg.Push.ServerKey != "" {
		profileOpts = append(profileOpts, profile.WithNotifier(push.NewProfileNotifier(pushSvc)))
	}

	uploadPlaceholder := &purgerAdapter{}
	profileOpts = append(profileOpts, profile.WithPhotoPurger(uploadPlaceholder))

	profileSvc := profile.NewService(profileStore, auth.NewRoleAuthorizer(), publisher, profileOpts...)
	uploadSvc := upload.NewService(objectStore, profileSvc, log)
	uploadPlaceholder.svc = uploadSvc

	router := httptransport.NewRouter(httptransport.Deps{
		Logger:   log,
		Metrics:  m,
		JWT:      jwtSvc,
		StepUp:   stepup,
		Profiles: profilehandler.New(profileSvc, log),
		StepUpH:  authhandler.New(stepup, log),
		Uploads:  uploadhandler.New(uploadSvc, log),
		Push:     pushhandler.New(pushSvc, publisher, log),
		Users:    identityhandler.New(directoryOrNil(cfg), publisher, log),
		VersionH: version.NewHandler(cfg.Version, log),
	})
	server := httpserver.New(cfg.Addr, router)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return worker.Run(gctx)
	})

	g.Go(func() error {
		log.Info("http server listening", "addr", cfg.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// purgerAdapter breaks the profile/upload construction cycle: the profile
// service purges photos through the upload service, which itself appends
// photo URLs through the profile service.
type purgerAdapter struct {
	svc *upload.Service
}

func (p *purgerAdapter) DeletePrefix(ctx context.Context, prefix string) error {
	if p.svc == nil {
		return nil
	}
	return p.svc.DeletePrefix(ctx, prefix)
}

func resolvePINHash(cfg config.Config) ([]byte, error) {
	if cfg.AdminPINHash != "" {
		return []byte(cfg.AdminPINHash), nil
	}
	return auth.HashPIN(cfg.AdminPIN)
}

func dispatcherOrNil(cfg config.Config) push.Dispatcher {
	if d := push.NewFCMDispatcher(cfg.Push); d != nil {
		return d
	}
	return nil
}

func directoryOrNil(cfg config.Config) identity.Directory {
	if d := identity.NewHTTPDirectory(cfg.Directory); d != nil {
		return d
	}
	return nil
}
