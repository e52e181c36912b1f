package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/myinsta/portfolio-backend/config"
	httpapi "github.com/myinsta/portfolio-backend/internal/api/http"
	"github.com/myinsta/portfolio-backend/internal/bootstrap"
	"github.com/myinsta/portfolio-backend/internal/realtime"
)

const serviceName = "portfolio-api"

func main() {
	cfg, err := config.Load()
	if err != nil {
		bootLog := bootstrap.NewLogger("info", "")
		bootLog.Fatal().Err(err).Msg("load config")
	}

	log := bootstrap.NewLogger(cfg.App.LogLevel, cfg.App.Environment)
	bootstrap.SetGinMode(cfg.App.Environment)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	d, err := bootstrap.OpenDB(ctx, bootstrap.DBOptions{Config: cfg.Database})
	if err != nil {
		log.Fatal().Err(err).Msg("connect to database")
	}
	defer d.Close()

	var (
		redisClient *redis.Client
		broker      realtime.Broker
	)
	redisClient, err = bootstrap.OpenRedis(ctx, cfg.Redis.URL)
	if err != nil {
		log.Warn().Err(err).Msg("redis unavailable; comment feed limited to this instance")
		broker = realtime.NewMemoryBroker()
	} else {
		defer redisClient.Close()
		broker = realtime.NewRedisBroker(redisClient)
	}

	if cfg.Realtime.Source == config.RealtimeSourcePostgres {
		relay := realtime.NewPGRelay(d.Pool, broker, log)
		go func() {
			if err := relay.Run(ctx); err != nil {
				log.Error().Err(err).Msg("postgres relay stopped")
			}
		}()
	}

	authenticator, _, err := bootstrap.NewAuthenticator(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("init authenticator")
	}
	if cfg.Auth.Provider == config.AuthProviderHeader {
		log.Warn().Msg("AUTH_PROVIDER=header trusts X-User-Id; development only")
	}

	uploader, err := bootstrap.NewUploader(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("init uploader")
	}

	router := bootstrap.BuildRouter(bootstrap.RouterDeps{
		ServiceName:   serviceName,
		Version:       cfg.App.Version,
		Log:           log,
		CORSOrigins:   cfg.Server.CORSAllowedOrigins,
		Authenticator: authenticator,
		Services:      bootstrap.NewServices(d.SQL, broker, uploader, cfg),
		KeepAlive:     cfg.Realtime.KeepAliveInterval,
		DBPing:        d.Pool,
		RedisPing:     httpapi.RedisPinger(redisClient),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		// request contexts end with the process so open SSE streams return
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	go func() {
		log.Info().Str("port", cfg.Server.Port).Str("env", cfg.App.Environment).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown")
	}
	log.Info().Msg("server stopped")
}
