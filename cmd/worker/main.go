package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/myinsta/portfolio-backend/config"
	"github.com/myinsta/portfolio-backend/internal/auth"
	authrepo "github.com/myinsta/portfolio-backend/internal/auth/repository"
	"github.com/myinsta/portfolio-backend/internal/bootstrap"
	"github.com/myinsta/portfolio-backend/internal/jobs"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		bootLog := bootstrap.NewLogger("info", "")
		bootLog.Fatal().Err(err).Msg("load config")
	}
	log := bootstrap.NewLogger(cfg.App.LogLevel, cfg.App.Environment).With().Str("service", "portfolio-worker").Logger()

	if cfg.Auth.Provider != config.AuthProviderFirebase {
		log.Fatal().Str("provider", cfg.Auth.Provider).Msg("profile sync needs AUTH_PROVIDER=firebase")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	d, err := bootstrap.OpenDB(ctx, bootstrap.DBOptions{Config: cfg.Database})
	if err != nil {
		log.Fatal().Err(err).Msg("connect to database")
	}
	defer d.Close()

	fb, err := auth.InitializeFirebase(ctx, &cfg.Firebase)
	if err != nil {
		log.Fatal().Err(err).Msg("init firebase")
	}

	profileSync := jobs.NewProfileSync(authrepo.NewProfileRepository(d.SQL), auth.NewFirebaseDirectory(fb))
	sched := jobs.NewScheduler(ctx, log)

	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "once":
			sched.RunNow(profileSync)
			return
		default:
			log.Fatal().Str("command", os.Args[1]).Msg("usage: worker [once]")
		}
	}

	if err := sched.Add(cfg.Worker.ProfileSyncSchedule, profileSync); err != nil {
		log.Fatal().Err(err).Msg("schedule profile sync")
	}
	sched.Start()
	log.Info().Msg("worker started")

	<-ctx.Done()
	log.Info().Msg("stopping worker")
	sched.Stop()
}
