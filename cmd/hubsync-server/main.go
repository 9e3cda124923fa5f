package main

import (
	"context"
	"flag"
	"hubsync-backend/internal/browser"
	"hubsync-backend/internal/components/chrono"
	"hubsync-backend/internal/components/telemetry"
	"hubsync-backend/internal/config"
	"hubsync-backend/internal/server"
	"hubsync-backend/internal/session"
	"hubsync-backend/internal/snapshot"
	"hubsync-backend/lib/serviceutil"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
)

func main() {
	verbose := flag.Bool("v", false, "Enable verbose logging/instrumentation.")
	configPath := flag.String("config", "config.json5", "The config file to read.")
	dotenvPath := flag.String("env", ".env", "The dotenv file loaded into the environment when present.")
	flag.Parse()

	ctx := serviceutil.SignalContext()
	InitTelemetry(ctx, *verbose)

	cfg, err := config.LoadFrom(*configPath, *dotenvPath)
	if err != nil {
		serviceutil.Fatal("read config", err)
	}

	tel := telemetry.SlogAPI{}
	sess := session.New(
		browser.NewRodOpener(cfg.Browser(), tel),
		cfg.Hub(),
		tel,
		chrono.StandardImpl{},
	)
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		err := sess.Close(closeCtx)
		if err != nil {
			slog.Warn("close browser", "err", err)
		}
	}()

	if !*verbose {
		gin.SetMode(gin.ReleaseMode)
	}
	srv := server.New(sess, snapshot.NewStore(cfg.Server.SnapshotPath), cfg.Server.IndexPath, tel)

	if cfg.Server.SyncSchedule != "" {
		location, err := cfg.SyncLocation()
		if err != nil {
			serviceutil.Fatal("load sync timezone", err)
		}
		cronner := chrono.NewStandardCron(location, tel)
		defer cronner.Stop()

		timeout := time.Duration(cfg.Server.SyncTimeoutSeconds) * time.Second
		err = srv.Schedule(ctx, cronner, cfg.Server.SyncSchedule, timeout)
		if err != nil {
			serviceutil.Fatal("schedule sync", err)
		}
		slog.Info("background sync scheduled", "spec", cfg.Server.SyncSchedule, "timezone", location.String())
	}

	err = serviceutil.StartHttpServer(ctx, cfg.Server.Addr, srv.Handler())
	if err != nil {
		serviceutil.Fatal("serve http", err)
	}
}
