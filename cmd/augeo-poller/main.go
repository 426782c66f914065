package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"augeo/internal/modkit"
	"augeo/internal/modkit/module"
	"augeo/internal/platform/config"
	"augeo/internal/platform/logger"
	phttp "augeo/internal/platform/net/http"
	"augeo/internal/platform/net/middleware"
	"augeo/internal/platform/store"

	"augeo/internal/adapters/provider/github"
	"augeo/internal/adapters/provider/twitter"

	metamod "augeo/internal/services/api/meta/module"
	pollerdom "augeo/internal/services/poller/domain"
	pollermod "augeo/internal/services/poller/module"
	progressmod "augeo/internal/services/progress/module"
)

func main() {
	root := config.New()
	l := logger.Get()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pgCfg := root.Prefix("SERVICE_PGSQL_")
	chCfg := root.Prefix("SERVICE_CLICKHOUSE_")

	st, err := store.Open(ctx, store.Config{
		AppName: "augeo-poller",
		PG: store.PGConfig{
			Enabled:     true,
			URL:         pgCfg.MustString("DBURL"),
			MaxConns:    int32(pgCfg.MayInt("MAX_CONNS", 4)),
			SlowQueryMs: pgCfg.MayInt("SLOW_MS", 500),
			LogSQL:      pgCfg.MayBool("LOG_SQL", false),
		},
		CH: store.CHConfig{
			Enabled:  chCfg.MayBool("ENABLED", false),
			Addr:     chCfg.MayString("ADDR", "localhost:9000"),
			Database: chCfg.MayString("DB", "augeo"),
			Username: chCfg.MayString("USER", "default"),
			Password: chCfg.MayString("PASS", ""),
			Role:     "poller",
		},
	}, store.WithLogger(*l))
	if err != nil {
		l.Panic().Err(err).Msg("store.Open failed")
	}
	defer func() {
		if err := st.Close(context.Background()); err != nil {
			l.Error().Err(err).Msg("failed to close store")
		}
	}()

	deps := modkit.Deps{
		Cfg: root,
		Log: *l,
		PG:  st.PG,
		CH:  st.CH,
	}

	providers := []pollerdom.ProviderPort{
		github.New(github.Options{BaseURL: root.MayString("GITHUB_API_URL", "")}),
		twitter.New(twitter.Options{BaseURL: root.MayString("TWITTER_API_URL", "")}),
	}

	prog := progressmod.New(deps)
	module.Register(prog.Name(), prog.Ports())
	progPorts := module.MustPortsOf[progressmod.Ports](prog)

	poll := pollermod.New(deps, providers, progPorts.Applier)
	module.Register(poll.Name(), poll.Ports())
	pollPorts := module.MustPortsOf[pollermod.Ports](poll)

	srv := phttp.NewServer(root.Prefix("POLLER_"))
	r := srv.Router()
	r.Use(
		middleware.RealIP(),
		middleware.RequestID(),
		middleware.RecoverJSON,
		middleware.AccessLogZerolog(middleware.AccessLogOptions{Slow: 2 * time.Second}),
		middleware.Timeout(30*time.Second),
		middleware.CORS(middleware.CORSOptions{AllowedOrigins: []string{"*"}}),
	)
	metamod.New(deps, pollPorts.States, pollPorts.Signals, progPorts.Reader, providers).MountRoutes(r)

	errCh := make(chan error, 2)
	go func() { errCh <- pollPorts.Worker.Run(ctx) }()
	go func() { errCh <- srv.Run(ctx) }()

	select {
	case <-ctx.Done():
		l.Info().Msg("shutdown signal received")
	case err := <-errCh:
		if err != nil && err != context.Canceled {
			l.Error().Err(err).Msg("runtime failure shutting down")
		}
	}

	shCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shCtx); err != nil {
		l.Error().Err(err).Msg("http shutdown failed")
	}
}
