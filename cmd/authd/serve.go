package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	goToken "github.com/MrEthical07/goToken"
	"github.com/MrEthical07/goToken/httpapi"
	"github.com/MrEthical07/goToken/principal"
	promexport "github.com/MrEthical07/goToken/metrics/export/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newServeCmd(flags *rootFlags) *cobra.Command {
	var migrate bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the token HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			rt, err := loadRuntime(flags.configPath)
			if err != nil {
				return err
			}
			defer rt.Close()
			return serve(ctx, rt, migrate)
		},
	}
	cmd.Flags().BoolVar(&migrate, "migrate", false, "apply schema migrations before serving")
	return cmd
}

func serve(ctx context.Context, rt *runtime, migrate bool) error {
	log := rt.log

	db, err := rt.openDB(ctx)
	if err != nil {
		return err
	}
	if migrate {
		if err := principal.Migrate(ctx, db); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		log.Info("migrations applied")
	}
	hasher, err := rt.hasher()
	if err != nil {
		return err
	}

	builder := goToken.New().
		WithConfig(rt.cfg.EngineConfig()).
		WithPrincipalStore(principal.NewPostgresStore(db, hasher)).
		WithLogger(log)
	if rt.cfg.Revocation.Backend == string(goToken.RevocationRedis) {
		client, err := rt.openRedis(ctx)
		if err != nil {
			return err
		}
		builder = builder.WithRedis(client)
	}
	if rt.cfg.Audit.Enabled {
		builder = builder.WithAuditSink(goToken.NewZapSink(log.Named("audit")))
	}

	engine, err := builder.Build()
	if err != nil {
		return fmt.Errorf("build engine: %w", err)
	}
	defer func() {
		if err := engine.Close(); err != nil {
			log.Warn("engine close", zap.Error(err))
		}
	}()

	reg, err := promexport.NewRegistry(engine)
	if err != nil {
		return fmt.Errorf("metrics registry: %w", err)
	}

	handler := httpapi.NewHandler(engine, httpapi.Options{
		Logger:  log,
		Metrics: promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}),
	})

	sc := rt.cfg.Server
	srvCfg := httpapi.ServerConfig{
		Addr:            sc.HTTPAddr,
		ReadTimeout:     sc.ReadTimeout,
		WriteTimeout:    sc.WriteTimeout,
		IdleTimeout:     sc.IdleTimeout,
		GracefulTimeout: sc.GracefulTimeout,
	}
	if err := httpapi.Run(ctx, srvCfg, httpapi.NewServer(srvCfg, handler), log); err != nil {
		return fmt.Errorf("http server: %w", err)
	}
	log.Info("authd stopped")
	return nil
}
