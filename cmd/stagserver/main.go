// Package main runs the stag game server: it loads a world and its actions,
// then answers "name: command" lines over TCP.
//
// Usage:
//
//	stagserver [flags] [ENTITIES_FILE ACTIONS_FILE]
//
// The two positional arguments, when given, override the game files named in
// the configuration.
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/cory-johannsen/stag/internal/config"
	"github.com/cory-johannsen/stag/internal/frontend/line"
	"github.com/cory-johannsen/stag/internal/game/engine"
	"github.com/cory-johannsen/stag/internal/game/session"
	"github.com/cory-johannsen/stag/internal/health"
	"github.com/cory-johannsen/stag/internal/observability"
	"github.com/cory-johannsen/stag/internal/server"
	"github.com/cory-johannsen/stag/internal/storage/postgres"
)

var (
	flagConfig   = pflag.StringP("config", "c", "", "Path to a YAML configuration file.")
	flagPort     = pflag.IntP("port", "p", 0, "Listen on the given TCP port.")
	flagEntities = pflag.StringP("entities", "e", "", "Entities file (.dot, .gv, .yaml or .yml).")
	flagActions  = pflag.StringP("actions", "a", "", "Actions XML file.")
)

func main() {
	start := time.Now()
	pflag.Parse()

	cfg, err := loadConfig()
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Server, cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	ctx := context.Background()

	opts := []engine.Option{engine.WithLogger(logger)}
	if cfg.Game.DeathNarration != "" {
		opts = append(opts, engine.WithDeathNarration(cfg.Game.DeathNarration))
	}
	interp, err := engine.Load(ctx, cfg.Game.EntitiesFile, cfg.Game.ActionsFile, opts...)
	if err != nil {
		logger.Fatal("loading game", zap.Error(err))
	}
	logger.Info("game loaded",
		zap.String("entities", cfg.Game.EntitiesFile),
		zap.String("actions", cfg.Game.ActionsFile),
		zap.Duration("elapsed", time.Since(start)),
	)

	lifecycle := server.NewLifecycle(logger)
	var routerOpts []session.Option
	var monitor *health.Monitor
	if cfg.Health.Enabled {
		monitor = health.NewMonitor(cfg.Health, logger)
	}

	if cfg.Metrics.Enabled {
		exp, err := observability.NewPrometheusExporter()
		if err != nil {
			logger.Fatal("creating metrics exporter", zap.Error(err))
		}
		metrics, err := observability.NewMetrics(exp.Provider)
		if err != nil {
			logger.Fatal("creating metrics", zap.Error(err))
		}
		routerOpts = append(routerOpts, session.WithRecorder(metrics))

		mux := http.NewServeMux()
		mux.Handle("/metrics", exp.Handler)
		metricsSvc := server.HTTPService(&http.Server{
			Addr:              cfg.Metrics.Addr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		})
		lifecycle.Add("metrics", &server.FuncService{
			StartFn: metricsSvc.Start,
			StopFn: func() {
				metricsSvc.Stop()
				_ = exp.Shutdown(context.Background())
			},
		})
	}

	if cfg.Database.Enabled {
		dbStart := time.Now()
		pool, err := postgres.OpenJournal(ctx, cfg.Server.Name, cfg.Database)
		if err != nil {
			logger.Fatal("opening command journal", zap.Error(err))
		}
		logger.Info("database connected",
			zap.String("host", cfg.Database.Host),
			zap.Int("port", cfg.Database.Port),
			zap.String("database", cfg.Database.Name),
			zap.Duration("elapsed", time.Since(dbStart)),
		)
		routerOpts = append(routerOpts, session.WithJournal(pool.Journal()))
		if monitor != nil {
			monitor.Register("journal", pool.Check(postgres.DefaultCheckTimeout))
		}

		done := make(chan struct{})
		lifecycle.Add("postgres", &server.FuncService{
			StartFn: func() error {
				<-done
				return nil
			},
			StopFn: func() {
				close(done)
				pool.Close()
			},
		})
	}

	if monitor != nil {
		lifecycle.Add("health", monitor)
	}

	router := session.NewRouter(interp, logger, routerOpts...)
	acceptor := line.NewAcceptor(cfg.Listener, router, logger)
	lifecycle.Add("line", &server.FuncService{
		StartFn: acceptor.ListenAndServe,
		StopFn:  acceptor.Stop,
	})

	logger.Info("server initialized",
		zap.Duration("startup", time.Since(start)),
		zap.String("listen_addr", cfg.Listener.Addr()),
		zap.Bool("journal", cfg.Database.Enabled),
		zap.Bool("metrics", cfg.Metrics.Enabled),
		zap.Bool("health", cfg.Health.Enabled),
	)

	if err := lifecycle.Run(ctx); err != nil {
		logger.Fatal("server error", zap.Error(err))
	}
}

// loadConfig layers defaults, the optional config file, STAG_ environment
// variables, flags and positional game files, in increasing precedence.
func loadConfig() (config.Config, error) {
	v := config.NewViper()
	if *flagConfig != "" {
		v.SetConfigFile(*flagConfig)
		if err := v.ReadInConfig(); err != nil {
			return config.Config{}, fmt.Errorf("reading config file: %w", err)
		}
	}

	if *flagPort != 0 {
		v.Set("listener.port", *flagPort)
	}
	if *flagEntities != "" {
		v.Set("game.entities_file", *flagEntities)
	}
	if *flagActions != "" {
		v.Set("game.actions_file", *flagActions)
	}

	switch args := pflag.Args(); len(args) {
	case 0:
	case 2:
		v.Set("game.entities_file", args[0])
		v.Set("game.actions_file", args[1])
	default:
		fmt.Fprintf(os.Stderr, "usage: %s [flags] [ENTITIES_FILE ACTIONS_FILE]\n", os.Args[0])
		pflag.PrintDefaults()
		os.Exit(2)
	}

	return config.LoadFromViper(v)
}
