package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/minigame-arena/internal/api"
	"github.com/vovakirdan/minigame-arena/internal/config"
	"github.com/vovakirdan/minigame-arena/internal/games"
	"github.com/vovakirdan/minigame-arena/internal/gateway"
	"github.com/vovakirdan/minigame-arena/internal/multiplayer"
	"github.com/vovakirdan/minigame-arena/internal/server"
	"github.com/vovakirdan/minigame-arena/internal/storage"
)

var (
	flagPort int
	flagNoDB bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the arena server",
	Long: `Start the HTTP server with the WebSocket endpoint at /ws.

Players connect, send join-queue and are paired in arrival order.
Each pair plays a tournament of mini-games; results are written to the
tournament database unless storage is disabled.

Endpoints:
  GET /health               - Liveness and live counters
  GET /api/games            - Game catalog
  GET /api/matches/recent   - Latest stored tournaments
  GET /api/matches/{id}     - One tournament with its games
  GET /ws                   - WebSocket upgrade

Examples:
  arena serve                     # Port from config (default 3000)
  arena serve --port 8080
  arena serve --no-db             # Keep nothing on disk
  PORT=9000 arena serve`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntVar(&flagPort, "port", 0, "Listen port (overrides config and PORT)")
	serveCmd.Flags().BoolVar(&flagNoDB, "no-db", false, "Disable the tournament database")
}

func runServe(cmd *cobra.Command, _ []string) error {
	loaded, err := loadConfig()
	if err != nil {
		return err
	}
	cfg := loaded.Config
	if flagPort != 0 {
		cfg.Server.Port = flagPort
	}

	logger := newLogger(cfg.Log.Level)
	logger.Info("configuration loaded", "source", loaded.Source)

	catalog, err := games.NewCatalog(cfg)
	if err != nil {
		return err
	}
	coordCfg, err := coordinatorConfig(cfg.Match)
	if err != nil {
		return err
	}

	sessions := multiplayer.NewSessionRegistry()
	coord := multiplayer.NewCoordinator(coordCfg, catalog, sessions,
		multiplayer.WithLogger(logger.WithPrefix("coordinator")))

	apiOpts := []api.Option{api.WithLogger(logger.WithPrefix("api"))}
	var store *storage.Store
	if cfg.Storage.Enabled && !flagNoDB {
		store, err = storage.Open(cfg.Storage.Path)
		if err != nil {
			// Continue without storage
			logger.Warn("could not open tournament database", "path", cfg.Storage.Path, "error", err)
			store = nil
		} else {
			coord.SetResultSaver(store)
			apiOpts = append(apiOpts, api.WithHistory(store))
		}
	}

	if err := coord.Start(); err != nil {
		if store != nil {
			store.Close()
		}
		return err
	}

	gw := gateway.New(coord, sessions, gateway.Config{AllowedOrigins: cfg.Server.AllowedOrigins},
		gateway.WithLogger(logger.WithPrefix("gateway")))
	handler := api.NewServer(coord, catalog, gw, apiOpts...).Routes()

	srvOpts := []server.Option{
		server.WithLogger(logger),
		server.OnShutdown("sessions", func() error {
			n := sessions.CloseAll()
			gw.Wait()
			logger.Info("closed player sessions", "count", n)
			return nil
		}),
		server.OnShutdown("coordinator", func() error {
			coord.Stop()
			return nil
		}),
	}
	if store != nil {
		srvOpts = append(srvOpts, server.OnShutdown("storage", store.Close))
	}

	srv := server.New(server.Config{
		Address:         cfg.Server.Addr(),
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	}, handler, srvOpts...)

	logger.Info("games registered", "types", catalog.IDs(), "per_match", coordCfg.GamesPerMatch)
	fmt.Printf("Minigame Arena listening on %s (WebSocket at /ws)\n", srv.Addr())
	fmt.Println("Press Ctrl+C to stop")

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return srv.ListenAndServe(ctx)
}

// coordinatorConfig maps the match section of the file config.
func coordinatorConfig(m config.MatchConfig) (multiplayer.CoordinatorConfig, error) {
	policy, err := multiplayer.ParseSuddenDeathPolicy(m.SuddenDeath)
	if err != nil {
		return multiplayer.CoordinatorConfig{}, err
	}
	return multiplayer.CoordinatorConfig{
		GamesPerMatch:       m.GamesPerMatch,
		CountdownFrom:       m.CountdownFrom,
		CountdownInterval:   m.CountdownInterval,
		TimerUpdateInterval: m.TimerUpdateInterval,
		BackupSlack:         m.BackupSlack,
		DisposeGrace:        m.DisposeGrace,
		SuddenDeath:         policy,
		MaxSuddenDeath:      m.MaxSuddenDeath,
		StatusInterval:      m.StatusInterval,
	}, nil
}
