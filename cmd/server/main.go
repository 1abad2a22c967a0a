// cmd/server/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Luckmuc/TicTacToe/internal/bot"
	"github.com/Luckmuc/TicTacToe/internal/cache"
	"github.com/Luckmuc/TicTacToe/internal/config"
	"github.com/Luckmuc/TicTacToe/internal/database"
	"github.com/Luckmuc/TicTacToe/internal/game"
	"github.com/Luckmuc/TicTacToe/internal/handlers"
	"github.com/Luckmuc/TicTacToe/internal/hub"
	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	flagConfig   string
	flagAddr     string
	flagLogLevel string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "tictactoe-server",
	Short: "Tic-tac-toe and parkour match server",
	Long: `Serves the websocket game endpoint at /ws together with /healthz and
/results/recent.

Settings are read from defaults, then the --config YAML file, then the
environment (a .env file in the working directory is loaded first), then flags.

Examples:
  tictactoe-server
  tictactoe-server --config server.yaml
  tictactoe-server --addr :8080 --log-level debug`,
	SilenceUsage: true,
	RunE:         runServer,
}

func init() {
	rootCmd.Flags().StringVar(&flagConfig, "config", "", "Path to a YAML config file")
	rootCmd.Flags().StringVar(&flagAddr, "addr", "", "Listen address, overrides config (host:port)")
	rootCmd.Flags().StringVar(&flagLogLevel, "log-level", "", "Log level, overrides config")
}

func runServer(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return err
	}
	if flagAddr != "" {
		cfg.Addr = flagAddr
	}
	if flagLogLevel != "" {
		cfg.Log.Level = flagLogLevel
	}

	logger, err := newLogger(cfg.Log)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	selector, err := bot.New(cfg.Game.BotStrategy)
	if err != nil {
		return err
	}

	recorders, results, closeStores, err := openStores(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStores()

	h := hub.New(1024, logger)
	reg := game.NewRegistry(cfg.Registry(), h, logger)
	reg.Bot = selector
	if len(recorders) > 0 {
		reg.Recorder = recorders
	}

	loopCtx, stopLoop := context.WithCancel(context.Background())
	go h.Run(loopCtx)
	h.Post(reg.StartSweeper)

	gs := handlers.NewGameServer(h, reg, logger)
	gs.OutBuffer = cfg.WS.OutBuffer
	if results != nil {
		gs.Results = results
	}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           gs.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Infof("Running on %s", cfg.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		stopLoop()
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server exited: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = h.Call(shutdownCtx, reg.Close)
	stopLoop()
	<-h.Done()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func newLogger(cfg config.LogConfig) (*logrus.Logger, error) {
	logger := logrus.New()
	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}
	logger.SetLevel(level)
	if cfg.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return logger, nil
}

// openStores connects the optional Redis and Postgres result stores.
func openStores(ctx context.Context, cfg config.Config, logger *logrus.Logger) (game.Recorders, handlers.ResultReader, func(), error) {
	var (
		recorders game.Recorders
		reader    handlers.ResultReader
		closers   []func()
	)
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	if cfg.Redis.Addr != "" {
		rdb, err := cache.Connect(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			return nil, nil, closeAll, err
		}
		closers = append(closers, func() { _ = rdb.Close() })
		list := cache.NewResultList(rdb, cfg.Redis.List, cfg.Redis.Keep)
		recorders = append(recorders, list)
		reader = list
		logger.Infof("Recording results to Redis list %s at %s", cfg.Redis.List, cfg.Redis.Addr)
	}

	if cfg.Database.URL != "" {
		pool, err := database.Connect(ctx, cfg.Database.URL)
		if err != nil {
			closeAll()
			return nil, nil, func() {}, err
		}
		closers = append(closers, pool.Close)
		store := database.NewResultStore(pool)
		if err := store.EnsureSchema(ctx); err != nil {
			closeAll()
			return nil, nil, func() {}, err
		}
		recorders = append(recorders, store)
		logger.Info("Recording results to Postgres")
	}

	return recorders, reader, closeAll, nil
}
