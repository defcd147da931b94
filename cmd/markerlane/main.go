package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/markerlane/markerlane/internal/config"
	"github.com/markerlane/markerlane/internal/logging"
	intOtel "github.com/markerlane/markerlane/internal/otel"
	"github.com/markerlane/markerlane/internal/storage"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	sdklog "go.opentelemetry.io/otel/sdk/log"
)

const AppName = "markerlane"

// app carries the services shared by every subcommand.
type app struct {
	configDir string
	logStdout bool

	sessionStart time.Time
	logFile      *os.File

	SlogManager  *logging.SlogManager
	Logger       *slog.Logger
	OTelProvider *intOtel.Provider
}

func newApp() *app {
	return &app{
		sessionStart: time.Now(),
		SlogManager:  logging.NewSlogManager(),
		Logger:       slog.Default(),
	}
}

func main() {
	a := newApp()
	root := a.rootCmd()

	err := root.Execute()
	a.shutdown()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   AppName,
		Short: "Lay out and review video scene markers",
		Long: `markerlane groups a scene's markers into lanes by primary tag, packs each
lane into collision-free tracks and drives keyboard-style review navigation
over the result. Markers come from a local store that can be filled from
fixture files or synced from the media catalog.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
	}

	root.PersistentFlags().StringVar(&a.configDir, "config", ".", "directory containing "+config.ConfigFileName)
	root.PersistentFlags().BoolVar(&a.logStdout, "log-stdout", false, "log to stdout instead of the logs directory")

	root.AddCommand(a.layoutCmd())
	root.AddCommand(a.reviewCmd())
	root.AddCommand(a.importCmd())
	root.AddCommand(a.exportCmd())
	root.AddCommand(a.syncCmd())
	root.AddCommand(a.historyCmd())

	return root
}

// setup loads configuration and starts logging. A missing config file is not
// fatal; defaults apply.
func (a *app) setup() error {
	cfgErr := config.Load(a.configDir)

	var file *os.File
	if !a.logStdout {
		logsDir := viper.GetString("logsDir")
		if err := os.MkdirAll(logsDir, 0755); err != nil {
			return fmt.Errorf("failed to create logs directory: %w", err)
		}
		path := logging.LogFilePath(logsDir, AppName, a.sessionStart)
		f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		file = f
		a.logFile = f
	}

	otelCfg := config.GetOTelConfig()
	if otelCfg.Enabled {
		cfg := intOtel.Config{
			Enabled:      true,
			ServiceName:  otelCfg.ServiceName,
			BatchTimeout: otelCfg.BatchTimeout,
			Endpoint:     otelCfg.Endpoint,
			Insecure:     otelCfg.Insecure,
		}
		if file != nil {
			cfg.LogWriter = file
		}
		p, err := intOtel.New(cfg)
		if err != nil {
			return fmt.Errorf("failed to initialize OTel provider: %w", err)
		}
		a.OTelProvider = p
	}

	var extra []slog.Handler
	if config.GetBool("graylog.enabled") {
		h, err := a.SlogManager.GELFHandler(config.GetString("graylog.address"), viper.GetString("logLevel"))
		if err != nil {
			return err
		}
		extra = append(extra, h)
	}

	provider := a.otelLogProvider()
	// A nil *os.File must not reach Setup as a non-nil io.Writer.
	if file != nil {
		a.SlogManager.Setup(file, viper.GetString("logLevel"), provider, extra...)
	} else {
		a.SlogManager.Setup(nil, viper.GetString("logLevel"), provider, extra...)
	}
	a.Logger = a.SlogManager.Logger()

	if cfgErr != nil {
		a.Logger.Warn("Using default configuration", "dir", a.configDir, "error", cfgErr)
	}
	if a.OTelProvider != nil {
		a.Logger.Debug("Telemetry enabled", "instance", a.OTelProvider.InstanceID(), "endpoint", otelCfg.Endpoint)
	}
	return nil
}

func (a *app) otelLogProvider() *sdklog.LoggerProvider {
	if a.OTelProvider == nil {
		return nil
	}
	return a.OTelProvider.LoggerProvider()
}

func (a *app) shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := a.SlogManager.Flush(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "flush logs:", err)
	}
	if a.OTelProvider != nil {
		if err := a.OTelProvider.Shutdown(ctx); err != nil {
			fmt.Fprintln(os.Stderr, "otel shutdown:", err)
		}
	}
	_ = a.SlogManager.Close()
	if a.logFile != nil {
		_ = a.logFile.Close()
	}
}

// openStore creates and initializes the configured storage backend.
func (a *app) openStore() (storage.Backend, error) {
	cfg := config.GetStorageConfig()
	b, err := storage.NewBackend(cfg, a.Logger)
	if err != nil {
		return nil, err
	}
	if err := b.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize %s storage: %w", cfg.Type, err)
	}
	a.Logger.Debug("Storage backend initialized", "type", cfg.Type)
	if snap, ok := b.(interface{ GetExportedFilePath() string }); ok && snap.GetExportedFilePath() != "" {
		a.Logger.Info("Loaded snapshot", "path", snap.GetExportedFilePath())
	}
	return b, nil
}
