package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"sitepalette/internal/config"
	"sitepalette/internal/db"
	"sitepalette/internal/palette"
	"sitepalette/internal/stats"
	"sitepalette/internal/store"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

const appSlug = "sitepalette"

const logFileName = "sitepalette.log"

var version = "dev"

var (
	dataDir    string
	configFile string
	logLevel   string
	logFormat  string
	debug      bool

	paths   config.Paths
	cfg     config.Config
	logSink io.Closer
)

var rootCmd = &cobra.Command{
	Use:               appSlug,
	Short:             "extract website color palettes from page screenshots",
	SilenceUsage:      true,
	PersistentPreRunE: preRunFn,
	PersistentPostRun: func(*cobra.Command, []string) {
		if logSink != nil {
			logSink.Close()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "",
		"directory holding the cache database, config and logs (default: user config dir)")
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "",
		"path to the YAML config file (default: <data-dir>/"+config.ConfigFileName+")")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "",
		"logging level; one of [trace, debug, info, warning, error, fatal]")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "",
		"log output format; one of [text, json]")
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "enable debug logging")

	rootCmd.AddCommand(
		newExtractCmd(),
		newWatchCmd(),
		newHistoryCmd(),
		newConfigCmd(),
		newVersionCmd(),
	)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

// preRunFn resolves settings in order: defaults, config file, .env,
// environment, flags.
func preRunFn(cmd *cobra.Command, _ []string) error {
	resolved, err := config.ResolvePaths(appSlug, dataDir)
	if err != nil {
		return err
	}
	paths = resolved

	if configFile == "" {
		configFile = paths.ConfigPath
	}

	loaded, err := config.Load(configFile)
	if err != nil {
		return err
	}

	if err := config.LoadDotEnv(".env", filepath.Join(paths.BaseDir, ".env")); err != nil {
		return err
	}

	loaded, err = loaded.ApplyEnv(os.LookupEnv)
	if err != nil {
		return err
	}

	if cmd.Flags().Changed("log-level") {
		loaded.LogLevel = logLevel
	}
	if cmd.Flags().Changed("log-format") {
		loaded.LogFormat = logFormat
	}
	if debug {
		loaded.LogLevel = "debug"
	}
	cfg = loaded

	return setupLogging(cfg)
}

func setupLogging(settings config.Config) error {
	level, err := log.ParseLevel(strings.TrimSpace(settings.LogLevel))
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", settings.LogLevel, err)
	}
	log.SetLevel(level)

	switch strings.ToLower(strings.TrimSpace(settings.LogFormat)) {
	case "", "text":
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	case "json":
		log.SetFormatter(&log.JSONFormatter{})
	default:
		return fmt.Errorf("invalid log format %q", settings.LogFormat)
	}

	// stderr keeps stdout parseable for json output
	var output io.Writer = os.Stderr
	if settings.LogFile {
		file, err := os.OpenFile(filepath.Join(paths.LogDir, logFileName), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		logSink = file
		output = io.MultiWriter(os.Stderr, file)
	}
	log.SetOutput(output)

	return nil
}

// services bundles what a command needs once the database is open.
type services struct {
	db      *sql.DB
	history *HistoryService
	stats   *StatsService
	themes  *ThemeService
}

func openServices(ctx context.Context, options palette.ExtractOptions) (*services, error) {
	sqliteDB, err := db.Bootstrap(ctx, paths.DBPath)
	if err != nil {
		return nil, err
	}

	repo := store.NewExtractionRepository(sqliteDB)
	extractor := palette.NewExtractor()

	log.WithField("db", paths.DBPath).Debug("cache database ready")

	return &services{
		db:      sqliteDB,
		history: NewHistoryService(repo),
		stats:   NewStatsService(stats.NewService(sqliteDB)),
		themes:  NewThemeService(extractor, repo, options, cfg.CacheEntries),
	}, nil
}

func (r *services) Close() error {
	if r == nil || r.db == nil {
		return nil
	}
	return r.db.Close()
}

var errExtractionsFailed = errors.New("one or more extractions failed")
