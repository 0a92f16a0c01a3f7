package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/alecthomas/kong"
	"github.com/lepinkainen/bibcat/internal/config"
	"github.com/lepinkainen/bibcat/internal/covers"
	"github.com/lepinkainen/bibcat/internal/enumerate"
	bibcaterrors "github.com/lepinkainen/bibcat/internal/errors"
	"github.com/lepinkainen/bibcat/internal/fetch"
	"github.com/lepinkainen/bibcat/internal/harvest"
	"github.com/lepinkainen/bibcat/internal/store"
	"github.com/lepinkainen/humanlog"
	"github.com/spf13/viper"
)

// CLI represents the complete command structure for the bibcat application
type CLI struct {
	// Global flags
	DBFile  string `help:"Path to SQLite database file" default:"./worldcat.db"`
	Verbose bool   `help:"Enable debug logging"`

	Harvest HarvestCmd `cmd:"" help:"Harvest bibliographic records from WorldCat into SQLite"`
}

// HarvestCmd represents the harvest command
type HarvestCmd struct {
	StartID        int64  `help:"First OCLC identifier to fetch" default:"1"`
	EndID          int64  `help:"Stop before this identifier (0 = unbounded)"`
	ExcludeSaved   bool   `help:"Skip identifiers already stored in the database" default:"true" negatable:""`
	ExcludeRanges  string `help:"JSON array of [start,end] identifier ranges to skip, e.g. '[[1,10]]'"`
	ExcludeFile    string `help:"YAML file listing [start,end] identifier ranges to skip"`
	Workers        int    `help:"Concurrent fetch pipelines (0 = use config)"`
	DownloadCovers bool   `help:"Download cover images next to the database"`
}

// Execute runs the Kong-based CLI
func Execute() {
	initLogging()
	initConfig()

	var cli CLI

	ctx := kong.Parse(&cli,
		kong.Name("bibcat"),
		kong.Description("Harvest WorldCat bibliographic records into a local SQLite database."),
		kong.UsageOnError(),
	)

	updateGlobalConfig(&cli)

	if err := ctx.Run(); err != nil {
		slog.Error("Command failed", "error", err)
		os.Exit(1)
	}
}

func initConfig() {
	viper.AutomaticEnv()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			slog.Error("Fatal error config file", "error", err)
			os.Exit(1)
		}
		// no config file is fine, defaults and flags cover everything
	}

	config.InitConfig()
}

func updateGlobalConfig(cli *CLI) {
	viper.Set("db.file", cli.DBFile)

	if cli.Verbose {
		initLoggingLevel(slog.LevelDebug)
	}

	// Re-resolve globals now that flags are applied
	config.InitConfig()
}

// Run executes one harvest run.
func (h *HarvestCmd) Run() error {
	ranges, err := enumerate.ParseRanges(h.ExcludeRanges)
	if err != nil {
		return err
	}
	if h.ExcludeFile != "" {
		fileRanges, err := enumerate.LoadRangesFile(h.ExcludeFile)
		if err != nil {
			return err
		}
		ranges = append(ranges, fileRanges...)
	}

	st, err := store.Open(config.DBFile)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	if err := st.EnsureSchema(); err != nil {
		return err
	}

	workers := h.Workers
	if workers <= 0 {
		workers = config.Workers
	}

	var coverDL harvest.CoverDownloader
	if h.DownloadCovers {
		coverDL = covers.New(config.CoverDir, 0)
	}

	enum := &enumerate.Enumerator{
		Start:        h.StartID,
		End:          h.EndID,
		SkipExisting: h.ExcludeSaved,
		Exclude:      ranges,
		Store:        st,
	}
	fetcher := fetch.New(config.BaseURL, config.UserAgent, config.RequestsPerSecond)
	runner := harvest.New(enum, fetcher, st, coverDL, workers)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	slog.Info("Starting harvest",
		"start_id", h.StartID, "end_id", h.EndID,
		"exclude_saved", h.ExcludeSaved, "workers", workers)

	stats, err := runner.Run(ctx)

	slog.Info("Harvest finished",
		"found", stats.Found, "not_found", stats.NotFound, "failed", stats.Failed)

	if err != nil {
		if bibcaterrors.IsHaltError(err) {
			return fmt.Errorf("run halted, update the lookup tables before resuming: %w", err)
		}
		return err
	}
	return nil
}

func initLogging() {
	initLoggingLevel(slog.LevelInfo)
}

func initLoggingLevel(level slog.Level) {
	handler := humanlog.NewHandler(os.Stdout, &humanlog.Options{
		Level: level,
	})
	slog.SetDefault(slog.New(handler))
}
