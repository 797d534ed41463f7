// Package cmd defines and implements the CLI commands for the
// harvester executable.
package cmd

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/waja/dagsorden-harvester/internal/browser"
	"github.com/waja/dagsorden-harvester/internal/config"
	"github.com/waja/dagsorden-harvester/internal/extract"
	"github.com/waja/dagsorden-harvester/internal/ingest"
	"github.com/waja/dagsorden-harvester/internal/listing"
	"github.com/waja/dagsorden-harvester/internal/logging"
	"github.com/waja/dagsorden-harvester/internal/meeting"
)

var (
	cfgFile     string
	flagBaseURL string
	flagOut     string
	flagRPS     float64
	flagNoAudio bool
	flagHeadful bool
)

// Execute runs the root command.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "harvester",
		Short: "Harvests municipal meeting records from the dagsordener portal",
		Long: `harvester turns the portal's dynamic meeting listings into durable
per-meeting directories: the meeting PDF, one document per agenda item,
attachments, optional audio, and a meta.json record. Re-running any
command never downloads an artifact that is already on disk.`,
		SilenceUsage: true,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "path to config file")
	pf.StringVar(&flagBaseURL, "base-url", "", "portal root URL (overrides config)")
	pf.StringVar(&flagOut, "out", "", "output root for meeting directories (overrides config)")
	pf.Float64Var(&flagRPS, "rps", 0, "max artifact requests per second (overrides config)")
	pf.BoolVar(&flagNoAudio, "no-audio", false, "do not download audio MP3s")
	pf.BoolVar(&flagHeadful, "headful", false, "show the browser window")

	root.AddCommand(
		newIngestCmd(),
		newIncrementalCmd(),
		newBackfillCmd(),
		newRefreshCmd(),
		newYearsCmd(),
		newShowCmd(),
	)
	return root
}

// runtime bundles the pieces every subcommand wires up: configuration,
// logger, one browser session, and the on-disk store.
type runtime struct {
	cfg     config.Config
	logger  *zap.Logger
	session *browser.Session
	store   *meeting.Store
	base    *url.URL
}

func newRuntime(cmd *cobra.Command) (*runtime, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	if cmd.Flags().Changed("base-url") {
		cfg.BaseURL = flagBaseURL
	}
	if cmd.Flags().Changed("out") {
		cfg.OutRoot = flagOut
	}
	if cmd.Flags().Changed("rps") {
		cfg.RPS = flagRPS
	}
	if flagNoAudio {
		cfg.WithAudio = false
	}
	if flagHeadful {
		cfg.Headful = true
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger, err := logging.New(cfg.Logging.Development)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	store, err := meeting.NewStore(cfg.OutRoot)
	if err != nil {
		return nil, err
	}
	session := browser.New(browser.Config{
		Headful:    cfg.Headful,
		UserAgent:  cfg.UserAgent,
		NavTimeout: cfg.NavTimeout(),
	})

	return &runtime{
		cfg:     cfg,
		logger:  logger,
		session: session,
		store:   store,
		base:    base,
	}, nil
}

// Close releases the browser and flushes the logger.
func (r *runtime) Close() {
	r.session.Close()
	_ = r.logger.Sync()
}

func (r *runtime) orchestrator(force bool) (*ingest.Orchestrator, error) {
	extractor, err := extract.NewExtractor(r.session, r.cfg.BaseURL, r.logger)
	if err != nil {
		return nil, err
	}
	return ingest.New(ingest.Config{
		BaseURL:   r.base,
		WithAudio: r.cfg.WithAudio,
		RPS:       r.cfg.RPS,
		UserAgent: r.cfg.UserAgent,
		Force:     force,
	}, extractor, r.store, r.logger), nil
}

func (r *runtime) discoverer() (*listing.Discoverer, error) {
	return listing.NewDiscoverer(r.session, r.cfg.BaseURL, r.logger)
}

// signalContext cancels on SIGINT/SIGTERM so an interrupted run leaves
// at worst one meeting directory without its meta.json, which the next
// run treats as not yet ingested.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}
