package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/textlens/textlens/internal/config"
	"github.com/textlens/textlens/internal/indexer"
	"github.com/textlens/textlens/internal/logger"
	"github.com/textlens/textlens/internal/ocr"
	"github.com/textlens/textlens/internal/overlay"
	"github.com/textlens/textlens/internal/pipeline"
	"github.com/textlens/textlens/internal/sentiment"
)

// BuildInfo carries the version details stamped into the binary by the
// build.
type BuildInfo struct {
	Version   string
	BuildTime string
	GitCommit string
}

var (
	settingsPath string
	debug        bool
)

// app holds the collaborators assembled by the root command and shared
// by every subcommand. The indexer stays nil when its credentials are
// not configured.
var app struct {
	cfg      *config.Config
	log      *logger.Logger
	renderer *overlay.Renderer
	vision   *ocr.Client
	language *sentiment.Client
	indexer  *indexer.Client
}

var rootCmd = &cobra.Command{
	Use:   "textlens",
	Short: "Read text in images, annotate it, and judge its sentiment",
	Long: `TextLens sends images to a vision service for text recognition, draws
the recognized lines back onto the image, and classifies the combined
text's sentiment with a language service. It runs either as a one-shot
command or as an HTTP server with a browser frontend.

Credentials come from the environment (or a .env file):

  VISION_ENDPOINT, VISION_KEY        text recognition service
  LANGUAGE_ENDPOINT, LANGUAGE_KEY    sentiment service
  INDEXER_ENDPOINT, INDEXER_KEY      video indexing service (optional)

Tuning lives in an optional YAML settings file passed via --settings.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initApp()
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if app.log != nil {
			app.log.Close()
		}
	},
}

// initApp is the composition root: it loads configuration and builds the
// service clients every subcommand draws from.
func initApp() error {
	// A .env file is a development convenience; absence is fine.
	_ = godotenv.Load()

	cfg, err := config.Load(settingsPath)
	if err != nil {
		return err
	}
	if debug {
		cfg.Settings.Server.Debug = true
	}

	log, err := logger.New(cfg.Settings.Server.LogDir, cfg.Settings.Server.Debug)
	if err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}

	renderer, err := overlay.New(cfg.Settings.Overlay)
	if err != nil {
		return fmt.Errorf("failed to build renderer: %w", err)
	}

	language := sentiment.NewClient(cfg.LanguageEndpoint, cfg.LanguageKey, cfg.Settings.Language.Timeout())
	language.Language = cfg.Settings.Language.Hint

	app.cfg = cfg
	app.log = log
	app.renderer = renderer
	app.vision = ocr.NewClient(cfg.VisionEndpoint, cfg.VisionKey, cfg.Settings.Vision.Timeout())
	app.language = language
	if cfg.HasIndexer() {
		app.indexer = indexer.NewClient(cfg.IndexerEndpoint, cfg.IndexerKey, cfg.Settings.Indexer.Timeout())
	}
	return nil
}

// newPipeline assembles the analysis pipeline, optionally wired to an
// event sink.
func newPipeline(events pipeline.EventSink) (*pipeline.Pipeline, error) {
	return pipeline.New(pipeline.Config{
		Recognizer: app.vision,
		Analyzer:   app.language,
		Renderer:   app.renderer,
		Log:        app.log,
		Events:     events,
	})
}

// Execute runs the CLI. The context ends on SIGINT or SIGTERM so long
// commands, the server included, can shut down cleanly.
func Execute(info BuildInfo) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd.Version = info.Version
	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"textlens {{.Version}}\n  Build time: %s\n  Git commit: %s\n",
		info.BuildTime, info.GitCommit,
	))

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&settingsPath, "settings", "", "Path to a YAML settings file")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")
}
