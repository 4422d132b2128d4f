package main

import (
	"cmp"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"

	"github.com/desertthunder/listenx/internal/models"
	"github.com/desertthunder/listenx/internal/services"
	"github.com/desertthunder/listenx/internal/shared"
	"github.com/desertthunder/listenx/internal/tasks"
	"github.com/desertthunder/listenx/internal/ui"
	"github.com/desertthunder/listenx/internal/weapi"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config  *shared.Config
	agg     *tasks.Aggregator
	built   bool // agg was built from config and may be rebuilt
	source  weapi.Source
	logger  *log.Logger
	output  io.Writer
	status  io.Writer
	palette *ui.Palette
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	Aggregator *tasks.Aggregator // built from Config on first use when nil
	Source     weapi.Source      // netease session keys and cookies, crypto/rand when nil
	Logger     *log.Logger
	Output     io.Writer // command results
	Status     io.Writer // progress and summaries
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.Status == nil {
		opts.Status = os.Stderr
	}
	if opts.Source == nil {
		opts.Source = weapi.NewSource()
	}

	return &Runner{
		config:  opts.Config,
		agg:     opts.Aggregator,
		source:  opts.Source,
		logger:  opts.Logger,
		output:  opts.Output,
		status:  opts.Status,
		palette: ui.DefaultPalette(),
	}
}

// newAggregator wires both providers from cfg.
func newAggregator(cfg *shared.Config, logger *log.Logger, src weapi.Source) (*tasks.Aggregator, error) {
	def, ok := models.ParseProvider(cfg.Aggregate.DefaultProvider)
	if !ok {
		return nil, fmt.Errorf("%w: aggregate.default_provider %q", shared.ErrInvalidConfig, cfg.Aggregate.DefaultProvider)
	}

	opts := services.ServiceOpts{Logger: logger, Timeout: cfg.Fetch.TimeoutDuration(), Source: src}
	kugou := services.NewKugouService(cfg.Providers.Kugou, opts)
	netease, err := services.NewNeteaseService(cfg.Providers.Netease, opts)
	if err != nil {
		return nil, err
	}

	return tasks.NewAggregator(tasks.AggregatorOpts{
		Kugou:           kugou,
		Netease:         netease,
		DefaultProvider: def,
		Strict:          cfg.Aggregate.Strict,
		Pool:            tasks.PoolOptsFromConfig(cfg.Fetch),
		Logger:          logger,
	}), nil
}

// aggregator returns the injected aggregator or builds one from the current config.
func (r *Runner) aggregator() (*tasks.Aggregator, error) {
	if r.agg != nil {
		return r.agg, nil
	}
	agg, err := newAggregator(r.config, r.logger, r.source)
	if err != nil {
		return nil, err
	}
	r.agg, r.built = agg, true
	return agg, nil
}

// SetLogger replaces the logger. An aggregator built from config is rebuilt on next use.
func (r *Runner) SetLogger(l *log.Logger) {
	r.logger = l
	if r.built {
		r.agg, r.built = nil, false
	}
}

// provider returns the --provider flag or the configured default.
func (r *Runner) provider(cmd *cli.Command) string {
	return cmp.Or(cmd.String("provider"), r.config.Aggregate.DefaultProvider)
}

// loadConfig is the root Before hook: it applies --verbose and loads --config when the file exists.
func (r *Runner) loadConfig(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	if cmd.Bool("verbose") {
		shared.SetLogLevel(r.logger, log.DebugLevel)
	}

	path := cmd.String("config")
	if _, err := os.Stat(path); err != nil {
		if cmd.IsSet("config") {
			return ctx, fmt.Errorf("%w: %s", shared.ErrMissingConfig, path)
		}
		return ctx, nil
	}

	config, err := shared.LoadConfig(path)
	if err != nil {
		return ctx, err
	}
	r.config = config
	if r.built {
		r.agg, r.built = nil, false
	}
	r.logger.Debug("config loaded", "path", path)
	return ctx, nil
}

// progressPrinter prints aggregator progress to the status writer.
// The returned func closes the channel and waits for the printer to drain it.
func (r *Runner) progressPrinter() (chan tasks.ProgressUpdate, func()) {
	progressCh := make(chan tasks.ProgressUpdate, 50)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progressCh {
			switch update.Phase {
			case tasks.FetchListing, tasks.FetchPlaylist:
				fmt.Fprintf(r.status, "📥 %s\n", update.Message)
			case tasks.FetchTracks:
				if update.Step == 0 {
					fmt.Fprintf(r.status, "\n🔍 %s\n", update.Message)
				} else {
					fmt.Fprintf(r.status, "   %s\n", update.Message)
				}
			case tasks.ExportingPlaylist:
				fmt.Fprintf(r.status, "📝 %s\n", update.Message)
			}
		}
	}()
	return progressCh, func() {
		close(progressCh)
		<-done
	}
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	output, err := shared.MarshalJSON(data, pretty)
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	return nil
}

func (r *Runner) writeStatus(format string, args ...any) {
	fmt.Fprintf(r.status, format, args...)
}

func (r *Runner) writeStatusHeader(title string) {
	r.writeStatus("═══════════════════════════════════════\n")
	r.writeStatus("%v\n", r.palette.Title.UnsetMarginBottom().Render(title))
	r.writeStatus("═══════════════════════════════════════\n")
}
