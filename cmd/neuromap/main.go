package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/acheong08/neuromap/internal/config"
	"github.com/acheong08/neuromap/internal/generate"
	"github.com/acheong08/neuromap/internal/logging"
)

// options shared by every subcommand
type options struct {
	configPath string
	endpoint   string
	verbose    bool
}

func main() {
	if err := newRoot().Execute(); err != nil {
		Bad.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRoot() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:           "neuromap",
		Short:         "Generate and explore AI learning roadmaps",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "Path to a TOML config file (default $NEUROMAP_CONFIG)")
	root.PersistentFlags().StringVar(&opts.endpoint, "endpoint", "", "Generation endpoint (overrides GENERATION_ENDPOINT)")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Log requests to stderr")

	root.AddCommand(
		generateCmd(opts),
		treeCmd(opts),
		renderCmd(opts),
		detailsCmd(opts),
	)
	return root
}

func (o *options) load() (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if o.configPath != "" {
		cfg, err = config.LoadFrom(o.configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if o.endpoint != "" {
		cfg.GenerationEndpoint = o.endpoint
	}
	return cfg, nil
}

func (o *options) logger() *zap.Logger {
	return logging.NewCLI(o.verbose)
}

func (o *options) client(cfg *config.Config) *generate.Client {
	return generate.NewClient(cfg.GenerationEndpoint,
		generate.WithModel(cfg.GenerationModel),
		generate.WithTemperature(cfg.RoadmapTemperature),
		generate.WithLogger(o.logger()),
	)
}
