package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Lllllllleong/researchpipeline/internal/app"
	"github.com/Lllllllleong/researchpipeline/internal/config"
	"github.com/Lllllllleong/researchpipeline/internal/logging"
)

type rootOptions struct {
	configFile string
	v          *viper.Viper
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{v: config.NewViper()}

	cmd := &cobra.Command{
		Use:           "research-pipeline",
		Short:         "Turn a project's documents into a due-diligence report",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.configFile, "config", "", "YAML config file")
	flags.String("log-level", "", "debug, info, warn or error")
	flags.String("log-format", "", "json or text")
	_ = opts.v.BindPFlag("logging.level", flags.Lookup("log-level"))
	_ = opts.v.BindPFlag("logging.format", flags.Lookup("log-format"))

	cmd.AddCommand(newRunCmd(opts), newServeCmd(opts), newStagesCmd())
	return cmd
}

// load reads the configuration and builds the logger.
func (o *rootOptions) load() (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load(o.v, o.configFile)
	if err != nil {
		if verrs, ok := config.AsValidationErrors(err); ok {
			for _, e := range verrs {
				fmt.Fprintln(os.Stderr, e.Error())
			}
		}
		return nil, nil, err
	}

	logger, err := logging.New(os.Stderr, cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		return nil, nil, err
	}
	slog.SetDefault(logger)
	return cfg, logger, nil
}

func (o *rootOptions) app(ctx context.Context) (*app.App, error) {
	cfg, logger, err := o.load()
	if err != nil {
		return nil, err
	}
	return app.New(ctx, cfg, logger)
}
