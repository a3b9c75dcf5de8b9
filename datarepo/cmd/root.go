// Package cmd contains the commands of the datarepo cli.
package cmd

import (
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/go-arrower/datarepo"
	"github.com/go-arrower/datarepo/alog"
	"github.com/go-arrower/datarepo/cmd"
)

// cli holds the state shared by all commands. It is set up before any command runs.
type cli struct {
	config datarepo.Config
	logger alog.Logger
}

func newRootCmd(app *cli) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "datarepo",
		Short: "datarepo keeps records with a unique id in memory, in the order they are added.",
		Long: `A small cli to try out the in-memory repository.
Configuration is read from the --config file and DATAREPO_* environment variables.`,
		Args:                  cobra.NoArgs,
		DisableFlagsInUseLine: true,
		SilenceUsage:          true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return app.load(cmd)
		},
		Run: func(cmd *cobra.Command, _ []string) {
			_ = cmd.Help()
		},
	}

	rootCmd.PersistentFlags().String("config", "", "path of the configuration file")
	rootCmd.PersistentFlags().String("log-level", "", "log level, e.g. debug, info, datarepo:debug")
	rootCmd.PersistentFlags().String("log-format", "", "log format: text or json")

	return rootCmd
}

// load reads the configuration and sets up the logger.
// Flags take precedence over environment variables, which take precedence over the config file.
func (app *cli) load(command *cobra.Command) error {
	vip := datarepo.DefaultViper()

	if file, _ := command.Flags().GetString("config"); file != "" {
		vip.SetConfigFile(file)

		if err := vip.ReadInConfig(); err != nil {
			return fmt.Errorf("%w: %v", datarepo.ErrConfigLoadFailed, err) //nolint:errorlint // prevent err in api
		}
	}

	for key, flag := range map[string]string{"log.level": "log-level", "log.format": "log-format"} {
		if f := command.Flags().Lookup(flag); f != nil && f.Changed {
			vip.Set(key, f.Value.String())
		}
	}

	if err := vip.Unmarshal(&app.config); err != nil {
		return err //nolint:wrapcheck // already wrapped by Unmarshal
	}

	switch app.config.Log.Format {
	case datarepo.JSONFormat:
		app.logger = alog.NewJSON(command.ErrOrStderr(), app.config.Log.Level)
	default:
		app.logger = alog.NewText(command.ErrOrStderr(), app.config.Log.Level)
	}

	app.logger.LogAttrs(command.Context(), alog.LevelInfo, "configuration loaded",
		slog.String("environment", string(app.config.Environment)),
		slog.String("log_level", app.config.Log.Level.String()),
		slog.String("seed_file", app.config.Seed.File),
	)

	return nil
}

// NewDataRepoCLI initialises the complete datarepo cli with its commands and returns the root command.
func NewDataRepoCLI() *cobra.Command {
	app := &cli{}

	rootCmd := newRootCmd(app)
	rootCmd.AddCommand(cmd.Version("datarepo"))
	rootCmd.AddCommand(newDemoCmd(app))
	rootCmd.AddCommand(newSeedCmd(app))

	return rootCmd
}

// Execute runs the datarepo cli.
func Execute() {
	if err := NewDataRepoCLI().Execute(); err != nil {
		log.Println(err)
		os.Exit(1)
	}
}
