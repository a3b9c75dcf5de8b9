package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/go-arrower/datarepo/alog"
	"github.com/go-arrower/datarepo/datarepo/internal"
	"github.com/go-arrower/datarepo/repository"
)

var ErrNoSeedFile = errors.New("no seed file given")

func newSeedCmd(app *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "seed [file]",
		Short: "Load users from a yaml file and list them",
		Long: `Loads all users of the file into a new repository and prints them in order.
If no file is given, seed.file of the configuration is used.
A file with duplicate ids is rejected as a whole.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			file := app.config.Seed.File
			if len(args) == 1 {
				file = args[0]
			}

			if file == "" {
				return ErrNoSeedFile
			}

			f, err := os.Open(file)
			if err != nil {
				return fmt.Errorf("could not open seed file: %w", err)
			}
			defer f.Close()

			users, err := internal.LoadUsers(f)
			if err != nil {
				return fmt.Errorf("could not load %s: %w", file, err)
			}

			app.logger.LogAttrs(cmd.Context(), alog.LevelInfo, "seed loaded",
				slog.String("file", file), slog.Int("users", len(users)))

			repo, err := repository.NewMemoryRepository[internal.User, int](users)
			if err != nil {
				red := color.New(color.FgRed, color.Bold).FprintlnFunc()
				red(cmd.ErrOrStderr(), "seed rejected")

				return fmt.Errorf("could not seed %s: %w", file, err)
			}

			w := cmd.OutOrStdout()
			for u := range repo.Iter(cmd.Context()) {
				fmt.Fprintln(w, u)
			}

			color.New(color.FgBlue, color.Bold).Fprintf(w, "count: %d\n", repo.Count(cmd.Context()))

			return nil
		},
	}
}
