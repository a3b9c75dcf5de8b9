package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/go-arrower/datarepo/datarepo/internal"
	"github.com/go-arrower/datarepo/repository"
	"github.com/go-arrower/datarepo/repository/q"
)

func newDemoCmd(app *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Walk through adding, finding, updating, and removing users",
		Long: `Runs a short scenario against an empty repository and prints every step.
The scenario ends by adding a duplicate id, which is rejected.
Use --strict to exit with an error when that happens.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			strict, _ := cmd.Flags().GetBool("strict")

			mem, err := repository.NewMemoryRepository[internal.User, int](nil)
			if err != nil {
				return fmt.Errorf("could not create repository: %w", err)
			}

			repo, err := repository.NewObservedRepository[internal.User, int](mem, repository.WithLogger(app.logger))
			if err != nil {
				return fmt.Errorf("could not observe repository: %w", err)
			}
			defer repo.Close() //nolint:errcheck // only stops reporting the gauge

			err = runDemo(cmd.Context(), cmd.OutOrStdout(), repo)
			if errors.Is(err, repository.ErrAlreadyExists) && !strict {
				return nil
			}

			return err
		},
	}

	cmd.Flags().Bool("strict", false, "exit with an error if the last step is rejected")

	return cmd
}

// runDemo returns repository.ErrAlreadyExists, as the final step adds a duplicate id.
func runDemo(ctx context.Context, w io.Writer, repo repository.Repository[internal.User, int]) error {
	blue := color.New(color.FgBlue, color.Bold).FprintlnFunc()
	red := color.New(color.FgRed, color.Bold).FprintlnFunc()

	step := func(title string) { blue(w, "> "+title) }

	for _, u := range []internal.User{{ID: 1, Name: "John"}, {ID: 2, Name: "Midun"}} {
		step("add " + u.String())

		if err := repo.Add(ctx, u); err != nil {
			return fmt.Errorf("could not add user: %w", err)
		}
	}

	step(`find name == "John"`)

	if john, found := repo.Find(ctx, q.Where[internal.User]("Name").Is("John")); found {
		fmt.Fprintln(w, john)
	} else {
		fmt.Fprintln(w, "not found")
	}

	step("update 1")

	updated, err := repo.Update(ctx, 1, internal.User{ID: 1, Name: "John Doe", Email: "john@example.com"})
	if err != nil {
		return fmt.Errorf("could not update user: %w", err)
	}

	fmt.Fprintln(w, updated)

	step("remove 1")
	fmt.Fprintln(w, repo.Remove(ctx, 1))

	step("all")

	for _, u := range repo.All(ctx) {
		fmt.Fprintln(w, u)
	}

	step("count")
	fmt.Fprintln(w, repo.Count(ctx))

	step("add {id: 2} again")

	err = repo.Add(ctx, internal.User{ID: 2, Name: "Midun"})
	if err != nil {
		red(w, "rejected: "+err.Error())

		return fmt.Errorf("could not add user: %w", err)
	}

	fmt.Fprintln(w, "added")

	return nil
}
