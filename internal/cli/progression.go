package cli

import (
	"fmt"
	"text/tabwriter"

	"cartable/internal/domain/models/pedagogy"
	"cartable/internal/domain/services"

	"github.com/spf13/cobra"
)

func newProgressionCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "progression",
		Aliases: []string{"prog"},
		Short:   "Manage progressions",
	}
	cmd.AddCommand(
		newProgressionListCommand(app),
		newProgressionCreateCommand(app),
		newProgressionUpdateCommand(app),
		newProgressionDeleteCommand(app),
	)
	return cmd
}

func newProgressionListCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List progressions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			progressions, err := app.progressions.ListProgressions(cmd.Context(), app.caller())
			if err != nil {
				return app.check(err)
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tTITLE\tDESCRIPTION")
			for _, p := range progressions {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", p.ID, p.Title, deref(p.Description))
			}
			return tw.Flush()
		},
	}
}

// progressionFlags binds the shared create/update flags.
type progressionFlags struct {
	title       string
	description string
}

func (f *progressionFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.title, "title", "t", "", "Progression title")
	cmd.Flags().StringVar(&f.description, "description", "", "Progression description")
}

func (f *progressionFlags) request(cmd *cobra.Command) *services.ProgressionRequest {
	req := &services.ProgressionRequest{Title: f.title}
	if cmd.Flags().Changed("description") {
		req.Description = &f.description
	}
	return req
}

func newProgressionCreateCommand(app *App) *cobra.Command {
	var flags progressionFlags
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a progression",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := app.progressions.CreateProgression(cmd.Context(), app.caller(), flags.request(cmd))
			if err != nil {
				return app.check(err)
			}
			printProgression(cmd, "Created", p)
			return nil
		},
	}
	flags.bind(cmd)
	return cmd
}

func newProgressionUpdateCommand(app *App) *cobra.Command {
	var flags progressionFlags
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update a progression",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := app.progressions.UpdateProgression(cmd.Context(), app.caller(), args[0], flags.request(cmd))
			if err != nil {
				return app.check(err)
			}
			printProgression(cmd, "Updated", p)
			return nil
		},
	}
	flags.bind(cmd)
	return cmd
}

func newProgressionDeleteCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a progression",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.progressions.DeleteProgression(cmd.Context(), app.caller(), args[0]); err != nil {
				return app.check(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted progression %s\n", args[0])
			return nil
		},
	}
}

func printProgression(cmd *cobra.Command, verb string, p *pedagogy.Progression) {
	fmt.Fprintf(cmd.OutOrStdout(), "%s progression %s: %s\n", verb, p.ID, p.Title)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
