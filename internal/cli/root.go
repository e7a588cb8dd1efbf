package cli

import (
	"github.com/spf13/cobra"
)

// NewRootCommand builds the cartable command tree.
func NewRootCommand(opts Options) *cobra.Command {
	app := &App{opts: opts}

	rootCmd := &cobra.Command{
		Use:   "cartable",
		Short: "Browse and edit your teaching progressions",
		Long: "cartable talks to the pedagogy API: it browses the progression tree " +
			"(progressions, sequences, sessions, resources), edits progressions and " +
			"resources, and chats with the teaching assistant.",
		SilenceUsage: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return app.init(cmd.ErrOrStderr())
		},
	}

	rootCmd.PersistentFlags().BoolVarP(&app.verbose, "verbose", "v", false, "Enable debug logs on stderr")

	rootCmd.AddCommand(
		newLoginCommand(app),
		newLogoutCommand(app),
		newWhoamiCommand(app),
		newTreeCommand(app),
		newBrowseCommand(app),
		newProgressionCommand(app),
		newResourceCommand(app),
		newChatCommand(app),
	)
	return rootCmd
}
