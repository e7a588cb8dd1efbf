package cli

import (
	"errors"
	"fmt"
	"io"

	"cartable/internal/config"
	"cartable/internal/domain"
	"cartable/internal/domain/models/tree"

	"github.com/spf13/cobra"
)

func newTreeCommand(app *App) *cobra.Command {
	var depth int

	cmd := &cobra.Command{
		Use:   "tree",
		Short: "Print the progression tree",
		Long: "Print the progression tree. --depth counts levels below the root: " +
			"1 lists progressions, 4 goes down to resources.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if depth < 1 || depth > config.MaxTreeDepth {
				return fmt.Errorf("--depth must be between 1 and %d", config.MaxTreeDepth)
			}
			if err := app.requireLogin(); err != nil {
				return err
			}

			ctrl := app.newTree()
			err := ctrl.LoadSubtree(cmd.Context(), tree.RootID, depth)
			snap := ctrl.Snapshot()
			if err != nil {
				if snap.Error != "" {
					fmt.Fprintln(cmd.ErrOrStderr(), snap.Error)
				}
				return app.check(err)
			}

			printTree(cmd.OutOrStdout(), snap.Root, func(*tree.Node) bool { return true })
			return nil
		},
	}

	cmd.Flags().IntVarP(&depth, "depth", "d", 2, "Levels to load below the root")
	return cmd
}

func printTree(w io.Writer, root *tree.Node, open func(*tree.Node) bool) {
	fmt.Fprintln(w, Render(Flatten(root, open)))
}

func newBrowseCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "browse",
		Short: "Explore the tree interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.requireLogin(); err != nil {
				return err
			}

			sh := newShell(app, cmd.OutOrStdout())
			if err := sh.ctrl.Load(cmd.Context()); err != nil {
				if errors.Is(err, domain.ErrUnauthenticated) || errors.Is(err, domain.ErrUnauthorized) {
					return app.check(err)
				}
				// Keep going: the banner is shown and `reload` can retry.
				app.logger.Warn("initial load failed", "error", err)
			}
			sh.ls()
			return sh.run(cmd.Context())
		},
	}
}
