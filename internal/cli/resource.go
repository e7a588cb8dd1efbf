package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"cartable/internal/domain/models/pedagogy"
	"cartable/internal/domain/services"

	"github.com/spf13/cobra"
)

func newResourceCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "resource",
		Aliases: []string{"res"},
		Short:   "Manage resources",
	}
	cmd.AddCommand(
		newResourceListCommand(app),
		newResourceShowCommand(app),
		newResourceCreateCommand(app),
		newResourceUpdateCommand(app),
		newResourceDeleteCommand(app),
		newResourceTypesCommand(app),
	)
	return cmd
}

func newResourceListCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List resources",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			resources, err := app.resources.ListResources(cmd.Context(), app.caller())
			if err != nil {
				return app.check(err)
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tTITLE\tTYPE\tSESSIONS")
			for i := range resources {
				r := &resources[i]
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", r.ID, r.Title, typeLabel(r), strings.Join(r.SessionIDs(), ","))
			}
			return tw.Flush()
		},
	}
}

func newResourceShowCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one resource",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := app.resources.GetResource(cmd.Context(), app.caller(), args[0])
			if err != nil {
				return app.check(err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s (#%s)\n", r.Title, r.ID)
			fmt.Fprintf(out, "type:     %s\n", typeLabel(r))
			if r.SubType != nil {
				fmt.Fprintf(out, "subtype:  %s\n", r.SubType.Value)
			}
			fmt.Fprintf(out, "source:   %s\n", r.SourceType)
			if r.FileName != nil {
				fmt.Fprintf(out, "file:     %s\n", *r.FileName)
			}
			fmt.Fprintf(out, "sessions: %s\n", strings.Join(r.SessionIDs(), ", "))
			if d := deref(r.Description); d != "" {
				fmt.Fprintf(out, "\n%s\n", d)
			}
			return nil
		},
	}
}

// resourceFlags binds the shared create/update flags.
type resourceFlags struct {
	title       string
	description string
	typeID      string
	subTypeID   string
	sourceType  string
	sessionIDs  []string
}

func (f *resourceFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.title, "title", "t", "", "Resource title")
	cmd.Flags().StringVar(&f.description, "description", "", "Resource description (its link, for web resources)")
	cmd.Flags().StringVar(&f.typeID, "type", "", "Resource type id (see `resource types`)")
	cmd.Flags().StringVar(&f.subTypeID, "subtype", "", "Resource subtype id")
	cmd.Flags().StringSliceVar(&f.sessionIDs, "session", nil, "Session ids to attach to (repeatable)")
}

func newResourceCreateCommand(app *App) *cobra.Command {
	var flags resourceFlags
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a resource",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			req := &services.CreateResourceRequest{
				Title:      flags.title,
				TypeID:     flags.typeID,
				SubTypeID:  flags.subTypeID,
				SourceType: flags.sourceType,
				SessionIDs: flags.sessionIDs,
				UserID:     app.session.UserID(),
			}
			if cmd.Flags().Changed("description") {
				req.Description = &flags.description
			}

			r, err := app.resources.CreateResource(cmd.Context(), app.caller(), req)
			if err != nil {
				return app.check(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created resource %s: %s\n", r.ID, r.Title)
			return nil
		},
	}
	flags.bind(cmd)
	cmd.Flags().StringVar(&flags.sourceType, "source", pedagogy.SourceFile, "Source type: file or ai")
	return cmd
}

func newResourceUpdateCommand(app *App) *cobra.Command {
	var flags resourceFlags
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update a resource; only the given flags change",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := &services.UpdateResourceRequest{}
			changed := cmd.Flags().Changed
			if changed("title") {
				req.Title = &flags.title
			}
			if changed("description") {
				req.Description = &flags.description
			}
			if changed("type") {
				req.TypeID = &flags.typeID
			}
			if changed("subtype") {
				req.SubTypeID = &flags.subTypeID
			}
			if changed("session") {
				req.SessionIDs = flags.sessionIDs
			}

			r, err := app.resources.UpdateResource(cmd.Context(), app.caller(), args[0], req)
			if err != nil {
				return app.check(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated resource %s: %s\n", r.ID, r.Title)
			return nil
		},
	}
	flags.bind(cmd)
	return cmd
}

func newResourceDeleteCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a resource",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.resources.DeleteResource(cmd.Context(), app.caller(), args[0]); err != nil {
				return app.check(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted resource %s\n", args[0])
			return nil
		},
	}
}

func newResourceTypesCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "types [type-id]",
		Short: "List resource types, or the subtypes of one type",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tKEY\tLABEL")

			if len(args) == 1 {
				subtypes, err := app.resources.ListResourceSubTypes(cmd.Context(), app.caller(), args[0])
				if err != nil {
					return app.check(err)
				}
				for _, st := range subtypes {
					fmt.Fprintf(tw, "%s\t%s\t%s\n", st.ID, st.Key, st.Value)
				}
				return tw.Flush()
			}

			types, err := app.resources.ListResourceTypes(cmd.Context(), app.caller())
			if err != nil {
				return app.check(err)
			}
			for _, t := range types {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", t.ID, t.Key, t.Value)
			}
			return tw.Flush()
		},
	}
}

func typeLabel(r *pedagogy.Resource) string {
	if r.Type != nil && r.Type.Value != "" {
		return r.Type.Value
	}
	return "#" + r.TypeID.String()
}
