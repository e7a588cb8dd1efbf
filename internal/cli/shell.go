package cli

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"cartable/internal/domain/models/tree"
	serviceTree "cartable/internal/service/tree"

	"github.com/c-bata/go-prompt"
)

// shell is the interactive tree browser behind `cartable browse`.
type shell struct {
	app  *App
	ctrl *serviceTree.Controller
	out  io.Writer
	done bool
}

func newShell(app *App, out io.Writer) *shell {
	return &shell{app: app, ctrl: app.newTree(), out: out}
}

var shellCommands = []prompt.Suggest{
	{Text: "ls", Description: "Show the tree"},
	{Text: "expand", Description: "Open a node: expand <id>"},
	{Text: "collapse", Description: "Close a node: collapse <id>"},
	{Text: "reload", Description: "Refetch a node, or everything: reload [id]"},
	{Text: "help", Description: "List commands"},
	{Text: "exit", Description: "Leave the browser"},
}

// run reads commands until exit or Ctrl-D.
func (s *shell) run(ctx context.Context) error {
	p := prompt.New(
		func(in string) { s.exec(ctx, in) },
		s.complete,
		prompt.OptionPrefix("cartable> "),
		prompt.OptionTitle("cartable"),
		prompt.OptionPrefixTextColor(prompt.Blue),
		prompt.OptionInputTextColor(prompt.DefaultColor),
		prompt.OptionSetExitCheckerOnInput(func(in string, breakline bool) bool {
			return breakline && s.done
		}),
	)
	p.Run()
	return nil
}

// complete suggests commands first, then node ids for the second word.
func (s *shell) complete(d prompt.Document) []prompt.Suggest {
	words := strings.Fields(d.TextBeforeCursor())
	if len(words) == 0 || (len(words) == 1 && !strings.HasSuffix(d.TextBeforeCursor(), " ")) {
		return prompt.FilterHasPrefix(shellCommands, d.GetWordBeforeCursor(), true)
	}
	switch words[0] {
	case "expand", "collapse", "reload":
		return prompt.FilterHasPrefix(s.nodeSuggestions(), d.GetWordBeforeCursor(), true)
	}
	return nil
}

// nodeSuggestions lists the container nodes currently in the tree.
func (s *shell) nodeSuggestions() []prompt.Suggest {
	var out []prompt.Suggest
	serviceTree.Walk(s.ctrl.Snapshot().Root, func(n *tree.Node, depth int) bool {
		if n.Kind.Expandable() {
			out = append(out, prompt.Suggest{Text: n.ID, Description: n.Name})
		}
		return true
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Text < out[j].Text })
	return out
}

// exec runs one command line. Errors are printed, never returned, so the
// loop keeps going.
func (s *shell) exec(ctx context.Context, line string) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return
	}
	arg := ""
	if len(fields) > 1 {
		arg = fields[1]
	}

	switch fields[0] {
	case "ls":
		s.ls()
	case "expand":
		if arg == "" {
			fmt.Fprintln(s.out, "usage: expand <id>")
			return
		}
		result, err := s.ctrl.Expand(ctx, arg)
		s.report(result, err)
	case "collapse":
		if arg == "" {
			fmt.Fprintln(s.out, "usage: collapse <id>")
			return
		}
		s.ctrl.Collapse(arg)
		s.ls()
	case "reload":
		if arg == "" {
			if err := s.ctrl.Load(ctx); err != nil {
				fmt.Fprintf(s.out, "error: %v\n", s.app.check(err))
			}
			s.ls()
			return
		}
		result, err := s.ctrl.Reload(ctx, arg)
		s.report(result, err)
	case "help":
		for _, c := range shellCommands {
			fmt.Fprintf(s.out, "  %-9s %s\n", c.Text, c.Description)
		}
	case "exit", "quit":
		s.done = true
	default:
		fmt.Fprintf(s.out, "unknown command %q (try help)\n", fields[0])
	}
}

func (s *shell) report(result tree.ExpandResult, err error) {
	switch {
	case err != nil:
		fmt.Fprintf(s.out, "error: %v\n", s.app.check(err))
		return
	case result.Outcome == tree.OutcomeNotFound:
		fmt.Fprintf(s.out, "no node %q\n", result.NodeID)
		return
	case result.Outcome == tree.OutcomeFailed:
		fmt.Fprintf(s.out, "failed: %v\n", s.app.check(result.Err))
	}
	s.ls()
}

// ls prints the tree with only the expanded nodes open.
func (s *shell) ls() {
	snap := s.ctrl.Snapshot()
	if snap.Error != "" {
		fmt.Fprintln(s.out, snap.Error)
	}
	open := make(map[string]bool, len(snap.Expanded))
	for _, id := range snap.Expanded {
		open[id] = true
	}
	printTree(s.out, snap.Root, func(n *tree.Node) bool { return open[n.ID] })
}
