package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/c-bata/go-prompt"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func newChatCommand(app *App) *cobra.Command {
	var raw bool

	cmd := &cobra.Command{
		Use:   "chat [message...]",
		Short: "Ask the teaching assistant",
		Long: "With a message, ask one question and print the answer. Without one, " +
			"start a conversation: /reset clears the history, /exit leaves.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.requireLogin(); err != nil {
				return err
			}
			md, err := newMarkdownRenderer(cmd.OutOrStdout(), raw)
			if err != nil {
				return fmt.Errorf("init markdown renderer: %w", err)
			}

			conversationID := app.chat.Start(app.caller())
			if len(args) > 0 {
				return app.ask(cmd.Context(), md, conversationID, strings.Join(args, " "))
			}
			return app.converse(cmd, md, conversationID)
		},
	}

	cmd.Flags().BoolVar(&raw, "raw", false, "Print answers as plain markdown")
	return cmd
}

func (a *App) ask(ctx context.Context, md *markdownRenderer, conversationID, message string) error {
	answer, err := a.chat.Send(ctx, a.caller(), conversationID, message)
	if err != nil {
		return a.check(err)
	}
	md.Print(answer.Content)
	return nil
}

// converse runs the conversation loop. Failed turns are reported and the
// loop continues; the history only keeps successful exchanges.
func (a *App) converse(cmd *cobra.Command, md *markdownRenderer, conversationID string) error {
	next := lineReader(cmd.InOrStdin())
	for {
		line, ok := next()
		if !ok {
			return nil
		}
		line = strings.TrimSpace(line)
		switch line {
		case "":
			continue
		case "/exit", "/quit":
			return nil
		case "/reset":
			if err := a.chat.Reset(a.caller(), conversationID); err != nil {
				return err
			}
			fmt.Fprintln(cmd.ErrOrStderr(), "(history cleared)")
			continue
		}

		if err := a.ask(cmd.Context(), md, conversationID, line); err != nil {
			if errors.Is(err, ErrNotLoggedIn) || !a.session.Authenticated() {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "error: %v\n", err)
		}
	}
}

// lineReader reads user turns: a go-prompt input on a terminal, plain lines
// otherwise.
func lineReader(in io.Reader) func() (string, bool) {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		return func() (string, bool) {
			line := prompt.Input("you> ", func(prompt.Document) []prompt.Suggest { return nil },
				prompt.OptionPrefixTextColor(prompt.Green),
			)
			return line, true
		}
	}

	scanner := bufio.NewScanner(in)
	return func() (string, bool) {
		if !scanner.Scan() {
			return "", false
		}
		return scanner.Text(), true
	}
}
