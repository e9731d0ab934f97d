package cli

import (
	"errors"
	"fmt"
	"os"
	"runtime/debug"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/sitechat/internal/adapters/driving/tui"
)

// runApp starts the TUI. Tests replace it to avoid taking over the terminal.
var runApp = func(app *tui.App) error {
	return app.Run()
}

var chatCmd = &cobra.Command{
	Use:   "chat [url|path]",
	Short: "Launch the interactive chat",
	Long: `Launch a multi-turn chat in the terminal. When a url or path is given it
is loaded into the collection first.

Controls:
  enter    - Send the question
  esc      - Stop a streaming answer / back
  ctrl+n   - New conversation
  tab      - Collections
  f1       - Help
  ctrl+c   - Quit

In the chat, /load <url> loads a page when the collection is still empty
and /new starts over.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runChat,
}

func init() {
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, args []string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Panic in TUI: %v\n", r)
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
			err = fmt.Errorf("TUI panic: %v", r)
		}
	}()

	if err := ensureServices(cmd); err != nil {
		return err
	}
	if agentService == nil {
		return errors.New("agent not configured")
	}

	ports := tui.NewPorts(agentService, ingestService, retrievalService)
	ports.Collection = collectionName()
	ports.SystemPrompt = systemPrompt
	ports.Model = chatModelName
	if len(args) == 1 {
		ports.Locator = args[0]
	}

	app, err := tui.NewApp(ports)
	if err != nil {
		return fmt.Errorf("failed to create TUI: %w", err)
	}
	app.WithContext(commandContext(cmd))

	if err := runApp(app); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
