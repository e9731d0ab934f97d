package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/sitechat/internal/core/domain"
)

var askNoLoad bool

var askCmd = &cobra.Command{
	Use:   "ask <url|path> <question>",
	Short: "Load a page and answer one question about it",
	Long: `Load the page into the collection (skipped when the collection already
has entries), then ask the chat model the question. The model can call the
retrieve_context tool to look up passages; the answer is streamed.

With --no-load the first argument is treated as part of the question and
the existing collection is used as is.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().BoolVar(&askNoLoad, "no-load", false, "skip loading; every argument is part of the question")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	locator, question, err := splitAskArgs(args, askNoLoad)
	if err != nil {
		return err
	}

	if err := ensureServices(cmd); err != nil {
		return err
	}
	if agentService == nil {
		return errors.New("agent not configured")
	}

	ctx := commandContext(cmd)

	if locator != "" {
		if ingestService == nil {
			return errors.New("ingest service not configured")
		}
		outcome, err := ingestService.Load(ctx, collectionName(), locator)
		if err != nil {
			return fmt.Errorf("ingest failed: %w", err)
		}
		cmd.PrintErrln(outcome.String())
	}

	out := cmd.OutOrStdout()
	streamed := false
	conv := domain.NewConversation(systemPrompt)
	answer, err := agentService.Ask(ctx, conv, question, func(delta string) {
		streamed = true
		fmt.Fprint(out, delta)
	})
	if err != nil {
		if streamed {
			fmt.Fprintln(out)
		}
		return fmt.Errorf("ask failed: %w", err)
	}

	if !streamed {
		fmt.Fprint(out, answer)
	}
	fmt.Fprintln(out)
	return nil
}

// splitAskArgs separates the locator from the question words.
func splitAskArgs(args []string, noLoad bool) (string, string, error) {
	if noLoad {
		return "", strings.Join(args, " "), nil
	}
	if len(args) < 2 {
		return "", "", fmt.Errorf("%w: ask needs a url or path and a question", domain.ErrInvalidInput)
	}
	question := strings.TrimSpace(strings.Join(args[1:], " "))
	if question == "" {
		return "", "", fmt.Errorf("%w: question is empty", domain.ErrInvalidInput)
	}
	return args[0], question, nil
}
