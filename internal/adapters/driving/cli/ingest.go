package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest <url|path>",
	Short: "Load a page or document into a collection",
	Long: `Fetch a web page or local file, split it into chunks, embed them and
store them in the collection.

Locators may be http(s) URLs, local paths, file:// URLs or
github://owner/repo/path[@ref] (GITHUB_TOKEN is used when set).

Ingestion is idempotent per collection: if the collection already has
entries nothing is fetched and the existing count is reported.`,
	Args: cobra.ExactArgs(1),
	RunE: runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	if err := ensureServices(cmd); err != nil {
		return err
	}
	if ingestService == nil {
		return fmt.Errorf("ingest service not configured")
	}

	collection := collectionName()
	outcome, err := ingestService.Load(commandContext(cmd), collection, args[0])
	if err != nil {
		return fmt.Errorf("ingest failed: %w", err)
	}

	cmd.Printf("%s [%s]\n", outcome, collection)
	return nil
}
