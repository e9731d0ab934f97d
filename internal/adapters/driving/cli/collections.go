package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var collectionsCmd = &cobra.Command{
	Use:     "collections",
	Aliases: []string{"ls"},
	Short:   "List stored collections",
	RunE:    runCollectionsList,
}

var collectionsRmCmd = &cobra.Command{
	Use:   "rm <name>",
	Short: "Delete a collection so the next load ingests afresh",
	Args:  cobra.ExactArgs(1),
	RunE:  runCollectionsRm,
}

func init() {
	collectionsCmd.AddCommand(collectionsRmCmd)
	rootCmd.AddCommand(collectionsCmd)
}

func runCollectionsList(cmd *cobra.Command, _ []string) error {
	if err := ensureServices(cmd); err != nil {
		return err
	}
	if retrievalService == nil {
		return errors.New("retrieval service not configured")
	}

	infos, err := retrievalService.Collections(commandContext(cmd))
	if err != nil {
		return fmt.Errorf("failed to list collections: %w", err)
	}

	if len(infos) == 0 {
		cmd.Println("No collections.")
		return nil
	}

	cmd.Printf("%-24s %8s  %-28s %s\n", "NAME", "ENTRIES", "MODEL", "CREATED")
	for _, info := range infos {
		created := "-"
		if !info.CreatedAt.IsZero() {
			created = info.CreatedAt.Format("2006-01-02 15:04")
		}
		cmd.Printf("%-24s %8d  %-28s %s\n", info.Name, info.Count, info.EmbeddingModel, created)
	}
	return nil
}

func runCollectionsRm(cmd *cobra.Command, args []string) error {
	if err := ensureServices(cmd); err != nil {
		return err
	}
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}

	if err := ingestService.Drop(commandContext(cmd), args[0]); err != nil {
		return fmt.Errorf("failed to delete collection: %w", err)
	}
	cmd.Printf("Deleted collection %s\n", args[0])
	return nil
}
