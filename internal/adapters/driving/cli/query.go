package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/sitechat/internal/core/domain"
)

var (
	queryK    int
	queryJSON bool
)

var queryCmd = &cobra.Command{
	Use:   "query <question>",
	Short: "Retrieve the passages most similar to a question",
	Long: `Embed the question and print the k most similar passages of the
collection, formatted as they are given to the chat model.`,
	Args: cobra.ExactArgs(1),
	RunE: runQuery,
}

func init() {
	queryCmd.Flags().IntVarP(&queryK, "k", "k", 0, "number of passages (default from settings)")
	queryCmd.Flags().BoolVar(&queryJSON, "json", false, "output scored passages as JSON")
	rootCmd.AddCommand(queryCmd)
}

func runQuery(cmd *cobra.Command, args []string) error {
	if err := ensureServices(cmd); err != nil {
		return err
	}
	if retrievalService == nil {
		return errors.New("retrieval service not configured")
	}

	k := queryK
	if !cmd.Flags().Changed("k") {
		k = defaultK()
	}

	ctx := commandContext(cmd)
	collection := collectionName()

	if queryJSON {
		result, err := retrievalService.Query(ctx, collection, args[0], k)
		if err != nil {
			return fmt.Errorf("query failed: %w", err)
		}
		return outputQueryJSON(cmd, result)
	}

	text, err := retrievalService.RetrieveContext(ctx, collection, args[0], k)
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}
	cmd.Println(text)
	return nil
}

// scoredPassage is the JSON shape of one retrieved chunk.
type scoredPassage struct {
	Locator string  `json:"locator"`
	Index   int     `json:"index"`
	Score   float64 `json:"score"`
	Text    string  `json:"text"`
}

func outputQueryJSON(cmd *cobra.Command, result domain.RetrievalResult) error {
	out := make([]scoredPassage, 0, len(result))
	for _, sc := range result {
		out = append(out, scoredPassage{
			Locator: sc.Chunk.Locator,
			Index:   sc.Chunk.Index,
			Score:   sc.Score,
			Text:    sc.Chunk.Text,
		})
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	cmd.Println(string(data))
	return nil
}
