package services

import (
	"fmt"
	"strings"

	"github.com/custodia-labs/sitechat/internal/core/domain"
)

// contextSeparator joins formatted entries.
const contextSeparator = "\n\n"

// NoResultsMessage returns the sentinel text used when retrieval finds nothing.
func NoResultsMessage(query string) string {
	return fmt.Sprintf("No results found for '%s'.", query)
}

// FormatContext renders a retrieval result as prompt context. Each entry is
// "Source: <locator>\n<text>", in result order, separated by a blank line.
// An empty result yields NoResultsMessage(query) so the model can tell
// "nothing relevant" apart from missing context.
func FormatContext(query string, result domain.RetrievalResult) string {
	if len(result) == 0 {
		return NoResultsMessage(query)
	}

	var b strings.Builder
	for i, sc := range result {
		if i > 0 {
			b.WriteString(contextSeparator)
		}
		b.WriteString("Source: ")
		b.WriteString(sc.Chunk.Locator)
		b.WriteByte('\n')
		b.WriteString(sc.Chunk.Text)
	}
	return b.String()
}
