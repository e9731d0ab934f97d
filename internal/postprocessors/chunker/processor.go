// Package chunker splits document text into overlapping windows.
//
// Windows are measured in runes. The default splitter prefers natural
// boundaries: it cuts after the last paragraph break that fits, then line
// break, then sentence end, then word boundary, and only cuts mid-word when
// the window has none of those. Every chunk is an exact substring of the
// document, so the document can be rebuilt from the chunks and their offsets.
package chunker

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/google/uuid"

	"github.com/custodia-labs/sitechat/internal/core/domain"
	"github.com/custodia-labs/sitechat/internal/core/ports/driven"
)

// Ensure Processor implements the interface.
var _ driven.Splitter = (*Processor)(nil)

// DefaultChunkSize is the default number of characters per chunk.
const DefaultChunkSize = 1000

// DefaultChunkOverlap is the default number of overlapping characters.
const DefaultChunkOverlap = 200

// DefaultSeparators is the boundary preference order, strongest first.
var DefaultSeparators = []string{"\n\n", "\n", ". ", "! ", "? ", "; ", " "}

// Processor splits document content into chunks.
type Processor struct {
	name        string
	chunkSize   int
	overlap     int
	separators  [][]rune
	snapOverlap bool
}

// Option configures the chunker processor.
type Option func(*Processor)

// WithChunkSize sets the chunk size in characters.
func WithChunkSize(size int) Option {
	return func(p *Processor) {
		p.chunkSize = size
	}
}

// WithOverlap sets the overlap between chunks in characters.
func WithOverlap(overlap int) Option {
	return func(p *Processor) {
		p.overlap = overlap
	}
}

// WithSeparators replaces the boundary preference order.
func WithSeparators(separators ...string) Option {
	return func(p *Processor) {
		p.separators = toRunes(separators)
	}
}

// WithFixedWindows disables boundary detection: every window is cut at
// exactly chunk size and overlaps its predecessor by exactly overlap.
func WithFixedWindows() Option {
	return func(p *Processor) {
		p.name = string(domain.SplitterFixed)
		p.separators = nil
		p.snapOverlap = false
	}
}

// New creates a new chunker processor with the given options.
// It requires chunk size > 0 and 0 <= overlap < chunk size.
func New(opts ...Option) (*Processor, error) {
	p := &Processor{
		name:        string(domain.SplitterRecursive),
		chunkSize:   DefaultChunkSize,
		overlap:     DefaultChunkOverlap,
		separators:  toRunes(DefaultSeparators),
		snapOverlap: true,
	}

	for _, opt := range opts {
		opt(p)
	}

	if p.chunkSize <= 0 {
		return nil, fmt.Errorf("%w: chunk size must be positive, got %d", domain.ErrInvalidInput, p.chunkSize)
	}
	if p.overlap < 0 || p.overlap >= p.chunkSize {
		return nil, fmt.Errorf("%w: overlap must be in [0, %d), got %d",
			domain.ErrInvalidInput, p.chunkSize, p.overlap)
	}

	return p, nil
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return p.name
}

// ChunkSize returns the configured window size.
func (p *Processor) ChunkSize() int {
	return p.chunkSize
}

// Overlap returns the configured overlap.
func (p *Processor) Overlap() int {
	return p.overlap
}

// Split splits the document content into chunks.
// Empty or whitespace-only content is an error rather than zero chunks, so
// callers never ingest nothing by accident.
func (p *Processor) Split(doc *domain.Document) ([]domain.Chunk, error) {
	if doc == nil {
		return nil, fmt.Errorf("%w: document is nil", domain.ErrInvalidInput)
	}
	if strings.TrimSpace(doc.Content) == "" {
		return nil, &domain.EmptyDocumentError{Locator: doc.Locator}
	}

	text := []rune(doc.Content)
	spans := p.spans(text)

	chunks := make([]domain.Chunk, len(spans))
	for i, s := range spans {
		chunks[i] = domain.Chunk{
			ID:      uuid.New().String(),
			Locator: doc.Locator,
			Index:   i,
			Text:    string(text[s.start:s.end]),
			Start:   s.start,
			End:     s.end,
		}
	}

	return chunks, nil
}

// span is a half-open rune range of the document.
type span struct {
	start int
	end   int
}

// spans walks the text greedily. Each window ends at cut() and the next
// begins at nextStart(); cut() always ends past start+overlap, so every
// window adds at least one new rune.
func (p *Processor) spans(text []rune) []span {
	n := len(text)
	estimated := n/(p.chunkSize-p.overlap) + 1
	spans := make([]span, 0, estimated)

	start := 0
	for {
		if n-start <= p.chunkSize {
			return append(spans, span{start: start, end: n})
		}

		end := p.cut(text, start)
		spans = append(spans, span{start: start, end: end})
		start = p.nextStart(text, end)
	}
}

// cut returns the end of the window starting at start. It picks the last
// occurrence of the strongest separator that ends inside
// (start+overlap, start+chunkSize], falling back to a hard cut.
func (p *Processor) cut(text []rune, start int) int {
	limit := start + p.chunkSize
	lo := start + p.overlap + 1

	for _, sep := range p.separators {
		if pos := lastBoundary(text, start, lo, limit, sep); pos > 0 {
			return pos
		}
	}
	return limit
}

// nextStart backs up overlap runes from end, then moves forward to the
// first word start inside the overlap so the next chunk does not open
// mid-word. Without a word start it keeps the full overlap.
func (p *Processor) nextStart(text []rune, end int) int {
	next := end - p.overlap
	if !p.snapOverlap || p.overlap == 0 {
		return next
	}

	for i := next; i < end; i++ {
		if unicode.IsSpace(text[i-1]) && !unicode.IsSpace(text[i]) {
			return i
		}
	}
	return next
}

// lastBoundary returns the largest position c in [lo, hi] such that sep
// ends at c and begins at or after floor, or -1.
func lastBoundary(text []rune, floor, lo, hi int, sep []rune) int {
	width := len(sep)
	for c := hi; c >= lo; c-- {
		if c-width < floor {
			break
		}
		if runesEqual(text[c-width:c], sep) {
			return c
		}
	}
	return -1
}

func runesEqual(a, b []rune) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func toRunes(ss []string) [][]rune {
	out := make([][]rune, 0, len(ss))
	for _, s := range ss {
		if s == "" {
			continue
		}
		out = append(out, []rune(s))
	}
	return out
}
