package services

import (
	"context"
	"errors"
	"hash/fnv"
	"sync"

	"github.com/custodia-labs/sitechat/internal/core/domain"
	"github.com/custodia-labs/sitechat/internal/core/ports/driven"
)

// --- Mock implementations ---

// mockEmbeddingService implements driven.EmbeddingService for testing.
// Vectors are derived from a hash of the text so equal texts embed equally.
type mockEmbeddingService struct {
	mu         sync.Mutex
	model      string
	dimensions int
	vectors    map[string][]float32
	embedErr   error
	batchErr   error
	embedCalls int
	batchSizes []int
}

func newMockEmbeddingService() *mockEmbeddingService {
	return &mockEmbeddingService{model: "mock-embed", dimensions: 4, vectors: make(map[string][]float32)}
}

func (m *mockEmbeddingService) vector(text string) []float32 {
	if v, ok := m.vectors[text]; ok {
		return v
	}
	h := fnv.New32a()
	_, _ = h.Write([]byte(text))
	sum := h.Sum32()
	v := make([]float32, m.dimensions)
	for i := range v {
		v[i] = float32((sum>>(i*8))&0xff) + 1
	}
	return v
}

func (m *mockEmbeddingService) Embed(_ context.Context, text string) ([]float32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.embedCalls++
	if m.embedErr != nil {
		return nil, m.embedErr
	}
	return m.vector(text), nil
}

func (m *mockEmbeddingService) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.batchSizes = append(m.batchSizes, len(texts))
	if m.batchErr != nil {
		return nil, m.batchErr
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = m.vector(t)
	}
	return out, nil
}

func (m *mockEmbeddingService) Dimensions() int { return m.dimensions }
func (m *mockEmbeddingService) ModelName() string { return m.model }
func (m *mockEmbeddingService) Ping(context.Context) error { return nil }
func (m *mockEmbeddingService) Close() error { return nil }

func (m *mockEmbeddingService) totalBatched() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, s := range m.batchSizes {
		n += s
	}
	return n
}

// mockFetcher implements driven.Fetcher for testing.
type mockFetcher struct {
	docs  map[string]*domain.RawDocument
	calls int
}

func (m *mockFetcher) Fetch(_ context.Context, locator string) (*domain.RawDocument, error) {
	m.calls++
	raw, ok := m.docs[locator]
	if !ok {
		return nil, &domain.FetchError{Locator: locator, Err: errors.New("404 Not Found")}
	}
	return raw, nil
}

// passthroughNormaliser implements driven.Normaliser by treating content as text.
type passthroughNormaliser struct{}

func (passthroughNormaliser) SupportedMIMETypes() []string { return []string{"text/plain"} }

func (passthroughNormaliser) Normalise(_ context.Context, raw *domain.RawDocument) (*domain.Document, error) {
	return &domain.Document{Locator: raw.Locator, Content: string(raw.Content), MIMEType: raw.MIMEType}, nil
}

// lineSplitter implements driven.Splitter with one chunk per non-empty line.
type lineSplitter struct{}

func (lineSplitter) Name() string { return "lines" }

func (lineSplitter) Split(doc *domain.Document) ([]domain.Chunk, error) {
	var chunks []domain.Chunk
	start := 0
	runes := []rune(doc.Content)
	for i := 0; i <= len(runes); i++ {
		if i == len(runes) || runes[i] == '\n' {
			if i > start {
				chunks = append(chunks, domain.Chunk{
					ID:      doc.Locator + "#" + string(runes[start:i]),
					Locator: doc.Locator,
					Index:   len(chunks),
					Text:    string(runes[start:i]),
					Start:   start,
					End:     i,
				})
			}
			start = i + 1
		}
	}
	if len(chunks) == 0 {
		return nil, &domain.EmptyDocumentError{Locator: doc.Locator}
	}
	return chunks, nil
}

// mockRetrieval implements driving.RetrievalService for tool tests.
type mockRetrieval struct {
	text       string
	err        error
	collection string
	query      string
	k          int
}

func (m *mockRetrieval) Query(context.Context, string, string, int) (domain.RetrievalResult, error) {
	return nil, m.err
}

func (m *mockRetrieval) RetrieveContext(_ context.Context, collection, query string, k int) (string, error) {
	m.collection, m.query, m.k = collection, query, k
	return m.text, m.err
}

func (m *mockRetrieval) Collections(context.Context) ([]domain.CollectionInfo, error) {
	return nil, m.err
}

// scriptedChatModel implements driven.ChatModel by replaying turns.
type scriptedChatModel struct {
	turns     []scriptedTurn
	calls     int
	streamErr error
	seen      [][]domain.Message
	seenTools [][]domain.ToolSpec
}

type scriptedTurn struct {
	deltas    []string
	toolCalls []domain.ToolCall
	err       error
}

func (m *scriptedChatModel) Stream(
	_ context.Context, messages []domain.Message, tools []domain.ToolSpec,
) (driven.ChatStream, error) {
	if m.streamErr != nil {
		return nil, m.streamErr
	}
	m.seen = append(m.seen, messages)
	m.seenTools = append(m.seenTools, tools)

	turn := m.turns[len(m.turns)-1]
	if m.calls < len(m.turns) {
		turn = m.turns[m.calls]
	}
	m.calls++
	return &scriptedStream{turn: turn, pos: -1}, nil
}

func (m *scriptedChatModel) ModelName() string { return "scripted" }
func (m *scriptedChatModel) Ping(context.Context) error { return nil }
func (m *scriptedChatModel) Close() error { return nil }

type scriptedStream struct {
	turn   scriptedTurn
	pos    int
	closed bool
}

func (s *scriptedStream) Next() bool {
	if s.pos+1 >= len(s.turn.deltas) {
		return false
	}
	s.pos++
	return true
}

func (s *scriptedStream) Delta() string { return s.turn.deltas[s.pos] }

func (s *scriptedStream) Message() domain.Message {
	content := ""
	for _, d := range s.turn.deltas {
		content += d
	}
	return domain.Message{Role: domain.RoleAssistant, Content: content, ToolCalls: s.turn.toolCalls}
}

func (s *scriptedStream) Err() error { return s.turn.err }

func (s *scriptedStream) Close() error {
	s.closed = true
	return nil
}
