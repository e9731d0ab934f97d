package cli

import (
	"bytes"
	"context"
	"time"

	"github.com/custodia-labs/sitechat/internal/core/domain"
)

// mockSettingsService implements driving.SettingsService for testing.
type mockSettingsService struct {
	settings *domain.Settings
	setKey   string
	setValue string
	setErr   error
	saved    *domain.Settings
}

func newMockSettingsService() *mockSettingsService {
	s := domain.DefaultSettings()
	return &mockSettingsService{settings: &s}
}

func (m *mockSettingsService) Get() (*domain.Settings, error) {
	s := *m.settings
	return &s, nil
}

func (m *mockSettingsService) Save(settings *domain.Settings) error {
	m.saved = settings
	m.settings = settings
	return nil
}

func (m *mockSettingsService) Set(key, value string) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.setKey, m.setValue = key, value
	return nil
}

func (m *mockSettingsService) Keys() []string {
	return []string{"embedding.provider", "chunking.size", "retrieval.k"}
}

// mockValidator implements driven.AIConfigValidator for testing.
type mockValidator struct {
	embedErr error
	llmErr   error
}

func (m *mockValidator) ValidateEmbedding(context.Context, *domain.EmbeddingSettings) error {
	return m.embedErr
}

func (m *mockValidator) ValidateLLM(context.Context, *domain.LLMSettings) error {
	return m.llmErr
}

// mockIngestService implements driving.IngestService for testing.
type mockIngestService struct {
	LoadFunc   func(ctx context.Context, collection, locator string) (domain.IngestOutcome, error)
	dropped    string
	loadCalls  int
	lastTarget string
}

func (m *mockIngestService) Load(ctx context.Context, collection, locator string) (domain.IngestOutcome, error) {
	m.loadCalls++
	m.lastTarget = collection
	if m.LoadFunc != nil {
		return m.LoadFunc(ctx, collection, locator)
	}
	return domain.Ingested(4), nil
}

func (m *mockIngestService) Ingest(_ context.Context, _ string, chunks []domain.Chunk) (domain.IngestOutcome, error) {
	return domain.Ingested(len(chunks)), nil
}

func (m *mockIngestService) Drop(_ context.Context, collection string) error {
	m.dropped = collection
	return nil
}

// mockRetrievalService implements driving.RetrievalService for testing.
type mockRetrievalService struct {
	lastK          int
	lastCollection string
	infos          []domain.CollectionInfo
}

func (m *mockRetrievalService) Query(_ context.Context, collection, query string, k int) (domain.RetrievalResult, error) {
	m.lastK, m.lastCollection = k, collection
	return domain.RetrievalResult{
		{Chunk: domain.Chunk{Locator: "https://example.com", Index: 2, Text: "about " + query}, Score: 0.9},
	}, nil
}

func (m *mockRetrievalService) RetrieveContext(_ context.Context, collection, query string, k int) (string, error) {
	m.lastK, m.lastCollection = k, collection
	return "Relevant context for '" + query + "':\n\n[1] passage", nil
}

func (m *mockRetrievalService) Collections(_ context.Context) ([]domain.CollectionInfo, error) {
	return m.infos, nil
}

// mockAgent implements driving.Agent for testing.
type mockAgent struct {
	AskFunc func(ctx context.Context, conv *domain.Conversation, question string, onDelta func(string)) (string, error)
}

func (m *mockAgent) Ask(
	ctx context.Context, conv *domain.Conversation, question string, onDelta func(string),
) (string, error) {
	if m.AskFunc != nil {
		return m.AskFunc(ctx, conv, question, onDelta)
	}
	if onDelta != nil {
		onDelta("It is ")
		onDelta("an example.")
	}
	return "It is an example.", nil
}

// testServices holds the mocks installed by setupTestServices.
type testServices struct {
	settings  *mockSettingsService
	ingest    *mockIngestService
	retrieval *mockRetrievalService
	agent     *mockAgent
}

// setupTestServices installs mocks for every service and returns a cleanup
// function that restores the previous state.
func setupTestServices() (*testServices, func()) {
	prevSettings, prevIngest, prevRetrieval := settingsService, ingestService, retrievalService
	prevAgent, prevPrompt, prevModel := agentService, systemPrompt, chatModelName
	prevBootstrap, prevValidator := bootstrap, configValidator

	infos := []domain.CollectionInfo{
		{
			Collection: domain.Collection{
				Name:           "generic_info",
				EmbeddingModel: "text-embedding-3-large",
				CreatedAt:      time.Date(2026, 1, 2, 3, 4, 0, 0, time.UTC),
			},
			Count: 12,
		},
	}
	ts := &testServices{
		settings:  newMockSettingsService(),
		ingest:    &mockIngestService{},
		retrieval: &mockRetrievalService{infos: infos},
		agent:     &mockAgent{},
	}

	settingsService = ts.settings
	ingestService = ts.ingest
	retrievalService = ts.retrieval
	agentService = ts.agent
	systemPrompt = "test prompt"
	chatModelName = "gpt-4o"
	bootstrap = nil

	return ts, func() {
		settingsService, ingestService, retrievalService = prevSettings, prevIngest, prevRetrieval
		agentService, systemPrompt, chatModelName = prevAgent, prevPrompt, prevModel
		bootstrap, configValidator = prevBootstrap, prevValidator
		closeServices = nil
		resetFlags()
	}
}

// resetFlags clears flag values that persist between Execute calls.
func resetFlags() {
	collectionFlag = ""
	dataDir = ""
	verbose = false
	ephemeral = false
	queryK = 0
	queryJSON = false
	askNoLoad = false
	for _, name := range []string{"k", "json"} {
		if f := queryCmd.Flags().Lookup(name); f != nil {
			f.Changed = false
		}
	}
	if f := askCmd.Flags().Lookup("no-load"); f != nil {
		f.Changed = false
	}
	for _, name := range []string{"collection", "data-dir", "verbose", "ephemeral"} {
		if f := rootCmd.PersistentFlags().Lookup(name); f != nil {
			f.Changed = false
		}
	}
}

// execute runs the root command with args, capturing stdout and stderr.
func execute(args ...string) (string, string, error) {
	stdout, stderr := new(bytes.Buffer), new(bytes.Buffer)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)
	rootCmd.SetArgs(args)
	defer func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
	}()

	err := rootCmd.Execute()
	return stdout.String(), stderr.String(), err
}
