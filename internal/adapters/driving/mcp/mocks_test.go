package mcp

import (
	"context"

	"github.com/custodia-labs/sitechat/internal/core/domain"
)

// mockRetrievalService is a mock implementation of driving.RetrievalService.
type mockRetrievalService struct {
	context     string
	result      domain.RetrievalResult
	collections []domain.CollectionInfo
	err         error

	gotCollection string
	gotQuery      string
	gotK          int
}

func (m *mockRetrievalService) Query(
	_ context.Context, collection, query string, k int,
) (domain.RetrievalResult, error) {
	m.gotCollection, m.gotQuery, m.gotK = collection, query, k
	return m.result, m.err
}

func (m *mockRetrievalService) RetrieveContext(_ context.Context, collection, query string, k int) (string, error) {
	m.gotCollection, m.gotQuery, m.gotK = collection, query, k
	return m.context, m.err
}

func (m *mockRetrievalService) Collections(_ context.Context) ([]domain.CollectionInfo, error) {
	return m.collections, m.err
}

// mockIngestService is a mock implementation of driving.IngestService.
type mockIngestService struct {
	outcome domain.IngestOutcome
	err     error

	gotCollection string
	gotLocator    string
}

func (m *mockIngestService) Load(_ context.Context, collection, locator string) (domain.IngestOutcome, error) {
	m.gotCollection, m.gotLocator = collection, locator
	return m.outcome, m.err
}

func (m *mockIngestService) Ingest(_ context.Context, _ string, _ []domain.Chunk) (domain.IngestOutcome, error) {
	return m.outcome, m.err
}

func (m *mockIngestService) Drop(_ context.Context, _ string) error {
	return m.err
}
