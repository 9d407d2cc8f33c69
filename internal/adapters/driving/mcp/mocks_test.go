package mcp

import (
	"context"

	"github.com/prescribewise/prescribewise-cli/internal/core/domain"
	"github.com/prescribewise/prescribewise-cli/internal/core/ports/driving"
)

// mockAskService is a mock implementation of driving.AskService.
type mockAskService struct {
	answer       domain.Answer
	err          error
	lastQuestion string
}

func (m *mockAskService) Ask(_ context.Context, question string) (domain.Answer, error) {
	m.lastQuestion = question
	return m.answer, m.err
}

// mockRetrievalService is a mock implementation of driving.RetrievalService.
type mockRetrievalService struct {
	results []domain.SearchResult
	err     error
	lastK   int
}

func (m *mockRetrievalService) Retrieve(_ context.Context, _ string, k int) ([]domain.SearchResult, error) {
	m.lastK = k
	return m.results, m.err
}

// mockIngestService is a mock implementation of driving.IngestService.
type mockIngestService struct {
	status      driving.BuildStatus
	buildErr    error
	invalidated int
}

func (m *mockIngestService) Build(_ context.Context) error {
	return m.buildErr
}

func (m *mockIngestService) Invalidate() {
	m.invalidated++
}

func (m *mockIngestService) Status() driving.BuildStatus {
	return m.status
}
