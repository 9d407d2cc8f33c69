package cli

import (
	"context"
	"errors"

	"github.com/prescribewise/prescribewise-cli/internal/core/domain"
	"github.com/prescribewise/prescribewise-cli/internal/core/ports/driving"
)

// mockAskService returns a canned grounded answer.
type mockAskService struct {
	answer domain.Answer
	err    error
}

func (m *mockAskService) Ask(_ context.Context, _ string) (domain.Answer, error) {
	return m.answer, m.err
}

// mockRetrievalService returns canned retrieval results.
type mockRetrievalService struct {
	results []domain.SearchResult
	err     error
	lastK   int
}

func (m *mockRetrievalService) Retrieve(_ context.Context, _ string, k int) ([]domain.SearchResult, error) {
	m.lastK = k
	return m.results, m.err
}

// mockIngestService reports a ready index by default.
type mockIngestService struct {
	status      driving.BuildStatus
	buildErr    error
	buildCalls  int
	invalidated int
}

func (m *mockIngestService) Build(_ context.Context) error {
	m.buildCalls++
	if m.buildErr == nil {
		m.status.Ready = true
	}
	return m.buildErr
}

func (m *mockIngestService) Invalidate() {
	m.invalidated++
	m.status.Ready = false
}

func (m *mockIngestService) Status() driving.BuildStatus {
	return m.status
}

// mockAskServiceError always fails.
type mockAskServiceError struct{}

func (m *mockAskServiceError) Ask(_ context.Context, _ string) (domain.Answer, error) {
	return domain.Answer{}, errors.New("mock ask error")
}

// setupTestServices installs mock services and returns a cleanup that
// restores the previous wiring.
func setupTestServices() func() {
	oldAsk := askService
	oldRetrieval := retrievalService
	oldIngest := ingestService
	oldSettings := settings

	settings = domain.DefaultAppSettings()
	settings.Document.Path = "/tmp/guideline.pdf"

	askService = &mockAskService{
		answer: domain.Answer{
			Grounded: true,
			Text:     "Amoxicillin is the first-line choice.",
			Sources: []domain.Source{
				{Index: 1, Pages: []int{45, 46}, Score: 0.88, Text: "chunk text"},
			},
		},
	}
	retrievalService = &mockRetrievalService{
		results: []domain.SearchResult{
			{
				Chunk: domain.Chunk{ID: 3, Text: "Give amoxicillin 500 mg three times daily", Pages: []int{45}},
				Score: 0.91,
			},
		},
	}
	ingestService = &mockIngestService{
		status: driving.BuildStatus{Ready: true, Pages: 312, TotalChunks: 540},
	}

	return func() {
		askService = oldAsk
		retrievalService = oldRetrieval
		ingestService = oldIngest
		settings = oldSettings
	}
}
