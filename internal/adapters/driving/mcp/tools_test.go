package mcp

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prescribewise/prescribewise-cli/internal/core/domain"
)

func TestServer_handleAsk(t *testing.T) {
	ctx := context.Background()

	t.Run("returns grounded answer with citations", func(t *testing.T) {
		mockAsk := &mockAskService{
			answer: domain.Answer{
				Grounded: true,
				Text:     "Amoxicillin is first line.",
				Sources: []domain.Source{
					{Index: 1, Pages: []int{45, 46}, Score: 0.88},
					{Index: 2, Pages: []int{102}, Score: 0.74},
				},
			},
		}

		server, err := NewServer(&Ports{Ask: mockAsk})
		require.NoError(t, err)

		_, output, err := server.handleAsk(ctx, nil, AskInput{Question: "first line for otitis media?"})

		require.NoError(t, err)
		assert.True(t, output.Grounded)
		assert.Equal(t, "Amoxicillin is first line.", output.Answer)
		assert.Empty(t, output.Reason)
		require.Len(t, output.Sources, 2)
		assert.Equal(t, 1, output.Sources[0].Index)
		assert.Equal(t, "45-46", output.Sources[0].Pages)
		assert.Equal(t, 0.88, output.Sources[0].Score)
		assert.Equal(t, "102", output.Sources[1].Pages)
		assert.Equal(t, "first line for otitis media?", mockAsk.lastQuestion)
	})

	t.Run("surfaces ungrounded outcome instead of fabricating", func(t *testing.T) {
		mockAsk := &mockAskService{
			answer: domain.Ungrounded("no passage scored above the relevance floor"),
		}

		server, err := NewServer(&Ports{Ask: mockAsk})
		require.NoError(t, err)

		_, output, err := server.handleAsk(ctx, nil, AskInput{Question: "dosing for moon fever?"})

		require.NoError(t, err)
		assert.False(t, output.Grounded)
		assert.Empty(t, output.Answer)
		assert.Contains(t, output.Reason, "relevance floor")
		assert.Empty(t, output.Sources)
	})

	t.Run("wraps index-not-ready errors", func(t *testing.T) {
		mockAsk := &mockAskService{err: domain.ErrIndexNotBuilt}

		server, err := NewServer(&Ports{Ask: mockAsk})
		require.NoError(t, err)

		_, _, err = server.handleAsk(ctx, nil, AskInput{Question: "anything"})

		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrIndexNotBuilt)
		assert.Contains(t, err.Error(), "not ready")
	})

	t.Run("returns error on ask failure", func(t *testing.T) {
		mockAsk := &mockAskService{err: errors.New("generation failed")}

		server, err := NewServer(&Ports{Ask: mockAsk})
		require.NoError(t, err)

		_, _, err = server.handleAsk(ctx, nil, AskInput{Question: "anything"})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "generation failed")
	})
}

func TestServer_handleSearch(t *testing.T) {
	ctx := context.Background()

	t.Run("returns retrieved passages", func(t *testing.T) {
		mockRetrieval := &mockRetrievalService{
			results: []domain.SearchResult{
				{
					Chunk: domain.Chunk{ID: 7, Text: "Give amoxicillin 500 mg", Pages: []int{45}},
					Score: 0.91,
				},
			},
		}

		server, err := NewServer(&Ports{Ask: &mockAskService{}, Retrieval: mockRetrieval})
		require.NoError(t, err)

		_, output, err := server.handleSearch(ctx, nil, SearchInput{Query: "amoxicillin", Limit: 3})

		require.NoError(t, err)
		assert.Equal(t, 1, output.Count)
		require.Len(t, output.Results, 1)
		assert.Equal(t, 7, output.Results[0].ChunkID)
		assert.Equal(t, "45", output.Results[0].Pages)
		assert.Equal(t, 0.91, output.Results[0].Score)
		assert.Equal(t, "Give amoxicillin 500 mg", output.Results[0].Text)
		assert.Equal(t, 3, mockRetrieval.lastK)
	})

	t.Run("default limit is 5", func(t *testing.T) {
		mockRetrieval := &mockRetrievalService{}

		server, err := NewServer(&Ports{Ask: &mockAskService{}, Retrieval: mockRetrieval})
		require.NoError(t, err)

		_, output, err := server.handleSearch(ctx, nil, SearchInput{Query: "test"})

		require.NoError(t, err)
		assert.Equal(t, 0, output.Count)
		assert.Equal(t, 5, mockRetrieval.lastK)
	})

	t.Run("returns error on retrieval failure", func(t *testing.T) {
		mockRetrieval := &mockRetrievalService{err: domain.ErrIndexNotBuilt}

		server, err := NewServer(&Ports{Ask: &mockAskService{}, Retrieval: mockRetrieval})
		require.NoError(t, err)

		_, _, err = server.handleSearch(ctx, nil, SearchInput{Query: "test"})

		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrIndexNotBuilt)
	})
}
