package mcp

import (
	"context"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/prescribewise/prescribewise-cli/internal/core/domain"
)

// AskInput is the input schema for the ask tool.
type AskInput struct {
	Question string `json:"question" jsonschema:"the clinical question to answer from the guideline"`
}

// AskOutput is the output schema for the ask tool.
type AskOutput struct {
	Grounded bool           `json:"grounded"`
	Answer   string         `json:"answer,omitempty"`
	Reason   string         `json:"reason,omitempty"`
	Sources  []SourceOutput `json:"sources,omitempty"`
}

// SourceOutput is one citation backing an answer.
type SourceOutput struct {
	Index int     `json:"index"`
	Pages string  `json:"pages"`
	Score float64 `json:"score"`
}

// SearchInput is the input schema for the search tool.
type SearchInput struct {
	Query string `json:"query" jsonschema:"the query to match against guideline passages"`
	Limit int    `json:"limit,omitempty" jsonschema:"maximum number of passages to return (default 5)"`
}

// SearchOutput is the output schema for the search tool.
type SearchOutput struct {
	Results []SearchResultOutput `json:"results"`
	Count   int                  `json:"count"`
}

// SearchResultOutput represents a single retrieved passage.
type SearchResultOutput struct {
	ChunkID int     `json:"chunk_id"`
	Pages   string  `json:"pages"`
	Score   float64 `json:"score"`
	Text    string  `json:"text"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ask",
		Description: "Answer a clinical question from the configured antibiotic guideline, with page citations",
	}, s.handleAsk)

	if s.ports.Retrieval != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "search",
			Description: "Retrieve guideline passages most similar to a query, without answer generation",
		}, s.handleSearch)
	}
}

// handleAsk handles the ask tool invocation.
func (s *Server) handleAsk(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AskInput,
) (*mcp.CallToolResult, AskOutput, error) {
	answer, err := s.ports.Ask.Ask(ctx, input.Question)
	if err != nil {
		if errors.Is(err, domain.ErrIndexNotBuilt) || errors.Is(err, domain.ErrBuildInProgress) {
			return nil, AskOutput{}, fmt.Errorf("guideline index not ready: %w", err)
		}
		return nil, AskOutput{}, err
	}

	output := AskOutput{
		Grounded: answer.Grounded,
		Answer:   answer.Text,
		Reason:   answer.Reason,
	}
	for _, src := range answer.Sources {
		output.Sources = append(output.Sources, SourceOutput{
			Index: src.Index,
			Pages: src.PageLabel(),
			Score: src.Score,
		})
	}

	return nil, output, nil
}

// handleSearch handles the search tool invocation.
func (s *Server) handleSearch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchInput,
) (*mcp.CallToolResult, SearchOutput, error) {
	limit := input.Limit
	if limit <= 0 {
		limit = 5
	}

	results, err := s.ports.Retrieval.Retrieve(ctx, input.Query, limit)
	if err != nil {
		return nil, SearchOutput{}, err
	}

	output := SearchOutput{
		Results: make([]SearchResultOutput, len(results)),
		Count:   len(results),
	}

	for i := range results {
		output.Results[i] = SearchResultOutput{
			ChunkID: results[i].Chunk.ID,
			Pages:   results[i].Chunk.PageLabel(),
			Score:   results[i].Score,
			Text:    results[i].Chunk.Text,
		}
	}

	return nil, output, nil
}
