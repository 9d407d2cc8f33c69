package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// uriScheme is the custom URI scheme for PrescribeWise resources.
const uriScheme = "prescribewise://"

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "document",
		Name:        "document",
		Description: "The configured guideline document and its index status",
		MIMEType:    "application/json",
	}, s.handleDocumentResource)
}

// documentInfo is the serialized shape of the document resource.
type documentInfo struct {
	Title          string `json:"title"`
	Path           string `json:"path"`
	IndexReady     bool   `json:"index_ready"`
	BuildRunning   bool   `json:"build_running"`
	Pages          int    `json:"pages,omitempty"`
	TotalChunks    int    `json:"total_chunks,omitempty"`
	EmbeddedChunks int    `json:"embedded_chunks,omitempty"`
}

// handleDocumentResource returns the guideline document metadata and index
// build status.
func (s *Server) handleDocumentResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	info := documentInfo{
		Title: s.ports.Document.Title,
		Path:  s.ports.Document.Path,
	}

	if s.ports.Ingest != nil {
		status := s.ports.Ingest.Status()
		info.IndexReady = status.Ready
		info.BuildRunning = status.Running
		info.Pages = status.Pages
		info.TotalChunks = status.TotalChunks
		info.EmbeddedChunks = status.EmbeddedChunks
	}

	data, err := json.MarshalIndent(info, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling document info: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}
