// Package mcp provides an MCP (Model Context Protocol) server adapter for
// PrescribeWise. It lets AI assistants ask grounded questions against the
// configured clinical guideline.
package mcp

import "errors"

// ErrMissingAskService is returned when the ask service is not provided.
var ErrMissingAskService = errors.New("mcp: ask service is required")
