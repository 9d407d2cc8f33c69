package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prescribewise/prescribewise-cli/internal/core/domain"
)

func TestAskCmd_Use(t *testing.T) {
	assert.Equal(t, "ask [question]", askCmd.Use)
}

func TestAskCmd_RequiresExactlyOneArg(t *testing.T) {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"ask"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg(s)")
}

func TestAskCmd_GroundedAnswer(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"ask", "first line for otitis media?"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "Amoxicillin is the first-line choice.")
	assert.Contains(t, buf.String(), "Sources:")
	assert.Contains(t, buf.String(), "[1] pages 45-46 (0.88)")
}

func TestAskCmd_UngroundedAnswer(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	askService = &mockAskService{
		answer: domain.Ungrounded("no passage in the guideline scored above the relevance floor"),
	}

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"ask", "dosing for moon fever?"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "does not cover this question")
	assert.Contains(t, buf.String(), "relevance floor")
	assert.NotContains(t, buf.String(), "Sources:")
}

func TestAskCmd_JSONOutput(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"ask", "--json", "first line for otitis media?"})
	defer func() {
		rootCmd.SetArgs(nil)
		askJSON = false // Reset flag
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "\"grounded\": true")
	assert.Contains(t, buf.String(), "\"pages\": \"45-46\"")
}

func TestAskCmd_BuildsIndexWhenNotReady(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	ingest := &mockIngestService{}
	ingestService = ingest

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"ask", "first line for otitis media?"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Equal(t, 1, ingest.buildCalls)
	assert.Contains(t, buf.String(), "Indexing")
}

func TestAskCmd_SkipsBuildWhenReady(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	ingest := ingestService.(*mockIngestService)

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"ask", "first line for otitis media?"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Equal(t, 0, ingest.buildCalls)
	assert.NotContains(t, buf.String(), "Indexing")
}

func TestAskCmd_ServiceNotConfigured(t *testing.T) {
	oldService := askService
	askService = nil
	defer func() {
		askService = oldService
	}()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"ask", "test"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "ask service not configured")
}

func TestAskCmd_ServiceError(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	askService = &mockAskServiceError{}

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"ask", "test"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "ask failed")
}
