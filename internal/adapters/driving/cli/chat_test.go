package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChatCmd_Use(t *testing.T) {
	assert.Equal(t, "chat", chatCmd.Use)
}

func TestChatCmd_AnswersAndExits(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetIn(strings.NewReader("first line for otitis media?\nexit\n"))
	rootCmd.SetArgs([]string{"chat"})
	defer func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "Amoxicillin is the first-line choice.")
	assert.Contains(t, buf.String(), "[1] pages 45-46 (0.88)")
}

func TestChatCmd_BlankLinesAreIgnored(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetIn(strings.NewReader("\n   \nquit\n"))
	rootCmd.SetArgs([]string{"chat"})
	defer func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.NotContains(t, buf.String(), "Error:")
}

func TestChatCmd_TurnErrorKeepsSessionAlive(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	askService = &mockAskServiceError{}

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetIn(strings.NewReader("anything\nexit\n"))
	rootCmd.SetArgs([]string{"chat"})
	defer func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
	}()

	err := rootCmd.Execute()

	// The failed turn is reported but the command still exits cleanly.
	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "Error:")
	assert.Contains(t, buf.String(), "mock ask error")
}

func TestChatCmd_EOFEndsSession(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetIn(strings.NewReader(""))
	rootCmd.SetArgs([]string{"chat"})
	defer func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
}

func TestChatCmd_ServiceNotConfigured(t *testing.T) {
	oldService := askService
	askService = nil
	defer func() {
		askService = oldService
	}()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"chat"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "ask service not configured")
}
