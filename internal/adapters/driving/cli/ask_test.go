package cli

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAskCmd_Use(t *testing.T) {
	assert.Equal(t, "ask [question]", askCmd.Use)
}

func TestAskCmd_Short(t *testing.T) {
	assert.Equal(t, "Ask a one-shot question about your sites", askCmd.Short)
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

func TestAskCmd_StreamsAnswer(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"ask", "how do I install the widget?"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "The widget is installed with the setup script.")
}

func TestAskCmd_ServiceNotConfigured(t *testing.T) {
	oldService := chatService
	chatService = nil
	defer func() {
		chatService = oldService
	}()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"ask", "anyone there?"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "chat service not configured")
	assert.Contains(t, err.Error(), envOpenAIKey)
}

func TestAskCmd_StreamError(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	chatService = &mockChatServiceError{}

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"ask", "how do I install the widget?"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "answer failed")
	assert.Contains(t, err.Error(), "completion provider unavailable")
}

func TestAskCmd_WithContext(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"ask", "--context", "how do I install the widget?"})
	defer func() {
		askShowContext = false
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "The widget is installed with the setup script.")
	assert.Contains(t, buf.String(), "Sources:")
	assert.Contains(t, buf.String(), "[1] Example Docs: Getting Started (0.91)")
	assert.Contains(t, buf.String(), "[2] Internal Runbook (0.64)")
}

func TestAskCmd_JSON(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"ask", "--json", "how do I install the widget?"})
	defer func() {
		askJSON = false
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	require.NoError(t, err)

	var out answerOutput
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	assert.Equal(t, "The widget is installed with the setup script.", out.Answer)
	assert.False(t, out.NeedsIngest)
	require.Len(t, out.Context, 2)
	assert.Equal(t, "Example Docs: Getting Started", out.Context[0].Title)
	assert.Equal(t, "crawled", out.Context[0].Origin)
	assert.Equal(t, 2, out.Context[0].KeywordHits)
}
