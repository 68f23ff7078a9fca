package perception

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"daimon/internal/registry"
)

func testDaimon(t *testing.T, name string) registry.Daimon {
	t.Helper()
	d, ok := registry.Lookup(name)
	require.True(t, ok)
	return d
}

func TestGenerativeInvokePayload(t *testing.T) {
	var captured generativeRequest
	var capturedPath string
	var capturedKey string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		capturedPath = r.URL.Path
		capturedKey = r.Header.Get("x-goog-api-key")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		json.NewEncoder(w).Encode(generativeResponse{
			Candidates: []generativeCandidate{{
				Content: generativeResponseContent{
					Parts: []generativeResponsePart{{Text: "the light answers"}},
				},
			}},
		})
	}))
	defer server.Close()

	client := NewGenerativeClientWithConfig(GenerativeConfig{
		APIKey:  "test-key",
		BaseURL: server.URL,
	})

	imgBytes := []byte{0xFF, 0xD8, 0xFF}
	result, err := client.Invoke(context.Background(), Invocation{
		Daimon:        testDaimon(t, "flash"),
		Prompt:        "What is light?",
		ContextImages: []ImagePart{{MIME: "image/jpeg", Data: imgBytes}},
	})
	require.NoError(t, err)
	assert.Equal(t, "the light answers", result.Text)
	assert.Empty(t, result.Images)

	assert.Equal(t, "/models/gemini-3-flash-preview:generateContent", capturedPath)
	assert.Equal(t, "test-key", capturedKey)

	// Image parts come first, in chronological order, then one text part.
	require.Len(t, captured.Contents, 1)
	parts := captured.Contents[0].Parts
	require.Len(t, parts, 2)
	require.NotNil(t, parts[0].InlineData)
	assert.Equal(t, "image/jpeg", parts[0].InlineData.MIMEType)
	assert.Equal(t, base64.StdEncoding.EncodeToString(imgBytes), parts[0].InlineData.Data)

	// Text part carries persona, memory note, and prompt.
	assert.Contains(t, parts[1].Text, "You are Flash.")
	assert.Contains(t, parts[1].Text, "(You see 1 frames of our visual narrative.)")
	assert.Contains(t, parts[1].Text, "What is light?")

	// Non-rendering daimon requests text only.
	assert.Equal(t, []string{"TEXT"}, captured.GenerationConfig.ResponseModalities)
	assert.InDelta(t, 0.7, captured.GenerationConfig.Temperature, 0.001)
	assert.Equal(t, 8192, captured.GenerationConfig.MaxOutputTokens)
}

func TestGenerativeInvokeRenderModalities(t *testing.T) {
	var captured generativeRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		json.NewEncoder(w).Encode(generativeResponse{
			Candidates: []generativeCandidate{{
				Content: generativeResponseContent{
					Parts: []generativeResponsePart{
						{Text: "behold"},
						{InlineData: &generativeInlineData{MIMEType: "image/jpeg", Data: "aW1nMQ=="}},
						{Text: " the bridge"},
						{InlineData: &generativeInlineData{MIMEType: "image/jpeg", Data: "aW1nMg=="}},
					},
				},
			}},
		})
	}))
	defer server.Close()

	client := NewGenerativeClientWithConfig(GenerativeConfig{APIKey: "k", BaseURL: server.URL})

	result, err := client.Invoke(context.Background(), Invocation{
		Daimon:      testDaimon(t, "dreamer"),
		Prompt:      "A bridge between worlds",
		RenderImage: true,
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"TEXT", "IMAGE"}, captured.GenerationConfig.ResponseModalities)

	// Every text part accumulates; every inline image is collected.
	assert.Equal(t, "behold the bridge", result.Text)
	assert.Equal(t, []string{"aW1nMQ==", "aW1nMg=="}, result.Images)
}

func TestGenerativeInvokeRenderRequiresCapability(t *testing.T) {
	var captured generativeRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		json.NewEncoder(w).Encode(generativeResponse{
			Candidates: []generativeCandidate{{
				Content: generativeResponseContent{
					Parts: []generativeResponsePart{{Text: "words only"}},
				},
			}},
		})
	}))
	defer server.Close()

	client := NewGenerativeClientWithConfig(GenerativeConfig{APIKey: "k", BaseURL: server.URL})

	// flash cannot render; the render flag must not widen modalities
	_, err := client.Invoke(context.Background(), Invocation{
		Daimon:      testDaimon(t, "flash"),
		Prompt:      "render something",
		RenderImage: true,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"TEXT"}, captured.GenerationConfig.ResponseModalities)
}

func TestGenerativeInvokeErrors(t *testing.T) {
	t.Run("non-200 status", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, `{"error":{"code":429,"message":"quota"}}`, http.StatusTooManyRequests)
		}))
		defer server.Close()

		client := NewGenerativeClientWithConfig(GenerativeConfig{APIKey: "k", BaseURL: server.URL})
		_, err := client.Invoke(context.Background(), Invocation{Daimon: testDaimon(t, "pro"), Prompt: "x"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "status 429")
	})

	t.Run("empty candidates", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(generativeResponse{})
		}))
		defer server.Close()

		client := NewGenerativeClientWithConfig(GenerativeConfig{APIKey: "k", BaseURL: server.URL})
		_, err := client.Invoke(context.Background(), Invocation{Daimon: testDaimon(t, "pro"), Prompt: "x"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no candidates")
	})

	t.Run("missing key", func(t *testing.T) {
		client := NewGenerativeClientWithConfig(GenerativeConfig{BaseURL: "http://unused"})
		_, err := client.Invoke(context.Background(), Invocation{Daimon: testDaimon(t, "pro"), Prompt: "x"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "API key not configured")
	})
}

func TestMessagesInvokePayload(t *testing.T) {
	var captured messagesRequest
	var version, key string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		version = r.Header.Get("anthropic-version")
		key = r.Header.Get("x-api-key")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		json.NewEncoder(w).Encode(messagesResponse{
			Content: []messagesContentBlock{
				{Type: "text", Text: "the load "},
				{Type: "text", Text: "is on"},
			},
		})
	}))
	defer server.Close()

	client := NewMessagesClientWithConfig(MessagesConfig{APIKey: "ak", BaseURL: server.URL})

	imgBytes := []byte{0x89, 0x50, 0x4E, 0x47}
	result, err := client.Invoke(context.Background(), Invocation{
		Daimon:        testDaimon(t, "opus"),
		Prompt:        "cd into .hidden_truths",
		ContextImages: []ImagePart{{MIME: "image/png", Data: imgBytes}},
	})
	require.NoError(t, err)
	assert.Equal(t, "the load is on", result.Text)
	assert.Empty(t, result.Images)

	assert.Equal(t, "2023-06-01", version)
	assert.Equal(t, "ak", key)

	assert.Equal(t, "claude-3-opus-20240229", captured.Model)
	assert.Equal(t, 2048, captured.MaxTokens)
	assert.Contains(t, captured.System, "Assistant is in a CLI mood today")

	require.Len(t, captured.Messages, 1)
	content := captured.Messages[0].Content
	require.Len(t, content, 2)

	assert.Equal(t, "image", content[0].Type)
	require.NotNil(t, content[0].Source)
	assert.Equal(t, "base64", content[0].Source.Type)
	assert.Equal(t, "image/png", content[0].Source.MediaType)
	assert.Equal(t, base64.StdEncoding.EncodeToString(imgBytes), content[0].Source.Data)

	assert.Equal(t, "text", content[1].Type)
	assert.Contains(t, content[1].Text, "(You see 1 frames of our visual narrative.)")
	assert.Contains(t, content[1].Text, "cd into .hidden_truths")
}

func TestMessagesMaxTokensByModelClass(t *testing.T) {
	assert.Equal(t, 2048, maxTokensForModel("claude-3-opus-20240229"))
	assert.Equal(t, 1024, maxTokensForModel("claude-3-sonnet-20240229"))
	assert.Equal(t, 1024, maxTokensForModel("claude-3-haiku-20240307"))
}

func TestMessagesInvokeErrors(t *testing.T) {
	t.Run("non-200 status", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, `{"error":{"type":"overloaded_error","message":"busy"}}`, http.StatusServiceUnavailable)
		}))
		defer server.Close()

		client := NewMessagesClientWithConfig(MessagesConfig{APIKey: "k", BaseURL: server.URL})
		_, err := client.Invoke(context.Background(), Invocation{Daimon: testDaimon(t, "opus"), Prompt: "x"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "status 503")
	})

	t.Run("missing key", func(t *testing.T) {
		client := NewMessagesClientWithConfig(MessagesConfig{BaseURL: "http://unused"})
		_, err := client.Invoke(context.Background(), Invocation{Daimon: testDaimon(t, "opus"), Prompt: "x"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "API key not configured")
	})
}
