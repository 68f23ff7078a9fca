package perception

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"daimon/internal/logging"
)

const defaultMessagesBaseURL = "https://api.anthropic.com/v1"

// MessagesClient speaks the messages protocol: one user message whose content
// is each context image as a base64 block followed by one text block; the
// persona travels in the system field.
type MessagesClient struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	mu         sync.Mutex
	lastRequest time.Time
}

// DefaultMessagesConfig returns sensible defaults.
func DefaultMessagesConfig(apiKey string) MessagesConfig {
	return MessagesConfig{
		APIKey:  apiKey,
		BaseURL: defaultMessagesBaseURL,
		Timeout: 2,
	}
}

// NewMessagesClient creates a messages client with defaults.
func NewMessagesClient(apiKey string) *MessagesClient {
	return NewMessagesClientWithConfig(DefaultMessagesConfig(apiKey))
}

// NewMessagesClientWithConfig creates a messages client.
func NewMessagesClientWithConfig(config MessagesConfig) *MessagesClient {
	baseURL := strings.TrimRight(config.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultMessagesBaseURL
	}
	timeout := config.Timeout
	if timeout <= 0 {
		timeout = 2
	}
	return &MessagesClient{
		apiKey:  config.APIKey,
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: time.Duration(timeout) * time.Minute,
		},
	}
}

// maxTokensForModel derives the output budget from the model class.
func maxTokensForModel(model string) int {
	if strings.Contains(strings.ToLower(model), "opus") {
		return 2048
	}
	return 1024
}

// Invoke sends one invocation. The messages backend never renders images;
// RenderImage is ignored here.
func (c *MessagesClient) Invoke(ctx context.Context, inv Invocation) (*Result, error) {
	// Auto-apply timeout if context has no deadline (centralized timeout handling)
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.httpClient.Timeout)
		defer cancel()
	}

	startTime := time.Now()
	logging.PerceptionDebug("[Messages] Invoke: daimon=%s model=%s context_images=%d prompt_len=%d",
		inv.Daimon.Name, inv.Daimon.Model, len(inv.ContextImages), len(inv.Prompt))

	if c.apiKey == "" {
		logging.PerceptionError("[Messages] Invoke: API key not configured")
		return nil, fmt.Errorf("API key not configured")
	}

	// Rate limiting
	c.mu.Lock()
	elapsed := time.Since(c.lastRequest)
	if elapsed < 100*time.Millisecond {
		time.Sleep(100*time.Millisecond - elapsed)
	}
	c.lastRequest = time.Now()
	c.mu.Unlock()

	content := make([]messagesContentBlock, 0, len(inv.ContextImages)+1)
	for _, img := range inv.ContextImages {
		content = append(content, messagesContentBlock{
			Type: "image",
			Source: &messagesImageSource{
				Type:      "base64",
				MediaType: img.MIME,
				Data:      base64.StdEncoding.EncodeToString(img.Data),
			},
		})
	}

	text := inv.Prompt
	if len(inv.ContextImages) > 0 {
		text = fmt.Sprintf(" (You see %d frames of our visual narrative.)\n\n%s", len(inv.ContextImages), inv.Prompt)
	}
	content = append(content, messagesContentBlock{Type: "text", Text: text})

	reqBody := messagesRequest{
		Model:     inv.Daimon.Model,
		MaxTokens: maxTokensForModel(inv.Daimon.Model),
		System:    inv.Daimon.Nature,
		Messages: []messagesMessage{
			{Role: "user", Content: content},
		},
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/messages", bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("anthropic-version", "2023-06-01")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		logging.PerceptionError("[Messages] Invoke: request failed after %v: %v", time.Since(startTime), err)
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		logging.PerceptionError("[Messages] Invoke: API returned status %d: %s", resp.StatusCode, string(body))
		return nil, fmt.Errorf("API request failed with status %d: %s", resp.StatusCode, truncateBody(body, 200))
	}

	var msgResp messagesResponse
	if err := json.Unmarshal(body, &msgResp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	if msgResp.Error != nil {
		return nil, fmt.Errorf("API error: %s", msgResp.Error.Message)
	}

	var out strings.Builder
	for _, block := range msgResp.Content {
		if block.Type == "text" {
			out.WriteString(block.Text)
		}
	}

	logging.Perception("[Messages] Invoke: daimon=%s completed in %v text_len=%d",
		inv.Daimon.Name, time.Since(startTime), out.Len())

	return &Result{Text: out.String()}, nil
}
