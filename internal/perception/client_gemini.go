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

const defaultGenerativeBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// GenerativeClient speaks the generative-content protocol: a single content
// turn whose parts are the inline context images in chronological order
// followed by one text part carrying persona, memory note, and prompt.
type GenerativeClient struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	mu         sync.Mutex
	lastRequest time.Time
}

// DefaultGenerativeConfig returns sensible defaults.
func DefaultGenerativeConfig(apiKey string) GenerativeConfig {
	return GenerativeConfig{
		APIKey:  apiKey,
		BaseURL: defaultGenerativeBaseURL,
		Timeout: 5,
	}
}

// NewGenerativeClient creates a generative-content client with defaults.
func NewGenerativeClient(apiKey string) *GenerativeClient {
	return NewGenerativeClientWithConfig(DefaultGenerativeConfig(apiKey))
}

// NewGenerativeClientWithConfig creates a generative-content client.
func NewGenerativeClientWithConfig(config GenerativeConfig) *GenerativeClient {
	baseURL := strings.TrimRight(config.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultGenerativeBaseURL
	}
	timeout := config.Timeout
	if timeout <= 0 {
		timeout = 5
	}
	return &GenerativeClient{
		apiKey:  config.APIKey,
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: time.Duration(timeout) * time.Minute,
		},
	}
}

// Invoke sends one invocation and collects every text and inline-image part
// of the reply. No retries: a failure here is surfaced once per turn.
func (c *GenerativeClient) Invoke(ctx context.Context, inv Invocation) (*Result, error) {
	// Auto-apply timeout if context has no deadline (centralized timeout handling)
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.httpClient.Timeout)
		defer cancel()
	}

	startTime := time.Now()
	logging.PerceptionDebug("[Generative] Invoke: daimon=%s model=%s render=%t context_images=%d prompt_len=%d",
		inv.Daimon.Name, inv.Daimon.Model, inv.RenderImage, len(inv.ContextImages), len(inv.Prompt))

	if c.apiKey == "" {
		logging.PerceptionError("[Generative] Invoke: API key not configured")
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

	parts := make([]generativePart, 0, len(inv.ContextImages)+1)
	for _, img := range inv.ContextImages {
		parts = append(parts, generativePart{
			InlineData: &generativeInlineData{
				MIMEType: img.MIME,
				Data:     base64.StdEncoding.EncodeToString(img.Data),
			},
		})
	}
	parts = append(parts, generativePart{
		Text: framedPrompt(inv.Daimon.Nature, len(inv.ContextImages), inv.Prompt),
	})

	modalities := []string{"TEXT"}
	if inv.RenderImage && inv.Daimon.CanRender {
		modalities = []string{"TEXT", "IMAGE"}
	}

	temperature := inv.Temperature
	if temperature <= 0 {
		temperature = 0.7
	}

	reqBody := generativeRequest{
		Contents: []generativeContent{{Parts: parts}},
		GenerationConfig: generativeGenerationConfig{
			ResponseModalities: modalities,
			Temperature:        temperature,
			MaxOutputTokens:    8192,
		},
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", c.baseURL, inv.Daimon.Model)

	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		logging.PerceptionError("[Generative] Invoke: request failed after %v: %v", time.Since(startTime), err)
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		logging.PerceptionError("[Generative] Invoke: API returned status %d: %s", resp.StatusCode, string(body))
		return nil, fmt.Errorf("API request failed with status %d: %s", resp.StatusCode, truncateBody(body, 300))
	}

	var genResp generativeResponse
	if err := json.Unmarshal(body, &genResp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	if genResp.Error != nil {
		return nil, fmt.Errorf("API error: %s", genResp.Error.Message)
	}
	if len(genResp.Candidates) == 0 {
		return nil, fmt.Errorf("no candidates returned")
	}

	// Walk candidates -> content -> parts, accumulating every text part and
	// collecting every inline image.
	var text strings.Builder
	var images []string
	for _, candidate := range genResp.Candidates {
		for _, part := range candidate.Content.Parts {
			if part.Text != "" {
				text.WriteString(part.Text)
			}
			if part.InlineData != nil && part.InlineData.Data != "" {
				images = append(images, part.InlineData.Data)
			}
		}
	}

	logging.Perception("[Generative] Invoke: daimon=%s completed in %v text_len=%d images=%d",
		inv.Daimon.Name, time.Since(startTime), text.Len(), len(images))

	return &Result{Text: text.String(), Images: images}, nil
}

// framedPrompt prepends the persona and, when context frames are present,
// the memory note telling the daimon how much of the visual narrative it sees.
// Callers that frame their own prompt pass an empty nature and get the prompt
// back untouched.
func framedPrompt(nature string, frameCount int, prompt string) string {
	if nature == "" {
		return prompt
	}
	memoryNote := ""
	if frameCount > 0 {
		memoryNote = fmt.Sprintf(" (You see %d frames of our visual narrative.)", frameCount)
	}
	return fmt.Sprintf("%s%s\n\n%s", nature, memoryNote, prompt)
}

func truncateBody(body []byte, n int) string {
	s := string(body)
	if len(s) > n {
		return s[:n]
	}
	return s
}
