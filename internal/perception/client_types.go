package perception

// Wire types for the two vendor protocols. Request/response shapes are kept
// as plain structs so tests can observe exactly what goes on the wire.

// =============================================================================
// Generative-content protocol
// =============================================================================

// GenerativeConfig configures the generative-content client.
type GenerativeConfig struct {
	APIKey  string
	BaseURL string
	Timeout TimeoutMinutes
}

// TimeoutMinutes is a per-call deadline in minutes. Image generation is slow;
// deadlines are on the order of minutes, not seconds.
type TimeoutMinutes int

type generativeInlineData struct {
	MIMEType string `json:"mimeType"`
	Data     string `json:"data"`
}

type generativePart struct {
	Text       string                `json:"text,omitempty"`
	InlineData *generativeInlineData `json:"inlineData,omitempty"`
}

type generativeContent struct {
	Parts []generativePart `json:"parts"`
}

type generativeGenerationConfig struct {
	ResponseModalities []string `json:"responseModalities"`
	Temperature        float64  `json:"temperature"`
	MaxOutputTokens    int      `json:"maxOutputTokens"`
}

type generativeRequest struct {
	Contents         []generativeContent        `json:"contents"`
	GenerationConfig generativeGenerationConfig `json:"generationConfig"`
}

type generativeResponsePart struct {
	Text       string                `json:"text,omitempty"`
	InlineData *generativeInlineData `json:"inlineData,omitempty"`
}

type generativeResponseContent struct {
	Parts []generativeResponsePart `json:"parts"`
}

type generativeCandidate struct {
	Content generativeResponseContent `json:"content"`
}

type generativeResponse struct {
	Candidates []generativeCandidate `json:"candidates"`
	Error      *generativeError      `json:"error,omitempty"`
}

type generativeError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// =============================================================================
// Messages protocol
// =============================================================================

// MessagesConfig configures the messages client.
type MessagesConfig struct {
	APIKey  string
	BaseURL string
	Timeout TimeoutMinutes
}

type messagesImageSource struct {
	Type      string `json:"type"`
	MediaType string `json:"media_type"`
	Data      string `json:"data"`
}

type messagesContentBlock struct {
	Type   string               `json:"type"`
	Text   string               `json:"text,omitempty"`
	Source *messagesImageSource `json:"source,omitempty"`
}

type messagesMessage struct {
	Role    string                 `json:"role"`
	Content []messagesContentBlock `json:"content"`
}

type messagesRequest struct {
	Model     string            `json:"model"`
	MaxTokens int               `json:"max_tokens"`
	System    string            `json:"system"`
	Messages  []messagesMessage `json:"messages"`
}

type messagesResponse struct {
	Content []messagesContentBlock `json:"content"`
	Error   *messagesError         `json:"error,omitempty"`
}

type messagesError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}
