// Package perception holds the vendor adapters: the clients that carry one
// daimon invocation to its backend and normalize the reply into a common
// shape. Two wire protocols are spoken - generative-content (parts arrays
// with inline image data) and messages (content blocks with a system field).
package perception

import (
	"context"

	"daimon/internal/registry"
)

// ImagePart is one context image handed to an adapter, chronological order
// preserved by the caller.
type ImagePart struct {
	MIME string
	Data []byte
}

// Invocation is one normalized request to a daimon.
type Invocation struct {
	Daimon        registry.Daimon
	Prompt        string // augmented message (original + transcript suffix)
	ContextImages []ImagePart
	RenderImage   bool

	// Temperature overrides the adapter default when > 0.
	Temperature float64
}

// Result is the normalized response. Images are base64-encoded as they
// arrive on the wire; callers decode when persisting.
type Result struct {
	Text   string
	Images []string
}

// Client is the adapter contract. A failed call returns an error; the
// orchestrator maps it to the silence sentinel and keeps the turn moving.
// No retries happen below this line - failure is a single observable event
// per participant per turn.
type Client interface {
	Invoke(ctx context.Context, inv Invocation) (*Result, error)
}
