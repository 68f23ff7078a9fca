// Package council drives one user turn across the enabled daimones. The
// chamber path is strictly sequential so each voice sees the accumulated
// transcript of the voices before it; the stream path runs a bounded worker
// pool and forgoes the transcript.
package council

// Event is one server-to-client message. Every variant carries a type tag so
// the duplex surface can ship it as-is.
type Event interface {
	eventType() string
}

// SessionEvent opens a connection: the session id and current canvas size.
type SessionEvent struct {
	Type       string `json:"type"`
	SessionID  string `json:"session_id"`
	FrameCount int    `json:"frame_count"`
}

// ThinkingEvent brackets the start of one daimon's (possibly minutes-long)
// invocation.
type ThinkingEvent struct {
	Type   string `json:"type"`
	Daimon string `json:"daimon"`
}

// ResponseEvent carries one daimon's reply. Image is the first generated
// image, Images every one of them, SavedPath where the first landed on the
// canvas.
type ResponseEvent struct {
	Type      string   `json:"type"`
	Daimon    string   `json:"daimon"`
	Verb      string   `json:"verb"`
	Text      string   `json:"text"`
	Image     string   `json:"image,omitempty"`
	Images    []string `json:"images"`
	SavedPath string   `json:"saved_path,omitempty"`
}

// MemoryUpdateEvent reports the canvas size after it changed.
type MemoryUpdateEvent struct {
	Type       string `json:"type"`
	FrameCount int    `json:"frame_count"`
}

// DoneEvent is always the last event of a turn.
type DoneEvent struct {
	Type string `json:"type"`
}

func (SessionEvent) eventType() string      { return "session" }
func (ThinkingEvent) eventType() string     { return "thinking" }
func (ResponseEvent) eventType() string     { return "response" }
func (MemoryUpdateEvent) eventType() string { return "memory_update" }
func (DoneEvent) eventType() string         { return "done" }

// NewSessionEvent builds the handshake event.
func NewSessionEvent(sessionID string, frameCount int) SessionEvent {
	return SessionEvent{Type: "session", SessionID: sessionID, FrameCount: frameCount}
}

func newThinkingEvent(daimon string) ThinkingEvent {
	return ThinkingEvent{Type: "thinking", Daimon: daimon}
}

func newMemoryUpdateEvent(frameCount int) MemoryUpdateEvent {
	return MemoryUpdateEvent{Type: "memory_update", FrameCount: frameCount}
}

func newDoneEvent() DoneEvent {
	return DoneEvent{Type: "done"}
}

// Emitter delivers events to the client. A delivery error aborts the turn at
// the next adapter boundary; in-flight adapter work is discarded.
type Emitter interface {
	Emit(event Event) error
}
