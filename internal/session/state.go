// Package session tracks one client connection's chamber state: identity,
// turn counter, shared-memory flag, and the canvas it draws visual memory
// from. State is created on connect, discarded on disconnect, and never
// shared across sessions; the canvas directory outlives it on disk.
package session

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"daimon/internal/canvas"
	"daimon/internal/logging"
	"daimon/internal/perception"
)

// State is per-connection chamber state.
type State struct {
	ID           string
	TurnCount    int
	SharedMemory bool
	Canvas       *canvas.Store
}

// New creates a session over the given canvas. The id is a local wall-clock
// string, opaque to clients.
func New(cv *canvas.Store) *State {
	st := &State{
		ID:     time.Now().Format("20060102_150405"),
		Canvas: cv,
	}
	logging.Session("created session %s canvas=%s frames=%d", st.ID, cv.Dir(), cv.Count())
	return st
}

// FrameCount reports the canvas size, the number surfaced in session and
// memory_update events.
func (s *State) FrameCount() int {
	return s.Canvas.Count()
}

// VisualMemory loads the canvas frames as adapter image parts, modification
// time ascending. Returns nothing when shared memory is off.
func (s *State) VisualMemory() ([]perception.ImagePart, error) {
	if !s.SharedMemory {
		return nil, nil
	}
	frames, err := s.Canvas.Frames()
	if err != nil {
		return nil, fmt.Errorf("failed to load visual memory: %w", err)
	}

	parts := make([]perception.ImagePart, 0, len(frames))
	for _, path := range frames {
		data, err := os.ReadFile(path)
		if err != nil {
			logging.SessionDebug("skipping unreadable frame %s: %v", path, err)
			continue
		}
		parts = append(parts, perception.ImagePart{MIME: mimeForPath(path), Data: data})
	}
	return parts, nil
}

func mimeForPath(path string) string {
	if strings.EqualFold(filepath.Ext(path), ".png") {
		return "image/png"
	}
	return "image/jpeg"
}
