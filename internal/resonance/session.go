// Package resonance implements the persisted visual-memory mode: numbered
// plates with a MESSAGE TO NEXT FRAME continuity contract, a growing table
// of contents, and zoom/inject perturbations. Each session is a directory
// of plate images plus one metadata file; the folder is the KV cache.
package resonance

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"
)

// Session is the persisted metadata for one resonance field.
// Invariant: PlateNumber == KVCacheAge == len(TableOfContents) == plate
// files on disk after any successful plate-producing command.
type Session struct {
	SessionID       string   `json:"session_id"`
	SessionName     string   `json:"session_name"`
	PlateNumber     int      `json:"plate_number"`
	KVCacheAge      int      `json:"kv_cache_age"`
	TableOfContents []string `json:"table_of_contents"`
	SelectedElement string   `json:"selected_element"`
	CreatedAt       string   `json:"created_at"`
}

const sessionFile = ".session.json"

func newSession(name string) *Session {
	return &Session{
		SessionID:       fmt.Sprintf("%s-live-%d", name, time.Now().Unix()),
		SessionName:     name,
		TableOfContents: []string{},
		CreatedAt:       time.Now().Format(time.RFC3339),
	}
}

// loadSession reads a session's metadata file from under root.
func loadSession(root, sessionID string) (*Session, error) {
	data, err := os.ReadFile(filepath.Join(root, sessionID, sessionFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("session not found: %s", sessionID)
		}
		return nil, fmt.Errorf("failed to read session: %w", err)
	}
	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to parse session: %w", err)
	}
	return &s, nil
}

// saveSession writes the metadata file. Two processes pointed at the same
// named session race last-writer-wins; this is documented, not defended.
func saveSession(root string, s *Session) error {
	dir := filepath.Join(root, s.SessionID)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create session directory: %w", err)
	}
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, sessionFile), data, 0644); err != nil {
		return fmt.Errorf("failed to write session: %w", err)
	}
	return nil
}

// platePaths lists plate_*.jpg for a session, ordered by plate index.
func platePaths(root, sessionID string) []string {
	matches, err := filepath.Glob(filepath.Join(root, sessionID, "plate_*.jpg"))
	if err != nil {
		return nil
	}
	sort.Strings(matches)
	return matches
}

// listSessions returns every session under root, newest first.
func listSessions(root string) ([]*Session, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read sessions: %w", err)
	}
	var sessions []*Session
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		s, err := loadSession(root, entry.Name())
		if err != nil {
			continue
		}
		sessions = append(sessions, s)
	}
	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].CreatedAt > sessions[j].CreatedAt
	})
	return sessions, nil
}
