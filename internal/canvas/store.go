// Package canvas persists generated images to an append-only directory.
// Files are never deleted by this package; collisions get a numeric suffix
// and listings order by modification time so the folder itself is the
// council's visual memory.
package canvas

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"daimon/internal/logging"
)

// Store is one canvas directory.
type Store struct {
	dir string
}

// Open creates the directory if needed and returns a store rooted there.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create canvas directory: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Dir returns the canvas directory path.
func (s *Store) Dir() string {
	return s.dir
}

// Append durably writes one image as <daimon>_<slug-of-prompt>.jpg, suffixing
// _1, _2, ... on collision. The write goes to a temp file first and is
// renamed into place so partial writes never appear in listings.
func (s *Store) Append(daimon, prompt string, data []byte) (string, error) {
	base := fmt.Sprintf("%s_%s", daimon, Slugify(prompt))

	path := filepath.Join(s.dir, base+".jpg")
	for counter := 1; ; counter++ {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			break
		}
		path = filepath.Join(s.dir, fmt.Sprintf("%s_%d.jpg", base, counter))
	}

	tmp, err := os.CreateTemp(s.dir, ".canvas-*")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return "", fmt.Errorf("failed to write image: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("failed to persist image: %w", err)
	}

	logging.Canvas("appended %s (%d bytes)", filepath.Base(path), len(data))
	return path, nil
}

// Frames returns the .jpg paths in the canvas, modification time ascending.
func (s *Store) Frames() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read canvas directory: %w", err)
	}

	type frame struct {
		path  string
		mtime int64
	}
	var frames []frame
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".jpg") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		frames = append(frames, frame{
			path:  filepath.Join(s.dir, entry.Name()),
			mtime: info.ModTime().UnixNano(),
		})
	}

	sort.SliceStable(frames, func(i, j int) bool {
		if frames[i].mtime != frames[j].mtime {
			return frames[i].mtime < frames[j].mtime
		}
		return frames[i].path < frames[j].path
	})

	paths := make([]string, len(frames))
	for i, f := range frames {
		paths[i] = f.path
	}
	return paths, nil
}

// Count reports how many frames the canvas holds. Cheap call used to
// populate memory_update events.
func (s *Store) Count() int {
	frames, err := s.Frames()
	if err != nil {
		return 0
	}
	return len(frames)
}
