package resonance

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"

	"daimon/internal/logging"
	"daimon/internal/perception"
	"daimon/internal/registry"
)

const plateModel = "gemini-3-pro-image-preview"

// Field drives resonance sessions stored under root. Every plate-producing
// command loads the session, replays its plates as context images, asks for
// one new image, and persists the advanced state only if an image came back.
type Field struct {
	root   string
	client perception.Client
}

// New creates a field over a session root directory.
func New(root string, client perception.Client) *Field {
	return &Field{root: root, client: client}
}

// Plate is the outcome of one plate-producing command. Path is empty when
// the backend returned text but no image; the session is untouched then.
type Plate struct {
	Session *Session
	Number  int
	Roman   string
	Path    string
	Text    string
}

// Start creates a new session and renders its first plate.
func (f *Field) Start(ctx context.Context, name, prompt string) (*Plate, error) {
	s := newSession(name)
	logging.Resonance("starting field session %s", s.SessionID)
	return f.generatePlate(ctx, s, "start", "FIRST FRAME",
		fmt.Sprintf("PLATE I: %s", truncate(prompt, 50)), prompt)
}

// Continue renders the next plate of an existing session.
func (f *Field) Continue(ctx context.Context, sessionID, prompt string) (*Plate, error) {
	s, err := loadSession(f.root, sessionID)
	if err != nil {
		return nil, err
	}
	next := s.PlateNumber + 1
	return f.generatePlate(ctx, s, "continue",
		fmt.Sprintf("FRAME %d", next),
		fmt.Sprintf("PLATE %s: %s", ToRoman(next), truncate(prompt, 50)), prompt)
}

// Select marks an element of the latest plate as the pending zoom target.
func (f *Field) Select(sessionID, element string) (*Session, error) {
	s, err := loadSession(f.root, sessionID)
	if err != nil {
		return nil, err
	}
	s.SelectedElement = element
	if err := saveSession(f.root, s); err != nil {
		return nil, err
	}
	logging.Resonance("session %s selected element: %s", sessionID, element)
	return s, nil
}

// Zoom expands the previously selected element into its own plate. The
// selection is consumed by a successful zoom.
func (f *Field) Zoom(ctx context.Context, sessionID, instruction string) (*Plate, error) {
	s, err := loadSession(f.root, sessionID)
	if err != nil {
		return nil, err
	}
	if s.SelectedElement == "" {
		return nil, fmt.Errorf("no element selected: select one before zooming")
	}
	next := s.PlateNumber + 1
	elem := truncate(s.SelectedElement, 30)
	plate, err := f.generatePlate(ctx, s, "zoom",
		fmt.Sprintf("ZOOM - %s", elem),
		fmt.Sprintf("PLATE %s: ZOOM - %s", ToRoman(next), elem), instruction)
	if err != nil {
		return nil, err
	}
	if plate.Path != "" {
		s.SelectedElement = ""
		if err := saveSession(f.root, s); err != nil {
			return nil, err
		}
	}
	return plate, nil
}

// Inject introduces a new concept into the field as a perturbation plate.
func (f *Field) Inject(ctx context.Context, sessionID, concept string) (*Plate, error) {
	s, err := loadSession(f.root, sessionID)
	if err != nil {
		return nil, err
	}
	next := s.PlateNumber + 1
	return f.generatePlate(ctx, s, "inject", "CONCEPT INJECTION",
		fmt.Sprintf("PLATE %s: INJECT - %s", ToRoman(next), truncate(concept, 30)), concept)
}

// List returns every session under the field root, newest first.
func (f *Field) List() ([]*Session, error) {
	return listSessions(f.root)
}

// Load returns one session's metadata.
func (f *Field) Load(sessionID string) (*Session, error) {
	return loadSession(f.root, sessionID)
}

// Plates returns the plate image paths of a session in plate order.
func (f *Field) Plates(sessionID string) []string {
	return platePaths(f.root, sessionID)
}

func (f *Field) generatePlate(ctx context.Context, s *Session, command, subtitle, tocEntry, prompt string) (*Plate, error) {
	frames, err := f.loadFrames(s)
	if err != nil {
		return nil, err
	}

	system := buildSystemPrompt(s, subtitle, prompt, len(frames))
	user := buildUserPrompt(command, prompt, s, len(frames))

	result, err := f.client.Invoke(ctx, perception.Invocation{
		Daimon: registry.Daimon{
			Name:      "resonator",
			Vendor:    registry.VendorGenerative,
			Model:     plateModel,
			CanRender: true,
		},
		Prompt:        system + "\n\n---\n\n" + user,
		ContextImages: frames,
		RenderImage:   true,
		Temperature:   0.8,
	})
	if err != nil {
		logging.ResonanceDebug("session %s %s failed: %v", s.SessionID, command, err)
		return nil, err
	}

	if len(result.Images) == 0 {
		logging.Resonance("session %s %s produced no image", s.SessionID, command)
		return &Plate{Session: s, Number: s.PlateNumber, Roman: ToRoman(s.PlateNumber), Text: result.Text}, nil
	}

	data, err := base64.StdEncoding.DecodeString(result.Images[0])
	if err != nil {
		return nil, fmt.Errorf("failed to decode plate image: %w", err)
	}

	s.PlateNumber++
	s.KVCacheAge++
	s.TableOfContents = append(s.TableOfContents, tocEntry)

	dir := filepath.Join(f.root, s.SessionID)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create session directory: %w", err)
	}
	path := filepath.Join(dir, fmt.Sprintf("plate_%03d.jpg", s.PlateNumber))
	if err := os.WriteFile(path, data, 0644); err != nil {
		return nil, fmt.Errorf("failed to write plate: %w", err)
	}
	if err := saveSession(f.root, s); err != nil {
		return nil, err
	}

	logging.Resonance("session %s plate %s saved: %s", s.SessionID, ToRoman(s.PlateNumber), path)
	return &Plate{
		Session: s,
		Number:  s.PlateNumber,
		Roman:   ToRoman(s.PlateNumber),
		Path:    path,
		Text:    result.Text,
	}, nil
}

// loadFrames reads the session's plates as context images, plate order.
func (f *Field) loadFrames(s *Session) ([]perception.ImagePart, error) {
	paths := platePaths(f.root, s.SessionID)
	frames := make([]perception.ImagePart, 0, len(paths))
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("failed to read plate %s: %w", p, err)
		}
		frames = append(frames, perception.ImagePart{MIME: "image/jpeg", Data: data})
	}
	return frames, nil
}
