package resonance

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"daimon/internal/perception"
)

// fakePlateClient records invocations and returns a canned reply.
type fakePlateClient struct {
	invocations []perception.Invocation
	text        string
	images      []string
	err         error
}

func (c *fakePlateClient) Invoke(_ context.Context, inv perception.Invocation) (*perception.Result, error) {
	c.invocations = append(c.invocations, inv)
	if c.err != nil {
		return nil, c.err
	}
	return &perception.Result{Text: c.text, Images: c.images}, nil
}

func plateImage(payload string) []string {
	return []string{base64.StdEncoding.EncodeToString([]byte(payload))}
}

func TestToRoman(t *testing.T) {
	cases := map[int]string{
		1: "I", 2: "II", 3: "III", 4: "IV", 5: "V",
		9: "IX", 14: "XIV", 19: "XIX", 20: "XX", 42: "XLII",
	}
	for n, want := range cases {
		assert.Equal(t, want, ToRoman(n), "n=%d", n)
		assert.Equal(t, n, FromRoman(want), "roman=%s", want)
	}
}

func TestStartCreatesFirstPlate(t *testing.T) {
	root := t.TempDir()
	client := &fakePlateClient{text: "plate one", images: plateImage("jpeg-bytes")}
	field := New(root, client)

	plate, err := field.Start(context.Background(), "emergence", "what is emergence?")
	require.NoError(t, err)

	assert.Equal(t, 1, plate.Number)
	assert.Equal(t, "I", plate.Roman)
	assert.Equal(t, "plate one", plate.Text)
	assert.FileExists(t, plate.Path)
	assert.Equal(t, "plate_001.jpg", filepath.Base(plate.Path))

	s := plate.Session
	assert.True(t, strings.HasPrefix(s.SessionID, "emergence-live-"))
	assert.Equal(t, 1, s.PlateNumber)
	assert.Equal(t, 1, s.KVCacheAge)
	require.Len(t, s.TableOfContents, 1)
	assert.Equal(t, "PLATE I: what is emergence?", s.TableOfContents[0])

	// First plate sees no context frames and asks for an image at 0.8.
	require.Len(t, client.invocations, 1)
	inv := client.invocations[0]
	assert.Empty(t, inv.ContextImages)
	assert.True(t, inv.RenderImage)
	assert.InDelta(t, 0.8, inv.Temperature, 1e-9)
	assert.Contains(t, inv.Prompt, "PLATE I: EMERGENCE - FIRST FRAME")
	assert.Contains(t, inv.Prompt, "This is the FIRST FRAME.")
}

func TestCountersAdvanceTogether(t *testing.T) {
	root := t.TempDir()
	client := &fakePlateClient{images: plateImage("frame")}
	field := New(root, client)
	ctx := context.Background()

	plate, err := field.Start(ctx, "flow", "rivers")
	require.NoError(t, err)
	sid := plate.Session.SessionID

	plate, err = field.Continue(ctx, sid, "deltas")
	require.NoError(t, err)
	plate, err = field.Inject(ctx, sid, "entropy")
	require.NoError(t, err)

	assert.Equal(t, 3, plate.Number)
	assert.Equal(t, "III", plate.Roman)

	s, err := field.Load(sid)
	require.NoError(t, err)
	assert.Equal(t, 3, s.PlateNumber)
	assert.Equal(t, 3, s.KVCacheAge)
	require.Len(t, s.TableOfContents, 3)
	assert.Equal(t, "PLATE II: deltas", s.TableOfContents[1])
	assert.Equal(t, "PLATE III: INJECT - entropy", s.TableOfContents[2])
	assert.Len(t, field.Plates(sid), 3)

	// Each later plate carried every earlier plate as context.
	require.Len(t, client.invocations, 3)
	assert.Len(t, client.invocations[1].ContextImages, 1)
	assert.Len(t, client.invocations[2].ContextImages, 2)
}

func TestZoomRequiresSelection(t *testing.T) {
	root := t.TempDir()
	client := &fakePlateClient{images: plateImage("frame")}
	field := New(root, client)
	ctx := context.Background()

	plate, err := field.Start(ctx, "mind", "attention")
	require.NoError(t, err)
	sid := plate.Session.SessionID

	_, err = field.Zoom(ctx, sid, "closer")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no element selected")

	_, err = field.Select(sid, "the spiral annotation")
	require.NoError(t, err)

	plate, err = field.Zoom(ctx, sid, "reveal the inner structure")
	require.NoError(t, err)
	assert.Equal(t, 2, plate.Number)

	s, err := field.Load(sid)
	require.NoError(t, err)
	assert.Empty(t, s.SelectedElement, "zoom consumes the selection")
	assert.Equal(t, "PLATE II: ZOOM - the spiral annotation", s.TableOfContents[1])
}

func TestNoImageLeavesSessionUntouched(t *testing.T) {
	root := t.TempDir()
	client := &fakePlateClient{images: plateImage("frame")}
	field := New(root, client)
	ctx := context.Background()

	plate, err := field.Start(ctx, "static", "noise")
	require.NoError(t, err)
	sid := plate.Session.SessionID

	client.images = nil
	client.text = "I cannot render this."
	plate, err = field.Continue(ctx, sid, "more noise")
	require.NoError(t, err)
	assert.Empty(t, plate.Path)
	assert.Equal(t, "I cannot render this.", plate.Text)

	s, err := field.Load(sid)
	require.NoError(t, err)
	assert.Equal(t, 1, s.PlateNumber)
	assert.Equal(t, 1, s.KVCacheAge)
	assert.Len(t, s.TableOfContents, 1)
	assert.Len(t, field.Plates(sid), 1)
}

func TestTableOfContentsAppearsFromFourthPlate(t *testing.T) {
	root := t.TempDir()
	client := &fakePlateClient{images: plateImage("frame")}
	field := New(root, client)
	ctx := context.Background()

	plate, err := field.Start(ctx, "growth", "seed")
	require.NoError(t, err)
	sid := plate.Session.SessionID

	for _, p := range []string{"sprout", "stem"} {
		_, err = field.Continue(ctx, sid, p)
		require.NoError(t, err)
	}
	assert.NotContains(t, client.invocations[2].Prompt, "TABLE OF CONTENTS")

	_, err = field.Continue(ctx, sid, "bloom")
	require.NoError(t, err)
	fourth := client.invocations[3].Prompt
	assert.Contains(t, fourth, "TABLE OF CONTENTS")
	assert.Contains(t, fourth, "PLATE I: seed")
	assert.Contains(t, fourth, "PLATE III: stem")
}

func TestListNewestFirst(t *testing.T) {
	root := t.TempDir()
	field := New(root, &fakePlateClient{images: plateImage("frame")})

	for i, name := range []string{"alpha", "beta"} {
		s := newSession(name)
		s.CreatedAt = fmt.Sprintf("2026-08-30T00:0%d:00Z", i)
		require.NoError(t, saveSession(root, s))
	}
	// A stray file should be ignored.
	require.NoError(t, os.WriteFile(filepath.Join(root, "notes.txt"), []byte("x"), 0644))

	sessions, err := field.List()
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	assert.Equal(t, "beta", sessions[0].SessionName)
	assert.Equal(t, "alpha", sessions[1].SessionName)
}

func TestLoadMissingSession(t *testing.T) {
	field := New(t.TempDir(), &fakePlateClient{})
	_, err := field.Load("nope-live-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "session not found")
}
