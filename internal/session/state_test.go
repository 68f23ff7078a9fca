package session

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"daimon/internal/canvas"
)

func TestNewSession(t *testing.T) {
	cv, err := canvas.Open(t.TempDir())
	require.NoError(t, err)

	st := New(cv)
	assert.Len(t, st.ID, len("20060102_150405"))
	assert.Equal(t, 0, st.TurnCount)
	assert.False(t, st.SharedMemory)
	assert.Equal(t, 0, st.FrameCount())
}

func TestVisualMemoryToggle(t *testing.T) {
	cv, err := canvas.Open(t.TempDir())
	require.NoError(t, err)

	p1, err := cv.Append("dreamer", "first vision", []byte("frame-one"))
	require.NoError(t, err)
	p2, err := cv.Append("dreamer", "second vision", []byte("frame-two"))
	require.NoError(t, err)

	base := time.Now().Add(-time.Minute)
	require.NoError(t, os.Chtimes(p1, base, base))
	require.NoError(t, os.Chtimes(p2, base.Add(time.Second), base.Add(time.Second)))

	st := New(cv)

	// Off: no context images regardless of what the canvas holds.
	parts, err := st.VisualMemory()
	require.NoError(t, err)
	assert.Empty(t, parts)

	// On: exactly k frames in modification-time order.
	st.SharedMemory = true
	parts, err = st.VisualMemory()
	require.NoError(t, err)
	require.Len(t, parts, 2)
	assert.Equal(t, []byte("frame-one"), parts[0].Data)
	assert.Equal(t, []byte("frame-two"), parts[1].Data)
	assert.Equal(t, "image/jpeg", parts[0].MIME)
}
