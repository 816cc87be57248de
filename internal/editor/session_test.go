package editor

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sessionSource = "---\ntitle: Test\n---\n\n<x-base>\n\n  <x-core.hero headline=\"Hi\" />\n\n  <x-core.text>Body</x-core.text>\n\n  <x-core.footer company=\"Acme\" />\n\n</x-base>\n"

func newTestSession(t *testing.T) *Session {
	t.Helper()
	// Keep the debounce timer out of the picture; tests commit snapshots
	// explicitly with FlushSnapshot.
	s, err := NewSession(sessionSource, nil, SessionOptions{SnapshotDelay: time.Hour})
	require.NoError(t, err)
	t.Cleanup(s.Close)
	return s
}

func TestNewSessionRejectsBadSource(t *testing.T) {
	_, err := NewSession("no frontmatter here", nil, SessionOptions{})
	assert.Error(t, err)
}

func TestSessionOptionsHonored(t *testing.T) {
	s, err := NewSession(sessionSource, nil, SessionOptions{
		HistoryLimit:  2,
		SnapshotDelay: time.Hour,
	})
	require.NoError(t, err)
	t.Cleanup(s.Close)

	for _, headline := range []string{"One", "Two", "Three"} {
		require.NoError(t, s.SetProp(0, "headline", headline))
		s.FlushSnapshot()
	}

	// Only the two most recent snapshots survive the configured bound.
	assert.True(t, s.Undo())
	assert.True(t, s.Undo())
	assert.False(t, s.Undo())
	assert.Contains(t, s.Source(), `headline="One"`)
}

func TestSetPropRewritesSource(t *testing.T) {
	s := newTestSession(t)

	require.NoError(t, s.SetProp(0, "headline", "Hello"))

	assert.Contains(t, s.Source(), `headline="Hello"`)
	doc := s.Document()
	assert.Equal(t, "Hello", doc.Components[0].Props.Value("headline"))
}

func TestCopyOnWrite(t *testing.T) {
	s := newTestSession(t)

	before := s.Document()
	require.NoError(t, s.SetProp(0, "headline", "Changed"))

	// The previously returned document is unaffected by the edit.
	assert.Equal(t, "Hi", before.Components[0].Props.Value("headline"))
}

func TestSetSourceKeepsPreviousDocOnParseFailure(t *testing.T) {
	s := newTestSession(t)

	err := s.SetSource("<broken")
	require.Error(t, err)

	// The session still holds the last good document.
	assert.Len(t, s.Document().Components, 3)
}

func TestAddRemoveDuplicateMove(t *testing.T) {
	s := newTestSession(t)

	t.Run("add selects the new component", func(t *testing.T) {
		at := s.AddComponent("divider", 1)
		assert.Equal(t, 1, at)
		assert.Equal(t, 1, s.Selected())
		doc := s.Document()
		require.Len(t, doc.Components, 4)
		assert.Equal(t, "divider", doc.Components[1].Type)
		assert.Equal(t, "text", doc.Components[2].Type)
	})

	t.Run("duplicate selects the copy", func(t *testing.T) {
		require.NoError(t, s.DuplicateComponent(0))
		doc := s.Document()
		require.Len(t, doc.Components, 5)
		assert.Equal(t, "hero", doc.Components[1].Type)
		assert.Equal(t, "Hi", doc.Components[1].Props.Value("headline"))
		assert.Equal(t, 1, s.Selected())
	})

	t.Run("move reorders", func(t *testing.T) {
		// [hero hero divider text footer] -> move 4 to 0
		require.NoError(t, s.MoveComponent(4, 0))
		doc := s.Document()
		assert.Equal(t, "footer", doc.Components[0].Type)
		assert.Equal(t, "hero", doc.Components[1].Type)
	})

	t.Run("remove shifts state", func(t *testing.T) {
		s.Select(2)
		require.NoError(t, s.RemoveComponent(1))
		assert.Equal(t, 1, s.Selected())
	})

	t.Run("out of range is an error", func(t *testing.T) {
		assert.Error(t, s.RemoveComponent(99))
		assert.Error(t, s.MoveComponent(0, 99))
	})
}

func TestExpansionRemapOnDelete(t *testing.T) {
	s := newTestSession(t)
	s.ToggleExpanded(1)
	s.ToggleExpanded(2)

	require.NoError(t, s.RemoveComponent(1))

	assert.False(t, s.Expanded(2))
	assert.True(t, s.Expanded(1), "old index 2 shifts down to 1")
}

func TestUndoRedo(t *testing.T) {
	s := newTestSession(t)
	original := s.Source()

	require.NoError(t, s.SetProp(0, "headline", "Edited"))
	s.FlushSnapshot()

	require.True(t, s.Undo())
	assert.Equal(t, original, s.Source())

	require.True(t, s.Redo())
	assert.Contains(t, s.Source(), `headline="Edited"`)

	t.Run("redo does not survive a new edit", func(t *testing.T) {
		require.True(t, s.Undo())
		require.NoError(t, s.SetProp(0, "headline", "Other"))
		assert.False(t, s.Redo())
	})
}

func TestUndoNothingToUndo(t *testing.T) {
	s := newTestSession(t)
	assert.False(t, s.Undo())
	assert.False(t, s.Redo())
}

func TestSnapshotDebounceCoalescesBursts(t *testing.T) {
	s := newTestSession(t)

	// A burst of edits inside the debounce window becomes one undo step
	// back to the pre-burst state.
	for _, v := range []string{"a", "ab", "abc"} {
		require.NoError(t, s.SetProp(0, "headline", v))
	}
	s.FlushSnapshot()

	require.True(t, s.Undo())
	assert.Contains(t, s.Source(), `headline="Hi"`)
	assert.False(t, s.Undo(), "the burst collapsed into a single snapshot")
}

func TestStaleSnapshotTimerDoesNotCommitEarly(t *testing.T) {
	s := newTestSession(t)

	require.NoError(t, s.SetProp(0, "headline", "First"))
	s.mu.Lock()
	staleGen := s.snapshotGen
	s.mu.Unlock()

	// A timer that fired for the first edit can lose the lock to a second
	// edit; by the time its flush runs, the quiet window has restarted and
	// the flush must be a no-op.
	require.NoError(t, s.SetProp(0, "headline", "Second"))
	s.flushSnapshotGen(staleGen)

	s.mu.Lock()
	depth := s.hist.Depth()
	pending := s.hasPending
	currentGen := s.snapshotGen
	s.mu.Unlock()
	assert.Zero(t, depth, "stale flush must not commit")
	assert.True(t, pending, "the burst is still open")

	// The current generation commits the whole burst as one step.
	s.flushSnapshotGen(currentGen)
	require.True(t, s.Undo())
	assert.Contains(t, s.Source(), `headline="Hi"`)
}

func TestHiddenComponentsOmittedFromProjection(t *testing.T) {
	s := newTestSession(t)
	s.ToggleHidden(1)

	projected := s.Project()
	assert.NotContains(t, projected, "<x-core.text")
	assert.Contains(t, projected, `data-preview-marker="0"`)
	assert.Contains(t, projected, `data-preview-marker="2"`)
}

func TestFrontmatterAndBaseProps(t *testing.T) {
	s := newTestSession(t)

	s.SetFrontmatter("subject", "Hello there")
	s.SetBaseProp("bg", "#f4f4f4")

	src := s.Source()
	assert.Contains(t, src, "subject: Hello there\n")
	assert.Contains(t, src, `<x-base bg="#f4f4f4">`)

	s.DeleteFrontmatter("subject")
	assert.NotContains(t, s.Source(), "subject:")
}
