// Package editor implements the editing session over a template document:
// copy-on-write mutations, index remapping of external index-keyed state,
// the debounced undo history, and debounced compile scheduling with stale
// result discard.
package editor

import (
	"fmt"
	"sync"
	"time"

	"github.com/mailframe/mailframe/internal/history"
	"github.com/mailframe/mailframe/internal/markup"
	"github.com/mailframe/mailframe/internal/projector"
	"github.com/mailframe/mailframe/internal/types"
)

// DefaultSnapshotDelay is the quiet period after which the pre-edit state
// is committed to the undo history.
const DefaultSnapshotDelay = 800 * time.Millisecond

// Session owns one document for the duration of an edit session. The
// serialized source text is the single source of truth; every mutation
// clones the document, applies the change, and re-serializes. A component's
// index is its identity until the next structural edit, at which point the
// expansion, hidden, and selection state is remapped explicitly.
type Session struct {
	mu sync.Mutex

	doc    types.ParsedTemplate
	source string

	hist          *history.History
	snapshotDelay time.Duration
	snapshotTimer *time.Timer
	snapshotGen   uint64
	pendingBase   string
	hasPending    bool

	expanded IndexSet
	hidden   IndexSet
	selected int

	scheduler *CompileScheduler
}

// SessionOptions carries the configurable session knobs. Zero values select
// the defaults, so the zero SessionOptions is valid.
type SessionOptions struct {
	// HistoryLimit bounds the undo stack; non-positive means
	// history.DefaultLimit.
	HistoryLimit int
	// SnapshotDelay is the quiet window before an edit burst becomes one
	// undo step; non-positive means DefaultSnapshotDelay.
	SnapshotDelay time.Duration
}

// NewSession parses the initial source into a session. The scheduler may be
// nil when no live preview is attached (the fmt command, tests).
func NewSession(source string, scheduler *CompileScheduler, opts SessionOptions) (*Session, error) {
	doc, err := markup.Parse(source)
	if err != nil {
		return nil, err
	}
	limit := opts.HistoryLimit
	if limit <= 0 {
		limit = history.DefaultLimit
	}
	delay := opts.SnapshotDelay
	if delay <= 0 {
		delay = DefaultSnapshotDelay
	}
	s := &Session{
		doc:           doc,
		source:        markup.Serialize(doc),
		hist:          history.New(limit),
		snapshotDelay: delay,
		expanded:      IndexSet{},
		hidden:        IndexSet{},
		selected:      -1,
		scheduler:     scheduler,
	}
	s.scheduleCompile()
	return s, nil
}

// Source returns the authoritative serialized text.
func (s *Session) Source() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.source
}

// Document returns a deep copy of the current document.
func (s *Session) Document() types.ParsedTemplate {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc.Clone()
}

// SetSource replaces the document from raw text, the entry point for the
// markup editing mode. A parse failure leaves the session on its previous
// good document so mid-edit keystrokes are never destroyed; the caller
// keeps the raw text editable and retries on the next change.
func (s *Session) SetSource(raw string) error {
	doc, err := markup.Parse(raw)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	old := s.source
	s.doc = doc
	s.source = markup.Serialize(doc)
	s.clampIndexState()
	s.afterEdit(old)
	return nil
}

// mutate applies a copy-on-write edit: the mutation receives a clone,
// the session swaps to it and re-serializes.
func (s *Session) mutate(fn func(doc *types.ParsedTemplate)) {
	old := s.source
	next := s.doc.Clone()
	fn(&next)
	s.doc = next
	s.source = markup.Serialize(next)
	s.afterEdit(old)
}

// SetFrontmatter sets a frontmatter entry.
func (s *Session) SetFrontmatter(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mutate(func(doc *types.ParsedTemplate) {
		doc.Frontmatter = doc.Frontmatter.Set(key, value)
	})
}

// DeleteFrontmatter removes a frontmatter entry.
func (s *Session) DeleteFrontmatter(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mutate(func(doc *types.ParsedTemplate) {
		doc.Frontmatter = doc.Frontmatter.Delete(key)
	})
}

// SetBaseProp sets an attribute on the root wrapper element.
func (s *Session) SetBaseProp(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mutate(func(doc *types.ParsedTemplate) {
		doc.BaseProps = doc.BaseProps.Set(key, value)
	})
}

// SetProp writes a prop value on the component at index i. An empty value
// still stores the pair; deleting is explicit via DeleteProp.
func (s *Session) SetProp(i int, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkIndex(i); err != nil {
		return err
	}
	s.mutate(func(doc *types.ParsedTemplate) {
		doc.Components[i].Props = doc.Components[i].Props.Set(key, value)
	})
	return nil
}

// DeleteProp removes a prop from the component at index i.
func (s *Session) DeleteProp(i int, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkIndex(i); err != nil {
		return err
	}
	s.mutate(func(doc *types.ParsedTemplate) {
		doc.Components[i].Props = doc.Components[i].Props.Delete(key)
	})
	return nil
}

// SetContent replaces the literal inner content of the component at i.
func (s *Session) SetContent(i int, content string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkIndex(i); err != nil {
		return err
	}
	s.mutate(func(doc *types.ParsedTemplate) {
		doc.Components[i].Content = content
	})
	return nil
}

// AddComponent inserts a new empty component of the given type at index at
// (clamped to the list bounds) and selects it.
func (s *Session) AddComponent(componentType string, at int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if at < 0 {
		at = 0
	}
	if at > len(s.doc.Components) {
		at = len(s.doc.Components)
	}
	s.mutate(func(doc *types.ParsedTemplate) {
		comp := types.ParsedComponent{Type: componentType}
		doc.Components = append(doc.Components, types.ParsedComponent{})
		copy(doc.Components[at+1:], doc.Components[at:])
		doc.Components[at] = comp
	})
	s.expanded = RemapAfterInsert(s.expanded, at)
	s.hidden = RemapAfterInsert(s.hidden, at)
	s.selected = at
	return at
}

// RemoveComponent deletes the component at index i, shifting every index
// above it down by one in the expansion, hidden, and selection state.
func (s *Session) RemoveComponent(i int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkIndex(i); err != nil {
		return err
	}
	s.mutate(func(doc *types.ParsedTemplate) {
		doc.Components = append(doc.Components[:i], doc.Components[i+1:]...)
	})
	s.expanded = RemapAfterDelete(s.expanded, i)
	s.hidden = RemapAfterDelete(s.hidden, i)
	if s.selected >= 0 {
		s.selected, _ = RemapIndexAfterDelete(s.selected, i)
	}
	return nil
}

// DuplicateComponent copies the component at i to i+1 and selects the copy.
func (s *Session) DuplicateComponent(i int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkIndex(i); err != nil {
		return err
	}
	s.mutate(func(doc *types.ParsedTemplate) {
		comp := doc.Components[i].Clone()
		doc.Components = append(doc.Components, types.ParsedComponent{})
		copy(doc.Components[i+2:], doc.Components[i+1:])
		doc.Components[i+1] = comp
	})
	s.expanded = RemapAfterDuplicate(s.expanded, i)
	s.hidden = RemapAfterDuplicate(s.hidden, i)
	s.selected = i + 1
	return nil
}

// MoveComponent reorders the component at from to position to, rotating
// every index in the affected range.
func (s *Session) MoveComponent(from, to int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkIndex(from); err != nil {
		return err
	}
	if err := s.checkIndex(to); err != nil {
		return err
	}
	if from == to {
		return nil
	}
	s.mutate(func(doc *types.ParsedTemplate) {
		comp := doc.Components[from]
		if from < to {
			copy(doc.Components[from:], doc.Components[from+1:to+1])
		} else {
			copy(doc.Components[to+1:], doc.Components[to:from])
		}
		doc.Components[to] = comp
	})
	s.expanded = RemapAfterMove(s.expanded, from, to)
	s.hidden = RemapAfterMove(s.hidden, from, to)
	if s.selected >= 0 {
		s.selected = remapIndexAfterMove(s.selected, from, to)
	}
	return nil
}

// Undo reverts to the previous history snapshot. Returns false when there
// is nothing to undo.
func (s *Session) Undo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.flushSnapshotLocked()
	snap, ok := s.hist.Undo(s.source)
	if !ok {
		return false
	}
	s.restore(snap)
	return true
}

// Redo reapplies the most recently undone snapshot. An edit made since the
// undo commits first and clears the redo stack, so Redo then reports false.
func (s *Session) Redo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.flushSnapshotLocked()
	snap, ok := s.hist.Redo(s.source)
	if !ok {
		return false
	}
	s.restore(snap)
	return true
}

// restore swaps the session onto a history snapshot. Snapshots are our own
// serializer output, so a parse failure here is a programming error.
func (s *Session) restore(snapshot string) {
	doc, err := markup.Parse(snapshot)
	if err != nil {
		panic(fmt.Sprintf("editor: history snapshot failed to parse: %v", err))
	}
	s.doc = doc
	s.source = snapshot
	s.clampIndexState()
	s.scheduleCompile()
}

// Expanded reports whether the component panel at i is expanded.
func (s *Session) Expanded(i int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.expanded[i]
}

// ToggleExpanded flips the expansion state of the panel at i.
func (s *Session) ToggleExpanded(i int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.expanded[i] {
		delete(s.expanded, i)
	} else {
		s.expanded[i] = true
	}
}

// Hidden reports whether the component at i is excluded from the preview.
func (s *Session) Hidden(i int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hidden[i]
}

// ToggleHidden flips preview visibility of the component at i. Hidden
// components are omitted from the projection entirely, so the toggle
// triggers a recompile.
func (s *Session) ToggleHidden(i int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.hidden[i] {
		delete(s.hidden, i)
	} else {
		s.hidden[i] = true
	}
	s.scheduleCompile()
}

// Select marks the component at i as selected; -1 clears the selection.
func (s *Session) Select(i int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selected = i
}

// Selected returns the selected component index, -1 for none.
func (s *Session) Selected() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selected
}

// Project returns the marker-annotated compiler input for the current
// document and hidden set.
func (s *Session) Project() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return projector.Project(s.doc, s.hidden)
}

// FlushSnapshot commits a pending debounced history snapshot immediately.
func (s *Session) FlushSnapshot() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.flushSnapshotLocked()
}

// Close stops timers and the attached scheduler.
func (s *Session) Close() {
	s.mu.Lock()
	if s.snapshotTimer != nil {
		s.snapshotTimer.Stop()
		s.snapshotTimer = nil
	}
	scheduler := s.scheduler
	s.mu.Unlock()
	if scheduler != nil {
		scheduler.Stop()
	}
}

// afterEdit runs with the lock held after the document swap: it arms the
// history debounce with the pre-edit state and schedules a recompile.
func (s *Session) afterEdit(oldSource string) {
	if oldSource == s.source {
		return // no-op render, keep history clean
	}
	if !s.hasPending {
		s.pendingBase = oldSource
		s.hasPending = true
	}
	if s.snapshotTimer != nil {
		s.snapshotTimer.Stop()
	}
	// The generation guards against a timer that already fired and is
	// blocked on the mutex: by the time it runs, this edit has restarted
	// the quiet window and the stale flush must not commit.
	s.snapshotGen++
	gen := s.snapshotGen
	s.snapshotTimer = time.AfterFunc(s.snapshotDelay, func() {
		s.flushSnapshotGen(gen)
	})
	s.scheduleCompile()
}

// flushSnapshotGen commits the pending snapshot only if no edit restarted
// the quiet window since the timer carrying gen was armed.
func (s *Session) flushSnapshotGen(gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.snapshotGen {
		return
	}
	s.flushSnapshotLocked()
}

func (s *Session) flushSnapshotLocked() {
	s.snapshotGen++ // invalidate any armed or in-flight timer
	if s.snapshotTimer != nil {
		s.snapshotTimer.Stop()
		s.snapshotTimer = nil
	}
	if s.hasPending {
		s.hist.Push(s.pendingBase)
		s.hasPending = false
	}
}

func (s *Session) scheduleCompile() {
	if s.scheduler == nil {
		return
	}
	s.scheduler.Schedule(projector.Project(s.doc, s.hidden))
}

// clampIndexState drops index references that fell off the end of the
// component list after a restore.
func (s *Session) clampIndexState() {
	n := len(s.doc.Components)
	for idx := range s.expanded {
		if idx >= n {
			delete(s.expanded, idx)
		}
	}
	for idx := range s.hidden {
		if idx >= n {
			delete(s.hidden, idx)
		}
	}
	if s.selected >= n {
		s.selected = -1
	}
}

func (s *Session) checkIndex(i int) error {
	if i < 0 || i >= len(s.doc.Components) {
		return fmt.Errorf("editor: component index %d out of range (have %d)", i, len(s.doc.Components))
	}
	return nil
}
