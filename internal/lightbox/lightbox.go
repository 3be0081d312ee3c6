// Package lightbox models the full-screen story viewer as an explicit
// state machine: Closed, or Open at a zero-based index into an ordered
// story list. Navigation policy: moving past the last story closes the
// viewer, moving before the first is a no-op, and deleting the active
// story slides the next one into the same position.
package lightbox

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"nestVistaAPI/internal/types/story"
)

// StoryMutator issues the mutations the viewer can trigger.
type StoryMutator interface {
	DeleteStory(ctx context.Context, storyID uuid.UUID) error
	RepostStory(ctx context.Context, storyID uuid.UUID) (*story.Story, error)
}

// Player is whatever is rendering the active story's media. Close
// must stop playback.
type Player interface {
	Stop()
}

type Lightbox struct {
	mu      sync.Mutex
	svc     StoryMutator
	player  Player
	stories []story.Story

	open  bool
	index int
	// gen changes on every open/close so a delayed delete/repost
	// response can detect that the viewer moved on and discard itself.
	gen uint64
}

func New(svc StoryMutator, player Player) *Lightbox {
	return &Lightbox{svc: svc, player: player}
}

// SetStories replaces the underlying ordered list. The caller is
// responsible for passing it newest-first.
func (l *Lightbox) SetStories(stories []story.Story) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.stories = stories
	if l.open && l.index >= len(l.stories) {
		if len(l.stories) == 0 {
			l.closeLocked()
		} else {
			l.index = len(l.stories) - 1
		}
	}
}

// Open enters Open(storyIndex). Opening with an empty list or an
// out-of-range index is a no-op and the viewer stays Closed.
func (l *Lightbox) Open(storyIndex int) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.open || storyIndex < 0 || storyIndex >= len(l.stories) {
		return false
	}
	l.open = true
	l.index = storyIndex
	l.gen++
	return true
}

// Next advances to the following story; past the last story the
// viewer closes rather than wrapping around.
func (l *Lightbox) Next() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.open {
		return
	}
	if l.index+1 < len(l.stories) {
		l.index++
		return
	}
	l.closeLocked()
}

// Prev steps back one story and stays put at the first one.
func (l *Lightbox) Prev() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.open {
		return
	}
	if l.index > 0 {
		l.index--
	}
}

func (l *Lightbox) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.open {
		l.closeLocked()
	}
}

func (l *Lightbox) closeLocked() {
	if l.player != nil {
		l.player.Stop()
	}
	l.open = false
	l.gen++
}

func (l *Lightbox) IsOpen() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.open
}

// Index returns the active position; valid only while open.
func (l *Lightbox) Index() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.index
}

// Current returns the story under the cursor.
func (l *Lightbox) Current() (story.Story, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.open || l.index >= len(l.stories) {
		return story.Story{}, false
	}
	return l.stories[l.index], true
}

// HandleKey applies the keyboard policy. Bindings are only active
// while the viewer is open.
func (l *Lightbox) HandleKey(key string) {
	if !l.IsOpen() {
		return
	}
	switch key {
	case "Escape":
		l.Close()
	case "ArrowRight":
		l.Next()
	case "ArrowLeft":
		l.Prev()
	}
}

// DeleteCurrent deletes the active story and repairs the index: an
// emptied list closes the viewer, an overrun clamps to the new last
// story, otherwise the position is kept so the next story slides in.
// A response arriving after the viewer closed or reopened is dropped,
// and one arriving after the user navigated elsewhere only removes
// the deleted item: the story being viewed stays under the cursor.
func (l *Lightbox) DeleteCurrent(ctx context.Context) error {
	l.mu.Lock()
	if !l.open || l.index >= len(l.stories) {
		l.mu.Unlock()
		return nil
	}
	target := l.stories[l.index]
	gen := l.gen
	l.mu.Unlock()

	if err := l.svc.DeleteStory(ctx, target.ID); err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.open || l.gen != gen {
		return nil
	}

	targetIndex := -1
	for i, s := range l.stories {
		if s.ID == target.ID {
			targetIndex = i
			break
		}
	}
	if targetIndex == -1 {
		return nil
	}

	remaining := make([]story.Story, 0, len(l.stories)-1)
	remaining = append(remaining, l.stories[:targetIndex]...)
	remaining = append(remaining, l.stories[targetIndex+1:]...)
	l.stories = remaining

	switch {
	case len(l.stories) == 0:
		l.closeLocked()
	case l.index == targetIndex:
		// The cursor was still on the deleted story.
		if l.index >= len(l.stories) {
			l.index = len(l.stories) - 1
		}
	case l.index > targetIndex:
		// The user navigated past the deleted story while the call
		// was in flight; shift so the same story stays in view.
		l.index--
	}
	return nil
}

// RepostCurrent reposts the active story. The viewer's position does
// not change: the repost lands in the underlying collection, not in
// the currently viewed list. The new story is returned so the caller
// can refresh the list in the background.
func (l *Lightbox) RepostCurrent(ctx context.Context) (*story.Story, error) {
	l.mu.Lock()
	if !l.open || l.index >= len(l.stories) {
		l.mu.Unlock()
		return nil, nil
	}
	target := l.stories[l.index]
	l.mu.Unlock()

	return l.svc.RepostStory(ctx, target.ID)
}
