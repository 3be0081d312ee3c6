// Package gallery orchestrates the agent stories page: fetching and
// ordering the story list, the upload-then-submit flow, and the
// recent-stories strip. Navigation inside the viewer is delegated to
// the lightbox state machine.
package gallery

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"nestVistaAPI/internal/lightbox"
	"nestVistaAPI/internal/recency"
	"nestVistaAPI/internal/types/story"
)

// MaxUploadSize caps story media at 50MB.
const MaxUploadSize = 50 << 20

var (
	ErrUploadInProgress = errors.New("an upload is already in progress")
	ErrFileTooLarge     = errors.New("file exceeds the 50MB limit")
	ErrUnsupportedType  = errors.New("only image and video files are allowed")
	ErrUploadFailed     = errors.New("media upload failed")
)

// StoryAPI is the service surface the controller consumes; satisfied
// by client.Client.
type StoryAPI interface {
	AddStory(ctx context.Context, agentID uuid.UUID, req story.AddStoryRequest) (*story.Story, error)
	ListStories(ctx context.Context, agentID uuid.UUID) ([]story.Story, error)
	DeleteStory(ctx context.Context, storyID uuid.UUID) error
	RepostStory(ctx context.Context, storyID uuid.UUID) (*story.Story, error)
}

// Uploader is the external media host: upload bytes, get back a URL.
type Uploader interface {
	Upload(ctx context.Context, data []byte, filename string) (string, error)
}

type Controller struct {
	agentID  uuid.UUID
	api      StoryAPI
	uploader Uploader
	viewer   *lightbox.Lightbox

	mu        sync.Mutex
	stories   []story.Story
	uploading bool

	now func() time.Time
}

func NewController(agentID uuid.UUID, api StoryAPI, uploader Uploader, player lightbox.Player) *Controller {
	return &Controller{
		agentID:  agentID,
		api:      api,
		uploader: uploader,
		viewer:   lightbox.New(api, player),
		now:      time.Now,
	}
}

// Lightbox exposes the viewer so the page can wire key events to it.
func (c *Controller) Lightbox() *lightbox.Lightbox {
	return c.viewer
}

// Refresh reloads the story list and re-derives the newest-first
// order; the service is not required to maintain sorted storage.
func (c *Controller) Refresh(ctx context.Context) error {
	stories, err := c.api.ListStories(ctx, c.agentID)
	if err != nil {
		return fmt.Errorf("failed to refresh stories: %w", err)
	}
	recency.SortNewestFirst(stories)

	c.mu.Lock()
	c.stories = stories
	c.mu.Unlock()

	c.viewer.SetStories(stories)
	return nil
}

// Stories returns the current ordered list.
func (c *Controller) Stories() []story.Story {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]story.Story, len(c.stories))
	copy(out, c.stories)
	return out
}

// RecentStrip derives the circular avatar strip. Recomputed on every
// call because current status decays with wall-clock time.
func (c *Controller) RecentStrip() []story.Story {
	c.mu.Lock()
	stories := c.stories
	c.mu.Unlock()
	return recency.Current(stories, c.now())
}

// SubmitUpload validates the file, uploads it to the media host and
// submits the story. Precondition failures (size, type) reject
// synchronously before any network call; an upload failure surfaces
// as ErrUploadFailed and never reaches the story service. Only one
// upload may be in flight per controller.
func (c *Controller) SubmitUpload(ctx context.Context, filename string, data []byte, instaURL string) (*story.Story, error) {
	if len(data) > MaxUploadSize {
		return nil, ErrFileTooLarge
	}

	mtype := mimetype.Detect(data)
	isImage := strings.HasPrefix(mtype.String(), "image/")
	isVideo := strings.HasPrefix(mtype.String(), "video/")
	if !isImage && !isVideo {
		return nil, fmt.Errorf("%w: got %s", ErrUnsupportedType, mtype.String())
	}

	c.mu.Lock()
	if c.uploading {
		c.mu.Unlock()
		return nil, ErrUploadInProgress
	}
	c.uploading = true
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.uploading = false
		c.mu.Unlock()
	}()

	mediaURL, err := c.uploader.Upload(ctx, data, filename)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}

	newStory, err := c.api.AddStory(ctx, c.agentID, story.AddStoryRequest{
		IsVideo:  isVideo,
		URL:      mediaURL,
		InstaURL: instaURL,
	})
	if err != nil {
		return nil, err
	}

	if err := c.Refresh(ctx); err != nil {
		return newStory, err
	}
	return newStory, nil
}

// Delete removes a story and refreshes the list. When the viewer is
// open on that story the lightbox transition owns the index repair.
func (c *Controller) Delete(ctx context.Context, storyID uuid.UUID) error {
	if current, ok := c.viewer.Current(); ok && current.ID == storyID {
		if err := c.viewer.DeleteCurrent(ctx); err != nil {
			return err
		}
		return c.Refresh(ctx)
	}

	if err := c.api.DeleteStory(ctx, storyID); err != nil {
		return err
	}
	return c.Refresh(ctx)
}

// Repost duplicates a story and refreshes the list. The viewer's
// position is left alone either way.
func (c *Controller) Repost(ctx context.Context, storyID uuid.UUID) (*story.Story, error) {
	if current, ok := c.viewer.Current(); ok && current.ID == storyID {
		repost, err := c.viewer.RepostCurrent(ctx)
		if err != nil {
			return nil, err
		}
		if err := c.refreshKeepingViewer(ctx); err != nil {
			return repost, err
		}
		return repost, nil
	}

	repost, err := c.api.RepostStory(ctx, storyID)
	if err != nil {
		return nil, err
	}
	return repost, c.Refresh(ctx)
}

// refreshKeepingViewer refreshes the backing collection for
// subsequent navigation without disturbing the open viewer's list:
// the repost is appended to the collection, not spliced into the
// currently viewed order.
func (c *Controller) refreshKeepingViewer(ctx context.Context) error {
	stories, err := c.api.ListStories(ctx, c.agentID)
	if err != nil {
		return fmt.Errorf("failed to refresh stories: %w", err)
	}
	recency.SortNewestFirst(stories)

	c.mu.Lock()
	c.stories = stories
	c.mu.Unlock()

	if !c.viewer.IsOpen() {
		c.viewer.SetStories(stories)
	}
	return nil
}
