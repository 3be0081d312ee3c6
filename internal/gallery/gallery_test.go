package gallery

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nestVistaAPI/internal/types/story"
)

var (
	pngBytes = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 13, 'I', 'H', 'D', 'R'}
	mp4Bytes = []byte{0, 0, 0, 0x18, 'f', 't', 'y', 'p', 'i', 's', 'o', 'm', 0, 0, 2, 0}
	txtBytes = []byte("definitely not media")
)

// fakeAPI is an in-memory stand-in for the story service. It returns
// the list oldest-first to prove consumers re-sort.
type fakeAPI struct {
	mu      sync.Mutex
	clock   time.Time
	stories []story.Story
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{clock: time.Now().Add(-time.Hour)}
}

func (f *fakeAPI) tick() time.Time {
	f.clock = f.clock.Add(time.Minute)
	return f.clock
}

func (f *fakeAPI) AddStory(ctx context.Context, agentID uuid.UUID, req story.AddStoryRequest) (*story.Story, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	st := story.Story{
		ID:       uuid.New(),
		AgentID:  agentID,
		IsVideo:  req.IsVideo,
		URL:      req.URL,
		InstaURL: req.InstaURL,
		Date:     f.tick(),
	}
	f.stories = append(f.stories, st)
	return &st, nil
}

func (f *fakeAPI) ListStories(ctx context.Context, agentID uuid.UUID) ([]story.Story, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]story.Story, len(f.stories))
	copy(out, f.stories)
	return out, nil
}

func (f *fakeAPI) DeleteStory(ctx context.Context, storyID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, s := range f.stories {
		if s.ID == storyID {
			f.stories = append(f.stories[:i], f.stories[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("story not found")
}

func (f *fakeAPI) RepostStory(ctx context.Context, storyID uuid.UUID) (*story.Story, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range f.stories {
		if s.ID == storyID {
			repost := s
			repost.ID = uuid.New()
			repost.Date = f.tick()
			f.stories = append(f.stories, repost)
			return &repost, nil
		}
	}
	return nil, fmt.Errorf("story not found")
}

type fakeUploader struct {
	mu      sync.Mutex
	calls   int
	fail    bool
	block   chan struct{}
	nextURL string
}

func (u *fakeUploader) Upload(ctx context.Context, data []byte, filename string) (string, error) {
	u.mu.Lock()
	u.calls++
	block := u.block
	u.mu.Unlock()
	if block != nil {
		<-block
	}
	if u.fail {
		return "", fmt.Errorf("media host unavailable")
	}
	if u.nextURL != "" {
		return u.nextURL, nil
	}
	return "https://res.cloudinary.com/nestvista/" + filename, nil
}

func newController(api StoryAPI, up Uploader) *Controller {
	return NewController(uuid.New(), api, up, nil)
}

func TestRefreshSortsNewestFirst(t *testing.T) {
	api := newFakeAPI()
	c := newController(api, &fakeUploader{})
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := api.AddStory(ctx, c.agentID, story.AddStoryRequest{URL: fmt.Sprintf("https://x/%d.png", i)})
		require.NoError(t, err)
	}

	require.NoError(t, c.Refresh(ctx))
	stories := c.Stories()
	require.Len(t, stories, 3)
	for i := 0; i < len(stories)-1; i++ {
		assert.False(t, stories[i].Date.Before(stories[i+1].Date))
	}
}

func TestSubmitUploadRejectsOversizedFile(t *testing.T) {
	up := &fakeUploader{}
	c := newController(newFakeAPI(), up)

	big := make([]byte, MaxUploadSize+1)
	copy(big, pngBytes)

	_, err := c.SubmitUpload(context.Background(), "big.png", big, "")
	assert.ErrorIs(t, err, ErrFileTooLarge)
	assert.Zero(t, up.calls, "rejection happens before any network call")
}

func TestSubmitUploadRejectsNonMedia(t *testing.T) {
	up := &fakeUploader{}
	c := newController(newFakeAPI(), up)

	_, err := c.SubmitUpload(context.Background(), "notes.txt", txtBytes, "")
	assert.ErrorIs(t, err, ErrUnsupportedType)
	assert.Zero(t, up.calls)
}

func TestSubmitUploadImage(t *testing.T) {
	api := newFakeAPI()
	up := &fakeUploader{nextURL: "https://res.cloudinary.com/nestvista/tour.png"}
	c := newController(api, up)

	st, err := c.SubmitUpload(context.Background(), "tour.png", pngBytes, "")
	require.NoError(t, err)
	assert.False(t, st.IsVideo)
	assert.Equal(t, "https://res.cloudinary.com/nestvista/tour.png", st.URL)
	assert.Equal(t, "", st.InstaURL)
	assert.Len(t, c.Stories(), 1, "list refreshed after submit")
}

func TestSubmitUploadVideoSetsIsVideo(t *testing.T) {
	c := newController(newFakeAPI(), &fakeUploader{})

	st, err := c.SubmitUpload(context.Background(), "walkthrough.mp4", mp4Bytes, "https://instagram.com/p/abc")
	require.NoError(t, err)
	assert.True(t, st.IsVideo)
	assert.Equal(t, "https://instagram.com/p/abc", st.InstaURL)
}

func TestSubmitUploadFailureNeverReachesService(t *testing.T) {
	api := newFakeAPI()
	c := newController(api, &fakeUploader{fail: true})

	_, err := c.SubmitUpload(context.Background(), "tour.png", pngBytes, "")
	assert.ErrorIs(t, err, ErrUploadFailed)
	assert.Empty(t, api.stories, "no story submitted when the upload fails")
}

func TestSingleInFlightUpload(t *testing.T) {
	up := &fakeUploader{block: make(chan struct{})}
	c := newController(newFakeAPI(), up)

	done := make(chan error, 1)
	go func() {
		_, err := c.SubmitUpload(context.Background(), "a.png", pngBytes, "")
		done <- err
	}()

	// Wait for the first upload to be in flight.
	require.Eventually(t, func() bool {
		up.mu.Lock()
		defer up.mu.Unlock()
		return up.calls == 1
	}, time.Second, 5*time.Millisecond)

	_, err := c.SubmitUpload(context.Background(), "b.png", pngBytes, "")
	assert.ErrorIs(t, err, ErrUploadInProgress)

	close(up.block)
	require.NoError(t, <-done)
}

func TestRecentStripFiltersStale(t *testing.T) {
	api := newFakeAPI()
	c := newController(api, &fakeUploader{})
	ctx := context.Background()

	fresh, err := api.AddStory(ctx, c.agentID, story.AddStoryRequest{URL: "https://x/new.png"})
	require.NoError(t, err)

	api.mu.Lock()
	api.stories = append(api.stories, story.Story{
		ID:      uuid.New(),
		AgentID: c.agentID,
		URL:     "https://x/old.png",
		Date:    time.Now().Add(-30 * time.Hour),
	})
	api.mu.Unlock()

	require.NoError(t, c.Refresh(ctx))
	require.Len(t, c.Stories(), 2)

	strip := c.RecentStrip()
	require.Len(t, strip, 1)
	assert.Equal(t, fresh.ID, strip[0].ID)
}

func TestDeleteDelegatesToOpenLightbox(t *testing.T) {
	api := newFakeAPI()
	c := newController(api, &fakeUploader{})
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := api.AddStory(ctx, c.agentID, story.AddStoryRequest{URL: fmt.Sprintf("https://x/%d.png", i)})
		require.NoError(t, err)
	}
	require.NoError(t, c.Refresh(ctx))

	lb := c.Lightbox()
	require.True(t, lb.Open(1))
	target, ok := lb.Current()
	require.True(t, ok)

	require.NoError(t, c.Delete(ctx, target.ID))
	assert.True(t, lb.IsOpen(), "lightbox repaired its own index")
	assert.Equal(t, 0, lb.Index())
	assert.Len(t, c.Stories(), 1)
}

// Mirrors the full add/repost/delete walkthrough an agent performs on
// the dashboard.
func TestGalleryEndToEnd(t *testing.T) {
	api := newFakeAPI()
	up := &fakeUploader{}
	c := newController(api, up)
	ctx := context.Background()

	require.NoError(t, c.Refresh(ctx))
	assert.Empty(t, c.Stories())

	first, err := c.SubmitUpload(ctx, "1.png", pngBytes, "")
	require.NoError(t, err)
	assert.Len(t, c.Stories(), 1)

	second, err := c.SubmitUpload(ctx, "2.mp4", mp4Bytes, "")
	require.NoError(t, err)
	require.Len(t, c.Stories(), 2)
	assert.Equal(t, second.ID, c.Stories()[0].ID, "newest first")
	assert.Equal(t, first.ID, c.Stories()[1].ID)

	repost, err := c.Repost(ctx, first.ID)
	require.NoError(t, err)
	require.Len(t, c.Stories(), 3)
	assert.Equal(t, repost.ID, c.Stories()[0].ID, "repost is the newest entry")
	assert.Equal(t, first.URL, repost.URL)
	assert.NotEqual(t, first.ID, repost.ID, "repost is a copy, not a move")
	assert.False(t, repost.Date.Before(first.Date))

	require.NoError(t, c.Delete(ctx, second.ID))
	stories := c.Stories()
	require.Len(t, stories, 2)
	for _, s := range stories {
		assert.NotEqual(t, second.ID, s.ID, "deleted story is gone")
	}
}
