package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nestVistaAPI/internal/types/story"
)

func newMockedService(t *testing.T) (pgxmock.PgxPoolIface, *StoryService) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return mock, &StoryService{db: mock}
}

func TestValidMediaURL(t *testing.T) {
	valid := []string{
		"https://example.com/a.jpg",
		"http://cdn.nestvista.com/stories/tour.mp4",
		"https://res.cloudinary.com/nestvista/video/upload/v1/walkthrough.mp4",
	}
	for _, u := range valid {
		assert.True(t, validMediaURL(u), "expected %q to be accepted", u)
	}

	invalid := []string{
		"",
		"not-a-url",
		"example.com/a.jpg",
		"ftp://example.com/a.jpg",
		"https://",
		"//example.com/a.jpg",
		"javascript:alert(1)",
	}
	for _, u := range invalid {
		assert.False(t, validMediaURL(u), "expected %q to be rejected", u)
	}
}

func TestAddStoryInvalidURLSkipsDatabase(t *testing.T) {
	mock, svc := newMockedService(t)

	_, err := svc.AddStory(context.Background(), uuid.New(), &story.AddStoryRequest{URL: "not-a-url"})
	assert.ErrorIs(t, err, ErrInvalidURL)
	assert.NoError(t, mock.ExpectationsWereMet(), "no query reaches the database")
}

func TestAddStoryUnknownAgentMapsToNotFound(t *testing.T) {
	mock, svc := newMockedService(t)
	agentID := uuid.New()

	mock.ExpectQuery(`SELECT id FROM agents`).
		WithArgs(agentID).
		WillReturnError(pgx.ErrNoRows)

	_, err := svc.AddStory(context.Background(), agentID, &story.AddStoryRequest{URL: "https://example.com/a.jpg"})
	assert.ErrorIs(t, err, ErrAgentNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListStoriesScansRows(t *testing.T) {
	mock, svc := newMockedService(t)
	agentID := uuid.New()
	first, second := uuid.New(), uuid.New()
	now := time.Now()

	mock.ExpectQuery(`SELECT id FROM agents`).
		WithArgs(agentID).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(agentID))
	mock.ExpectQuery(`FROM stories`).
		WithArgs(agentID).
		WillReturnRows(pgxmock.NewRows([]string{"id", "agent_id", "is_video", "url", "insta_url", "created_at"}).
			AddRow(first, agentID, true, "https://x/1.mp4", "", now).
			AddRow(second, agentID, false, "https://x/2.png", "https://instagram.com/p/abc", now.Add(-time.Hour)))

	got, err := svc.ListStories(context.Background(), agentID)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, first, got[0].ID)
	assert.True(t, got[0].IsVideo)
	assert.Equal(t, second, got[1].ID)
	assert.Equal(t, "https://instagram.com/p/abc", got[1].InstaURL)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteStoryNoRowMapsToNotFound(t *testing.T) {
	mock, svc := newMockedService(t)
	caller := uuid.New()
	storyID := uuid.New()

	mock.ExpectQuery(`DELETE FROM stories`).
		WithArgs(storyID, caller).
		WillReturnError(pgx.ErrNoRows)

	_, err := svc.DeleteStory(context.Background(), storyID.String(), caller)
	assert.ErrorIs(t, err, ErrStoryNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteStoryReturnsDeletedID(t *testing.T) {
	mock, svc := newMockedService(t)
	caller := uuid.New()
	storyID := uuid.New()

	mock.ExpectQuery(`DELETE FROM stories`).
		WithArgs(storyID, caller).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(storyID))

	got, err := svc.DeleteStory(context.Background(), storyID.String(), caller)
	require.NoError(t, err)
	assert.Equal(t, storyID, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteStoryInvalidIDSkipsDatabase(t *testing.T) {
	mock, svc := newMockedService(t)

	_, err := svc.DeleteStory(context.Background(), "not-a-uuid", uuid.New())
	assert.ErrorIs(t, err, ErrInvalidStoryID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecentStoriesByAgentKeepsOnePerAgent(t *testing.T) {
	mock, svc := newMockedService(t)
	agentA, agentB := uuid.New(), uuid.New()
	aNew, aOld, bOnly := uuid.New(), uuid.New(), uuid.New()
	now := time.Now()

	cols := []string{"id", "agent_id", "is_video", "url", "insta_url", "created_at", "name", "image_url", "agency"}
	mock.ExpectQuery(`FROM stories st`).
		WithArgs(pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows(cols).
			AddRow(aOld, agentA, false, "https://x/a-old.png", "", now.Add(-3*time.Hour), "Ada", "https://img/a.png", "NestVista Realty").
			AddRow(aNew, agentA, true, "https://x/a-new.mp4", "", now.Add(-time.Hour), "Ada", "https://img/a.png", "NestVista Realty").
			AddRow(bOnly, agentB, false, "https://x/b.png", "", now.Add(-2*time.Hour), "Ben", "https://img/b.png", "Skyline Homes"))

	got, err := svc.RecentStoriesByAgent(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, aNew, got[0].Story.ID, "only the newest story per agent survives")
	assert.Equal(t, "Ada", got[0].AgentName)
	assert.Equal(t, bOnly, got[1].Story.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepostStoryNoRowMapsToNotFound(t *testing.T) {
	mock, svc := newMockedService(t)
	caller := uuid.New()
	storyID := uuid.New()

	mock.ExpectQuery(`INSERT INTO stories`).
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), storyID, caller).
		WillReturnError(pgx.ErrNoRows)

	_, err := svc.RepostStory(context.Background(), storyID.String(), caller)
	assert.ErrorIs(t, err, ErrStoryNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
