package services

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	qrcode "github.com/skip2/go-qrcode"

	"nestVistaAPI/internal/recency"
	"nestVistaAPI/internal/types/story"
)

// Sentinel errors the handler layer maps onto HTTP status codes.
var (
	ErrAgentNotFound  = errors.New("agent not found")
	ErrStoryNotFound  = errors.New("story not found")
	ErrInvalidURL     = errors.New("invalid url")
	ErrInvalidStoryID = errors.New("invalid story id")
)

// storyDB is the slice of pgxpool.Pool the service touches; tests
// substitute a mock pool behind it.
type storyDB interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type StoryService struct {
	db                  storyDB
	notificationService *NotificationService
}

func NewStoryService(db *pgxpool.Pool, notificationService *NotificationService) *StoryService {
	return &StoryService{
		db:                  db,
		notificationService: notificationService,
	}
}

// AddStory appends a new story to the agent's collection with a fresh
// id and date = now. The url is required; insta_url is optional and
// stored as an empty string when absent.
func (s *StoryService) AddStory(ctx context.Context, agentID uuid.UUID, req *story.AddStoryRequest) (*story.Story, error) {
	mediaURL := strings.TrimSpace(req.URL)
	if mediaURL == "" || !validMediaURL(mediaURL) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidURL, req.URL)
	}

	instaURL := strings.TrimSpace(req.InstaURL)
	if instaURL != "" && !validMediaURL(instaURL) {
		return nil, fmt.Errorf("%w: insta_url %q", ErrInvalidURL, req.InstaURL)
	}

	exists, err := s.agentExists(ctx, agentID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrAgentNotFound, agentID)
	}

	newStory := &story.Story{
		ID:       uuid.New(),
		AgentID:  agentID,
		IsVideo:  req.IsVideo,
		URL:      mediaURL,
		InstaURL: instaURL,
		Date:     time.Now(),
	}

	query := `
	INSERT INTO stories (id, agent_id, is_video, url, insta_url, created_at)
	VALUES ($1, $2, $3, $4, $5, $6)
	RETURNING id, agent_id, is_video, url, insta_url, created_at
	`

	err = s.db.QueryRow(
		ctx,
		query,
		newStory.ID,
		newStory.AgentID,
		newStory.IsVideo,
		newStory.URL,
		newStory.InstaURL,
		newStory.Date,
	).Scan(
		&newStory.ID,
		&newStory.AgentID,
		&newStory.IsVideo,
		&newStory.URL,
		&newStory.InstaURL,
		&newStory.Date,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to add story: %w", err)
	}

	if s.notificationService != nil {
		go s.notificationService.NotifyStoryPublished(context.Background(), newStory)
	}

	return newStory, nil
}

// ListStories returns the agent's full story collection, newest first.
// An empty collection is a valid result, not an error.
func (s *StoryService) ListStories(ctx context.Context, agentID uuid.UUID) ([]story.Story, error) {
	exists, err := s.agentExists(ctx, agentID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrAgentNotFound, agentID)
	}

	query := `
	SELECT id, agent_id, is_video, url, insta_url, created_at
	FROM stories
	WHERE agent_id = $1
	ORDER BY created_at DESC, id DESC
	`

	rows, err := s.db.Query(ctx, query, agentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list stories: %w", err)
	}
	defer rows.Close()

	stories := []story.Story{}
	for rows.Next() {
		var st story.Story
		if err := rows.Scan(&st.ID, &st.AgentID, &st.IsVideo, &st.URL, &st.InstaURL, &st.Date); err != nil {
			return nil, fmt.Errorf("failed to scan story: %w", err)
		}
		stories = append(stories, st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read stories: %w", err)
	}

	return stories, nil
}

// DeleteStory removes the story with the given id from the caller's
// own collection. The search never leaves the caller's scope.
func (s *StoryService) DeleteStory(ctx context.Context, rawStoryID string, callerAgentID uuid.UUID) (uuid.UUID, error) {
	storyID, err := uuid.Parse(rawStoryID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %q", ErrInvalidStoryID, rawStoryID)
	}

	var deletedID uuid.UUID
	err = s.db.QueryRow(
		ctx,
		`DELETE FROM stories WHERE id = $1 AND agent_id = $2 RETURNING id`,
		storyID, callerAgentID,
	).Scan(&deletedID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return uuid.Nil, fmt.Errorf("%w: %s", ErrStoryNotFound, storyID)
		}
		return uuid.Nil, fmt.Errorf("failed to delete story: %w", err)
	}

	return deletedID, nil
}

// RepostStory duplicates an existing story of the caller as a brand
// new one: same media, fresh id and date. The original is untouched.
func (s *StoryService) RepostStory(ctx context.Context, rawStoryID string, callerAgentID uuid.UUID) (*story.Story, error) {
	storyID, err := uuid.Parse(rawStoryID)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStoryID, rawStoryID)
	}

	repost := &story.Story{}
	query := `
	INSERT INTO stories (id, agent_id, is_video, url, insta_url, created_at)
	SELECT $1, agent_id, is_video, url, insta_url, $2
	FROM stories
	WHERE id = $3 AND agent_id = $4
	RETURNING id, agent_id, is_video, url, insta_url, created_at
	`

	err = s.db.QueryRow(ctx, query, uuid.New(), time.Now(), storyID, callerAgentID).Scan(
		&repost.ID,
		&repost.AgentID,
		&repost.IsVideo,
		&repost.URL,
		&repost.InstaURL,
		&repost.Date,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrStoryNotFound, storyID)
		}
		return nil, fmt.Errorf("failed to repost story: %w", err)
	}

	log.Printf("StoryService: agent %s reposted story %s as %s", callerAgentID, storyID, repost.ID)
	return repost, nil
}

// RecentStoriesByAgent powers the avatar strip on the public
// agent-discovery view: one most-recent current story per agent,
// joined with the agent display facet, newest first across agents.
// The query only pre-filters to the current window; the grouping
// policy itself lives in the recency package, the same code the
// dashboard applies client-side.
func (s *StoryService) RecentStoriesByAgent(ctx context.Context) ([]story.AgentRecentStory, error) {
	query := `
	SELECT st.id, st.agent_id, st.is_video, st.url, st.insta_url, st.created_at,
		a.name, a.image_url, a.agency
	FROM stories st
	JOIN agents a ON a.id = st.agent_id
	WHERE st.created_at >= $1
	`

	now := time.Now()
	rows, err := s.db.Query(ctx, query, now.Add(-recency.Window))
	if err != nil {
		return nil, fmt.Errorf("failed to query recent stories: %w", err)
	}
	defer rows.Close()

	stories := []story.Story{}
	facets := map[uuid.UUID]story.AgentRecentStory{}
	for rows.Next() {
		var item story.AgentRecentStory
		err := rows.Scan(
			&item.Story.ID,
			&item.Story.AgentID,
			&item.Story.IsVideo,
			&item.Story.URL,
			&item.Story.InstaURL,
			&item.Story.Date,
			&item.AgentName,
			&item.AgentImg,
			&item.Agency,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan recent story: %w", err)
		}
		stories = append(stories, item.Story)
		facets[item.Story.ID] = item
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read recent stories: %w", err)
	}

	recent := make([]story.AgentRecentStory, 0, len(stories))
	for _, st := range recency.LatestPerAgent(stories, now) {
		recent = append(recent, facets[st.ID])
	}
	return recent, nil
}

// StoryShareQr renders the story's deep link as a base64 PNG so agents
// can share a story straight from the dashboard.
func (s *StoryService) StoryShareQr(ctx context.Context, rawStoryID string, callerAgentID uuid.UUID) (*story.ShareQrResponse, error) {
	storyID, err := uuid.Parse(rawStoryID)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStoryID, rawStoryID)
	}

	var agentID uuid.UUID
	err = s.db.QueryRow(
		ctx,
		`SELECT agent_id FROM stories WHERE id = $1 AND agent_id = $2`,
		storyID, callerAgentID,
	).Scan(&agentID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrStoryNotFound, storyID)
		}
		return nil, fmt.Errorf("failed to locate story: %w", err)
	}

	deepLink := fmt.Sprintf("nestvista://stories/%s/%s", agentID, storyID)

	pngBytes, err := qrcode.Encode(deepLink, qrcode.Medium, 256)
	if err != nil {
		return nil, fmt.Errorf("failed to generate QR png: %w", err)
	}

	return &story.ShareQrResponse{
		StoryID:      storyID,
		DeepLink:     deepLink,
		QrCodeBase64: base64.StdEncoding.EncodeToString(pngBytes),
	}, nil
}

func (s *StoryService) agentExists(ctx context.Context, agentID uuid.UUID) (bool, error) {
	var id uuid.UUID
	err := s.db.QueryRow(ctx, `SELECT id FROM agents WHERE id = $1`, agentID).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("failed to look up agent: %w", err)
	}
	return true, nil
}

// validMediaURL accepts absolute http(s) URLs only.
func validMediaURL(raw string) bool {
	u, err := url.ParseRequestURI(raw)
	if err != nil {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	return u.Host != ""
}
