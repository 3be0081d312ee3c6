package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"nestVistaAPI/internal/notification"
	"nestVistaAPI/internal/types/story"
)

// NotificationService pushes "new story" alerts to buyers following an
// agent. Delivery is best-effort: a failed push never fails the story
// mutation that triggered it.
type NotificationService struct {
	db           *pgxpool.Pool
	pushProvider notification.PushProvider
}

func NewNotificationService(db *pgxpool.Pool) *NotificationService {
	return &NotificationService{db: db}
}

func (s *NotificationService) SetPushProvider(p notification.PushProvider) {
	s.pushProvider = p
}

// NotifyStoryPublished fans a push out to every registered device of
// the agent's followers. Called in a goroutine from AddStory.
func (s *NotificationService) NotifyStoryPublished(ctx context.Context, st *story.Story) {
	if s.pushProvider == nil {
		return
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	agentName, tokens, err := s.followerTokens(ctx, st)
	if err != nil {
		log.Printf("NotificationService: skipping story push: %v", err)
		return
	}
	if len(tokens) == 0 {
		return
	}

	title := "New story"
	body := fmt.Sprintf("%s just posted a new story", agentName)
	data := map[string]any{
		"type":     "story_published",
		"agent_id": st.AgentID.String(),
		"story_id": st.ID.String(),
	}

	if err := s.pushProvider.SendPush(ctx, tokens, title, body, data); err != nil {
		log.Printf("NotificationService: story push failed for agent %s: %v", st.AgentID, err)
	}
}

func (s *NotificationService) followerTokens(ctx context.Context, st *story.Story) (string, []notification.DeviceToken, error) {
	var agentName string
	err := s.db.QueryRow(ctx, `SELECT name FROM agents WHERE id = $1`, st.AgentID).Scan(&agentName)
	if err != nil {
		return "", nil, fmt.Errorf("failed to load agent for push: %w", err)
	}

	query := `
	SELECT dt.token, dt.platform
	FROM story_followers sf
	JOIN device_tokens dt ON dt.clerk_id = sf.follower_clerk_id
	WHERE sf.agent_id = $1
	`

	rows, err := s.db.Query(ctx, query, st.AgentID)
	if err != nil {
		return "", nil, fmt.Errorf("failed to load follower tokens: %w", err)
	}
	defer rows.Close()

	var tokens []notification.DeviceToken
	for rows.Next() {
		var t notification.DeviceToken
		if err := rows.Scan(&t.Token, &t.Platform); err != nil {
			return "", nil, fmt.Errorf("failed to scan device token: %w", err)
		}
		tokens = append(tokens, t)
	}
	if err := rows.Err(); err != nil {
		return "", nil, fmt.Errorf("failed to read device tokens: %w", err)
	}

	return agentName, tokens, nil
}
