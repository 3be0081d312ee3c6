package story

import (
	"time"

	"github.com/google/uuid"
)

// Story is one ephemeral media post on an agent profile. Stories are
// never edited in place: they are created (add/repost) or deleted.
type Story struct {
	ID       uuid.UUID `json:"id"`
	AgentID  uuid.UUID `json:"agent_id"`
	IsVideo  bool      `json:"isVideo"`
	URL      string    `json:"url"`
	InstaURL string    `json:"insta_url"`
	Date     time.Time `json:"date"`
}

type AddStoryRequest struct {
	IsVideo  bool   `json:"isVideo"`
	URL      string `json:"url"`
	InstaURL string `json:"insta_url,omitempty"`
}

type StoryResponse struct {
	Message string `json:"message"`
	Story   *Story `json:"story"`
}

type ListStoriesResponse struct {
	Stories []Story `json:"stories"`
	Count   int     `json:"count"`
}

type DeleteStoryResponse struct {
	Message        string    `json:"message"`
	DeletedStoryID uuid.UUID `json:"deletedStoryId"`
}

// AgentRecentStory is the compact avatar-strip item on the public
// agent-discovery view: the single most recent current story per
// agent, joined with the agent's display facet.
type AgentRecentStory struct {
	Story     Story  `json:"story"`
	AgentName string `json:"agent_name"`
	AgentImg  string `json:"agent_img"`
	Agency    string `json:"agency"`
}

type ShareQrResponse struct {
	StoryID      uuid.UUID `json:"story_id"`
	DeepLink     string    `json:"deep_link"`
	QrCodeBase64 string    `json:"qr_code_base64"`
}
