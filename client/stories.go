// Package client is the HTTP consumer of the stories API, used by the
// gallery controller and the lightbox on the dashboard side.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"nestVistaAPI/internal/types/story"
)

var (
	ErrBadRequest = errors.New("bad request")
	ErrNotFound   = errors.New("not found")
)

type Client struct {
	baseURL    string
	authToken  string
	httpClient *http.Client
}

// New builds a client for the given API base URL, e.g.
// "https://api.nestvista.com/api/v1". The auth token is the Clerk
// session JWT and is only needed for delete/repost.
func New(baseURL, authToken string) *Client {
	return &Client{
		baseURL:   baseURL,
		authToken: authToken,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

func (c *Client) AddStory(ctx context.Context, agentID uuid.UUID, req story.AddStoryRequest) (*story.Story, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to encode story: %w", err)
	}

	var resp story.StoryResponse
	url := fmt.Sprintf("%s/agents/stories/%s", c.baseURL, agentID)
	if err := c.do(ctx, http.MethodPost, url, body, &resp); err != nil {
		return nil, err
	}
	return resp.Story, nil
}

func (c *Client) ListStories(ctx context.Context, agentID uuid.UUID) ([]story.Story, error) {
	var resp story.ListStoriesResponse
	url := fmt.Sprintf("%s/agents/stories/%s", c.baseURL, agentID)
	if err := c.do(ctx, http.MethodGet, url, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Stories, nil
}

func (c *Client) DeleteStory(ctx context.Context, storyID uuid.UUID) error {
	var resp story.DeleteStoryResponse
	url := fmt.Sprintf("%s/agents/stories/%s", c.baseURL, storyID)
	return c.do(ctx, http.MethodDelete, url, nil, &resp)
}

func (c *Client) RepostStory(ctx context.Context, storyID uuid.UUID) (*story.Story, error) {
	var resp story.StoryResponse
	url := fmt.Sprintf("%s/agents/stories/%s/repost", c.baseURL, storyID)
	if err := c.do(ctx, http.MethodPost, url, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Story, nil
}

func (c *Client) do(ctx context.Context, method, url string, body []byte, out any) error {
	var reader *bytes.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.authToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.authToken)
	}

	res, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode >= 400 {
		var apiErr struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(res.Body).Decode(&apiErr)

		switch res.StatusCode {
		case http.StatusBadRequest:
			return fmt.Errorf("%w: %s", ErrBadRequest, apiErr.Error)
		case http.StatusNotFound:
			return fmt.Errorf("%w: %s", ErrNotFound, apiErr.Error)
		default:
			return fmt.Errorf("unexpected status %d: %s", res.StatusCode, apiErr.Error)
		}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
