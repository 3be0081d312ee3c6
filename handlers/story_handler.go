package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"nestVistaAPI/internal/types/agent"
	"nestVistaAPI/internal/types/story"
	"nestVistaAPI/middleware"
	"nestVistaAPI/services"
)

// storyAPI is what the handler needs from the story service; tests
// substitute a stub.
type storyAPI interface {
	AddStory(ctx context.Context, agentID uuid.UUID, req *story.AddStoryRequest) (*story.Story, error)
	ListStories(ctx context.Context, agentID uuid.UUID) ([]story.Story, error)
	DeleteStory(ctx context.Context, rawStoryID string, callerAgentID uuid.UUID) (uuid.UUID, error)
	RepostStory(ctx context.Context, rawStoryID string, callerAgentID uuid.UUID) (*story.Story, error)
	RecentStoriesByAgent(ctx context.Context) ([]story.AgentRecentStory, error)
	StoryShareQr(ctx context.Context, rawStoryID string, callerAgentID uuid.UUID) (*story.ShareQrResponse, error)
}

type agentAPI interface {
	GetAgentByClerkID(ctx context.Context, clerkID string) (*agent.Agent, error)
}

type StoryHandler struct {
	storyService storyAPI
	agentService agentAPI
}

func NewStoryHandler(storyService *services.StoryService, agentService *services.AgentService) *StoryHandler {
	return &StoryHandler{
		storyService: storyService,
		agentService: agentService,
	}
}

func (h *StoryHandler) AddStory(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	agentID, err := uuid.Parse(mux.Vars(r)["agentId"])
	if err != nil {
		respondWithError(w, http.StatusNotFound, "Agent not found")
		return
	}

	var req story.AddStoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	newStory, err := h.storyService.AddStory(ctx, agentID, &req)
	if err != nil {
		respondStoryError(w, err)
		return
	}

	middleware.CountStoryPublished(newStory.IsVideo)
	respondWithJSON(w, http.StatusCreated, story.StoryResponse{
		Message: "Story added successfully",
		Story:   newStory,
	})
}

func (h *StoryHandler) ListStories(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	agentID, err := uuid.Parse(mux.Vars(r)["agentId"])
	if err != nil {
		respondWithError(w, http.StatusNotFound, "Agent not found")
		return
	}

	stories, err := h.storyService.ListStories(ctx, agentID)
	if err != nil {
		respondStoryError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, story.ListStoriesResponse{
		Stories: stories,
		Count:   len(stories),
	})
}

func (h *StoryHandler) RecentStories(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	recent, err := h.storyService.RecentStoriesByAgent(ctx)
	if err != nil {
		respondStoryError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]any{
		"stories": recent,
		"count":   len(recent),
	})
}

// DeleteStory is session-scoped: the story is only searched for inside
// the calling agent's own collection.
func (h *StoryHandler) DeleteStory(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	caller, ok := h.callerAgent(ctx, w)
	if !ok {
		return
	}

	deletedID, err := h.storyService.DeleteStory(ctx, mux.Vars(r)["storyId"], caller.ID)
	if err != nil {
		respondStoryError(w, err)
		return
	}

	middleware.CountStoryDeleted()
	respondWithJSON(w, http.StatusOK, story.DeleteStoryResponse{
		Message:        "Story deleted successfully",
		DeletedStoryID: deletedID,
	})
}

func (h *StoryHandler) RepostStory(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	caller, ok := h.callerAgent(ctx, w)
	if !ok {
		return
	}

	repost, err := h.storyService.RepostStory(ctx, mux.Vars(r)["storyId"], caller.ID)
	if err != nil {
		respondStoryError(w, err)
		return
	}

	middleware.CountStoryReposted()
	respondWithJSON(w, http.StatusOK, story.StoryResponse{
		Message: "Story reposted successfully",
		Story:   repost,
	})
}

func (h *StoryHandler) StoryShareQr(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	caller, ok := h.callerAgent(ctx, w)
	if !ok {
		return
	}

	qr, err := h.storyService.StoryShareQr(ctx, mux.Vars(r)["storyId"], caller.ID)
	if err != nil {
		respondStoryError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, qr)
}

// callerAgent resolves the Clerk session to the caller's agent record.
func (h *StoryHandler) callerAgent(ctx context.Context, w http.ResponseWriter) (*agent.Agent, bool) {
	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return nil, false
	}

	caller, err := h.agentService.GetAgentByClerkID(ctx, clerkID)
	if err != nil {
		if errors.Is(err, services.ErrAgentNotFound) {
			respondWithError(w, http.StatusNotFound, "Agent not found")
		} else {
			respondWithError(w, http.StatusInternalServerError, "Internal server error")
		}
		return nil, false
	}

	return caller, true
}

func respondStoryError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrInvalidURL), errors.Is(err, services.ErrInvalidStoryID):
		respondWithError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrAgentNotFound):
		respondWithError(w, http.StatusNotFound, "Agent not found")
	case errors.Is(err, services.ErrStoryNotFound):
		respondWithError(w, http.StatusNotFound, "Story not found")
	default:
		respondWithError(w, http.StatusInternalServerError, "Internal server error")
	}
}

// Helper functions
func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error": "Internal server error"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"error": message})
}
