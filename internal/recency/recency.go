// Package recency derives the "current stories" view. Current status
// decays with wall-clock time, so it is recomputed on every call and
// never cached or persisted.
package recency

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"nestVistaAPI/internal/types/story"
)

// Window is how long a story stays current after creation.
const Window = 24 * time.Hour

// IsCurrent reports whether s is at most 24 hours old at the given
// instant. The boundary is inclusive: a story exactly 24h old is
// still current.
func IsCurrent(s story.Story, now time.Time) bool {
	return now.Sub(s.Date) <= Window
}

// Current returns the current subset of stories, preserving order.
func Current(stories []story.Story, now time.Time) []story.Story {
	out := make([]story.Story, 0, len(stories))
	for _, s := range stories {
		if IsCurrent(s, now) {
			out = append(out, s)
		}
	}
	return out
}

// SortNewestFirst orders stories descending by date. Ties are broken
// by id so every consumer sees the same order regardless of how the
// rows came back from storage.
func SortNewestFirst(stories []story.Story) {
	sort.SliceStable(stories, func(i, j int) bool {
		if !stories[i].Date.Equal(stories[j].Date) {
			return stories[i].Date.After(stories[j].Date)
		}
		return stories[i].ID.String() > stories[j].ID.String()
	})
}

// LatestPerAgent keeps the single most recent current story per agent,
// sorted newest-first across agents. Used for the compact avatar strip
// on the agent-discovery view; the full per-agent list stays available
// through ListStories.
func LatestPerAgent(stories []story.Story, now time.Time) []story.Story {
	latest := make(map[uuid.UUID]story.Story)
	for _, s := range stories {
		if !IsCurrent(s, now) {
			continue
		}
		best, ok := latest[s.AgentID]
		if !ok || s.Date.After(best.Date) {
			latest[s.AgentID] = s
		}
	}

	out := make([]story.Story, 0, len(latest))
	for _, s := range latest {
		out = append(out, s)
	}
	SortNewestFirst(out)
	return out
}
