package agent

import (
	"time"

	"github.com/google/uuid"
)

// Agent is the facet of the agent aggregate the stories subsystem
// consumes. Full agent CRUD lives with the listings backend.
type Agent struct {
	ID        uuid.UUID `json:"id"`
	ClerkID   string    `json:"clerkId"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	ImageURL  string    `json:"imageUrl,omitempty"`
	Agency    string    `json:"agency,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}
