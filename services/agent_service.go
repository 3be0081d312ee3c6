package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"nestVistaAPI/internal/types/agent"
)

// AgentService is the stories subsystem's window onto the agent
// aggregate. Agent CRUD itself belongs to the listings backend.
type AgentService struct {
	db *pgxpool.Pool
}

func NewAgentService(db *pgxpool.Pool) *AgentService {
	return &AgentService{db: db}
}

// GetAgentByClerkID resolves the session identity to the caller's own
// agent record. Delete/repost scoping hangs off this lookup.
func (s *AgentService) GetAgentByClerkID(ctx context.Context, clerkID string) (*agent.Agent, error) {
	query := `
	SELECT id, clerk_id, name, email, phone, image_url, agency, created_at
	FROM agents
	WHERE clerk_id = $1
	`

	a := &agent.Agent{}
	err := s.db.QueryRow(ctx, query, clerkID).Scan(
		&a.ID,
		&a.ClerkID,
		&a.Name,
		&a.Email,
		&a.Phone,
		&a.ImageURL,
		&a.Agency,
		&a.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: clerk_id %s", ErrAgentNotFound, clerkID)
		}
		return nil, fmt.Errorf("failed to get agent: %w", err)
	}

	return a, nil
}
