package query

import (
	"context"
	"fmt"

	"github.com/alem-hub/internship-hub/internal/domain/internship"
	"github.com/alem-hub/internship-hub/internal/domain/shared"
)

// ListSessionsHandler returns a trainee's session history, newest first.
type ListSessionsHandler struct {
	repo internship.Repository
}

// NewListSessionsHandler creates a new ListSessionsHandler.
func NewListSessionsHandler(repo internship.Repository) *ListSessionsHandler {
	return &ListSessionsHandler{repo: repo}
}

// Handle lists sessions of an existing trainee.
func (h *ListSessionsHandler) Handle(ctx context.Context, traineeID int64) ([]*internship.Session, error) {
	if _, err := h.repo.GetTrainee(ctx, traineeID); err != nil {
		return nil, fmt.Errorf("list_sessions: %w", shared.Persistence("GetTrainee", err))
	}
	sessions, err := h.repo.ListSessions(ctx, traineeID)
	if err != nil {
		return nil, fmt.Errorf("list_sessions: %w", shared.Persistence("ListSessions", err))
	}
	return sessions, nil
}
