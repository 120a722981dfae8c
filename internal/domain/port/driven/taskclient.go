package driven

import (
	"context"

	"github.com/ericfisherdev/taskdeck/internal/domain/model"
)

// TaskClient defines the driven port for the task-board provider's REST API.
type TaskClient interface {
	// FetchBoards returns all boards reachable by the credential.
	FetchBoards(ctx context.Context) ([]model.Board, error)

	// FetchCards returns the raw cards of one board.
	FetchCards(ctx context.Context, boardID string) ([]model.Card, error)
}
