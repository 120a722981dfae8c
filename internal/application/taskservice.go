package application

import (
	"context"
	"errors"
	"fmt"

	"github.com/ericfisherdev/taskdeck/internal/domain/model"
	"github.com/ericfisherdev/taskdeck/internal/domain/port/driven"
)

// TaskClientFactory builds a task-board client bound to a resolved credential.
type TaskClientFactory func(ctx context.Context, cred *model.Credential) (driven.TaskClient, error)

// TaskService is the synchronous wrapper over the task-board provider. It
// aggregates cards across every board the account can see, and follows the
// shared error policy: transport and provider errors become a synthetic row,
// configuration errors are returned before any network call.
type TaskService struct {
	resolver  *Resolver
	newClient TaskClientFactory
	log       *LogService
}

// NewTaskService creates a TaskService.
func NewTaskService(resolver *Resolver, newClient TaskClientFactory, log *LogService) *TaskService {
	return &TaskService{resolver: resolver, newClient: newClient, log: log}
}

// FetchTasks flattens cards into one list, from every board the account can
// see or from the single board named by boardID. A closed card maps to
// Completed, an open one to Pending, and a card without a due date carries
// the NoDueDate sentinel. A board whose cards cannot be fetched contributes a
// single error row attributed to that board; the remaining boards still load.
func (s *TaskService) FetchTasks(ctx context.Context, boardID string) ([]model.TaskBoardItem, error) {
	client, err := s.client(ctx)
	if err != nil {
		var confErr *ConfigurationError
		if errors.As(err, &confErr) {
			return nil, confErr
		}
		return taskErrorRow("", err), nil
	}

	boards, err := client.FetchBoards(ctx)
	if err != nil {
		return taskErrorRow("", err), nil
	}
	if boardID != "" {
		filtered := boards[:0:0]
		for _, board := range boards {
			if board.ID == boardID {
				filtered = append(filtered, board)
			}
		}
		boards = filtered
	}

	items := []model.TaskBoardItem{}
	for _, board := range boards {
		cards, err := client.FetchCards(ctx, board.ID)
		if err != nil {
			items = append(items, taskErrorRow(board.Name, err)...)
			continue
		}
		for _, card := range cards {
			items = append(items, cardToItem(card, board.Name))
		}
	}

	s.log.Record(ctx, "fetch_tasks", fmt.Sprintf("Fetched %d tasks", len(items)))
	return items, nil
}

// TaskReport summarizes cards as total, completed, and pending counts. With
// aggregate set it spans every board; otherwise it covers the board named by
// boardID, defaulting to the account's first board. No boards at all is an
// empty report, not an error. Provider failures degrade to a zero report
// carrying the error text, the report-shaped analog of an error row.
func (s *TaskService) TaskReport(ctx context.Context, boardID string, aggregate bool) (*model.TaskReport, error) {
	client, err := s.client(ctx)
	if err != nil {
		var confErr *ConfigurationError
		if errors.As(err, &confErr) {
			return nil, confErr
		}
		return taskErrorReport(err), nil
	}

	var boardIDs []string
	switch {
	case aggregate:
		boards, err := client.FetchBoards(ctx)
		if err != nil {
			return taskErrorReport(err), nil
		}
		for _, board := range boards {
			boardIDs = append(boardIDs, board.ID)
		}
	case boardID != "":
		boardIDs = []string{boardID}
	default:
		boards, err := client.FetchBoards(ctx)
		if err != nil {
			return taskErrorReport(err), nil
		}
		if len(boards) == 0 {
			return &model.TaskReport{}, nil
		}
		boardIDs = []string{boards[0].ID}
	}

	report := &model.TaskReport{}
	for _, id := range boardIDs {
		cards, err := client.FetchCards(ctx, id)
		if err != nil {
			return taskErrorReport(err), nil
		}
		report.Total += len(cards)
		for _, card := range cards {
			if card.Closed {
				report.Completed++
			} else {
				report.Pending++
			}
		}
	}

	s.log.Record(ctx, "task_report", fmt.Sprintf("Report across %d boards: %d tasks", len(boardIDs), report.Total))
	return report, nil
}

// StatusCounts counts items per status, backing the status chart.
func StatusCounts(items []model.TaskBoardItem) map[model.TaskStatus]int {
	counts := make(map[model.TaskStatus]int)
	for _, item := range items {
		if item.IsError {
			continue
		}
		counts[item.Status]++
	}
	return counts
}

func (s *TaskService) client(ctx context.Context) (driven.TaskClient, error) {
	cred, err := s.resolver.Resolve(ctx, model.ProviderTrello)
	if err != nil {
		return nil, err
	}
	return s.newClient(ctx, cred)
}

func cardToItem(card model.Card, boardName string) model.TaskBoardItem {
	status := model.TaskStatusPending
	if card.Closed {
		status = model.TaskStatusCompleted
	}
	due := card.Due
	if due == "" {
		due = model.NoDueDate
	}
	return model.TaskBoardItem{
		Name:      card.Name,
		Due:       due,
		Status:    status,
		BoardName: boardName,
	}
}

func taskErrorReport(err error) *model.TaskReport {
	return &model.TaskReport{Error: fmt.Sprintf("Error: %v", err)}
}

func taskErrorRow(boardName string, err error) []model.TaskBoardItem {
	return []model.TaskBoardItem{{
		Name:      fmt.Sprintf("Error: %v", err),
		Due:       model.NoDueDate,
		Status:    model.TaskStatusPending,
		BoardName: boardName,
		IsError:   true,
	}}
}
