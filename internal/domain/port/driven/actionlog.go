package driven

import (
	"context"

	"github.com/ericfisherdev/taskdeck/internal/domain/model"
)

// ActionLog defines the driven port for the append-only action log sink.
// There is no update or delete operation; append order is chronological order.
type ActionLog interface {
	// Append writes one record to the end of the log.
	Append(ctx context.Context, rec model.LogRecord) error

	// ReadAll returns every record in insertion order.
	ReadAll(ctx context.Context) ([]model.LogRecord, error)
}
