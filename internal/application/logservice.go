package application

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ericfisherdev/taskdeck/internal/domain/model"
	"github.com/ericfisherdev/taskdeck/internal/domain/port/driven"
)

// logCSVHeader is the fixed header row of CSV exports.
var logCSVHeader = []string{"timestamp", "action", "details"}

// LogService records dashboard actions to the append-only sink and serves
// historical reads and exports. Sink failures never propagate to callers:
// writes are logged and dropped, reads degrade to a synthetic error record.
type LogService struct {
	sink   driven.ActionLog
	logger *slog.Logger
	now    func() time.Time
}

// NewLogService creates a LogService over the given sink.
func NewLogService(sink driven.ActionLog, logger *slog.Logger) *LogService {
	return &LogService{sink: sink, logger: logger, now: time.Now}
}

// Record appends one action record with a generated timestamp.
func (s *LogService) Record(ctx context.Context, action, details string) {
	rec := model.LogRecord{
		Timestamp: s.now().Format(model.LogTimeFormat),
		Action:    action,
		Details:   details,
	}
	if err := s.sink.Append(ctx, rec); err != nil {
		s.logger.Warn("action log append failed", "action", action, "error", err)
	}
}

// ReadAll returns the full log in chronological order. An unreadable sink
// yields a single synthetic error record rather than a failure.
func (s *LogService) ReadAll(ctx context.Context) []model.LogRecord {
	records, err := s.sink.ReadAll(ctx)
	if err != nil {
		s.logger.Warn("action log read failed", "error", err)
		return []model.LogRecord{{Timestamp: "", Action: "Error", Details: err.Error()}}
	}
	if records == nil {
		records = []model.LogRecord{}
	}
	return records
}

// Export serializes the full log as "csv" or "json".
func (s *LogService) Export(ctx context.Context, format string) (string, error) {
	records := s.ReadAll(ctx)

	switch strings.ToLower(format) {
	case "csv":
		return exportCSV(records)
	case "json":
		data, err := json.MarshalIndent(records, "", "  ")
		if err != nil {
			return "", fmt.Errorf("marshal log: %w", err)
		}
		return string(data), nil
	default:
		return "", fmt.Errorf("format must be csv or json, got %q", format)
	}
}

// ImportCSV parses a CSV export back into its ordered record sequence.
// It reverses Export exactly: field values survive the round trip
// byte-identical.
func ImportCSV(data string) ([]model.LogRecord, error) {
	reader := csv.NewReader(strings.NewReader(data))
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("missing header row")
	}

	header := rows[0]
	if len(header) != 3 || header[0] != "timestamp" || header[1] != "action" || header[2] != "details" {
		return nil, fmt.Errorf("unexpected header %v", header)
	}

	records := make([]model.LogRecord, 0, len(rows)-1)
	for _, row := range rows[1:] {
		records = append(records, model.LogRecord{
			Timestamp: row[0],
			Action:    row[1],
			Details:   row[2],
		})
	}
	return records, nil
}

func exportCSV(records []model.LogRecord) (string, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(logCSVHeader); err != nil {
		return "", fmt.Errorf("write csv header: %w", err)
	}
	for _, rec := range records {
		if err := w.Write([]string{rec.Timestamp, rec.Action, rec.Details}); err != nil {
			return "", fmt.Errorf("write csv record: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("flush csv: %w", err)
	}

	return buf.String(), nil
}
