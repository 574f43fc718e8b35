// Package sink holds audit delivery destinations.
package sink

import (
	"context"
	"log/slog"

	audit "ledger/pkg/platform/audit"
)

// Log writes each notification as a structured log line.
type Log struct {
	logger *slog.Logger
}

func NewLog(logger *slog.Logger) *Log {
	if logger == nil {
		logger = slog.Default()
	}
	return &Log{logger: logger}
}

func (s *Log) Deliver(ctx context.Context, event audit.Event) error {
	attrs := []any{
		"notification_id", event.ID,
		"kind", event.Kind,
		"audience_type", event.Audience.Type,
		"audience_id", event.Audience.ID,
		"title", event.Title,
	}
	if event.RequestID != "" {
		attrs = append(attrs, "request_id", event.RequestID)
	}
	for k, v := range event.Attributes {
		attrs = append(attrs, k, v)
	}
	s.logger.InfoContext(ctx, event.Message, attrs...)
	return nil
}
