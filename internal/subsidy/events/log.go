package events

import (
	"context"
	"log/slog"
)

// LogPublisher writes events to a logger. Used when no broker is configured.
type LogPublisher struct {
	logger *slog.Logger
}

func NewLogPublisher(logger *slog.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

func (p *LogPublisher) Publish(ctx context.Context, evt Calculated) error {
	p.logger.InfoContext(ctx, "subsidy calculated",
		"report_id", evt.ReportID.String(),
		"zone", evt.Zone.String(),
		"enterprise_size", evt.EnterpriseSize,
		"total_subsidy", evt.Total.StringFixed(2),
	)
	return nil
}

func (p *LogPublisher) Close() error { return nil }
