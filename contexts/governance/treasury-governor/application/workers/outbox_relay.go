package workers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	application "commonwealth/contexts/governance/treasury-governor/application"
	"commonwealth/contexts/governance/treasury-governor/ports"
)

// OutboxRelay forwards appended governance events to the broker.
type OutboxRelay struct {
	Outbox    ports.OutboxRepository
	Publisher ports.EventPublisher
	Clock     ports.Clock
	Topic     string
	BatchSize int
	Logger    *slog.Logger
}

// RunOnce publishes pending rows in append order and marks each one only
// after the broker accepted it. A publish failure ends the cycle so that
// later rows are never published ahead of an earlier one. A row that cannot
// be decoded into a valid envelope will never publish; it is marked failed
// and the cycle moves on.
func (r OutboxRelay) RunOnce(ctx context.Context) (int, error) {
	logger := application.ResolveLogger(r.Logger)
	limit := r.BatchSize
	if limit <= 0 {
		limit = 100
	}

	pending, err := r.Outbox.ListPendingOutbox(ctx, limit)
	if err != nil {
		logger.Error("governance outbox list failed",
			"event", "governance_outbox_list_failed",
			"module", application.ModuleName,
			"layer", "worker",
			"error", err.Error(),
		)
		return 0, err
	}
	if len(pending) == 0 {
		logger.Debug("governance outbox relay found no pending rows",
			"event", "governance_outbox_relay_noop",
			"module", application.ModuleName,
			"layer", "worker",
			"batch_size", limit,
		)
		return 0, nil
	}

	now := time.Now().UTC()
	if r.Clock != nil {
		now = r.Clock.Now().UTC()
	}

	published := 0
	deadLettered := 0
	for _, row := range pending {
		event, err := decodeOutboxRow(row)
		if err != nil {
			logger.Error("governance outbox row dead-lettered",
				"event", "governance_outbox_row_dead_lettered",
				"module", application.ModuleName,
				"layer", "worker",
				"outbox_id", row.OutboxID,
				"event_type", row.EventType,
				"error", err.Error(),
			)
			if err := r.Outbox.MarkOutboxFailed(ctx, row.OutboxID, err.Error(), now); err != nil {
				logger.Error("governance outbox mark failed failed",
					"event", "governance_outbox_mark_failed_failed",
					"module", application.ModuleName,
					"layer", "worker",
					"outbox_id", row.OutboxID,
					"error", err.Error(),
				)
				return published, err
			}
			deadLettered++
			continue
		}
		topic := r.Topic
		if topic == "" {
			topic = event.EventType
		}
		if err := r.Publisher.Publish(ctx, topic, event); err != nil {
			logger.Error("governance outbox publish failed",
				"event", "governance_outbox_publish_failed",
				"module", application.ModuleName,
				"layer", "worker",
				"outbox_id", row.OutboxID,
				"event_type", event.EventType,
				"sequence", event.Sequence,
				"error", err.Error(),
			)
			return published, err
		}
		if err := r.Outbox.MarkOutboxPublished(ctx, row.OutboxID, now); err != nil {
			logger.Error("governance outbox mark published failed",
				"event", "governance_outbox_mark_published_failed",
				"module", application.ModuleName,
				"layer", "worker",
				"outbox_id", row.OutboxID,
				"error", err.Error(),
			)
			return published, err
		}
		published++
	}

	logger.Info("governance outbox relay cycle completed",
		"event", "governance_outbox_relay_completed",
		"module", application.ModuleName,
		"layer", "worker",
		"published_count", published,
		"dead_lettered_count", deadLettered,
	)
	return published, nil
}

func decodeOutboxRow(row ports.OutboxMessage) (ports.EventEnvelope, error) {
	var event ports.EventEnvelope
	if err := json.Unmarshal(row.Payload, &event); err != nil {
		return ports.EventEnvelope{}, fmt.Errorf("decode outbox payload: %w", err)
	}
	if err := event.Validate(); err != nil {
		return ports.EventEnvelope{}, fmt.Errorf("validate outbox envelope: %w", err)
	}
	return event, nil
}
