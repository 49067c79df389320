package commands

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	application "commonwealth/contexts/governance/treasury-governor/application"
	"commonwealth/contexts/governance/treasury-governor/domain/entities"
	"commonwealth/contexts/governance/treasury-governor/domain/services"
	"commonwealth/contexts/governance/treasury-governor/ports"
	contractsv1 "commonwealth/contracts/gen/events/v1"
)

type eventPayload struct {
	Sequence   uint64            `json:"sequence"`
	Actor      string            `json:"actor,omitempty"`
	Account    string            `json:"account,omitempty"`
	Recipient  string            `json:"recipient,omitempty"`
	ProposalID *uint64           `json:"proposal_id,omitempty"`
	Amount     uint64            `json:"amount,omitempty"`
	Category   string            `json:"category,omitempty"`
	Option     string            `json:"option,omitempty"`
	Height     uint64            `json:"height,omitempty"`
	Attributes map[string]string `json:"attributes,omitempty"`
}

func newGovernanceEnvelope(eventID string, event entities.Event) (ports.EventEnvelope, error) {
	payload, err := json.Marshal(eventPayload{
		Sequence:   event.Sequence,
		Actor:      event.Actor,
		Account:    event.Account,
		Recipient:  event.Recipient,
		ProposalID: event.ProposalID,
		Amount:     event.Amount,
		Category:   string(event.Category),
		Option:     string(event.Option),
		Height:     event.Height,
		Attributes: event.Attributes,
	})
	if err != nil {
		return ports.EventEnvelope{}, err
	}
	return ports.EventEnvelope{
		EventID:          eventID,
		EventType:        string(event.Type),
		Sequence:         event.Sequence,
		OccurredAt:       event.OccurredAt.UTC(),
		SourceService:    "treasury-governor",
		TraceID:          eventID,
		SchemaVersion:    contractsv1.SchemaVersion,
		PartitionKeyPath: "ledger",
		PartitionKey:     event.PartitionKey(),
		Data:             payload,
	}, nil
}

// record stamps event with the next ledger sequence. It must be called from
// inside a LedgerStore.Update callback.
func record(g *services.Governance, event entities.Event, occurredAt time.Time) entities.Event {
	event.Sequence = g.NextSequence()
	event.OccurredAt = occurredAt
	return event
}

func proposalRef(proposalID uint64) *uint64 {
	id := proposalID
	return &id
}

// eventEmitter hands committed events to the sink. Sink failures are logged
// and never undo the state change that produced the event.
type eventEmitter struct {
	Events ports.EventSink
	IDGen  ports.IDGenerator
	Logger *slog.Logger
}

func (e eventEmitter) emit(ctx context.Context, events ...entities.Event) {
	if e.Events == nil {
		return
	}
	logger := application.ResolveLogger(e.Logger)
	for _, event := range events {
		eventID, err := nextID(ctx, e.IDGen)
		if err != nil {
			logger.Error("governance event id generation failed",
				"event", "governance_event_id_failed",
				"module", application.ModuleName,
				"layer", "application",
				"event_type", string(event.Type),
				"sequence", event.Sequence,
				"error", err.Error(),
			)
			continue
		}
		envelope, err := newGovernanceEnvelope(eventID, event)
		if err == nil {
			err = e.Events.Append(ctx, envelope)
		}
		if err != nil {
			logger.Error("governance event append failed",
				"event", "governance_event_append_failed",
				"module", application.ModuleName,
				"layer", "application",
				"event_type", string(event.Type),
				"sequence", event.Sequence,
				"error", err.Error(),
			)
		}
	}
}
