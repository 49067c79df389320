package memory

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"commonwealth/contexts/governance/treasury-governor/domain/entities"
	"commonwealth/contexts/governance/treasury-governor/domain/services"
	"commonwealth/contexts/governance/treasury-governor/ports"

	"github.com/google/uuid"
	"github.com/sasha-s/go-deadlock"
)

var (
	ErrOutboxNotFound      = errors.New("outbox row not found")
	ErrOutboxConflict      = errors.New("outbox row conflicts with existing payload")
	ErrIdempotencyConflict = errors.New("idempotency key reused with a different request")
)

type outboxRecord struct {
	message   ports.OutboxMessage
	published bool
	failure   string
}

// Store keeps the governance aggregate and its supporting ports in process.
// ledgerMu is the single-writer lock over the aggregate; mu guards the rest.
type Store struct {
	ledgerMu   deadlock.RWMutex
	governance *services.Governance

	mu          deadlock.Mutex
	outbox      map[string]outboxRecord
	outboxOrder []string
	idempotency map[string]ports.IdempotencyRecord
	grants      map[string]map[entities.Capability]struct{}
	payouts     []ports.TransferInstruction
	transferErr error
	now         time.Time
	height      uint64
}

func NewStore(cfg services.GovernanceConfig) *Store {
	return &Store{
		governance:  services.NewGovernance(cfg),
		outbox:      make(map[string]outboxRecord),
		idempotency: make(map[string]ports.IdempotencyRecord),
		grants:      make(map[string]map[entities.Capability]struct{}),
	}
}

// stagedPayouts collects transfers made inside one Update. They reach the
// payout list only when the update commits.
type stagedPayouts struct {
	items []ports.TransferInstruction
}

type stagedPayoutsKey struct{}

// Update runs fn against a working copy and swaps it in only on success, so a
// failed operation leaves neither ledger changes nor payouts behind.
func (s *Store) Update(ctx context.Context, fn func(context.Context, *services.Governance) error) error {
	s.ledgerMu.Lock()
	defer s.ledgerMu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	working := s.governance.Clone()
	staged := &stagedPayouts{}
	if err := fn(context.WithValue(ctx, stagedPayoutsKey{}, staged), working); err != nil {
		return err
	}
	s.governance = working
	if len(staged.items) > 0 {
		s.mu.Lock()
		s.payouts = append(s.payouts, staged.items...)
		s.mu.Unlock()
	}
	return nil
}

func (s *Store) View(ctx context.Context, fn func(*services.Governance) error) error {
	s.ledgerMu.RLock()
	defer s.ledgerMu.RUnlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	return fn(s.governance)
}

// Grant gives account the listed capabilities.
func (s *Store) Grant(account string, capabilities ...entities.Capability) {
	s.mu.Lock()
	defer s.mu.Unlock()
	account = strings.TrimSpace(account)
	set, ok := s.grants[account]
	if !ok {
		set = make(map[entities.Capability]struct{}, len(capabilities))
		s.grants[account] = set
	}
	for _, capability := range capabilities {
		set[capability] = struct{}{}
	}
}

func (s *Store) Revoke(account string, capability entities.Capability) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.grants[strings.TrimSpace(account)], capability)
}

func (s *Store) HasCapability(_ context.Context, capability entities.Capability, account string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.grants[strings.TrimSpace(account)][capability]
	return ok, nil
}

func (s *Store) Transfer(ctx context.Context, instruction ports.TransferInstruction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.transferErr != nil {
		return s.transferErr
	}
	if staged, ok := ctx.Value(stagedPayoutsKey{}).(*stagedPayouts); ok {
		staged.items = append(staged.items, instruction)
		return nil
	}
	s.payouts = append(s.payouts, instruction)
	return nil
}

// FailTransfers makes every later Transfer return err. Pass nil to recover.
func (s *Store) FailTransfers(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transferErr = err
}

func (s *Store) Payouts() []ports.TransferInstruction {
	s.mu.Lock()
	defer s.mu.Unlock()
	items := make([]ports.TransferInstruction, len(s.payouts))
	copy(items, s.payouts)
	return items
}

func (s *Store) Append(_ context.Context, envelope ports.EventEnvelope) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	payload, err := json.Marshal(envelope)
	if err != nil {
		return err
	}
	outboxID := strings.TrimSpace(envelope.EventID)
	if outboxID == "" {
		outboxID = uuid.NewString()
	}
	if existing, ok := s.outbox[outboxID]; ok {
		if !bytes.Equal(existing.message.Payload, payload) {
			return ErrOutboxConflict
		}
		return nil
	}
	createdAt := envelope.OccurredAt.UTC()
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	s.outbox[outboxID] = outboxRecord{
		message: ports.OutboxMessage{
			OutboxID:     outboxID,
			EventType:    strings.TrimSpace(envelope.EventType),
			PartitionKey: strings.TrimSpace(envelope.PartitionKey),
			Payload:      payload,
			CreatedAt:    createdAt,
		},
	}
	s.outboxOrder = append(s.outboxOrder, outboxID)
	return nil
}

// Events decodes every appended envelope in append order.
func (s *Store) Events() []ports.EventEnvelope {
	s.mu.Lock()
	defer s.mu.Unlock()
	items := make([]ports.EventEnvelope, 0, len(s.outboxOrder))
	for _, outboxID := range s.outboxOrder {
		var envelope ports.EventEnvelope
		if err := json.Unmarshal(s.outbox[outboxID].message.Payload, &envelope); err != nil {
			continue
		}
		items = append(items, envelope)
	}
	return items
}

func (s *Store) ListPendingOutbox(_ context.Context, limit int) ([]ports.OutboxMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if limit <= 0 {
		limit = 100
	}
	items := make([]ports.OutboxMessage, 0, len(s.outboxOrder))
	for _, outboxID := range s.outboxOrder {
		row := s.outbox[outboxID]
		if row.published || row.failure != "" {
			continue
		}
		items = append(items, row.message)
		if len(items) == limit {
			break
		}
	}
	return items, nil
}

func (s *Store) MarkOutboxPublished(_ context.Context, outboxID string, _ time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	outboxID = strings.TrimSpace(outboxID)
	row, ok := s.outbox[outboxID]
	if !ok {
		return ErrOutboxNotFound
	}
	row.published = true
	s.outbox[outboxID] = row
	return nil
}

func (s *Store) MarkOutboxFailed(_ context.Context, outboxID string, reason string, _ time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	outboxID = strings.TrimSpace(outboxID)
	row, ok := s.outbox[outboxID]
	if !ok {
		return ErrOutboxNotFound
	}
	if reason = strings.TrimSpace(reason); reason == "" {
		reason = "unknown"
	}
	row.failure = reason
	s.outbox[outboxID] = row
	return nil
}

// FailedOutbox returns the failure reason of every dead-lettered row.
func (s *Store) FailedOutbox() map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	failed := make(map[string]string)
	for outboxID, row := range s.outbox {
		if row.failure != "" {
			failed[outboxID] = row.failure
		}
	}
	return failed
}

func (s *Store) Get(_ context.Context, key string, now time.Time) (ports.IdempotencyRecord, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key = strings.TrimSpace(key)
	record, exists := s.idempotency[key]
	if !exists {
		return ports.IdempotencyRecord{}, false, nil
	}
	if !record.ExpiresAt.After(now.UTC()) {
		delete(s.idempotency, key)
		return ports.IdempotencyRecord{}, false, nil
	}
	return record, true, nil
}

func (s *Store) Put(_ context.Context, record ports.IdempotencyRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := strings.TrimSpace(record.Key)
	if existing, exists := s.idempotency[key]; exists {
		if existing.RequestHash != record.RequestHash {
			return ErrIdempotencyConflict
		}
		return nil
	}
	s.idempotency[key] = ports.IdempotencyRecord{
		Key:         key,
		RequestHash: strings.TrimSpace(record.RequestHash),
		Response:    append([]byte(nil), record.Response...),
		ExpiresAt:   record.ExpiresAt.UTC(),
	}
	return nil
}

// SetNow pins the clock; the zero time restores wall-clock reads.
func (s *Store) SetNow(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now.UTC()
}

func (s *Store) Advance(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.now.IsZero() {
		s.now = time.Now().UTC()
	}
	s.now = s.now.Add(d)
}

func (s *Store) Now() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.now.IsZero() {
		return time.Now().UTC()
	}
	return s.now
}

func (s *Store) SetHeight(height uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.height = height
}

func (s *Store) AdvanceHeight(blocks uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.height += blocks
}

func (s *Store) Height() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.height
}

func (s *Store) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}
