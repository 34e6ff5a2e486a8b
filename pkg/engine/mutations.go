package engine

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/flagkit/pkg/flag"
	"github.com/dmitrymomot/flagkit/pkg/store"
)

// Update carries partial changes for UpdateFlag. Nil fields keep the
// current value; the flag key is immutable and cannot appear here.
type Update struct {
	Description       *string
	Enabled           *bool
	RolloutPercentage *int
	TargetingRules    *[]flag.TargetingRule
	Variants          *[]flag.Variant
	Tags              *[]string
	ExpiresAt         *time.Time
}

// CreateFlag validates and persists a new record, applies it locally, and
// publishes a created event. The key must not already exist.
func (e *Engine) CreateFlag(ctx context.Context, record *flag.Flag) (*flag.Flag, error) {
	if e.closed.Load() {
		return nil, ErrEngineClosed
	}
	if err := record.Validate(); err != nil {
		return nil, err
	}

	if _, err := e.store.Get(ctx, record.Key); err == nil {
		return nil, ErrFlagExists
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	created := record.Clone()
	now := e.clock()
	created.CreatedAt = now
	created.UpdatedAt = now

	if err := e.store.Set(ctx, created); err != nil {
		return nil, err
	}
	e.propagate(flag.EventCreated, created)
	return created.Clone(), nil
}

// UpdateFlag applies partial changes to an existing record. The key is
// immutable; unknown keys return ErrFlagNotFound.
func (e *Engine) UpdateFlag(ctx context.Context, key string, update Update) (*flag.Flag, error) {
	if e.closed.Load() {
		return nil, ErrEngineClosed
	}

	current, err := e.store.Get(ctx, key)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrFlagNotFound
	}
	if err != nil {
		return nil, err
	}

	updated := current.Clone()
	if update.Description != nil {
		updated.Description = *update.Description
	}
	if update.Enabled != nil {
		updated.Enabled = *update.Enabled
	}
	if update.RolloutPercentage != nil {
		p := *update.RolloutPercentage
		updated.RolloutPercentage = &p
	}
	if update.TargetingRules != nil {
		updated.TargetingRules = slices.Clone(*update.TargetingRules)
	}
	if update.Variants != nil {
		updated.Variants = slices.Clone(*update.Variants)
	}
	if update.Tags != nil {
		updated.Tags = slices.Clone(*update.Tags)
	}
	if update.ExpiresAt != nil {
		t := *update.ExpiresAt
		updated.ExpiresAt = &t
	}
	updated.UpdatedAt = e.clock()

	if err := updated.Validate(); err != nil {
		return nil, err
	}
	if err := e.store.Set(ctx, updated); err != nil {
		return nil, err
	}
	e.propagate(flag.EventUpdated, updated)
	return updated.Clone(), nil
}

// DeleteFlag removes a record, reporting whether it existed. Deleting an
// absent key is not an error.
func (e *Engine) DeleteFlag(ctx context.Context, key string) (bool, error) {
	if e.closed.Load() {
		return false, ErrEngineClosed
	}

	existed, err := e.store.Delete(ctx, key)
	if err != nil {
		return false, err
	}
	if existed {
		e.propagate(flag.EventDeleted, &flag.Flag{Key: key})
	}
	return existed, nil
}

// GetFlag returns a copy of the record from the local cache.
func (e *Engine) GetFlag(key string) (*flag.Flag, error) {
	record, ok := e.snapshot()[key]
	if !ok {
		return nil, ErrFlagNotFound
	}
	return record.Clone(), nil
}

// ListFlags returns copies of every cached record, sorted by key. With tags
// given, only records carrying at least one of them are returned.
func (e *Engine) ListFlags(tags ...string) []*flag.Flag {
	snapshot := e.snapshot()
	records := make([]*flag.Flag, 0, len(snapshot))
	for _, record := range snapshot {
		if len(tags) > 0 && !hasAnyTag(record, tags) {
			continue
		}
		records = append(records, record.Clone())
	}
	sort.Slice(records, func(i, j int) bool { return records[i].Key < records[j].Key })
	return records
}

func hasAnyTag(record *flag.Flag, tags []string) bool {
	for _, tag := range tags {
		if slices.Contains(record.Tags, tag) {
			return true
		}
	}
	return false
}

// propagate applies a mutation to the local snapshot synchronously, then
// announces it on the bus. The durable write already succeeded, so a
// publish failure only costs propagation latency (the other processes'
// periodic reload picks the change up) and is logged, not surfaced.
func (e *Engine) propagate(eventType flag.EventType, record *flag.Flag) {
	event := flag.Event{
		ID:     uuid.NewString(),
		Type:   eventType,
		Record: record,
		Origin: e.id,
	}
	e.apply(event)

	if e.bus == nil {
		return
	}
	if err := e.bus.Publish(context.Background(), event); err != nil {
		e.log.Warn("failed to publish change event",
			slog.String("flag", record.Key),
			slog.String("type", string(eventType)),
			slog.Any("error", err))
	}
}
