package contract

import (
	"context"
	"errors"
	"strings"
	"time"
)

// Lifecycle event names emitted by Service.
const (
	EventSummaryExported  = "contract.summary.exported"
	EventSummaryDelivered = "contract.summary.delivered"
	EventSummaryFailed    = "contract.summary.failed"
)

// ChangeEvent describes a summary lifecycle event.
type ChangeEvent struct {
	Name      string
	RecordID  string
	SummaryID string
	Filename  string
	ActorID   string
	Timestamp time.Time
	Metadata  map[string]any
}

// ChangeEmitter receives lifecycle events.
type ChangeEmitter interface {
	Emit(ctx context.Context, evt ChangeEvent) error
}

// ChangeEmitterFunc adapts a function to ChangeEmitter.
type ChangeEmitterFunc func(ctx context.Context, evt ChangeEvent) error

func (f ChangeEmitterFunc) Emit(ctx context.Context, evt ChangeEvent) error {
	if f == nil {
		return NewError(KindNotImpl, "change emitter not configured", nil)
	}
	return f(ctx, evt)
}

// ChangeEmitters fans an event out to every emitter in order.
type ChangeEmitters []ChangeEmitter

func (e ChangeEmitters) Emit(ctx context.Context, evt ChangeEvent) error {
	var errs []error
	for _, emitter := range e {
		if emitter == nil {
			continue
		}
		if err := emitter.Emit(ctx, evt); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

type actorKey struct{}

// WithActor attaches the id of the user triggering an export to ctx.
func WithActor(ctx context.Context, actorID string) context.Context {
	return context.WithValue(ctx, actorKey{}, strings.TrimSpace(actorID))
}

// ActorFromContext returns the actor id set by WithActor.
func ActorFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	actorID, _ := ctx.Value(actorKey{}).(string)
	return actorID
}
