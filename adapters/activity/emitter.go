package cardactivity

import (
	"context"
	"strings"

	"github.com/goliatone/go-contract-card/contract"
	"github.com/goliatone/go-users/activity"
	"github.com/goliatone/go-users/pkg/types"
	"github.com/google/uuid"
)

// Config configures the activity emitter adapter.
type Config struct {
	Sink       types.ActivitySink
	Channel    string
	ObjectType string
}

// Emitter records summary lifecycle events as go-users activity.
type Emitter struct {
	sink       types.ActivitySink
	channel    string
	objectType string
}

var _ contract.ChangeEmitter = (*Emitter)(nil)

// NewEmitter creates a new activity emitter.
func NewEmitter(cfg Config) *Emitter {
	channel := strings.TrimSpace(cfg.Channel)
	if channel == "" {
		channel = "contracts"
	}
	objectType := strings.TrimSpace(cfg.ObjectType)
	if objectType == "" {
		objectType = "contract"
	}
	return &Emitter{
		sink:       cfg.Sink,
		channel:    channel,
		objectType: objectType,
	}
}

// Emit logs evt against the contract it concerns.
func (e *Emitter) Emit(ctx context.Context, evt contract.ChangeEvent) error {
	if e == nil {
		return contract.NewError(contract.KindInternal, "activity emitter is nil", nil)
	}
	if e.sink == nil {
		return contract.NewError(contract.KindNotImpl, "activity sink not configured", nil)
	}
	verb := strings.TrimSpace(evt.Name)
	if verb == "" {
		return contract.NewError(contract.KindValidation, "activity verb is required", nil)
	}
	objectID := strings.TrimSpace(evt.RecordID)
	if objectID == "" {
		return contract.NewError(contract.KindValidation, "activity object ID is required", nil)
	}

	record, err := activity.BuildRecordFromUUID(
		parseUUID(evt.ActorID),
		verb,
		e.objectType,
		objectID,
		buildMetadata(evt),
		activity.WithChannel(e.channel),
		activity.WithOccurredAt(evt.Timestamp),
	)
	if err != nil {
		return err
	}
	return e.sink.Log(ctx, record)
}

func buildMetadata(evt contract.ChangeEvent) map[string]any {
	meta := make(map[string]any, len(evt.Metadata)+2)
	if evt.SummaryID != "" {
		meta["summary_id"] = evt.SummaryID
	}
	if evt.Filename != "" {
		meta["filename"] = evt.Filename
	}
	for k, v := range evt.Metadata {
		meta[k] = v
	}
	return meta
}

// parseUUID maps non-uuid actor ids to uuid.Nil.
func parseUUID(value string) uuid.UUID {
	value = strings.TrimSpace(value)
	if value == "" {
		return uuid.Nil
	}
	parsed, err := uuid.Parse(value)
	if err != nil {
		return uuid.Nil
	}
	return parsed
}
