package cardnotify

import (
	"context"
	"fmt"
	"strings"

	"github.com/goliatone/go-notifications/pkg/onready"

	"github.com/goliatone/go-contract-card/contract"
)

// Config configures the summary-ready notifier.
type Config struct {
	Delegate onready.OnReadyNotifier
	Channels []string
	Locale   string
	TenantID string
	// Recipients receive every notice. The acting user is added when the
	// event carries one.
	Recipients []string
}

// Notifier tells users a contract summary is ready through go-notifications.
// It listens for delivered summaries and ignores other events.
type Notifier struct {
	delegate   onready.OnReadyNotifier
	channels   []string
	locale     string
	tenantID   string
	recipients []string
}

var _ contract.ChangeEmitter = (*Notifier)(nil)

// NewNotifier wraps a go-notifications notifier.
func NewNotifier(cfg Config) *Notifier {
	return &Notifier{
		delegate:   cfg.Delegate,
		channels:   append([]string(nil), cfg.Channels...),
		locale:     cfg.Locale,
		tenantID:   cfg.TenantID,
		recipients: append([]string(nil), cfg.Recipients...),
	}
}

// Emit forwards delivered summaries to the underlying notifier.
func (n *Notifier) Emit(ctx context.Context, evt contract.ChangeEvent) error {
	if n == nil || n.delegate == nil {
		return contract.NewError(contract.KindNotImpl, "go-notifications notifier not configured", nil)
	}
	if evt.Name != contract.EventSummaryDelivered {
		return nil
	}

	recipients := n.recipientsFor(evt)
	if len(recipients) == 0 {
		return contract.NewError(contract.KindValidation, "summary notification has no recipients", nil)
	}

	return n.delegate.Send(ctx, onready.OnReadyEvent{
		Recipients: recipients,
		Locale:     n.locale,
		TenantID:   n.tenantID,
		ActorID:    evt.ActorID,
		Channels:   n.channels,
		FileName:   evt.Filename,
		Format:     "pdf",
		Message:    fmt.Sprintf("Summary for contract %s is ready", evt.RecordID),
	})
}

func (n *Notifier) recipientsFor(evt contract.ChangeEvent) []string {
	out := make([]string, 0, len(n.recipients)+1)
	seen := make(map[string]struct{}, len(n.recipients)+1)
	add := func(id string) {
		id = strings.TrimSpace(id)
		if id == "" {
			return
		}
		if _, ok := seen[id]; ok {
			return
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	for _, id := range n.recipients {
		add(id)
	}
	add(evt.ActorID)
	return out
}
