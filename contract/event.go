package contract

import "context"

// ClickTarget identifies the card element that received a click.
type ClickTarget string

const (
	TargetCard     ClickTarget = "card"
	TargetDownload ClickTarget = "download"
)

// ClickEvent is a click delivered to a card. A consumed event is not passed
// on to the card's own click handler.
type ClickEvent struct {
	Target   ClickTarget
	consumed bool
}

// StopPropagation marks the event consumed.
func (e *ClickEvent) StopPropagation() {
	if e != nil {
		e.consumed = true
	}
}

// Consumed reports whether a handler stopped propagation.
func (e *ClickEvent) Consumed() bool {
	return e != nil && e.consumed
}

// Interaction binds the card's click handlers.
type Interaction struct {
	OnClick    func()
	OnDownload func(ctx context.Context) error
}

// Clickable reports whether the card has its own click handler.
func (i Interaction) Clickable() bool {
	return i.OnClick != nil
}

// Handle dispatches evt. Download clicks consume the event before running the
// download, so they never reach OnClick; every download click runs a new
// download.
func (i Interaction) Handle(ctx context.Context, evt *ClickEvent) error {
	if evt == nil {
		return nil
	}
	if evt.Target == TargetDownload {
		evt.StopPropagation()
		if i.OnDownload != nil {
			if err := i.OnDownload(ctx); err != nil {
				return err
			}
		}
	}
	if evt.Consumed() || i.OnClick == nil {
		return nil
	}
	i.OnClick()
	return nil
}
