package engine

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
)

// Lifecycle events the engine subscribes to.
const (
	EventInit            = "init"
	EventPreAutoloadDump = "pre-autoload-dump"
	EventPreInstallCmd   = "pre-install-cmd"
	EventPreUpdateCmd    = "pre-update-cmd"
)

// SubscriptionPriority is the priority used for every subscription.
const SubscriptionPriority = 50000

// Subscriptions returns the events the engine handles, in dispatch order.
func Subscriptions() []Subscription {
	return []Subscription{
		{Event: EventInit, Priority: SubscriptionPriority},
		{Event: EventPreAutoloadDump, Priority: SubscriptionPriority},
		{Event: EventPreInstallCmd, Priority: SubscriptionPriority},
		{Event: EventPreUpdateCmd, Priority: SubscriptionPriority},
	}
}

// HandleEvent rescans the library directory and runs a merge pass.
// EventInit keeps the current dev mode; the install, update and dump events
// replace it with the event's mode first.
func (e *Engine) HandleEvent(ctx context.Context, ev Event) (*ProcessResult, error) {
	return e.handle(ctx, ev, false)
}

// PreviewEvent plans the pass HandleEvent would run without merging or
// changing the dev mode. A missing library directory previews as empty.
func (e *Engine) PreviewEvent(ctx context.Context, ev Event) (*ProcessResult, error) {
	return e.handle(ctx, ev, true)
}

func (e *Engine) handle(ctx context.Context, ev Event, dryRun bool) (*ProcessResult, error) {
	devMode := e.devMode
	switch ev.Name {
	case EventInit:
	case EventPreAutoloadDump, EventPreInstallCmd, EventPreUpdateCmd:
		devMode = ev.DevMode
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEvent, ev.Name)
	}

	// Rescan on every event so libraries added mid-run are seen
	// A preview never creates the library directory, so a missing one has
	// no candidates yet
	candidates, err := e.scanner.Scan(e.settings.LibraryDir(), e.settings.Filename)
	if err != nil && !(dryRun && errors.Is(err, fs.ErrNotExist)) {
		return nil, err
	}

	if !dryRun {
		e.devMode = devMode
	}
	e.logger.Debug("Handling event", "event", ev.Name, "dev", devMode, "candidates", len(candidates))

	return e.Process(ctx, &ProcessRequest{
		Candidates: candidates,
		DevMode:    devMode,
		DryRun:     dryRun,
	})
}
