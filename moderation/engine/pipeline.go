package engine

import (
	"context"

	"github.com/gamemod/warden/moderation/action"
	"github.com/gamemod/warden/moderation/detector"
)

// violationEvent is the unit handed from the detection path to the
// background worker.
type violationEvent struct {
	Surface    Surface
	PlayerID   string
	PlayerName string
	Category   detector.Category
	Reason     string
	Details    string
}

// offload queues a confirmed violation for recording and resolution. The
// queue is bounded; when it is full the event is dropped with a warning so
// the detection path never blocks on storage.
func (e *Engine) offload(surface Surface, playerID, playerName string, v detector.Verdict) {
	messageBlockedCount.WithLabelValues(string(surface), string(v.Category)).Inc()
	ev := violationEvent{
		Surface:    surface,
		PlayerID:   playerID,
		PlayerName: playerName,
		Category:   v.Category,
		Reason:     v.Reason,
		Details:    v.Details,
	}
	e.closeMu.RLock()
	defer e.closeMu.RUnlock()
	if e.closed {
		violationDroppedCount.WithLabelValues("shutdown").Inc()
		e.logger.Warn("engine shut down, dropping event",
			"player", playerID, "category", v.Category, "reason", v.Reason)
		return
	}
	select {
	case e.events <- ev:
	default:
		violationDroppedCount.WithLabelValues("queue-full").Inc()
		e.logger.Warn("violation queue full, dropping event",
			"player", playerID, "category", v.Category, "reason", v.Reason)
	}
}

// run is the single worker goroutine. One consumer keeps ledger writes and
// dispatches for a given player in arrival order.
func (e *Engine) run() {
	for ev := range e.events {
		e.handle(ev)
	}
	close(e.drained)
}

func (e *Engine) handle(ev violationEvent) {
	ctx := context.Background()

	rec, err := e.ledger.Record(ctx, ev.PlayerID, ev.Category, ev.Details)
	if err != nil {
		// No retry: the message was already cancelled, losing the audit row
		// is preferable to blocking the worker
		violationDroppedCount.WithLabelValues("store-error").Inc()
		e.logger.Error("failed recording violation",
			"player", ev.PlayerID, "category", ev.Category, "err", err)
		return
	}
	violationRecordedCount.WithLabelValues(string(ev.Category)).Inc()

	active, err := e.ledger.ActiveCount(ctx, ev.PlayerID, ev.Category)
	if err != nil {
		e.logger.Error("failed counting active violations",
			"player", ev.PlayerID, "category", ev.Category, "err", err)
		return
	}

	rules := e.detectors().rules[ev.Category]
	commands := action.Resolve(rules, active, ev.PlayerName)

	e.logger.Info("violation recorded",
		"id", rec.ID,
		"player", ev.PlayerID,
		"surface", ev.Surface,
		"category", ev.Category,
		"reason", ev.Reason,
		"active", active,
		"commands", len(commands))

	for _, cmd := range commands {
		e.dispatcher.Dispatch(cmd)
		commandDispatchedCount.Inc()
	}
}

// Shutdown stops accepting new events and waits for the worker to drain
// the queue, or for the context to expire.
func (e *Engine) Shutdown(ctx context.Context) error {
	e.closeMu.Lock()
	if !e.closed {
		e.closed = true
		close(e.events)
	}
	e.closeMu.Unlock()
	select {
	case <-e.drained:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
