package notify

import (
	"context"
	"log/slog"

	"github.com/mr1hm/go-disaster-response/internal/worker"
)

// Dispatcher is the default Notifier: events are queued onto a worker pool
// and fanned out to broadcaster subscribers off the request path. A full
// queue drops the event instead of blocking the submitting operation.
type Dispatcher struct {
	pool        *worker.Pool[Event]
	broadcaster *Broadcaster
}

func NewDispatcher(workers, bufferSize int) *Dispatcher {
	d := &Dispatcher{
		broadcaster: NewBroadcaster(),
	}
	d.pool = worker.NewPool(workers, bufferSize, func(ctx context.Context, e Event) error {
		d.broadcaster.Broadcast(e)
		slog.Debug("notification dispatched", "type", e.Type, "disaster_id", e.DisasterID)
		return nil
	})
	return d
}

func (d *Dispatcher) Start(ctx context.Context) {
	d.pool.Start(ctx)
}

func (d *Dispatcher) Notify(e Event) {
	if !d.pool.TrySubmit(e) {
		slog.Warn("notification queue full, dropping event", "type", e.Type, "disaster_id", e.DisasterID)
	}
}

func (d *Dispatcher) Subscribe() (uint64, chan Event) {
	return d.broadcaster.Subscribe()
}

func (d *Dispatcher) Unsubscribe(id uint64) {
	d.broadcaster.Unsubscribe(id)
}

func (d *Dispatcher) Stop() {
	d.pool.Stop()
	d.broadcaster.Close()
}
