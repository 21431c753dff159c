package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/complyops/backoffice/internal/models"
	"github.com/complyops/backoffice/internal/queue"
)

// Worker drives one concurrency slot: pull, dispatch, report back.
type Worker struct {
	ID           int
	queue        *queue.Queue
	registry     *Registry
	lockDuration time.Duration
	quit         chan struct{}
}

func NewWorker(id int, q *queue.Queue, reg *Registry, lockDuration time.Duration) *Worker {
	return &Worker{
		ID:           id,
		queue:        q,
		registry:     reg,
		lockDuration: lockDuration,
		quit:         make(chan struct{}),
	}
}

func (w *Worker) Start(ctx context.Context) {
	go func() {
		currentDelay := 1 * time.Second
		maxDelay := 30 * time.Second

		for {
			item, err := w.queue.Dequeue(ctx, w.lockDuration)
			if err != nil {
				log.Printf("[WORKER-%d] dequeue: %v", w.ID, err)
			}

			if item != nil {
				w.process(ctx, item)
				currentDelay = 1 * time.Second
			} else {
				currentDelay = min(currentDelay*2, maxDelay)
			}

			select {
			case <-time.After(currentDelay):
			case <-w.quit:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

func (w *Worker) process(ctx context.Context, item *models.QueueItem) {
	handler, ok := w.registry.Lookup(item.Type)
	if !ok {
		// a lookup miss is a failure, never a silent drop
		reason := fmt.Sprintf("no handler registered for job type %q", item.Type)
		if err := w.queue.Fail(ctx, item.ID, reason); err != nil {
			log.Printf("[WORKER-%d] fail %s: %v", w.ID, item.ID, err)
		}
		return
	}

	hbCtx, stopHeartbeat := context.WithCancel(ctx)
	go w.heartbeat(hbCtx, item.ID)

	res, err := w.execute(ctx, handler, item)
	stopHeartbeat()

	if err != nil {
		log.Printf("[WORKER-%d] %s (%s) failed: %v", w.ID, item.ID, item.Type, err)
		if ferr := w.queue.Fail(ctx, item.ID, err.Error()); ferr != nil {
			log.Printf("[WORKER-%d] fail %s: %v", w.ID, item.ID, ferr)
		}
		return
	}

	b, merr := json.Marshal(res)
	if merr != nil {
		b = []byte(`{}`)
	}
	if cerr := w.queue.Complete(ctx, item.ID, b); cerr != nil {
		log.Printf("[WORKER-%d] complete %s: %v", w.ID, item.ID, cerr)
	}
}

// execute runs the handler, converting a panic into an ordinary failure so
// one bad payload never takes the slot down.
func (w *Worker) execute(ctx context.Context, handler Handler, item *models.QueueItem) (res any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panic: %v", r)
		}
	}()
	return handler(ctx, item.Payload)
}

// heartbeat extends the item's lock at half the lock duration until the
// handler returns, so a healthy long-running handler is never mistaken
// for a stalled one.
func (w *Worker) heartbeat(ctx context.Context, id string) {
	ticker := time.NewTicker(w.lockDuration / 2)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if err := w.queue.Heartbeat(ctx, id, w.lockDuration); err != nil {
				log.Printf("[WORKER-%d] heartbeat %s: %v", w.ID, id, err)
			}
		case <-ctx.Done():
			return
		}
	}
}

func (w *Worker) Stop() { close(w.quit) }
