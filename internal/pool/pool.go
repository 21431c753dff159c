package pool

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/complyops/backoffice/internal/queue"
	"github.com/complyops/backoffice/internal/worker"
)

// WorkerPool runs a fixed number of worker slots against one shared queue
// plus a janitor that recovers stalled items.
type WorkerPool struct {
	workers         []*worker.Worker
	queue           *queue.Queue
	lockDuration    time.Duration
	maxStalledCount int
	wg              sync.WaitGroup
	ctx             context.Context
	cancel          context.CancelFunc
}

func NewWorkerPool(count int, q *queue.Queue, reg *worker.Registry, lockDuration time.Duration, maxStalledCount int) *WorkerPool {
	ctx, cancel := context.WithCancel(context.Background())
	p := &WorkerPool{
		queue:           q,
		lockDuration:    lockDuration,
		maxStalledCount: maxStalledCount,
		ctx:             ctx,
		cancel:          cancel,
	}

	for i := 1; i <= count; i++ {
		p.workers = append(p.workers, worker.NewWorker(i, q, reg, lockDuration))
	}
	return p
}

func (p *WorkerPool) Start() {
	for _, w := range p.workers {
		w.Start(p.ctx)
	}

	p.wg.Add(1)
	go p.janitor()

	log.Printf("[POOL] Started %d workers (lock=%s, maxStalled=%d)",
		len(p.workers), p.lockDuration, p.maxStalledCount)
}

// janitor periodically requeues items whose lock expired with no
// heartbeat.
func (p *WorkerPool) janitor() {
	defer p.wg.Done()
	ticker := time.NewTicker(p.lockDuration)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if err := p.queue.RequeueStalled(p.ctx, p.maxStalledCount); err != nil {
				log.Printf("[POOL] janitor: %v", err)
			}
		case <-p.ctx.Done():
			return
		}
	}
}

func (p *WorkerPool) Stop() {
	p.cancel()
	for _, w := range p.workers {
		w.Stop()
	}
	p.wg.Wait()
	log.Println("[POOL] Stopped")
}
