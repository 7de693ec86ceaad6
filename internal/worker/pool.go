// Package worker runs fire-and-forget jobs. The HTTP handler enqueues a
// job description and returns; a pool worker dequeues it and runs the
// pipeline to completion, publishing state only through the store.
package worker

import (
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"
)

// Job is a unit of background work.
type Job interface {
	ID() string
	Execute() error
}

// Dispatcher owns the job queue and a fixed pool of workers.
type Dispatcher struct {
	queue   chan Job
	workers int
	wg      sync.WaitGroup
	log     *logrus.Logger

	mu      sync.Mutex
	stopped bool

	startOnce sync.Once
	stopOnce  sync.Once
}

func NewDispatcher(workers, queueLen int, log *logrus.Logger) *Dispatcher {
	if workers < 1 {
		workers = 1
	}
	return &Dispatcher{
		queue:   make(chan Job, queueLen),
		workers: workers,
		log:     log,
	}
}

// Run starts the worker goroutines. Safe to call once.
func (d *Dispatcher) Run() {
	d.startOnce.Do(func() {
		for i := 1; i <= d.workers; i++ {
			d.wg.Add(1)
			go d.work(i)
		}
		d.log.WithField("workers", d.workers).Info("dispatcher started")
	})
}

func (d *Dispatcher) work(id int) {
	defer d.wg.Done()
	for job := range d.queue {
		log := d.log.WithFields(logrus.Fields{"worker": id, "job_id": job.ID()})
		log.Info("job started")
		if err := job.Execute(); err != nil {
			log.WithError(err).Error("job failed")
			continue
		}
		log.Info("job finished")
	}
}

// Submit enqueues a job without blocking. A full queue or a stopped
// dispatcher is an error the caller must surface; jobs are never dropped
// silently.
func (d *Dispatcher) Submit(job Job) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return fmt.Errorf("dispatcher is stopped, cannot accept job %s", job.ID())
	}

	select {
	case d.queue <- job:
		return nil
	default:
		return fmt.Errorf("job queue is full, cannot accept job %s", job.ID())
	}
}

// Stop closes the queue and waits for in-flight jobs to finish. Submit
// calls after Stop return an error.
func (d *Dispatcher) Stop() {
	d.stopOnce.Do(func() {
		d.mu.Lock()
		d.stopped = true
		d.mu.Unlock()

		close(d.queue)
		d.wg.Wait()
		d.log.Info("dispatcher stopped")
	})
}
