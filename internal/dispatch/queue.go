// Package dispatch runs intents one at a time on a single worker goroutine.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sync"
	"sync/atomic"

	log "github.com/sirupsen/logrus"
)

var (
	ErrStopped = errors.New("dispatch: queue stopped")
	ErrFull    = errors.New("dispatch: queue full")
	ErrPanic   = errors.New("dispatch: intent panicked")
)

// Intent is a unit of work. The context is the one passed at submission.
type Intent func(ctx context.Context) error

type job struct {
	ctx    context.Context
	intent Intent
	result chan error
}

type Queue struct {
	mu       sync.Mutex
	pending  []job
	limit    int
	wakeup   chan struct{}
	stopCh   chan struct{}
	doneCh   chan struct{}
	started  bool
	stopped  bool
	executed uint64
	logger   log.FieldLogger
}

// NewQueue returns a queue holding at most limit pending intents.
func NewQueue(limit int, logger log.FieldLogger) *Queue {
	if limit <= 0 {
		limit = 1
	}
	if logger == nil {
		logger = log.StandardLogger()
	}
	return &Queue{
		pending: make([]job, 0, limit),
		limit:   limit,
		wakeup:  make(chan struct{}, 1),
		stopCh:  make(chan struct{}),
		doneCh:  make(chan struct{}),
		logger:  logger,
	}
}

func (q *Queue) Start() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.started {
		return
	}
	q.started = true
	go q.loop()
}

// Stop waits for the running intent to finish. Intents still pending
// receive ErrStopped.
func (q *Queue) Stop() {
	q.mu.Lock()
	if q.stopped {
		q.mu.Unlock()
		return
	}
	q.stopped = true
	started := q.started
	close(q.stopCh)
	q.mu.Unlock()
	if started {
		<-q.doneCh
	}

	q.mu.Lock()
	rest := q.pending
	q.pending = nil
	q.mu.Unlock()
	for _, j := range rest {
		j.result <- ErrStopped
	}
}

// Submit enqueues intent and returns a channel that receives its result
// exactly once.
func (q *Queue) Submit(ctx context.Context, intent Intent) <-chan error {
	result := make(chan error, 1)

	q.mu.Lock()
	defer q.mu.Unlock()
	if q.stopped {
		result <- ErrStopped
		return result
	}
	if len(q.pending) >= q.limit {
		result <- ErrFull
		return result
	}
	q.pending = append(q.pending, job{ctx: ctx, intent: intent, result: result})
	q.signalWakeup()
	return result
}

// Do submits intent and blocks until it ran or ctx is done.
func (q *Queue) Do(ctx context.Context, intent Intent) error {
	select {
	case err := <-q.Submit(ctx, intent):
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (q *Queue) Executed() uint64 {
	return atomic.LoadUint64(&q.executed)
}

func (q *Queue) Pending() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

func (q *Queue) loop() {
	defer close(q.doneCh)
	for {
		j, ok := q.next()
		if !ok {
			select {
			case <-q.wakeup:
				continue
			case <-q.stopCh:
				return
			}
		}
		select {
		case <-q.stopCh:
			j.result <- ErrStopped
			return
		default:
		}
		j.result <- q.run(j)
		atomic.AddUint64(&q.executed, 1)
	}
}

func (q *Queue) run(j job) (err error) {
	if cerr := j.ctx.Err(); cerr != nil {
		return cerr
	}
	defer func() {
		if r := recover(); r != nil {
			q.logger.WithField("panic", r).WithField("stack", string(debug.Stack())).Error("intent panicked")
			err = fmt.Errorf("%w: %v", ErrPanic, r)
		}
	}()
	return j.intent(j.ctx)
}

func (q *Queue) next() (job, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.pending) == 0 {
		return job{}, false
	}
	j := q.pending[0]
	q.pending = q.pending[1:]
	return j, true
}

func (q *Queue) signalWakeup() {
	select {
	case q.wakeup <- struct{}{}:
	default:
	}
}
