package download

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"channelsurfer/internal/logging"
	"channelsurfer/internal/services"
)

var (
	// ErrAlreadyActive rejects a Start for an identifier that is still
	// tracked.
	ErrAlreadyActive = errors.New("download already active")
	// ErrClosed rejects a Start after Close.
	ErrClosed = errors.New("orchestrator closed")
)

// Task is the body of one download. progress may be called from the task's
// goroutine at any rate.
type Task func(ctx context.Context, progress ProgressFunc) (Result, error)

type tracked struct {
	id            string
	correlationID string
	cancel        context.CancelFunc
	state         TaskState
	startedAt     time.Time
	bytesDone     int64
	bytesTotal    int64
}

// Orchestrator tracks background downloads keyed by identifier.
type Orchestrator struct {
	slots  *semaphore.Weighted
	logger *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu       sync.Mutex
	tasks    map[string]*tracked
	finished []Outcome
	changed  chan struct{}
	closed   bool
}

// NewOrchestrator creates an orchestrator with maxConcurrent download slots.
// Values below one are treated as one.
func NewOrchestrator(maxConcurrent int, logger *slog.Logger) *Orchestrator {
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Orchestrator{
		slots:   semaphore.NewWeighted(int64(maxConcurrent)),
		logger:  logging.NewComponentLogger(logger, "orchestrator"),
		ctx:     ctx,
		cancel:  cancel,
		tasks:   make(map[string]*tracked),
		changed: make(chan struct{}),
	}
}

// Start registers task under identifier and returns immediately. The task
// waits for a free slot in the background.
func (o *Orchestrator) Start(identifier string, task Task) error {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return errors.New("identifier must not be empty")
	}
	if task == nil {
		return errors.New("task must not be nil")
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed {
		return ErrClosed
	}
	if _, ok := o.tasks[identifier]; ok {
		return fmt.Errorf("%w: %s", ErrAlreadyActive, identifier)
	}

	correlationID := uuid.NewString()
	ctx, cancel := context.WithCancel(o.ctx)
	ctx = services.WithIdentifier(ctx, identifier)
	ctx = services.WithRequestID(ctx, correlationID)
	entry := &tracked{
		id:            identifier,
		correlationID: correlationID,
		cancel:        cancel,
		state:         TaskQueued,
		startedAt:     time.Now(),
	}
	o.tasks[identifier] = entry
	o.wg.Add(1)
	downloadsStarted.Inc()
	downloadsQueued.Inc()

	go o.run(ctx, entry, task)
	return nil
}

func (o *Orchestrator) run(ctx context.Context, entry *tracked, task Task) {
	defer o.wg.Done()
	defer entry.cancel()
	logger := logging.WithContext(ctx, o.logger)

	outcome := Outcome{
		Identifier:    entry.id,
		CorrelationID: entry.correlationID,
		StartedAt:     entry.startedAt,
	}

	if err := o.slots.Acquire(ctx, 1); err != nil {
		downloadsQueued.Dec()
		outcome.Kind = OutcomeAborted
		outcome.Reason = "cancelled before a download slot was free"
		outcome.Err = err
		o.finish(entry, outcome, logger)
		return
	}
	downloadsQueued.Dec()
	downloadsActive.Inc()
	o.mu.Lock()
	entry.state = TaskRunning
	o.mu.Unlock()

	result, panicValue, err := o.invoke(ctx, entry, task)

	downloadsActive.Dec()
	o.slots.Release(1)

	outcome.Result = result
	outcome.Err = err
	switch {
	case panicValue != nil:
		outcome.Kind = OutcomeAborted
		outcome.Reason = fmt.Sprintf("task panicked: %v", panicValue)
	case err != nil && ctx.Err() != nil:
		outcome.Kind = OutcomeAborted
		outcome.Reason = "cancelled: " + err.Error()
	case err != nil:
		outcome.Kind = OutcomeFailure
		outcome.Reason = err.Error()
	default:
		outcome.Kind = OutcomeSuccess
	}
	o.finish(entry, outcome, logger)
}

func (o *Orchestrator) invoke(ctx context.Context, entry *tracked, task Task) (result Result, panicValue any, err error) {
	defer func() {
		if r := recover(); r != nil {
			panicValue = r
			logging.ErrorWithContext(logging.WithContext(ctx, o.logger), "download task panicked", "download_panic",
				logging.Any("panic", r),
				logging.String("stack", string(debug.Stack())),
			)
		}
	}()
	progress := func(done, total int64) {
		o.mu.Lock()
		entry.bytesDone = done
		entry.bytesTotal = total
		o.mu.Unlock()
	}
	result, err = task(ctx, progress)
	return result, nil, err
}

func (o *Orchestrator) finish(entry *tracked, outcome Outcome, logger *slog.Logger) {
	outcome.FinishedAt = time.Now()
	downloadsFinished.WithLabelValues(string(outcome.Kind)).Inc()
	downloadDuration.WithLabelValues(string(outcome.Kind)).Observe(outcome.FinishedAt.Sub(outcome.StartedAt).Seconds())

	attrs := []logging.Attr{
		logging.String("outcome", string(outcome.Kind)),
		logging.Duration("elapsed", outcome.FinishedAt.Sub(outcome.StartedAt)),
	}
	switch outcome.Kind {
	case OutcomeSuccess:
		logger.Info("download finished", logging.Args(append(attrs, logging.Int64("bytes", outcome.Result.Bytes))...)...)
	default:
		attrs = append(attrs,
			logging.String(logging.FieldErrorKind, services.Kind(outcome.Err)),
			logging.String("reason", outcome.Reason),
		)
		logging.WarnWithContext(logger, "download did not complete", "download_"+string(outcome.Kind), attrs...)
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	o.finished = append(o.finished, outcome)
	delete(o.tasks, entry.id)
	close(o.changed)
	o.changed = make(chan struct{})
}

// Poll returns the outcomes of tasks that finished since the last call and
// forgets them. It never blocks and never reports an identifier twice for
// the same Start.
func (o *Orchestrator) Poll() []Outcome {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := o.finished
	o.finished = nil
	return out
}

// ActiveCount returns the number of tasks that have not finished.
func (o *Orchestrator) ActiveCount() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.tasks)
}

// Active returns the identifiers of unfinished tasks, sorted.
func (o *Orchestrator) Active() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	ids := make([]string, 0, len(o.tasks))
	for id := range o.tasks {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Status reports the progress of unfinished tasks, sorted by identifier.
func (o *Orchestrator) Status() []TaskStatus {
	o.mu.Lock()
	defer o.mu.Unlock()
	statuses := make([]TaskStatus, 0, len(o.tasks))
	for _, entry := range o.tasks {
		statuses = append(statuses, TaskStatus{
			Identifier: entry.id,
			State:      entry.state,
			BytesDone:  entry.bytesDone,
			BytesTotal: entry.bytesTotal,
			StartedAt:  entry.startedAt,
		})
	}
	sort.Slice(statuses, func(i, j int) bool { return statuses[i].Identifier < statuses[j].Identifier })
	return statuses
}

// Wait blocks until no task is active or ctx is done. Outcomes stay queued
// for Poll.
func (o *Orchestrator) Wait(ctx context.Context) error {
	for {
		o.mu.Lock()
		if len(o.tasks) == 0 {
			o.mu.Unlock()
			return nil
		}
		changed := o.changed
		o.mu.Unlock()

		select {
		case <-changed:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Cancel asks the task registered under identifier to stop. It reports
// whether such a task was active. The task is still reported through Poll.
func (o *Orchestrator) Cancel(identifier string) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	entry, ok := o.tasks[strings.TrimSpace(identifier)]
	if ok {
		entry.cancel()
	}
	return ok
}

// Close cancels every task, waits for them to return and rejects further
// Starts. Outcomes of the cancelled tasks remain available to Poll.
func (o *Orchestrator) Close() {
	o.mu.Lock()
	o.closed = true
	o.mu.Unlock()
	o.cancel()
	o.wg.Wait()
}
