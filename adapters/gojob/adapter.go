package gojob

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-plaid/core"
	"github.com/google/uuid"

	job "github.com/goliatone/go-job"
	"github.com/goliatone/go-job/queue"
	"github.com/goliatone/go-job/queue/worker"
	glog "github.com/goliatone/go-logger/glog"
)

const JobIDInvokeOperation = "plaid.operation.invoke"

const (
	paramOperation = "operation"
	paramArgs      = "args"

	defaultPollInterval = time.Second
)

// OperationJob is a queued invocation of a catalog operation.
type OperationJob struct {
	Operation      string
	Args           core.Args
	IdempotencyKey string
	DedupPolicy    string
}

// Invoker is satisfied by *core.Client.
type Invoker interface {
	Invoke(ctx context.Context, name string, args core.Args) (core.Result, error)
}

// RetryPolicy bounds retries so a failing operation cannot loop forever.
type RetryPolicy struct {
	MaxAttempts     int
	BaseDelay       time.Duration
	MaxDelay        time.Duration
	DeadLetterOnMax bool
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:     5,
		BaseDelay:       2 * time.Second,
		MaxDelay:        time.Minute,
		DeadLetterOnMax: true,
	}
}

// Backoff doubles BaseDelay per attempt, capped at MaxDelay.
func (p RetryPolicy) Backoff(attempt int) time.Duration {
	if p.BaseDelay <= 0 || attempt <= 0 {
		return 0
	}
	delay := p.BaseDelay
	for i := 1; i < attempt; i++ {
		delay *= 2
		if p.MaxDelay > 0 && delay >= p.MaxDelay {
			return p.MaxDelay
		}
	}
	if p.MaxDelay > 0 && delay > p.MaxDelay {
		return p.MaxDelay
	}
	return delay
}

// NormalizeAttempt enforces bounded retry behavior for a nack operation.
func (p RetryPolicy) NormalizeAttempt(opts queue.NackOptions, attempt int) queue.NackOptions {
	out := opts
	out.Reason = strings.TrimSpace(out.Reason)
	if out.Delay < 0 {
		out.Delay = 0
	}
	if p.MaxDelay > 0 && out.Delay > p.MaxDelay {
		out.Delay = p.MaxDelay
	}
	if out.DeadLetter {
		out.Requeue = false
	}
	if p.MaxAttempts > 0 && attempt >= p.MaxAttempts {
		out.Requeue = false
		if p.DeadLetterOnMax || out.DeadLetter {
			out.DeadLetter = true
		}
	}
	if !out.Requeue && !out.DeadLetter {
		out.Requeue = true
	}
	return out
}

// Retryable reports whether a failed invocation may succeed on a later
// attempt. Transport failures, rate limits and remote 5xx responses qualify.
func Retryable(result core.Result, err error) bool {
	if err != nil {
		return core.IsTransportError(err) || core.IsDecodeError(err)
	}
	if result.Remote == nil {
		return false
	}
	status := result.Remote.StatusCode
	return status == http.StatusTooManyRequests || status >= http.StatusInternalServerError
}

// ToExecutionMessage maps an operation job to a go-job message. A missing
// idempotency key is generated.
func ToExecutionMessage(in OperationJob) *job.ExecutionMessage {
	key := strings.TrimSpace(in.IdempotencyKey)
	if key == "" {
		key = uuid.NewString()
	}
	return &job.ExecutionMessage{
		JobID:      JobIDInvokeOperation,
		ScriptPath: strings.TrimSpace(in.Operation),
		Parameters: map[string]any{
			paramOperation: strings.TrimSpace(in.Operation),
			paramArgs:      map[string]any(in.Args.Clone()),
		},
		IdempotencyKey: key,
		DedupPolicy:    job.DeduplicationPolicy(strings.TrimSpace(in.DedupPolicy)),
	}
}

// FromExecutionMessage maps a go-job message back to an operation job.
func FromExecutionMessage(msg *job.ExecutionMessage) (OperationJob, error) {
	if msg == nil {
		return OperationJob{}, jobError("gojob: execution message is required", nil)
	}
	if strings.TrimSpace(msg.JobID) != JobIDInvokeOperation {
		return OperationJob{}, jobError("gojob: unsupported job id "+msg.JobID, map[string]any{"job_id": msg.JobID})
	}
	operation, _ := msg.Parameters[paramOperation].(string)
	operation = strings.TrimSpace(operation)
	if operation == "" {
		operation = strings.TrimSpace(msg.ScriptPath)
	}
	if operation == "" {
		return OperationJob{}, jobError("gojob: operation is required", map[string]any{"job_id": msg.JobID})
	}
	args := core.Args{}
	switch raw := msg.Parameters[paramArgs].(type) {
	case core.Args:
		args = raw.Clone()
	case map[string]any:
		args = core.Args(raw).Clone()
	}
	return OperationJob{
		Operation:      operation,
		Args:           args,
		IdempotencyKey: strings.TrimSpace(msg.IdempotencyKey),
		DedupPolicy:    strings.TrimSpace(string(msg.DedupPolicy)),
	}, nil
}

type Enqueuer struct {
	enqueuer queue.Enqueuer
}

func NewEnqueuer(enqueuer queue.Enqueuer) *Enqueuer {
	return &Enqueuer{enqueuer: enqueuer}
}

// Enqueue queues the job and returns its idempotency key.
func (e *Enqueuer) Enqueue(ctx context.Context, in OperationJob) (string, error) {
	if e == nil || e.enqueuer == nil {
		return "", fmt.Errorf("gojob: enqueuer is not configured")
	}
	if strings.TrimSpace(in.Operation) == "" {
		return "", jobError("gojob: operation is required", nil)
	}
	msg := ToExecutionMessage(in)
	if err := e.enqueuer.Enqueue(ctx, msg); err != nil {
		return "", err
	}
	return msg.IdempotencyKey, nil
}

type WorkerOption func(*Worker)

func WithRetryPolicy(policy RetryPolicy) WorkerOption {
	return func(w *Worker) {
		w.policy = policy
	}
}

func WithHook(hook worker.Hook) WorkerOption {
	return func(w *Worker) {
		w.hook = hook
	}
}

func WithLogger(logger glog.Logger) WorkerOption {
	return func(w *Worker) {
		if logger != nil {
			w.logger = logger
		}
	}
}

func WithPollInterval(interval time.Duration) WorkerOption {
	return func(w *Worker) {
		if interval > 0 {
			w.pollInterval = interval
		}
	}
}

// Worker drains queued operation jobs and invokes them on a client.
// Attempts are counted per idempotency key for the life of the worker.
type Worker struct {
	dequeuer     queue.Dequeuer
	invoker      Invoker
	policy       RetryPolicy
	hook         worker.Hook
	logger       glog.Logger
	pollInterval time.Duration
	now          func() time.Time

	mu       sync.Mutex
	attempts map[string]int
}

func NewWorker(dequeuer queue.Dequeuer, invoker Invoker, opts ...WorkerOption) *Worker {
	w := &Worker{
		dequeuer:     dequeuer,
		invoker:      invoker,
		policy:       DefaultRetryPolicy(),
		logger:       glog.Nop(),
		pollInterval: defaultPollInterval,
		now:          time.Now,
		attempts:     map[string]int{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(w)
		}
	}
	return w
}

// Run processes deliveries until ctx is done.
func (w *Worker) Run(ctx context.Context) error {
	if w == nil || w.dequeuer == nil || w.invoker == nil {
		return fmt.Errorf("gojob: worker is not configured")
	}
	for {
		if ctx.Err() != nil {
			return nil
		}
		if err := w.ProcessNext(ctx); err != nil {
			w.logger.Warn("operation job failed", "error", err)
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(w.pollInterval):
			}
		}
	}
}

// ProcessNext handles a single delivery. It returns dequeue and ack errors;
// invocation failures are settled on the delivery instead.
func (w *Worker) ProcessNext(ctx context.Context) error {
	if w == nil || w.dequeuer == nil || w.invoker == nil {
		return fmt.Errorf("gojob: worker is not configured")
	}
	delivery, err := w.dequeuer.Dequeue(ctx)
	if err != nil {
		return err
	}
	if delivery == nil {
		return nil
	}

	message := delivery.Message()
	in, err := FromExecutionMessage(message)
	if err != nil {
		w.fire(ctx, w.hookFailure, worker.Event{Message: message, Delivery: delivery, Err: err})
		return delivery.Nack(ctx, queue.NackOptions{DeadLetter: true, Reason: err.Error()})
	}

	attempt := w.nextAttempt(in.IdempotencyKey)
	startedAt := w.now().UTC()
	event := worker.Event{Message: message, Delivery: delivery, Attempt: attempt, StartedAt: startedAt}
	w.fire(ctx, w.hookStart, event)

	result, invokeErr := w.invoker.Invoke(ctx, in.Operation, in.Args)
	event.Duration = w.now().UTC().Sub(startedAt)

	failure := invokeErr
	if failure == nil && result.Remote != nil && Retryable(result, nil) {
		failure = result.Err()
	}
	if failure == nil {
		w.forget(in.IdempotencyKey)
		w.fire(ctx, w.hookSuccess, event)
		return delivery.Ack(ctx)
	}

	event.Err = failure
	if !Retryable(result, invokeErr) {
		w.forget(in.IdempotencyKey)
		w.fire(ctx, w.hookFailure, event)
		w.logger.Error("operation job rejected", "operation", in.Operation, "attempt", attempt, "error", failure)
		return delivery.Nack(ctx, queue.NackOptions{DeadLetter: true, Reason: failure.Error()})
	}

	opts := w.policy.NormalizeAttempt(queue.NackOptions{
		Delay:   w.policy.Backoff(attempt),
		Requeue: true,
		Reason:  failure.Error(),
	}, attempt)
	event.Delay = opts.Delay
	if opts.Requeue {
		w.fire(ctx, w.hookRetry, event)
	} else {
		w.forget(in.IdempotencyKey)
		w.fire(ctx, w.hookFailure, event)
	}
	w.logger.Warn("operation job nacked",
		"operation", in.Operation,
		"attempt", attempt,
		"requeue", opts.Requeue,
		"dead_letter", opts.DeadLetter,
		"delay_ms", opts.Delay.Milliseconds(),
	)
	return delivery.Nack(ctx, opts)
}

func (w *Worker) nextAttempt(key string) int {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.attempts[key]++
	return w.attempts[key]
}

func (w *Worker) forget(key string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.attempts, key)
}

func (w *Worker) fire(ctx context.Context, fn func(context.Context, worker.Event), event worker.Event) {
	if w.hook == nil {
		return
	}
	fn(ctx, event)
}

func (w *Worker) hookStart(ctx context.Context, event worker.Event)   { w.hook.OnStart(ctx, event) }
func (w *Worker) hookSuccess(ctx context.Context, event worker.Event) { w.hook.OnSuccess(ctx, event) }
func (w *Worker) hookFailure(ctx context.Context, event worker.Event) { w.hook.OnFailure(ctx, event) }
func (w *Worker) hookRetry(ctx context.Context, event worker.Event)   { w.hook.OnRetry(ctx, event) }

func jobError(message string, metadata map[string]any) error {
	err := goerrors.New(message, goerrors.CategoryBadInput).
		WithCode(http.StatusBadRequest).
		WithTextCode(core.ErrorBadInput)
	if len(metadata) > 0 {
		err.WithMetadata(metadata)
	}
	return err
}

var _ Invoker = (*core.Client)(nil)
