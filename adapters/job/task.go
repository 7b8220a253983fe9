package cardjob

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand"
	"sync"
	"time"

	"github.com/goliatone/go-command/dispatcher"
	errorslib "github.com/goliatone/go-errors"
	job "github.com/goliatone/go-job"

	"github.com/goliatone/go-contract-card/command"
	"github.com/goliatone/go-contract-card/contract"
)

const (
	DefaultSummaryTaskID   = "contract:summary"
	DefaultSummaryTaskPath = "contract:summary"
)

var (
	backoffRand   = rand.New(rand.NewSource(time.Now().UnixNano()))
	backoffRandMu sync.Mutex
)

// Payload captures the job execution input.
type Payload struct {
	RecordID string `json:"record_id"`
	ActorID  string `json:"actor_id,omitempty"`
}

// MessageBuilderFunc builds an execution message for non-queue paths.
type MessageBuilderFunc func(ctx context.Context) (*job.ExecutionMessage, error)

// SummaryDispatch dispatches a summary export command.
type SummaryDispatch func(ctx context.Context, msg command.ExportSummary) error

// TaskConfig configures the summary task.
type TaskConfig struct {
	ID             string
	Path           string
	Config         job.Config
	HandlerOptions job.HandlerOptions
	RetryPolicy    RetryPolicy
	Downloader     contract.Downloader
	Logger         contract.Logger
	Dispatch       SummaryDispatch
	MessageBuilder MessageBuilderFunc
}

// SummaryTask generates a contract summary in the background and hands it to
// the configured downloader.
type SummaryTask struct {
	id             string
	path           string
	config         job.Config
	handlerOptions job.HandlerOptions
	retryPolicy    RetryPolicy
	downloader     contract.Downloader
	logger         contract.Logger
	dispatch       SummaryDispatch
	messageBuilder MessageBuilderFunc
}

// NewSummaryTask creates a new summary task.
func NewSummaryTask(cfg TaskConfig) *SummaryTask {
	logger := cfg.Logger
	if logger == nil {
		logger = contract.NopLogger{}
	}
	id := cfg.ID
	if id == "" {
		id = DefaultSummaryTaskID
	}
	path := cfg.Path
	if path == "" {
		path = DefaultSummaryTaskPath
	}
	dispatch := cfg.Dispatch
	if dispatch == nil {
		dispatch = func(ctx context.Context, msg command.ExportSummary) error {
			return dispatcher.Dispatch(ctx, msg)
		}
	}

	return &SummaryTask{
		id:             id,
		path:           path,
		config:         cfg.Config,
		handlerOptions: cfg.HandlerOptions,
		retryPolicy:    cfg.RetryPolicy,
		downloader:     cfg.Downloader,
		logger:         logger,
		dispatch:       dispatch,
		messageBuilder: cfg.MessageBuilder,
	}
}

// GetID returns the task identifier.
func (t *SummaryTask) GetID() string { return t.id }

// GetHandler returns a handler for non-queue execution paths.
func (t *SummaryTask) GetHandler() func() error {
	return func() error {
		if t == nil {
			return contract.NewError(contract.KindInternal, "task is nil", nil)
		}
		if t.messageBuilder == nil {
			return contract.NewError(contract.KindNotImpl, "job message builder not configured", nil)
		}

		ctx := context.Background()
		msg, err := t.messageBuilder(ctx)
		if err != nil {
			return err
		}
		if msg == nil {
			return contract.NewError(contract.KindValidation, "execution message is required", nil)
		}
		return t.Execute(ctx, msg)
	}
}

// GetHandlerConfig returns scheduler options for the task.
func (t *SummaryTask) GetHandlerConfig() job.HandlerOptions { return t.handlerOptions }

// GetConfig returns task config defaults.
func (t *SummaryTask) GetConfig() job.Config { return t.config }

// GetPath returns the task path.
func (t *SummaryTask) GetPath() string { return t.path }

// GetEngine returns nil because this task is code-driven.
func (t *SummaryTask) GetEngine() job.Engine { return nil }

// Execute generates the summary named by the message payload.
func (t *SummaryTask) Execute(ctx context.Context, msg *job.ExecutionMessage) error {
	if t == nil {
		return contract.NewError(contract.KindInternal, "task is nil", nil)
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if t.downloader == nil {
		return contract.NewError(contract.KindNotImpl, "summary downloader not configured", nil)
	}

	payload, err := decodePayload(msg)
	if err != nil {
		return err
	}
	if payload.RecordID == "" {
		return contract.NewError(contract.KindValidation, "record ID is required", nil)
	}

	policy := t.retryPolicy
	attempt := 0
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		err := t.dispatch(ctx, command.ExportSummary{
			RecordID:   payload.RecordID,
			ActorID:    payload.ActorID,
			Downloader: t.downloader,
		})
		if err == nil {
			return nil
		}

		if !policy.shouldRetry(err) || attempt >= policy.MaxRetries {
			t.logger.Errorf("summary job for contract %q failed: %v", payload.RecordID, err)
			return err
		}

		attempt++
		t.logger.Debugf("retrying summary job for contract %q (attempt %d): %v", payload.RecordID, attempt, err)
		if delay := policy.backoffDelay(attempt); delay > 0 {
			if serr := sleepWithContext(ctx, delay); serr != nil {
				return serr
			}
		}
	}
}

func encodePayload(payload Payload) (json.RawMessage, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, contract.NewError(contract.KindValidation, "payload is not serializable", err)
	}
	return json.RawMessage(raw), nil
}

func decodePayload(msg *job.ExecutionMessage) (Payload, error) {
	if msg == nil || msg.Parameters == nil {
		return Payload{}, contract.NewError(contract.KindValidation, "job payload is required", nil)
	}

	raw, ok := msg.Parameters["payload"]
	if !ok {
		return Payload{}, contract.NewError(contract.KindValidation, "job payload missing", nil)
	}

	switch value := raw.(type) {
	case Payload:
		return value, nil
	case *Payload:
		if value == nil {
			return Payload{}, contract.NewError(contract.KindValidation, "job payload is nil", nil)
		}
		return *value, nil
	case json.RawMessage:
		return unmarshalPayload(value)
	case []byte:
		return unmarshalPayload(value)
	case string:
		return unmarshalPayload([]byte(value))
	default:
		data, err := json.Marshal(value)
		if err != nil {
			return Payload{}, contract.NewError(contract.KindValidation, "job payload is invalid", err)
		}
		return unmarshalPayload(data)
	}
}

func unmarshalPayload(data []byte) (Payload, error) {
	if len(data) == 0 {
		return Payload{}, contract.NewError(contract.KindValidation, "job payload is empty", nil)
	}
	var payload Payload
	if err := json.Unmarshal(data, &payload); err != nil {
		return Payload{}, contract.NewError(contract.KindValidation, "job payload is invalid", err)
	}
	return payload, nil
}

// RetryPolicy determines retry behavior for retryable errors.
type RetryPolicy struct {
	MaxRetries int
	Backoff    job.BackoffConfig
	Retryable  func(error) bool
}

func (p RetryPolicy) shouldRetry(err error) bool {
	if err == nil || p.MaxRetries <= 0 {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	if p.Retryable != nil {
		return p.Retryable(err)
	}
	return defaultRetryable(err)
}

func (p RetryPolicy) backoffDelay(attempt int) time.Duration {
	if attempt <= 0 {
		return 0
	}
	return computeBackoffDelay(attempt, p.Backoff)
}

// defaultRetryable retries timeouts and delivery failures. Validation and
// lookup errors are permanent.
func defaultRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	if errorslib.IsRetryableError(err) {
		return true
	}
	switch contract.KindFromError(err) {
	case contract.KindTimeout, contract.KindInternal:
		var contractErr *contract.Error
		return errors.As(err, &contractErr)
	}
	return false
}

func computeBackoffDelay(attempt int, cfg job.BackoffConfig) time.Duration {
	if attempt <= 0 {
		return 0
	}

	interval := cfg.Interval
	if interval <= 0 {
		interval = 250 * time.Millisecond
	}

	maxInterval := cfg.MaxInterval
	if maxInterval <= 0 {
		maxInterval = 5 * time.Second
	}

	switch cfg.Strategy {
	case job.BackoffFixed:
		return applyJitter(interval, cfg.Jitter)
	case job.BackoffExponential:
		delay := interval
		for i := 1; i < attempt; i++ {
			delay *= 2
			if delay > maxInterval {
				delay = maxInterval
				break
			}
		}
		return applyJitter(delay, cfg.Jitter)
	default:
		return 0
	}
}

func applyJitter(delay time.Duration, jitter bool) time.Duration {
	if !jitter || delay <= 0 {
		return delay
	}
	half := float64(delay) * 0.5
	backoffRandMu.Lock()
	offset := (backoffRand.Float64()*2 - 1) * half
	backoffRandMu.Unlock()
	jittered := float64(delay) + offset
	if jittered < 0 {
		return 0
	}
	return time.Duration(jittered)
}

func sleepWithContext(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return nil
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
