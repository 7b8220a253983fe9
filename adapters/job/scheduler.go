package cardjob

import (
	"context"
	"strings"

	job "github.com/goliatone/go-job"

	"github.com/goliatone/go-contract-card/contract"
)

// Enqueuer delivers execution messages to go-job.
type Enqueuer interface {
	Enqueue(ctx context.Context, msg *job.ExecutionMessage) error
}

// EnqueuerFunc adapts a function to an Enqueuer.
type EnqueuerFunc func(ctx context.Context, msg *job.ExecutionMessage) error

func (f EnqueuerFunc) Enqueue(ctx context.Context, msg *job.ExecutionMessage) error {
	if f == nil {
		return contract.NewError(contract.KindInternal, "enqueuer is nil", nil)
	}
	return f(ctx, msg)
}

// SchedulerConfig configures the summary scheduler.
type SchedulerConfig struct {
	Source   contract.Source
	Enqueuer Enqueuer
	TaskID   string
	TaskPath string
	Logger   contract.Logger
}

// SummaryRequest names the contract a background summary is generated for.
type SummaryRequest struct {
	RecordID       string
	ActorID        string
	IdempotencyKey string
}

// Scheduler enqueues summary generation jobs.
type Scheduler struct {
	source   contract.Source
	enqueuer Enqueuer
	taskID   string
	taskPath string
	logger   contract.Logger
}

// NewScheduler creates a new summary scheduler.
func NewScheduler(cfg SchedulerConfig) *Scheduler {
	logger := cfg.Logger
	if logger == nil {
		logger = contract.NopLogger{}
	}
	taskID := cfg.TaskID
	if taskID == "" {
		taskID = DefaultSummaryTaskID
	}
	taskPath := cfg.TaskPath
	if taskPath == "" {
		taskPath = DefaultSummaryTaskPath
	}
	return &Scheduler{
		source:   cfg.Source,
		enqueuer: cfg.Enqueuer,
		taskID:   taskID,
		taskPath: taskPath,
		logger:   logger,
	}
}

// BuildMessage returns the execution message for req without enqueuing it.
// When a source is configured the record must exist.
func (s *Scheduler) BuildMessage(ctx context.Context, req SummaryRequest) (*job.ExecutionMessage, error) {
	if s == nil {
		return nil, contract.NewError(contract.KindInternal, "scheduler is nil", nil)
	}
	recordID := strings.TrimSpace(req.RecordID)
	if recordID == "" {
		return nil, contract.NewError(contract.KindValidation, "record ID is required", nil)
	}
	if s.source != nil {
		if _, err := s.source.Get(ctx, recordID); err != nil {
			return nil, err
		}
	}

	encoded, err := encodePayload(Payload{RecordID: recordID, ActorID: req.ActorID})
	if err != nil {
		return nil, err
	}
	msg := &job.ExecutionMessage{
		JobID:      s.taskID,
		ScriptPath: s.taskPath,
		Parameters: map[string]any{"payload": encoded},
	}
	if req.IdempotencyKey != "" {
		msg.IdempotencyKey = recordID + ":" + req.IdempotencyKey
		msg.DedupPolicy = job.DedupPolicyMerge
	}
	return msg, nil
}

// RequestSummary enqueues background generation of a contract summary.
func (s *Scheduler) RequestSummary(ctx context.Context, req SummaryRequest) (*job.ExecutionMessage, error) {
	if s == nil {
		return nil, contract.NewError(contract.KindInternal, "scheduler is nil", nil)
	}
	if s.enqueuer == nil {
		return nil, contract.NewError(contract.KindNotImpl, "job enqueuer not configured", nil)
	}
	msg, err := s.BuildMessage(ctx, req)
	if err != nil {
		return nil, err
	}
	if err := s.enqueuer.Enqueue(ctx, msg); err != nil {
		s.logger.Errorf("enqueue summary for contract %q: %v", req.RecordID, err)
		return nil, err
	}
	s.logger.Debugf("summary for contract %q enqueued", req.RecordID)
	return msg, nil
}
