package cardjob

import (
	"context"
	"testing"
	"time"

	job "github.com/goliatone/go-job"

	"github.com/goliatone/go-contract-card/command"
	"github.com/goliatone/go-contract-card/contract"
)

var discard = contract.DownloaderFunc(func(context.Context, contract.DownloadFile) error { return nil })

func newSource(t *testing.T) contract.Source {
	t.Helper()
	source, err := contract.NewMemorySource(contract.Record{
		ID:         "c-1",
		Title:      "MSA-001",
		Status:     contract.StatusCompleted,
		UploadDate: "2024-01-15",
	})
	if err != nil {
		t.Fatalf("source: %v", err)
	}
	return source
}

func TestScheduler_EnqueueAndExecute(t *testing.T) {
	var queued []*job.ExecutionMessage
	scheduler := NewScheduler(SchedulerConfig{
		Source: newSource(t),
		Enqueuer: EnqueuerFunc(func(_ context.Context, msg *job.ExecutionMessage) error {
			queued = append(queued, msg)
			return nil
		}),
	})

	if _, err := scheduler.RequestSummary(context.Background(), SummaryRequest{RecordID: "c-1", ActorID: "user-1"}); err != nil {
		t.Fatalf("request: %v", err)
	}
	if len(queued) != 1 || queued[0].JobID != DefaultSummaryTaskID {
		t.Fatalf("expected one queued summary job, got %+v", queued)
	}

	var dispatched []command.ExportSummary
	task := NewSummaryTask(TaskConfig{
		Downloader: discard,
		Dispatch: func(_ context.Context, msg command.ExportSummary) error {
			dispatched = append(dispatched, msg)
			return nil
		},
	})
	if err := task.Execute(context.Background(), queued[0]); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if len(dispatched) != 1 {
		t.Fatalf("expected one dispatch, got %d", len(dispatched))
	}
	msg := dispatched[0]
	if msg.RecordID != "c-1" || msg.ActorID != "user-1" || msg.Downloader == nil {
		t.Fatalf("unexpected command %+v", msg)
	}
	if err := msg.Validate(); err != nil {
		t.Fatalf("expected valid command, got %v", err)
	}
}

func TestScheduler_Errors(t *testing.T) {
	scheduler := NewScheduler(SchedulerConfig{Source: newSource(t)})
	if _, err := scheduler.RequestSummary(context.Background(), SummaryRequest{RecordID: "c-1"}); contract.KindFromError(err) != contract.KindNotImpl {
		t.Fatalf("expected not implemented without enqueuer, got %v", err)
	}
	if _, err := scheduler.BuildMessage(context.Background(), SummaryRequest{RecordID: "c-404"}); contract.KindFromError(err) != contract.KindNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
	if _, err := scheduler.BuildMessage(context.Background(), SummaryRequest{}); contract.KindFromError(err) != contract.KindValidation {
		t.Fatalf("expected validation error, got %v", err)
	}

	msg, err := scheduler.BuildMessage(context.Background(), SummaryRequest{RecordID: "c-1", IdempotencyKey: "nightly"})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if msg.IdempotencyKey != "c-1:nightly" || msg.DedupPolicy != job.DedupPolicyMerge {
		t.Fatalf("expected merge dedup, got %+v", msg)
	}
}

func TestSummaryTask_RetriesTimeouts(t *testing.T) {
	calls := 0
	task := NewSummaryTask(TaskConfig{
		Downloader:  discard,
		RetryPolicy: RetryPolicy{MaxRetries: 2},
		Dispatch: func(context.Context, command.ExportSummary) error {
			calls++
			if calls < 3 {
				return contract.NewError(contract.KindTimeout, "slow disk", nil)
			}
			return nil
		},
	})
	msg := &job.ExecutionMessage{Parameters: map[string]any{"payload": Payload{RecordID: "c-1"}}}
	if err := task.Execute(context.Background(), msg); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if calls != 3 {
		t.Fatalf("expected 3 attempts, got %d", calls)
	}
}

func TestSummaryTask_DoesNotRetryValidation(t *testing.T) {
	calls := 0
	task := NewSummaryTask(TaskConfig{
		Downloader:  discard,
		RetryPolicy: RetryPolicy{MaxRetries: 3},
		Dispatch: func(context.Context, command.ExportSummary) error {
			calls++
			return contract.NewError(contract.KindValidation, "unknown status", nil)
		},
	})
	msg := &job.ExecutionMessage{Parameters: map[string]any{"payload": `{"record_id":"c-1"}`}}
	if err := task.Execute(context.Background(), msg); contract.KindFromError(err) != contract.KindValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected a single attempt, got %d", calls)
	}
}

func TestSummaryTask_InvalidPayloads(t *testing.T) {
	task := NewSummaryTask(TaskConfig{Downloader: discard, Dispatch: func(context.Context, command.ExportSummary) error { return nil }})
	cases := []*job.ExecutionMessage{
		nil,
		{Parameters: map[string]any{}},
		{Parameters: map[string]any{"payload": ""}},
		{Parameters: map[string]any{"payload": "{"}},
		{Parameters: map[string]any{"payload": Payload{}}},
	}
	for i, msg := range cases {
		if err := task.Execute(context.Background(), msg); contract.KindFromError(err) != contract.KindValidation {
			t.Fatalf("case %d: expected validation error, got %v", i, err)
		}
	}

	noDownloader := NewSummaryTask(TaskConfig{})
	if err := noDownloader.Execute(context.Background(), &job.ExecutionMessage{}); contract.KindFromError(err) != contract.KindNotImpl {
		t.Fatalf("expected not implemented, got %v", err)
	}
}

func TestSummaryTask_GetHandler(t *testing.T) {
	scheduler := NewScheduler(SchedulerConfig{})
	var got string
	task := NewSummaryTask(TaskConfig{
		Downloader: discard,
		Dispatch: func(_ context.Context, msg command.ExportSummary) error {
			got = msg.RecordID
			return nil
		},
		MessageBuilder: func(ctx context.Context) (*job.ExecutionMessage, error) {
			return scheduler.BuildMessage(ctx, SummaryRequest{RecordID: "c-7"})
		},
	})
	if err := task.GetHandler()(); err != nil {
		t.Fatalf("handler: %v", err)
	}
	if got != "c-7" {
		t.Fatalf("expected dispatch for c-7, got %q", got)
	}
	if task.GetID() != DefaultSummaryTaskID || task.GetPath() != DefaultSummaryTaskPath {
		t.Fatalf("unexpected task identity")
	}

	if err := NewSummaryTask(TaskConfig{}).GetHandler()(); contract.KindFromError(err) != contract.KindNotImpl {
		t.Fatalf("expected not implemented without builder, got %v", err)
	}
}

func TestComputeBackoffDelay(t *testing.T) {
	cfg := job.BackoffConfig{Strategy: job.BackoffExponential, Interval: 100 * time.Millisecond, MaxInterval: 300 * time.Millisecond}
	if got := computeBackoffDelay(1, cfg); got != 100*time.Millisecond {
		t.Fatalf("attempt 1: got %s", got)
	}
	if got := computeBackoffDelay(2, cfg); got != 200*time.Millisecond {
		t.Fatalf("attempt 2: got %s", got)
	}
	if got := computeBackoffDelay(5, cfg); got != 300*time.Millisecond {
		t.Fatalf("attempt 5: got %s", got)
	}
	if got := computeBackoffDelay(1, job.BackoffConfig{}); got != 0 {
		t.Fatalf("expected no delay without strategy, got %s", got)
	}
}
