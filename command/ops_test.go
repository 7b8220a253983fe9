package command

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	gcmd "github.com/goliatone/go-command"

	"github.com/goliatone/go-contract-card/contract"
)

func downloadingService(calls *[]string) *stubService {
	return &stubService{
		download: func(ctx context.Context, record contract.Record, downloader contract.Downloader) (contract.SummaryResult, error) {
			*calls = append(*calls, record.ID)
			filename := contract.SummaryFilename(record)
			if err := downloader.Deliver(ctx, contract.DownloadFile{Filename: filename, Data: []byte("%PDF")}); err != nil {
				return contract.SummaryResult{}, err
			}
			return contract.SummaryResult{RecordID: record.ID, Filename: filename}, nil
		},
	}
}

func TestSummaryBatchCommand_LoaderAndLimits(t *testing.T) {
	var calls []string
	var sleeps int
	loader := func(context.Context) ([]contract.Record, error) {
		first := sampleRecord()
		second := sampleRecord()
		second.ID = "c-2"
		third := sampleRecord()
		third.ID = "c-3"
		return []contract.Record{first, second, third}, nil
	}
	var delivered []string
	cmd := NewSummaryBatchCommand(downloadingService(&calls), loader,
		WithBatchLimits(BatchLimits{MaxRecords: 2, MinInterval: time.Millisecond}),
		WithBatchDownloader(contract.DownloaderFunc(func(_ context.Context, file contract.DownloadFile) error {
			delivered = append(delivered, file.Filename)
			return nil
		})),
	)
	cmd.sleep = func(time.Duration) { sleeps++ }

	report, err := cmd.Run(context.Background(), "", "")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(report.Results) != 2 || len(calls) != 2 || len(delivered) != 2 {
		t.Fatalf("expected two summaries, got results=%d calls=%v delivered=%v", len(report.Results), calls, delivered)
	}
	if sleeps != 1 {
		t.Fatalf("expected one sleep between two records, got %d", sleeps)
	}
}

func TestSummaryBatchCommand_SleepsOnlyBetweenRecords(t *testing.T) {
	tests := []struct {
		name   string
		count  int
		sleeps int
	}{
		{name: "single record", count: 1, sleeps: 0},
		{name: "three records", count: 3, sleeps: 2},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var calls []string
			var sleeps int
			loader := func(context.Context) ([]contract.Record, error) {
				records := make([]contract.Record, 0, tc.count)
				for i := 0; i < tc.count; i++ {
					record := sampleRecord()
					record.ID = fmt.Sprintf("c-%d", i+1)
					records = append(records, record)
				}
				return records, nil
			}
			cmd := NewSummaryBatchCommand(downloadingService(&calls), loader,
				WithBatchLimits(BatchLimits{MinInterval: time.Second}),
				WithBatchDownloader(contract.DownloaderFunc(func(context.Context, contract.DownloadFile) error { return nil })),
			)
			cmd.sleep = func(time.Duration) { sleeps++ }

			if _, err := cmd.Run(context.Background(), "", ""); err != nil {
				t.Fatalf("run: %v", err)
			}
			if sleeps != tc.sleeps {
				t.Fatalf("expected %d sleeps, got %d", tc.sleeps, sleeps)
			}
		})
	}
}

func TestSummaryBatchCommand_FromFileToDirectory(t *testing.T) {
	dir := t.TempDir()
	from := filepath.Join(dir, "contracts.yaml")
	content := "contracts:\n  - id: c-1\n    title: MSA-001\n    parties: [Acme]\n    status: pending\n    uploadDate: \"2024-01-15\"\n"
	if err := os.WriteFile(from, []byte(content), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	out := filepath.Join(dir, "out")

	var calls []string
	cmd := NewSummaryBatchCommand(downloadingService(&calls), nil)
	cli, ok := cmd.CLIHandler().(*batchCLI)
	if !ok {
		t.Fatalf("unexpected cli handler %T", cmd.CLIHandler())
	}
	cli.From = from
	cli.Out = out
	if err := cli.Run(); err != nil {
		t.Fatalf("cli run: %v", err)
	}
	if _, err := os.Stat(filepath.Join(out, "MSA-001-summary.pdf")); err != nil {
		t.Fatalf("expected summary saved: %v", err)
	}
}

func TestSummaryBatchCommand_Errors(t *testing.T) {
	var nilCmd *SummaryBatchCommand
	if _, err := nilCmd.Run(context.Background(), "", ""); err == nil {
		t.Fatalf("expected error for nil command")
	}
	if _, err := NewSummaryBatchCommand(nil, nil).Run(context.Background(), "", t.TempDir()); err == nil {
		t.Fatalf("expected error without service")
	}

	var calls []string
	svc := downloadingService(&calls)
	if _, err := NewSummaryBatchCommand(svc, nil).Run(context.Background(), "", ""); err == nil {
		t.Fatalf("expected error without downloader")
	}
	if _, err := NewSummaryBatchCommand(svc, nil).Run(context.Background(), "", t.TempDir()); err == nil {
		t.Fatalf("expected error without loader")
	}
	if _, err := NewSummaryBatchCommand(svc, nil).Run(context.Background(), filepath.Join(t.TempDir(), "missing.yaml"), t.TempDir()); err == nil {
		t.Fatalf("expected error for missing batch file")
	}

	boom := errors.New("loader failed")
	cmd := NewSummaryBatchCommand(svc, func(context.Context) ([]contract.Record, error) { return nil, boom })
	if _, err := cmd.Run(context.Background(), "", t.TempDir()); !errors.Is(err, boom) {
		t.Fatalf("expected loader error, got %v", err)
	}
}

func TestSummaryBatchCommand_Config(t *testing.T) {
	cmd := NewSummaryBatchCommand(&stubService{}, nil,
		WithBatchCLIConfig(gcmd.CLIConfig{Path: []string{"nightly"}}),
		WithBatchCronConfig(gcmd.HandlerConfig{Expression: "@hourly"}),
	)
	if got := cmd.CLIOptions().Path; len(got) != 1 || got[0] != "nightly" {
		t.Fatalf("unexpected cli path %v", got)
	}
	if cmd.CronOptions().Expression != "@hourly" {
		t.Fatalf("unexpected cron expression %q", cmd.CronOptions().Expression)
	}

	defaults := NewSummaryBatchCommand(&stubService{}, nil)
	if defaults.CLIOptions().Group != "contracts" || defaults.CronOptions().Expression == "" {
		t.Fatalf("unexpected defaults %+v %+v", defaults.CLIOptions(), defaults.CronOptions())
	}
	if err := defaults.CronHandler()(); err == nil {
		t.Fatalf("expected cron run to fail without downloader")
	}
}
