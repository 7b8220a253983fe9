package command

import (
	"context"
	"strings"
	"time"

	gcmd "github.com/goliatone/go-command"
	"github.com/goliatone/go-errors"

	downloadfs "github.com/goliatone/go-contract-card/adapters/download/fs"
	"github.com/goliatone/go-contract-card/contract"
	cardfile "github.com/goliatone/go-contract-card/sources/file"
)

// BatchLoader loads the contracts a batch run summarizes.
type BatchLoader func(ctx context.Context) ([]contract.Record, error)

// BatchLimits bounds batch execution throughput.
type BatchLimits struct {
	MaxRecords  int
	MinInterval time.Duration
}

// BatchReport describes one batch run.
type BatchReport struct {
	Results []contract.SummaryResult
}

// SummaryBatchCommand wires CLI/Cron execution for bulk summary exports.
type SummaryBatchCommand struct {
	service    contract.Service
	loader     BatchLoader
	downloader contract.Downloader
	cliConfig  gcmd.CLIConfig
	cronConfig gcmd.HandlerConfig
	limits     BatchLimits
	sleep      func(time.Duration)
}

// BatchOption customizes batch commands.
type BatchOption func(*SummaryBatchCommand)

// WithBatchCLIConfig overrides CLI configuration.
func WithBatchCLIConfig(cfg gcmd.CLIConfig) BatchOption {
	return func(cmd *SummaryBatchCommand) {
		cmd.cliConfig = cfg
	}
}

// WithBatchCronConfig overrides cron configuration.
func WithBatchCronConfig(cfg gcmd.HandlerConfig) BatchOption {
	return func(cmd *SummaryBatchCommand) {
		cmd.cronConfig = cfg
	}
}

// WithBatchLimits overrides batch execution limits.
func WithBatchLimits(limits BatchLimits) BatchOption {
	return func(cmd *SummaryBatchCommand) {
		cmd.limits = limits
	}
}

// WithBatchDownloader sets where scheduled runs deliver summaries.
func WithBatchDownloader(downloader contract.Downloader) BatchOption {
	return func(cmd *SummaryBatchCommand) {
		cmd.downloader = downloader
	}
}

// NewSummaryBatchCommand creates a CLI/Cron command that exports one summary
// per loaded contract.
func NewSummaryBatchCommand(svc contract.Service, loader BatchLoader, opts ...BatchOption) *SummaryBatchCommand {
	cmd := &SummaryBatchCommand{
		service: svc,
		loader:  loader,
		cliConfig: gcmd.CLIConfig{
			Path:        []string{"contracts-summaries"},
			Description: "Export contract summary PDFs",
			Group:       "contracts",
		},
		cronConfig: gcmd.HandlerConfig{Expression: "0 2 * * *"},
		sleep:      time.Sleep,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(cmd)
		}
	}
	return cmd
}

// CronHandler executes scheduled batch runs.
func (c *SummaryBatchCommand) CronHandler() func() error {
	return func() error {
		_, err := c.Run(context.Background(), "", "")
		return err
	}
}

// CronOptions returns cron configuration.
func (c *SummaryBatchCommand) CronOptions() gcmd.HandlerConfig {
	if c == nil {
		return gcmd.HandlerConfig{}
	}
	return c.cronConfig
}

// CLIHandler exposes the CLI handler.
func (c *SummaryBatchCommand) CLIHandler() any {
	return &batchCLI{cmd: c}
}

// CLIOptions returns CLI configuration.
func (c *SummaryBatchCommand) CLIOptions() gcmd.CLIConfig {
	if c == nil {
		return gcmd.CLIConfig{}
	}
	return c.cliConfig
}

// Run exports summaries for every loaded contract. Records come from the file
// at from when set, otherwise from the configured loader. Summaries are saved
// under outDir when set, otherwise handed to the configured downloader.
func (c *SummaryBatchCommand) Run(ctx context.Context, from, outDir string) (BatchReport, error) {
	if c == nil {
		return BatchReport{}, errors.New("batch command is nil", errors.CategoryInternal).
			WithTextCode("BATCH_CMD_NIL")
	}
	if c.service == nil {
		return BatchReport{}, errors.New("contract service is required", errors.CategoryValidation).
			WithTextCode("SERVICE_REQUIRED")
	}

	downloader := c.downloader
	if strings.TrimSpace(outDir) != "" {
		downloader = downloadfs.NewDownloader(outDir)
	}
	if downloader == nil {
		return BatchReport{}, errors.New("batch downloader or output directory is required", errors.CategoryValidation).
			WithTextCode("DOWNLOADER_REQUIRED")
	}

	records, err := c.loadRecords(ctx, from)
	if err != nil {
		return BatchReport{}, err
	}

	var report BatchReport
	for _, record := range records {
		if c.limits.MaxRecords > 0 && len(report.Results) >= c.limits.MaxRecords {
			break
		}
		if err := ctx.Err(); err != nil {
			return report, err
		}
		if len(report.Results) > 0 && c.limits.MinInterval > 0 && c.sleep != nil {
			c.sleep(c.limits.MinInterval)
		}
		result, err := c.service.DownloadSummary(ctx, record, downloader)
		if err != nil {
			return report, err
		}
		report.Results = append(report.Results, result)
	}
	return report, nil
}

func (c *SummaryBatchCommand) loadRecords(ctx context.Context, from string) ([]contract.Record, error) {
	if strings.TrimSpace(from) != "" {
		records, err := cardfile.Load(from)
		if err != nil {
			return nil, errors.Wrap(err, errors.CategoryExternal, "read batch file failed").
				WithTextCode("BATCH_FILE_READ")
		}
		return records, nil
	}
	if c.loader == nil {
		return nil, errors.New("batch loader not configured", errors.CategoryValidation).
			WithTextCode("LOADER_REQUIRED")
	}
	return c.loader(ctx)
}

type batchCLI struct {
	cmd  *SummaryBatchCommand
	From string `kong:"name='from',help='Path to a YAML or JSON contract file'"`
	Out  string `kong:"name='out',help='Directory the summary PDFs are saved to'"`
}

func (c *batchCLI) Run() error {
	if c == nil || c.cmd == nil {
		return errors.New("batch command is required", errors.CategoryInternal).
			WithTextCode("BATCH_CMD_NIL")
	}
	_, err := c.cmd.Run(context.Background(), c.From, c.Out)
	return err
}
