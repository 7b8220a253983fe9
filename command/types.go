package command

import (
	"io"
	"strings"

	"github.com/goliatone/go-errors"

	"github.com/goliatone/go-contract-card/contract"
)

// ExportSummary generates the PDF summary of one contract. The record is
// taken from Record when set, otherwise it is looked up by RecordID.
type ExportSummary struct {
	Record     *contract.Record
	RecordID   string
	ActorID    string
	Output     io.Writer
	Downloader contract.Downloader
	Result     *contract.SummaryResult
}

func (ExportSummary) Type() string { return "contract:export_summary" }

func (msg ExportSummary) Validate() error {
	if msg.Record == nil && strings.TrimSpace(msg.RecordID) == "" {
		return errors.New("contract record or ID is required", errors.CategoryValidation).
			WithTextCode("RECORD_REQUIRED")
	}
	if msg.Output == nil && msg.Downloader == nil {
		return errors.New("output writer or downloader is required", errors.CategoryValidation).
			WithTextCode("OUTPUT_REQUIRED")
	}
	if msg.Output != nil && msg.Downloader != nil {
		return errors.New("set either output writer or downloader, not both", errors.CategoryValidation).
			WithTextCode("OUTPUT_AMBIGUOUS")
	}
	return nil
}
