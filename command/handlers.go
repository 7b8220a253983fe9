package command

import (
	"context"

	gcmd "github.com/goliatone/go-command"
	"github.com/goliatone/go-errors"

	"github.com/goliatone/go-contract-card/contract"
)

// ExportSummaryHandler generates contract summaries.
type ExportSummaryHandler struct {
	Service contract.Service
	Source  contract.Source
}

func NewExportSummaryHandler(svc contract.Service, source contract.Source) *ExportSummaryHandler {
	return &ExportSummaryHandler{Service: svc, Source: source}
}

func (h *ExportSummaryHandler) Execute(ctx context.Context, msg ExportSummary) error {
	if h == nil || h.Service == nil {
		return errors.New("contract service is required", errors.CategoryInternal).
			WithTextCode("SERVICE_REQUIRED")
	}
	record, err := h.resolve(ctx, msg)
	if err != nil {
		return err
	}
	if msg.ActorID != "" {
		ctx = contract.WithActor(ctx, msg.ActorID)
	}

	var result contract.SummaryResult
	if msg.Downloader != nil {
		result, err = h.Service.DownloadSummary(ctx, record, msg.Downloader)
	} else {
		result, err = h.Service.ExportSummary(ctx, record, msg.Output)
	}
	if err != nil {
		return err
	}
	if msg.Result != nil {
		*msg.Result = result
	}
	if res := gcmd.ResultFromContext[contract.SummaryResult](ctx); res != nil {
		res.Store(result)
	}
	return nil
}

func (h *ExportSummaryHandler) resolve(ctx context.Context, msg ExportSummary) (contract.Record, error) {
	if msg.Record != nil {
		return *msg.Record, nil
	}
	if h.Source == nil {
		return contract.Record{}, errors.New("contract source is required", errors.CategoryInternal).
			WithTextCode("SOURCE_REQUIRED")
	}
	return h.Source.Get(ctx, msg.RecordID)
}
