package query

import (
	"context"

	"github.com/goliatone/go-errors"

	"github.com/goliatone/go-contract-card/contract"
)

// GetContractHandler returns a single contract record.
type GetContractHandler struct {
	Source contract.Source
}

func NewGetContractHandler(source contract.Source) *GetContractHandler {
	return &GetContractHandler{Source: source}
}

func (h *GetContractHandler) Query(ctx context.Context, msg GetContract) (contract.Record, error) {
	if h == nil || h.Source == nil {
		return contract.Record{}, errors.New("contract source is required", errors.CategoryInternal).
			WithTextCode("SOURCE_REQUIRED")
	}
	return h.Source.Get(ctx, msg.ID)
}

// RenderCardHandler builds contract cards.
type RenderCardHandler struct {
	Service contract.Service
	Source  contract.Source
}

func NewRenderCardHandler(svc contract.Service, source contract.Source) *RenderCardHandler {
	return &RenderCardHandler{Service: svc, Source: source}
}

func (h *RenderCardHandler) Query(ctx context.Context, msg RenderCard) (contract.Card, error) {
	if h == nil || h.Service == nil {
		return contract.Card{}, errors.New("contract service is required", errors.CategoryInternal).
			WithTextCode("SERVICE_REQUIRED")
	}
	if msg.Record != nil {
		return h.Service.Card(ctx, *msg.Record, msg.Options)
	}
	if h.Source == nil {
		return contract.Card{}, errors.New("contract source is required", errors.CategoryInternal).
			WithTextCode("SOURCE_REQUIRED")
	}
	record, err := h.Source.Get(ctx, msg.ID)
	if err != nil {
		return contract.Card{}, err
	}
	return h.Service.Card(ctx, record, msg.Options)
}
