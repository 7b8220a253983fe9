package query

import (
	"strings"

	"github.com/goliatone/go-errors"

	"github.com/goliatone/go-contract-card/contract"
)

// GetContract requests one contract record.
type GetContract struct {
	ID string
}

func (GetContract) Type() string { return "contract:get" }

func (msg GetContract) Validate() error {
	if strings.TrimSpace(msg.ID) == "" {
		return errors.New("contract ID is required", errors.CategoryValidation).
			WithTextCode("CONTRACT_ID_REQUIRED")
	}
	return nil
}

// RenderCard requests the summary card view model of a contract. Record wins
// over ID when both are set.
type RenderCard struct {
	ID      string
	Record  *contract.Record
	Options contract.CardOptions
}

func (RenderCard) Type() string { return "contract:card" }

func (msg RenderCard) Validate() error {
	if msg.Record == nil && strings.TrimSpace(msg.ID) == "" {
		return errors.New("contract record or ID is required", errors.CategoryValidation).
			WithTextCode("RECORD_REQUIRED")
	}
	return nil
}
