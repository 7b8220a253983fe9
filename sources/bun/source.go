package cardbun

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/uptrace/bun"

	"github.com/goliatone/go-contract-card/contract"
)

// Source reads contract records from a Bun-backed database. It never writes.
type Source struct {
	DB *bun.DB
}

var _ contract.Source = (*Source)(nil)

// NewSource creates a Bun-backed contract source.
func NewSource(db *bun.DB) *Source {
	return &Source{DB: db}
}

// Filter narrows List results.
type Filter struct {
	Status contract.Status
	Limit  int
}

// Get returns the contract stored under id.
func (s *Source) Get(ctx context.Context, id string) (contract.Record, error) {
	if s == nil || s.DB == nil {
		return contract.Record{}, contract.NewError(contract.KindNotImpl, "contract database not configured", nil)
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return contract.Record{}, contract.NewError(contract.KindValidation, "contract id is required", nil)
	}

	model := new(contractModel)
	err := s.DB.NewSelect().Model(model).Where("id = ?", id).Limit(1).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return contract.Record{}, contract.NewError(contract.KindNotFound, fmt.Sprintf("contract %q not found", id), nil)
		}
		return contract.Record{}, contract.NewError(contract.KindInternal, "contract lookup failed", err)
	}
	return model.toRecord()
}

// List returns contracts matching filter, newest upload first.
func (s *Source) List(ctx context.Context, filter Filter) ([]contract.Record, error) {
	if s == nil || s.DB == nil {
		return nil, contract.NewError(contract.KindNotImpl, "contract database not configured", nil)
	}
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, contract.NewError(contract.KindValidation, fmt.Sprintf("unknown contract status %q", string(filter.Status)), nil)
	}

	models := make([]contractModel, 0)
	query := s.DB.NewSelect().Model(&models)
	if filter.Status != "" {
		query = query.Where("status = ?", string(filter.Status))
	}
	query = query.Order("upload_date DESC", "id ASC")
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if err := query.Scan(ctx); err != nil {
		return nil, contract.NewError(contract.KindInternal, "contract list failed", err)
	}

	records := make([]contract.Record, 0, len(models))
	for _, model := range models {
		record, err := model.toRecord()
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, nil
}

type contractModel struct {
	bun.BaseModel `bun:"table:contracts,alias:contracts"`

	ID                 string   `bun:",pk"`
	Title              string   `bun:",notnull"`
	Parties            []byte   `bun:"parties"`
	Status             string   `bun:",notnull"`
	ConfidenceScore    *float64 `bun:"confidence_score"`
	UploadDate         string   `bun:"upload_date,notnull"`
	FinancialValue     string   `bun:"financial_value"`
	ProcessingProgress *float64 `bun:"processing_progress"`
}

func (m contractModel) toRecord() (contract.Record, error) {
	status, err := contract.ParseStatus(m.Status)
	if err != nil {
		return contract.Record{}, err
	}
	var parties []string
	if len(m.Parties) > 0 {
		if err := json.Unmarshal(m.Parties, &parties); err != nil {
			return contract.Record{}, contract.NewError(contract.KindInternal, fmt.Sprintf("contract %q parties are not a JSON list", m.ID), err)
		}
	}
	return contract.Record{
		ID:                 m.ID,
		Title:              m.Title,
		Parties:            parties,
		Status:             status,
		ConfidenceScore:    m.ConfidenceScore,
		UploadDate:         m.UploadDate,
		FinancialValue:     m.FinancialValue,
		ProcessingProgress: m.ProcessingProgress,
	}, nil
}

func modelFromRecord(record contract.Record) (contractModel, error) {
	parties, err := json.Marshal(record.Parties)
	if err != nil {
		return contractModel{}, err
	}
	return contractModel{
		ID:                 record.ID,
		Title:              record.Title,
		Parties:            parties,
		Status:             string(record.Status),
		ConfidenceScore:    record.ConfidenceScore,
		UploadDate:         record.UploadDate,
		FinancialValue:     record.FinancialValue,
		ProcessingProgress: record.ProcessingProgress,
	}, nil
}
