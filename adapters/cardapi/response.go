package cardapi

import "github.com/goliatone/go-contract-card/contract"

// Response provides a minimal response interface for transport adapters.
type Response interface {
	SetHeader(name, value string)
	DelHeader(name string)
	WriteHeader(status int)
	Write(data []byte) (int, error)
	WriteJSON(status int, payload any) error
}

// ErrorResponse describes JSON error responses.
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// ErrorBody contains error details.
type ErrorBody struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// RecordResponse is the JSON view of a contract record.
type RecordResponse struct {
	ID                 string   `json:"id"`
	Title              string   `json:"title"`
	Parties            []string `json:"parties"`
	Status             string   `json:"status"`
	ConfidenceScore    *float64 `json:"confidenceScore,omitempty"`
	UploadDate         string   `json:"uploadDate"`
	FinancialValue     string   `json:"financialValue,omitempty"`
	ProcessingProgress *float64 `json:"processingProgress,omitempty"`
	SummaryFilename    string   `json:"summaryFilename"`
}

// NewRecordResponse builds the JSON view of record.
func NewRecordResponse(record contract.Record) RecordResponse {
	return RecordResponse{
		ID:                 record.ID,
		Title:              record.Title,
		Parties:            record.Parties,
		Status:             record.Status.String(),
		ConfidenceScore:    record.ConfidenceScore,
		UploadDate:         record.UploadDate,
		FinancialValue:     record.FinancialValue,
		ProcessingProgress: record.ProcessingProgress,
		SummaryFilename:    contract.SummaryFilename(record),
	}
}
