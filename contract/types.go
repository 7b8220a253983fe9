package contract

import (
	"context"
	"fmt"
	"io"
	"strings"
)

// Status is the processing state of a contract.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusError      Status = "error"
)

// Statuses lists every known status in display order.
func Statuses() []Status {
	return []Status{StatusPending, StatusProcessing, StatusCompleted, StatusError}
}

// ParseStatus returns the status for raw. Only the four exact lowercase
// values are accepted.
func ParseStatus(raw string) (Status, error) {
	status := Status(raw)
	if !status.Valid() {
		return "", NewError(KindValidation, fmt.Sprintf("unknown contract status %q", raw), nil)
	}
	return status, nil
}

// Valid reports whether s is one of the four known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusCompleted, StatusError:
		return true
	default:
		return false
	}
}

func (s Status) String() string { return string(s) }

// MarshalText implements encoding.TextMarshaler.
func (s Status) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, NewError(KindValidation, fmt.Sprintf("unknown contract status %q", string(s)), nil)
	}
	return []byte(s), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. Unknown values fail.
func (s *Status) UnmarshalText(text []byte) error {
	parsed, err := ParseStatus(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Record is the read-only summary of one contract.
type Record struct {
	ID                 string   `json:"id" yaml:"id"`
	Title              string   `json:"title" yaml:"title"`
	Parties            []string `json:"parties" yaml:"parties"`
	Status             Status   `json:"status" yaml:"status"`
	ConfidenceScore    *float64 `json:"confidenceScore,omitempty" yaml:"confidenceScore,omitempty"`
	UploadDate         string   `json:"uploadDate" yaml:"uploadDate"`
	FinancialValue     string   `json:"financialValue,omitempty" yaml:"financialValue,omitempty"`
	ProcessingProgress *float64 `json:"processingProgress,omitempty" yaml:"processingProgress,omitempty"`
}

// Validate checks the closed status enumeration. Optional fields are never
// errors.
func (r Record) Validate() error {
	if !r.Status.Valid() {
		return NewError(KindValidation, fmt.Sprintf("unknown contract status %q", string(r.Status)), nil)
	}
	return nil
}

// PartiesLine joins parties in display order.
func (r Record) PartiesLine() string {
	return strings.Join(r.Parties, ", ")
}

// Clone returns a copy that shares no slices or pointers with r.
func (r Record) Clone() Record {
	out := r
	if r.Parties != nil {
		out.Parties = append([]string(nil), r.Parties...)
	}
	if r.ConfidenceScore != nil {
		score := *r.ConfidenceScore
		out.ConfidenceScore = &score
	}
	if r.ProcessingProgress != nil {
		progress := *r.ProcessingProgress
		out.ProcessingProgress = &progress
	}
	return out
}

// Float returns a pointer to v, for optional record fields.
func Float(v float64) *float64 {
	return &v
}

// FormatOptions configures locale/timezone formatting.
type FormatOptions struct {
	Locale   string
	Timezone string
}

// Document writes positioned text into a single page and serializes it.
// Coordinates are in document units measured from the top-left corner.
type Document interface {
	SetFontSize(size float64)
	Text(text string, x, y float64)
	Output(w io.Writer) error
}

// DocumentFactory creates a fresh document per export.
type DocumentFactory func() (Document, error)

// Downloader hands a generated file to the user's download mechanism.
type Downloader interface {
	Deliver(ctx context.Context, file DownloadFile) error
}

// DownloaderFunc adapts a function to a Downloader.
type DownloaderFunc func(ctx context.Context, file DownloadFile) error

func (f DownloaderFunc) Deliver(ctx context.Context, file DownloadFile) error {
	if f == nil {
		return NewError(KindInternal, "downloader func is nil", nil)
	}
	return f(ctx, file)
}

// DownloadFile is a generated artifact ready for delivery.
type DownloadFile struct {
	ID          string
	Filename    string
	ContentType string
	Data        []byte
}

// Source looks up records by id.
type Source interface {
	Get(ctx context.Context, id string) (Record, error)
}

// SourceFunc adapts a function to a Source.
type SourceFunc func(ctx context.Context, id string) (Record, error)

func (f SourceFunc) Get(ctx context.Context, id string) (Record, error) {
	if f == nil {
		return Record{}, NewError(KindNotFound, fmt.Sprintf("contract %q not found", id), nil)
	}
	return f(ctx, id)
}

// Logger provides logging hooks.
type Logger interface {
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Errorf(format string, args ...any)
}

// NopLogger is a no-op logger.
type NopLogger struct{}

func (NopLogger) Debugf(string, ...any) {}
func (NopLogger) Infof(string, ...any)  {}
func (NopLogger) Errorf(string, ...any) {}
