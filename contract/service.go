package contract

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
)

// ContentTypePDF is the content type of summary documents.
const ContentTypePDF = "application/pdf"

// Service renders cards and summary documents for contract records.
type Service interface {
	Card(ctx context.Context, record Record, opts CardOptions) (Card, error)
	ExportSummary(ctx context.Context, record Record, w io.Writer) (SummaryResult, error)
	DownloadSummary(ctx context.Context, record Record, downloader Downloader) (SummaryResult, error)
}

// SummaryResult describes one generated summary document.
type SummaryResult struct {
	ID          string
	RecordID    string
	Filename    string
	ContentType string
	Lines       []SummaryLine
	Bytes       int64
	GeneratedAt time.Time
}

// ServiceConfig supplies dependencies for Service.
type ServiceConfig struct {
	Documents       DocumentFactory
	Format          FormatOptions
	FilenamePattern string
	Logger          Logger
	Emitter         ChangeEmitter
	Now             func() time.Time
	IDGenerator     func() string
}

type service struct {
	documents       DocumentFactory
	format          FormatOptions
	filenamePattern string
	logger          Logger
	emitter         ChangeEmitter
	now             func() time.Time
	idGenerator     func() string
}

// NewService creates a Service with the provided configuration.
func NewService(cfg ServiceConfig) Service {
	logger := cfg.Logger
	if logger == nil {
		logger = NopLogger{}
	}
	nowFn := cfg.Now
	if nowFn == nil {
		nowFn = time.Now
	}
	idGen := cfg.IDGenerator
	if idGen == nil {
		idGen = uuid.NewString
	}
	pattern := cfg.FilenamePattern
	if pattern == "" {
		pattern = DefaultSummaryFilename
	}
	return &service{
		documents:       cfg.Documents,
		format:          cfg.Format,
		filenamePattern: pattern,
		logger:          logger,
		emitter:         cfg.Emitter,
		now:             nowFn,
		idGenerator:     idGen,
	}
}

func (s *service) Card(ctx context.Context, record Record, opts CardOptions) (Card, error) {
	if err := ctx.Err(); err != nil {
		return Card{}, err
	}
	if opts.Format == (FormatOptions{}) {
		opts.Format = s.format
	}
	card, err := BuildCard(record, opts)
	if err != nil {
		s.logger.Debugf("card build failed for contract %q: %v", record.ID, err)
		return Card{}, err
	}
	return card, nil
}

func (s *service) ExportSummary(ctx context.Context, record Record, w io.Writer) (SummaryResult, error) {
	if w == nil {
		return SummaryResult{}, NewError(KindValidation, "output writer is required", nil)
	}
	if err := ctx.Err(); err != nil {
		return SummaryResult{}, err
	}
	if s.documents == nil {
		return SummaryResult{}, NewError(KindNotImpl, "summary document factory is not configured", nil)
	}

	lines, err := BuildSummary(record, s.format)
	if err != nil {
		return SummaryResult{}, err
	}
	filename, err := renderFilename(s.filenamePattern, record)
	if err != nil {
		return SummaryResult{}, NewError(KindValidation, "invalid summary filename", err)
	}

	doc, err := s.documents()
	if err != nil {
		return SummaryResult{}, NewError(KindInternal, "summary document init failed", err)
	}
	if err := WriteSummary(doc, lines); err != nil {
		return SummaryResult{}, err
	}

	cw := &countingWriter{w: w}
	if err := doc.Output(cw); err != nil {
		s.logger.Errorf("summary document write failed for contract %q: %v", record.ID, err)
		s.emit(ctx, EventSummaryFailed, SummaryResult{RecordID: record.ID, Filename: filename}, map[string]any{
			"error_kind": KindInternal,
		})
		return SummaryResult{}, NewError(KindInternal, "summary document write failed", err)
	}

	result := SummaryResult{
		ID:          s.idGenerator(),
		RecordID:    record.ID,
		Filename:    filename,
		ContentType: ContentTypePDF,
		Lines:       lines,
		Bytes:       cw.count,
		GeneratedAt: s.now(),
	}
	s.logger.Debugf("summary %s generated for contract %q (%d lines, %d bytes)", result.ID, record.ID, len(lines), result.Bytes)
	s.emit(ctx, EventSummaryExported, result, map[string]any{
		"bytes": result.Bytes,
		"lines": len(lines),
	})
	return result, nil
}

func (s *service) DownloadSummary(ctx context.Context, record Record, downloader Downloader) (SummaryResult, error) {
	if downloader == nil {
		return SummaryResult{}, NewError(KindValidation, "downloader is required", nil)
	}
	var buf bytes.Buffer
	result, err := s.ExportSummary(ctx, record, &buf)
	if err != nil {
		return SummaryResult{}, err
	}
	if err := downloader.Deliver(ctx, DownloadFile{
		ID:          result.ID,
		Filename:    result.Filename,
		ContentType: result.ContentType,
		Data:        buf.Bytes(),
	}); err != nil {
		return SummaryResult{}, fmt.Errorf("deliver %s: %w", result.Filename, err)
	}
	s.logger.Infof("summary %s delivered as %s", result.ID, result.Filename)
	s.emit(ctx, EventSummaryDelivered, result, nil)
	return result, nil
}

func (s *service) emit(ctx context.Context, name string, result SummaryResult, meta map[string]any) {
	if s.emitter == nil {
		return
	}
	if err := s.emitter.Emit(ctx, ChangeEvent{
		Name:      name,
		RecordID:  result.RecordID,
		SummaryID: result.ID,
		Filename:  result.Filename,
		ActorID:   ActorFromContext(ctx),
		Timestamp: s.now(),
		Metadata:  meta,
	}); err != nil {
		s.logger.Errorf("emit %s for contract %q: %v", name, result.RecordID, err)
	}
}

// DownloadAction binds a card's download button to svc for record.
func DownloadAction(svc Service, record Record, downloader Downloader) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		if svc == nil {
			return NewError(KindInternal, "service is nil", nil)
		}
		_, err := svc.DownloadSummary(ctx, record, downloader)
		return err
	}
}

type countingWriter struct {
	w     io.Writer
	count int64
}

func (cw *countingWriter) Write(p []byte) (int, error) {
	n, err := cw.w.Write(p)
	cw.count += int64(n)
	return n, err
}
