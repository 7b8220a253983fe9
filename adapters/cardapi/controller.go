package cardapi

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"unicode/utf8"

	errorslib "github.com/goliatone/go-errors"

	"github.com/goliatone/go-contract-card/contract"
)

// DefaultBasePath is the route prefix used when none is configured.
const DefaultBasePath = "/contracts"

// DefaultMaxBufferBytes bounds rendered card and snapshot responses.
const DefaultMaxBufferBytes int64 = 8 * 1024 * 1024

// ActorHeader carries the id of the user requesting a summary.
const ActorHeader = "X-Actor-Id"

// CardRenderer renders a card into w.
type CardRenderer interface {
	Render(ctx context.Context, card contract.Card, w io.Writer) (int64, error)
}

// Config configures the shared contract API controller.
type Config struct {
	Service        contract.Service
	Source         contract.Source
	Cards          CardRenderer
	Snapshots      CardRenderer
	CardOptions    contract.CardOptions
	BasePath       string
	Logger         contract.Logger
	RecordDecoder  RecordDecoder
	MaxBufferBytes int64
}

// Controller exposes contract card and summary handlers for multiple transports.
type Controller struct {
	service        contract.Service
	source         contract.Source
	cards          CardRenderer
	snapshots      CardRenderer
	cardOptions    contract.CardOptions
	basePath       string
	logger         contract.Logger
	recordDecoder  RecordDecoder
	maxBufferBytes int64
}

// NewController creates a shared contract API controller.
func NewController(cfg Config) *Controller {
	basePath := strings.TrimRight(cfg.BasePath, "/")
	if basePath == "" {
		basePath = DefaultBasePath
	}
	logger := cfg.Logger
	if logger == nil {
		logger = contract.NopLogger{}
	}
	decoder := cfg.RecordDecoder
	if decoder == nil {
		decoder = JSONRecordDecoder{}
	}
	maxBuffer := cfg.MaxBufferBytes
	if maxBuffer <= 0 {
		maxBuffer = DefaultMaxBufferBytes
	}
	return &Controller{
		service:        cfg.Service,
		source:         cfg.Source,
		cards:          cfg.Cards,
		snapshots:      cfg.Snapshots,
		cardOptions:    cfg.CardOptions,
		basePath:       basePath,
		logger:         logger,
		recordDecoder:  decoder,
		maxBufferBytes: maxBuffer,
	}
}

// BasePath returns the configured base path.
func (c *Controller) BasePath() string {
	if c == nil {
		return ""
	}
	return c.basePath
}

// Serve routes contract endpoints using the shared controller.
func (c *Controller) Serve(req Request, res Response) {
	if res == nil {
		return
	}
	if c == nil {
		WriteError(res, contract.NewError(contract.KindInternal, "handler is nil", nil))
		return
	}
	if req == nil {
		WriteError(res, contract.NewError(contract.KindInternal, "request is nil", nil))
		return
	}
	if !strings.HasPrefix(req.Path(), c.basePath) {
		writeNotFound(res)
		return
	}

	pathSuffix := strings.Trim(strings.TrimPrefix(req.Path(), c.basePath), "/")
	parts := []string{}
	if pathSuffix != "" {
		parts = strings.Split(pathSuffix, "/")
	}

	switch req.Method() {
	case http.MethodPost:
		if len(parts) != 1 || parts[0] != "summary" {
			writeNotFound(res)
			return
		}
		c.handleSummaryUpload(req, res)
	case http.MethodGet:
		switch len(parts) {
		case 1:
			c.handleRecord(req, res, parts[0])
		case 2:
			switch parts[1] {
			case "card":
				c.handleCard(req, res, parts[0])
			case "summary":
				c.handleSummary(req, res, parts[0])
			case "snapshot":
				c.handleSnapshot(req, res, parts[0])
			default:
				writeNotFound(res)
			}
		default:
			writeNotFound(res)
		}
	default:
		res.SetHeader("Allow", "GET,POST")
		res.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (c *Controller) handleRecord(req Request, res Response, id string) {
	record, err := c.lookup(req.Context(), id)
	if err != nil {
		WriteError(res, err)
		return
	}
	writeJSON(res, http.StatusOK, NewRecordResponse(record))
}

func (c *Controller) handleCard(req Request, res Response, id string) {
	if c.cards == nil {
		WriteError(res, contract.NewError(contract.KindNotImpl, "card renderer not configured", nil))
		return
	}
	card, err := c.buildCard(req, id)
	if err != nil {
		WriteError(res, err)
		return
	}

	buffer := newLimitedBuffer(c.maxBufferBytes)
	if _, err := c.cards.Render(req.Context(), card, buffer); err != nil {
		WriteError(res, err)
		return
	}
	res.SetHeader("Content-Type", "text/html; charset=utf-8")
	res.WriteHeader(http.StatusOK)
	if _, err := res.Write(buffer.Bytes()); err != nil {
		c.logger.Errorf("card %s write failed: %v", id, err)
	}
}

func (c *Controller) handleSnapshot(req Request, res Response, id string) {
	if c.snapshots == nil {
		WriteError(res, contract.NewError(contract.KindNotImpl, "card snapshot renderer not configured", nil))
		return
	}
	card, err := c.buildCard(req, id)
	if err != nil {
		WriteError(res, err)
		return
	}

	buffer := newLimitedBuffer(c.maxBufferBytes)
	if _, err := c.snapshots.Render(req.Context(), card, buffer); err != nil {
		WriteError(res, err)
		return
	}
	filename := sanitizeFilename(card.Title+"-card.pdf", "contract-card.pdf")
	res.SetHeader("Content-Type", contract.ContentTypePDF)
	res.SetHeader("Content-Disposition", contentDisposition("inline", filename))
	res.SetHeader("Content-Length", strconv.Itoa(buffer.Len()))
	res.WriteHeader(http.StatusOK)
	if _, err := res.Write(buffer.Bytes()); err != nil {
		c.logger.Errorf("card snapshot %s write failed: %v", id, err)
	}
}

func (c *Controller) handleSummary(req Request, res Response, id string) {
	record, err := c.lookup(req.Context(), id)
	if err != nil {
		WriteError(res, err)
		return
	}
	c.downloadSummary(req, res, record)
}

func (c *Controller) handleSummaryUpload(req Request, res Response) {
	if c.recordDecoder == nil {
		WriteError(res, contract.NewError(contract.KindInternal, "record decoder not configured", nil))
		return
	}
	record, err := c.recordDecoder.Decode(req)
	if err != nil {
		WriteError(res, err)
		return
	}
	c.downloadSummary(req, res, record)
}

func (c *Controller) downloadSummary(req Request, res Response, record contract.Record) {
	if c.service == nil {
		WriteError(res, contract.NewError(contract.KindNotImpl, "contract service not configured", nil))
		return
	}
	ctx := req.Context()
	if actor := strings.TrimSpace(req.Header(ActorHeader)); actor != "" {
		ctx = contract.WithActor(ctx, actor)
	}

	downloader := &responseDownloader{res: res}
	interaction := contract.Interaction{OnDownload: contract.DownloadAction(c.service, record, downloader)}
	if err := interaction.Handle(ctx, &contract.ClickEvent{Target: contract.TargetDownload}); err != nil {
		if downloader.written {
			c.logger.Errorf("summary for contract %q failed after response write: %v", record.ID, err)
			return
		}
		WriteError(res, err)
	}
}

func (c *Controller) buildCard(req Request, id string) (contract.Card, error) {
	if c.service == nil {
		return contract.Card{}, contract.NewError(contract.KindNotImpl, "contract service not configured", nil)
	}
	record, err := c.lookup(req.Context(), id)
	if err != nil {
		return contract.Card{}, err
	}
	return c.service.Card(req.Context(), record, cardOptionsFromRequest(req, c.cardOptions))
}

func (c *Controller) lookup(ctx context.Context, id string) (contract.Record, error) {
	if c.source == nil {
		return contract.Record{}, contract.NewError(contract.KindNotImpl, "contract source not configured", nil)
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return contract.Record{}, contract.NewError(contract.KindValidation, "contract id is required", nil)
	}
	return c.source.Get(ctx, id)
}

// responseDownloader is the HTTP download mechanism: it sends the generated
// document as an attachment.
type responseDownloader struct {
	res     Response
	written bool
}

func (d *responseDownloader) Deliver(ctx context.Context, file contract.DownloadFile) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	setDownloadHeaders(d.res, file.ID, sanitizeFilename(file.Filename, "contract-summary.pdf"), file.ContentType)
	d.res.SetHeader("Content-Length", strconv.Itoa(len(file.Data)))
	d.res.WriteHeader(http.StatusOK)
	d.written = true
	_, err := d.res.Write(file.Data)
	return err
}

func writeNotFound(res Response) {
	res.SetHeader("Content-Type", "text/plain; charset=utf-8")
	res.SetHeader("X-Content-Type-Options", "nosniff")
	res.WriteHeader(http.StatusNotFound)
	_, _ = res.Write([]byte("404 page not found\n"))
}

// WriteError writes err as a JSON error payload with a matching status.
func WriteError(res Response, err error) {
	if err == nil {
		res.WriteHeader(http.StatusNoContent)
		return
	}
	ge := contract.AsGoError(err)
	writeJSON(res, statusForError(ge), ErrorResponse{
		Error: ErrorBody{
			Message: ge.Message,
			Code:    ge.TextCode,
		},
	})
}

func writeJSON(res Response, status int, payload any) {
	_ = res.WriteJSON(status, payload)
}

// StatusCode returns the HTTP status for err.
func StatusCode(err error) int {
	return statusForError(contract.AsGoError(err))
}

func statusForError(err *errorslib.Error) int {
	if err == nil {
		return http.StatusInternalServerError
	}
	if err.TextCode == "not_implemented" {
		return http.StatusNotImplemented
	}
	switch err.Category {
	case errorslib.CategoryValidation:
		return http.StatusBadRequest
	case errorslib.CategoryNotFound:
		return http.StatusNotFound
	case errorslib.CategoryOperation:
		if err.TextCode == "canceled" {
			return http.StatusConflict
		}
		return http.StatusRequestTimeout
	default:
		return http.StatusInternalServerError
	}
}

func sanitizeFilename(filename, fallback string) string {
	name := strings.TrimSpace(filename)
	name = strings.NewReplacer("\"", "", "\r", "", "\n", "", "/", "_", "\\", "_").Replace(name)
	if name == "" {
		return fallback
	}
	return name
}

func setDownloadHeaders(res Response, summaryID, filename, contentType string) {
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	res.SetHeader("Content-Type", contentType)
	res.SetHeader("Content-Disposition", contentDisposition("attachment", filename))
	if summaryID != "" {
		res.SetHeader("X-Summary-Id", summaryID)
	}
}

// contentDisposition quotes filename for the header. Non-ASCII names get an
// ASCII fallback plus an RFC 5987 filename* value.
func contentDisposition(disposition, filename string) string {
	ascii := true
	for i := 0; i < len(filename); i++ {
		if filename[i] >= utf8.RuneSelf || filename[i] < 0x20 {
			ascii = false
			break
		}
	}
	if ascii {
		return fmt.Sprintf("%s; filename=\"%s\"", disposition, filename)
	}

	fallback := strings.Map(func(r rune) rune {
		if r >= utf8.RuneSelf || r < 0x20 {
			return '_'
		}
		return r
	}, filename)
	return fmt.Sprintf("%s; filename=\"%s\"; filename*=UTF-8''%s", disposition, fallback, encodeRFC5987(filename))
}

func encodeRFC5987(value string) string {
	const hex = "0123456789ABCDEF"
	var b strings.Builder
	for i := 0; i < len(value); i++ {
		c := value[i]
		if isAttrChar(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(hex[c>>4])
		b.WriteByte(hex[c&0x0f])
	}
	return b.String()
}

func isAttrChar(c byte) bool {
	switch {
	case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		return true
	}
	return strings.IndexByte("!#$&+-.^_`|~", c) >= 0
}

type limitedBuffer struct {
	buf     bytes.Buffer
	maxSize int64
}

func newLimitedBuffer(maxSize int64) *limitedBuffer {
	if maxSize <= 0 {
		maxSize = DefaultMaxBufferBytes
	}
	return &limitedBuffer{maxSize: maxSize}
}

func (b *limitedBuffer) Write(p []byte) (int, error) {
	if int64(b.buf.Len()+len(p)) > b.maxSize {
		return 0, contract.NewError(contract.KindInternal, "buffer limit exceeded", nil)
	}
	return b.buf.Write(p)
}

func (b *limitedBuffer) Bytes() []byte {
	return b.buf.Bytes()
}

func (b *limitedBuffer) Len() int {
	return b.buf.Len()
}
