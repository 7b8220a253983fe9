package cardpdf

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/goliatone/go-contract-card/contract"
)

// DefaultMaxHTMLBytes guards in-memory HTML buffering before PDF conversion.
const DefaultMaxHTMLBytes int64 = 2 * 1024 * 1024

// CardHTMLRenderer renders a card to HTML.
type CardHTMLRenderer interface {
	Render(ctx context.Context, card contract.Card, w io.Writer) (int64, error)
}

// RenderRequest contains HTML input and render options for PDF engines.
type RenderRequest struct {
	HTML    []byte
	Options PDFOptions
}

// Engine renders HTML content into PDF bytes.
type Engine interface {
	Render(ctx context.Context, req RenderRequest) ([]byte, error)
}

// EngineFunc adapts a function to an Engine.
type EngineFunc func(ctx context.Context, req RenderRequest) ([]byte, error)

func (f EngineFunc) Render(ctx context.Context, req RenderRequest) ([]byte, error) {
	if f == nil {
		return nil, errors.New("pdf engine func is nil")
	}
	return f(ctx, req)
}

// Renderer prints rendered cards to PDF.
type Renderer struct {
	Enabled      bool
	HTMLRenderer CardHTMLRenderer
	Engine       Engine
	MaxHTMLBytes int64
	Options      PDFOptions
}

// Render renders card as HTML and converts it to PDF, returning bytes written.
func (r Renderer) Render(ctx context.Context, card contract.Card, w io.Writer) (int64, error) {
	if !r.Enabled {
		return 0, contract.NewError(contract.KindNotImpl, "card pdf renderer is disabled", nil)
	}
	if r.HTMLRenderer == nil {
		return 0, contract.NewError(contract.KindValidation, "card pdf renderer requires html renderer", nil)
	}
	if r.Engine == nil {
		return 0, contract.NewError(contract.KindValidation, "card pdf renderer requires engine", nil)
	}

	buffer := newLimitedBuffer(r.MaxHTMLBytes)
	if _, err := r.HTMLRenderer.Render(ctx, card, buffer); err != nil {
		return 0, err
	}

	pdf, err := r.Engine.Render(ctx, RenderRequest{
		HTML:    buffer.Bytes(),
		Options: r.Options,
	})
	if err != nil {
		return 0, err
	}

	n, err := w.Write(pdf)
	return int64(n), err
}

// WKHTMLTOPDFEngine invokes wkhtmltopdf for HTML-to-PDF conversion.
type WKHTMLTOPDFEngine struct {
	Command string
	Args    []string
	Env     []string
	Timeout time.Duration
}

// Render executes wkhtmltopdf using stdin/stdout for HTML/PDF.
func (e WKHTMLTOPDFEngine) Render(ctx context.Context, req RenderRequest) ([]byte, error) {
	cmdPath := strings.TrimSpace(e.Command)
	if cmdPath == "" {
		cmdPath = "wkhtmltopdf"
	}
	if ctx == nil {
		ctx = context.Background()
	}
	cmdCtx := ctx
	if e.Timeout > 0 {
		var cancel context.CancelFunc
		cmdCtx, cancel = context.WithTimeout(ctx, e.Timeout)
		defer cancel()
	}

	args := append([]string{}, e.Args...)
	args = append(args, wkhtmltopdfArgs(req.Options)...)
	args = append(args, "-", "-")
	cmd := exec.CommandContext(cmdCtx, cmdPath, args...)
	if len(e.Env) > 0 {
		cmd.Env = append(os.Environ(), e.Env...)
	}
	cmd.Stdin = bytes.NewReader(req.HTML)

	var stdout bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		message := strings.TrimSpace(stderr.String())
		if message == "" {
			message = "wkhtmltopdf failed"
		}
		return nil, contract.NewError(contract.KindInternal, message, err)
	}
	return stdout.Bytes(), nil
}

func wkhtmltopdfArgs(opts PDFOptions) []string {
	args := []string{}
	if opts.PageSize != "" {
		args = append(args, "--page-size", opts.PageSize)
	}
	if opts.Landscape != nil && *opts.Landscape {
		args = append(args, "--orientation", "Landscape")
	}
	if opts.MarginTop != "" {
		args = append(args, "--margin-top", opts.MarginTop)
	}
	if opts.MarginBottom != "" {
		args = append(args, "--margin-bottom", opts.MarginBottom)
	}
	if opts.MarginLeft != "" {
		args = append(args, "--margin-left", opts.MarginLeft)
	}
	if opts.MarginRight != "" {
		args = append(args, "--margin-right", opts.MarginRight)
	}
	return args
}

type limitedBuffer struct {
	buf     bytes.Buffer
	maxSize int64
}

func newLimitedBuffer(maxSize int64) *limitedBuffer {
	if maxSize <= 0 {
		maxSize = DefaultMaxHTMLBytes
	}
	return &limitedBuffer{maxSize: maxSize}
}

func (b *limitedBuffer) Write(p []byte) (int, error) {
	if b.maxSize > 0 && int64(b.buf.Len()+len(p)) > b.maxSize {
		return 0, contract.NewError(contract.KindValidation, "card pdf renderer max html bytes exceeded", nil)
	}
	return b.buf.Write(p)
}

func (b *limitedBuffer) Bytes() []byte {
	return b.buf.Bytes()
}
