package cardpdf

import (
	"io"
	"strings"

	"github.com/go-pdf/fpdf"

	"github.com/goliatone/go-contract-card/contract"
)

// Page defaults mirror a portrait A4 sheet measured in millimetres.
const (
	DefaultOrientation = "P"
	DefaultUnit        = "mm"
	DefaultPageSize    = "A4"
	DefaultFontFamily  = "Helvetica"
	DefaultFontSize    = 16.0
)

// DocumentOptions configures FPDF documents.
type DocumentOptions struct {
	Orientation string
	Unit        string
	PageSize    string
	FontFamily  string
	FontSize    float64
	Title       string
	Author      string
	Compress    *bool
}

// FPDFDocument writes positioned text onto a single page.
type FPDFDocument struct {
	pdf       *fpdf.Fpdf
	translate func(string) string
}

var _ contract.Document = (*FPDFDocument)(nil)

// NewDocument creates a single-page document ready for text.
func NewDocument(opts DocumentOptions) *FPDFDocument {
	opts = withDocumentDefaults(opts)

	pdf := fpdf.New(opts.Orientation, opts.Unit, opts.PageSize, "")
	if opts.Compress != nil {
		pdf.SetCompression(*opts.Compress)
	}
	if opts.Title != "" {
		pdf.SetTitle(opts.Title, true)
	}
	if opts.Author != "" {
		pdf.SetAuthor(opts.Author, true)
	}
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPage()
	pdf.SetFont(opts.FontFamily, "", opts.FontSize)

	return &FPDFDocument{
		pdf:       pdf,
		translate: pdf.UnicodeTranslatorFromDescriptor(""),
	}
}

// NewDocumentFactory returns a contract.DocumentFactory producing fresh
// documents with opts.
func NewDocumentFactory(opts DocumentOptions) contract.DocumentFactory {
	return func() (contract.Document, error) {
		doc := NewDocument(opts)
		if err := doc.pdf.Error(); err != nil {
			return nil, err
		}
		return doc, nil
	}
}

// SetFontSize sets the size, in points, for subsequent text.
func (d *FPDFDocument) SetFontSize(size float64) {
	d.pdf.SetFontSize(size)
}

// Text writes text with its baseline starting at (x, y).
func (d *FPDFDocument) Text(text string, x, y float64) {
	d.pdf.Text(x, y, d.translate(text))
}

// Output serializes the document. Errors raised while writing text surface
// here.
func (d *FPDFDocument) Output(w io.Writer) error {
	if err := d.pdf.Error(); err != nil {
		return err
	}
	return d.pdf.Output(w)
}

func withDocumentDefaults(opts DocumentOptions) DocumentOptions {
	if strings.TrimSpace(opts.Orientation) == "" {
		opts.Orientation = DefaultOrientation
	}
	if strings.TrimSpace(opts.Unit) == "" {
		opts.Unit = DefaultUnit
	}
	if strings.TrimSpace(opts.PageSize) == "" {
		opts.PageSize = DefaultPageSize
	}
	if strings.TrimSpace(opts.FontFamily) == "" {
		opts.FontFamily = DefaultFontFamily
	}
	if opts.FontSize <= 0 {
		opts.FontSize = DefaultFontSize
	}
	return opts
}
