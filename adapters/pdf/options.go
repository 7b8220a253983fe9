package cardpdf

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/chromedp/cdproto/page"

	"github.com/goliatone/go-contract-card/contract"
)

// PDFOptions configures card snapshots for headless engines.
type PDFOptions struct {
	PageSize        string
	Landscape       *bool
	PrintBackground *bool
	Scale           float64
	MarginTop       string
	MarginBottom    string
	MarginLeft      string
	MarginRight     string
	// AllowExternalAssets lets the page fetch remote stylesheets and
	// images. Snapshots render offline unless set.
	AllowExternalAssets bool
}

// paperSizesMM holds portrait sheet sizes in millimetres.
var paperSizesMM = map[string][2]float64{
	"A4":     {210, 297},
	"A5":     {148, 210},
	"A6":     {105, 148},
	"LETTER": {215.9, 279.4},
}

// unitsPerInch converts CSS-style lengths to inches.
var unitsPerInch = map[string]float64{
	"in": 1,
	"cm": 2.54,
	"mm": 25.4,
	"pt": 72,
	"px": 96,
}

const (
	minSnapshotScale = 0.1
	maxSnapshotScale = 2.0
)

func buildPrintToPDFParams(opts PDFOptions) (*page.PrintToPDFParams, error) {
	scale := opts.Scale
	if scale == 0 {
		scale = 1
	}
	if scale < minSnapshotScale || scale > maxSnapshotScale {
		return nil, contract.NewError(contract.KindValidation,
			fmt.Sprintf("pdf scale must be between %.1f and %.1f", minSnapshotScale, maxSnapshotScale), nil)
	}

	background := opts.PrintBackground == nil || *opts.PrintBackground
	params := page.PrintToPDF().WithScale(scale).WithPrintBackground(background)
	if opts.Landscape != nil {
		params = params.WithLandscape(*opts.Landscape)
	}

	if opts.PageSize == "" {
		params = params.WithPreferCSSPageSize(true)
	} else {
		sheet, ok := paperSizesMM[strings.ToUpper(strings.TrimSpace(opts.PageSize))]
		if !ok {
			return nil, contract.NewError(contract.KindValidation, fmt.Sprintf("unsupported pdf page size: %s", opts.PageSize), nil)
		}
		params = params.WithPaperWidth(sheet[0] / unitsPerInch["mm"]).WithPaperHeight(sheet[1] / unitsPerInch["mm"])
	}

	margins := []struct {
		raw   string
		apply func(*page.PrintToPDFParams, float64) *page.PrintToPDFParams
	}{
		{opts.MarginTop, (*page.PrintToPDFParams).WithMarginTop},
		{opts.MarginBottom, (*page.PrintToPDFParams).WithMarginBottom},
		{opts.MarginLeft, (*page.PrintToPDFParams).WithMarginLeft},
		{opts.MarginRight, (*page.PrintToPDFParams).WithMarginRight},
	}
	for _, margin := range margins {
		if margin.raw == "" {
			continue
		}
		inches, err := parseLengthInches(margin.raw)
		if err != nil {
			return nil, err
		}
		params = margin.apply(params, inches)
	}
	return params, nil
}

// parseLengthInches reads "12mm", "0.5in" or a bare number of inches.
func parseLengthInches(value string) (float64, error) {
	raw := strings.TrimSpace(value)
	split := strings.IndexFunc(raw, func(r rune) bool {
		return (r < '0' || r > '9') && r != '.'
	})
	number, unit := raw, "in"
	if split >= 0 {
		number = raw[:split]
		unit = strings.ToLower(strings.TrimSpace(raw[split:]))
	}

	amount, err := strconv.ParseFloat(number, 64)
	if err != nil || amount < 0 {
		return 0, contract.NewError(contract.KindValidation, fmt.Sprintf("invalid pdf length: %s", value), err)
	}
	perInch, ok := unitsPerInch[unit]
	if !ok {
		return 0, contract.NewError(contract.KindValidation, fmt.Sprintf("unsupported pdf length unit: %s", unit), nil)
	}
	return amount / perInch, nil
}
