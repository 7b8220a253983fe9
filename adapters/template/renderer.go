package cardtemplate

import (
	"context"
	"embed"
	"html/template"
	"io"
	"net/url"
	"strings"

	"github.com/goliatone/go-contract-card/contract"
)

// DefaultTemplateName is the template executed when none is configured.
const DefaultTemplateName = "card"

// DefaultBasePath is the route prefix card links point at when none is
// configured. It matches the HTTP controller's default.
const DefaultBasePath = "/contracts"

//go:embed templates/*.html
var templateFS embed.FS

// TemplateExecutor executes a named template with data.
type TemplateExecutor interface {
	ExecuteTemplate(w io.Writer, name string, data any) error
}

// Renderer renders cards to HTML.
type Renderer struct {
	Templates    TemplateExecutor
	TemplateName string
	StatusBadge  StatusBadge
	ProgressBar  ProgressBar
	Icons        map[string]template.HTML
	// BasePath prefixes the summary download and card links.
	BasePath string
}

// CardData is the context passed to card templates.
type CardData struct {
	Card        contract.Card
	Style       template.CSS
	StatusBadge template.HTML
	ProgressBar template.HTML
	Icons       map[string]template.HTML
	DownloadURL string
	CardURL     string
}

// IndexData is the context passed to the index template.
type IndexData struct {
	Title string
	Cards []CardData
}

// IndexTemplateName lays out several cards on one page.
const IndexTemplateName = "index"

// PageTemplateName wraps the card in a standalone HTML document, used when
// printing a card snapshot.
const PageTemplateName = "page"

// NewRenderer returns a Renderer backed by the embedded html/template card
// and page templates.
func NewRenderer() (Renderer, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/card.html", "templates/page.html")
	if err != nil {
		return Renderer{}, contract.NewError(contract.KindInternal, "parse card template", err)
	}
	return Renderer{Templates: tmpl}, nil
}

// Render writes the HTML for card to w and returns the bytes written.
func (r Renderer) Render(ctx context.Context, card contract.Card, w io.Writer) (int64, error) {
	if r.Templates == nil {
		return 0, contract.NewError(contract.KindValidation, "card renderer requires templates", nil)
	}
	if ctx != nil {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
	}

	name := r.TemplateName
	if name == "" {
		name = DefaultTemplateName
	}

	cw := &countingWriter{w: w}
	if err := r.Templates.ExecuteTemplate(cw, name, r.Data(card)); err != nil {
		return cw.count, contract.NewError(contract.KindInternal, "card template failed", err)
	}
	return cw.count, nil
}

// Data builds the template context for card, running the collaborators.
func (r Renderer) Data(card contract.Card) CardData {
	badge := r.StatusBadge
	if badge == nil {
		badge = DefaultStatusBadge
	}
	bar := r.ProgressBar
	if bar == nil {
		bar = DefaultProgressBar
	}
	icons := DefaultIcons()
	for name, icon := range r.Icons {
		icons[name] = icon
	}

	data := CardData{
		Card:        card,
		Style:       template.CSS(card.StyleAttr()),
		StatusBadge: badge(card.Status),
		Icons:       icons,
		DownloadURL: r.link(card.ID, "summary"),
		CardURL:     r.link(card.ID, "card"),
	}
	if card.Progress != nil {
		data.ProgressBar = bar(card.Progress.Value, card.Progress.ShowPercentage)
	}
	return data
}

// RenderIndex writes every card into the index template.
func (r Renderer) RenderIndex(ctx context.Context, title string, cards []contract.Card, w io.Writer) (int64, error) {
	if r.Templates == nil {
		return 0, contract.NewError(contract.KindValidation, "card renderer requires templates", nil)
	}
	if ctx != nil {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
	}

	data := IndexData{Title: title, Cards: make([]CardData, 0, len(cards))}
	for _, card := range cards {
		data.Cards = append(data.Cards, r.Data(card))
	}

	cw := &countingWriter{w: w}
	if err := r.Templates.ExecuteTemplate(cw, IndexTemplateName, data); err != nil {
		return cw.count, contract.NewError(contract.KindInternal, "index template failed", err)
	}
	return cw.count, nil
}

// link builds "{base}/{id}/{action}" with the id path-escaped.
func (r Renderer) link(id, action string) string {
	base := strings.TrimRight(r.BasePath, "/")
	if base == "" {
		base = DefaultBasePath
	}
	return base + "/" + url.PathEscape(id) + "/" + action
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
