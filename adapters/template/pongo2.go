package cardtemplate

import (
	"fmt"
	"html/template"
	"io"
	"strings"
	"sync"

	"github.com/flosch/pongo2/v6"

	"github.com/goliatone/go-contract-card/contract"
)

// Pongo2Executor runs Django-style templates registered by name.
type Pongo2Executor struct {
	mu        sync.RWMutex
	templates map[string]*pongo2.Template
}

var _ TemplateExecutor = (*Pongo2Executor)(nil)

// NewPongo2Executor creates an executor with the embedded pongo2 card
// registered as DefaultTemplateName.
func NewPongo2Executor() (*Pongo2Executor, error) {
	e := &Pongo2Executor{templates: make(map[string]*pongo2.Template)}
	source, err := templateFS.ReadFile("templates/card.pongo.html")
	if err != nil {
		return nil, err
	}
	if err := e.Register(DefaultTemplateName, string(source)); err != nil {
		return nil, err
	}
	return e, nil
}

// Register compiles source and stores it under name.
func (e *Pongo2Executor) Register(name, source string) error {
	tpl, err := pongo2.FromString(source)
	if err != nil {
		return contract.NewError(contract.KindValidation, fmt.Sprintf("invalid pongo2 template %q", name), err)
	}
	e.mu.Lock()
	e.templates[name] = tpl
	e.mu.Unlock()
	return nil
}

// ExecuteTemplate renders the named template. CardData is flattened into a
// pongo2 context (icon names use underscores); maps are passed through.
func (e *Pongo2Executor) ExecuteTemplate(w io.Writer, name string, data any) error {
	e.mu.RLock()
	tpl, ok := e.templates[name]
	e.mu.RUnlock()
	if !ok {
		return contract.NewError(contract.KindNotFound, fmt.Sprintf("pongo2 template %q not registered", name), nil)
	}
	return tpl.ExecuteWriter(pongo2Context(data), w)
}

func pongo2Context(data any) pongo2.Context {
	switch value := data.(type) {
	case CardData:
		return cardContext(value)
	case *CardData:
		if value == nil {
			return pongo2.Context{}
		}
		return cardContext(*value)
	case map[string]any:
		return pongo2.Context(value)
	case pongo2.Context:
		return value
	default:
		return pongo2.Context{"data": data}
	}
}

func cardContext(data CardData) pongo2.Context {
	card := data.Card
	ctx := pongo2.Context{
		"id":              card.ID,
		"title":           card.Title,
		"status":          string(card.Status),
		"class_name":      card.ClassName,
		"style":           string(data.Style),
		"clickable":       card.Clickable,
		"parties":         card.Parties,
		"upload_date":     card.UploadDate,
		"financial_value": card.FinancialValue,
		"status_badge":    safe(data.StatusBadge),
		"progress_bar":    safe(data.ProgressBar),
		"icons":           safeIcons(data.Icons),
		"has_progress":    card.Progress != nil,
		"has_confidence":  card.Confidence != nil,
		"download_url":    data.DownloadURL,
		"card_url":        data.CardURL,
	}
	if card.Confidence != nil {
		ctx["confidence_label"] = card.Confidence.Label
		ctx["confidence_class"] = card.Confidence.Class
	}
	return ctx
}

func safe(value template.HTML) *pongo2.Value {
	return pongo2.AsSafeValue(string(value))
}

func safeIcons(icons map[string]template.HTML) map[string]*pongo2.Value {
	out := make(map[string]*pongo2.Value, len(icons))
	for name, icon := range icons {
		out[strings.ReplaceAll(name, "-", "_")] = safe(icon)
	}
	return out
}
