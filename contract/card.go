package contract

import (
	"sort"
	"strings"
)

const baseCardClasses = "card-hover gradient-card border-border/50"

// CardOptions carries the caller's overrides for one card render.
type CardOptions struct {
	ClassName string
	Style     map[string]string
	Clickable bool
	Format    FormatOptions
}

// StyleDecl is one inline style declaration.
type StyleDecl struct {
	Property string
	Value    string
}

// Progress is the progress indicator input for the Progress Bar.
type Progress struct {
	Value          float64
	ShowPercentage bool
}

// Confidence is the confidence row of a card.
type Confidence struct {
	Score float64
	Label string
	Tier  ConfidenceTier
	Class string
}

// Card is the view model for one contract card.
type Card struct {
	ID             string
	Title          string
	Status         Status
	ClassName      string
	Style          []StyleDecl
	Clickable      bool
	Progress       *Progress
	Parties        string
	UploadDate     string
	FinancialValue string
	Confidence     *Confidence
}

// ShowFinancialValue reports whether the financial line is rendered.
func (c Card) ShowFinancialValue() bool {
	return c.FinancialValue != ""
}

// StyleAttr renders Style as an inline style attribute value.
func (c Card) StyleAttr() string {
	if len(c.Style) == 0 {
		return ""
	}
	parts := make([]string, 0, len(c.Style))
	for _, decl := range c.Style {
		parts = append(parts, decl.Property+": "+decl.Value)
	}
	return strings.Join(parts, "; ")
}

// BuildCard composes the card view model for record.
func BuildCard(record Record, opts CardOptions) (Card, error) {
	if err := record.Validate(); err != nil {
		return Card{}, err
	}

	formatter, err := newFormatContext(opts.Format)
	if err != nil {
		return Card{}, err
	}
	uploadDate, err := formatter.formatDate(record.UploadDate)
	if err != nil {
		return Card{}, err
	}

	card := Card{
		ID:             record.ID,
		Title:          record.Title,
		Status:         record.Status,
		ClassName:      joinClasses(baseCardClasses, clickableClass(opts.Clickable), opts.ClassName),
		Style:          styleDecls(opts.Style),
		Clickable:      opts.Clickable,
		Parties:        record.PartiesLine(),
		UploadDate:     uploadDate,
		FinancialValue: record.FinancialValue,
	}

	if record.Status == StatusProcessing && record.ProcessingProgress != nil {
		card.Progress = &Progress{Value: *record.ProcessingProgress, ShowPercentage: true}
	}

	if record.ConfidenceScore != nil {
		score := *record.ConfidenceScore
		tier := TierForScore(score)
		card.Confidence = &Confidence{
			Score: score,
			Label: FormatPercent(score) + "%",
			Tier:  tier,
			Class: tier.Class(),
		}
	}

	return card, nil
}

func clickableClass(clickable bool) string {
	if clickable {
		return "cursor-pointer"
	}
	return ""
}

func joinClasses(classes ...string) string {
	out := make([]string, 0, len(classes))
	for _, class := range classes {
		class = strings.TrimSpace(class)
		if class == "" {
			continue
		}
		out = append(out, class)
	}
	return strings.Join(out, " ")
}

func styleDecls(style map[string]string) []StyleDecl {
	if len(style) == 0 {
		return nil
	}
	keys := make([]string, 0, len(style))
	for key := range style {
		if strings.TrimSpace(key) == "" {
			continue
		}
		keys = append(keys, key)
	}
	sort.Strings(keys)
	decls := make([]StyleDecl, 0, len(keys))
	for _, key := range keys {
		decls = append(decls, StyleDecl{Property: strings.TrimSpace(key), Value: strings.TrimSpace(style[key])})
	}
	return decls
}
