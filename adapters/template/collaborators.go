package cardtemplate

import (
	"fmt"
	"html/template"
	"math"

	"github.com/goliatone/go-contract-card/contract"
)

// StatusBadge renders the indicator for a contract status.
type StatusBadge func(status contract.Status) template.HTML

// ProgressBar renders a percentage progress indicator.
type ProgressBar func(progress float64, showPercentage bool) template.HTML

var statusBadgeLabels = map[contract.Status]string{
	contract.StatusPending:    "Pending",
	contract.StatusProcessing: "Processing",
	contract.StatusCompleted:  "Completed",
	contract.StatusError:      "Error",
}

var statusBadgeVariants = map[contract.Status]string{
	contract.StatusPending:    "badge-muted",
	contract.StatusProcessing: "badge-primary",
	contract.StatusCompleted:  "badge-success",
	contract.StatusError:      "badge-destructive",
}

// DefaultStatusBadge renders a pill labelled with the status.
func DefaultStatusBadge(status contract.Status) template.HTML {
	label, ok := statusBadgeLabels[status]
	if !ok {
		label = string(status)
	}
	variant := statusBadgeVariants[status]
	return template.HTML(fmt.Sprintf(
		`<span class="status-badge %s" data-status="%s">%s</span>`,
		template.HTMLEscapeString(variant),
		template.HTMLEscapeString(string(status)),
		template.HTMLEscapeString(label),
	))
}

// DefaultProgressBar renders a bar whose fill is clamped to [0,100].
func DefaultProgressBar(progress float64, showPercentage bool) template.HTML {
	width := progress
	if math.IsNaN(width) || width < 0 {
		width = 0
	}
	if width > 100 {
		width = 100
	}
	label := ""
	if showPercentage {
		label = fmt.Sprintf(`<span class="progress-label text-xs text-muted-foreground">%s%%</span>`,
			template.HTMLEscapeString(contract.FormatPercent(progress)))
	}
	return template.HTML(fmt.Sprintf(
		`<div class="progress" role="progressbar" aria-valuemin="0" aria-valuemax="100" aria-valuenow="%s"><div class="progress-fill" style="width: %s%%"></div>%s</div>`,
		contract.FormatPercent(width),
		contract.FormatPercent(width),
		label,
	))
}

// Icon names used by the card.
const (
	IconFile     = "file-text"
	IconCalendar = "calendar"
	IconUsers    = "users"
	IconDollar   = "dollar-sign"
	IconDownload = "download"
)

// DefaultIcons returns lucide placeholders keyed by icon name.
func DefaultIcons() map[string]template.HTML {
	return map[string]template.HTML{
		IconFile:     iconHTML(IconFile, "h-5 w-5 text-primary"),
		IconCalendar: iconHTML(IconCalendar, "h-4 w-4"),
		IconUsers:    iconHTML(IconUsers, "h-4 w-4"),
		IconDollar:   iconHTML(IconDollar, "h-4 w-4"),
		IconDownload: iconHTML(IconDownload, "h-4 w-4"),
	}
}

func iconHTML(name, class string) template.HTML {
	return template.HTML(fmt.Sprintf(`<i data-lucide="%s" class="%s" aria-hidden="true"></i>`, name, class))
}
