package contract

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// DefaultLocale is used when FormatOptions.Locale is empty or unknown.
const DefaultLocale = "en-US"

var localeDateLayouts = map[string]string{
	"en-us": "1/2/2006",
	"en-gb": "02/01/2006",
	"de-de": "2.1.2006",
	"fr-fr": "02/01/2006",
	"iso":   "2006-01-02",
}

var languageDefaults = map[string]string{
	"en": "en-us",
	"de": "de-de",
	"fr": "fr-fr",
}

// calendar date inputs carry no zone and are never shifted.
var dateOnlyLayouts = []string{
	"2006-01-02",
	"1/2/2006",
	"January 2, 2006",
	"Jan 2, 2006",
}

var zonedLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
}

var localLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
}

type formatContext struct {
	layout   string
	location *time.Location
}

func newFormatContext(opts FormatOptions) (formatContext, error) {
	ctx := formatContext{layout: dateLayoutForLocale(opts.Locale)}
	if tz := strings.TrimSpace(opts.Timezone); tz != "" {
		loc, err := time.LoadLocation(tz)
		if err != nil {
			return formatContext{}, NewError(KindValidation, "invalid timezone", err)
		}
		ctx.location = loc
	}
	return ctx, nil
}

func dateLayoutForLocale(locale string) string {
	normalized := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(locale), "_", "-"))
	if layout, ok := localeDateLayouts[normalized]; ok {
		return layout
	}
	lang, _, _ := strings.Cut(normalized, "-")
	if fallback, ok := languageDefaults[lang]; ok {
		return localeDateLayouts[fallback]
	}
	return localeDateLayouts[strings.ToLower(DefaultLocale)]
}

// formatDate renders an upload date string as a locale date.
func (f formatContext) formatDate(raw string) (string, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return "", NewError(KindValidation, "upload date is required", nil)
	}

	for _, layout := range dateOnlyLayouts {
		if parsed, err := time.Parse(layout, value); err == nil {
			return parsed.Format(f.layout), nil
		}
	}

	for _, layout := range zonedLayouts {
		if parsed, err := time.Parse(layout, value); err == nil {
			if f.location != nil {
				parsed = parsed.In(f.location)
			}
			return parsed.Format(f.layout), nil
		}
	}

	loc := f.location
	if loc == nil {
		loc = time.UTC
	}
	for _, layout := range localLayouts {
		if parsed, err := time.ParseInLocation(layout, value, loc); err == nil {
			return parsed.Format(f.layout), nil
		}
	}

	return "", NewError(KindValidation, fmt.Sprintf("invalid upload date %q", raw), nil)
}

// FormatUploadDate renders raw with the locale and timezone in opts.
func FormatUploadDate(raw string, opts FormatOptions) (string, error) {
	ctx, err := newFormatContext(opts)
	if err != nil {
		return "", err
	}
	return ctx.formatDate(raw)
}

// FormatPercent renders a score the way it is shown next to a % sign:
// shortest decimal form, no trailing zeros.
func FormatPercent(value float64) string {
	return strconv.FormatFloat(value, 'f', -1, 64)
}

// scoreIsTruthy matches the summary document policy: zero and NaN scores are
// treated like a missing score.
func scoreIsTruthy(score *float64) bool {
	if score == nil {
		return false
	}
	return *score != 0 && !math.IsNaN(*score)
}
