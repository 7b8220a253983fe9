package contract

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
)

// DefaultSummaryFilename names summary downloads after the contract title.
const DefaultSummaryFilename = "{{.Title}}-summary"

type filenameData struct {
	ID     string
	Title  string
	Status string
}

func renderFilename(pattern string, record Record) (string, error) {
	name := pattern
	if name == "" {
		name = DefaultSummaryFilename
	}

	tmpl, err := template.New("filename").Parse(name)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, filenameData{
		ID:     record.ID,
		Title:  record.Title,
		Status: string(record.Status),
	}); err != nil {
		return "", err
	}

	result := buf.String()
	if strings.TrimSpace(result) == "" {
		return "", fmt.Errorf("empty filename")
	}
	if !strings.HasSuffix(strings.ToLower(result), ".pdf") {
		result = result + ".pdf"
	}
	return result, nil
}

// SummaryFilename returns the default download name for record's summary.
func SummaryFilename(record Record) string {
	name, err := renderFilename(DefaultSummaryFilename, record)
	if err != nil {
		return record.Title + "-summary.pdf"
	}
	return name
}
