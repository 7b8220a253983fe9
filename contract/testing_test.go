package contract

import (
	"errors"
	"fmt"
	"io"
	"strings"
)

type recordedText struct {
	text     string
	x        float64
	y        float64
	fontSize float64
}

type recordingDocument struct {
	fontSize  float64
	texts     []recordedText
	outputErr error
}

func (d *recordingDocument) SetFontSize(size float64) { d.fontSize = size }

func (d *recordingDocument) Text(text string, x, y float64) {
	d.texts = append(d.texts, recordedText{text: text, x: x, y: y, fontSize: d.fontSize})
}

func (d *recordingDocument) Output(w io.Writer) error {
	if d.outputErr != nil {
		return d.outputErr
	}
	lines := make([]string, 0, len(d.texts))
	for _, t := range d.texts {
		lines = append(lines, t.text)
	}
	_, err := fmt.Fprintf(w, "%%PDF-stub\n%s", strings.Join(lines, "\n"))
	return err
}

func (d *recordingDocument) lines() []string {
	out := make([]string, 0, len(d.texts))
	for _, t := range d.texts {
		out = append(out, t.text)
	}
	return out
}

func sampleRecord() Record {
	return Record{
		ID:              "c-1",
		Title:           "MSA-001",
		Parties:         []string{"Acme", "Globex"},
		Status:          StatusCompleted,
		UploadDate:      "2024-01-15",
		ConfidenceScore: Float(92),
		FinancialValue:  "$10,000",
	}
}

var errWrite = errors.New("disk full")
