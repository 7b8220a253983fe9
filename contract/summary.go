package contract

// SummaryReportTitle heads every summary document.
const SummaryReportTitle = "Contract Summary Report"

const (
	summaryLeft          = 20.0
	summaryTitleFontSize = 20.0
	summaryBodyFontSize  = 12.0
)

// Fixed vertical positions; an omitted optional line leaves its slot empty.
const (
	summaryTitleY      = 30.0
	summaryContractY   = 50.0
	summaryPartiesY    = 65.0
	summaryStatusY     = 80.0
	summaryUploadY     = 95.0
	summaryConfidenceY = 110.0
	summaryFinancialY  = 125.0
)

// SummaryLine is one positioned text line of the summary document.
type SummaryLine struct {
	Text     string
	X        float64
	Y        float64
	FontSize float64
}

// BuildSummary lays out the summary document lines for record in order.
//
// The confidence line is written only for a truthy score, so a score of 0 is
// omitted here even though the card still shows it.
func BuildSummary(record Record, opts FormatOptions) ([]SummaryLine, error) {
	if err := record.Validate(); err != nil {
		return nil, err
	}
	formatter, err := newFormatContext(opts)
	if err != nil {
		return nil, err
	}
	uploadDate, err := formatter.formatDate(record.UploadDate)
	if err != nil {
		return nil, err
	}

	lines := []SummaryLine{
		{Text: SummaryReportTitle, X: summaryLeft, Y: summaryTitleY, FontSize: summaryTitleFontSize},
		bodyLine("Contract Title: "+record.Title, summaryContractY),
		bodyLine("Parties: "+record.PartiesLine(), summaryPartiesY),
		bodyLine("Status: "+string(record.Status), summaryStatusY),
		bodyLine("Upload Date: "+uploadDate, summaryUploadY),
	}
	if scoreIsTruthy(record.ConfidenceScore) {
		lines = append(lines, bodyLine("Confidence Score: "+FormatPercent(*record.ConfidenceScore)+"%", summaryConfidenceY))
	}
	if record.FinancialValue != "" {
		lines = append(lines, bodyLine("Financial Value: "+record.FinancialValue, summaryFinancialY))
	}
	return lines, nil
}

func bodyLine(text string, y float64) SummaryLine {
	return SummaryLine{Text: text, X: summaryLeft, Y: y, FontSize: summaryBodyFontSize}
}

// WriteSummary prints lines into doc, setting the font size before each run
// of text.
func WriteSummary(doc Document, lines []SummaryLine) error {
	if doc == nil {
		return NewError(KindInternal, "summary document is nil", nil)
	}
	current := 0.0
	for _, line := range lines {
		if line.FontSize != current {
			doc.SetFontSize(line.FontSize)
			current = line.FontSize
		}
		doc.Text(line.Text, line.X, line.Y)
	}
	return nil
}
