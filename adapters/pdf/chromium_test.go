package cardpdf

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"os/exec"
	"sync/atomic"
	"testing"
	"time"

	"github.com/goliatone/go-contract-card/contract"
)

func boolPtr(value bool) *bool {
	return &value
}

func chromeBinaryPath(t *testing.T) string {
	t.Helper()

	chromePath := os.Getenv("CHROME_BIN")
	if chromePath == "" {
		paths := []string{"google-chrome", "chromium", "chromium-browser"}
		for _, candidate := range paths {
			if path, err := exec.LookPath(candidate); err == nil {
				chromePath = path
				break
			}
		}
	}
	if chromePath == "" {
		t.Skip("chromium binary not found; set CHROME_BIN to run this test")
	}

	return chromePath
}

func TestParseLengthInches(t *testing.T) {
	tests := []struct {
		input string
		want  float64
	}{
		{input: "1in", want: 1},
		{input: "25.4mm", want: 1},
		{input: "2.54cm", want: 1},
		{input: "72pt", want: 1},
		{input: "96px", want: 1},
		{input: "2", want: 2},
	}

	for _, tc := range tests {
		got, err := parseLengthInches(tc.input)
		if err != nil {
			t.Fatalf("parseLengthInches(%q): %v", tc.input, err)
		}
		if diff := got - tc.want; diff > 0.0001 || diff < -0.0001 {
			t.Fatalf("parseLengthInches(%q): expected %f, got %f", tc.input, tc.want, got)
		}
	}

	if _, err := parseLengthInches("3furlongs"); contract.KindFromError(err) != contract.KindValidation {
		t.Fatalf("expected validation error for unknown unit, got %v", err)
	}
}

func TestBuildPrintToPDFParams_PageSizeAndMargins(t *testing.T) {
	params, err := buildPrintToPDFParams(PDFOptions{
		PageSize:     "A6",
		MarginTop:    "10mm",
		MarginLeft:   "0.5in",
		MarginBottom: "1cm",
	})
	if err != nil {
		t.Fatalf("buildPrintToPDFParams: %v", err)
	}
	if params.PaperWidth == 0 || params.PaperHeight == 0 {
		t.Fatalf("expected paper size to be set, got width=%f height=%f", params.PaperWidth, params.PaperHeight)
	}
	if params.MarginTop == 0 || params.MarginLeft != 0.5 || params.MarginBottom == 0 {
		t.Fatalf("expected margins to be set, got %+v", params)
	}
	if !params.PrintBackground {
		t.Fatalf("expected print background by default")
	}
}

func TestBuildPrintToPDFParams_Invalid(t *testing.T) {
	if _, err := buildPrintToPDFParams(PDFOptions{PageSize: "B9"}); contract.KindFromError(err) != contract.KindValidation {
		t.Fatalf("expected validation error for page size, got %v", err)
	}
	if _, err := buildPrintToPDFParams(PDFOptions{Scale: 3}); contract.KindFromError(err) != contract.KindValidation {
		t.Fatalf("expected validation error for scale, got %v", err)
	}
	params, err := buildPrintToPDFParams(PDFOptions{PrintBackground: boolPtr(false)})
	if err != nil {
		t.Fatalf("buildPrintToPDFParams: %v", err)
	}
	if params.PrintBackground || !params.PreferCSSPageSize {
		t.Fatalf("unexpected params %+v", params)
	}
}

func TestBuildPrintToPDFParams_A6InInches(t *testing.T) {
	params, err := buildPrintToPDFParams(PDFOptions{PageSize: " a6 ", MarginRight: "96px"})
	if err != nil {
		t.Fatalf("buildPrintToPDFParams: %v", err)
	}
	if diff := params.PaperWidth - 105/25.4; diff > 0.0001 || diff < -0.0001 {
		t.Fatalf("unexpected paper width %f", params.PaperWidth)
	}
	if params.MarginRight != 1 {
		t.Fatalf("expected 1in right margin, got %f", params.MarginRight)
	}
	if _, err := buildPrintToPDFParams(PDFOptions{MarginTop: "-3mm"}); contract.KindFromError(err) != contract.KindValidation {
		t.Fatalf("expected validation error for negative margin, got %v", err)
	}
}

func TestChromeFlags(t *testing.T) {
	flags := chromeFlags([]string{"--no-sandbox", "  ", "--window-size=800,600", "-", "disable-gpu"})
	if len(flags) != 3 {
		t.Fatalf("expected 3 flags, got %d", len(flags))
	}
}

func TestChromiumEngine_CloseWithoutStart(t *testing.T) {
	engine := &ChromiumEngine{}
	if err := engine.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	var nilEngine *ChromiumEngine
	if _, err := nilEngine.Render(context.Background(), RenderRequest{}); contract.KindFromError(err) != contract.KindInternal {
		t.Fatalf("expected internal error for nil engine, got %v", err)
	}
}

func TestChromiumEngine_Render_Smoke(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping chromium smoke test in short mode")
	}

	engine := &ChromiumEngine{
		BrowserPath: chromeBinaryPath(t),
		Headless:    true,
		Timeout:     10 * time.Second,
		Args:        []string{"--no-sandbox", "--disable-dev-shm-usage"},
	}
	t.Cleanup(func() {
		_ = engine.Close()
	})

	pdf, err := engine.Render(context.Background(), RenderRequest{
		HTML:    []byte("<html><body><h1>MSA-001</h1></body></html>"),
		Options: PDFOptions{PageSize: "A6"},
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if len(pdf) < 4 || string(pdf[:4]) != "%PDF" {
		t.Fatalf("expected pdf output")
	}
}

func TestChromiumEngine_Render_BlocksExternalAssets(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping chromium external asset test in short mode")
	}

	chromePath := chromeBinaryPath(t)
	var hits int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}))
	defer server.Close()

	engine := &ChromiumEngine{
		BrowserPath: chromePath,
		Headless:    true,
		Timeout:     10 * time.Second,
		Args:        []string{"--no-sandbox", "--disable-dev-shm-usage"},
	}
	t.Cleanup(func() {
		_ = engine.Close()
	})

	html := []byte("<html><body><img src=\"" + server.URL + "/icon.png\"></body></html>")
	if _, err := engine.Render(context.Background(), RenderRequest{HTML: html}); err != nil {
		t.Fatalf("render: %v", err)
	}

	time.Sleep(500 * time.Millisecond)

	if atomic.LoadInt32(&hits) != 0 {
		t.Fatalf("expected external assets to be blocked, got %d request(s)", hits)
	}
}
