package cardpdf

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"

	"github.com/goliatone/go-contract-card/contract"
)

// ChromiumEngine prints card pages with one long-lived headless Chromium.
// Each Render opens its own tab, so the engine is safe for concurrent use.
type ChromiumEngine struct {
	BrowserPath string
	Headless    bool
	Timeout     time.Duration
	Args        []string

	once    sync.Once
	browser context.Context
	stop    []context.CancelFunc
}

var _ Engine = (*ChromiumEngine)(nil)

// Render loads req.HTML into a fresh tab and prints it.
func (e *ChromiumEngine) Render(ctx context.Context, req RenderRequest) ([]byte, error) {
	if e == nil {
		return nil, contract.NewError(contract.KindInternal, "chromium engine is nil", nil)
	}
	if ctx == nil {
		ctx = context.Background()
	}
	params, err := buildPrintToPDFParams(req.Options)
	if err != nil {
		return nil, err
	}
	browser, err := e.startBrowser()
	if err != nil {
		return nil, contract.NewError(contract.KindInternal, "chromium engine init failed", err)
	}

	tab, closeTab := e.openTab(ctx, browser)
	defer closeTab()

	var out []byte
	if err := chromedp.Run(tab, e.printTasks(req, params, &out)...); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, contract.NewError(contract.KindInternal, "chromium pdf render failed", err)
	}
	return out, nil
}

// Close stops the browser if it was started.
func (e *ChromiumEngine) Close() error {
	if e == nil {
		return nil
	}
	for i := len(e.stop) - 1; i >= 0; i-- {
		e.stop[i]()
	}
	e.stop = nil
	return nil
}

func (e *ChromiumEngine) startBrowser() (context.Context, error) {
	e.once.Do(func() {
		opts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
		if e.BrowserPath != "" {
			opts = append(opts, chromedp.ExecPath(e.BrowserPath))
		}
		opts = append(opts, chromedp.Flag("headless", e.Headless))
		opts = append(opts, chromeFlags(e.Args)...)

		alloc, stopAlloc := chromedp.NewExecAllocator(context.Background(), opts...)
		browser, stopBrowser := chromedp.NewContext(alloc)
		e.browser = browser
		e.stop = []context.CancelFunc{stopAlloc, stopBrowser}
	})
	if e.browser == nil {
		return nil, errors.New("chromium allocator unavailable")
	}
	return e.browser, nil
}

// openTab derives a tab from the shared browser that also ends when ctx
// does or when the engine timeout passes.
func (e *ChromiumEngine) openTab(ctx context.Context, browser context.Context) (context.Context, func()) {
	tab, cancelTab := chromedp.NewContext(browser)
	run, cancelRun := context.WithCancel(tab)
	stopWatch := context.AfterFunc(ctx, cancelRun)

	cancelTimeout := func() {}
	if e.Timeout > 0 {
		run, cancelTimeout = context.WithTimeout(run, e.Timeout)
	}
	return run, func() {
		stopWatch()
		cancelTimeout()
		cancelRun()
		cancelTab()
	}
}

func (e *ChromiumEngine) printTasks(req RenderRequest, params *page.PrintToPDFParams, out *[]byte) chromedp.Tasks {
	var tasks chromedp.Tasks
	if !req.Options.AllowExternalAssets {
		tasks = append(tasks, network.Enable(), network.SetBlockedURLs().WithURLPatterns([]*network.BlockPattern{
			{URLPattern: "http://*:*/*", Block: true},
			{URLPattern: "https://*:*/*", Block: true},
		}))
	}
	return append(tasks,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			frames, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(frames.Frame.ID, string(req.HTML)).Do(ctx)
		}),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.ActionFunc(func(ctx context.Context) error {
			data, _, err := params.Do(ctx)
			*out = data
			return err
		}),
	)
}

// chromeFlags turns "--name=value" and "--switch" strings into allocator
// flags.
func chromeFlags(args []string) []chromedp.ExecAllocatorOption {
	flags := make([]chromedp.ExecAllocatorOption, 0, len(args))
	for _, arg := range args {
		arg = strings.TrimLeft(strings.TrimSpace(arg), "-")
		if arg == "" {
			continue
		}
		name, value, hasValue := strings.Cut(arg, "=")
		if hasValue {
			flags = append(flags, chromedp.Flag(name, value))
		} else {
			flags = append(flags, chromedp.Flag(name, true))
		}
	}
	return flags
}
