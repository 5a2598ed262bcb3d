package vitae

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"github.com/alnah/go-vitae/internal/fileutil"
)

// PDF page dimensions in inches (US Letter format).
const (
	paperWidthInches  = 8.5
	paperHeightInches = 11
	marginInches      = 0.5
)

const defaultPDFTimeout = 30 * time.Second

// ChromeEngine produces the CV PDF by printing a self-contained HTML
// rendering in headless Chrome. Rod downloads Chromium on first run if
// no browser is found.
type ChromeEngine struct {
	renderer *HTMLRenderer
	browser  *rod.Browser
	timeout  time.Duration
}

var _ PDFEngine = (*ChromeEngine)(nil)

// NewChromeEngine creates a ChromeEngine with the default timeout. The
// browser is launched lazily on the first BuildPDF call.
func NewChromeEngine(renderer *HTMLRenderer) *ChromeEngine {
	return &ChromeEngine{renderer: renderer, timeout: defaultPDFTimeout}
}

func (e *ChromeEngine) Name() string { return "chrome" }

// Available always reports true: rod fetches a browser when none is
// installed, so the engine cannot be ruled out up front.
func (e *ChromeEngine) Available() bool { return true }

// ensureBrowser lazily connects to the browser.
func (e *ChromeEngine) ensureBrowser() error {
	if e.browser != nil {
		return nil
	}

	l := launcher.New()

	// Use pre-installed browser if specified (Docker/containerized environments)
	if bin := os.Getenv("ROD_BROWSER_BIN"); bin != "" {
		l = l.Bin(bin)
	}

	// NoSandbox required for CI and containerized environments
	if os.Getenv("CI") == "true" || os.Getenv("ROD_NO_SANDBOX") == "true" || os.Getenv("ROD_BROWSER_BIN") != "" {
		l = l.NoSandbox(true)
	}

	u, err := l.Launch()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}

	e.browser = rod.New().ControlURL(u)
	if err := e.browser.Connect(); err != nil {
		e.browser = nil
		return fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}
	return nil
}

// Close releases browser resources.
func (e *ChromeEngine) Close() error {
	if e.browser != nil {
		err := e.browser.Close()
		e.browser = nil
		return err
	}
	return nil
}

// BuildPDF renders the CV as standalone HTML and prints it to PDF in
// headless Chrome.
func (e *ChromeEngine) BuildPDF(ctx context.Context, doc *Document) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	page, err := e.renderer.RenderStandaloneCV(PageData{
		Title: "Curriculum Vitae",
		Doc:   doc,
	})
	if err != nil {
		return nil, err
	}

	htmlPath, cleanup, err := fileutil.WriteTempFile(string(page), "html")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPDFGeneration, err)
	}
	defer cleanup()

	return e.renderFromFile(ctx, htmlPath)
}

// renderFromFile opens a local HTML file in headless Chrome and renders
// it to PDF. Returns explicit errors instead of panicking when browser
// operations fail.
func (e *ChromeEngine) renderFromFile(ctx context.Context, filePath string) ([]byte, error) {
	if err := e.ensureBrowser(); err != nil {
		return nil, err
	}

	browserPage, err := e.browser.Page(proto.TargetCreateTarget{URL: "file://" + filePath})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPageCreate, err)
	}
	defer browserPage.Close()

	timeout := e.timeout
	if deadline, ok := ctx.Deadline(); ok {
		timeout = time.Until(deadline)
		if timeout <= 0 {
			return nil, context.DeadlineExceeded
		}
	}

	if err := browserPage.Timeout(timeout).WaitLoad(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPageLoad, err)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	reader, err := browserPage.PDF(&proto.PagePrintToPDF{
		PaperWidth:      floatPtr(paperWidthInches),
		PaperHeight:     floatPtr(paperHeightInches),
		MarginTop:       floatPtr(marginInches),
		MarginBottom:    floatPtr(marginInches),
		MarginLeft:      floatPtr(marginInches),
		MarginRight:     floatPtr(marginInches),
		PrintBackground: true,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPDFGeneration, err)
	}

	pdf, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("%w: reading PDF stream: %v", ErrPDFGeneration, err)
	}
	return pdf, nil
}

func floatPtr(f float64) *float64 { return &f }
