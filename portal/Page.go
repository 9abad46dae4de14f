package portal

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

type Options struct {
	Debounce      time.Duration
	ToastLifetime time.Duration
	MaxToasts     int
	Logger        *zap.Logger
}

// Page maps user events on the portal page to its components.
type Page struct {
	view      *View
	notifier  *Notifier
	validator *Validator
	fetcher   *Fetcher

	mu    sync.Mutex
	input string
}

func NewPage(api KeyAPI, opts Options) *Page {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	view := NewView()
	notifier := NewNotifier(opts.ToastLifetime, opts.MaxToasts)
	return &Page{
		view:      view,
		notifier:  notifier,
		validator: NewValidator(api, view, notifier, log.Named("validator"), opts.Debounce),
		fetcher:   NewFetcher(api, view, notifier, log.Named("fetcher")),
	}
}

func (p *Page) View() *View { return p.view }

func (p *Page) Notifier() *Notifier { return p.notifier }

func (p *Page) Input() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.input
}

// Type replaces the input text. The input is disabled while a code request
// is in flight, so typing is ignored then.
func (p *Page) Type(text string) {
	if p.fetcher.Loading() {
		return
	}
	p.mu.Lock()
	p.input = text
	p.mu.Unlock()

	p.view.SetInput(text)
	p.validator.Input(text)
}

// Enter submits only a non-empty key and never while loading.
func (p *Page) Enter(ctx context.Context) bool {
	key := p.Input()
	if p.fetcher.Loading() || strings.TrimSpace(key) == "" {
		return false
	}
	return p.fetcher.Submit(ctx, key)
}

// Click submits whatever is typed, so an empty input produces a toast.
func (p *Page) Click(ctx context.Context) bool {
	return p.fetcher.Submit(ctx, p.Input())
}

func (p *Page) Escape() {
	p.mu.Lock()
	p.input = ""
	p.mu.Unlock()

	p.validator.Cancel()
	p.view.SetInput("")
	p.view.ResetValidation()
	p.view.ResetResult()
}

func (p *Page) Retry() {
	p.view.ResetResult()
}

func (p *Page) Close() {
	p.validator.Cancel()
	p.notifier.Close()
}
