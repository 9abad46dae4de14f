package portal

import (
	"context"
	"strings"
	"sync"

	"go.uber.org/zap"
)

const (
	MsgEnterKey       = "Please enter your access key"
	MsgCodeRetrieved  = "Code retrieved successfully!"
	MsgFetchFailed    = "Failed to fetch code"
	MsgNetworkDisplay = "Network error. Please check your connection."
	MsgNetworkToast   = "Network error. Please try again."
)

// Fetcher requests codes, one at a time.
type Fetcher struct {
	api      KeyAPI
	display  Display
	notifier *Notifier
	log      *zap.Logger

	mu      sync.Mutex
	loading bool
}

func NewFetcher(api KeyAPI, display Display, notifier *Notifier, log *zap.Logger) *Fetcher {
	if log == nil {
		log = zap.NewNop()
	}
	return &Fetcher{api: api, display: display, notifier: notifier, log: log}
}

func (f *Fetcher) Loading() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.loading
}

// Submit asks for a code for key and renders the outcome. It reports whether
// a request was sent: an empty key or a request already in flight sends none.
func (f *Fetcher) Submit(ctx context.Context, key string) bool {
	key = strings.TrimSpace(key)
	if key == "" {
		f.notifier.Notify(ToastError, MsgEnterKey)
		return false
	}

	f.mu.Lock()
	if f.loading {
		f.mu.Unlock()
		return false
	}
	f.loading = true
	f.mu.Unlock()

	f.display.SetLoading(true)
	defer func() {
		f.mu.Lock()
		f.loading = false
		f.mu.Unlock()
		f.display.SetLoading(false)
	}()

	res, err := f.api.GetCode(ctx, key)
	if err != nil {
		f.log.Warn("code request failed", zap.Error(err))
		f.display.ShowError(MsgNetworkDisplay)
		f.notifier.Notify(ToastError, MsgNetworkToast)
		return true
	}

	if res.Success && res.Code != "" {
		f.display.ShowCode(res.Code)
		f.notifier.Notify(ToastSuccess, MsgCodeRetrieved)
		return true
	}

	msg := res.Error
	if msg == "" {
		msg = MsgFetchFailed
	}
	f.display.ShowError(msg)
	f.notifier.Notify(ToastError, msg)
	return true
}
