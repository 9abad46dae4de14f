package portal

import (
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

type ToastKind string

const (
	ToastSuccess ToastKind = "success"
	ToastError   ToastKind = "error"
	ToastInfo    ToastKind = "info"
	ToastWarning ToastKind = "warning"
)

const (
	DefaultToastLifetime = 5 * time.Second
	DefaultMaxToasts     = 5
)

func (k ToastKind) IsValid() bool {
	switch k {
	case ToastSuccess, ToastError, ToastInfo, ToastWarning:
		return true
	}
	return false
}

type Toast struct {
	ID        string
	Kind      ToastKind
	Message   string
	CreatedAt time.Time
}

// Notifier holds the visible toasts. Each one is removed after the lifetime,
// on Dismiss, or when newer toasts push it past the visible limit.
type Notifier struct {
	mu       sync.Mutex
	lifetime time.Duration
	max      int
	toasts   []Toast
	timers   map[string]*time.Timer
	subs     []func([]Toast)
	closed   bool
}

func NewNotifier(lifetime time.Duration, max int) *Notifier {
	if lifetime <= 0 {
		lifetime = DefaultToastLifetime
	}
	if max <= 0 {
		max = DefaultMaxToasts
	}
	return &Notifier{
		lifetime: lifetime,
		max:      max,
		timers:   make(map[string]*time.Timer),
	}
}

func (n *Notifier) Notify(kind ToastKind, message string) Toast {
	if !kind.IsValid() {
		kind = ToastInfo
	}
	t := Toast{ID: uuid.NewString(), Kind: kind, Message: message, CreatedAt: time.Now()}

	n.mu.Lock()
	if n.closed {
		n.mu.Unlock()
		return t
	}
	n.toasts = append(n.toasts, t)
	for len(n.toasts) > n.max {
		n.removeLocked(n.toasts[0].ID)
	}
	id := t.ID
	n.timers[id] = time.AfterFunc(n.lifetime, func() { n.Dismiss(id) })
	n.mu.Unlock()

	n.publish()
	return t
}

// Dismiss removes the toast with the given id and reports whether it was visible.
func (n *Notifier) Dismiss(id string) bool {
	n.mu.Lock()
	removed := n.removeLocked(id)
	n.mu.Unlock()

	if removed {
		n.publish()
	}
	return removed
}

func (n *Notifier) Active() []Toast {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]Toast(nil), n.toasts...)
}

func (n *Notifier) Subscribe(fn func([]Toast)) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.subs = append(n.subs, fn)
}

// Close stops every pending timer and drops the visible toasts.
func (n *Notifier) Close() {
	n.mu.Lock()
	n.closed = true
	for id, timer := range n.timers {
		timer.Stop()
		delete(n.timers, id)
	}
	n.toasts = nil
	n.mu.Unlock()

	n.publish()
}

func (n *Notifier) removeLocked(id string) bool {
	for i, t := range n.toasts {
		if t.ID != id {
			continue
		}
		n.toasts = append(n.toasts[:i], n.toasts[i+1:]...)
		if timer, ok := n.timers[id]; ok {
			timer.Stop()
			delete(n.timers, id)
		}
		return true
	}
	return false
}

func (n *Notifier) publish() {
	n.mu.Lock()
	snapshot := append([]Toast(nil), n.toasts...)
	subs := slices.Clone(n.subs)
	n.mu.Unlock()

	for _, fn := range subs {
		fn(snapshot)
	}
}
