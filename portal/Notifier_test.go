package portal

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToastAutoDismiss(t *testing.T) {
	n := NewNotifier(30*time.Millisecond, 5)
	defer n.Close()

	toast := n.Notify(ToastSuccess, "done")
	assert.NotEmpty(t, toast.ID)
	assert.Equal(t, ToastSuccess, toast.Kind)
	require.Len(t, n.Active(), 1)

	assert.Eventually(t, func() bool { return len(n.Active()) == 0 }, time.Second, 5*time.Millisecond)
}

func TestToastDismissByID(t *testing.T) {
	n := NewNotifier(time.Minute, 5)
	defer n.Close()

	first := n.Notify(ToastInfo, "one")
	n.Notify(ToastWarning, "two")

	assert.True(t, n.Dismiss(first.ID))
	assert.False(t, n.Dismiss(first.ID))
	assert.Equal(t, []string{"two"}, messages(n.Active()))
}

func TestToastQueueDropsOldest(t *testing.T) {
	n := NewNotifier(time.Minute, 3)
	defer n.Close()

	for _, m := range []string{"a", "b", "c", "d", "e"} {
		n.Notify(ToastInfo, m)
	}
	assert.Equal(t, []string{"c", "d", "e"}, messages(n.Active()))
}

func TestToastUnknownKindIsInfo(t *testing.T) {
	n := NewNotifier(time.Minute, 5)
	defer n.Close()

	assert.Equal(t, ToastInfo, n.Notify(ToastKind("loud"), "x").Kind)
}

func TestToastSubscribers(t *testing.T) {
	n := NewNotifier(time.Minute, 5)

	var mu sync.Mutex
	var sizes []int
	n.Subscribe(func(ts []Toast) {
		mu.Lock()
		sizes = append(sizes, len(ts))
		mu.Unlock()
	})

	a := n.Notify(ToastError, "a")
	n.Notify(ToastError, "b")
	n.Dismiss(a.ID)
	n.Close()

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []int{1, 2, 1, 0}, sizes)
}

func TestToastCloseStopsTimers(t *testing.T) {
	n := NewNotifier(20*time.Millisecond, 5)
	n.Notify(ToastInfo, "bye")
	n.Close()

	assert.Empty(t, n.Active())
	n.Notify(ToastInfo, "ignored")
	assert.Empty(t, n.Active())
}
