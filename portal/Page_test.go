package portal

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"keyportal/dto"
	"keyportal/model"
)

func TestPageFlowAgainstServer(t *testing.T) {
	url := startPortal(t,
		&model.AccessKey{Name: "ONCE", Secret: testSecret, MaxUses: 1},
	)
	page := NewPage(NewClient(url, 2*time.Second), Options{Debounce: testDelay, ToastLifetime: time.Minute})
	defer page.Close()
	ctx := context.Background()

	page.Type("ONCE")
	require.Eventually(t, func() bool {
		return page.View().Snapshot().Validation == ValidationValid
	}, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, "Key is valid (1 uses remaining out of 1)", page.View().Snapshot().ValidationMessage)

	assert.True(t, page.Enter(ctx))
	s := page.View().Snapshot()
	assert.Equal(t, ResultCode, s.Result)
	assert.Regexp(t, `^\d{6}$`, s.Code)
	assert.False(t, s.Loading)
	assert.Equal(t, []string{MsgCodeRetrieved}, messages(page.Notifier().Active()))

	assert.True(t, page.Click(ctx))
	s = page.View().Snapshot()
	assert.Equal(t, ResultError, s.Result)
	assert.Equal(t, "Key has reached its usage limit (1/1 uses)", s.Error)

	page.Retry()
	assert.Equal(t, ResultPlaceholder, page.View().Snapshot().Result)

	page.Escape()
	s = page.View().Snapshot()
	assert.Empty(t, s.Input)
	assert.Empty(t, page.Input())
	assert.Equal(t, ValidationIdle, s.Validation)
	assert.Equal(t, ResultPlaceholder, s.Result)
}

func TestPageEnterVersusClickOnEmptyInput(t *testing.T) {
	api := new(MockAPI)
	page := NewPage(api, Options{Debounce: time.Minute, ToastLifetime: time.Minute})
	defer page.Close()

	assert.False(t, page.Enter(context.Background()))
	assert.Empty(t, page.Notifier().Active())

	assert.False(t, page.Click(context.Background()))
	assert.Equal(t, []string{MsgEnterKey}, messages(page.Notifier().Active()))
	api.AssertNotCalled(t, "GetCode", mock.Anything, mock.Anything)
}

func TestPageIgnoresTypingWhileLoading(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	api := new(MockAPI)
	api.On("GetCode", mock.Anything, "KEY").
		Run(func(mock.Arguments) {
			close(started)
			<-release
		}).
		Return(&dto.CodeResponse{Success: true, Code: "123456"}, nil)

	page := NewPage(api, Options{Debounce: time.Minute, ToastLifetime: time.Minute})
	defer page.Close()

	page.Type("KEY")
	done := make(chan bool)
	go func() { done <- page.Enter(context.Background()) }()
	<-started

	assert.True(t, page.View().Snapshot().Loading)
	page.Type("OTHER")
	assert.Equal(t, "KEY", page.Input())
	assert.False(t, page.Enter(context.Background()))

	close(release)
	assert.True(t, <-done)
	assert.Equal(t, "123456", page.View().Snapshot().Code)
}

func waitClosed(t *testing.T, ch <-chan struct{}, what string) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(2 * time.Second):
		t.Fatalf("%s never returned", what)
	}
}

func TestPageViewSubscriberCanEscape(t *testing.T) {
	api := new(MockAPI)
	api.On("ValidateKey", mock.Anything, "BAD").
		Return(&dto.ValidationResponse{Valid: false, Message: "Invalid key provided"}, nil)

	page := NewPage(api, Options{Debounce: testDelay, ToastLifetime: time.Minute})
	defer page.Close()

	var fired atomic.Bool
	escaped := make(chan struct{})
	page.View().Subscribe(func(s ViewState) {
		if s.Validation == ValidationInvalid && fired.CompareAndSwap(false, true) {
			page.Escape()
			close(escaped)
		}
	})

	page.Type("BAD")
	waitClosed(t, escaped, "Escape from a view subscriber")

	s := page.View().Snapshot()
	assert.Equal(t, ValidationIdle, s.Validation)
	assert.Empty(t, s.Input)
	assert.Empty(t, page.Input())
}

func TestPageToastSubscriberCanRetype(t *testing.T) {
	api := new(MockAPI)
	api.On("ValidateKey", mock.Anything, "DOWN").Return(nil, errors.New("connection refused"))

	page := NewPage(api, Options{Debounce: testDelay, ToastLifetime: time.Minute})
	defer page.Close()

	var fired atomic.Bool
	retyped := make(chan struct{})
	page.Notifier().Subscribe(func(toasts []Toast) {
		if len(toasts) > 0 && fired.CompareAndSwap(false, true) {
			page.Type("")
			close(retyped)
		}
	})

	page.Type("DOWN")
	waitClosed(t, retyped, "Type from a toast subscriber")

	assert.Equal(t, []string{MsgValidationFailed}, messages(page.Notifier().Active()))
	assert.Equal(t, ValidationIdle, page.View().Snapshot().Validation)
}
