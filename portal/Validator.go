package portal

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

const (
	DefaultDebounce         = 500 * time.Millisecond
	MsgValidationFailed     = "Validation failed. Please try again."
	validationRequestBudget = 10 * time.Second
)

// Validator checks the key as it is typed. Only the last input within the
// debounce window is sent, and a response that arrives after newer input is
// dropped.
type Validator struct {
	api      KeyAPI
	display  Display
	notifier *Notifier
	log      *zap.Logger
	delay    time.Duration

	mu    sync.Mutex
	timer *time.Timer
	seq   atomic.Uint64
}

func NewValidator(api KeyAPI, display Display, notifier *Notifier, log *zap.Logger, delay time.Duration) *Validator {
	if delay <= 0 {
		delay = DefaultDebounce
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Validator{api: api, display: display, notifier: notifier, log: log, delay: delay}
}

// Input takes the current text of the key field. Rendering and toasts happen
// outside the validator's lock, so display subscribers may call back into
// the page.
func (v *Validator) Input(text string) {
	key := strings.TrimSpace(text)

	v.mu.Lock()
	seq := v.stopLocked()
	if key != "" {
		v.timer = time.AfterFunc(v.delay, func() { v.validate(seq, key) })
	}
	v.mu.Unlock()

	v.display.ResetValidation()
}

// Cancel stops a pending validation and invalidates any request in flight.
func (v *Validator) Cancel() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.stopLocked()
}

func (v *Validator) stopLocked() uint64 {
	if v.timer != nil {
		v.timer.Stop()
		v.timer = nil
	}
	return v.seq.Add(1)
}

func (v *Validator) current(seq uint64) bool {
	return v.seq.Load() == seq
}

func (v *Validator) validate(seq uint64, key string) {
	ctx, cancel := context.WithTimeout(context.Background(), validationRequestBudget)
	defer cancel()

	res, err := v.api.ValidateKey(ctx, key)
	if !v.current(seq) {
		v.log.Debug("discarding stale validation response")
		return
	}

	if err != nil {
		v.log.Warn("key validation failed", zap.Error(err))
		v.notifier.Notify(ToastError, MsgValidationFailed)
		return
	}

	state := ValidationInvalid
	if res.Valid {
		state = ValidationValid
	}
	if !v.display.ApplyValidation(func() bool { return v.current(seq) }, state, res.Message) {
		v.log.Debug("discarding stale validation response")
	}
}
