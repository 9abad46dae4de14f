package portal

import (
	"slices"
	"sync"
)

type ValidationState string

const (
	ValidationIdle    ValidationState = "idle"
	ValidationValid   ValidationState = "valid"
	ValidationInvalid ValidationState = "invalid"
)

type ResultKind string

const (
	ResultPlaceholder ResultKind = "placeholder"
	ResultCode        ResultKind = "code"
	ResultError       ResultKind = "error"
)

const PlaceholderText = "Your code will appear here"

// ViewState is everything the page shows, apart from toasts.
type ViewState struct {
	Input             string
	Loading           bool
	Validation        ValidationState
	ValidationMessage string
	Result            ResultKind
	Code              string
	Error             string
}

// Display is the renderer side the validator and fetcher write to.
type Display interface {
	SetLoading(loading bool)
	ShowCode(code string)
	ShowError(message string)
	ResetResult()
	SetValidation(state ValidationState, message string)
	// ApplyValidation sets the validation state only if current still
	// reports true at the moment of the write.
	ApplyValidation(current func() bool, state ValidationState, message string) bool
	ResetValidation()
}

// View keeps the current ViewState and tells subscribers about every change.
type View struct {
	mu    sync.Mutex
	state ViewState
	subs  []func(ViewState)
}

func NewView() *View {
	return &View{state: ViewState{Validation: ValidationIdle, Result: ResultPlaceholder}}
}

func (v *View) Snapshot() ViewState {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.state
}

// Subscribe registers fn; it runs synchronously after each change.
func (v *View) Subscribe(fn func(ViewState)) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.subs = append(v.subs, fn)
}

func (v *View) update(mutate func(*ViewState)) {
	v.updateIf(func(s *ViewState) bool {
		mutate(s)
		return true
	})
}

// updateIf runs mutate under the lock and notifies subscribers, after the
// lock is released, only when mutate reports a change.
func (v *View) updateIf(mutate func(*ViewState) bool) bool {
	v.mu.Lock()
	if !mutate(&v.state) {
		v.mu.Unlock()
		return false
	}
	state := v.state
	subs := slices.Clone(v.subs)
	v.mu.Unlock()

	for _, fn := range subs {
		fn(state)
	}
	return true
}

func (v *View) SetInput(text string) {
	v.update(func(s *ViewState) { s.Input = text })
}

func (v *View) SetLoading(loading bool) {
	v.update(func(s *ViewState) { s.Loading = loading })
}

func (v *View) ShowCode(code string) {
	v.update(func(s *ViewState) {
		s.Result, s.Code, s.Error = ResultCode, code, ""
	})
}

func (v *View) ShowError(message string) {
	v.update(func(s *ViewState) {
		s.Result, s.Code, s.Error = ResultError, "", message
	})
}

func (v *View) ResetResult() {
	v.update(func(s *ViewState) {
		s.Result, s.Code, s.Error = ResultPlaceholder, "", ""
	})
}

func (v *View) SetValidation(state ValidationState, message string) {
	v.update(func(s *ViewState) {
		s.Validation, s.ValidationMessage = state, message
	})
}

func (v *View) ApplyValidation(current func() bool, state ValidationState, message string) bool {
	return v.updateIf(func(s *ViewState) bool {
		if !current() {
			return false
		}
		s.Validation, s.ValidationMessage = state, message
		return true
	})
}

func (v *View) ResetValidation() {
	v.SetValidation(ValidationIdle, "")
}
