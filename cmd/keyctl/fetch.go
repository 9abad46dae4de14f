package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"keyportal/portal"
)

type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *lockedWriter) printf(format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.w, format, args...)
}

// runFetch reads one key per line from in and drives a portal page with it.
func runFetch(ctx context.Context, api portal.KeyAPI, opts portal.Options, in io.Reader, out io.Writer) error {
	page := portal.NewPage(api, opts)
	defer page.Close()

	w := &lockedWriter{w: out}

	var mu sync.Mutex
	seen := make(map[string]bool)
	page.Notifier().Subscribe(func(toasts []portal.Toast) {
		mu.Lock()
		defer mu.Unlock()
		for _, t := range toasts {
			if !seen[t.ID] {
				seen[t.ID] = true
				w.printf("[%s] %s\n", t.Kind, t.Message)
			}
		}
	})

	lastValidation := portal.ValidationIdle
	page.View().Subscribe(func(s portal.ViewState) {
		mu.Lock()
		defer mu.Unlock()
		if s.Validation != lastValidation && s.Validation != portal.ValidationIdle {
			w.printf("  %s: %s\n", s.Validation, s.ValidationMessage)
		}
		lastValidation = s.Validation
	})

	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch line {
		case ".clear":
			page.Escape()
			continue
		case ".retry":
			page.Retry()
			continue
		}

		page.Type(line)
		if !page.Click(ctx) {
			continue
		}
		s := page.View().Snapshot()
		switch s.Result {
		case portal.ResultCode:
			w.printf("Code: %s\n", s.Code)
		case portal.ResultError:
			w.printf("Error: %s\n", s.Error)
		}
	}
	return scanner.Err()
}
