package main

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"keyportal/dto"
	"keyportal/portal"
)

type stubAPI struct {
	codes map[string]*dto.CodeResponse
}

func (s *stubAPI) ValidateKey(context.Context, string) (*dto.ValidationResponse, error) {
	return &dto.ValidationResponse{Valid: true, Message: "ok"}, nil
}

func (s *stubAPI) GetCode(_ context.Context, key string) (*dto.CodeResponse, error) {
	res, ok := s.codes[key]
	if !ok {
		return nil, errors.New("connection reset")
	}
	return res, nil
}

func TestRunFetch(t *testing.T) {
	api := &stubAPI{codes: map[string]*dto.CodeResponse{
		"GOOD":  {Success: true, Code: "287082"},
		"SPENT": {Error: "Key has reached its usage limit (1/1 uses)"},
	}}
	in := strings.NewReader("GOOD\nSPENT\n\nBROKEN\n.clear\n")
	var out bytes.Buffer

	opts := portal.Options{Debounce: time.Hour, ToastLifetime: time.Hour}
	require.NoError(t, runFetch(context.Background(), api, opts, in, &out))

	text := out.String()
	assert.Contains(t, text, "Code: 287082")
	assert.Contains(t, text, "[success] Code retrieved successfully!")
	assert.Contains(t, text, "Error: Key has reached its usage limit (1/1 uses)")
	assert.Contains(t, text, "[error] Please enter your access key")
	assert.Contains(t, text, "Error: Network error. Please check your connection.")
	assert.Contains(t, text, "[error] Network error. Please try again.")
}
