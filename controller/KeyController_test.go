package controller

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	_ "keyportal/docs"
	"keyportal/dto"
	"keyportal/model"
	"keyportal/repository"
	"keyportal/service"
)

const testSecret = "JBSWY3DPEHPK3PXP"

func newTestApp(t *testing.T, keys ...*model.AccessKey) *fiber.App {
	t.Helper()
	repo := repository.NewInMemoryAccessKeyRepo()
	for _, k := range keys {
		require.NoError(t, repo.Create(k))
	}

	pc, err := NewPageController()
	require.NoError(t, err)

	app := fiber.New()
	RegisterRoutes(app, NewKeyController(service.NewKeyService(repo, zap.NewNop()), zap.NewNop()), pc)
	return app
}

func postJSON(t *testing.T, app *fiber.App, path, body string) (*http.Response, []byte) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, raw
}

func TestValidateKeyEndpoint(t *testing.T) {
	app := newTestApp(t,
		&model.AccessKey{Name: "MULTI", Secret: testSecret, MaxUses: 5, UsageCount: 1},
		&model.AccessKey{Name: "SPENT", Secret: testSecret, MaxUses: 1, UsageCount: 1},
	)

	tests := []struct {
		name    string
		body    string
		valid   bool
		message string
	}{
		{"missing key", `{}`, false, "Key is required"},
		{"unknown key", `{"key":"NOPE"}`, false, "Invalid key provided"},
		{"valid key", `{"key":"MULTI"}`, true, "Key is valid (4 uses remaining out of 5)"},
		{"spent key", `{"key":"SPENT"}`, false, "Key has reached its usage limit (1/1 uses)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, raw := postJSON(t, app, "/validate-key", tt.body)
			assert.Equal(t, fiber.StatusOK, resp.StatusCode)

			var res dto.ValidationResponse
			require.NoError(t, json.Unmarshal(raw, &res))
			assert.Equal(t, tt.valid, res.Valid)
			assert.Equal(t, tt.message, res.Message)
		})
	}
}

func TestGetCodeEndpoint(t *testing.T) {
	app := newTestApp(t, &model.AccessKey{Name: "ONCE", Secret: testSecret, MaxUses: 1})

	resp, raw := postJSON(t, app, "/get-code", `{"key":"ONCE"}`)
	require.Equal(t, fiber.StatusOK, resp.StatusCode, string(raw))
	var ok dto.CodeResponse
	require.NoError(t, json.Unmarshal(raw, &ok))
	assert.True(t, ok.Success)
	assert.Regexp(t, `^\d{6}$`, ok.Code)
	require.NotNil(t, ok.UsageInfo)
	assert.Equal(t, dto.Remaining{Count: 0}, ok.UsageInfo.RemainingUses)

	tests := []struct {
		name   string
		body   string
		status int
		error  string
	}{
		{"spent", `{"key":"ONCE"}`, fiber.StatusForbidden, "Key has reached its usage limit (1/1 uses)"},
		{"unknown", `{"key":"NOPE"}`, fiber.StatusForbidden, "Invalid key provided"},
		{"missing", `{"key":""}`, fiber.StatusBadRequest, "Key is required"},
		{"malformed", `{"key":`, fiber.StatusBadRequest, "invalid request payload"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, raw := postJSON(t, app, "/get-code", tt.body)
			assert.Equal(t, tt.status, resp.StatusCode)

			var res dto.CodeResponse
			require.NoError(t, json.Unmarshal(raw, &res))
			assert.False(t, res.Success)
			assert.Empty(t, res.Code)
			assert.Equal(t, tt.error, res.Error)
		})
	}
}

func TestKeyInfoEndpoint(t *testing.T) {
	app := newTestApp(t, &model.AccessKey{Name: "FOREVER", Secret: testSecret, MaxUses: model.UnlimitedUses})

	resp, raw := postJSON(t, app, "/key-info", `{"key":"FOREVER"}`)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var info map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &info))
	assert.Equal(t, true, info["exists"])
	assert.Equal(t, "unlimited", info["remaining_uses"])
	assert.Equal(t, "unlimited", info["status"])

	resp, _ = postJSON(t, app, "/key-info", `{"key":"NOPE"}`)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	resp, _ = postJSON(t, app, "/key-info", `{}`)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestOversizedKeyRejected(t *testing.T) {
	app := newTestApp(t)
	resp, _ := postJSON(t, app, "/validate-key", `{"key":"`+strings.Repeat("A", 300)+`"}`)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}
