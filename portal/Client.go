// Package portal drives the code portal page: debounced key validation, code
// retrieval with a loading state, and transient toast notifications, over a
// typed client for the /validate-key and /get-code endpoints.
package portal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"keyportal/dto"
)

// KeyAPI is what the page needs from the server.
type KeyAPI interface {
	ValidateKey(ctx context.Context, key string) (*dto.ValidationResponse, error)
	GetCode(ctx context.Context, key string) (*dto.CodeResponse, error)
}

// Client talks to a portal server over HTTP. A non-nil error always means the
// exchange itself failed (network, timeout, undecodable body); refusals from
// the server come back as data.
type Client struct {
	baseURL string
	timeout time.Duration
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), timeout: timeout}
}

func (c *Client) ValidateKey(ctx context.Context, key string) (*dto.ValidationResponse, error) {
	var res dto.ValidationResponse
	status, err := c.post(ctx, "/validate-key", dto.ValidationRequest{Key: key}, &res)
	if err != nil {
		return nil, err
	}
	if status != fiber.StatusOK {
		return nil, fmt.Errorf("validate-key: unexpected status %d", status)
	}
	return &res, nil
}

func (c *Client) GetCode(ctx context.Context, key string) (*dto.CodeResponse, error) {
	var res dto.CodeResponse
	status, err := c.post(ctx, "/get-code", dto.CodeRequest{Key: key}, &res)
	if err != nil {
		return nil, err
	}
	// a body claiming success on an error status is still a failure
	res.Success = res.Success && status < fiber.StatusBadRequest
	return &res, nil
}

func (c *Client) post(ctx context.Context, path string, body, out interface{}) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	timeout := c.timeout
	if deadline, ok := ctx.Deadline(); ok {
		if d := time.Until(deadline); d < timeout {
			timeout = d
		}
	}

	a := fiber.Post(c.baseURL + path)
	a.JSON(body).Timeout(timeout)
	if err := a.Parse(); err != nil {
		fiber.ReleaseAgent(a)
		return 0, fmt.Errorf("%s: %w", path, err)
	}

	status, raw, errs := a.Bytes()
	if len(errs) > 0 {
		return status, fmt.Errorf("%s: %w", path, errors.Join(errs...))
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return status, fmt.Errorf("%s: decode response (status %d): %w", path, status, err)
	}
	return status, nil
}
