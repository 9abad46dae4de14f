package dto

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// KeyRequest is the body of /validate-key, /get-code and /key-info.
// An empty key is not a validation error: the endpoints answer it with their own message.
type KeyRequest struct {
	Key string `json:"key" validate:"max=255"`
}

type (
	ValidationRequest = KeyRequest
	CodeRequest       = KeyRequest
)

type ValidationResponse struct {
	Valid     bool       `json:"valid"`
	Message   string     `json:"message"`
	UsageInfo *UsageInfo `json:"usage_info,omitempty"`
}

type CodeResponse struct {
	Success   bool       `json:"success"`
	Code      string     `json:"code,omitempty"`
	Error     string     `json:"error,omitempty"`
	UsageInfo *UsageInfo `json:"usage_info,omitempty"`
}

type UsageInfo struct {
	MaxUses       int       `json:"max_uses"`
	UsageCount    int       `json:"usage_count"`
	RemainingUses Remaining `json:"remaining_uses"`
}

type KeyInfoResponse struct {
	Exists        bool       `json:"exists"`
	MaxUses       int        `json:"max_uses"`
	UsageCount    int        `json:"usage_count"`
	RemainingUses Remaining  `json:"remaining_uses"`
	IsValid       bool       `json:"is_valid"`
	Status        string     `json:"status"`
	LastUsed      *time.Time `json:"last_used,omitempty"`
	CreatedAt     *time.Time `json:"created_at,omitempty"`
}

// Remaining encodes as a number, or as the string "unlimited" when Unlimited is set.
type Remaining struct {
	Count     int
	Unlimited bool
}

var unlimitedJSON = []byte(`"unlimited"`)

func (r Remaining) MarshalJSON() ([]byte, error) {
	if r.Unlimited {
		return unlimitedJSON, nil
	}
	return []byte(strconv.Itoa(r.Count)), nil
}

func (r *Remaining) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, unlimitedJSON) {
		*r = Remaining{Unlimited: true}
		return nil
	}
	var n int
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("remaining_uses must be a number or \"unlimited\": %w", err)
	}
	*r = Remaining{Count: n}
	return nil
}

func (r Remaining) String() string {
	if r.Unlimited {
		return "unlimited"
	}
	return strconv.Itoa(r.Count)
}
