package util

import (
	"encoding/base32"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// secrets from pyotp and friends come unpadded and sometimes lower case
	_ = v.RegisterValidation("totpsecret", func(fl validator.FieldLevel) bool {
		return IsValidTOTPSecret(fl.Field().String())
	})
	return v
}

// ValidateStruct checks for tag-based validation errors
func ValidateStruct(payload interface{}) error {
	err := validate.Struct(payload)
	if err != nil {
		return err
	}
	return nil
}

// IsValidTOTPSecret reports whether s decodes as base32 into at least 10 bytes.
func IsValidTOTPSecret(s string) bool {
	s = strings.ToUpper(strings.TrimRight(strings.TrimSpace(s), "="))
	raw, err := base32.StdEncoding.WithPadding(base32.NoPadding).DecodeString(s)
	return err == nil && len(raw) >= 10
}
