package util

import (
	"bytes"
	"image/png"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "JBSWY3DPEHPK3PXP"

func TestGenerateTOTPCodeIsStableWithinAStep(t *testing.T) {
	at := time.Date(2025, 1, 1, 12, 0, 1, 0, time.UTC)

	first, err := GenerateTOTPCode(testSecret, at)
	require.NoError(t, err)
	second, err := GenerateTOTPCode(strings.ToLower(testSecret), at.Add(20*time.Second))
	require.NoError(t, err)

	assert.Len(t, first, 6)
	assert.Equal(t, first, second)
}

func TestGenerateTOTPCodeRejectsGarbage(t *testing.T) {
	_, err := GenerateTOTPCode("not base32 at all!", time.Now())
	assert.Error(t, err)
}

func TestGenerateSecretRoundTrip(t *testing.T) {
	secret, err := GenerateTOTPSecret("keyportal", "KEY-1")
	require.NoError(t, err)
	assert.True(t, IsValidTOTPSecret(secret))

	code, err := GenerateTOTPCode(secret, time.Now())
	require.NoError(t, err)
	assert.True(t, VerifyTOTP(secret, code))
}

func TestGetTOTPQRCode(t *testing.T) {
	raw, err := GetTOTPQRCode(testSecret, "KEY-1", "keyportal")
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(raw))
	require.NoError(t, err)
	assert.Equal(t, 256, img.Bounds().Dx())
}

func TestIsValidTOTPSecret(t *testing.T) {
	assert.True(t, IsValidTOTPSecret(testSecret))
	assert.True(t, IsValidTOTPSecret("jbswy3dpehpk3pxp"))
	assert.False(t, IsValidTOTPSecret("SHORT"))
	assert.False(t, IsValidTOTPSecret("0189!!!!0189!!!!"))
}

func TestGenerateAccessKey(t *testing.T) {
	key, err := GenerateAccessKey("KEY", 8)
	require.NoError(t, err)
	assert.Regexp(t, `^KEY-[A-Z2-9]{8}$`, key)

	bare, err := GenerateAccessKey("", 12)
	require.NoError(t, err)
	assert.Len(t, bare, 12)
}

func TestIsDuplicateKeyError(t *testing.T) {
	assert.False(t, IsDuplicateKeyError(nil))
	assert.False(t, IsDuplicateKeyError(assert.AnError))
	assert.True(t, IsDuplicateKeyError(errString(`ERROR: duplicate key value violates unique constraint "idx_access_keys_name" (SQLSTATE 23505)`)))
}

type errString string

func (e errString) Error() string { return string(e) }
