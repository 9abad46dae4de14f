package util

import (
	"bytes"
	"fmt"
	"image/png"
	"net/url"
	"strings"
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

// GenerateTOTPSecret creates a fresh base32 secret for a new access key
func GenerateTOTPSecret(issuer, accountName string) (string, error) {
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      issuer,
		AccountName: accountName,
	})
	if err != nil {
		return "", fmt.Errorf("failed to generate TOTP secret: %w", err)
	}
	return key.Secret(), nil
}

// GenerateTOTPCode returns the 6 digit code for secret at the given instant.
func GenerateTOTPCode(secret string, at time.Time) (string, error) {
	code, err := totp.GenerateCode(NormalizeSecret(secret), at)
	if err != nil {
		return "", fmt.Errorf("failed to generate TOTP code: %w", err)
	}
	return code, nil
}

// VerifyTOTP validates a TOTP token
func VerifyTOTP(secret, token string) bool {
	return totp.Validate(token, NormalizeSecret(secret))
}

// GetTOTPQRCode renders the otpauth:// enrollment URL of a key as a PNG
func GetTOTPQRCode(secret, accountName, issuer string) ([]byte, error) {
	q := url.Values{}
	q.Set("secret", NormalizeSecret(secret))
	q.Set("issuer", issuer)
	u := url.URL{
		Scheme:   "otpauth",
		Host:     "totp",
		Path:     "/" + issuer + ":" + accountName,
		RawQuery: q.Encode(),
	}

	key, err := otp.NewKeyFromURL(u.String())
	if err != nil {
		return nil, fmt.Errorf("failed to create OTP key: %w", err)
	}

	img, err := key.Image(256, 256)
	if err != nil {
		return nil, fmt.Errorf("failed to generate QR code: %w", err)
	}

	buf := new(bytes.Buffer)
	if err := png.Encode(buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode QR code to PNG: %w", err)
	}

	return buf.Bytes(), nil
}

func NormalizeSecret(secret string) string {
	return strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(secret), " ", ""))
}
