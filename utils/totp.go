package utils

import (
	"encoding/base32"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

var b32 = base32.StdEncoding.WithPadding(base32.NoPadding)

// GenerateTOTPSecret returns a fresh base32 shared secret for an
// authenticator app.
func GenerateTOTPSecret() (string, error) {
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      "microblog",
		AccountName: "pending",
	})
	if err != nil {
		return "", err
	}
	return key.Secret(), nil
}

// TOTPProvisioningURI builds the otpauth:// URI encoding secret, label and
// issuer for enrollment via QR code.
func TOTPProvisioningURI(secret, label, issuer string) (string, error) {
	raw, err := b32.DecodeString(secret)
	if err != nil {
		return "", err
	}
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      issuer,
		AccountName: label,
		Secret:      raw,
	})
	if err != nil {
		return "", err
	}
	return key.URL(), nil
}

// VerifyTOTP checks a 6-digit code against the current time step with one
// step of clock-skew tolerance in either direction.
func VerifyTOTP(secret, code string) bool {
	ok, err := totp.ValidateCustom(code, secret, timeNow(), totp.ValidateOpts{
		Period:    30,
		Skew:      1,
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	})
	return err == nil && ok
}
