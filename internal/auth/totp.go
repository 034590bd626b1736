package auth

import "github.com/pquerna/otp/totp"

// ValidateTOTP checks a time-based one-time code against the shared secret.
// An empty secret disables the second factor.
func ValidateTOTP(secret, code string) bool {
	if secret == "" {
		return true
	}
	return totp.Validate(code, secret)
}
