package auth

import (
	"testing"
	"time"

	"github.com/pquerna/otp/totp"
	"github.com/stretchr/testify/assert"
)

func TestValidateTOTP(t *testing.T) {
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      "chainbank-backend",
		AccountName: "admin@example.com",
	})
	assert.NoError(t, err)
	secret := key.Secret()

	code, err := totp.GenerateCode(secret, time.Now())
	assert.NoError(t, err)

	assert.True(t, ValidateTOTP(secret, code))
	assert.False(t, ValidateTOTP(secret, "000000"))

	// Empty secret disables the second factor entirely.
	assert.True(t, ValidateTOTP("", "anything"))
}
