package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	assert.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	path := writeConfig(t, `
auth:
  jwtSecret: unit-test-secret
`)

	assert.NoError(t, LoadConfig(path))

	assert.Equal(t, 8080, AppConfig.Server.Port)
	assert.Equal(t, int64(DefaultChainID), AppConfig.Chain.ChainID)
	assert.Equal(t, uint64(DefaultGasLimit), AppConfig.Chain.GasLimit)
	assert.Equal(t, DefaultReceiptTimeoutSec, AppConfig.Chain.ReceiptTimeoutSec)
	assert.Equal(t, DefaultTokenExpiryMin, AppConfig.Auth.TokenExpiryMinutes)
	assert.Equal(t, DefaultIssuer, AppConfig.Auth.Issuer)
}

func TestLoadConfigRequiresJWTSecret(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9000
`)

	err := LoadConfig(path)
	assert.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	path := writeConfig(t, `
auth:
  jwtSecret: from-file
chain:
  chainId: 1
`)

	t.Setenv("JWT_SECRET", "from-env")
	t.Setenv("CHAIN_ID", "1337")
	t.Setenv("CHAIN_RPC_ENDPOINTS", "http://node-a:8545, http://node-b:8545")
	t.Setenv("BANK_CONTRACT_ADDRESS", "0x2222222222222222222222222222222222222222")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example.com,https://b.example.com")

	assert.NoError(t, LoadConfig(path))

	assert.Equal(t, "from-env", AppConfig.Auth.JWTSecret)
	assert.Equal(t, int64(1337), AppConfig.Chain.ChainID)
	assert.Equal(t, []string{"http://node-a:8545", "http://node-b:8545"}, AppConfig.Chain.RPCEndpoints)
	assert.Equal(t, "0x2222222222222222222222222222222222222222", AppConfig.Chain.ContractAddress)
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, AppConfig.CORS.AllowedOrigins)
}

func TestInfuraProjectIDExpansion(t *testing.T) {
	path := writeConfig(t, `
auth:
  jwtSecret: unit-test-secret
`)

	t.Setenv("INFURA_PROJECT_ID", "abc123")

	assert.NoError(t, LoadConfig(path))
	assert.Equal(t, []string{"https://sepolia.infura.io/v3/abc123"}, AppConfig.Chain.RPCEndpoints)
}
