package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the application configuration structure.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Chain    ChainConfig    `yaml:"chain"`
	Auth     AuthConfig     `yaml:"auth"`
	CORS     CORSConfig     `yaml:"cors"`
	NATS     NATSConfig     `yaml:"nats"`
}

// ServerConfig server configuration.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// DatabaseConfig database configuration.
type DatabaseConfig struct {
	DSN    string `yaml:"dsn"`
	Driver string `yaml:"driver"`
}

// ChainConfig blockchain gateway configuration. The operator key lives here
// (config file or environment), never in request bodies.
type ChainConfig struct {
	RPCEndpoints       []string `yaml:"rpcEndpoints"`
	ChainID            int64    `yaml:"chainId"`
	ContractAddress    string   `yaml:"contractAddress"`
	ABIPath            string   `yaml:"abiPath"`
	GasLimit           uint64   `yaml:"gasLimit"`
	GasPrice           string   `yaml:"gasPrice"` // wei, or "auto" / empty for SuggestGasPrice
	OperatorPrivateKey string   `yaml:"operatorPrivateKey"`
	ReceiptTimeoutSec  int      `yaml:"receiptTimeoutSeconds"`
}

// AuthConfig token and password authentication configuration.
type AuthConfig struct {
	JWTSecret          string `yaml:"jwtSecret"`
	TokenExpiryMinutes int    `yaml:"tokenExpiryMinutes"`
	Issuer             string `yaml:"issuer"`
	AdminTOTPSecret    string `yaml:"adminTotpSecret"`
}

// CORSConfig CORS configuration.
type CORSConfig struct {
	AllowedOrigins   []string `yaml:"allowedOrigins"`
	AllowCredentials bool     `yaml:"allowCredentials"`
	MaxAge           int      `yaml:"maxAge"`
}

// NATSConfig optional event publisher configuration.
type NATSConfig struct {
	URL string `yaml:"url"`
}

// Defaults applied when neither the config file nor the environment provides
// a value. Chain ID 11155111 is Sepolia; gas limit 210000 matches the fixed
// limit the contract operations were deployed with.
const (
	DefaultChainID           = 11155111
	DefaultGasLimit          = 210000
	DefaultTokenExpiryMin    = 30
	DefaultReceiptTimeoutSec = 180
	DefaultIssuer            = "chainbank-backend"
)

var AppConfig *Config

// LoadConfig reads the yaml config file (config.local.yaml wins over
// config.yaml when present), then applies environment overrides.
func LoadConfig(configPath string) error {
	// .env is optional; ignore a missing file.
	_ = godotenv.Load()

	if configPath == "" {
		configPath = "config.yaml"
		if _, err := os.Stat("config.local.yaml"); err == nil {
			configPath = "config.local.yaml"
		}
	}

	var config Config
	if data, err := os.ReadFile(configPath); err == nil {
		if err := yaml.Unmarshal(data, &config); err != nil {
			return fmt.Errorf("failed to parse config file %s: %w", configPath, err)
		}
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("failed to read config file %s: %w", configPath, err)
	}

	overrideFromEnv(&config)
	applyDefaults(&config)

	if config.Auth.JWTSecret == "" {
		return fmt.Errorf("auth.jwtSecret (or JWT_SECRET) is required")
	}

	AppConfig = &config
	return nil
}

func applyDefaults(config *Config) {
	if config.Server.Port == 0 {
		config.Server.Port = 8080
	}
	if config.Database.Driver == "" {
		config.Database.Driver = "postgres"
	}
	if config.Chain.ChainID == 0 {
		config.Chain.ChainID = DefaultChainID
	}
	if config.Chain.GasLimit == 0 {
		config.Chain.GasLimit = DefaultGasLimit
	}
	if config.Chain.ReceiptTimeoutSec == 0 {
		config.Chain.ReceiptTimeoutSec = DefaultReceiptTimeoutSec
	}
	if config.Chain.ABIPath == "" {
		config.Chain.ABIPath = "contracts/bank_abi.json"
	}
	if config.Auth.TokenExpiryMinutes == 0 {
		config.Auth.TokenExpiryMinutes = DefaultTokenExpiryMin
	}
	if config.Auth.Issuer == "" {
		config.Auth.Issuer = DefaultIssuer
	}
}

func overrideFromEnv(config *Config) {
	if dsn := os.Getenv("DATABASE_DSN"); dsn != "" {
		config.Database.DSN = dsn
	}
	if dsn := os.Getenv("DATABASE_URL"); dsn != "" && config.Database.DSN == "" {
		config.Database.DSN = dsn
	}
	if host := os.Getenv("SERVER_HOST"); host != "" {
		config.Server.Host = host
	}
	if port := os.Getenv("SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}

	if endpoints := os.Getenv("CHAIN_RPC_ENDPOINTS"); endpoints != "" {
		parts := strings.Split(endpoints, ",")
		config.Chain.RPCEndpoints = config.Chain.RPCEndpoints[:0]
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				config.Chain.RPCEndpoints = append(config.Chain.RPCEndpoints, trimmed)
			}
		}
	}
	// INFURA_PROJECT_ID alone is enough to reach Sepolia.
	if projectID := os.Getenv("INFURA_PROJECT_ID"); projectID != "" && len(config.Chain.RPCEndpoints) == 0 {
		config.Chain.RPCEndpoints = []string{"https://sepolia.infura.io/v3/" + projectID}
	}
	if chainID := os.Getenv("CHAIN_ID"); chainID != "" {
		if id, err := strconv.ParseInt(chainID, 10, 64); err == nil {
			config.Chain.ChainID = id
		}
	}
	if addr := os.Getenv("BANK_CONTRACT_ADDRESS"); addr != "" {
		config.Chain.ContractAddress = addr
	}
	if abiPath := os.Getenv("BANK_CONTRACT_ABI"); abiPath != "" {
		config.Chain.ABIPath = abiPath
	}
	if gasLimit := os.Getenv("CHAIN_GAS_LIMIT"); gasLimit != "" {
		if limit, err := strconv.ParseUint(gasLimit, 10, 64); err == nil {
			config.Chain.GasLimit = limit
		}
	}
	if gasPrice := os.Getenv("CHAIN_GAS_PRICE"); gasPrice != "" {
		config.Chain.GasPrice = gasPrice
	}
	if key := os.Getenv("OPERATOR_PRIVATE_KEY"); key != "" {
		config.Chain.OperatorPrivateKey = key
	}
	if timeout := os.Getenv("RECEIPT_TIMEOUT_SECONDS"); timeout != "" {
		if t, err := strconv.Atoi(timeout); err == nil {
			config.Chain.ReceiptTimeoutSec = t
		}
	}

	if secret := os.Getenv("JWT_SECRET"); secret != "" {
		config.Auth.JWTSecret = secret
	}
	if secret := os.Getenv("SECRET_KEY"); secret != "" && config.Auth.JWTSecret == "" {
		config.Auth.JWTSecret = secret
	}
	if expiry := os.Getenv("ACCESS_TOKEN_EXPIRE_MINUTES"); expiry != "" {
		if m, err := strconv.Atoi(expiry); err == nil {
			config.Auth.TokenExpiryMinutes = m
		}
	}
	if secret := os.Getenv("ADMIN_TOTP_SECRET"); secret != "" {
		config.Auth.AdminTOTPSecret = secret
	}

	if natsURL := os.Getenv("NATS_URL"); natsURL != "" {
		config.NATS.URL = natsURL
	}

	if corsOrigins := os.Getenv("CORS_ALLOWED_ORIGINS"); corsOrigins != "" {
		origins := strings.Split(corsOrigins, ",")
		config.CORS.AllowedOrigins = make([]string, 0, len(origins))
		for _, origin := range origins {
			if trimmed := strings.TrimSpace(origin); trimmed != "" {
				config.CORS.AllowedOrigins = append(config.CORS.AllowedOrigins, trimmed)
			}
		}
	}
}
