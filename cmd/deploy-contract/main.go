package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"math/big"
	"os"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/sirupsen/logrus"

	"chainbank-backend/internal/chain"
	"chainbank-backend/internal/config"
)

// compiledArtifact is the solc output shape stored alongside the ABI.
type compiledArtifact struct {
	ABI      json.RawMessage `json:"abi"`
	Bytecode string          `json:"bytecode"`
}

// Deploys the Bank contract using the configured operator key and prints the
// deployed address for the config file.
func main() {
	configPath := flag.String("config", "", "path to yaml config file")
	artifactPath := flag.String("artifact", "contracts/bank_compiled.json", "path to compiled contract artifact")
	flag.Parse()

	logger := logrus.New()

	if err := config.LoadConfig(*configPath); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	cfg := config.AppConfig

	if cfg.Chain.OperatorPrivateKey == "" {
		log.Fatal("OPERATOR_PRIVATE_KEY is required to deploy")
	}

	data, err := os.ReadFile(*artifactPath)
	if err != nil {
		log.Fatalf("Failed to read artifact %s: %v", *artifactPath, err)
	}
	var artifact compiledArtifact
	if err := json.Unmarshal(data, &artifact); err != nil {
		log.Fatalf("Failed to parse artifact: %v", err)
	}
	if artifact.Bytecode == "" {
		log.Fatal("Artifact has no bytecode")
	}

	parsedABI, err := abi.JSON(strings.NewReader(string(artifact.ABI)))
	if err != nil {
		log.Fatalf("Failed to parse ABI: %v", err)
	}

	client, err := chain.Dial(cfg.Chain.RPCEndpoints, cfg.Chain.ChainID, logger)
	if err != nil {
		log.Fatalf("Failed to connect to chain RPC: %v", err)
	}

	key, err := crypto.HexToECDSA(strings.TrimPrefix(cfg.Chain.OperatorPrivateKey, "0x"))
	if err != nil {
		log.Fatalf("Invalid operator private key: %v", err)
	}

	auth, err := bind.NewKeyedTransactorWithChainID(key, big.NewInt(cfg.Chain.ChainID))
	if err != nil {
		log.Fatalf("Failed to build transactor: %v", err)
	}
	auth.GasLimit = cfg.Chain.GasLimit * 10 // deployment needs more than a single call

	address, tx, _, err := bind.DeployContract(auth, parsedABI, common.FromHex(artifact.Bytecode), client)
	if err != nil {
		log.Fatalf("Deployment failed: %v", err)
	}

	log.Printf("Deployment transaction: %s", tx.Hash().Hex())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()
	deployed, err := bind.WaitDeployed(ctx, client, tx)
	if err != nil {
		log.Fatalf("Waiting for deployment failed: %v", err)
	}
	if deployed != address {
		log.Printf("WARNING: receipt address %s differs from computed address %s", deployed.Hex(), address.Hex())
	}

	log.Printf("Bank contract deployed at %s", deployed.Hex())
	log.Printf("Set chain.contractAddress (or BANK_CONTRACT_ADDRESS) to %s", address.Hex())
}
