package contract

import (
	"encoding/hex"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
)

func newTestBank(t *testing.T) *Bank {
	t.Helper()
	bank, err := NewBank(common.HexToAddress("0x1111111111111111111111111111111111111111"), DefaultABI)
	assert.NoError(t, err)
	return bank
}

func TestPackDeposit(t *testing.T) {
	bank := newTestBank(t)

	data, err := bank.PackDeposit()
	assert.NoError(t, err)
	// keccak256("deposit()")[:4]
	assert.Equal(t, "d0e30db0", hex.EncodeToString(data))
}

func TestPackWithdraw(t *testing.T) {
	bank := newTestBank(t)

	amount, _ := new(big.Int).SetString("1500000000000000000", 10)
	data, err := bank.PackWithdraw(amount)
	assert.NoError(t, err)

	// keccak256("withdraw(uint256)")[:4] plus the amount as a 32-byte word
	assert.Equal(t, "2e1a7d4d", hex.EncodeToString(data[:4]))
	assert.Len(t, data, 4+32)
	assert.Equal(t, amount, new(big.Int).SetBytes(data[4:]))
}

func TestPackTransfer(t *testing.T) {
	bank := newTestBank(t)

	to := common.HexToAddress("0x2222222222222222222222222222222222222222")
	amount := big.NewInt(42)
	data, err := bank.PackTransfer(to, amount)
	assert.NoError(t, err)

	// keccak256("transfer(address,uint256)")[:4]
	assert.Equal(t, "a9059cbb", hex.EncodeToString(data[:4]))
	assert.Len(t, data, 4+64)
	assert.Equal(t, to.Bytes(), data[4+12:4+32])
	assert.Equal(t, amount, new(big.Int).SetBytes(data[4+32:]))
}

func TestNewBankRejectsBadABI(t *testing.T) {
	_, err := NewBank(common.Address{}, "not json")
	assert.Error(t, err)
}
