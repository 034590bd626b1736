package utils

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEtherToWei(t *testing.T) {
	t.Run("whole ether", func(t *testing.T) {
		wei, err := EtherToWei("1")
		assert.NoError(t, err)
		assert.Equal(t, "1000000000000000000", wei.String())
	})

	t.Run("fractional ether", func(t *testing.T) {
		wei, err := EtherToWei("1.5")
		assert.NoError(t, err)
		assert.Equal(t, "1500000000000000000", wei.String())
	})

	t.Run("single wei", func(t *testing.T) {
		wei, err := EtherToWei("0.000000000000000001")
		assert.NoError(t, err)
		assert.Equal(t, "1", wei.String())
	})

	t.Run("rejects sub-wei precision", func(t *testing.T) {
		_, err := EtherToWei("0.0000000000000000001")
		assert.Error(t, err)
	})

	t.Run("rejects zero and negative", func(t *testing.T) {
		_, err := EtherToWei("0")
		assert.Error(t, err)
		_, err = EtherToWei("-1")
		assert.Error(t, err)
	})

	t.Run("rejects garbage", func(t *testing.T) {
		_, err := EtherToWei("")
		assert.Error(t, err)
		_, err = EtherToWei("abc")
		assert.Error(t, err)
	})
}

func TestWeiToEther(t *testing.T) {
	wei := new(big.Int)
	wei.SetString("1500000000000000000", 10)
	assert.Equal(t, "1.5", WeiToEther(wei))

	assert.Equal(t, "0.000000000000000001", WeiToEther(big.NewInt(1)))
	assert.Equal(t, "0", WeiToEther(big.NewInt(0)))
	assert.Equal(t, "0", WeiToEther(nil))
}

func TestRoundTrip(t *testing.T) {
	for _, amount := range []string{"1", "0.1", "123.456789", "0.000000000000000001"} {
		wei, err := EtherToWei(amount)
		assert.NoError(t, err)

		back, err := EtherToWei(WeiToEther(wei))
		assert.NoError(t, err)
		assert.Equal(t, wei.String(), back.String(), "round trip for %s", amount)
	}
}
