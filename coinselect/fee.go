package coinselect

import (
	"fmt"
	"math"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcwallet/wallet/txsizes"
	"github.com/drachma/walletkit/pkg/btcunit"
)

// ComputeFee returns the fee implied by spending inputCount inputs at a flat
// feePerInput each.
func ComputeFee(inputCount int, feePerInput btcutil.Amount) (btcutil.Amount,
	error) {

	if inputCount < 0 {
		return 0, fmt.Errorf("%w: negative input count %d",
			ErrInvalidParameter, inputCount)
	}

	if feePerInput < 0 {
		return 0, fmt.Errorf("%w: negative fee per input %d",
			ErrInvalidParameter, int64(feePerInput))
	}

	if inputCount > 0 &&
		int64(feePerInput) > math.MaxInt64/int64(inputCount) {

		return 0, fmt.Errorf("%w: fee for %d inputs at %d overflows",
			ErrInvalidParameter, inputCount, int64(feePerInput))
	}

	return btcutil.Amount(inputCount) * feePerInput, nil
}

// FeePerInput derives the flat per-input fee for spending an output locked by
// pkScript at the given fee rate. The input size is the best-case virtual
// size of redeeming the script, and the fee is rounded up to whole satoshis.
func FeePerInput(pkScript []byte, rate btcunit.SatPerKVByte) btcutil.Amount {
	inputSize := txsizes.GetMinInputVirtualSize(pkScript)
	if inputSize < 0 {
		inputSize = 0
	}

	return rate.FeeForVByteRoundUp(btcunit.NewVByte(uint64(inputSize)))
}
