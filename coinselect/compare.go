package coinselect

import (
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/wire"
	"github.com/btcsuite/btcwallet/wallet/txrules"
	"github.com/shopspring/decimal"
)

// percentPrecision is the number of decimal places kept in savings
// percentages.
const percentPrecision = 1

// Comparison reports how the Select pipeline fares against first-fit
// selection, which simply spends candidates in the order given.
type Comparison struct {
	// Baseline is the first-fit result, nil if BaselineErr is set.
	Baseline    *Result
	BaselineErr error

	// Pipeline is the Select result, nil if PipelineErr is set.
	Pipeline    *Result
	PipelineErr error

	// FeeSavings is the baseline fee minus the pipeline fee. It is negative
	// when the pipeline spends more inputs than the baseline.
	FeeSavings btcutil.Amount

	// InputReduction is the baseline input count minus the pipeline input
	// count.
	InputReduction int

	// SavingsPercent is FeeSavings relative to the baseline fee, or zero
	// when the baseline pays no fee.
	SavingsPercent decimal.Decimal
}

// FirstFit runs the first-fit baseline on the request.
func FirstFit(req Request) (*Result, error) {
	return SelectWith(req, StrategyFirstFit)
}

// Compare runs both first-fit and Select over the same request. Validation
// errors abort the comparison, while a selection failure on either side is
// recorded in the comparison.
func Compare(req Request) (*Comparison, error) {
	if _, err := validateRequest(req); err != nil {
		return nil, err
	}

	c := &Comparison{SavingsPercent: decimal.Zero}
	c.Baseline, c.BaselineErr = FirstFit(req)
	c.Pipeline, c.PipelineErr = Select(req)

	if c.BaselineErr != nil || c.PipelineErr != nil {
		return c, nil
	}

	c.FeeSavings = c.Baseline.Fee - c.Pipeline.Fee
	c.InputReduction = c.Baseline.NumInputs() - c.Pipeline.NumInputs()

	if c.Baseline.Fee > 0 {
		c.SavingsPercent = decimal.NewFromInt(int64(c.FeeSavings)).
			Mul(decimal.NewFromInt(100)).
			Div(decimal.NewFromInt(int64(c.Baseline.Fee))).
			Round(percentPrecision)
	}

	return c, nil
}

// DustCount returns how many of the units would be dust at the given relay
// fee if held in an output locked by pkScript.
func DustCount(units []Unit, relayFeePerKb btcutil.Amount,
	pkScript []byte) int {

	var count int
	for _, u := range units {
		output := wire.TxOut{Value: int64(u.Value), PkScript: pkScript}
		if txrules.IsDustOutput(&output, relayFeePerKb) {
			count++
		}
	}

	return count
}
