package coinselect

import (
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/wire"
	"github.com/btcsuite/btcwallet/wtxmgr"
)

// Coin represents a spendable UTXO which is available for coin selection.
type Coin struct {
	wire.TxOut
	wire.OutPoint
}

// UnitsFromCoins converts coins into selection units identified by their
// outpoints.
func UnitsFromCoins(coins []Coin) []Unit {
	units := make([]Unit, 0, len(coins))
	for _, c := range coins {
		units = append(units, Unit{
			ID:    c.OutPoint.String(),
			Value: btcutil.Amount(c.Value),
		})
	}

	return units
}

// UnitsFromCredits converts credits from the transaction store into
// selection units identified by their outpoints.
func UnitsFromCredits(credits []wtxmgr.Credit) []Unit {
	units := make([]Unit, 0, len(credits))
	for _, c := range credits {
		units = append(units, Unit{
			ID:    c.OutPoint.String(),
			Value: c.Amount,
		})
	}

	return units
}

// ChosenCoins returns the coins backing the chosen units of a result, in the
// order they were chosen. Units that do not belong to any of the coins are
// skipped.
func ChosenCoins(coins []Coin, result *Result) []Coin {
	byID := make(map[string]Coin, len(coins))
	for _, c := range coins {
		byID[c.OutPoint.String()] = c
	}

	chosen := make([]Coin, 0, len(result.Chosen))
	for _, u := range result.Chosen {
		if c, ok := byID[u.ID]; ok {
			chosen = append(chosen, c)
		}
	}

	return chosen
}
