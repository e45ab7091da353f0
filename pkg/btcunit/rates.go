// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package btcunit provides fee rate and size units used to turn a market fee
// rate into the flat per-input fee consumed by coin selection.
package btcunit

import (
	"log/slog"
	"math"
	"math/big"

	"github.com/btcsuite/btcd/btcutil"
)

const (
	// kilo is a generic multiplier for kilo units.
	kilo = 1000

	// floatStringPrecision is the number of decimal places to use when
	// converting a fee rate to a string. Three places keep rates such as
	// 1 sat/kvb (0.001 sat/vb) from rounding to zero.
	floatStringPrecision = 3
)

var (
	// ZeroSatPerVByte is a fee rate of 0 sat/vb.
	ZeroSatPerVByte = NewSatPerVByte(0)

	// ZeroSatPerKVByte is a fee rate of 0 sat/kvb.
	ZeroSatPerKVByte = NewSatPerKVByte(0)
)

// baseFeeRate stores the canonical representation of a fee rate, which is
// satoshis per kilo-vbyte (sat/kvb).
type baseFeeRate struct {
	satsPerKVB *big.Rat
}

// newBaseFeeRate creates a fee rate of numerator satoshis per denominator
// kilo-vbytes. A zero denominator yields a zero fee rate.
func newBaseFeeRate(numerator btcutil.Amount, denominator uint64) baseFeeRate {
	if denominator == 0 {
		return baseFeeRate{satsPerKVB: big.NewRat(0, 1)}
	}

	return baseFeeRate{satsPerKVB: big.NewRat(
		int64(numerator), safeUint64ToInt64(denominator),
	)}
}

// feeRational returns the exact fee for the given size as a rational.
func (f baseFeeRate) feeRational(vb VByte) *big.Rat {
	fee := big.NewRat(0, 1)

	return fee.Mul(
		f.satsPerKVB, big.NewRat(safeUint64ToInt64(vb.vb), kilo),
	)
}

// FeeForVByte calculates the fee resulting from this fee rate and the given
// size. The result is truncated to whole satoshis.
func (f baseFeeRate) FeeForVByte(vb VByte) btcutil.Amount {
	fee := f.feeRational(vb)

	quotient := big.NewInt(0)
	quotient.Quo(fee.Num(), fee.Denom())

	return btcutil.Amount(quotient.Int64())
}

// FeeForVByteRoundUp calculates the fee resulting from this fee rate and the
// given size, rounding up to the nearest satoshi.
func (f baseFeeRate) FeeForVByteRoundUp(vb VByte) btcutil.Amount {
	fee := f.feeRational(vb)

	// Ceiling division: (numerator + denominator - 1) / denominator.
	result := big.NewInt(0)
	result.Add(fee.Num(), fee.Denom())
	result.Sub(result, big.NewInt(1))
	result.Quo(result, fee.Denom())

	return btcutil.Amount(result.Int64())
}

// equal returns true if the fee rate is equal to the other fee rate.
func (f baseFeeRate) equal(other baseFeeRate) bool {
	return f.satsPerKVB.Cmp(other.satsPerKVB) == 0
}

// lessThan returns true if the fee rate is less than the other fee rate.
func (f baseFeeRate) lessThan(other baseFeeRate) bool {
	return f.satsPerKVB.Cmp(other.satsPerKVB) < 0
}

// SatPerVByte represents a fee rate in sat/vbyte.
type SatPerVByte struct {
	baseFeeRate
}

// NewSatPerVByte creates a new fee rate in sat/vb.
func NewSatPerVByte(rate btcutil.Amount) SatPerVByte {
	return CalcSatPerVByte(rate, NewVByte(1))
}

// CalcSatPerVByte calculates the fee rate in sat/vb for a given fee and size.
func CalcSatPerVByte(fee btcutil.Amount, vb VByte) SatPerVByte {
	// sat/kvb = fee * 1000 / vbytes.
	if vb.vb == 0 {
		return SatPerVByte{newBaseFeeRate(0, 0)}
	}

	rate := big.NewRat(int64(fee)*kilo, safeUint64ToInt64(vb.vb))

	return SatPerVByte{baseFeeRate{satsPerKVB: rate}}
}

// ToSatPerKVByte converts the fee rate to sat/kvb.
func (s SatPerVByte) ToSatPerKVByte() SatPerKVByte {
	return SatPerKVByte{s.baseFeeRate}
}

// String returns a human-readable string of the fee rate.
func (s SatPerVByte) String() string {
	vbRate := big.NewRat(0, 1)
	vbRate.Mul(s.satsPerKVB, big.NewRat(1, kilo))

	return vbRate.FloatString(floatStringPrecision) + " sat/vb"
}

// Equal returns true if the fee rate is equal to the other fee rate.
func (s SatPerVByte) Equal(other SatPerVByte) bool {
	return s.equal(other.baseFeeRate)
}

// LessThan returns true if the fee rate is less than the other fee rate.
func (s SatPerVByte) LessThan(other SatPerVByte) bool {
	return s.lessThan(other.baseFeeRate)
}

// SatPerKVByte represents a fee rate in sat/kvb, the unit the relay policy
// helpers of the wallet operate on.
type SatPerKVByte struct {
	baseFeeRate
}

// NewSatPerKVByte creates a new fee rate in sat/kvb.
func NewSatPerKVByte(rate btcutil.Amount) SatPerKVByte {
	return SatPerKVByte{newBaseFeeRate(rate, 1)}
}

// ToSatPerVByte converts the fee rate to sat/vb.
func (s SatPerKVByte) ToSatPerVByte() SatPerVByte {
	return SatPerVByte{s.baseFeeRate}
}

// Amount returns the fee rate as whole satoshis per kvb, truncating any
// fractional part.
func (s SatPerKVByte) Amount() btcutil.Amount {
	quotient := big.NewInt(0)
	quotient.Quo(s.satsPerKVB.Num(), s.satsPerKVB.Denom())

	return btcutil.Amount(quotient.Int64())
}

// String returns a human-readable string of the fee rate.
func (s SatPerKVByte) String() string {
	return s.satsPerKVB.FloatString(floatStringPrecision) + " sat/kvb"
}

// Equal returns true if the fee rate is equal to the other fee rate.
func (s SatPerKVByte) Equal(other SatPerKVByte) bool {
	return s.equal(other.baseFeeRate)
}

// LessThan returns true if the fee rate is less than the other fee rate.
func (s SatPerKVByte) LessThan(other SatPerKVByte) bool {
	return s.lessThan(other.baseFeeRate)
}

// safeUint64ToInt64 converts a uint64 to an int64, capping at
// math.MaxInt64.
func safeUint64ToInt64(u uint64) int64 {
	if u > math.MaxInt64 {
		slog.Warn("Capping uint64 value to math.MaxInt64",
			slog.Uint64("old", u), slog.Int64("new", math.MaxInt64))

		return math.MaxInt64
	}

	return int64(u)
}
