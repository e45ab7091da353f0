package coinselect

import (
	"fmt"

	"github.com/btcsuite/btcd/btcutil"
)

// Unit is one indivisible spendable amount offered to coin selection.
type Unit struct {
	// ID identifies the unit within a single selection. It is opaque to
	// the selector and only used for duplicate detection.
	ID string

	// Value is the amount the unit contributes when spent. It must be
	// positive.
	Value btcutil.Amount
}

// String returns a human-readable representation of the unit.
func (u Unit) String() string {
	return fmt.Sprintf("%s(%d)", u.ID, int64(u.Value))
}

// Request describes one selection.
type Request struct {
	// Candidates is the snapshot of spendable units to choose from. Their
	// order only matters for breaking ties.
	Candidates []Unit

	// Target is the amount the chosen units must cover.
	Target btcutil.Amount

	// FeePerInput is the flat fee charged for every chosen unit. It is
	// reported in the result and never influences which strategy wins.
	FeePerInput btcutil.Amount
}

// Strategy identifies the rule that produced a selection.
type Strategy uint8

const (
	// StrategyUnknown is the zero value and never produced by a
	// successful selection.
	StrategyUnknown Strategy = iota

	// StrategyExactMatch picks the first unit whose value equals the
	// target.
	StrategyExactMatch

	// StrategyMinimalSingleCover picks the smallest unit whose value is at
	// least the target.
	StrategyMinimalSingleCover

	// StrategySmallestFirst accumulates units in ascending value order
	// until the target is covered.
	StrategySmallestFirst

	// StrategyFirstFit accumulates units in input order until the target
	// is covered. It is only used as a baseline when comparing selections
	// and is not part of the Select pipeline.
	StrategyFirstFit
)

// String returns the name of the strategy.
func (s Strategy) String() string {
	switch s {
	case StrategyExactMatch:
		return "ExactMatch"

	case StrategyMinimalSingleCover:
		return "MinimalSingleCover"

	case StrategySmallestFirst:
		return "SmallestFirstAccumulation"

	case StrategyFirstFit:
		return "FirstFit"

	default:
		return fmt.Sprintf("Unknown(%d)", uint8(s))
	}
}

// ParseStrategy returns the strategy with the given name as produced by
// String.
func ParseStrategy(name string) (Strategy, error) {
	for _, s := range []Strategy{
		StrategyExactMatch, StrategyMinimalSingleCover,
		StrategySmallestFirst, StrategyFirstFit,
	} {
		if s.String() == name {
			return s, nil
		}
	}

	return StrategyUnknown, fmt.Errorf("%w: %q", ErrUnknownStrategy, name)
}

// Result is the outcome of a successful selection.
type Result struct {
	// Chosen holds the selected units. The slice is owned by the caller.
	Chosen []Unit

	// TotalValue is the sum of the values of all chosen units.
	TotalValue btcutil.Amount

	// Change is the amount by which TotalValue exceeds the target.
	Change btcutil.Amount

	// Fee is the per-input fee multiplied by the number of chosen units.
	Fee btcutil.Amount

	// Strategy is the rule that produced this selection.
	Strategy Strategy
}

// NumInputs returns the number of chosen units.
func (r *Result) NumInputs() int {
	return len(r.Chosen)
}

// newResult builds the result for the chosen units of a validated request.
func newResult(req Request, chosen []Unit, s Strategy) (*Result, error) {
	fee, err := ComputeFee(len(chosen), req.FeePerInput)
	if err != nil {
		return nil, err
	}

	var total btcutil.Amount
	for _, u := range chosen {
		total += u.Value
	}

	return &Result{
		Chosen:     chosen,
		TotalValue: total,
		Change:     total - req.Target,
		Fee:        fee,
		Strategy:   s,
	}, nil
}
