package coinselect

import (
	"fmt"
	"sync"
	"testing"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/stretchr/testify/require"
)

// defaultFeePerInput is the flat fee used by the reference scenarios.
const defaultFeePerInput = btcutil.Amount(150)

// makeUnits creates units with deterministic IDs from the given values.
func makeUnits(values ...btcutil.Amount) []Unit {
	units := make([]Unit, 0, len(values))
	for i, v := range values {
		units = append(units, Unit{
			ID:    fmt.Sprintf("utxo-%d", i),
			Value: v,
		})
	}

	return units
}

// values returns the values of the given units in order.
func values(units []Unit) []btcutil.Amount {
	vals := make([]btcutil.Amount, 0, len(units))
	for _, u := range units {
		vals = append(vals, u.Value)
	}

	return vals
}

// TestSelectScenarios checks the pipeline against the reference scenarios.
func TestSelectScenarios(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name           string
		candidates     []Unit
		target         btcutil.Amount
		expectedChosen []btcutil.Amount
		expectedTotal  btcutil.Amount
		expectedChange btcutil.Amount
		expectedFee    btcutil.Amount
		expectedStrat  Strategy
		expectedErr    error
	}{
		{
			name:           "exact match",
			candidates:     makeUnits(1000, 5000, 10000, 2500),
			target:         5000,
			expectedChosen: []btcutil.Amount{5000},
			expectedTotal:  5000,
			expectedChange: 0,
			expectedFee:    150,
			expectedStrat:  StrategyExactMatch,
		},
		{
			name:           "minimal single cover",
			candidates:     makeUnits(100, 500, 1000, 6000),
			target:         3000,
			expectedChosen: []btcutil.Amount{6000},
			expectedTotal:  6000,
			expectedChange: 3000,
			expectedFee:    150,
			expectedStrat:  StrategyMinimalSingleCover,
		},
		{
			name:       "smallest first accumulation",
			candidates: makeUnits(500, 800, 1200, 300, 600),
			target:     2000,
			expectedChosen: []btcutil.Amount{
				300, 500, 600, 800,
			},
			expectedTotal:  2200,
			expectedChange: 200,
			expectedFee:    600,
			expectedStrat:  StrategySmallestFirst,
		},
		{
			// A single large unit wins over consolidating the
			// small ones.
			name:           "large unit beats dust",
			candidates:     makeUnits(100, 150, 200, 250, 5000),
			target:         600,
			expectedChosen: []btcutil.Amount{5000},
			expectedTotal:  5000,
			expectedChange: 4400,
			expectedFee:    150,
			expectedStrat:  StrategyMinimalSingleCover,
		},
		{
			name:        "no candidates",
			candidates:  nil,
			target:      100,
			expectedErr: ErrNoCandidates,
		},
		{
			name:        "insufficient funds",
			candidates:  makeUnits(50, 50),
			target:      1000,
			expectedErr: ErrInsufficientFunds,
		},
		{
			name:        "zero target",
			candidates:  makeUnits(50, 50),
			target:      0,
			expectedErr: ErrInvalidTarget,
		},
		{
			name:        "zero target without candidates",
			candidates:  nil,
			target:      0,
			expectedErr: ErrInvalidTarget,
		},
		{
			name:        "negative target",
			candidates:  makeUnits(50),
			target:      -1,
			expectedErr: ErrInvalidTarget,
		},
		{
			name:           "whole set exactly covers target",
			candidates:     makeUnits(400, 100, 500),
			target:         1000,
			expectedChosen: []btcutil.Amount{100, 400, 500},
			expectedTotal:  1000,
			expectedChange: 0,
			expectedFee:    450,
			expectedStrat:  StrategySmallestFirst,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			result, err := SelectCoins(
				tc.candidates, tc.target, defaultFeePerInput,
			)
			if tc.expectedErr != nil {
				require.ErrorIs(t, err, tc.expectedErr)
				require.Nil(t, result)

				return
			}

			require.NoError(t, err)
			require.Equal(t, tc.expectedChosen, values(result.Chosen))
			require.Equal(t, tc.expectedTotal, result.TotalValue)
			require.Equal(t, tc.expectedChange, result.Change)
			require.Equal(t, tc.expectedFee, result.Fee)
			require.Equal(t, tc.expectedStrat, result.Strategy)
		})
	}
}

// TestSelectValidation checks that caller errors are reported in order.
func TestSelectValidation(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name        string
		req         Request
		expectedErr error
	}{
		{
			name: "target above max satoshi",
			req: Request{
				Candidates: makeUnits(1),
				Target:     btcutil.MaxSatoshi + 1,
			},
			expectedErr: ErrInvalidTarget,
		},
		{
			name: "duplicate id",
			req: Request{
				Candidates: []Unit{
					{ID: "a", Value: 100},
					{ID: "b", Value: 200},
					{ID: "a", Value: 300},
				},
				Target: 100,
			},
			expectedErr: ErrDuplicateCandidate,
		},
		{
			name: "duplicate empty id",
			req: Request{
				Candidates: []Unit{
					{Value: 100}, {Value: 200},
				},
				Target: 100,
			},
			expectedErr: ErrDuplicateCandidate,
		},
		{
			// Duplicates take precedence over invalid values.
			name: "duplicate after invalid unit",
			req: Request{
				Candidates: []Unit{
					{ID: "a", Value: 0},
					{ID: "a", Value: 300},
				},
				Target: 100,
			},
			expectedErr: ErrDuplicateCandidate,
		},
		{
			name: "zero value unit",
			req: Request{
				Candidates: []Unit{
					{ID: "a", Value: 100},
					{ID: "b", Value: 0},
				},
				Target: 100,
			},
			expectedErr: ErrInvalidUnit,
		},
		{
			name: "negative value unit",
			req: Request{
				Candidates: []Unit{{ID: "a", Value: -5}},
				Target:     1,
			},
			expectedErr: ErrInvalidUnit,
		},
		{
			name: "unit above max satoshi",
			req: Request{
				Candidates: []Unit{
					{ID: "a", Value: btcutil.MaxSatoshi + 1},
				},
				Target: 1,
			},
			expectedErr: ErrInvalidUnit,
		},
		{
			name: "negative fee per input",
			req: Request{
				Candidates:  makeUnits(100),
				Target:      100,
				FeePerInput: -1,
			},
			expectedErr: ErrInvalidParameter,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			result, err := Select(tc.req)
			require.ErrorIs(t, err, tc.expectedErr)
			require.Nil(t, result)
		})
	}
}

// TestSelectTieBreaks checks that equal values resolve by input order.
func TestSelectTieBreaks(t *testing.T) {
	t.Parallel()

	// Exact match picks the first equal unit.
	candidates := []Unit{
		{ID: "big", Value: 9000},
		{ID: "first", Value: 500},
		{ID: "second", Value: 500},
	}
	result, err := SelectCoins(candidates, 500, 0)
	require.NoError(t, err)
	require.Equal(t, []Unit{{ID: "first", Value: 500}}, result.Chosen)

	// Minimal single cover picks the first of the smallest covers.
	candidates = []Unit{
		{ID: "huge", Value: 9000},
		{ID: "first", Value: 700},
		{ID: "small", Value: 100},
		{ID: "second", Value: 700},
	}
	result, err = SelectCoins(candidates, 600, 0)
	require.NoError(t, err)
	require.Equal(t, StrategyMinimalSingleCover, result.Strategy)
	require.Equal(t, []Unit{{ID: "first", Value: 700}}, result.Chosen)

	// Accumulation keeps input order among equal values.
	candidates = []Unit{
		{ID: "c", Value: 200},
		{ID: "a", Value: 100},
		{ID: "b", Value: 100},
		{ID: "d", Value: 100},
	}
	result, err = SelectCoins(candidates, 250, 0)
	require.NoError(t, err)
	require.Equal(t, StrategySmallestFirst, result.Strategy)
	require.Equal(t, []Unit{
		{ID: "a", Value: 100},
		{ID: "b", Value: 100},
		{ID: "d", Value: 100},
	}, result.Chosen)
}

// TestSelectDoesNotMutateCandidates checks that sorting works on a copy and
// the result does not alias the caller's slice.
func TestSelectDoesNotMutateCandidates(t *testing.T) {
	t.Parallel()

	candidates := makeUnits(500, 800, 1200, 300, 600)
	original := make([]Unit, len(candidates))
	copy(original, candidates)

	result, err := SelectCoins(candidates, 2000, 10)
	require.NoError(t, err)
	require.Equal(t, original, candidates)

	// Mutating the result leaves the candidates untouched.
	result.Chosen[0].Value = 1
	require.Equal(t, original, candidates)
}

// TestSelectWith checks running individual strategies.
func TestSelectWith(t *testing.T) {
	t.Parallel()

	dusty := Request{
		Candidates:  makeUnits(100, 150, 200, 250, 5000),
		Target:      600,
		FeePerInput: defaultFeePerInput,
	}

	// Asking for accumulation consolidates the dust that the pipeline
	// leaves alone.
	result, err := SelectWith(dusty, StrategySmallestFirst)
	require.NoError(t, err)
	require.Equal(t, []btcutil.Amount{100, 150, 200, 250},
		values(result.Chosen))
	require.Equal(t, btcutil.Amount(100), result.Change)
	require.Equal(t, btcutil.Amount(600), result.Fee)

	// First fit spends in input order.
	result, err = SelectWith(Request{
		Candidates: makeUnits(500, 800, 1200, 300, 600),
		Target:     2000,
	}, StrategyFirstFit)
	require.NoError(t, err)
	require.Equal(t, []btcutil.Amount{500, 800, 1200},
		values(result.Chosen))
	require.Equal(t, StrategyFirstFit, result.Strategy)

	// No exact match available.
	_, err = SelectWith(dusty, StrategyExactMatch)
	require.ErrorIs(t, err, ErrStrategyNotApplicable)

	// No single unit covers the target.
	_, err = SelectWith(Request{
		Candidates: makeUnits(100, 200),
		Target:     250,
	}, StrategyMinimalSingleCover)
	require.ErrorIs(t, err, ErrStrategyNotApplicable)

	// Insufficient funds win over applicability.
	_, err = SelectWith(Request{
		Candidates: makeUnits(100, 200),
		Target:     1000,
	}, StrategyExactMatch)
	require.ErrorIs(t, err, ErrInsufficientFunds)

	// Validation still runs.
	_, err = SelectWith(Request{Target: 1}, StrategyFirstFit)
	require.ErrorIs(t, err, ErrNoCandidates)

	_, err = SelectWith(dusty, StrategyUnknown)
	require.ErrorIs(t, err, ErrUnknownStrategy)
}

// TestSelectConcurrent checks that concurrent selections over shared
// candidates are independent and deterministic.
func TestSelectConcurrent(t *testing.T) {
	t.Parallel()

	candidates := makeUnits(500, 800, 1200, 300, 600)
	expected, err := SelectCoins(candidates, 2000, defaultFeePerInput)
	require.NoError(t, err)

	const workers = 16

	var wg sync.WaitGroup
	results := make([]*Result, workers)
	errs := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()

			results[i], errs[i] = SelectCoins(
				candidates, 2000, defaultFeePerInput,
			)
		}(i)
	}
	wg.Wait()

	for i := 0; i < workers; i++ {
		require.NoError(t, errs[i])
		require.Equal(t, expected, results[i])
	}
}

// TestStrategyString checks strategy names round trip through
// ParseStrategy.
func TestStrategyString(t *testing.T) {
	t.Parallel()

	for _, s := range []Strategy{
		StrategyExactMatch, StrategyMinimalSingleCover,
		StrategySmallestFirst, StrategyFirstFit,
	} {
		parsed, err := ParseStrategy(s.String())
		require.NoError(t, err)
		require.Equal(t, s, parsed)
	}

	require.Equal(t, "Unknown(42)", Strategy(42).String())

	_, err := ParseStrategy("LargestFirst")
	require.ErrorIs(t, err, ErrUnknownStrategy)
}
