// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package coinselect

import (
	"fmt"
	"math"
	"sort"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/lightningnetwork/lnd/fn/v2"
)

// selectorFunc chooses units covering target from candidates. It returns
// false when the rule it implements does not apply to the candidate set.
type selectorFunc func(candidates []Unit, target btcutil.Amount) ([]Unit,
	bool)

// pipeline is the order in which Select tries its strategies.
var pipeline = []Strategy{
	StrategyExactMatch,
	StrategyMinimalSingleCover,
	StrategySmallestFirst,
}

// selectors maps every supported strategy to its implementation.
var selectors = map[Strategy]selectorFunc{
	StrategyExactMatch:         selectExactMatch,
	StrategyMinimalSingleCover: selectMinimalSingleCover,
	StrategySmallestFirst:      selectSmallestFirst,
	StrategyFirstFit:           selectFirstFit,
}

// Select chooses a subset of the request's candidates covering its target.
// The strategies are tried in order (exact match, minimal single cover,
// smallest-first accumulation) and the first one that applies determines the
// result. The caller's candidate slice is never modified.
func Select(req Request) (*Result, error) {
	if err := checkFunds(req); err != nil {
		return nil, err
	}

	for _, s := range pipeline {
		chosen, ok := selectors[s](req.Candidates, req.Target)
		if !ok {
			log.Tracef("Strategy %v does not apply to target %v", s,
				req.Target)

			continue
		}

		result, err := newResult(req, chosen, s)
		if err != nil {
			return nil, err
		}

		log.Debugf("Selected %d of %d candidates via %v: total=%v, "+
			"change=%v, fee=%v", len(chosen), len(req.Candidates), s,
			result.TotalValue, result.Change, result.Fee)

		return result, nil
	}

	// The candidates cover the target, so the accumulation at the end of
	// the pipeline always applies.
	return nil, fmt.Errorf("%w: no strategy covered target %v",
		ErrInsufficientFunds, req.Target)
}

// SelectCoins is a convenience wrapper around Select taking the request
// fields as arguments.
func SelectCoins(candidates []Unit, target,
	feePerInput btcutil.Amount) (*Result, error) {

	return Select(Request{
		Candidates:  candidates,
		Target:      target,
		FeePerInput: feePerInput,
	})
}

// SelectWith validates the request like Select does, then runs only the
// given strategy. ErrStrategyNotApplicable is returned when the strategy does
// not apply to the candidate set.
func SelectWith(req Request, s Strategy) (*Result, error) {
	selector, ok := selectors[s]
	if !ok {
		return nil, fmt.Errorf("%w: %v", ErrUnknownStrategy, s)
	}

	if err := checkFunds(req); err != nil {
		return nil, err
	}

	chosen, ok := selector(req.Candidates, req.Target)
	if !ok {
		return nil, fmt.Errorf("%w: %v for target %v",
			ErrStrategyNotApplicable, s, req.Target)
	}

	return newResult(req, chosen, s)
}

// checkFunds validates the request and makes sure the candidates together
// cover the target.
func checkFunds(req Request) error {
	total, err := validateRequest(req)
	if err != nil {
		return err
	}

	if total < req.Target {
		log.Debugf("Candidates total %v, short of target %v", total,
			req.Target)

		return fmt.Errorf("%w: candidates total %v, target %v",
			ErrInsufficientFunds, total, req.Target)
	}

	return nil
}

// validateRequest checks the request for caller errors and returns the sum of
// all candidate values. The sum saturates at math.MaxInt64.
func validateRequest(req Request) (btcutil.Amount, error) {
	if req.Target <= 0 || req.Target > btcutil.MaxSatoshi {
		return 0, fmt.Errorf("%w: %d", ErrInvalidTarget,
			int64(req.Target))
	}

	if len(req.Candidates) == 0 {
		return 0, ErrNoCandidates
	}

	var (
		seen        = fn.NewSet[string]()
		total       btcutil.Amount
		invalidUnit error
	)
	for i, u := range req.Candidates {
		if seen.Contains(u.ID) {
			return 0, fmt.Errorf("%w: id %q at index %d",
				ErrDuplicateCandidate, u.ID, i)
		}
		seen.Add(u.ID)

		if u.Value <= 0 || u.Value > btcutil.MaxSatoshi {
			if invalidUnit == nil {
				invalidUnit = fmt.Errorf("%w: id %q has value %d",
					ErrInvalidUnit, u.ID, int64(u.Value))
			}

			continue
		}

		if total > math.MaxInt64-u.Value {
			total = math.MaxInt64
		} else {
			total += u.Value
		}
	}

	if invalidUnit != nil {
		return 0, invalidUnit
	}

	if req.FeePerInput < 0 {
		return 0, fmt.Errorf("%w: negative fee per input %d",
			ErrInvalidParameter, int64(req.FeePerInput))
	}

	return total, nil
}

// selectExactMatch returns the first unit whose value equals the target.
func selectExactMatch(candidates []Unit, target btcutil.Amount) ([]Unit,
	bool) {

	for _, u := range candidates {
		if u.Value == target {
			return []Unit{u}, true
		}
	}

	return nil, false
}

// selectMinimalSingleCover returns the smallest unit whose value is at least
// the target, preferring the earliest one among equals.
func selectMinimalSingleCover(candidates []Unit,
	target btcutil.Amount) ([]Unit, bool) {

	best := -1
	for i, u := range candidates {
		if u.Value < target {
			continue
		}

		if best == -1 || u.Value < candidates[best].Value {
			best = i
		}
	}

	if best == -1 {
		return nil, false
	}

	return []Unit{candidates[best]}, true
}

// selectSmallestFirst accumulates units in ascending value order. Units of
// equal value keep their input order.
func selectSmallestFirst(candidates []Unit, target btcutil.Amount) ([]Unit,
	bool) {

	sorted := make([]Unit, len(candidates))
	copy(sorted, candidates)
	sort.Stable(sortByAmount(sorted))

	return accumulate(sorted, target)
}

// selectFirstFit accumulates units in input order.
func selectFirstFit(candidates []Unit, target btcutil.Amount) ([]Unit,
	bool) {

	return accumulate(candidates, target)
}

// accumulate returns the shortest prefix of units whose values sum to at
// least target.
func accumulate(units []Unit, target btcutil.Amount) ([]Unit, bool) {
	var total btcutil.Amount
	for i, u := range units {
		total += u.Value
		if total >= target {
			chosen := make([]Unit, i+1)
			copy(chosen, units[:i+1])

			return chosen, true
		}
	}

	return nil, false
}

// sortByAmount is a sortable type for sorting units by their value.
type sortByAmount []Unit

func (s sortByAmount) Len() int { return len(s) }
func (s sortByAmount) Less(i, j int) bool {
	return s[i].Value < s[j].Value
}
func (s sortByAmount) Swap(i, j int) { s[i], s[j] = s[j], s[i] }
