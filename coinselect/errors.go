package coinselect

import "errors"

var (
	// ErrInvalidTarget is returned when the target amount is not positive
	// or exceeds the maximum number of satoshis.
	ErrInvalidTarget = errors.New("invalid target amount")

	// ErrNoCandidates is returned when a selection is requested over an
	// empty candidate set.
	ErrNoCandidates = errors.New("no candidates to select from")

	// ErrDuplicateCandidate is returned when two candidates share the same
	// ID.
	ErrDuplicateCandidate = errors.New("duplicate candidate")

	// ErrInvalidUnit is returned when a candidate carries a value that is
	// not positive or exceeds the maximum number of satoshis.
	ErrInvalidUnit = errors.New("invalid candidate value")

	// ErrInsufficientFunds is returned when all candidates together do not
	// cover the target.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrInvalidParameter is returned when a negative input count or fee
	// per input is given, or their product overflows.
	ErrInvalidParameter = errors.New("invalid parameter")

	// ErrStrategyNotApplicable is returned by SelectWith when the requested
	// strategy cannot produce a result for the candidate set, e.g. an exact
	// match is requested but no candidate equals the target.
	ErrStrategyNotApplicable = errors.New("strategy not applicable")

	// ErrUnknownStrategy is returned when an unsupported Strategy value is
	// passed to SelectWith.
	ErrUnknownStrategy = errors.New("unknown strategy")
)
