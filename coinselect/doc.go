// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

/*
Package coinselect chooses which spendable outputs fund a payment.

Selection is a pure function of its Request: the caller hands in a snapshot of
spendable units, a target amount and a flat fee charged per chosen input, and
gets back the covering subset together with its total, change and fee. The
package keeps no state between calls and performs no I/O, so a single process
may run any number of selections concurrently.

# Strategy order

Strategies are tried in a fixed order and the first one that produces a
covering set wins:

 1. Exact match: the first unit, in input order, whose value equals the
    target. No change output is needed.
 2. Minimal single cover: the smallest unit whose value is at least the
    target. Ties go to the unit that appears first.
 3. Smallest-first accumulation: units sorted ascending by value (stable)
    are added until the target is covered.

If the whole candidate set cannot cover the target the selection fails with
ErrInsufficientFunds.

The order never weighs fees. Whenever a single unit can cover the target it is
preferred over consolidating many small units, even if those units are dust
that will only grow more expensive to spend later. Callers that want the
consolidating behaviour must filter the candidate set themselves or call
SelectWith with StrategySmallestFirst.

# Reservation

Selection does not reserve anything. Two concurrent calls given overlapping
candidate sets may both pick the same unit. Callers must take the candidate
snapshot and record the chosen units as spent atomically with respect to
other selections.
*/
package coinselect
