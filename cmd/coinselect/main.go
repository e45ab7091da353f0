// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Command coinselect runs coin selection over sets of candidate values and
// reports how the selection pipeline compares with first-fit selection.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/btcsuite/btcwallet/wallet/txrules"
	"github.com/drachma/walletkit/coinselect"
	flags "github.com/jessevdk/go-flags"
)

// ruleWidth is the width of the separator lines in the report.
const ruleWidth = 70

func main() {
	if err := coinselectMain(); err != nil {
		var flagErr *flags.Error
		if errors.As(err, &flagErr) && flagErr.Type == flags.ErrHelp {
			os.Exit(0)
		}

		// go-flags prints its own parse errors.
		if flagErr == nil {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

// coinselectMain is the real main function. It is split out so deferred
// cleanup runs before os.Exit.
func coinselectMain() error {
	cfg, scenarios, err := loadConfig(os.Args[1:])
	if err != nil {
		return err
	}

	if cfg.LogDir != "" {
		logFile := filepath.Join(cfg.LogDir, defaultLogFilename)
		if err := initLogRotator(logFile); err != nil {
			return err
		}
		defer closeLogRotator()
	}
	setLogLevels(cfg.DebugLevel)

	log.Debugf("Running %d scenario(s) with fee per input %d sats",
		len(scenarios), int64(cfg.feePerInput()))

	return runScenarios(cfg, scenarios, os.Stdout)
}

// runScenarios runs every scenario and writes the report to w. Selection
// failures are part of the report; only write errors are returned.
func runScenarios(cfg *config, scenarios []scenario, w io.Writer) error {
	rp := &reporter{w: w, cfg: cfg}

	rp.rule("=")
	rp.printf("Coin Selection Comparison\n")
	rp.rule("=")

	for _, s := range scenarios {
		rp.scenario(s)
	}

	rp.summary()

	return rp.err
}

// summaryLines restate what each pipeline strategy buys, in pipeline order.
var summaryLines = []string{
	"Exact match: one input and no change output",
	"Minimal single cover: one input with the least change a single " +
		"input allows",
	"Smallest first: consolidates small units, only reached when no " +
		"single unit covers the target",
}

// reporter writes the report, remembering the first write error.
type reporter struct {
	w   io.Writer
	cfg *config
	err error
}

func (r *reporter) printf(format string, args ...any) {
	if r.err != nil {
		return
	}

	_, r.err = fmt.Fprintf(r.w, format, args...)
}

func (r *reporter) rule(char string) {
	r.printf("%s\n", strings.Repeat(char, ruleWidth))
}

// summary closes the report.
func (r *reporter) summary() {
	r.printf("\n")
	r.rule("=")
	r.printf("Summary:\n")
	r.rule("=")
	for _, line := range summaryLines {
		r.printf("  %s\n", line)
	}
	r.rule("=")
}

// scenario runs and reports a single scenario.
func (r *reporter) scenario(s scenario) {
	req := s.request(r.cfg.feePerInput())

	r.printf("\n%s\n", s.Name)
	r.printf("Available: %v\n", s.Values)
	r.printf("Target: %d sats, fee per input: %d sats\n", s.Target,
		int64(req.FeePerInput))
	r.rule("-")

	if r.cfg.Strategy != "" {
		r.single(req)
		return
	}

	c, err := coinselect.Compare(req)
	if err != nil {
		log.Warnf("Scenario %q rejected: %v", s.Name, err)
		r.printf("REJECTED: %v\n", err)

		return
	}

	r.result("FIRST-FIT", c.Baseline, c.BaselineErr)
	r.result("PIPELINE", c.Pipeline, c.PipelineErr)

	if c.BaselineErr != nil || c.PipelineErr != nil {
		return
	}

	r.printf("IMPROVEMENT:\n")
	r.printf("  Fee savings: %d sats (%s%%)\n", int64(c.FeeSavings),
		c.SavingsPercent.StringFixed(1))
	r.printf("  Input reduction: %d\n", c.InputReduction)
}

// single runs only the configured strategy.
func (r *reporter) single(req coinselect.Request) {
	strategy, err := coinselect.ParseStrategy(r.cfg.Strategy)
	if err != nil {
		r.printf("REJECTED: %v\n", err)
		return
	}

	result, err := coinselect.SelectWith(req, strategy)
	r.result(strings.ToUpper(strategy.String()), result, err)
}

// result reports one selection outcome.
func (r *reporter) result(label string, res *coinselect.Result, err error) {
	if err != nil {
		r.printf("%s: FAILED - %v\n", label, err)
		return
	}

	dust := coinselect.DustCount(
		res.Chosen, txrules.DefaultRelayFeePerKb,
		r.cfg.inputScript(),
	)

	r.printf("%s (%v):\n", label, res.Strategy)
	r.printf("  Selected: %v\n", chosenValues(res.Chosen))
	r.printf("  Inputs: %d, Change: %d, Fees: %d, Dust spent: %d\n",
		res.NumInputs(), int64(res.Change), int64(res.Fee), dust)
}

// chosenValues returns the values of the units in satoshis.
func chosenValues(units []coinselect.Unit) []int64 {
	vals := make([]int64, 0, len(units))
	for _, u := range units {
		vals = append(vals, int64(u.Value))
	}

	return vals
}
