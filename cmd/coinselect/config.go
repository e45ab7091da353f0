package main

import (
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btclog"
	"github.com/drachma/walletkit/coinselect"
	"github.com/drachma/walletkit/pkg/btcunit"
	flags "github.com/jessevdk/go-flags"
	"gopkg.in/yaml.v3"
)

const (
	// defaultFeePerInput is the flat fee charged per input when neither a
	// fee per input nor a fee rate is configured.
	defaultFeePerInput = 150

	// maxFeeRate is the largest --feerate in sat/vb considered sane,
	// matching the wallet's default max fee rate.
	maxFeeRate = 1000

	defaultLogLevel    = "info"
	defaultLogFilename = "coinselect.log"
	defaultInputType   = "p2wkh"
)

var (
	// errMissingTarget is returned when candidate values are given on the
	// command line without a target.
	errMissingTarget = errors.New("--values requires a positive --target")

	// errConflictingInputs is returned when both a scenario file and
	// command line values are given.
	errConflictingInputs = errors.New("--values and --scenarios are " +
		"mutually exclusive")

	// errFeeRateTooLarge is returned when --feerate exceeds maxFeeRate.
	errFeeRateTooLarge = errors.New("fee rate too large")
)

// inputScripts holds a representative output script per input type. They are
// only used to size inputs and classify dust, so the hashes are zero.
var inputScripts = map[string]string{
	"p2pkh":  "76a914" + strings.Repeat("00", 20) + "88ac",
	"np2wkh": "a914" + strings.Repeat("00", 20) + "87",
	"p2wkh":  "0014" + strings.Repeat("00", 20),
	"p2tr":   "5120" + strings.Repeat("00", 32),
}

// config defines the configuration options for coinselect.
type config struct {
	Target      int64  `short:"t" long:"target" description:"Amount in satoshis to cover"`
	Values      string `short:"v" long:"values" description:"Comma separated candidate values in satoshis"`
	FeePerInput int64  `long:"feeperinput" description:"Flat fee in satoshis charged per input"`
	FeeRate     uint64 `long:"feerate" description:"Fee rate in sat/vb; derives the fee per input from the input type and overrides --feeperinput"`
	InputType   string `long:"inputtype" description:"Script type of the candidate outputs" choice:"p2pkh" choice:"np2wkh" choice:"p2wkh" choice:"p2tr"`
	Strategy    string `short:"s" long:"strategy" description:"Run a single strategy instead of comparing first-fit with the pipeline" choice:"ExactMatch" choice:"MinimalSingleCover" choice:"SmallestFirstAccumulation" choice:"FirstFit"`
	Scenarios   string `long:"scenarios" description:"YAML file with scenarios to run"`
	DebugLevel  string `short:"d" long:"debuglevel" description:"Logging level {trace, debug, info, warn, error, critical}"`
	LogDir      string `long:"logdir" description:"Directory to write a rotated log file to"`

	// feeSet records whether --feeperinput was given explicitly.
	feeSet bool
}

// scenario is one selection to run.
type scenario struct {
	Name   string  `yaml:"name"`
	Target int64   `yaml:"target"`
	Values []int64 `yaml:"values"`
}

// request turns the scenario into a selection request.
func (s scenario) request(feePerInput btcutil.Amount) coinselect.Request {
	units := make([]coinselect.Unit, 0, len(s.Values))
	for i, v := range s.Values {
		units = append(units, coinselect.Unit{
			ID:    fmt.Sprintf("%s:%d", s.Name, i),
			Value: btcutil.Amount(v),
		})
	}

	return coinselect.Request{
		Candidates:  units,
		Target:      btcutil.Amount(s.Target),
		FeePerInput: feePerInput,
	}
}

// scenarioFile is the layout of a --scenarios file.
type scenarioFile struct {
	FeePerInput *int64     `yaml:"fee_per_input"`
	Scenarios   []scenario `yaml:"scenarios"`
}

// defaultScenarios are run when no candidates are configured.
var defaultScenarios = []scenario{
	{
		Name:   "Exact match available",
		Target: 5000,
		Values: []int64{1000, 5000, 10000, 2500},
	},
	{
		Name:   "Larger UTXO available",
		Target: 3000,
		Values: []int64{100, 500, 1000, 6000},
	},
	{
		Name:   "Need multiple UTXOs",
		Target: 2000,
		Values: []int64{500, 800, 1200, 300, 600},
	},
	{
		Name:   "Dust present next to a large UTXO",
		Target: 600,
		Values: []int64{100, 150, 200, 250, 5000},
	},
}

// loadConfig parses the command line and returns the config together with
// the scenarios to run.
func loadConfig(args []string) (*config, []scenario, error) {
	cfg := config{
		FeePerInput: defaultFeePerInput,
		InputType:   defaultInputType,
		DebugLevel:  defaultLogLevel,
	}

	parser := flags.NewParser(&cfg, flags.Default)
	if _, err := parser.ParseArgs(args); err != nil {
		return nil, nil, err
	}

	if _, ok := btclog.LevelFromString(cfg.DebugLevel); !ok {
		return nil, nil, fmt.Errorf("invalid debug level %q",
			cfg.DebugLevel)
	}

	if cfg.FeePerInput < 0 {
		return nil, nil, fmt.Errorf("%w: --feeperinput %d",
			coinselect.ErrInvalidParameter, cfg.FeePerInput)
	}
	cfg.feeSet = parser.FindOptionByLongName("feeperinput").IsSet()

	if cfg.FeeRate > maxFeeRate {
		return nil, nil, fmt.Errorf("%w: --feerate %d sat/vb exceeds "+
			"%d sat/vb", errFeeRateTooLarge, cfg.FeeRate, maxFeeRate)
	}

	switch {
	case cfg.Values != "" && cfg.Scenarios != "":
		return nil, nil, errConflictingInputs

	case cfg.Values != "":
		if cfg.Target <= 0 {
			return nil, nil, errMissingTarget
		}

		vals, err := parseValues(cfg.Values)
		if err != nil {
			return nil, nil, err
		}

		return &cfg, []scenario{{
			Name: "cli", Target: cfg.Target, Values: vals,
		}}, nil

	case cfg.Scenarios != "":
		scenarios, err := loadScenarioFile(&cfg, cfg.Scenarios)
		if err != nil {
			return nil, nil, err
		}

		return &cfg, scenarios, nil

	default:
		return &cfg, defaultScenarios, nil
	}
}

// parseValues parses a comma separated list of satoshi amounts.
func parseValues(s string) ([]int64, error) {
	fields := strings.Split(s, ",")
	vals := make([]int64, 0, len(fields))
	for _, f := range fields {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}

		v, err := strconv.ParseInt(f, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid value %q: %w", f, err)
		}
		vals = append(vals, v)
	}

	return vals, nil
}

// loadScenarioFile reads scenarios from a YAML file. A fee per input in the
// file applies unless one was given on the command line.
func loadScenarioFile(cfg *config, path string) ([]scenario, error) {
	// #nosec G304 -- the path is supplied by the operator.
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenarios: %w", err)
	}

	var file scenarioFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse scenarios %s: %w", path, err)
	}

	if len(file.Scenarios) == 0 {
		return nil, fmt.Errorf("no scenarios in %s", path)
	}

	if file.FeePerInput != nil && !cfg.feeSet {
		if *file.FeePerInput < 0 {
			return nil, fmt.Errorf("%w: fee_per_input %d",
				coinselect.ErrInvalidParameter, *file.FeePerInput)
		}
		cfg.FeePerInput = *file.FeePerInput
	}

	for i := range file.Scenarios {
		if file.Scenarios[i].Name == "" {
			file.Scenarios[i].Name = fmt.Sprintf("scenario-%d", i+1)
		}
	}

	return file.Scenarios, nil
}

// inputScript returns the representative script of the configured input
// type.
func (c *config) inputScript() []byte {
	script, _ := hex.DecodeString(inputScripts[c.InputType])

	return script
}

// feePerInput returns the fee per input to select with. A fee rate takes
// precedence over the flat fee.
func (c *config) feePerInput() btcutil.Amount {
	if c.FeeRate == 0 {
		return btcutil.Amount(c.FeePerInput)
	}

	rate := btcunit.NewSatPerVByte(btcutil.Amount(c.FeeRate))

	return coinselect.FeePerInput(c.inputScript(), rate.ToSatPerKVByte())
}
