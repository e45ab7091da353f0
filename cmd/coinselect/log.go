package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/btcsuite/btclog"
	"github.com/drachma/walletkit/coinselect"
	"github.com/jrick/logrotate/rotator"
)

const (
	// logFileSizeKB is the size at which the log file is rolled.
	logFileSizeKB = 10 * 1024

	// maxLogRolls is the number of rolled log files kept.
	maxLogRolls = 3
)

// logWriter implements an io.Writer that outputs to stderr and, once
// initialized, the write-end pipe of the log rotator. Stdout is kept free for
// the selection report.
type logWriter struct{}

func (logWriter) Write(p []byte) (n int, err error) {
	os.Stderr.Write(p)
	if logRotatorPipe != nil {
		logRotatorPipe.Write(p)
	}

	return len(p), nil
}

var (
	// backendLog is the logging backend used to create all subsystem
	// loggers.
	backendLog = btclog.NewBackend(logWriter{})

	// logRotator is one of the logging outputs. It should be closed on
	// application shutdown.
	logRotator *rotator.Rotator

	// logRotatorPipe is the write-end pipe for writing to the log
	// rotator.
	logRotatorPipe *io.PipeWriter

	// logRotatorDone is closed once the rotator has drained the pipe.
	logRotatorDone chan struct{}

	log  = backendLog.Logger("MAIN")
	cslg = backendLog.Logger("CSEL")
)

// subsystemLoggers maps each subsystem identifier to its associated logger.
var subsystemLoggers = map[string]btclog.Logger{
	"MAIN": log,
	"CSEL": cslg,
}

func init() {
	coinselect.UseLogger(cslg)
}

// initLogRotator initializes the logging rotator to write logs to logFile and
// create roll files in the same directory. It must be called before the
// package-global log rotator variables are used.
func initLogRotator(logFile string) error {
	logDir, _ := filepath.Split(logFile)
	if err := os.MkdirAll(logDir, 0o700); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}

	r, err := rotator.New(logFile, logFileSizeKB, false, maxLogRolls)
	if err != nil {
		return fmt.Errorf("failed to create file rotator: %w", err)
	}

	pr, pw := io.Pipe()
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = r.Run(pr)
	}()

	logRotator = r
	logRotatorPipe = pw
	logRotatorDone = done

	return nil
}

// closeLogRotator flushes and closes the log rotator if one is in use. The
// rotator is only closed after it has written everything sent to the pipe.
func closeLogRotator() {
	if logRotatorPipe == nil {
		return
	}

	pw := logRotatorPipe
	logRotatorPipe = nil
	_ = pw.Close()

	<-logRotatorDone
	_ = logRotator.Close()

	logRotator = nil
	logRotatorDone = nil
}

// setLogLevels sets the log level for all subsystem loggers to the passed
// level.
func setLogLevels(logLevel string) {
	level, _ := btclog.LevelFromString(logLevel)
	for _, logger := range subsystemLoggers {
		logger.SetLevel(level)
	}
}
