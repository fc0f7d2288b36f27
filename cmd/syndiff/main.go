// Package main is the entry point for the syndiff command-line tool.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
)

func main() {
	logrus.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})

	cmd := buildRootCmd()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		var exitErr *exitCodeError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.code)
		}
		os.Exit(1)
	}
}

// exitCodeError carries the exit code spec.md §6 assigns to a run outcome
// (1 = input/parse error, 2 = merge conflicts remain) alongside the
// human-readable message, which main prints to stderr before exiting.
type exitCodeError struct {
	code int
	err  error
}

func (e *exitCodeError) Error() string { return e.err.Error() }
func (e *exitCodeError) Unwrap() error { return e.err }
