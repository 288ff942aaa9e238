//go:build !windows

package main

import (
	"os"
	"os/signal"
	"syscall"
)

// enableANSI is a no-op on Unix; terminals handle escape codes natively.
func enableANSI() {}

// registerSignals wires up the interrupt handling that lets a run stop
// early while still writing the results gathered so far.
func registerSignals(ch chan<- os.Signal) {
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
}
