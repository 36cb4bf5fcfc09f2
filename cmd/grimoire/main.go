// Package main provides the grimoire CLI: ingestion and read helpers for
// SRD 5.1 class reference data.
package main

import (
	"fmt"
	"os"
)

// Exit codes: user/data failures and system failures are distinguishable
// to calling scripts.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		if isSystemError(err) {
			os.Exit(exitSysError)
		}
		os.Exit(exitUserError)
	}
	os.Exit(exitSuccess)
}
