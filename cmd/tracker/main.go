// Package main is the tracker CLI: it runs the eligibility calculator over a
// backup file downloaded from GET /export, without a server or database.
//
// Usage:
//
//	tracker stats --file citizenship-tracker-2025-01-01.json
//	tracker eligibility --file backup.json --now 2025-06-30
//	tracker validate --file backup.json
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
