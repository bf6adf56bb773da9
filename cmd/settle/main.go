// Command settle computes balances and a settle-up plan for a ledger file
// without running the server.
//
//	settle trip.json
//	cat trip.json | settle --json
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
