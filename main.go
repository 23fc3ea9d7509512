// Package main is the entry point for the rvametrics CLI tool, which loads
// soccer tracking/event data and computes the Run Value Added (RVA) metric
// for off-ball runs.
package main

import "github.com/pable/go-rva-metrics/cmd"

func main() {
	cmd.Execute()
}
