// Package main is the entry point for the wiretap packet interception tool.
package main

import (
	"fmt"
	"os"

	"firestige.xyz/wiretap/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
