package main

import (
	"fmt"
	"os"
)

// Version value, injected via go build `ldflags` at build time
var version = "dev"

func main() {
	rootCmd.Version = version
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
