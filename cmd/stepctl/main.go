package main

import (
	"fmt"
	"os"

	"github.com/noah-isme/gema-steps-api/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "stepctl:", err)
		os.Exit(1)
	}
}
