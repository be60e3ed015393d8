package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/quireproject/quire/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		var ee *cli.ExitError
		if errors.As(err, &ee) {
			if ee.Message != "" {
				fmt.Fprintln(os.Stderr, ee.Message)
			}
			os.Exit(ee.Code)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		// Anything cobra rejects before a command runs is a usage error.
		os.Exit(2)
	}
}
