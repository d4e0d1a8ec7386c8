package main

import (
	"errors"
	"fmt"
	"os"

	"slitherbench/internal/app"
	"slitherbench/internal/cli"
)

func main() {
	if err := app.BuildRoot().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		if errors.Is(err, cli.ErrPartial) {
			os.Exit(3)
		}
		os.Exit(1)
	}
}
