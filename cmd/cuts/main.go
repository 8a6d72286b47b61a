package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/ivlev/cuts/internal/system"
)

func main() {
	if err := system.InitResourceLimits(); err != nil {
		warnf(os.Stderr, "%v", err)
	}

	cmd := newRootCommand()
	if err := cmd.Execute(); err != nil {
		if !errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}
