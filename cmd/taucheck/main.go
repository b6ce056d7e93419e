package main

import (
	"context"
	"os"

	"github.com/mini-maxit/taucheck/internal/cli"
)

func main() {
	os.Exit(cli.Execute(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}
