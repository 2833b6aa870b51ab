// Command shelf browses and lends the books of a home library.
package main

import (
	"context"
	"os"

	"github.com/charmbracelet/fang"

	"github.com/mesh-intelligence/shelf/internal/cli"
)

func main() {
	root := cli.NewRootCmd()

	if err := fang.Execute(
		context.Background(),
		root,
		fang.WithVersion(cli.Version),
		fang.WithNotifySignal(os.Interrupt, os.Kill),
	); err != nil {
		os.Exit(cli.ExitCode(err))
	}
}
