// Command ptstd exposes the ptstd packages on the command line.
package main

import (
	"context"
	"os"

	"github.com/TheusHen/ptstd/internal/cli"
)

func main() {
	if err := cli.Execute(context.Background()); err != nil {
		os.Exit(1)
	}
}
