// Command philotest checks dining philosophers binaries against scenario
// suites.
package main

import (
	"context"
	"os"

	"github.com/eabdelfa/03-philosophers/internal/cli"
)

func main() {
	os.Exit(cli.Execute(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}
