package main

import (
	"os"

	"github.com/signkit/signspace/internal/cli"
	"github.com/signkit/signspace/pkg/buildinfo"
)

func main() {
	cli.SetVersion(buildinfo.Version, buildinfo.Commit, buildinfo.Date)
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
