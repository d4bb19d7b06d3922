package main

import (
	"os"

	"github.com/cfmconsole/cfm/cmd/cfmctl/cmd"
)

func main() {
	if err := cmd.Root().Execute(); err != nil {
		os.Exit(1)
	}
}
