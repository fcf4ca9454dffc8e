package main

import (
	"os"

	"github.com/SergeiSkv/ruletest/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
