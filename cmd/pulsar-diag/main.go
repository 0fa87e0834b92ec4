package main

import (
	"github.com/replicatedhq/pulsar-diag/cmd/pulsar-diag/cli"
)

func main() {
	cli.InitAndExecute()
}
