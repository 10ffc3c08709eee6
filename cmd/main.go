package main

import (
	"fmt"
	"os"

	"productupdate.io/client/internal/interfaces/cli"
	"productupdate.io/client/internal/interfaces/di"
)

func main() {
	container, err := di.NewContainer()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize application: %v\n", err)
		os.Exit(1)
	}

	cli.Execute(container.CLIContainer)
}
