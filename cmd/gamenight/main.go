package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newCLI(os.Stdout).Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "gamenight:", err)
		os.Exit(1)
	}
}
