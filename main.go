package main

import (
	"fmt"
	"os"

	"github.com/PolarWolf314/jupwallet/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		if !cmd.IsReported(err) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}
