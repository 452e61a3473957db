package main

import (
	"fmt"
	"os"

	"github.com/arthur-debert/blockreg/cmd/blockreg"
	"github.com/arthur-debert/blockreg/pkg/style"
)

func main() {
	rootCmd := blockreg.NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, style.ErrorStyle.Render(fmt.Sprintf("Error: %v", err)))
		os.Exit(1)
	}
}
