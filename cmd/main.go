package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "disclosure-watcher",
	Short: "A CLI for managing the disclosure watcher services",
	Long:  `Disclosure watcher ingests corporate disclosure feeds, stores filing PDFs, and generates release analyses...`,
}

func main() {

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Whoops. There was an error while executing your CLI '%s'", err)
		os.Exit(1)
	}
}
