package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	apiFlag  string
	jsonFlag bool
	rootCmd  = &cobra.Command{
		Use:           "medilensctl",
		Short:         "CLI client for the medilens REST API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

func main() {
	rootCmd.PersistentFlags().StringVarP(&apiFlag, "api", "a", "http://localhost:8080", "medilens service base URL")
	rootCmd.PersistentFlags().BoolVar(&jsonFlag, "json", false, "print raw JSON responses")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
