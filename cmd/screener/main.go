// Package main provides the entry point for the resume screening service.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "screener",
	Short: "Resume screening and scoring service",
	Long:  "Screener scores batches of resumes against job requirements: AI fact extraction, knockout filtering, citation verification, and deterministic weighted scoring.",
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
