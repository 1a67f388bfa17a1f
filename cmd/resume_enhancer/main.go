// Package main provides the entry point for the resume enhancement service.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "resume_enhancer",
	Short: "AI resume personalization service",
	Long:  "Scores a resume against a job description and, when it clears the threshold, rewrites each section to better match the role while preserving all factual content.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
