package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/AliTechM/ai-profile-personalization-engine/internal/config"
	"github.com/AliTechM/ai-profile-personalization-engine/internal/enhance"
	"github.com/AliTechM/ai-profile-personalization-engine/internal/llm"
	"github.com/AliTechM/ai-profile-personalization-engine/internal/logger"
	"github.com/AliTechM/ai-profile-personalization-engine/internal/pipeline"
	"github.com/AliTechM/ai-profile-personalization-engine/internal/types"
)

var (
	enhanceResumePath string
	enhanceJobPath    string
	enhanceMode       string
	enhanceOutPath    string
)

var enhanceCmd = &cobra.Command{
	Use:   "enhance",
	Short: "Run one enhancement end-to-end from JSON files",
	Long:  `Score the resume against the job description and print the final workflow state as JSON. Below the score threshold the state carries feedback instead of an enhanced resume.`,
	RunE:  runEnhance,
}

func init() {
	enhanceCmd.Flags().StringVarP(&enhanceResumePath, "resume", "r", "", "Path to resume JSON file (required)")
	enhanceCmd.Flags().StringVarP(&enhanceJobPath, "job", "j", "", "Path to job description JSON file (required)")
	enhanceCmd.Flags().StringVarP(&enhanceMode, "mode", "m", "", "Enhancement mode: single-call, sequential, or streaming")
	enhanceCmd.Flags().StringVarP(&enhanceOutPath, "out", "o", "", "Write the workflow state to this file instead of stdout")
	enhanceCmd.MarkFlagRequired("resume") //nolint:errcheck
	enhanceCmd.MarkFlagRequired("job")    //nolint:errcheck
	rootCmd.AddCommand(enhanceCmd)
}

func runEnhance(cmd *cobra.Command, _ []string) error {
	settings, err := config.Load()
	if err != nil {
		return err
	}

	apiKey := settings.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("GEMINI_API_KEY")
	}
	if apiKey == "" {
		return fmt.Errorf("GEMINI_API_KEY environment variable is required")
	}

	mode, err := enhance.ParseMode(enhanceMode)
	if err != nil {
		return err
	}

	var resume types.Resume
	if err := readJSONFile(enhanceResumePath, &resume); err != nil {
		return err
	}
	var jd types.JobDescription
	if err := readJSONFile(enhanceJobPath, &jd); err != nil {
		return err
	}

	log, err := logger.New(settings.LogLevel, settings.LogJSON)
	if err != nil {
		return err
	}
	defer log.Sync() //nolint:errcheck

	client, err := llm.NewClient(cmd.Context(), modelConfig(settings), apiKey)
	if err != nil {
		return fmt.Errorf("failed to create model client: %w", err)
	}
	defer client.Close() //nolint:errcheck

	runner, err := pipeline.NewRunner(client, pipelineConfig(settings), log)
	if err != nil {
		return err
	}

	state, err := runner.Run(cmd.Context(), resume, jd, mode)
	if err != nil {
		return err
	}

	out, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode workflow state: %w", err)
	}

	if enhanceOutPath != "" {
		return os.WriteFile(enhanceOutPath, out, 0o644)
	}
	fmt.Println(string(out))
	return nil
}

func readJSONFile(path string, dst any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}
