package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/AliTechM/ai-profile-personalization-engine/internal/config"
	"github.com/AliTechM/ai-profile-personalization-engine/internal/llm"
	"github.com/AliTechM/ai-profile-personalization-engine/internal/logger"
	"github.com/AliTechM/ai-profile-personalization-engine/internal/pipeline"
	"github.com/AliTechM/ai-profile-personalization-engine/internal/server"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long:  `Start an HTTP server that exposes the enhancement pipeline, including the streaming endpoint.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (overrides configuration)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	settings, err := config.Load()
	if err != nil {
		return err
	}
	if servePort > 0 {
		settings.Port = servePort
	}

	apiKey := settings.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("GEMINI_API_KEY")
	}
	if apiKey == "" {
		return fmt.Errorf("GEMINI_API_KEY environment variable is required")
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

	srv, err := server.New(server.Config{
		Port:     settings.Port,
		Pipeline: pipelineConfig(settings),
	}, client, log)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	return srv.Start()
}

func modelConfig(settings *config.Settings) *llm.Config {
	cfg := llm.DefaultConfig()
	if settings.LiteModel != "" {
		cfg.Models[llm.TierLite] = settings.LiteModel
	}
	if settings.StandardModel != "" {
		cfg.Models[llm.TierStandard] = settings.StandardModel
	}
	if settings.AdvancedModel != "" {
		cfg.Models[llm.TierAdvanced] = settings.AdvancedModel
	}
	return cfg
}

func pipelineConfig(settings *config.Settings) pipeline.Config {
	return pipeline.Config{
		ScoreThreshold:  settings.ScoreThreshold,
		MappingAttempts: settings.MappingAttempts,
		SectionAttempts: settings.SectionAttempts,
		CallTimeout:     settings.CallTimeout,
		DeltaInterval:   settings.DeltaInterval,
		DeltaMinChars:   settings.DeltaMinChars,
	}
}
