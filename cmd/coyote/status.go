package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newConfigCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Show the resolved configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(flags)
			if err != nil {
				return err
			}
			cfg := a.cfg

			fmt.Println("Coyote Configuration")
			fmt.Println("========================================")
			fmt.Printf("Generator Provider: %s\n", cfg.Generator.Provider)
			fmt.Printf("Generator Model: %s\n", cfg.Generator.Model)
			fmt.Printf("Auto Proceed: %t\n", cfg.Pipeline.AutoProceed)
			fmt.Printf("Max Retries: %d\n", cfg.Pipeline.MaxRetries)
			fmt.Printf("Timeout: %ds\n", cfg.Pipeline.TimeoutSeconds)
			fmt.Printf("Prometheus URL: %s\n", orNotConfigured(cfg.Observability.PrometheusURL))
			fmt.Printf("Loki URL: %s\n", orNotConfigured(cfg.Observability.LokiURL))
			fmt.Printf("Tempo URL: %s\n", orNotConfigured(cfg.Observability.TempoURL))
			fmt.Printf("Lessons File: %s\n", cfg.Knowledge.LessonsFile)
			fmt.Printf("Insights Enabled: %t\n", cfg.Knowledge.InsightsEnabled)
			fmt.Printf("Log Level: %s\n", cfg.Logging.Level)
			return nil
		},
	}
}

func newStatusCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Check configuration and collaborator readiness",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(flags)
			if err != nil {
				return err
			}
			cfg := a.cfg

			fmt.Println("Coyote Status")
			fmt.Println("========================================")

			fmt.Println("\nGenerator:")
			keyEnv := "ANTHROPIC_API_KEY"
			if cfg.Generator.Provider == "openai" {
				keyEnv = "OPENAI_API_KEY"
			}
			if cfg.Generator.APIKey != "" {
				fmt.Printf("  ✓ %s API key configured\n", cfg.Generator.Provider)
			} else {
				fmt.Printf("  ✗ %s API key not set (%s)\n", cfg.Generator.Provider, keyEnv)
			}

			fmt.Println("\nObservability:")
			printBackend("Prometheus", cfg.Observability.PrometheusURL)
			printBackend("Loki", cfg.Observability.LokiURL)
			printBackend("Tempo", cfg.Observability.TempoURL)

			fmt.Println("\nKnowledge Base:")
			if _, err := os.Stat(cfg.Knowledge.LessonsFile); err == nil {
				fmt.Printf("  ✓ %s (%d lessons)\n", cfg.Knowledge.LessonsFile, a.store.Count())
			} else {
				fmt.Printf("  ○ %s (not created yet)\n", cfg.Knowledge.LessonsFile)
			}
			return nil
		},
	}
}

func printBackend(name, url string) {
	if url != "" {
		fmt.Printf("  ✓ %s: %s\n", name, url)
		return
	}
	fmt.Printf("  ○ %s: not configured\n", name)
}

func orNotConfigured(value string) string {
	if value == "" {
		return "not configured"
	}
	return value
}
