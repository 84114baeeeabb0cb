package main

import (
	"fmt"

	"github.com/alimgiray/ghminer/internal/anonymize"
	"github.com/alimgiray/ghminer/internal/services"
	"github.com/alimgiray/ghminer/internal/tables"
	"github.com/alimgiray/ghminer/pkg/config"
	"github.com/spf13/cobra"
)

var extractCmd = &cobra.Command{
	Use:   "extract owner/repo",
	Short: "Run a full extraction session for one repository",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ref, err := tables.ParseRef(args[0])
		if err != nil {
			return err
		}

		cfg := config.AppConfig
		registry := tables.NewRegistry(cfg.Data.Root)
		if err := registry.Add(ref); err != nil {
			return fmt.Errorf("failed to register repository: %w", err)
		}

		store := tables.NewStore(registry.RepoDir(ref))
		anonymizer, err := anonymize.NewAnonymizer(store, cfg.Data.ReversibleIDs)
		if err != nil {
			return err
		}

		client := services.NewGitHubClient(cfg.GitHub.Token, cfg.GitHub.RequestsPerHour, cfg.GitHub.PerPage)
		gitService := services.NewGitService(cfg.Mining.CloneBasePath)
		extraction := services.NewExtractionService(ref, store, anonymizer, client, gitService, cfg.GitHub.Token)

		if failed := extraction.Run(cmd.Context()); failed > 0 {
			return fmt.Errorf("%d extraction pass(es) failed", failed)
		}
		return nil
	},
}
