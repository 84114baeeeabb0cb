package main

import (
	"fmt"
	"os"

	"github.com/alimgiray/ghminer/pkg/config"
	"github.com/alimgiray/ghminer/pkg/logger"
	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "ghminer",
	Short: "Extract anonymized GitHub activity data into CSV tables",
	Long: `ghminer extracts a repository's activity (issues, pull requests,
releases, workflows) through the GitHub API, mines the local clone's
git history, anonymizes every user identity, and persists the result
as one CSV table per entity for downstream analysis.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logger.Init()
		return config.Load()
	},
}

func init() {
	rootCmd.AddCommand(extractCmd)
	rootCmd.AddCommand(resolveUsersCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(reposCmd)
}
