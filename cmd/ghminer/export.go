package main

import (
	"fmt"

	"github.com/alimgiray/ghminer/internal/services"
	"github.com/alimgiray/ghminer/internal/tables"
	"github.com/alimgiray/ghminer/pkg/config"
	"github.com/spf13/cobra"
)

var (
	formatFlag string
	outFlag    string
)

var exportCmd = &cobra.Command{
	Use:   "export owner/repo",
	Short: "Export a repository's tables as a workbook or SQLite database",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ref, err := tables.ParseRef(args[0])
		if err != nil {
			return err
		}

		registry := tables.NewRegistry(config.AppConfig.Data.Root)
		export := services.NewExportService(registry.RepoDir(ref))

		out := outFlag
		switch formatFlag {
		case "xlsx":
			if out == "" {
				out = ref.Slug() + ".xlsx"
			}
			if err := export.ExportXLSX(out); err != nil {
				return err
			}
		case "sqlite":
			if out == "" {
				out = ref.Slug() + ".db"
			}
			if err := export.ExportSQLite(out); err != nil {
				return err
			}
		default:
			return fmt.Errorf("unknown format %q, expected xlsx or sqlite", formatFlag)
		}

		fmt.Printf("Exported %s to %s\n", ref.FullName(), out)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVar(&formatFlag, "format", "xlsx", "export format: xlsx or sqlite")
	exportCmd.Flags().StringVar(&outFlag, "out", "", "output file path")
}
