package main

import (
	"fmt"

	"github.com/alimgiray/ghminer/internal/tables"
	"github.com/alimgiray/ghminer/pkg/config"
	"github.com/spf13/cobra"
)

var reposCmd = &cobra.Command{
	Use:   "repos",
	Short: "List the repositories registered in the data root",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		registry := tables.NewRegistry(config.AppConfig.Data.Root)
		refs, err := registry.List()
		if err != nil {
			return err
		}
		if len(refs) == 0 {
			fmt.Println("No repositories registered")
			return nil
		}
		for _, ref := range refs {
			fmt.Println(ref.FullName())
		}
		return nil
	},
}
