package main

import (
	"fmt"
	"strings"

	"github.com/alimgiray/ghminer/internal/anonymize"
	"github.com/alimgiray/ghminer/internal/tables"
	"github.com/alimgiray/ghminer/pkg/config"
	"github.com/spf13/cobra"
)

var (
	bindFlag string
	newFlag  bool
)

var resolveUsersCmd = &cobra.Command{
	Use:   "resolve-users owner/repo",
	Short: "Reconcile commit identities the API could not attribute",
	Long: `resolve-users first tries to match every unresolved committer string
against the display name, email or login of a known identity. What
remains can be bound manually with --bind:

  --bind "J. Doe=<anonymous-id>"        bind to an existing identity
  --bind "J. Doe=jdoe-import" --new     mint a new identity for the target

Without --bind, the remaining unresolved strings are listed.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ref, err := tables.ParseRef(args[0])
		if err != nil {
			return err
		}

		cfg := config.AppConfig
		registry := tables.NewRegistry(cfg.Data.Root)
		store := tables.NewStore(registry.RepoDir(ref))
		anonymizer, err := anonymize.NewAnonymizer(store, cfg.Data.ReversibleIDs)
		if err != nil {
			return err
		}
		resolver := anonymize.NewResolver(store, anonymizer)

		if bindFlag != "" {
			name, target, found := strings.Cut(bindFlag, "=")
			if !found || name == "" || target == "" {
				return fmt.Errorf("invalid --bind %q, expected name=target", bindFlag)
			}
			if newFlag {
				return resolver.BindNew(name, target)
			}
			return resolver.BindExisting(name, target)
		}

		resolved, err := resolver.AutoResolve()
		if err != nil {
			return err
		}
		fmt.Printf("Auto-resolved %d committer string(s)\n", resolved)

		remaining, err := resolver.UnknownUsers()
		if err != nil {
			return err
		}
		if len(remaining) == 0 {
			fmt.Println("All commit identities are attributed")
			return nil
		}
		fmt.Printf("%d committer string(s) remain unresolved:\n", len(remaining))
		for _, name := range remaining {
			fmt.Printf("  %s\n", name)
		}
		return nil
	},
}

func init() {
	resolveUsersCmd.Flags().StringVar(&bindFlag, "bind", "", "bind one committer string: name=target")
	resolveUsersCmd.Flags().BoolVar(&newFlag, "new", false, "mint a new identity for the bind target")
}
