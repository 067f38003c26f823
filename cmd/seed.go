package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mathquest/engine/internal/store"
	"github.com/mathquest/engine/internal/template"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load the builtin problem templates into the database",
	RunE: func(cmd *cobra.Command, args []string) error {
		dbPath, err := resolveDBPath(cmd)
		if err != nil {
			return fmt.Errorf("resolve database path: %w", err)
		}
		st, err := store.Open(dbPath)
		if err != nil {
			return fmt.Errorf("open store: %w", err)
		}
		defer st.Close()

		repo := st.TemplateRepo()
		for _, tpl := range template.BuiltinTemplates() {
			if err := repo.Save(cmd.Context(), tpl); err != nil {
				return fmt.Errorf("seed template %s: %w", tpl.ID, err)
			}
		}

		n, err := repo.Count(cmd.Context())
		if err != nil {
			return fmt.Errorf("count templates: %w", err)
		}
		fmt.Printf("Seeded %d templates (%d total in catalog).\n", len(template.BuiltinTemplates()), n)
		return nil
	},
}
