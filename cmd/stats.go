package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mathquest/engine/internal/store"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show practice statistics",
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

		db := st.DB()
		var sessions, active, attempts, correct int
		if err := db.QueryRow(`SELECT COUNT(*) FROM sessions`).Scan(&sessions); err != nil {
			return fmt.Errorf("count sessions: %w", err)
		}
		if err := db.QueryRow(`SELECT COUNT(*) FROM sessions WHERE completed = 0`).Scan(&active); err != nil {
			return fmt.Errorf("count active sessions: %w", err)
		}
		if err := db.QueryRow(`SELECT COUNT(*) FROM attempts`).Scan(&attempts); err != nil {
			return fmt.Errorf("count attempts: %w", err)
		}
		if err := db.QueryRow(`SELECT COUNT(*) FROM attempts WHERE correct = 1`).Scan(&correct); err != nil {
			return fmt.Errorf("count correct attempts: %w", err)
		}

		fmt.Printf("Sessions:  %d total, %d open\n", sessions, active)
		fmt.Printf("Attempts:  %d total, %d correct\n", attempts, correct)
		if attempts > 0 {
			fmt.Printf("Accuracy:  %.0f%%\n", float64(correct)/float64(attempts)*100)
		}
		return nil
	},
}
