package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a new problem session",
	RunE: func(cmd *cobra.Command, args []string) error {
		learner, _ := cmd.Flags().GetString("learner")
		topic, _ := cmd.Flags().GetInt("topic")
		difficulty, _ := cmd.Flags().GetInt("difficulty")

		eng, st, err := buildEngine(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		view, err := eng.Generate(cmd.Context(), learner, topic, difficulty)
		if err != nil {
			return fmt.Errorf("generate problem: %w", err)
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(view)
	},
}

func init() {
	generateCmd.Flags().String("learner", "", "Learner identifier")
	generateCmd.Flags().Int("topic", 0, "Multiplication topic (2-9)")
	generateCmd.Flags().Int("difficulty", 1, "Difficulty tier (1-3)")
	_ = generateCmd.MarkFlagRequired("learner")
	_ = generateCmd.MarkFlagRequired("topic")
}
