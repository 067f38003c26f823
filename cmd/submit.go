package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var submitCmd = &cobra.Command{
	Use:   "submit",
	Short: "Submit an answer for a problem session",
	Long: `Submit an answer against a previously generated session.

The session survives the process only through the durable backup, so
submissions from a fresh process resolve via the cold-read path.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		learner, _ := cmd.Flags().GetString("learner")
		sessionID, _ := cmd.Flags().GetString("session")
		answer, _ := cmd.Flags().GetString("answer")
		elapsed, _ := cmd.Flags().GetInt("elapsed")
		hints, _ := cmd.Flags().GetInt("hints")

		eng, st, err := buildEngine(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		result, err := eng.Submit(cmd.Context(), learner, sessionID, answer, elapsed, hints)
		if err != nil {
			return fmt.Errorf("submit answer: %w", err)
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	},
}

func init() {
	submitCmd.Flags().String("learner", "", "Learner identifier")
	submitCmd.Flags().String("session", "", "Session identifier")
	submitCmd.Flags().String("answer", "", "Submitted answer")
	submitCmd.Flags().Int("elapsed", 0, "Seconds taken to answer")
	submitCmd.Flags().Int("hints", 0, "Hints used")
	_ = submitCmd.MarkFlagRequired("learner")
	_ = submitCmd.MarkFlagRequired("session")
}
