package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rcliao/context-memory/internal/insight"
)

func init() {
	cmd := &cobra.Command{
		Use:   "insights",
		Short: "Summarize recurring topics, frequent actions and sentiment trend",
		Run:   runInsights,
	}

	cmd.Flags().Int("min", 0, "Minimum occurrences (default: insight.min_occurrences)")

	RootCmd.AddCommand(cmd)
}

func runInsights(cmd *cobra.Command, args []string) {
	minOccurs, _ := cmd.Flags().GetInt("min")

	cfg := loadConfig()
	if minOccurs <= 0 {
		minOccurs = cfg.Insight.MinOccurrences
	}
	db, err := openStore(cfg)
	if err != nil {
		exitErr("open store", err)
	}
	defer db.Close()

	var learner insight.Learner = insight.NewFrequencyLearner(minOccurs)
	insights := learner.Learn(openService(cmd.Context(), cfg, db).Entries())

	if formatFlag == "text" {
		for _, in := range insights {
			fmt.Printf("%-16s %s\n", in.Kind, in.Description)
		}
		return
	}
	printJSON(insights)
}
