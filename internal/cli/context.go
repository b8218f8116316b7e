package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rcliao/context-memory/internal/recall"
)

func init() {
	cmd := &cobra.Command{
		Use:   "context [query]",
		Short: "Rank remembered turns for a new query",
		Long: "Score every remembered turn by recency, relevance, importance, sentiment and actions, " +
			"then greedily keep the best ones that fit the entry and character budget.",
		Args: cobra.MinimumNArgs(1),
		Run:  runContext,
	}

	cmd.Flags().StringSliceP("topics", "t", nil, "Current topics (default: derived from the query)")
	cmd.Flags().Int("max-entries", 0, "Override max entries")
	cmd.Flags().IntP("budget", "b", 0, "Override max context length in characters")

	RootCmd.AddCommand(cmd)
}

func runContext(cmd *cobra.Command, args []string) {
	topics, _ := cmd.Flags().GetStringSlice("topics")
	maxEntries, _ := cmd.Flags().GetInt("max-entries")
	budget, _ := cmd.Flags().GetInt("budget")
	query := strings.Join(args, " ")

	cfg := loadConfig()
	if maxEntries > 0 {
		cfg.Priority.MaxEntries = maxEntries
	}
	if budget > 0 {
		cfg.Priority.MaxContextLength = budget
	}

	db, err := openStore(cfg)
	if err != nil {
		exitErr("open store", err)
	}
	defer db.Close()

	svc := openService(cmd.Context(), cfg, db)
	scores := svc.Context(query, topics)

	if formatFlag == "text" {
		fmt.Print(recall.Render(scores))
		return
	}
	printJSON(scores)
}
