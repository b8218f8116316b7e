package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "patterns",
		Short: "Show the most frequent query patterns",
		Run:   runPatterns,
	}

	cmd.Flags().IntP("limit", "l", 10, "Max patterns")

	RootCmd.AddCommand(cmd)
}

func runPatterns(cmd *cobra.Command, args []string) {
	limit, _ := cmd.Flags().GetInt("limit")

	cfg := loadConfig()
	db, err := openStore(cfg)
	if err != nil {
		exitErr("open store", err)
	}
	defer db.Close()

	patterns := openService(cmd.Context(), cfg, db).TopPatterns(limit)
	if formatFlag == "text" {
		for _, p := range patterns {
			fmt.Printf("%-20s %4d  %s\n", p.Pattern, p.Frequency, p.LastSeen.Format("2006-01-02"))
		}
		return
	}
	printJSON(patterns)
}
