package cli

import (
	"github.com/spf13/cobra"

	"github.com/rcliao/context-memory/internal/store"
)

// statsOutput combines database and in-memory counts.
type statsOutput struct {
	*store.Stats
	Entries  int    `json:"entries"`
	Patterns int    `json:"patterns"`
	Provider string `json:"embedding_provider"`
	Backend  string `json:"vector_backend"`
}

func init() {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show database statistics",
		Run:   runStats,
	}

	RootCmd.AddCommand(cmd)
}

func runStats(cmd *cobra.Command, args []string) {
	cfg := loadConfig()
	db, err := openStore(cfg)
	if err != nil {
		exitErr("open store", err)
	}
	defer db.Close()

	st, err := db.Stats(cmd.Context(), cfg.DBPath)
	if err != nil {
		exitErr("stats", err)
	}
	svc := openService(cmd.Context(), cfg, db)

	provider := cfg.Embedding.Provider
	if provider == "" {
		provider = "disabled"
	}
	printJSON(statsOutput{
		Stats:    st,
		Entries:  len(svc.Entries()),
		Patterns: len(svc.TopPatterns(0)),
		Provider: provider,
		Backend:  cfg.Vector.Backend,
	})
}
