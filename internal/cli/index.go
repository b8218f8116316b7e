package cli

import (
	"github.com/spf13/cobra"

	"github.com/rcliao/context-memory/internal/store"
)

func init() {
	cmd := &cobra.Command{
		Use:   "index",
		Short: "Embed domain records and store their vectors",
		Long: "Embed records in one batch with the configured provider and persist the vectors on the records. " +
			"If the provider is unavailable nothing is written and the result is marked degraded.",
		Run: runIndex,
	}

	cmd.Flags().StringP("kind", "k", "", "Only index records of this kind")
	cmd.Flags().Bool("missing", false, "Only records without a stored embedding")

	RootCmd.AddCommand(cmd)
}

func runIndex(cmd *cobra.Command, args []string) {
	kind, _ := cmd.Flags().GetString("kind")
	missing, _ := cmd.Flags().GetBool("missing")

	cfg := loadConfig()
	db, err := openStore(cfg)
	if err != nil {
		exitErr("open store", err)
	}
	defer db.Close()

	records, err := db.ListRecords(cmd.Context(), store.ListRecordsParams{Kind: kind, WithEmbedding: true})
	if err != nil {
		exitErr("list records", err)
	}
	if missing {
		pending := records[:0]
		for _, r := range records {
			if len(r.Embedding) == 0 {
				pending = append(pending, r)
			}
		}
		records = pending
	}

	res, err := newIndexer(cfg, db).IndexRecords(cmd.Context(), records, cfg.Embedding)
	if err != nil {
		exitErr("index", err)
	}
	printJSON(res)
}
