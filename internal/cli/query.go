package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/rcliao/context-memory/internal/store"
	"github.com/rcliao/context-memory/internal/vector"
)

// queryResult reports which path answered: "semantic" or "lexical".
type queryResult struct {
	Mode string       `json:"mode"`
	Hits []vector.Hit `json:"hits"`
}

func init() {
	cmd := &cobra.Command{
		Use:   "query [text]",
		Short: "Find records similar to text",
		Long: "Embed the text and return the nearest indexed records. When no embedding is available " +
			"(no provider, provider down, nothing indexed) falls back to a lexical match on titles and descriptions.",
		Args: cobra.MinimumNArgs(1),
		Run:  runQuery,
	}

	cmd.Flags().IntP("top", "k", 0, "Number of results (default: vector.top_k)")

	RootCmd.AddCommand(cmd)
}

func runQuery(cmd *cobra.Command, args []string) {
	k, _ := cmd.Flags().GetInt("top")
	text := strings.Join(args, " ")

	cfg := loadConfig()
	if k <= 0 {
		k = cfg.Vector.TopK
	}
	db, err := openStore(cfg)
	if err != nil {
		exitErr("open store", err)
	}
	defer db.Close()

	embedded, err := db.ListRecords(cmd.Context(), store.ListRecordsParams{EmbeddedOnly: true})
	if err != nil {
		exitErr("list records", err)
	}
	ix := newIndexer(cfg, db)
	if ix.Warm(embedded) > 0 {
		if hits := ix.QueryRecords(cmd.Context(), text, k, cfg.Embedding); len(hits) > 0 {
			printJSON(queryResult{Mode: "semantic", Hits: hits})
			return
		}
	}

	records, err := db.SearchRecords(cmd.Context(), store.SearchRecordsParams{Query: text, Limit: k})
	if err != nil {
		exitErr("search records", err)
	}
	hits := make([]vector.Hit, len(records))
	for i, r := range records {
		hits[i] = vector.Hit{
			ID:       r.DocumentID(),
			Text:     r.Text(),
			Metadata: map[string]string{"record_id": r.ID, "kind": r.Kind, "title": r.Title},
		}
	}
	printJSON(queryResult{Mode: "lexical", Hits: hits})
}
