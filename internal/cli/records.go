package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rcliao/context-memory/internal/store"
)

func init() {
	put := &cobra.Command{
		Use:   "record-put [title]",
		Short: "Store a domain record (task, client, quote, ...)",
		Long: "Store or update a domain record. Records are matched by name during extraction and can be " +
			"embedded with 'index'. The description can be piped via stdin.",
		Args: cobra.MinimumNArgs(1),
		Run:  runRecordPut,
	}
	put.Flags().String("id", "", "Record id (default: generated)")
	put.Flags().StringP("kind", "k", "record", "Record kind, e.g. task, client, quote")
	put.Flags().String("description", "", "Record description")

	list := &cobra.Command{
		Use:   "record-list",
		Short: "List domain records",
		Run:   runRecordList,
	}
	list.Flags().StringP("kind", "k", "", "Filter by kind")
	list.Flags().IntP("limit", "l", 20, "Max results")
	list.Flags().Bool("embedded", false, "Only records with a stored embedding")

	get := &cobra.Command{
		Use:   "record-get [kind:id]",
		Short: "Retrieve a domain record",
		Args:  cobra.ExactArgs(1),
		Run:   runRecordGet,
	}

	rm := &cobra.Command{
		Use:   "record-rm [kind:id]",
		Short: "Delete a domain record",
		Args:  cobra.ExactArgs(1),
		Run:   runRecordRm,
	}

	RootCmd.AddCommand(put, list, get, rm)
}

func runRecordPut(cmd *cobra.Command, args []string) {
	id, _ := cmd.Flags().GetString("id")
	kind, _ := cmd.Flags().GetString("kind")
	description, _ := cmd.Flags().GetString("description")

	if description == "" {
		stat, _ := os.Stdin.Stat()
		if (stat.Mode() & os.ModeCharDevice) == 0 {
			b, err := io.ReadAll(os.Stdin)
			if err != nil {
				exitErr("read stdin", err)
			}
			description = strings.TrimSpace(string(b))
		}
	}

	cfg := loadConfig()
	db, err := openStore(cfg)
	if err != nil {
		exitErr("open store", err)
	}
	defer db.Close()

	rec, err := db.PutRecord(cmd.Context(), store.PutRecordParams{
		ID:          id,
		Kind:        kind,
		Title:       strings.Join(args, " "),
		Description: description,
	})
	if err != nil {
		exitErr("record-put", err)
	}
	printJSON(rec)
}

func runRecordList(cmd *cobra.Command, args []string) {
	kind, _ := cmd.Flags().GetString("kind")
	limit, _ := cmd.Flags().GetInt("limit")
	embedded, _ := cmd.Flags().GetBool("embedded")

	cfg := loadConfig()
	db, err := openStore(cfg)
	if err != nil {
		exitErr("open store", err)
	}
	defer db.Close()

	records, err := db.ListRecords(cmd.Context(), store.ListRecordsParams{
		Kind:         kind,
		Limit:        limit,
		EmbeddedOnly: embedded,
	})
	if err != nil {
		exitErr("record-list", err)
	}

	if formatFlag == "text" {
		for _, r := range records {
			fmt.Printf("%s\t%s\n", r.DocumentID(), r.Title)
		}
		return
	}
	for i := range records {
		records[i].Embedding = nil
	}
	printJSON(records)
}

func runRecordGet(cmd *cobra.Command, args []string) {
	kind, id := splitDocID(args[0])

	cfg := loadConfig()
	db, err := openStore(cfg)
	if err != nil {
		exitErr("open store", err)
	}
	defer db.Close()

	rec, err := db.GetRecord(cmd.Context(), kind, id)
	if err != nil {
		exitErr("record-get", err)
	}
	printJSON(rec)
}

func runRecordRm(cmd *cobra.Command, args []string) {
	kind, id := splitDocID(args[0])

	cfg := loadConfig()
	db, err := openStore(cfg)
	if err != nil {
		exitErr("open store", err)
	}
	defer db.Close()

	if err := db.RmRecord(cmd.Context(), kind, id); err != nil {
		exitErr("record-rm", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), `{"ok":true,"kind":%q,"id":%q}`+"\n", kind, id)
}

// splitDocID accepts "kind:id" or a bare id of the default kind.
func splitDocID(s string) (kind, id string) {
	if k, i, ok := strings.Cut(s, ":"); ok {
		return k, i
	}
	return "", s
}
