package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rcliao/context-memory/internal/recall"
)

func init() {
	cmd := &cobra.Command{
		Use:   "record [query]",
		Short: "Remember a conversation turn",
		Long: "Record a user query and assistant response. Signals (entities, topics, sentiment, importance) " +
			"are extracted automatically. Without a positional query, a JSON turn is read from stdin:\n" +
			`  {"query": "...", "response": "...", "actions": ["..."]}`,
		Run: runRecord,
	}

	cmd.Flags().StringP("response", "r", "", "Assistant response")
	cmd.Flags().StringSliceP("action", "a", nil, "Action taken during the turn (repeatable)")
	cmd.Flags().StringP("session", "s", "", "Session id (default: generated)")

	RootCmd.AddCommand(cmd)
}

func runRecord(cmd *cobra.Command, args []string) {
	response, _ := cmd.Flags().GetString("response")
	actions, _ := cmd.Flags().GetStringSlice("action")
	session, _ := cmd.Flags().GetString("session")

	var turn recall.Turn
	if len(args) > 0 {
		turn = recall.Turn{Query: strings.Join(args, " "), Response: response, Actions: actions}
	} else {
		stat, _ := os.Stdin.Stat()
		if (stat.Mode() & os.ModeCharDevice) != 0 {
			exitErr("record", fmt.Errorf("query is required (positional arg or JSON on stdin)"))
		}
		b, err := io.ReadAll(os.Stdin)
		if err != nil {
			exitErr("read stdin", err)
		}
		if err := json.Unmarshal(b, &turn); err != nil {
			exitErr("parse turn", err)
		}
	}
	if session != "" {
		turn.SessionID = session
	}
	if strings.TrimSpace(turn.Query) == "" {
		exitErr("record", fmt.Errorf("query is required"))
	}

	cfg := loadConfig()
	db, err := openStore(cfg)
	if err != nil {
		exitErr("open store", err)
	}
	defer db.Close()

	svc := openService(cmd.Context(), cfg, db)
	entry := svc.Record(cmd.Context(), turn)
	syncService(cmd.Context(), svc)

	b, _ := json.Marshal(entry)
	fmt.Println(string(b))
}
