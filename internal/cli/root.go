// Package cli implements the context-memory CLI commands.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/rcliao/context-memory/internal/config"
	"github.com/rcliao/context-memory/internal/embedding"
	"github.com/rcliao/context-memory/internal/indexer"
	"github.com/rcliao/context-memory/internal/logging"
	"github.com/rcliao/context-memory/internal/recall"
	"github.com/rcliao/context-memory/internal/store"
	"github.com/rcliao/context-memory/internal/vector"
)

var (
	dbPath     string
	configPath string
	formatFlag string
	verbose    bool
)

// RootCmd is the top-level command.
var RootCmd = &cobra.Command{
	Use:   "context-memory",
	Short: "Conversational memory and retrieval for assistants",
	Long: "Remembers conversation turns, ranks them against a new query within a context budget, " +
		"and indexes domain records for semantic lookup. SQLite-backed, single binary.",
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&dbPath, "db", "d", "", "Database path (default: $CONTEXT_MEMORY_DB or ~/.context-memory/memory.db)")
	RootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (default: $CONTEXT_MEMORY_CONFIG or ~/.context-memory/config.yaml)")
	RootCmd.PersistentFlags().StringVarP(&formatFlag, "format", "f", "json", "Output format: json or text")
	RootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Debug logging on stderr")
}

func loadConfig() *config.Config {
	cfg, err := config.Load(configPath)
	if err != nil {
		exitErr("load config", err)
	}
	if dbPath != "" {
		cfg.DBPath = dbPath
	}
	return cfg
}

func newLogger() *logrus.Logger {
	return logging.New(verbose)
}

func openStore(cfg *config.Config) (*store.SQLiteStore, error) {
	return store.NewSQLiteStore(cfg.DBPath)
}

func openService(ctx context.Context, cfg *config.Config, db *store.SQLiteStore) *recall.Service {
	svc, err := recall.Open(ctx, db, recall.Options{
		Memory:   cfg.MemoryOptions(),
		Priority: cfg.Priority,
		Domain:   db,
		Log:      newLogger(),
	})
	if err != nil {
		exitErr("open memory", err)
	}
	return svc
}

// syncService surfaces a flush that failed during a mutation.
func syncService(ctx context.Context, svc *recall.Service) {
	if err := svc.Sync(ctx); err != nil {
		exitErr("flush", err)
	}
}

func newIndexer(cfg *config.Config, db *store.SQLiteStore) *indexer.Indexer {
	log := newLogger()
	bridge := embedding.NewBridge(log, embedding.DefaultTimeout)
	return indexer.New(bridge, vector.NewSearcher(cfg.Vector.Backend), db, log)
}

func printJSON(v interface{}) {
	b, _ := json.MarshalIndent(v, "", "  ")
	fmt.Println(string(b))
}

func exitErr(msg string, err error) {
	fmt.Fprintf(os.Stderr, "error: %s: %v\n", msg, err)
	os.Exit(1)
}
