package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "import [file]",
		Short: "Replace the memory log with an export",
		Long:  "Import a snapshot produced by export (file or stdin). A malformed snapshot leaves existing memory untouched.",
		Args:  cobra.MaximumNArgs(1),
		Run:   runImport,
	}

	RootCmd.AddCommand(cmd)
}

func runImport(cmd *cobra.Command, args []string) {
	var data []byte
	var err error
	if len(args) == 1 {
		data, err = os.ReadFile(args[0])
	} else {
		data, err = io.ReadAll(os.Stdin)
	}
	if err != nil {
		exitErr("read snapshot", err)
	}

	cfg := loadConfig()
	db, err := openStore(cfg)
	if err != nil {
		exitErr("open store", err)
	}
	defer db.Close()

	svc := openService(cmd.Context(), cfg, db)
	if err := svc.Import(cmd.Context(), data); err != nil {
		exitErr("import", err)
	}
	syncService(cmd.Context(), svc)

	fmt.Printf(`{"ok":true,"entries":%d,"patterns":%d}`+"\n", len(svc.Entries()), len(svc.TopPatterns(0)))
}
