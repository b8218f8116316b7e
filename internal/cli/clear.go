package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Forget every remembered turn and pattern",
		Run:   runClear,
	}

	cmd.Flags().Bool("yes", false, "Confirm (irreversible)")

	RootCmd.AddCommand(cmd)
}

func runClear(cmd *cobra.Command, args []string) {
	yes, _ := cmd.Flags().GetBool("yes")
	if !yes {
		exitErr("clear", fmt.Errorf("refusing to clear memory without --yes"))
	}

	cfg := loadConfig()
	db, err := openStore(cfg)
	if err != nil {
		exitErr("open store", err)
	}
	defer db.Close()

	svc := openService(cmd.Context(), cfg, db)
	svc.Clear(cmd.Context())
	syncService(cmd.Context(), svc)

	fmt.Println(`{"ok":true}`)
}
