package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the memory log and patterns as JSON",
		Run:   runExport,
	}

	cmd.Flags().StringP("out", "o", "", "Write to file instead of stdout")

	RootCmd.AddCommand(cmd)
}

func runExport(cmd *cobra.Command, args []string) {
	out, _ := cmd.Flags().GetString("out")

	cfg := loadConfig()
	db, err := openStore(cfg)
	if err != nil {
		exitErr("open store", err)
	}
	defer db.Close()

	data, err := openService(cmd.Context(), cfg, db).Export()
	if err != nil {
		exitErr("export", err)
	}

	if out != "" {
		if err := os.WriteFile(out, data, 0o644); err != nil {
			exitErr("write export", err)
		}
		fmt.Printf(`{"ok":true,"file":%q}`+"\n", out)
		return
	}
	fmt.Println(string(data))
}
